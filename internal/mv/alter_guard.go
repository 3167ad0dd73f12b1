package mv

import (
	"github.com/vistadb/vistadb/internal/catalog"
	"github.com/vistadb/vistadb/internal/parser"
)

// AlterGuard is component C7: it implements the three ALTER forms vistadb
// supports against a materialized view — MODIFY QUERY, MODIFY REFRESH, and
// a comment-only alter — mirroring the original's checkAlterIsPossible plus
// the MODIFY_QUERY/MODIFY_REFRESH branches of StorageMaterializedView::alter().
type AlterGuard struct {
	cat    *catalog.Catalog
	binder *DependencyBinder
}

// NewAlterGuard binds a guard to a catalog.
func NewAlterGuard(cat *catalog.Catalog) *AlterGuard {
	return &AlterGuard{cat: cat, binder: NewDependencyBinder(cat)}
}

// checkAlterIsPossible validates an ALTER against the view's current state
// before any mutation happens, matching checkAlterIsPossible in the
// original: MODIFY QUERY and a comment-only alter are unconditionally
// legal against any materialized view; MODIFY REFRESH requires the view to
// already be refreshable (you can't hand a refresh schedule to a view that
// never had one) and forbids flipping APPEND on or off, since that changes
// whether the view owns a scratch table — a structural change, not a
// schedule change.
func (g *AlterGuard) checkAlterIsPossible(view *MaterializedView, stmt *parser.AlterTableStmt) error {
	view.mu.RLock()
	defer view.mu.RUnlock()
	if stmt.NewRefresh != nil {
		if !view.refreshable {
			return newError(KindNotImplemented, nil,
				"view %s: MODIFY REFRESH is not supported by non-refreshable materialized views", view.id.QualifiedName())
		}
		if stmt.NewRefresh.Append != !view.hasScratch {
			return newError(KindNotImplemented, nil,
				"view %s: adding or removing APPEND is not supported by MODIFY REFRESH", view.id.QualifiedName())
		}
	}
	return nil
}

// ModifyQuery swaps in a new defining SELECT, rebinding the dependency
// graph to the (possibly different) source table and restarting the
// refresh task so the new query takes effect on the next tick.
func (g *AlterGuard) ModifyQuery(view *MaterializedView, newQuery *parser.SelectStmt) error {
	newDesc, err := NewSelectDescription(newQuery, g.cat, false)
	if err != nil {
		return err
	}

	view.mu.Lock()
	oldSource := view.desc.Source
	task := view.refreshTask
	view.mu.Unlock()

	if task != nil {
		task.Stop()
	}

	view.mu.Lock()
	view.desc = newDesc
	interval := view.interval
	view.mu.Unlock()

	g.binder.Unbind(oldSource, view.id)
	if err := g.binder.Bind(newDesc.Source, view.id); err != nil {
		return err
	}

	if task != nil {
		view.mu.Lock()
		view.startRefreshTask(interval)
		view.mu.Unlock()
	}
	return nil
}

// ModifyRefresh changes a refreshable view's tick interval in place,
// restarting the task so the new schedule takes effect immediately rather
// than after the current interval elapses.
func (g *AlterGuard) ModifyRefresh(view *MaterializedView, refresh *parser.RefreshClause) error {
	view.mu.Lock()
	task := view.refreshTask
	view.mu.Unlock()

	if task != nil {
		task.Stop()
	}

	view.mu.Lock()
	view.startRefreshTask(refreshInterval(refresh))
	view.mu.Unlock()
	return nil
}

// SetComment updates a view's COMMENT text without touching its query,
// target, or refresh schedule.
func (g *AlterGuard) SetComment(view *MaterializedView, comment string) error {
	view.mu.Lock()
	view.comment = comment
	view.mu.Unlock()
	return nil
}

func alterView(handle catalog.ViewHandle, cat *catalog.Catalog, stmt *parser.AlterTableStmt) error {
	view, ok := handle.(*MaterializedView)
	if !ok {
		return newError(KindLogicalError, nil, "view handle is not a vistadb materialized view")
	}
	g := NewAlterGuard(cat)
	if err := g.checkAlterIsPossible(view, stmt); err != nil {
		return err
	}
	switch {
	case stmt.NewQuery != nil:
		return g.ModifyQuery(view, stmt.NewQuery)
	case stmt.NewRefresh != nil:
		return g.ModifyRefresh(view, stmt.NewRefresh)
	case stmt.HasComment:
		return g.SetComment(view, stmt.NewComment)
	default:
		return newError(KindIncorrectQuery, nil, "ALTER of this form is not supported by materialized views")
	}
}
