package mv

import (
	"context"
	"fmt"
	"log"

	"github.com/vistadb/vistadb/internal/catalog"
	"github.com/vistadb/vistadb/internal/engine"
	"github.com/vistadb/vistadb/internal/parser"
	"github.com/vistadb/vistadb/internal/refresh"
	"github.com/vistadb/vistadb/internal/storage"
)

// LifecycleController is component C6: it orchestrates everything a
// CREATE/DROP/RENAME/TRUNCATE MATERIALIZED VIEW statement does across
// InnerTableBuilder, CatalogDependencyBinder and the catalog itself,
// rolling back partial work on failure the way the original's
// StorageMaterializedView constructor drops whatever inner table it just
// created if a later step throws.
type LifecycleController struct {
	cat     *catalog.Catalog
	builder *InnerTableBuilder
	binder  *DependencyBinder
}

// NewLifecycleController binds a controller to a catalog.
func NewLifecycleController(cat *catalog.Catalog) *LifecycleController {
	return &LifecycleController{
		cat:     cat,
		builder: NewInnerTableBuilder(cat),
		binder:  NewDependencyBinder(cat),
	}
}

// createView is the package-level entry point engine.Execute calls for
// CREATE MATERIALIZED VIEW, wired by view.go's init().
func createView(stmt *parser.CreateMaterializedViewStmt, cat *catalog.Catalog, attach bool) (*engine.ExecuteResult, error) {
	c := NewLifecycleController(cat)
	view, err := c.Create(stmt, attach)
	if err != nil {
		return nil, err
	}
	if stmt.Populate && !attach {
		if err := view.refreshTaskOrAdHoc().RunNow(context.Background()); err != nil {
			return nil, fmt.Errorf("mv: POPULATE failed for view %s: %w", view.id.QualifiedName(), err)
		}
	}
	return &engine.ExecuteResult{Message: "OK"}, nil
}

// refreshTaskOrAdHoc returns a throwaway one-shot RefreshCoordinator
// wrapper, whether or not the view has a background task, so POPULATE runs
// the exact same Prepare/Execute/Transfer sequence a scheduled tick uses.
func (v *MaterializedView) refreshTaskOrAdHoc() *adHocRefresher {
	return &adHocRefresher{cycle: &RefreshCoordinator{view: v}}
}

type adHocRefresher struct{ cycle refresh.Cycle }

func (a *adHocRefresher) RunNow(ctx context.Context) error {
	sql, err := a.cycle.Prepare(ctx)
	if err != nil {
		return err
	}
	if err := a.cycle.Execute(ctx, sql); err != nil {
		return err
	}
	return a.cycle.Transfer(ctx)
}

// Create builds a MaterializedView from a parsed CREATE statement: resolves
// the source, builds (or resolves) its target and, for a non-APPEND
// refreshable view, scratch table, binds the dependency edge, and
// registers the view in the catalog. attach is true when replaying
// metadata at startup, in which case the source is allowed to be missing
// (a dangling dependency the catalog will reject writes against, matching
// ATTACH's tolerance for a since-dropped source).
func (c *LifecycleController) Create(stmt *parser.CreateMaterializedViewStmt, attach bool) (*MaterializedView, error) {
	if stmt.HasTarget && len(stmt.Columns) > 0 {
		return nil, newError(KindBadArguments, nil, "materialized view %s: cannot combine TO target with an inner-table column list", stmt.ViewName)
	}

	viewID := catalog.StorageID{Database: "default", Table: stmt.ViewName}
	if stmt.UUID != "" {
		if u, err := parseUUID(stmt.UUID); err == nil {
			viewID.UUID = u
		}
	}

	// A materialized view cannot point to itself, either as its TO target
	// or as the source its SELECT reads from: the original's constructor
	// rejects point_to_itself_by_name/point_to_itself_by_uuid for the TO
	// case, and a self-referential source is just as nonsensical (a
	// refresh cycle that reads what it's about to overwrite).
	if stmt.HasTarget && pointsToItself(viewID, stmt.TargetTable) {
		return nil, newError(KindBadArguments, nil, "materialized view %s cannot point to itself", viewID.QualifiedName())
	}
	if stmt.Select != nil && pointsToItself(viewID, stmt.Select.From) {
		return nil, newError(KindBadArguments, nil, "materialized view %s cannot point to itself", viewID.QualifiedName())
	}

	desc, err := NewSelectDescription(stmt.Select, c.cat, attach)
	if err != nil {
		return nil, err
	}

	needsScratch := stmt.Refresh != nil && !stmt.Refresh.Append

	view := &MaterializedView{
		cat:         c.cat,
		id:          viewID,
		desc:        desc,
		refreshable: stmt.Refresh != nil,
		populate:    stmt.Populate,
		comment:     stmt.Comment,
	}

	var createdInner []catalog.StorageID
	rollback := func() {
		for _, id := range createdInner {
			if err := c.cat.GuardedDrop(id.QualifiedName(), true, true); err != nil {
				log.Printf("[mv] rollback: dropping inner table %s: %v", id.QualifiedName(), err)
			}
		}
	}

	if stmt.HasTarget {
		// The grammar only reaches here when stmt.Refresh is nil (TO and
		// REFRESH EVERY are mutually exclusive clauses), so a TO-target
		// view is always a plain forwarding view: no scratch table, and
		// its target outlives it.
		target, ok := c.cat.GetTable(stmt.TargetTable)
		if !ok {
			return nil, newError(KindUnknownStorage, nil, "target table %q does not exist", stmt.TargetTable)
		}
		view.targetID = catalog.TableStorageID(target)
		view.declared = headerFromSchema(target.Schema)
		view.targetOwnedExternally = true
	} else {
		target, header, err := c.builder.Build(viewID, stmt, innerTarget)
		if err != nil {
			return nil, err
		}
		view.targetID = catalog.TableStorageID(target)
		view.declared = header
		createdInner = append(createdInner, view.targetID)

		if needsScratch {
			scratch, _, err := c.builder.Build(viewID, stmt, innerScratch)
			if err != nil {
				rollback()
				return nil, err
			}
			view.scratchID = catalog.TableStorageID(scratch)
			view.hasScratch = true
			view.scratchKnownEmpty = true
			createdInner = append(createdInner, view.scratchID)
		}
	}

	if err := c.binder.Bind(desc.Source, viewID); err != nil {
		rollback()
		return nil, err
	}

	if err := c.cat.CreateView(viewID, view, attach); err != nil {
		c.binder.Unbind(desc.Source, viewID)
		rollback()
		return nil, err
	}

	if view.refreshable {
		view.mu.Lock()
		view.startRefreshTask(refreshInterval(stmt.Refresh))
		view.mu.Unlock()
	}

	return view, nil
}

// pointsToItself reports whether qualifiedName names the same table as
// viewID, the database.table identity comparison the original performs
// against to_table_id/table_id_ before rejecting a self-referential
// CREATE MATERIALIZED VIEW.
func pointsToItself(viewID catalog.StorageID, qualifiedName string) bool {
	db, table := splitQualified(qualifiedName)
	return db == viewID.Database && table == viewID.Table
}

// headerFromSchema turns a physical table schema's column list into a
// Header, used wherever a view's declared shape is derived from an
// existing table (TO target) rather than an inner-table column clause.
func headerFromSchema(schema storage.TableSchema) Header {
	h := make(Header, len(schema.Columns))
	copy(h, schema.Columns)
	return h
}

// Drop removes a view's inner tables (if it owns them) and its catalog
// entry and dependency edge, the dropInnerTableIfAny + removeDependency
// sequence from the original's shutdown/drop path.
func (c *LifecycleController) Drop(view *MaterializedView, ifExists bool) error {
	view.mu.Lock()
	task := view.refreshTask
	view.mu.Unlock()
	if task != nil {
		task.Stop()
	}

	view.mu.RLock()
	ownsTarget := !view.targetOwnedExternally
	targetID := view.targetID
	scratchID := view.scratchID
	hasScratch := view.hasScratch
	sourceID := view.desc.Source
	view.mu.RUnlock()

	if ownsTarget {
		if err := c.cat.GuardedDrop(targetID.QualifiedName(), true, true); err != nil {
			log.Printf("[mv] dropping target table %s: %v", targetID.QualifiedName(), err)
		}
	}
	if hasScratch {
		if err := c.cat.GuardedDrop(scratchID.QualifiedName(), true, true); err != nil {
			log.Printf("[mv] dropping scratch table %s: %v", scratchID.QualifiedName(), err)
		}
	}

	c.binder.Unbind(sourceID, view.id)
	return c.cat.DropView(view.id.QualifiedName())
}

// innerRename is one inner table's old/new qualified name pair, computed up
// front so RenameTo can roll every rename back in reverse order if a later
// step fails.
type innerRename struct {
	oldName, newName string
}

// RenameTo moves a view's catalog entry to a new name. If the view has a
// stable UUID, its inner tables are named off it (MintInnerName), so a
// rename never needs to touch their directories. Otherwise — the legacy
// fallback naming, ".inner.<name>"/".inner_scratch.<name>" — the inner
// tables must be renamed in lockstep with the view, matching
// renameInMemory's "if ... either side lacks a UUID, rename inner tables
// via a DDL rename query using newly minted names" rule.
func (c *LifecycleController) RenameTo(view *MaterializedView, newName string) error {
	view.mu.Lock()
	oldID := view.id
	sourceID := view.desc.Source
	newID := catalog.StorageID{Database: oldID.Database, Table: newName, UUID: oldID.UUID}

	var renames []innerRename
	if !oldID.HasUUID() {
		if !view.targetOwnedExternally {
			renames = append(renames, innerRename{
				oldName: catalog.StorageID{Database: oldID.Database, Table: MintInnerName(oldID, innerTarget)}.QualifiedName(),
				newName: catalog.StorageID{Database: oldID.Database, Table: MintInnerName(newID, innerTarget)}.QualifiedName(),
			})
		}
		if view.hasScratch {
			renames = append(renames, innerRename{
				oldName: catalog.StorageID{Database: oldID.Database, Table: MintInnerName(oldID, innerScratch)}.QualifiedName(),
				newName: catalog.StorageID{Database: oldID.Database, Table: MintInnerName(newID, innerScratch)}.QualifiedName(),
			})
		}
	}
	view.mu.Unlock()

	var renamed []innerRename
	rollbackInner := func() {
		for i := len(renamed) - 1; i >= 0; i-- {
			if err := c.cat.GuardedRename(renamed[i].newName, renamed[i].oldName, true); err != nil {
				log.Printf("[mv] rolling back inner rename %s -> %s: %v", renamed[i].newName, renamed[i].oldName, err)
			}
		}
	}
	for _, r := range renames {
		if err := c.cat.GuardedRename(r.oldName, r.newName, true); err != nil {
			rollbackInner()
			return fmt.Errorf("mv: renaming inner table %s: %w", r.oldName, err)
		}
		renamed = append(renamed, r)
	}

	view.mu.Lock()
	view.id = newID
	if len(renames) > 0 {
		if !view.targetOwnedExternally {
			view.targetID.Table = MintInnerName(newID, innerTarget)
		}
		if view.hasScratch {
			view.scratchID.Table = MintInnerName(newID, innerScratch)
		}
	}
	task := view.refreshTask
	view.mu.Unlock()

	if err := c.cat.RenameView(oldID.QualifiedName(), newID.QualifiedName(), view); err != nil {
		view.mu.Lock()
		view.id = oldID
		if len(renames) > 0 {
			if !view.targetOwnedExternally {
				view.targetID.Table = MintInnerName(oldID, innerTarget)
			}
			if view.hasScratch {
				view.scratchID.Table = MintInnerName(oldID, innerScratch)
			}
		}
		view.mu.Unlock()
		rollbackInner()
		return err
	}

	if task != nil {
		task.Rename(newID.QualifiedName())
	}
	c.binder.Rebind(sourceID, oldID, newID)
	return nil
}

// Truncate empties a view's target (and scratch, if any) in place.
func (c *LifecycleController) Truncate(view *MaterializedView) error {
	view.mu.RLock()
	targetID := view.targetID
	scratchID := view.scratchID
	hasScratch := view.hasScratch
	view.mu.RUnlock()

	target, ok := c.cat.GetTableByID(targetID)
	if !ok {
		return newError(KindUnknownStorage, nil, "view %s: target table missing", view.id.QualifiedName())
	}
	if err := target.Truncate(); err != nil {
		return err
	}
	if hasScratch {
		scratch, ok := c.cat.GetTableByID(scratchID)
		if ok {
			return scratch.Truncate()
		}
	}
	return nil
}

func dropView(handle catalog.ViewHandle, cat *catalog.Catalog, ifExists bool) error {
	view, ok := handle.(*MaterializedView)
	if !ok {
		return newError(KindLogicalError, nil, "view handle is not a vistadb materialized view")
	}
	return NewLifecycleController(cat).Drop(view, ifExists)
}

func renameView(handle catalog.ViewHandle, cat *catalog.Catalog, newName string) error {
	view, ok := handle.(*MaterializedView)
	if !ok {
		return newError(KindLogicalError, nil, "view handle is not a vistadb materialized view")
	}
	return NewLifecycleController(cat).RenameTo(view, newName)
}

func truncateView(handle catalog.ViewHandle, cat *catalog.Catalog) error {
	view, ok := handle.(*MaterializedView)
	if !ok {
		return newError(KindLogicalError, nil, "view handle is not a vistadb materialized view")
	}
	return NewLifecycleController(cat).Truncate(view)
}
