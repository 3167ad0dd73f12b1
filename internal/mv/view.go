// Package mv implements vistadb's materialized-view storage adapter: the
// set of components that let a CREATE MATERIALIZED VIEW name resolve to
// real catalog tables, keep them periodically refreshed, and forward
// SELECT/INSERT/DDL aimed at the view through to those tables. It mirrors
// ClickHouse's StorageMaterializedView, split into the single-purpose
// pieces spec.md names: InnerNameMinter, HeaderReconciler,
// InnerTableBuilder, CatalogDependencyBinder, ForwardingFacade,
// LifecycleController, AlterGuard and RefreshCoordinator.
package mv

import (
	"context"
	"sync"
	"time"

	"github.com/vistadb/vistadb/internal/catalog"
	"github.com/vistadb/vistadb/internal/engine"
	"github.com/vistadb/vistadb/internal/parser"
	"github.com/vistadb/vistadb/internal/refresh"
)

// MaterializedView is the adapter's view handle, the concrete type behind
// catalog.ViewHandle; its refresh.Cycle is the RefreshCoordinator wrapping it.
// Every field after mu is guarded by it, since ALTER ... MODIFY QUERY
// (AlterGuard) can swap desc/targetID out from under a concurrent read or
// refresh tick.
type MaterializedView struct {
	cat *catalog.Catalog
	id  catalog.StorageID

	mu       sync.RWMutex
	desc     *SelectDescription
	declared Header

	targetID   catalog.StorageID
	scratchID  catalog.StorageID
	hasScratch bool

	// scratchKnownEmpty tracks whether the scratch table is already known
	// to hold no rows, so RefreshCoordinator.Prepare can skip a redundant
	// Truncate: true when the scratch table was just built, or just
	// drained by Transfer; false as soon as Execute writes a row into it.
	scratchKnownEmpty bool

	// refreshable is true for a view created with REFRESH EVERY: it owns
	// a background refresh.Task. A view without a REFRESH clause is only
	// populated by POPULATE at creation time or by INSERTs forwarded
	// through it; AlterGuard restricts MODIFY REFRESH to refreshable views.
	refreshable bool
	populate    bool
	comment     string

	// targetOwnedExternally is true for a "TO target" view: the target
	// table predates the view and survives its drop. False for a view
	// that built its own inner target table, which Drop must remove.
	targetOwnedExternally bool

	refreshTask *refresh.Task
	interval    time.Duration
}

var _ catalog.ViewHandle = (*MaterializedView)(nil)

// StorageID returns the view's own catalog identity.
func (v *MaterializedView) StorageID() catalog.StorageID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.id
}

// TargetTableID returns the table a read against this view is forwarded
// to, and a refresh cycle ultimately writes into.
func (v *MaterializedView) TargetTableID() catalog.StorageID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.targetID
}

// SourceTableID returns the table the view's defining SELECT reads from.
func (v *MaterializedView) SourceTableID() catalog.StorageID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.desc.Source
}

// Comment returns the view's COMMENT clause text, or "".
func (v *MaterializedView) Comment() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.comment
}

// InnerTables returns the StorageIDs of every table this view owns:
// the target (unless given via TO, in which case the view owns nothing),
// plus the scratch table if it has one. Mirrors the original's
// innerTables(), used there for backup entry collection; here it gives
// an external caller (a future backup/introspection command) the same
// list without reaching into unexported fields.
func (v *MaterializedView) InnerTables() []catalog.StorageID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.targetOwnedExternally {
		if v.hasScratch {
			return []catalog.StorageID{v.scratchID}
		}
		return nil
	}
	ids := []catalog.StorageID{v.targetID}
	if v.hasScratch {
		ids = append(ids, v.scratchID)
	}
	return ids
}

// refreshInterval converts a RefreshClause's unit/value pair into a
// time.Duration, the Go analogue of the original's parseRefreshSchedule.
func refreshInterval(r *parser.RefreshClause) time.Duration {
	unit := time.Second
	switch r.IntervalUnit {
	case "MINUTE":
		unit = time.Minute
	case "HOUR":
		unit = time.Hour
	case "DAY":
		unit = 24 * time.Hour
	}
	return time.Duration(r.IntervalValue) * unit
}

// startRefreshTask (re)starts v's background refresh.Task at interval. If v
// already owns a (stopped) task, its schedule is updated in place via
// AlterRefreshParams rather than discarding it, the Go analogue of the
// original's refresher->alterRefreshParams on a live IRefreshTask. Callers
// hold v.mu for writing; the task's own goroutine is what calls back into v
// under v.mu via RefreshCoordinator.
func (v *MaterializedView) startRefreshTask(interval time.Duration) {
	v.interval = interval
	if v.refreshTask != nil {
		v.refreshTask.AlterRefreshParams(interval)
	} else {
		v.refreshTask = refresh.New(v.id.QualifiedName(), interval, &RefreshCoordinator{view: v})
	}
	v.refreshTask.Start(context.Background())
}

func init() {
	engine.MaterializedViewCreate = createView
	engine.MaterializedViewRead = readView
	engine.MaterializedViewWrite = writeView
	engine.MaterializedViewDrop = dropView
	engine.MaterializedViewTruncate = truncateView
	engine.MaterializedViewRenameTo = renameView
	engine.MaterializedViewAlter = alterView
}
