package mv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vistadb/vistadb/internal/catalog"
	"github.com/vistadb/vistadb/internal/parser"
	"github.com/vistadb/vistadb/internal/storage"
)

func mustParseCreateView(t *testing.T, sql string) *parser.CreateMaterializedViewStmt {
	t.Helper()
	stmt, err := parser.ParseSQL(sql)
	require.NoError(t, err)
	cmv, ok := stmt.(*parser.CreateMaterializedViewStmt)
	require.True(t, ok, "expected CREATE MATERIALIZED VIEW")
	return cmv
}

func TestLifecycleCreateInnerTableView(t *testing.T) {
	cat := newTestCatalog(t)
	createTestTable(t, cat, "events")

	stmt := mustParseCreateView(t, `CREATE MATERIALIZED VIEW events_mv
		(id Int32, value Float64) ENGINE = MergeTree() ORDER BY id
		AS SELECT id, value FROM events`)

	c := NewLifecycleController(cat)
	view, err := c.Create(stmt, false)
	require.NoError(t, err)

	require.False(t, view.targetOwnedExternally)
	require.False(t, view.refreshable)
	_, ok := cat.GetTableByID(view.targetID)
	require.True(t, ok)

	registered, ok := cat.GetView("events_mv")
	require.True(t, ok)
	require.Equal(t, view, registered)

	deps := cat.Dependencies().DependentViews(catalog.TableStorageID(mustGetTable(t, cat, "events")))
	require.Contains(t, deps, view.id)
}

func TestLifecycleCreateToTargetView(t *testing.T) {
	cat := newTestCatalog(t)
	createTestTable(t, cat, "events")
	target := createTestTable(t, cat, "events_rollup")

	stmt := mustParseCreateView(t, `CREATE MATERIALIZED VIEW events_mv TO events_rollup
		AS SELECT id, value FROM events`)

	c := NewLifecycleController(cat)
	view, err := c.Create(stmt, false)
	require.NoError(t, err)

	require.True(t, view.targetOwnedExternally)
	require.False(t, view.hasScratch)
	require.Equal(t, catalog.TableStorageID(target), view.targetID)
}

func TestLifecycleCreateRefreshableViewBuildsScratch(t *testing.T) {
	cat := newTestCatalog(t)
	createTestTable(t, cat, "events")

	stmt := mustParseCreateView(t, `CREATE MATERIALIZED VIEW events_mv
		REFRESH EVERY 1 HOUR
		(id Int32, value Float64) ENGINE = MergeTree() ORDER BY id
		AS SELECT id, value FROM events`)

	c := NewLifecycleController(cat)
	view, err := c.Create(stmt, false)
	require.NoError(t, err)
	defer func() {
		if view.refreshTask != nil {
			view.refreshTask.Stop()
		}
	}()

	require.True(t, view.refreshable)
	require.True(t, view.hasScratch)
	_, ok := cat.GetTableByID(view.scratchID)
	require.True(t, ok)
	require.NotNil(t, view.refreshTask)
}

func TestLifecycleCreateRefreshableAppendViewHasNoScratch(t *testing.T) {
	cat := newTestCatalog(t)
	createTestTable(t, cat, "events")

	stmt := mustParseCreateView(t, `CREATE MATERIALIZED VIEW events_mv
		REFRESH EVERY 1 HOUR APPEND
		(id Int32, value Float64) ENGINE = MergeTree() ORDER BY id
		AS SELECT id, value FROM events`)

	c := NewLifecycleController(cat)
	view, err := c.Create(stmt, false)
	require.NoError(t, err)
	defer func() {
		if view.refreshTask != nil {
			view.refreshTask.Stop()
		}
	}()

	require.False(t, view.hasScratch)
}

func TestLifecycleCreateRejectsTargetWithColumnList(t *testing.T) {
	cat := newTestCatalog(t)
	createTestTable(t, cat, "events")
	createTestTable(t, cat, "events_rollup")

	stmt := &parser.CreateMaterializedViewStmt{
		ViewName:    "events_mv",
		HasTarget:   true,
		TargetTable: "events_rollup",
		Columns:     []parser.ColumnDefNode{{Name: "id", TypeName: "Int32"}},
		Select:      mustParseSelect(t, "SELECT id FROM events"),
	}

	c := NewLifecycleController(cat)
	_, err := c.Create(stmt, false)
	require.Error(t, err)
	var mvErr *Error
	require.ErrorAs(t, err, &mvErr)
	require.Equal(t, KindBadArguments, mvErr.Kind)
}

func TestLifecycleCreateRejectsDictionaryEngineAndLeavesNoPartialState(t *testing.T) {
	cat := newTestCatalog(t)
	createTestTable(t, cat, "events")

	stmt := mustParseCreateView(t, `CREATE MATERIALIZED VIEW events_mv
		REFRESH EVERY 1 HOUR
		(id Int32, value Float64) ENGINE = Dictionary ORDER BY id
		AS SELECT id, value FROM events`)

	c := NewLifecycleController(cat)
	_, err := c.Create(stmt, false)
	require.Error(t, err)

	_, ok := cat.GetView("events_mv")
	require.False(t, ok, "a failed create must not leave a registered view behind")
}

func TestLifecycleDropRemovesOwnedInnerTablesAndDependency(t *testing.T) {
	cat := newTestCatalog(t)
	createTestTable(t, cat, "events")

	stmt := mustParseCreateView(t, `CREATE MATERIALIZED VIEW events_mv
		(id Int32, value Float64) ENGINE = MergeTree() ORDER BY id
		AS SELECT id, value FROM events`)

	c := NewLifecycleController(cat)
	view, err := c.Create(stmt, false)
	require.NoError(t, err)
	targetID := view.targetID

	require.NoError(t, c.Drop(view, false))

	_, ok := cat.GetView("events_mv")
	require.False(t, ok)
	_, ok = cat.GetTableByID(targetID)
	require.False(t, ok)
	require.Empty(t, cat.Dependencies().DependentViews(catalog.TableStorageID(mustGetTable(t, cat, "events"))))
}

func TestLifecycleDropLeavesExternalTargetIntact(t *testing.T) {
	cat := newTestCatalog(t)
	createTestTable(t, cat, "events")
	createTestTable(t, cat, "events_rollup")

	stmt := mustParseCreateView(t, `CREATE MATERIALIZED VIEW events_mv TO events_rollup
		AS SELECT id, value FROM events`)

	c := NewLifecycleController(cat)
	view, err := c.Create(stmt, false)
	require.NoError(t, err)

	require.NoError(t, c.Drop(view, false))
	_, ok := cat.GetTable("events_rollup")
	require.True(t, ok, "TO target must survive DROP VIEW")
}

func TestLifecycleCreateRejectsSelfReferentialTarget(t *testing.T) {
	cat := newTestCatalog(t)
	createTestTable(t, cat, "events")

	stmt := &parser.CreateMaterializedViewStmt{
		ViewName:    "events_mv",
		HasTarget:   true,
		TargetTable: "events_mv",
		Select:      mustParseSelect(t, "SELECT id FROM events"),
	}

	c := NewLifecycleController(cat)
	_, err := c.Create(stmt, false)
	require.Error(t, err)
	var mvErr *Error
	require.ErrorAs(t, err, &mvErr)
	require.Equal(t, KindBadArguments, mvErr.Kind)
}

func TestLifecycleCreateRejectsSelfReferentialSource(t *testing.T) {
	cat := newTestCatalog(t)

	stmt := mustParseCreateView(t, `CREATE MATERIALIZED VIEW events_mv
		(id Int32, value Float64) ENGINE = MergeTree() ORDER BY id
		AS SELECT id, value FROM events_mv`)

	c := NewLifecycleController(cat)
	_, err := c.Create(stmt, false)
	require.Error(t, err)
	var mvErr *Error
	require.ErrorAs(t, err, &mvErr)
	require.Equal(t, KindBadArguments, mvErr.Kind)

	_, ok := cat.GetView("events_mv")
	require.False(t, ok, "a rejected self-referential create must not leave a registered view behind")
}

func TestLifecycleRenameToMovesCatalogEntryAndDependencyEdge(t *testing.T) {
	cat := newTestCatalog(t)
	createTestTable(t, cat, "events")

	stmt := mustParseCreateView(t, `CREATE MATERIALIZED VIEW events_mv
		(id Int32, value Float64) ENGINE = MergeTree() ORDER BY id
		AS SELECT id, value FROM events`)

	c := NewLifecycleController(cat)
	view, err := c.Create(stmt, false)
	require.NoError(t, err)
	require.False(t, view.id.HasUUID(), "this view was created without an explicit UUID clause")
	oldTargetName := MintInnerName(catalog.StorageID{Database: "default", Table: "events_mv"}, innerTarget)

	require.NoError(t, c.RenameTo(view, "events_mv_renamed"))

	_, ok := cat.GetView("events_mv")
	require.False(t, ok)
	registered, ok := cat.GetView("events_mv_renamed")
	require.True(t, ok)
	require.Equal(t, view, registered)

	deps := cat.Dependencies().DependentViews(catalog.TableStorageID(mustGetTable(t, cat, "events")))
	require.Contains(t, deps, view.id)
	require.Equal(t, "events_mv_renamed", view.id.Table)

	_, ok = cat.GetTable(oldTargetName)
	require.False(t, ok, "inner target table must follow a name-based rename")
	newTargetName := MintInnerName(view.id, innerTarget)
	renamedTarget, ok := cat.GetTable(newTargetName)
	require.True(t, ok)
	require.Equal(t, catalog.TableStorageID(renamedTarget), view.targetID)
}

func TestLifecycleRenameToMovesScratchTableToo(t *testing.T) {
	cat := newTestCatalog(t)
	createTestTable(t, cat, "events")

	stmt := mustParseCreateView(t, `CREATE MATERIALIZED VIEW events_mv
		REFRESH EVERY 1 HOUR
		(id Int32, value Float64) ENGINE = MergeTree() ORDER BY id
		AS SELECT id, value FROM events`)

	c := NewLifecycleController(cat)
	view, err := c.Create(stmt, false)
	require.NoError(t, err)
	defer func() {
		if view.refreshTask != nil {
			view.refreshTask.Stop()
		}
	}()
	require.False(t, view.id.HasUUID())

	require.NoError(t, c.RenameTo(view, "events_mv_renamed"))

	newScratchName := MintInnerName(view.id, innerScratch)
	renamedScratch, ok := cat.GetTable(newScratchName)
	require.True(t, ok)
	require.Equal(t, catalog.TableStorageID(renamedScratch), view.scratchID)
}

func TestLifecycleRenameToLeavesExplicitlyOwnedTargetUntouched(t *testing.T) {
	cat := newTestCatalog(t)
	createTestTable(t, cat, "events")
	target := createTestTable(t, cat, "events_rollup")

	stmt := mustParseCreateView(t, `CREATE MATERIALIZED VIEW events_mv TO events_rollup
		AS SELECT id, value FROM events`)

	c := NewLifecycleController(cat)
	view, err := c.Create(stmt, false)
	require.NoError(t, err)

	require.NoError(t, c.RenameTo(view, "events_mv_renamed"))

	_, ok := cat.GetTable("events_rollup")
	require.True(t, ok, "a TO-target view's externally-owned target is never part of a rename")
	require.Equal(t, catalog.TableStorageID(target), view.targetID)
}

func TestLifecycleTruncateEmptiesTargetAndScratch(t *testing.T) {
	cat := newTestCatalog(t)
	createTestTable(t, cat, "events")

	stmt := mustParseCreateView(t, `CREATE MATERIALIZED VIEW events_mv
		REFRESH EVERY 1 HOUR
		(id Int32, value Float64) ENGINE = MergeTree() ORDER BY id
		AS SELECT id, value FROM events`)

	c := NewLifecycleController(cat)
	view, err := c.Create(stmt, false)
	require.NoError(t, err)
	defer func() {
		if view.refreshTask != nil {
			view.refreshTask.Stop()
		}
	}()

	require.NoError(t, c.Truncate(view))
}

func mustGetTable(t *testing.T, cat *catalog.Catalog, name string) *storage.MergeTreeTable {
	t.Helper()
	table, ok := cat.GetTable(name)
	require.True(t, ok)
	return table
}
