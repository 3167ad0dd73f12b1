package engine

import (
	"github.com/vistadb/vistadb/internal/catalog"
	"github.com/vistadb/vistadb/internal/parser"
)

// The materialized-view hooks below let executor.go forward DDL/DML aimed
// at a view name to internal/mv without engine importing it directly (mv
// already imports engine, for Execute and PlanSelect). internal/mv's init()
// assigns every one of these on package load.

// MaterializedViewCreate handles CREATE MATERIALIZED VIEW.
var MaterializedViewCreate func(stmt *parser.CreateMaterializedViewStmt, cat *catalog.Catalog, attach bool) (*ExecuteResult, error)

// MaterializedViewRead handles a SELECT whose FROM names a materialized
// view, forwarding through to the view's target (or inner) table with
// header reconciliation.
var MaterializedViewRead func(view catalog.ViewHandle, stmt *parser.SelectStmt, cat *catalog.Catalog) (*ExecuteResult, error)

// MaterializedViewWrite handles an INSERT whose target names a materialized
// view, forwarding the insert unchanged to the view's target table.
var MaterializedViewWrite func(view catalog.ViewHandle, stmt *parser.InsertStmt) (*ExecuteResult, error)

// MaterializedViewDrop handles DROP TABLE/VIEW naming a materialized view:
// it must drop the view's inner table(s) before removing the catalog entry.
var MaterializedViewDrop func(view catalog.ViewHandle, cat *catalog.Catalog, ifExists bool) error

// MaterializedViewTruncate handles TRUNCATE TABLE naming a materialized
// view, forwarding to its target (and scratch, if refreshable).
var MaterializedViewTruncate func(view catalog.ViewHandle, cat *catalog.Catalog) error

// MaterializedViewRenameTo handles RENAME TABLE naming a materialized view.
var MaterializedViewRenameTo func(view catalog.ViewHandle, cat *catalog.Catalog, newName string) error

// MaterializedViewAlter handles ALTER TABLE ... MODIFY QUERY/MODIFY REFRESH/
// comment-alter against a materialized view.
var MaterializedViewAlter func(view catalog.ViewHandle, cat *catalog.Catalog, stmt *parser.AlterTableStmt) error
