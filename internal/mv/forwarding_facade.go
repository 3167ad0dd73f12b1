package mv

import (
	"fmt"

	"github.com/vistadb/vistadb/internal/catalog"
	"github.com/vistadb/vistadb/internal/engine"
	"github.com/vistadb/vistadb/internal/parser"
)

// ForwardingFacade is component C5: it lets the query engine treat a
// materialized view's name as a readable/writable storage without itself
// knowing anything about refresh cycles or inner tables, the Go analogue
// of StorageMaterializedView::read()/write() delegating to getTargetTable().
// Read/Write/TotalRows/GetDataPaths delegate exactly as the original does;
// optimize/mutate/alterPartition/checkMutationIsPossible/backupData/
// restoreDataFromBackup/getActionLock/onActionLockRemove have no Go
// analogue because storage.MergeTreeTable implements none of mutations,
// partition-level ALTER, backup, or action locks, and no parser grammar
// ever produces an OPTIMIZE/mutation/backup statement to route here in the
// first place (see DESIGN.md's C5 entry).
type ForwardingFacade struct {
	view *MaterializedView
	cat  *catalog.Catalog
}

// NewForwardingFacade binds a facade to one view.
func NewForwardingFacade(view *MaterializedView, cat *catalog.Catalog) *ForwardingFacade {
	return &ForwardingFacade{view: view, cat: cat}
}

// Read rewrites stmt to name the view's target table, runs it through the
// engine, and reconciles the result against the view's declared header so
// a target table that has drifted (ALTERed externally, or a TO-target
// table with columns the view never declared) doesn't leak extra columns
// to the caller.
func (f *ForwardingFacade) Read(stmt *parser.SelectStmt) (*engine.ExecuteResult, error) {
	f.view.mu.RLock()
	targetID := f.view.targetID
	declared := f.view.declared
	f.view.mu.RUnlock()

	target, ok := f.cat.GetTableByID(targetID)
	if !ok {
		return nil, newError(KindUnknownStorage, nil, "view %s: target table missing", f.view.id.QualifiedName())
	}

	rewritten := *stmt
	rewritten.From = target.Name
	result, err := engine.Execute(&rewritten, f.cat)
	if err != nil {
		return nil, err
	}

	if !isSelectStar(stmt) || len(declared) == 0 || len(result.Blocks) == 0 {
		return result, nil
	}

	sourceHeader := headerFromBlock(result.Blocks[0], result.ColumnNames)
	plan, err := Plan(sourceHeader, declared)
	if err != nil {
		return nil, fmt.Errorf("mv: reconciling read against view %s: %w", f.view.id.QualifiedName(), err)
	}
	for i, block := range result.Blocks {
		reconciled, err := plan.Apply(block)
		if err != nil {
			return nil, err
		}
		result.Blocks[i] = reconciled
	}
	if plan.Convert {
		result.ColumnNames = plan.ConvertNames
	} else {
		result.ColumnNames = plan.Prune
	}
	return result, nil
}

// isSelectStar reports whether stmt's column list is a bare "*", the only
// shape under which reconciling against the view's full declared header
// makes sense; any explicit projection already names the columns the
// caller wants and must pass through untouched.
func isSelectStar(stmt *parser.SelectStmt) bool {
	if len(stmt.Columns) != 1 {
		return false
	}
	_, ok := stmt.Columns[0].Expr.(*parser.StarExpr)
	return ok
}

// Write forwards a direct INSERT INTO <view> straight to the target table,
// matching ClickHouse's materialized view semantics: an insert aimed at
// the view's own name bypasses its defining SELECT entirely and writes
// into the underlying storage as-is. Only valid for a view whose target it
// owns or was given via TO; there is no separate "insert path" distinct
// from the refresh cycle's write path.
func (f *ForwardingFacade) Write(stmt *parser.InsertStmt) (*engine.ExecuteResult, error) {
	f.view.mu.RLock()
	targetID := f.view.targetID
	f.view.mu.RUnlock()

	target, ok := f.cat.GetTableByID(targetID)
	if !ok {
		return nil, newError(KindUnknownStorage, nil, "view %s: target table missing", f.view.id.QualifiedName())
	}

	rewritten := *stmt
	rewritten.TableName = target.Name
	return engine.Execute(&rewritten, f.cat)
}

// TotalRows delegates to the target table, returning (0, false) if the
// target has disappeared, the Go analogue of the original's totalRows
// returning an empty optional when getTargetTable() comes back null.
func (f *ForwardingFacade) TotalRows() (uint64, bool) {
	f.view.mu.RLock()
	targetID := f.view.targetID
	f.view.mu.RUnlock()

	target, ok := f.cat.GetTableByID(targetID)
	if !ok {
		return 0, false
	}
	return target.TotalRows(), true
}

// GetDataPaths returns the union of the target's and (if present) the
// scratch table's on-disk directories.
func (f *ForwardingFacade) GetDataPaths() []string {
	f.view.mu.RLock()
	targetID := f.view.targetID
	scratchID := f.view.scratchID
	hasScratch := f.view.hasScratch
	f.view.mu.RUnlock()

	var paths []string
	if target, ok := f.cat.GetTableByID(targetID); ok {
		paths = append(paths, target.GetDataPaths()...)
	}
	if hasScratch {
		if scratch, ok := f.cat.GetTableByID(scratchID); ok {
			paths = append(paths, scratch.GetDataPaths()...)
		}
	}
	return paths
}

func readView(handle catalog.ViewHandle, stmt *parser.SelectStmt, cat *catalog.Catalog) (*engine.ExecuteResult, error) {
	view, ok := handle.(*MaterializedView)
	if !ok {
		return nil, newError(KindLogicalError, nil, "view handle is not a vistadb materialized view")
	}
	return NewForwardingFacade(view, cat).Read(stmt)
}

func writeView(handle catalog.ViewHandle, stmt *parser.InsertStmt) (*engine.ExecuteResult, error) {
	view, ok := handle.(*MaterializedView)
	if !ok {
		return nil, newError(KindLogicalError, nil, "view handle is not a vistadb materialized view")
	}
	return NewForwardingFacade(view, view.cat).Write(stmt)
}
