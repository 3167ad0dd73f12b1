package mv

import (
	"context"
	"fmt"
	"log"

	"github.com/vistadb/vistadb/internal/catalog"
	"github.com/vistadb/vistadb/internal/column"
	"github.com/vistadb/vistadb/internal/engine"
	"github.com/vistadb/vistadb/internal/parser"
	"github.com/vistadb/vistadb/internal/refresh"
	"github.com/vistadb/vistadb/internal/storage"
)

type refreshContextKey struct{}

// newRefreshContext clones ctx carrying a synthetic query id, the Go
// analogue of the original's createRefreshContext resetting the client
// query id before a refresh cycle so the cycle's own SELECT doesn't get
// attributed to whichever client happened to trigger it. The id is pulled
// back out for the [mv] log line below, since engine.Execute takes no
// context to propagate it through.
func newRefreshContext(ctx context.Context, viewName string) context.Context {
	return context.WithValue(ctx, refreshContextKey{}, fmt.Sprintf("refresh:%s", viewName))
}

func refreshQueryID(ctx context.Context) string {
	id, _ := ctx.Value(refreshContextKey{}).(string)
	return id
}

// RefreshCoordinator is component C8: it implements refresh.Cycle for one
// view, driving prepareRefresh/transferRefreshedData against the catalog
// and engine exactly as the original's RefreshTask does against IStorage.
// Unlike a plain forwarded INSERT, a refresh cycle runs the view's defining
// SELECT itself and writes the result blocks straight into the write
// target via HeaderReconciler, because vistadb's INSERT statement has no
// INSERT ... SELECT form to hand this off to.
type RefreshCoordinator struct {
	view *MaterializedView
}

var _ refresh.Cycle = (*RefreshCoordinator)(nil)

// Prepare truncates the scratch table unless it is already known to be
// empty (an APPEND view has no scratch table, so nothing is truncated) and
// returns the SELECT text the caller must run against an
// external executor next, mirroring prepareRefresh's contract: "truncates
// the scratch table, returns the insert query; if the insert fails, the
// next prepareRefresh truncates again."
func (c *RefreshCoordinator) Prepare(ctx context.Context) (string, error) {
	v := c.view
	v.mu.RLock()
	ensureSourceIdentityCurrent(v.cat, v.desc)
	sourceName := v.desc.Source.QualifiedName()
	hasScratch := v.hasScratch
	scratchID := v.scratchID
	knownEmpty := v.scratchKnownEmpty
	v.mu.RUnlock()

	if hasScratch && !knownEmpty {
		scratch, ok := v.cat.GetTableByID(scratchID)
		if !ok {
			return "", newError(KindLogicalError, nil, "view %s: scratch table missing", v.id.QualifiedName())
		}
		if err := scratch.Truncate(); err != nil {
			return "", fmt.Errorf("mv: truncating scratch table: %w", err)
		}
		v.mu.Lock()
		v.scratchKnownEmpty = true
		v.mu.Unlock()
	}

	return parser.SelectToSQL(v.desc.RewriteFor(sourceName)), nil
}

// Execute runs the SELECT produced by Prepare, reconciles its output
// against the write target's declared header, and writes the resulting
// blocks directly into the write target (the scratch table, or the target
// itself for an APPEND view). This plays the role the original leaves to
// the InterpreterInsertQuery executing the generated "external" query.
func (c *RefreshCoordinator) Execute(ctx context.Context, selectSQL string) error {
	ctx = newRefreshContext(ctx, c.view.id.QualifiedName())
	log.Printf("[mv] %s: running refresh select", refreshQueryID(ctx))

	stmt, err := parser.ParseSQL(selectSQL)
	if err != nil {
		return fmt.Errorf("mv: parsing generated refresh select: %w", err)
	}
	selectStmt, ok := stmt.(*parser.SelectStmt)
	if !ok {
		return newError(KindLogicalError, nil, "view %s: generated refresh query is not a SELECT", c.view.id.QualifiedName())
	}

	result, err := engine.Execute(selectStmt, c.view.cat)
	if err != nil {
		return err
	}

	v := c.view
	v.mu.RLock()
	writingScratch := v.hasScratch
	writeTarget := v.targetID
	if writingScratch {
		writeTarget = v.scratchID
	}
	declared := v.declared
	v.mu.RUnlock()

	dest, ok := v.cat.GetTableByID(writeTarget)
	if !ok {
		return newError(KindLogicalError, nil, "view %s: write target missing", v.id.QualifiedName())
	}

	for _, block := range result.Blocks {
		sourceHeader := headerFromBlock(block, result.ColumnNames)
		plan, err := Plan(sourceHeader, declared)
		if err != nil {
			return fmt.Errorf("mv: reconciling refresh output for view %s: %w", v.id.QualifiedName(), err)
		}
		reconciled, err := plan.Apply(block)
		if err != nil {
			return err
		}
		if reconciled == nil {
			continue
		}
		if err := dest.Insert(reconciled); err != nil {
			return fmt.Errorf("mv: writing refreshed rows for view %s: %w", v.id.QualifiedName(), err)
		}
		if writingScratch {
			v.mu.Lock()
			v.scratchKnownEmpty = false
			v.mu.Unlock()
		}
	}
	return nil
}

// headerFromBlock reconstructs the Header a result block carries, reading
// each column's concrete type off the block itself rather than any schema,
// since a SELECT's projected output (aliases, computed columns) need not
// match any table's stored schema.
func headerFromBlock(block *column.Block, names []string) Header {
	h := make(Header, 0, len(names))
	for _, name := range names {
		col, ok := block.GetColumn(name)
		if !ok {
			continue
		}
		h = append(h, storage.ColumnDef{Name: name, DataType: col.DataType()})
	}
	return h
}

// Transfer moves the scratch table's rows into the target
// (transferRefreshedData in the original), a no-op for an APPEND view with
// no scratch table.
func (c *RefreshCoordinator) Transfer(ctx context.Context) error {
	v := c.view
	v.mu.RLock()
	hasScratch := v.hasScratch
	targetID := v.targetID
	scratchID := v.scratchID
	v.mu.RUnlock()

	if !hasScratch {
		return nil
	}
	target, ok := v.cat.GetTableByID(targetID)
	if !ok {
		return newError(KindLogicalError, nil, "view %s: target table missing", v.id.QualifiedName())
	}
	scratch, ok := v.cat.GetTableByID(scratchID)
	if !ok {
		return newError(KindLogicalError, nil, "view %s: scratch table missing", v.id.QualifiedName())
	}
	if err := target.TransferAllDataFrom(scratch); err != nil {
		return err
	}
	v.mu.Lock()
	v.scratchKnownEmpty = true
	v.mu.Unlock()
	return nil
}

// ensureSourceIdentityCurrent re-resolves the source by name, in case the
// source table itself was renamed since the view was created; the
// dependency graph already tracks renames via DependencyBinder.Rebind, but
// the SelectDescription's cached From clause is rewritten here so the
// generated SELECT always names the source's current identity.
func ensureSourceIdentityCurrent(cat *catalog.Catalog, desc *SelectDescription) {
	if t, ok := cat.GetTableByID(desc.Source); ok {
		desc.Query.From = t.Name
	}
}
