package mv

import (
	"fmt"

	"github.com/vistadb/vistadb/internal/column"
	"github.com/vistadb/vistadb/internal/storage"
)

// Header is a view or table's column list, the unit HeaderReconciler
// compares and converts between.
type Header []storage.ColumnDef

// Names returns the header's column names in order.
func (h Header) Names() []string {
	names := make([]string, len(h))
	for i, c := range h {
		names[i] = c.Name
	}
	return names
}

// sameStructure reports whether two headers have identical (name, type)
// pairs in the same order, the original's blocksHaveEqualStructure used to
// decide whether a converting step is needed at all.
func sameStructure(a, b Header) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].DataType != b[i].DataType {
			return false
		}
	}
	return true
}

// ReconciledPlan is the HeaderReconciler's result (spec.md §4.2): given the
// header a query actually produced (source) and the header the view
// declares (declared), Plan returns the block-shaping steps a
// ForwardingFacade.Read must apply, in order:
//
//  1. Prune: keep only the columns common to both sides, dropping anything
//     source has that declared does not name AND anything declared names
//     that source does not have (removeNonCommonColumns in the original
//     prunes symmetrically — a target table is allowed to carry extra
//     columns the view's SELECT never produces, and a declared header is
//     allowed to outlive a column a since-ALTERed source dropped).
//  2. Convert: if after pruning the remaining structure doesn't already
//     match declared order, reorder the columns by name into declared's
//     order. vistadb has no implicit numeric casts, so a type mismatch that
//     survives pruning is reported as an error rather than silently cast.
type ReconciledPlan struct {
	Prune        []string // source column names to keep, in source order
	ConvertNames []string // common columns, in declared order; used only when Convert is true
	Convert      bool     // true if a post-prune Convert (reorder to declared) is needed
}

// Plan computes the reconciliation plan for converting a block shaped like
// source into one shaped like declared, pruning both sides down to their
// common columns.
func Plan(source, declared Header) (*ReconciledPlan, error) {
	sourceByName := make(map[string]storage.ColumnDef, len(source))
	for _, c := range source {
		sourceByName[c.Name] = c
	}
	declaredByName := make(map[string]storage.ColumnDef, len(declared))
	for _, c := range declared {
		declaredByName[c.Name] = c
	}

	var kept []string
	for _, c := range source {
		if _, ok := declaredByName[c.Name]; ok {
			kept = append(kept, c.Name)
		}
	}
	var convertNames []string
	for _, c := range declared {
		if _, ok := sourceByName[c.Name]; ok {
			convertNames = append(convertNames, c.Name)
		}
	}

	prunedHeader := make(Header, 0, len(kept))
	for _, name := range kept {
		prunedHeader = append(prunedHeader, sourceByName[name])
	}
	convertedHeader := make(Header, 0, len(convertNames))
	for _, name := range convertNames {
		convertedHeader = append(convertedHeader, declaredByName[name])
	}

	for _, c := range prunedHeader {
		d := declaredByName[c.Name]
		if d.DataType != c.DataType {
			return nil, newError(KindLogicalError, nil,
				"column %s: query produced type %s, view declares %s", c.Name, c.DataType.Name(), d.DataType.Name())
		}
	}

	return &ReconciledPlan{
		Prune:        kept,
		ConvertNames: convertNames,
		Convert:      !sameStructure(prunedHeader, convertedHeader),
	}, nil
}

// Apply runs a ReconciledPlan's pruning/reordering step over a block.
func (p *ReconciledPlan) Apply(block *column.Block) (*column.Block, error) {
	if block == nil {
		return nil, nil
	}
	pruned, err := block.SelectColumns(p.Prune)
	if err != nil {
		return nil, fmt.Errorf("mv: pruning to common header: %w", err)
	}
	if !p.Convert {
		return pruned, nil
	}
	return pruned.SelectColumns(p.ConvertNames)
}
