package mv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vistadb/vistadb/internal/column"
	"github.com/vistadb/vistadb/internal/types"
)

func blockOf(t *testing.T, names []string, types_ []types.DataType, rows [][]types.Value) *column.Block {
	t.Helper()
	cols := make([]column.Column, len(names))
	for i, dt := range types_ {
		cols[i] = column.NewColumn(dt)
	}
	for _, row := range rows {
		for i, v := range row {
			cols[i].Append(v)
		}
	}
	return column.NewBlock(names, cols)
}

func TestPlanIdenticalStructureNeedsNoConvert(t *testing.T) {
	source := Header{
		{Name: "id", DataType: types.TypeInt32},
		{Name: "name", DataType: types.TypeString},
	}
	declared := Header{
		{Name: "id", DataType: types.TypeInt32},
		{Name: "name", DataType: types.TypeString},
	}

	plan, err := Plan(source, declared)
	require.NoError(t, err)
	require.False(t, plan.Convert)
	require.Equal(t, []string{"id", "name"}, plan.Prune)
}

func TestPlanPrunesExtraSourceColumns(t *testing.T) {
	source := Header{
		{Name: "id", DataType: types.TypeInt32},
		{Name: "name", DataType: types.TypeString},
		{Name: "scratch_col", DataType: types.TypeFloat64},
	}
	declared := Header{
		{Name: "id", DataType: types.TypeInt32},
		{Name: "name", DataType: types.TypeString},
	}

	plan, err := Plan(source, declared)
	require.NoError(t, err)
	require.Equal(t, []string{"id", "name"}, plan.Prune)
	require.False(t, plan.Convert)
}

func TestPlanReordersWhenDeclaredOrderDiffers(t *testing.T) {
	source := Header{
		{Name: "name", DataType: types.TypeString},
		{Name: "id", DataType: types.TypeInt32},
	}
	declared := Header{
		{Name: "id", DataType: types.TypeInt32},
		{Name: "name", DataType: types.TypeString},
	}

	plan, err := Plan(source, declared)
	require.NoError(t, err)
	require.True(t, plan.Convert)
}

func TestPlanRejectsTypeMismatch(t *testing.T) {
	source := Header{{Name: "id", DataType: types.TypeString}}
	declared := Header{{Name: "id", DataType: types.TypeInt32}}

	_, err := Plan(source, declared)
	require.Error(t, err)
	var mvErr *Error
	require.ErrorAs(t, err, &mvErr)
	require.Equal(t, KindLogicalError, mvErr.Kind)
}

func TestReconciledPlanApplyPrunesAndReorders(t *testing.T) {
	declared := Header{
		{Name: "id", DataType: types.TypeInt32},
		{Name: "name", DataType: types.TypeString},
	}
	source := Header{
		{Name: "name", DataType: types.TypeString},
		{Name: "id", DataType: types.TypeInt32},
		{Name: "extra", DataType: types.TypeFloat64},
	}

	block := blockOf(t,
		[]string{"name", "id", "extra"},
		[]types.DataType{types.TypeString, types.TypeInt32, types.TypeFloat64},
		[][]types.Value{{"alice", int32(1), 3.5}},
	)

	plan, err := Plan(source, declared)
	require.NoError(t, err)
	require.True(t, plan.Convert)

	out, err := plan.Apply(block)
	require.NoError(t, err)
	require.Equal(t, 2, out.NumColumns())

	col, ok := out.GetColumn("id")
	require.True(t, ok)
	require.Equal(t, int32(1), col.Value(0))

	col, ok = out.GetColumn("name")
	require.True(t, ok)
	require.Equal(t, "alice", col.Value(0))
}

func TestReconciledPlanApplyNilBlock(t *testing.T) {
	plan := &ReconciledPlan{}
	out, err := plan.Apply(nil)
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestPlanPrunesDeclaredColumnsSourceLacks(t *testing.T) {
	source := Header{
		{Name: "id", DataType: types.TypeInt32},
	}
	declared := Header{
		{Name: "id", DataType: types.TypeInt32},
		{Name: "dropped_later", DataType: types.TypeFloat64},
	}

	plan, err := Plan(source, declared)
	require.NoError(t, err)
	require.Equal(t, []string{"id"}, plan.Prune)
	require.False(t, plan.Convert)

	block := blockOf(t, []string{"id"}, []types.DataType{types.TypeInt32}, [][]types.Value{{int32(1)}})
	out, err := plan.Apply(block)
	require.NoError(t, err)
	require.Equal(t, 1, out.NumColumns())
}

func TestHeaderNames(t *testing.T) {
	h := Header{
		{Name: "a", DataType: types.TypeInt32},
		{Name: "b", DataType: types.TypeString},
	}
	require.Equal(t, []string{"a", "b"}, h.Names())
}

func TestSameStructure(t *testing.T) {
	a := Header{{Name: "a", DataType: types.TypeInt32}}
	b := Header{{Name: "a", DataType: types.TypeInt32}}
	c := Header{{Name: "a", DataType: types.TypeString}}

	require.True(t, sameStructure(a, b))
	require.False(t, sameStructure(a, c))
	require.False(t, sameStructure(a, Header{}))
}
