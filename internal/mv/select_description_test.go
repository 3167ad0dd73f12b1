package mv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vistadb/vistadb/internal/catalog"
	"github.com/vistadb/vistadb/internal/parser"
	"github.com/vistadb/vistadb/internal/storage"
	"github.com/vistadb/vistadb/internal/types"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.NewCatalog(t.TempDir())
	require.NoError(t, err)
	return cat
}

func createTestTable(t *testing.T, cat *catalog.Catalog, name string) *storage.MergeTreeTable {
	t.Helper()
	schema := storage.TableSchema{
		Columns: []storage.ColumnDef{
			{Name: "id", DataType: types.TypeInt32},
			{Name: "value", DataType: types.TypeFloat64},
		},
		OrderBy: []string{"id"},
	}
	table, err := cat.CreateTable(catalog.StorageID{Database: "default", Table: name}, schema, false)
	require.NoError(t, err)
	return table
}

func mustParseSelect(t *testing.T, sql string) *parser.SelectStmt {
	t.Helper()
	stmt, err := parser.ParseSQL(sql)
	require.NoError(t, err)
	sel, ok := stmt.(*parser.SelectStmt)
	require.True(t, ok, "expected a SELECT statement")
	return sel
}

func TestNewSelectDescriptionResolvesSourceTable(t *testing.T) {
	cat := newTestCatalog(t)
	table := createTestTable(t, cat, "events")

	sel := mustParseSelect(t, "SELECT * FROM events")
	desc, err := NewSelectDescription(sel, cat, false)
	require.NoError(t, err)
	require.Equal(t, catalog.TableStorageID(table), desc.Source)
}

func TestNewSelectDescriptionUnknownSourceErrors(t *testing.T) {
	cat := newTestCatalog(t)
	sel := mustParseSelect(t, "SELECT * FROM missing")

	_, err := NewSelectDescription(sel, cat, false)
	require.Error(t, err)
	var mvErr *Error
	require.ErrorAs(t, err, &mvErr)
	require.Equal(t, KindUnknownStorage, mvErr.Kind)
}

func TestNewSelectDescriptionAllowsMissingSourceOnAttach(t *testing.T) {
	cat := newTestCatalog(t)
	sel := mustParseSelect(t, "SELECT * FROM gone")

	desc, err := NewSelectDescription(sel, cat, true)
	require.NoError(t, err)
	require.Equal(t, "default", desc.Source.Database)
	require.Equal(t, "gone", desc.Source.Table)
}

func TestNewSelectDescriptionNilQuery(t *testing.T) {
	cat := newTestCatalog(t)
	_, err := NewSelectDescription(nil, cat, false)
	require.Error(t, err)
}

func TestSelectDescriptionRewriteFor(t *testing.T) {
	cat := newTestCatalog(t)
	createTestTable(t, cat, "events")

	sel := mustParseSelect(t, "SELECT * FROM events")
	desc, err := NewSelectDescription(sel, cat, false)
	require.NoError(t, err)

	rewritten := desc.RewriteFor("events_2")
	require.Equal(t, "events_2", rewritten.From)
	require.Equal(t, "events", desc.Query.From, "original query must not be mutated")
}
