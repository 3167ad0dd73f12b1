package mv

import (
	"fmt"

	"github.com/vistadb/vistadb/internal/catalog"
	"github.com/vistadb/vistadb/internal/parser"
)

// SelectDescription pairs the view's defining SELECT with the source table
// it reads from, letting the CatalogDependencyBinder and RefreshCoordinator
// work from a single resolved object instead of re-parsing stmt.From every
// time. Mirrors the original's StorageMaterializedView::select_query
// member (a ASTPtr plus the resolved source StorageID).
type SelectDescription struct {
	Query  *parser.SelectStmt
	Source catalog.StorageID
}

// NewSelectDescription resolves stmt.From against cat and returns the
// description, or a KindUnknownStorage error if the source does not exist
// (the original requires the source to exist at CREATE time unless the
// statement is an ATTACH replaying metadata).
func NewSelectDescription(stmt *parser.SelectStmt, cat *catalog.Catalog, allowMissingSource bool) (*SelectDescription, error) {
	if stmt == nil {
		return nil, newError(KindBadArguments, nil, "materialized view requires an AS SELECT query")
	}
	var sourceID catalog.StorageID
	if t, ok := cat.GetTable(stmt.From); ok {
		sourceID = catalog.TableStorageID(t)
	} else if v, ok := cat.GetView(stmt.From); ok {
		sourceID = v.StorageID()
	} else if !allowMissingSource {
		return nil, newError(KindUnknownStorage, nil, "source table %q does not exist", stmt.From)
	} else {
		db, table := splitQualified(stmt.From)
		sourceID = catalog.StorageID{Database: db, Table: table}
	}
	return &SelectDescription{Query: stmt, Source: sourceID}, nil
}

// RewriteFor clones the query with From replaced by table, used by
// RefreshCoordinator.Prepare to point the view's defining SELECT at the
// source table's current name before generating the refresh query text.
func (d *SelectDescription) RewriteFor(table string) *parser.SelectStmt {
	clone := *d.Query
	clone.From = table
	return &clone
}

func (d *SelectDescription) String() string {
	return fmt.Sprintf("SELECT ... FROM %s", d.Source.QualifiedName())
}

// splitQualified is a local copy of catalog's unexported split, needed here
// because SelectDescription may be built before the source table exists
// (ATTACH replay against metadata describing a since-dropped source).
func splitQualified(name string) (string, string) {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i], name[i+1:]
		}
	}
	return "default", name
}
