package mv

import (
	"fmt"

	"github.com/vistadb/vistadb/internal/catalog"
	"github.com/vistadb/vistadb/internal/parser"
	"github.com/vistadb/vistadb/internal/storage"
	"github.com/vistadb/vistadb/internal/types"
)

// InnerTableBuilder is component C3: it turns the storage clause of a
// CREATE MATERIALIZED VIEW (column list, ENGINE, ORDER BY, PARTITION BY)
// into a real catalog table, named and identified by InnerNameMinter,
// mirroring how the original's StorageMaterializedView constructor calls
// createInnerTable when to_table_id is empty.
type InnerTableBuilder struct {
	cat *catalog.Catalog
}

// NewInnerTableBuilder binds a builder to a catalog.
func NewInnerTableBuilder(cat *catalog.Catalog) *InnerTableBuilder {
	return &InnerTableBuilder{cat: cat}
}

// Build constructs and registers an inner table for viewID, using the
// column/engine/order-by/partition-by clause parsed off the CREATE
// statement. kind selects the target or scratch inner name.
func (b *InnerTableBuilder) Build(viewID catalog.StorageID, stmt *parser.CreateMaterializedViewStmt, kind innerKind) (*storage.MergeTreeTable, Header, error) {
	if len(stmt.Columns) == 0 {
		return nil, nil, newError(KindBadArguments, nil, "materialized view %s: an inner table requires an explicit column list", viewID.QualifiedName())
	}

	engine := stmt.Engine
	if engine == "" {
		engine = "MergeTree"
	}
	features, ok := b.cat.Engines.Lookup(engine)
	if !ok {
		return nil, nil, newError(KindUnknownStorage, nil, "engine %s is not a registered storage engine", engine)
	}
	if features.IsDictionary || features.IsViewVariant {
		return nil, nil, newError(KindBadArguments, nil, "engine %s cannot back a materialized view's inner table", engine)
	}
	// Replicated/partitioned scratch-swap and a non-moving-data scratch engine
	// are out of scope (replicated/partitioned refresh is explicitly rejected);
	// the target-side inner table carries no such restriction.
	if kind == innerScratch {
		if features.IsReplicated {
			return nil, nil, newError(KindNotImplemented, nil, "replicated engine %s cannot back a materialized view's scratch table", engine)
		}
		if features.IsPartitioned || stmt.PartitionBy != nil {
			return nil, nil, newError(KindNotImplemented, nil, "partitioned scratch-swap is not supported")
		}
		if !features.SupportsMovingData {
			return nil, nil, newError(KindNotImplemented, nil, "engine %s does not support the data move a scratch-table refresh requires", engine)
		}
	}

	schema := storage.TableSchema{}
	var header Header
	for _, col := range stmt.Columns {
		dt, err := types.ParseDataType(col.TypeName)
		if err != nil {
			return nil, nil, newError(KindBadArguments, err, "column %s", col.Name)
		}
		cd := storage.ColumnDef{Name: col.Name, DataType: dt}
		schema.Columns = append(schema.Columns, cd)
		header = append(header, cd)
	}
	schema.OrderBy = stmt.OrderBy
	if stmt.PartitionBy != nil {
		schema.PartitionBy = parser.ExprToSQL(stmt.PartitionBy)
	}

	innerID := NewInnerStorageID(viewID, kind)
	table, err := b.cat.CreateInnerTable(innerID, schema)
	if err != nil {
		return nil, nil, fmt.Errorf("mv: creating inner table %s: %w", innerID.QualifiedName(), err)
	}
	table.Engine = engine
	table.UUID = innerID.UUID
	return table, header, nil
}
