package engine

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/vistadb/vistadb/internal/catalog"
	"github.com/vistadb/vistadb/internal/column"
	"github.com/vistadb/vistadb/internal/parser"
	"github.com/vistadb/vistadb/internal/storage"
	"github.com/vistadb/vistadb/internal/types"
)

// SelectExecutor is a hook for replacing the SELECT execution path.
// When set, executeSelect delegates to this function instead of using
// the pull-based operator tree. This is used to wire in the push-based
// processor pipeline without creating an import cycle.
var SelectExecutor func(stmt *parser.SelectStmt, db *catalog.Catalog) (*ExecuteResult, error)

// ExecuteResult holds the result of executing a statement.
type ExecuteResult struct {
	Blocks      []*column.Block
	ColumnNames []string
	Message     string // for DDL statements
}

// Execute runs a parsed statement against the catalog.
func Execute(stmt parser.Statement, cat *catalog.Catalog) (*ExecuteResult, error) {
	switch s := stmt.(type) {
	case *parser.CreateTableStmt:
		return executeCreate(s, cat)
	case *parser.CreateMaterializedViewStmt:
		return executeCreateView(s, cat)
	case *parser.InsertStmt:
		return executeInsert(s, cat)
	case *parser.SelectStmt:
		return executeSelect(s, cat)
	case *parser.DropTableStmt:
		return executeDrop(s, cat)
	case *parser.RenameTableStmt:
		return executeRename(s, cat)
	case *parser.TruncateTableStmt:
		return executeTruncate(s, cat)
	case *parser.AlterTableStmt:
		return executeAlter(s, cat)
	case *parser.ShowTablesStmt:
		return executeShowTables(cat)
	default:
		return nil, fmt.Errorf("unsupported statement type: %T", stmt)
	}
}

func executeCreate(stmt *parser.CreateTableStmt, cat *catalog.Catalog) (*ExecuteResult, error) {
	schema := storage.TableSchema{
		OrderBy:     stmt.OrderBy,
		PartitionBy: ExprToSQLIfSet(stmt.PartitionBy),
	}

	for _, col := range stmt.Columns {
		dt, err := types.ParseDataType(col.TypeName)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		schema.Columns = append(schema.Columns, storage.ColumnDef{Name: col.Name, DataType: dt})
	}

	id := catalog.StorageID{Database: "default", Table: stmt.TableName}
	_, err := cat.CreateTable(id, schema, stmt.IfNotExists)
	if err != nil {
		if stmt.IfNotExists {
			return &ExecuteResult{Message: "OK"}, nil
		}
		return nil, err
	}
	return &ExecuteResult{Message: "OK"}, nil
}

// ExprToSQLIfSet renders a possibly-nil PARTITION BY expression.
func ExprToSQLIfSet(expr parser.Expression) string {
	if expr == nil {
		return ""
	}
	return parser.ExprToSQL(expr)
}

// executeCreateView dispatches CREATE MATERIALIZED VIEW to whatever package
// wired MaterializedViewCreate (internal/mv, via its init()).
func executeCreateView(stmt *parser.CreateMaterializedViewStmt, cat *catalog.Catalog) (*ExecuteResult, error) {
	if MaterializedViewCreate == nil {
		return nil, fmt.Errorf("materialized view support not wired")
	}
	return MaterializedViewCreate(stmt, cat, false)
}

func executeInsert(stmt *parser.InsertStmt, cat *catalog.Catalog) (*ExecuteResult, error) {
	if view, ok := cat.GetView(stmt.TableName); ok {
		if MaterializedViewWrite == nil {
			return nil, fmt.Errorf("materialized view support not wired")
		}
		return executeInsertIntoView(stmt, view)
	}

	table, ok := cat.GetTable(stmt.TableName)
	if !ok {
		return nil, fmt.Errorf("table %s not found", stmt.TableName)
	}

	// Determine column order
	colNames := stmt.Columns
	if len(colNames) == 0 {
		colNames = table.Schema.ColumnNames()
	}

	// Validate column count
	for i, row := range stmt.Values {
		if len(row) != len(colNames) {
			return nil, fmt.Errorf("row %d: expected %d values, got %d", i, len(colNames), len(row))
		}
	}

	// Create columns
	cols := make([]column.Column, len(colNames))
	for i, name := range colNames {
		colDef, ok := table.Schema.GetColumnDef(name)
		if !ok {
			return nil, fmt.Errorf("column %s not found in table %s", name, stmt.TableName)
		}
		cols[i] = column.NewColumnWithCapacity(colDef.DataType, len(stmt.Values))
	}

	// Convert literal values and populate columns
	for rowIdx, row := range stmt.Values {
		for colIdx, expr := range row {
			colDef, _ := table.Schema.GetColumnDef(colNames[colIdx])
			val, err := convertLiteralToType(expr, colDef.DataType)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", rowIdx, colNames[colIdx], err)
			}
			cols[colIdx].Append(val)
		}
	}

	block := column.NewBlock(colNames, cols)
	if err := table.Insert(block); err != nil {
		return nil, err
	}

	return &ExecuteResult{Message: fmt.Sprintf("OK. %d rows inserted.", len(stmt.Values))}, nil
}

func executeSelect(stmt *parser.SelectStmt, cat *catalog.Catalog) (*ExecuteResult, error) {
	if view, ok := cat.GetView(stmt.From); ok {
		if MaterializedViewRead == nil {
			return nil, fmt.Errorf("materialized view support not wired")
		}
		return MaterializedViewRead(view, stmt, cat)
	}

	// Use push-based processor pipeline if wired.
	if SelectExecutor != nil {
		return SelectExecutor(stmt, cat)
	}

	// Fallback: pull-based operator tree.
	op, outNames, err := PlanSelect(stmt, cat)
	if err != nil {
		return nil, err
	}

	if err := op.Open(); err != nil {
		return nil, err
	}
	defer op.Close()

	var blocks []*column.Block
	for {
		block, err := op.Next()
		if err != nil {
			return nil, err
		}
		if block == nil {
			break
		}
		if block.NumColumns() > 0 && len(outNames) != block.NumColumns() {
			outNames = block.ColumnNames
		}
		blocks = append(blocks, block)
	}

	return &ExecuteResult{Blocks: blocks, ColumnNames: outNames}, nil
}

// executeInsertIntoView delegates an INSERT targeting a materialized view's
// name to MaterializedViewWrite, which decides (per the view's engine
// variant) whether that means writing through to the target table.
func executeInsertIntoView(stmt *parser.InsertStmt, view catalog.ViewHandle) (*ExecuteResult, error) {
	return MaterializedViewWrite(view, stmt)
}

func executeDrop(stmt *parser.DropTableStmt, cat *catalog.Catalog) (*ExecuteResult, error) {
	if view, ok := cat.GetView(stmt.TableName); ok {
		if MaterializedViewDrop == nil {
			return nil, fmt.Errorf("materialized view support not wired")
		}
		if err := MaterializedViewDrop(view, cat, stmt.IfExists); err != nil {
			return nil, err
		}
		return &ExecuteResult{Message: "OK"}, nil
	}

	err := cat.DropTable(stmt.TableName, stmt.IfExists)
	if err != nil {
		if stmt.IfExists {
			return &ExecuteResult{Message: "OK"}, nil
		}
		return nil, err
	}
	return &ExecuteResult{Message: "OK"}, nil
}

// executeRename handles RENAME TABLE, including the case where the name
// being renamed is a materialized view rather than a plain table.
func executeRename(stmt *parser.RenameTableStmt, cat *catalog.Catalog) (*ExecuteResult, error) {
	if view, ok := cat.GetView(stmt.OldName); ok {
		if MaterializedViewRenameTo == nil {
			return nil, fmt.Errorf("materialized view support not wired")
		}
		if err := MaterializedViewRenameTo(view, cat, stmt.NewName); err != nil {
			return nil, err
		}
		return &ExecuteResult{Message: "OK"}, nil
	}
	if err := cat.RenameTable(stmt.OldName, stmt.NewName); err != nil {
		return nil, err
	}
	return &ExecuteResult{Message: "OK"}, nil
}

// executeTruncate handles TRUNCATE TABLE. Truncating a materialized view
// truncates its target (and scratch, if any), mirroring the original's
// truncate() forwarding to the inner storage.
func executeTruncate(stmt *parser.TruncateTableStmt, cat *catalog.Catalog) (*ExecuteResult, error) {
	if view, ok := cat.GetView(stmt.TableName); ok {
		if MaterializedViewTruncate == nil {
			return nil, fmt.Errorf("materialized view support not wired")
		}
		if err := MaterializedViewTruncate(view, cat); err != nil {
			return nil, err
		}
		return &ExecuteResult{Message: "OK"}, nil
	}
	if err := cat.TruncateTable(stmt.TableName); err != nil {
		return nil, err
	}
	return &ExecuteResult{Message: "OK"}, nil
}

// executeAlter handles ALTER TABLE ... MODIFY QUERY/MODIFY REFRESH/comment,
// the three ALTER forms vistadb supports against a materialized view.
func executeAlter(stmt *parser.AlterTableStmt, cat *catalog.Catalog) (*ExecuteResult, error) {
	view, ok := cat.GetView(stmt.TableName)
	if !ok {
		return nil, fmt.Errorf("%s is not a materialized view", stmt.TableName)
	}
	if MaterializedViewAlter == nil {
		return nil, fmt.Errorf("materialized view support not wired")
	}
	if err := MaterializedViewAlter(view, cat, stmt); err != nil {
		return nil, err
	}
	return &ExecuteResult{Message: "OK"}, nil
}

func executeShowTables(cat *catalog.Catalog) (*ExecuteResult, error) {
	names := cat.TableNames()
	sort.Strings(names)

	col := &column.StringColumn{Data: names}
	block := column.NewBlock([]string{"name"}, []column.Column{col})
	return &ExecuteResult{
		Blocks:      []*column.Block{block},
		ColumnNames: []string{"name"},
	}, nil
}

// convertLiteralToType converts a parser expression (literal) to a typed value.
func convertLiteralToType(expr parser.Expression, dt types.DataType) (types.Value, error) {
	lit, ok := expr.(*parser.LiteralExpr)
	if !ok {
		// Could be a unary minus
		if unary, ok := expr.(*parser.UnaryExpr); ok && unary.Op == "-" {
			inner, err := convertLiteralToType(unary.Expr, dt)
			if err != nil {
				return nil, err
			}
			return negateValue(inner, dt)
		}
		return nil, fmt.Errorf("expected literal value, got %T", expr)
	}

	switch dt {
	case types.TypeUInt8:
		n, err := toInt64FromLiteral(lit.Value)
		if err != nil {
			return nil, err
		}
		return uint8(n), nil
	case types.TypeUInt16:
		n, err := toInt64FromLiteral(lit.Value)
		if err != nil {
			return nil, err
		}
		return uint16(n), nil
	case types.TypeUInt32:
		n, err := toInt64FromLiteral(lit.Value)
		if err != nil {
			return nil, err
		}
		return uint32(n), nil
	case types.TypeUInt64:
		n, err := toInt64FromLiteral(lit.Value)
		if err != nil {
			return nil, err
		}
		return uint64(n), nil
	case types.TypeInt8:
		n, err := toInt64FromLiteral(lit.Value)
		if err != nil {
			return nil, err
		}
		return int8(n), nil
	case types.TypeInt16:
		n, err := toInt64FromLiteral(lit.Value)
		if err != nil {
			return nil, err
		}
		return int16(n), nil
	case types.TypeInt32:
		n, err := toInt64FromLiteral(lit.Value)
		if err != nil {
			return nil, err
		}
		return int32(n), nil
	case types.TypeInt64:
		n, err := toInt64FromLiteral(lit.Value)
		if err != nil {
			return nil, err
		}
		return n, nil
	case types.TypeFloat32:
		f, err := toFloat64FromLiteral(lit.Value)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	case types.TypeFloat64:
		f, err := toFloat64FromLiteral(lit.Value)
		if err != nil {
			return nil, err
		}
		return f, nil
	case types.TypeString:
		return fmt.Sprintf("%v", lit.Value), nil
	case types.TypeDateTime:
		n, err := toInt64FromLiteral(lit.Value)
		if err != nil {
			return nil, err
		}
		return uint32(n), nil
	default:
		return nil, fmt.Errorf("unsupported type conversion for %s", dt.Name())
	}
}

func toInt64FromLiteral(v interface{}) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case float64:
		return int64(val), nil
	case string:
		return strconv.ParseInt(val, 10, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to int64", v)
	}
}

func toFloat64FromLiteral(v interface{}) (float64, error) {
	switch val := v.(type) {
	case int64:
		return float64(val), nil
	case float64:
		return val, nil
	case string:
		return strconv.ParseFloat(val, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", v)
	}
}

func negateValue(v types.Value, dt types.DataType) (types.Value, error) {
	switch dt {
	case types.TypeInt8:
		return -v.(int8), nil
	case types.TypeInt16:
		return -v.(int16), nil
	case types.TypeInt32:
		return -v.(int32), nil
	case types.TypeInt64:
		return -v.(int64), nil
	case types.TypeFloat32:
		return -v.(float32), nil
	case types.TypeFloat64:
		return -v.(float64), nil
	default:
		return nil, fmt.Errorf("cannot negate %s type", dt.Name())
	}
}
