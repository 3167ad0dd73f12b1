package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/vistadb/vistadb/internal/types"
)

// ColumnDef defines a column in a table schema.
type ColumnDef struct {
	Name             string
	DataType         types.DataType
	IsLowCardinality bool
}

// TableSchema defines the schema and engine settings for a MergeTree table.
type TableSchema struct {
	Columns     []ColumnDef
	OrderBy     []string // primary key column names (ORDER BY clause)
	PartitionBy string   // single column name or empty
	GranuleSize int      // rows per granule, default 8192
}

// GetColumnDef returns the ColumnDef for a column name.
func (s *TableSchema) GetColumnDef(name string) (ColumnDef, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// ColumnNames returns all column names in order.
func (s *TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// EffectiveGranuleSize returns the granule size, defaulting to 8192.
func (s *TableSchema) EffectiveGranuleSize() int {
	if s.GranuleSize <= 0 {
		return DefaultGranuleSize
	}
	return s.GranuleSize
}

// tableSchemaJSON is the on-disk representation of a table schema.
type tableSchemaJSON struct {
	Columns []struct {
		Name     string `json:"name"`
		DataType string `json:"data_type"`
	} `json:"columns"`
	OrderBy     []string `json:"order_by"`
	PartitionBy string   `json:"partition_by,omitempty"`
	GranuleSize int      `json:"granule_size"`
}

// SaveTableSchema writes schema.json into tableDir.
func SaveTableSchema(tableDir string, schema *TableSchema) error {
	j := tableSchemaJSON{
		OrderBy:     schema.OrderBy,
		PartitionBy: schema.PartitionBy,
		GranuleSize: schema.EffectiveGranuleSize(),
	}
	for _, c := range schema.Columns {
		j.Columns = append(j.Columns, struct {
			Name     string `json:"name"`
			DataType string `json:"data_type"`
		}{Name: c.Name, DataType: c.DataType.Name()})
	}
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(tableDir, "schema.json"), data, 0644)
}

// LoadTableSchema reads schema.json out of tableDir.
func LoadTableSchema(tableDir string) (*TableSchema, error) {
	data, err := os.ReadFile(filepath.Join(tableDir, "schema.json"))
	if err != nil {
		return nil, err
	}
	var j tableSchemaJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	schema := &TableSchema{OrderBy: j.OrderBy, PartitionBy: j.PartitionBy, GranuleSize: j.GranuleSize}
	for _, c := range j.Columns {
		dt, err := types.ParseDataType(c.DataType)
		if err != nil {
			return nil, err
		}
		schema.Columns = append(schema.Columns, ColumnDef{Name: c.Name, DataType: dt})
	}
	return schema, nil
}
