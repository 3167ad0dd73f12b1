package catalog

import (
	"log"
	"os"
	"path/filepath"

	"github.com/vistadb/vistadb/internal/storage"
)

// TableStorageID builds a catalog.StorageID out of a physical table's primitive
// identity fields, letting storage stay ignorant of the catalog package.
func TableStorageID(t *storage.MergeTreeTable) StorageID {
	db, name, uuid := t.Identity()
	return StorageID{Database: db, Table: name, UUID: uuid}
}

func saveTableSchema(tableDir string, schema *storage.TableSchema) error {
	return storage.SaveTableSchema(tableDir, schema)
}

// loadDatabase scans db.DataDir for table directories (each holding a
// schema.json) and reconstructs tables and their parts, the catalog-level
// counterpart of the teacher's Database.LoadMetadata.
func (c *Catalog) loadDatabase(db *Database) error {
	entries, err := os.ReadDir(db.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		tableName := entry.Name()
		tableDir := filepath.Join(db.DataDir, tableName)

		schema, err := storage.LoadTableSchema(tableDir)
		if err != nil {
			continue // not a table directory
		}
		table := storage.NewMergeTreeTable(tableName, *schema, tableDir)
		table.Database = db.Name
		if err := table.LoadParts(); err != nil {
			log.Printf("[catalog] loading parts for %s.%s: %v", db.Name, tableName, err)
		}
		db.mu.Lock()
		db.tables[tableName] = table
		db.mu.Unlock()
	}
	return nil
}
