package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vistadb/vistadb/internal/storage"
)

// ViewHandle is the minimal surface the query engine needs to recognize and
// forward to a materialized view without importing internal/mv: its
// identity, the table it is defined against, and the table it writes into.
// internal/mv.MaterializedView implements this.
type ViewHandle interface {
	StorageID() StorageID
	TargetTableID() StorageID
	SourceTableID() StorageID
}

// Database is one namespace of tables and views, mirroring the teacher's
// storage.Database generalized to hold both kinds of catalog entry plus the
// directory bookkeeping a database-qualified name needs.
type Database struct {
	Name    string
	DataDir string

	mu     sync.RWMutex
	tables map[string]*storage.MergeTreeTable
	views  map[string]ViewHandle
}

func newDatabase(name, dataDir string) *Database {
	return &Database{
		Name:    name,
		DataDir: dataDir,
		tables:  make(map[string]*storage.MergeTreeTable),
		views:   make(map[string]ViewHandle),
	}
}

// Catalog is the process-wide registry of databases, passed by explicit
// handle to every package that needs it (engine, mv, server) rather than
// held as a package-level singleton.
type Catalog struct {
	RootDir  string
	Engines  *EngineRegistry
	Settings Settings

	mu        sync.RWMutex
	databases map[string]*Database

	ddlGuards *ddlGuards
	deps      *DependencyGraph
}

const defaultDatabaseName = "default"

// NewCatalog creates a catalog rooted at rootDir with a single "default"
// database, loading any tables already on disk the way storage.NewDatabase
// used to.
func NewCatalog(rootDir string) (*Catalog, error) {
	c := &Catalog{
		RootDir:   rootDir,
		Engines:   NewEngineRegistry(),
		Settings:  DefaultSettings(),
		databases: make(map[string]*Database),
		ddlGuards: newDDLGuards(),
		deps:      newDependencyGraph(),
	}
	if _, err := c.createDatabaseLocked(defaultDatabaseName); err != nil {
		return nil, err
	}
	if err := c.loadDatabase(c.databases[defaultDatabaseName]); err != nil {
		return nil, fmt.Errorf("loading metadata: %w", err)
	}
	return c, nil
}

func (c *Catalog) createDatabaseLocked(name string) (*Database, error) {
	dir := filepath.Join(c.RootDir, name)
	if name == defaultDatabaseName {
		dir = c.RootDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database dir: %w", err)
	}
	db := newDatabase(name, dir)
	c.databases[name] = db
	return db, nil
}

func (c *Catalog) resolveDatabase(name string) (*Database, bool) {
	if name == "" {
		name = defaultDatabaseName
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	db, ok := c.databases[name]
	return db, ok
}

// GetDatabase returns a database by name, matching the "getDatabase"
// collaborator method named in spec.md §6.
func (c *Catalog) GetDatabase(name string) (*Database, bool) {
	return c.resolveDatabase(name)
}

// split breaks "db.table" or "table" into (database, table), defaulting an
// unqualified name to the default database.
func split(name string) (string, string) {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i], name[i+1:]
		}
	}
	return defaultDatabaseName, name
}

// GetTable resolves a possibly-qualified name to a physical table. It does
// not look at views.
func (c *Catalog) GetTable(name string) (*storage.MergeTreeTable, bool) {
	dbName, tableName := split(name)
	db, ok := c.resolveDatabase(dbName)
	if !ok {
		return nil, false
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	t, ok := db.tables[tableName]
	return t, ok
}

// GetTableByID resolves by StorageID, preferring a UUID match when present
// (so a renamed table is still found by old callers holding its StorageID).
func (c *Catalog) GetTableByID(id StorageID) (*storage.MergeTreeTable, bool) {
	db, ok := c.resolveDatabase(id.Database)
	if !ok {
		return nil, false
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	if id.HasUUID() {
		for _, t := range db.tables {
			if t.UUID == id.UUID {
				return t, true
			}
		}
	}
	t, ok := db.tables[id.Table]
	return t, ok
}

// GetView resolves a possibly-qualified name to a registered view handle.
func (c *Catalog) GetView(name string) (ViewHandle, bool) {
	dbName, tableName := split(name)
	db, ok := c.resolveDatabase(dbName)
	if !ok {
		return nil, false
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	v, ok := db.views[tableName]
	return v, ok
}

// CreateTable registers a new physical table under id, the DDL-interpreter
// primitive spec.md §6 calls "the catalog protocol consumed", built the way
// the teacher's executeCreate constructs a storage.MergeTreeTable.
func (c *Catalog) CreateTable(id StorageID, schema storage.TableSchema, ifNotExists bool) (*storage.MergeTreeTable, error) {
	db, ok := c.resolveDatabase(id.Database)
	if !ok {
		var err error
		c.mu.Lock()
		db, err = c.createDatabaseLocked(id.Database)
		c.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if existing, exists := db.tables[id.Table]; exists {
		if ifNotExists {
			return existing, nil
		}
		return nil, fmt.Errorf("table %s already exists", id.QualifiedName())
	}

	tableDir := filepath.Join(db.DataDir, id.Table)
	if err := os.MkdirAll(tableDir, 0755); err != nil {
		return nil, err
	}
	if err := saveTableSchema(tableDir, &schema); err != nil {
		return nil, err
	}

	table := storage.NewMergeTreeTable(id.Table, schema, tableDir)
	table.Database = id.Database
	table.UUID = id.UUID
	db.tables[id.Table] = table
	return table, nil
}

// DropTable removes a physical table and its data directory. ifExists
// mirrors DROP TABLE IF EXISTS.
func (c *Catalog) DropTable(name string, ifExists bool) error {
	dbName, tableName := split(name)
	db, ok := c.resolveDatabase(dbName)
	if !ok {
		if ifExists {
			return nil
		}
		return fmt.Errorf("database %s does not exist", dbName)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tables[tableName]
	if !ok {
		if ifExists {
			return nil
		}
		return fmt.Errorf("table %s does not exist", name)
	}
	if err := os.RemoveAll(t.DataDir); err != nil {
		return err
	}
	delete(db.tables, tableName)
	return nil
}

// RenameTable moves a table from oldName to newName, updating its on-disk
// directory in place by renaming the map entry only (vistadb keeps the
// table's existing directory; only the logical name changes, matching
// MergeTree's own renameInMemory which never touches bytes on disk).
func (c *Catalog) RenameTable(oldName, newName string) error {
	oldDB, oldTable := split(oldName)
	newDB, newTable := split(newName)
	if oldDB != newDB {
		return fmt.Errorf("renaming across databases is not supported")
	}
	db, ok := c.resolveDatabase(oldDB)
	if !ok {
		return fmt.Errorf("database %s does not exist", oldDB)
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tables[oldTable]
	if !ok {
		return fmt.Errorf("table %s does not exist", oldName)
	}
	if _, exists := db.tables[newTable]; exists {
		return fmt.Errorf("table %s already exists", newName)
	}
	t.Name = newTable
	delete(db.tables, oldTable)
	db.tables[newTable] = t
	return nil
}

// TruncateTable empties a physical table in place.
func (c *Catalog) TruncateTable(name string) error {
	t, ok := c.GetTable(name)
	if !ok {
		return fmt.Errorf("table %s does not exist", name)
	}
	return t.Truncate()
}

// CreateView registers a view handle under id, analogous to CreateTable but
// for the views map. Returns an error if a table or view already occupies
// the name, unless attach (the view is being reattached from disk metadata,
// identity already established) is true.
func (c *Catalog) CreateView(id StorageID, handle ViewHandle, attach bool) error {
	db, ok := c.resolveDatabase(id.Database)
	if !ok {
		var err error
		c.mu.Lock()
		db, err = c.createDatabaseLocked(id.Database)
		c.mu.Unlock()
		if err != nil {
			return err
		}
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, exists := db.views[id.Table]; exists && !attach {
		return fmt.Errorf("view %s already exists", id.QualifiedName())
	}
	if _, exists := db.tables[id.Table]; exists {
		return fmt.Errorf("table %s already exists", id.QualifiedName())
	}
	db.views[id.Table] = handle
	return nil
}

// DropView removes a view's catalog entry. It does not touch the view's
// inner or target tables; callers (internal/mv's LifecycleController) are
// responsible for dropping those first.
func (c *Catalog) DropView(name string) error {
	dbName, tableName := split(name)
	db, ok := c.resolveDatabase(dbName)
	if !ok {
		return fmt.Errorf("database %s does not exist", dbName)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.views[tableName]; !ok {
		return fmt.Errorf("view %s does not exist", name)
	}
	delete(db.views, tableName)
	return nil
}

// RenameView moves a view's catalog entry, mirroring RenameTable.
func (c *Catalog) RenameView(oldName, newName string, handle ViewHandle) error {
	oldDB, oldTable := split(oldName)
	newDB, newTable := split(newName)
	if oldDB != newDB {
		return fmt.Errorf("renaming across databases is not supported")
	}
	db, ok := c.resolveDatabase(oldDB)
	if !ok {
		return fmt.Errorf("database %s does not exist", oldDB)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.views[oldTable]; !ok {
		return fmt.Errorf("view %s does not exist", oldName)
	}
	if _, exists := db.views[newTable]; exists {
		return fmt.Errorf("view %s already exists", newName)
	}
	delete(db.views, oldTable)
	db.views[newTable] = handle
	return nil
}

// TableNames lists every physical table and view name in the default
// database, sorted, matching the teacher's Database.TableNames for SHOW
// TABLES.
func (c *Catalog) TableNames() []string {
	db, ok := c.resolveDatabase(defaultDatabaseName)
	if !ok {
		return nil
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	names := make([]string, 0, len(db.tables)+len(db.views))
	for n := range db.tables {
		names = append(names, n)
	}
	for n := range db.views {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AllTables returns every physical table across the default database, used
// by the background merger to sweep for merge candidates irrespective of
// whether a table is plain or MV-owned.
func (c *Catalog) AllTables() []*storage.MergeTreeTable {
	db, ok := c.resolveDatabase(defaultDatabaseName)
	if !ok {
		return nil
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	tables := make([]*storage.MergeTreeTable, 0, len(db.tables))
	for _, t := range db.tables {
		tables = append(tables, t)
	}
	return tables
}

// Dependencies exposes the source->view dependency graph (spec.md §4.4's
// CatalogDependencyBinder target).
func (c *Catalog) Dependencies() *DependencyGraph {
	return c.deps
}
