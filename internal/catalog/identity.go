// Package catalog is the process-wide name resolver and dependency graph
// that materialized views (internal/mv) and plain tables are registered
// against. It plays the role spec.md §6 calls "the catalog protocol
// consumed" by the storage adapter: getTable/tryGetTable/getDatabase,
// add/remove/updateViewDependency, getDependentViews.
package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

// StorageID identifies a table or view: a qualified (database, table) name
// plus an optional stable UUID. The UUID is what lets a view survive a
// rename without losing its identity, and is how inner table names are
// minted deterministically (internal/mv.MintInnerName).
type StorageID struct {
	Database string
	Table    string
	UUID     uuid.UUID
}

// HasUUID reports whether id carries a stable identifier.
func (id StorageID) HasUUID() bool {
	return id.UUID != uuid.Nil
}

// Empty reports whether id names nothing at all.
func (id StorageID) Empty() bool {
	return id.Database == "" && id.Table == ""
}

// QualifiedName returns "database.table", used as the DDL guard key and as
// the locking-order comparison in spec.md §4.3's may_lock_ddl_guard rule.
func (id StorageID) QualifiedName() string {
	return id.Database + "." + id.Table
}

func (id StorageID) String() string {
	if id.HasUUID() {
		return fmt.Sprintf("%s (uuid %s)", id.QualifiedName(), id.UUID)
	}
	return id.QualifiedName()
}

// Equal compares two StorageIDs by database+table+uuid.
func (id StorageID) Equal(other StorageID) bool {
	return id == other
}
