package catalog

import "github.com/vistadb/vistadb/internal/storage"

// GuardedDrop drops a table or view while holding its DDL guard, unless
// mayLockDDLGuard is false because the caller already holds it (the
// original's dropInnerTableIfAny is sometimes called from inside a region
// that locked the view's own guard first, in which case re-locking the
// inner table's guard on its own is fine only if the names are different
// and acquired in order; mayLockDDLGuard lets a caller that already holds
// every guard it needs skip re-acquisition instead of deadlocking itself).
func (c *Catalog) GuardedDrop(name string, ifExists bool, mayLockDDLGuard bool) error {
	if !mayLockDDLGuard {
		return c.DropTable(name, ifExists)
	}
	unlock, err := c.LockMultiple(name)
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := c.GetView(name); ok {
		return c.DropView(name)
	}
	return c.DropTable(name, ifExists)
}

// GuardedRename renames a table or view while holding both names' DDL
// guards in lexicographic order, the scheme spec.md §4.3 requires for
// view/inner lock ordering.
func (c *Catalog) GuardedRename(oldName, newName string, mayLockDDLGuard bool) error {
	if !mayLockDDLGuard {
		return c.RenameTable(oldName, newName)
	}
	unlock, err := c.LockMultiple(oldName, newName)
	if err != nil {
		return err
	}
	defer unlock()
	return c.RenameTable(oldName, newName)
}

// CreateInnerTable is CreateTable under the view's DDL guard, used by
// internal/mv's InnerTableBuilder so that a concurrent DROP or RENAME of
// the same inner name cannot interleave with construction.
func (c *Catalog) CreateInnerTable(id StorageID, schema storage.TableSchema) (*storage.MergeTreeTable, error) {
	unlock, err := c.LockMultiple(id.QualifiedName())
	if err != nil {
		return nil, err
	}
	defer unlock()
	return c.CreateTable(id, schema, false)
}
