package mv

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vistadb/vistadb/internal/catalog"
)

// innerKind distinguishes the two inner tables a refreshable materialized
// view owns.
type innerKind int

const (
	innerTarget innerKind = iota
	innerScratch
)

// MintInnerName builds the dot-prefixed inner table name ClickHouse uses
// for a materialized view's owned storage, generateInnerTableName in the
// original: ".inner[_scratch]_id.<uuid>" once the view has a UUID, falling back to
// ".inner[_scratch].<view name>" for a view attached without one (legacy
// metadata, or a test harness that never assigns UUIDs).
func MintInnerName(viewID catalog.StorageID, kind innerKind) string {
	base := ".inner"
	if kind == innerScratch {
		base = ".inner_scratch"
	}
	if viewID.HasUUID() {
		return fmt.Sprintf("%s_id.%s", base, viewID.UUID)
	}
	return fmt.Sprintf("%s.%s", base, viewID.Table)
}

// parseUUID wraps uuid.Parse so lifecycle.go doesn't need the uuid import
// just for the UUID 'xxxx' clause on CREATE MATERIALIZED VIEW.
func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// NewInnerStorageID builds the StorageID for an inner table: same database
// as the view, minted name, and a fresh UUID of its own (inner tables are
// real catalog entries and need their own identity distinct from the
// view's).
func NewInnerStorageID(viewID catalog.StorageID, kind innerKind) catalog.StorageID {
	return catalog.StorageID{
		Database: viewID.Database,
		Table:    MintInnerName(viewID, kind),
		UUID:     uuid.New(),
	}
}
