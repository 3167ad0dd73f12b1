package storage

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/vistadb/vistadb/internal/column"
	"github.com/vistadb/vistadb/internal/compression"
	"github.com/vistadb/vistadb/internal/types"
)

// MergeTreeTable represents a single table with MergeTree engine.
//
// Database, Name and UUID together are this table's identity as the
// catalog sees it (catalog.StorageID); storage cannot import catalog
// without cycling back through it, so the identity fields live here in
// their primitive form and catalog wraps them on the way out.
type MergeTreeTable struct {
	Database   string
	Name       string
	UUID       uuid.UUID
	Engine     string // "MergeTree", "ReplicatedMergeTree", ...
	Schema     TableSchema
	DataDir    string // path: <db_data_dir>/<table_name>/

	mu           sync.RWMutex
	parts        []*Part
	blockCounter atomic.Uint64
}

// NewMergeTreeTable creates a new table.
func NewMergeTreeTable(name string, schema TableSchema, dataDir string) *MergeTreeTable {
	return &MergeTreeTable{
		Name:    name,
		Engine:  "MergeTree",
		Schema:  schema,
		DataDir: dataDir,
	}
}

// Insert splits a block by partition, sorts each sub-block by ORDER BY, and writes parts.
func (t *MergeTreeTable) Insert(block *column.Block) error {
	partitions, err := t.splitByPartition(block)
	if err != nil {
		return err
	}

	codec := &compression.LZ4Codec{}
	writer := NewPartWriter(&t.Schema, t.DataDir, codec)

	for partitionID, subBlock := range partitions {
		// Sort by ORDER BY columns
		if err := subBlock.SortByColumns(t.Schema.OrderBy); err != nil {
			return fmt.Errorf("sorting block: %w", err)
		}

		blockNum := t.blockCounter.Add(1)
		info := PartInfo{
			PartitionID: partitionID,
			MinBlock:    blockNum,
			MaxBlock:    blockNum,
			Level:       0,
		}

		part, err := writer.WritePart(subBlock, info)
		if err != nil {
			return fmt.Errorf("writing part: %w", err)
		}

		t.mu.Lock()
		t.parts = append(t.parts, part)
		t.mu.Unlock()
	}

	return nil
}

// splitByPartition splits a block into sub-blocks per partition.
func (t *MergeTreeTable) splitByPartition(block *column.Block) (map[string]*column.Block, error) {
	if t.Schema.PartitionBy == "" {
		return map[string]*column.Block{"all": block}, nil
	}

	partCol, ok := block.GetColumn(t.Schema.PartitionBy)
	if !ok {
		return nil, fmt.Errorf("partition column %s not found", t.Schema.PartitionBy)
	}

	// Group row indices by partition value
	partRows := make(map[string][]int)
	for i := 0; i < block.NumRows(); i++ {
		pid := types.ValueToString(partCol.DataType(), partCol.Value(i))
		partRows[pid] = append(partRows[pid], i)
	}

	result := make(map[string]*column.Block, len(partRows))
	for pid, rows := range partRows {
		cols := make([]column.Column, block.NumColumns())
		for c := range block.NumColumns() {
			srcCol := block.Columns[c]
			newCol := column.NewColumnWithCapacity(srcCol.DataType(), len(rows))
			for _, rowIdx := range rows {
				newCol.Append(srcCol.Value(rowIdx))
			}
			cols[c] = newCol
		}
		names := make([]string, len(block.ColumnNames))
		copy(names, block.ColumnNames)
		result[pid] = column.NewBlock(names, cols)
	}

	return result, nil
}

// GetActiveParts returns all parts with state == PartActive.
func (t *MergeTreeTable) GetActiveParts() []*Part {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var active []*Part
	for _, p := range t.parts {
		if p.State == PartActive {
			active = append(active, p)
		}
	}
	// Sort by partition then MinBlock for deterministic ordering
	sort.Slice(active, func(i, j int) bool {
		if active[i].Info.PartitionID != active[j].Info.PartitionID {
			return active[i].Info.PartitionID < active[j].Info.PartitionID
		}
		return active[i].Info.MinBlock < active[j].Info.MinBlock
	})
	return active
}

// GetActivePartsForPartition returns active parts for a specific partition.
func (t *MergeTreeTable) GetActivePartsForPartition(partitionID string) []*Part {
	parts := t.GetActiveParts()
	var result []*Part
	for _, p := range parts {
		if p.Info.PartitionID == partitionID {
			result = append(result, p)
		}
	}
	return result
}

// ReplaceParts atomically marks old parts as outdated and adds the new merged part.
func (t *MergeTreeTable) ReplaceParts(oldParts []*Part, newPart *Part) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Mark old parts as outdated
	oldSet := make(map[string]bool, len(oldParts))
	for _, p := range oldParts {
		oldSet[p.Info.DirName()] = true
	}
	for _, p := range t.parts {
		if oldSet[p.Info.DirName()] {
			p.State = PartOutdated
		}
	}

	// Add new part
	t.parts = append(t.parts, newPart)
}

// AddPart adds a part directly (used during metadata loading).
func (t *MergeTreeTable) AddPart(part *Part) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.parts = append(t.parts, part)
	// Update block counter
	if part.Info.MaxBlock >= t.blockCounter.Load() {
		t.blockCounter.Store(part.Info.MaxBlock)
	}
}

// Truncate drops every part, leaving the table's directory and schema
// metadata in place but empty. Used by the scratch table between refresh
// cycles and by a direct TRUNCATE TABLE.
func (t *MergeTreeTable) Truncate() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.parts {
		if err := os.RemoveAll(p.BasePath); err != nil {
			return fmt.Errorf("removing part %s: %w", p.Info.DirName(), err)
		}
	}
	t.parts = nil
	return nil
}

// TransferAllDataFrom moves every active part from src into t and empties
// src, the physical half of a refresh's scratch-swap: the MV adapter
// decides *when* to swap, the engine decides *how* parts move. Mirrors
// IStorage::replacePartitionFrom/movePartitionToTable for the MergeTree
// family, simplified to a whole-table move since vistadb has no ALTER TABLE
// MOVE PARTITION.
func (t *MergeTreeTable) TransferAllDataFrom(src *MergeTreeTable) error {
	src.mu.Lock()
	moved := src.parts
	src.parts = nil
	src.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.parts = append(t.parts, moved...)
	for _, p := range moved {
		if p.Info.MaxBlock >= t.blockCounter.Load() {
			t.blockCounter.Store(p.Info.MaxBlock)
		}
	}
	return nil
}

// TotalRows sums NumRows across active parts.
func (t *MergeTreeTable) TotalRows() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var total uint64
	for _, p := range t.parts {
		if p.State == PartActive {
			total += p.NumRows
		}
	}
	return total
}

// Identity returns this table's (database, name, uuid) triple in primitive
// form; catalog.StorageID wraps it without storage importing catalog.
func (t *MergeTreeTable) Identity() (database, name string, id uuid.UUID) {
	return t.Database, t.Name, t.UUID
}

// EngineName reports the storage engine this table was created with.
func (t *MergeTreeTable) EngineName() string {
	return t.Engine
}

// GetDataPaths returns the on-disk paths backing this table, used by the
// materialized view's GetDataPaths aggregation over its target and scratch
// tables' directories.
func (t *MergeTreeTable) GetDataPaths() []string {
	return []string{t.DataDir}
}
