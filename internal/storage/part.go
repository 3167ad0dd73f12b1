package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// PartState represents the lifecycle state of a data part.
type PartState uint8

const (
	PartTemporary PartState = iota // tmp_ prefix, being written
	PartActive                     // visible to queries
	PartOutdated                   // replaced by merge, pending deletion
	PartDeleting                   // being deleted
)

// PartInfo identifies a part following ClickHouse naming: partition_minBlock_maxBlock_level.
type PartInfo struct {
	PartitionID string
	MinBlock    uint64
	MaxBlock    uint64
	Level       uint32
}

// DirName returns the directory name for this part.
func (pi PartInfo) DirName() string {
	return fmt.Sprintf("%s_%d_%d_%d", pi.PartitionID, pi.MinBlock, pi.MaxBlock, pi.Level)
}

// TmpDirName returns the temporary directory name.
func (pi PartInfo) TmpDirName() string {
	return "tmp_" + pi.DirName()
}

// Contains returns true if this part's block range fully covers another part's range.
func (pi PartInfo) Contains(other PartInfo) bool {
	return pi.PartitionID == other.PartitionID &&
		pi.MinBlock <= other.MinBlock &&
		pi.MaxBlock >= other.MaxBlock &&
		pi.Level > other.Level
}

// Part represents a single data part on disk.
type Part struct {
	Info      PartInfo
	State     PartState
	NumRows   uint64
	SizeBytes uint64
	CreatedAt time.Time
	BasePath  string // absolute path to the part directory

	// Cached metadata (loaded lazily)
	NumGranules int
}

func (p *Part) String() string {
	return fmt.Sprintf("Part{%s, rows=%d, state=%d}", p.Info.DirName(), p.NumRows, p.State)
}

// ParsePartDirName parses "partition_min_max_level" into a PartInfo.
// Exported so catalog can reconstruct part metadata on startup without
// duplicating the naming scheme.
func ParsePartDirName(name string) (*PartInfo, error) {
	parts := strings.Split(name, "_")
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid part dir name: %s", name)
	}
	level, err := strconv.ParseUint(parts[len(parts)-1], 10, 32)
	if err != nil {
		return nil, err
	}
	maxBlock, err := strconv.ParseUint(parts[len(parts)-2], 10, 64)
	if err != nil {
		return nil, err
	}
	minBlock, err := strconv.ParseUint(parts[len(parts)-3], 10, 64)
	if err != nil {
		return nil, err
	}
	partitionID := strings.Join(parts[:len(parts)-3], "_")
	return &PartInfo{PartitionID: partitionID, MinBlock: minBlock, MaxBlock: maxBlock, Level: uint32(level)}, nil
}

// LoadParts scans t.DataDir for part directories and attaches them to t,
// the per-table half of what the teacher's Database.LoadMetadata used to do
// in one pass over the whole data directory.
func (t *MergeTreeTable) LoadParts() error {
	entries, err := os.ReadDir(t.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, pe := range entries {
		if !pe.IsDir() || strings.HasPrefix(pe.Name(), "tmp_") {
			continue
		}
		info, err := ParsePartDirName(pe.Name())
		if err != nil {
			continue
		}
		countPath := filepath.Join(t.DataDir, pe.Name(), "count.txt")
		countData, err := os.ReadFile(countPath)
		if err != nil {
			continue
		}
		numRows, err := strconv.ParseUint(strings.TrimSpace(string(countData)), 10, 64)
		if err != nil {
			continue
		}
		granuleSize := t.Schema.EffectiveGranuleSize()
		numGranules := (int(numRows) + granuleSize - 1) / granuleSize
		t.AddPart(&Part{
			Info:        *info,
			State:       PartActive,
			NumRows:     numRows,
			BasePath:    filepath.Join(t.DataDir, pe.Name()),
			NumGranules: numGranules,
		})
	}
	return nil
}
