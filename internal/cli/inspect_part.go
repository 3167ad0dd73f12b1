package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vistadb/vistadb/internal/catalog"
	"github.com/vistadb/vistadb/internal/compression"
	"github.com/vistadb/vistadb/internal/storage"
	"github.com/vistadb/vistadb/internal/types"
)

type markJSON struct {
	Granule                 int    `json:"granule"`
	OffsetInCompressedFile  uint64 `json:"offset_in_compressed_file"`
	OffsetInDecompressedBlk uint64 `json:"offset_in_decompressed_block"`
}

type binBlockJSON struct {
	Granule          int    `json:"granule"`
	Offset           int    `json:"offset"`
	MethodByte       uint8  `json:"method_byte"`
	CompressedBytes  uint32 `json:"compressed_bytes_with_header"`
	UncompressedSize uint32 `json:"uncompressed_bytes"`
}

type binJSON struct {
	FileSize int64          `json:"file_size"`
	Blocks   []binBlockJSON `json:"blocks"`
}

type primaryGranuleJSON struct {
	Granule int               `json:"granule"`
	Keys    map[string]string `json:"keys"`
}

type minmaxJSON struct {
	Column string `json:"column"`
	Type   string `json:"type"`
	Min    string `json:"min"`
	Max    string `json:"max"`
}

type dumpJSON struct {
	Table      string                `json:"table"`
	Part       string                `json:"part"`
	CountTxt   string                `json:"count_txt"`
	ColumnsTxt string                `json:"columns_txt"`
	Marks      map[string][]markJSON `json:"marks"`
	BinSummary map[string]binJSON    `json:"bin_summary"`
	PrimaryIdx []primaryGranuleJSON  `json:"primary_idx"`
	MinMaxIdx  map[string]minmaxJSON `json:"minmax_idx"`
}

type inspectPartConfig struct {
	dataDir   string
	tableName string
	partName  string
}

func newInspectPartCommand() *cobra.Command {
	cfg := &inspectPartConfig{}

	cmd := &cobra.Command{
		Use:   "inspect-part",
		Short: "Dump a merge-tree part's marks, compressed blocks and indexes as JSON",
		Long: `inspect-part reads a table's on-disk part directly, bypassing SQL, and
prints its mark files, compressed block headers, primary index and
minmax index as JSON. Omit --part to list the table's active parts.`,
		Example: `  vistadb inspect-part --table events --part all_1_1_0`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInspectPart(cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.dataDir, "data-dir", "./vistadb-data", "data directory path")
	cmd.Flags().StringVar(&cfg.tableName, "table", "", "table name")
	cmd.Flags().StringVar(&cfg.partName, "part", "", "part directory name, e.g. all_1_1_0")
	cmd.MarkFlagRequired("table") //nolint:errcheck

	return cmd
}

func runInspectPart(cfg *inspectPartConfig) error {
	cat, err := catalog.NewCatalog(cfg.dataDir)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}

	table, ok := cat.GetTable(cfg.tableName)
	if !ok {
		return fmt.Errorf("table %q not found", cfg.tableName)
	}

	parts := table.GetActiveParts()
	if cfg.partName == "" {
		names := make([]string, 0, len(parts))
		for _, p := range parts {
			names = append(names, p.Info.DirName())
		}
		out, _ := json.MarshalIndent(map[string]any{
			"table":        cfg.tableName,
			"active_parts": names,
		}, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	var part *storage.Part
	for _, p := range parts {
		if p.Info.DirName() == cfg.partName {
			part = p
			break
		}
	}
	if part == nil {
		return fmt.Errorf("part %q not found among active parts", cfg.partName)
	}

	reader := storage.NewPartReader(part, &table.Schema)
	out := dumpJSON{
		Table:      cfg.tableName,
		Part:       cfg.partName,
		Marks:      make(map[string][]markJSON),
		BinSummary: make(map[string]binJSON),
		MinMaxIdx:  make(map[string]minmaxJSON),
	}

	if countBytes, err := os.ReadFile(filepath.Join(part.BasePath, "count.txt")); err == nil {
		out.CountTxt = strings.TrimSpace(string(countBytes))
	}
	if columnsBytes, err := os.ReadFile(filepath.Join(part.BasePath, "columns.txt")); err == nil {
		out.ColumnsTxt = string(columnsBytes)
	}

	entries, err := os.ReadDir(part.BasePath)
	if err != nil {
		return fmt.Errorf("read part dir: %w", err)
	}

	for _, ent := range entries {
		name := ent.Name()
		full := filepath.Join(part.BasePath, name)

		switch {
		case strings.HasSuffix(name, ".mrk"):
			colName := strings.TrimSuffix(name, ".mrk")
			marks, err := storage.ReadMarksFromFile(full)
			if err != nil {
				continue
			}
			j := make([]markJSON, 0, len(marks))
			for i, m := range marks {
				j = append(j, markJSON{
					Granule:                 i,
					OffsetInCompressedFile:  m.OffsetInCompressedFile,
					OffsetInDecompressedBlk: m.OffsetInDecompressedBlock,
				})
			}
			out.Marks[colName] = j

		case strings.HasSuffix(name, ".bin"):
			colName := strings.TrimSuffix(name, ".bin")
			data, err := os.ReadFile(full)
			if err != nil {
				continue
			}
			bj := binJSON{FileSize: int64(len(data))}

			for i, m := range out.Marks[colName] {
				off := int(m.OffsetInCompressedFile)
				if off < 0 || off >= len(data) {
					continue
				}
				block := data[off:]
				csz, usz, err := compression.ReadBlockHeader(block)
				if err != nil {
					continue
				}
				method := uint8(0)
				if len(block) > 0 {
					method = block[0]
				}
				bj.Blocks = append(bj.Blocks, binBlockJSON{
					Granule:          i,
					Offset:           off,
					MethodByte:       method,
					CompressedBytes:  csz,
					UncompressedSize: usz,
				})
			}
			out.BinSummary[colName] = bj

		case strings.HasPrefix(name, "minmax_") && strings.HasSuffix(name, ".idx"):
			col := strings.TrimSuffix(strings.TrimPrefix(name, "minmax_"), ".idx")
			colDef, ok := table.Schema.GetColumnDef(col)
			if !ok {
				continue
			}
			mm, err := storage.ReadMinMaxIndex(full, col, colDef.DataType)
			if err != nil {
				continue
			}
			out.MinMaxIdx[col] = minmaxJSON{
				Column: mm.ColumnName,
				Type:   mm.DataType.Name(),
				Min:    types.ValueToString(mm.DataType, mm.Min),
				Max:    types.ValueToString(mm.DataType, mm.Max),
			}
		}
	}

	if idx, err := reader.LoadPrimaryIndex(); err == nil && idx != nil {
		out.PrimaryIdx = make([]primaryGranuleJSON, 0, idx.NumGranules)
		for g := 0; g < idx.NumGranules; g++ {
			keys := make(map[string]string, len(idx.KeyColumns))
			for i, keyCol := range idx.KeyColumns {
				keys[keyCol] = types.ValueToString(idx.KeyTypes[i], idx.Values[g][i])
			}
			out.PrimaryIdx = append(out.PrimaryIdx, primaryGranuleJSON{
				Granule: g,
				Keys:    keys,
			})
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
