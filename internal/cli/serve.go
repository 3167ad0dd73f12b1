package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vistadb/vistadb/internal/catalog"
	"github.com/vistadb/vistadb/internal/engine"
	"github.com/vistadb/vistadb/internal/parser"
	"github.com/vistadb/vistadb/internal/processor"
	"github.com/vistadb/vistadb/internal/server"

	// mv registers the MaterializedView storage adapter's engine hooks
	// (MaterializedViewCreate/Read/Write/...) in its init(); imported for
	// the side effect, since nothing in cli calls into mv directly.
	_ "github.com/vistadb/vistadb/internal/mv"
)

type serveConfig struct {
	dataDir string
	addr    string
}

func newServeCommand(ctx context.Context) *cobra.Command {
	cfg := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the vistadb HTTP query server",
		Example: `  vistadb serve --data-dir ./vistadb-data --addr :8123`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.dataDir, "data-dir", "./vistadb-data", "data directory path")
	cmd.Flags().StringVar(&cfg.addr, "addr", ":8123", "HTTP server address")

	return cmd
}

func init() {
	// Wire the push-based processor pipeline as the engine's plain-table
	// SELECT path; materialized-view SELECTs are intercepted by mv's own
	// hook before reaching this.
	engine.SelectExecutor = func(stmt *parser.SelectStmt, cat *catalog.Catalog) (*engine.ExecuteResult, error) {
		result, err := processor.BuildPipeline(stmt, cat)
		if err != nil {
			return nil, err
		}
		exec := processor.NewPipelineExecutor(result.Graph, 0)
		if err := exec.Execute(); err != nil {
			return nil, err
		}
		blocks := result.Output.ResultBlocks()
		outNames := result.OutNames
		if len(blocks) > 0 && blocks[0].NumColumns() > 0 && len(outNames) != blocks[0].NumColumns() {
			outNames = blocks[0].ColumnNames
		}
		return &engine.ExecuteResult{Blocks: blocks, ColumnNames: outNames}, nil
	}
}

func runServe(ctx context.Context, cfg *serveConfig) error {
	cat, err := catalog.NewCatalog(cfg.dataDir)
	if err != nil {
		return fmt.Errorf("initialize catalog: %w", err)
	}

	fmt.Printf("vistadb - a ClickHouse-like columnar database with materialized views\n")
	fmt.Printf("Data directory: %s\n", cfg.dataDir)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	srv := server.NewServer(cat, cfg.addr)
	if err := srv.Start(ctx); err != nil {
		if err.Error() != "http: Server closed" {
			log.Printf("server error: %v", err)
			return err
		}
	}
	return nil
}
