// Package cli wires vistadb's subcommands: serve starts the HTTP query
// server, inspect-part dumps a single part's on-disk layout, version prints
// build information. Structured the way pgtofu's internal/cli splits one
// cobra.Command constructor per file.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// BuildInfo carries version metadata stamped in at build time via
// -ldflags, reported by the version subcommand.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Execute builds the root command and every subcommand, then runs it
// against ctx.
func Execute(ctx context.Context, info BuildInfo) error {
	rootCmd := newRootCommand()
	rootCmd.AddCommand(
		newServeCommand(ctx),
		newInspectPartCommand(),
		newVersionCommand(info),
	)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vistadb",
		Short: "A ClickHouse-inspired columnar database with materialized view support",
		Long: `vistadb stores columnar data in merge-tree parts on local disk and answers
SQL over HTTP, with CREATE MATERIALIZED VIEW support for maintaining
pre-aggregated tables as new data arrives.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("vistadb %s\n", info.Version)
			fmt.Printf("  commit:     %s\n", info.Commit)
			fmt.Printf("  built:      %s\n", info.BuildTime)
		},
	}
}
