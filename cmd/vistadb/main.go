package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vistadb/vistadb/internal/cli"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	err := cli.Execute(context.Background(), cli.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
