package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"reaper.dev/reaper/internal/cli"
	"reaper.dev/reaper/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tui.ConfigureColors(os.Stdout)

	rootCmd := cli.NewRootCmd(version, commit, date)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
