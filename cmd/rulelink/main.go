// File: cmd/rulelink/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/secwarden/rulelink-cli/cmd"
	"github.com/secwarden/rulelink-cli/internal/observability"
)

func main() {
	// Listen for interrupt signals so a half-finished pass stops between
	// rules instead of mid-write.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
