// Command pmysql runs one query against many database servers in parallel
// and prints every result row prefixed with the server it came from.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/koustreak/pmysql/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(newApp())
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Global().Error(err.Error())
		stop()
		os.Exit(1)
	}
}
