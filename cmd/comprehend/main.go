package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cc := newCommandContext()
	cmd := newRootCommand(cc)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, context.Canceled) && !errors.Is(err, errReported) {
		printError(os.Stderr, err, cc.stderrTTY)
	}
	stop()
	os.Exit(exitCode(err))
}
