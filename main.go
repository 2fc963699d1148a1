package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardnew/blockconf/cli"
	"github.com/ardnew/blockconf/log"
	"github.com/ardnew/blockconf/pkg"
)

// Exit codes.
const (
	exitFailure = 1 // the command could not run
	exitInvalid = 2 // the configuration was interpreted with errors
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err == nil {
		return
	}

	log.Error("run failed", slog.Any("error", err))

	if errors.Is(err, pkg.ErrConfig) {
		os.Exit(exitInvalid)
	}

	os.Exit(exitFailure)
}
