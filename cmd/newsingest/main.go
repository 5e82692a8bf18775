package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"NewsIngest/internal/app"
	"NewsIngest/internal/config"
	"NewsIngest/internal/logging"
)

func main() {
	daemon := flag.Bool("daemon", false, "keep running on the configured interval instead of a single pass")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if *daemon {
		err = application.RunDaemon(ctx)
	} else {
		err = application.RunOnce(ctx)
	}
	if err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
