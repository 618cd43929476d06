// Package main is the entry point for the wiresphere viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/wiresphere/internal/app"
	"github.com/Faultbox/wiresphere/internal/config"
	"github.com/Faultbox/wiresphere/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("=== Wiresphere ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := logger.NewErrorSink(nil)

	a, err := app.New(ctx, cfg, openPlatform)
	if err != nil {
		sink.Report(err)
		return 1
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		sink.Report(err)
		return 1
	}

	logger.Info("viewer closed normally", zap.Uint64("frames", a.Driver().Frames()))
	return 0
}
