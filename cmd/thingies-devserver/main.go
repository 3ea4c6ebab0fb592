package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"smartthingies/config"
	"smartthingies/internal/devserver"
	"smartthingies/internal/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	addr := flag.String("addr", "", "listen address, overrides devserver.addr")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.DevServer.Addr = *addr
	}

	logger := logging.New(cfg.Log, "devserver")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := devserver.New(devserver.Config{
		Addr:       cfg.DevServer.Addr,
		RateLimit:  cfg.DevServer.RateLimit,
		RateWindow: cfg.DevServerRateWindow(),
	}, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Error("device service error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}
