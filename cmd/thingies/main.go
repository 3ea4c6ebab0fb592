package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"smartthingies/config"
	"smartthingies/internal/application"
	"smartthingies/internal/cli"
	"smartthingies/internal/infra/console"
	"smartthingies/internal/infra/pushover"
	"smartthingies/internal/infra/sqlite"
	"smartthingies/internal/infra/thingies"
	"smartthingies/internal/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, "thingies")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
		os.Stdin.Close()
	}()

	store, err := sqlite.Open(sqlite.Config{
		Path:        cfg.Storage.Path,
		WALMode:     cfg.Storage.WALMode,
		BusyTimeout: cfg.Storage.BusyTimeout,
	})
	if err != nil {
		logger.Error("opening local storage", "error", err, "path", cfg.Storage.Path)
		os.Exit(1)
	}
	defer store.Close()

	client := thingies.NewClient(cfg.API.BaseURL, cfg.RequestTimeout(), logger)
	client.SetMaxAttempts(cfg.API.MaxAttempts)

	notifier := application.FanoutNotifier{console.NewNotifier(os.Stdout)}
	if cfg.Pushover.Enabled {
		notifier = append(notifier, pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey))
	}

	app := application.NewApp(client, store, notifier, logger)
	app.Start(ctx)
	defer app.Close()

	logger.Info("starting smart thingies client",
		"api", cfg.API.BaseURL,
		"storage", store.Path(),
	)

	shell := cli.NewShell(app, os.Stdin, os.Stdout, logger)
	if err := shell.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("shell error", "error", err)
		app.Close()
		os.Exit(1)
	}
}
