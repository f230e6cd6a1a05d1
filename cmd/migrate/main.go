package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/muhammadchandra19/bar-replay/pkg/config"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
	"github.com/muhammadchandra19/bar-replay/pkg/migration"
	"github.com/muhammadchandra19/bar-replay/pkg/questdb"
)

func main() {
	var (
		dir   = flag.String("dir", "migrations/questdb", "directory holding *.up.sql and *.down.sql files")
		down  = flag.Bool("down", false, "revert instead of apply")
		steps = flag.Int("steps", 0, "number of migrations to apply or revert, 0 applies all pending")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ParseLevel(cfg.App.LogLevel)))
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := questdb.NewClient(ctx, cfg.QuestDB)
	if err != nil {
		log.ErrorContext(ctx, err)
		os.Exit(1)
	}
	defer client.Close()

	runner := migration.NewRunner(client, *dir, log)
	if err := runner.EnsureMigrationTable(ctx); err != nil {
		log.ErrorContext(ctx, err)
		os.Exit(1)
	}

	if *down {
		err = runner.MigrateDown(ctx, *steps)
	} else {
		err = runner.MigrateUp(ctx, *steps)
	}
	if err != nil {
		log.ErrorContext(ctx, err)
		os.Exit(1)
	}

	log.InfoContext(ctx, "migrations completed", logger.NewField("dir", *dir), logger.NewField("down", *down))
}
