package main

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/muhammadchandra19/bar-replay/internal/bootstrap"
	"github.com/muhammadchandra19/bar-replay/pkg/config"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
	"github.com/muhammadchandra19/bar-replay/pkg/util"
)

func main() {
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
	ctx = util.WithSessionID(ctx, "")

	b := &bootstrap.Bootstrap{}
	if err := b.Init(ctx, bootstrap.BootstrapConfig{Config: cfg, Logger: log}); err != nil {
		log.ErrorContext(ctx, err)
		os.Exit(1)
	}
	defer b.Close(context.Background())

	if err := b.Usecase.Player.Start(ctx); err != nil {
		log.ErrorContext(ctx, err)
		return
	}
	log.InfoContext(ctx, "replay session started", logger.NewField("upstream", cfg.Replay.Upstream))

	if cfg.App.HealthAddr != "" {
		srv := &http.Server{Addr: cfg.App.HealthAddr, Handler: b.Health.Handler(http.NotFoundHandler())}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.ErrorContext(ctx, err)
			}
		}()
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	tb := newToolbar(b.Usecase.Player, b.Usecase.Bus, log)
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.InfoContext(ctx, "shutting down")
			return
		case line, ok := <-lines:
			if !ok || tb.Handle(ctx, line) {
				return
			}
		}
	}
}
