package bootstrap

import (
	"context"
	"time"

	"github.com/muhammadchandra19/bar-replay/pkg/config"
	"github.com/muhammadchandra19/bar-replay/pkg/httplib/healthcheck"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
	"github.com/muhammadchandra19/bar-replay/pkg/questdb"
	"github.com/muhammadchandra19/bar-replay/pkg/redis"
)

const healthTimeout = 2 * time.Second

// Bootstrap wires one replay session.
type Bootstrap struct {
	Config   *config.Config
	Logger   logger.Interface
	Upstream Upstream
	Renderer Renderer
	Usecase  Usecase
	Health   *healthcheck.HealthCheck

	QuestDB questdb.QuestDBClient
	Redis   redis.Client

	now     func() time.Time
	closers []func(ctx context.Context) error
}

// BootstrapConfig is the config for the bootstrap.
type BootstrapConfig struct {
	Config *config.Config
	Logger logger.Interface
	// Now defaults to time.Now.
	Now func() time.Time
}

// Init connects the configured upstream and renderer and builds the player.
func (b *Bootstrap) Init(ctx context.Context, cfg BootstrapConfig) error {
	b.Config = cfg.Config
	b.Logger = cfg.Logger
	b.now = cfg.Now
	if b.now == nil {
		b.now = time.Now
	}
	b.Health = healthcheck.New(healthTimeout)

	if err := b.registerUpstream(ctx); err != nil {
		b.Close(ctx)
		return err
	}
	b.registerRenderer()
	if err := b.registerUsecase(); err != nil {
		b.Close(ctx)
		return err
	}
	return nil
}

// Close stops the player and releases every connection, newest first.
func (b *Bootstrap) Close(ctx context.Context) {
	if b.Usecase.Player != nil {
		b.Usecase.Player.Close()
	}
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			b.Logger.ErrorContext(ctx, err)
		}
	}
	b.closers = nil
}

func (b *Bootstrap) onClose(fn func(ctx context.Context) error) {
	b.closers = append(b.closers, fn)
}
