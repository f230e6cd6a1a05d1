package bootstrap

import (
	"context"
	"fmt"

	"github.com/muhammadchandra19/bar-replay/internal/domain/bar"
	"github.com/muhammadchandra19/bar-replay/internal/infrastructure/fmp"
	"github.com/muhammadchandra19/bar-replay/internal/infrastructure/parquet"
	questdbOhlc "github.com/muhammadchandra19/bar-replay/internal/infrastructure/questdb/ohlc"
	"github.com/muhammadchandra19/bar-replay/internal/infrastructure/redis/cache"
	"github.com/muhammadchandra19/bar-replay/pkg/config"
	"github.com/muhammadchandra19/bar-replay/pkg/errors"
	"github.com/muhammadchandra19/bar-replay/pkg/questdb"
	"github.com/muhammadchandra19/bar-replay/pkg/redis"
)

// Upstream is the provider bars are read from, possibly behind the cache.
type Upstream struct {
	Provider bar.Upstream
	Cached   bar.Upstream
}

// registerUpstream registers the upstream.
func (b *Bootstrap) registerUpstream(ctx context.Context) error {
	switch b.Config.Replay.Upstream {
	case config.UpstreamFMP:
		b.Upstream.Provider = fmp.NewClient(b.Config.FMP, b.Logger)
	case config.UpstreamParquet:
		b.Upstream.Provider = parquet.NewUpstream(b.Config.Parquet.Dir, b.Logger)
	case config.UpstreamQuestDB:
		client, err := questdb.NewClient(ctx, b.Config.QuestDB)
		if err != nil {
			return errors.TracerFromError(err)
		}
		b.QuestDB = client
		b.Health.Register("questdb", client.Ping)
		b.onClose(func(context.Context) error {
			client.Close()
			return nil
		})
		b.Upstream.Provider = questdbOhlc.NewRepository(client)
	default:
		return errors.NewErrorDetails(fmt.Sprintf("unknown upstream %q", b.Config.Replay.Upstream),
			string(errors.GeneralBadRequestError), "upstream")
	}

	b.Upstream.Cached = b.Upstream.Provider
	if !b.Config.Replay.CacheEnabled {
		return nil
	}

	client := redis.NewClient(b.Logger, &b.Config.Redis)
	if err := client.Connect(ctx); err != nil {
		return err
	}
	b.Redis = client
	b.Health.Register("redis", client.Ping)
	b.onClose(client.Disconnect)
	b.Upstream.Cached = cache.NewUpstream(b.Upstream.Provider, client, &b.Config.Redis, b.Logger)
	return nil
}
