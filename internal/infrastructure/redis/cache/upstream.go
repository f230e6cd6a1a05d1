package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/muhammadchandra19/bar-replay/internal/domain/bar"
	v1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
	"github.com/muhammadchandra19/bar-replay/pkg/redis"
)

const (
	kindIntraday = "intraday"
	kindDaily    = "daily"

	dailyGranularity = "1day"
	keyDateLayout    = "2006-01-02"
)

var _ bar.Upstream = (*Upstream)(nil)

// Upstream is a read-through cache in front of another upstream. Redis
// failures are logged and the wrapped upstream is asked instead.
type Upstream struct {
	next   bar.Upstream
	client redis.Client
	prefix string
	ttl    time.Duration
	logger logger.Interface
	now    func() time.Time
}

// NewUpstream wraps next with a redis cache configured by cfg.
func NewUpstream(next bar.Upstream, client redis.Client, cfg *redis.Config, log logger.Interface) *Upstream {
	return &Upstream{
		next:   next,
		client: client,
		prefix: cfg.PrefixKey,
		ttl:    cfg.DefaultTTL,
		logger: log,
		now:    time.Now,
	}
}

// Key returns the cache key of one upstream call.
func (u *Upstream) Key(kind, ticker, granularity string, from, to time.Time) string {
	return fmt.Sprintf("%sbars:%s:%s:%s:%s:%s", u.prefix, kind, ticker, granularity,
		from.UTC().Format(keyDateLayout), to.UTC().Format(keyDateLayout))
}

// Intraday serves sub-daily records from cache when present.
func (u *Upstream) Intraday(ctx context.Context, ticker, granularity string, from, to time.Time) ([]v1.RawBar, error) {
	key := u.Key(kindIntraday, ticker, granularity, from, to)
	return u.through(ctx, key, to, func() ([]v1.RawBar, error) {
		return u.next.Intraday(ctx, ticker, granularity, from, to)
	})
}

// Daily serves daily records from cache when present.
func (u *Upstream) Daily(ctx context.Context, ticker string, from, to time.Time) ([]v1.RawBar, error) {
	key := u.Key(kindDaily, ticker, dailyGranularity, from, to)
	return u.through(ctx, key, to, func() ([]v1.RawBar, error) {
		return u.next.Daily(ctx, ticker, from, to)
	})
}

func (u *Upstream) through(ctx context.Context, key string, to time.Time, fetch func() ([]v1.RawBar, error)) ([]v1.RawBar, error) {
	if bars, ok := u.lookup(ctx, key); ok {
		return bars, nil
	}

	bars, err := fetch()
	if err != nil {
		return nil, err
	}

	// a window reaching today can still grow
	if !u.closed(to) {
		return bars, nil
	}

	payload, err := json.Marshal(bars)
	if err != nil {
		u.logger.ErrorContext(ctx, err, logger.NewField("key", key))
		return bars, nil
	}
	if err := u.client.Set(ctx, key, string(payload), u.ttl); err != nil {
		u.logger.ErrorContext(ctx, err, logger.NewField("key", key))
	}
	return bars, nil
}

func (u *Upstream) lookup(ctx context.Context, key string) ([]v1.RawBar, bool) {
	val, err := u.client.Get(ctx, key)
	if err != nil {
		u.logger.ErrorContext(ctx, err, logger.NewField("key", key))
		return nil, false
	}
	if val == "" {
		return nil, false
	}

	var bars []v1.RawBar
	if err := json.Unmarshal([]byte(val), &bars); err != nil {
		u.logger.WarnContext(ctx, "dropping undecodable cache entry", logger.NewField("key", key))
		if _, err := u.client.Del(ctx, key); err != nil {
			u.logger.ErrorContext(ctx, err, logger.NewField("key", key))
		}
		return nil, false
	}

	u.logger.DebugContext(ctx, "cache hit", logger.NewField("key", key))
	return bars, true
}

func (u *Upstream) closed(to time.Time) bool {
	now := u.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return to.UTC().Before(today)
}
