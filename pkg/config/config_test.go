package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_LoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bar-replay", cfg.App.Name)
	assert.Equal(t, "ARSMXN", cfg.Replay.Ticker)
	assert.Equal(t, "5m", cfg.Replay.Interval)
	assert.Equal(t, 5, cfg.Replay.Speed)
	assert.Equal(t, 1000, cfg.Replay.BarsPerLoad)
	assert.Equal(t, UpstreamFMP, cfg.Replay.Upstream)
	assert.Equal(t, RendererConsole, cfg.Replay.Renderer)
	assert.Equal(t, 10*time.Second, cfg.FMP.Timeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.ChartKafka.Brokers)
	assert.Equal(t, "chart-events", cfg.ChartKafka.Topic)
	assert.Equal(t, 2*time.Second, cfg.ChartKafka.WriteTimeout)
	assert.Equal(t, 2, cfg.ChartKafka.MaxAttempts)
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("REPLAY_TICKER", "EURUSD")
	t.Setenv("REPLAY_INTERVAL", "1d")
	t.Setenv("REPLAY_ANCHOR_DATE", "2023-09-01")
	t.Setenv("REPLAY_UPSTREAM", "parquet")
	t.Setenv("REPLAY_CACHE_ENABLED", "true")
	t.Setenv("CHART_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("REDIS_PREFIX_KEY", "replay:")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "EURUSD", cfg.Replay.Ticker)
	assert.Equal(t, "1d", cfg.Replay.Interval)
	assert.Equal(t, UpstreamParquet, cfg.Replay.Upstream)
	assert.True(t, cfg.Replay.CacheEnabled)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.ChartKafka.Brokers)
	assert.Equal(t, "replay:", cfg.Redis.PrefixKey)

	anchor, err := cfg.Replay.Anchor(time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC), anchor)
}

func TestConfig_Anchor(t *testing.T) {
	now := time.Date(2024, 3, 5, 17, 45, 0, 0, time.UTC)

	anchor, err := ReplayConfig{}.Anchor(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), anchor)

	_, err = ReplayConfig{AnchorDate: "03/05/2024"}.Anchor(now)
	assert.Error(t, err)
}
