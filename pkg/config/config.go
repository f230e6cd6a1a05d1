package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/muhammadchandra19/bar-replay/pkg/questdb"
	"github.com/muhammadchandra19/bar-replay/pkg/redis"
)

// Config represents the application configuration.
type Config struct {
	App        AppConfig        `envPrefix:"APP_"`
	Replay     ReplayConfig     `envPrefix:"REPLAY_"`
	FMP        FMPConfig        `envPrefix:"FMP_"`
	QuestDB    questdb.Config   `envPrefix:"QUESTDB_"`
	Redis      redis.Config     `envPrefix:"REDIS_"`
	Parquet    ParquetConfig    `envPrefix:"PARQUET_"`
	ChartKafka ChartKafkaConfig `envPrefix:"CHART_KAFKA_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"bar-replay"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	// HealthAddr serves GET /health when set, e.g. ":8080".
	HealthAddr string `env:"HEALTH_ADDR"`
}

// Upstream names the provider bars are fetched from.
type Upstream string

const (
	// UpstreamFMP fetches from the financialmodelingprep HTTP API.
	UpstreamFMP Upstream = "fmp"
	// UpstreamQuestDB reads the ohlc table of a QuestDB instance.
	UpstreamQuestDB Upstream = "questdb"
	// UpstreamParquet reads local parquet bar files.
	UpstreamParquet Upstream = "parquet"
)

// Renderer names where chart events go.
type Renderer string

const (
	// RendererConsole writes chart events through the logger.
	RendererConsole Renderer = "console"
	// RendererKafka publishes chart events to a Kafka topic.
	RendererKafka Renderer = "kafka"
)

// ReplayConfig holds the session defaults.
type ReplayConfig struct {
	Ticker       string   `env:"TICKER" envDefault:"ARSMXN"`
	Interval     string   `env:"INTERVAL" envDefault:"5m"`
	AnchorDate   string   `env:"ANCHOR_DATE"`
	Speed        int      `env:"SPEED" envDefault:"5"`
	BarsPerLoad  int      `env:"BARS_PER_LOAD" envDefault:"1000"`
	Upstream     Upstream `env:"UPSTREAM" envDefault:"fmp"`
	Renderer     Renderer `env:"RENDERER" envDefault:"console"`
	CacheEnabled bool     `env:"CACHE_ENABLED" envDefault:"false"`
}

// Anchor parses AnchorDate, falling back to the start of today in UTC.
func (c ReplayConfig) Anchor(now time.Time) (time.Time, error) {
	if c.AnchorDate == "" {
		now = now.UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	anchor, err := time.Parse("2006-01-02", c.AnchorDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid anchor date %q: %w", c.AnchorDate, err)
	}
	return anchor, nil
}

// FMPConfig represents the financialmodelingprep HTTP upstream configuration.
type FMPConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://financialmodelingprep.com/api/v3"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// ParquetConfig represents the offline parquet upstream configuration.
type ParquetConfig struct {
	Dir string `env:"DIR" envDefault:"data/bars"`
}

// ChartKafkaConfig represents the Kafka configuration for chart events.
type ChartKafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"chart-events"`
	// WriteTimeout bounds one publish, retries included. The player holds its
	// lock while publishing.
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"2s"`
	MaxAttempts  int           `env:"MAX_ATTEMPTS" envDefault:"2"`
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
