package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/muhammadchandra19/bar-replay/internal/infrastructure/parquet"
	"github.com/muhammadchandra19/bar-replay/pkg/interval"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
)

func main() {
	var (
		ticker      = flag.String("ticker", "ARSMXN", "ticker the bars belong to")
		granularity = flag.String("granularity", "5min", "upstream granularity, e.g. 1min, 5min, 1hour, 1day")
		start       = flag.String("start", "2023-08-01", "date of the first bar (YYYY-MM-DD, UTC)")
		count       = flag.Int("count", 10000, "number of bars to generate")
		basePrice   = flag.Float64("base-price", 0.0485, "price the walk starts from")
		priceSpread = flag.Float64("price-spread", 0.0004, "maximum move between two closes")
		dir         = flag.String("dir", "data/bars", "root directory of the parquet upstream")
		seed        = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	)
	flag.Parse()

	log, err := logger.NewLogger()
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	iv, err := interval.GetIntervalByGranularity(*granularity)
	if err != nil {
		log.Error(err, logger.NewField("granularity", *granularity))
		os.Exit(1)
	}

	first, err := time.Parse("2006-01-02", *start)
	if err != nil {
		log.Error(err, logger.NewField("start", *start))
		os.Exit(1)
	}

	rows := generateBars(rand.New(rand.NewSource(*seed)), first, iv.Duration, *count, *basePrice, *priceSpread)

	upstream := parquet.NewUpstream(*dir, log)
	if err := upstream.Write(*ticker, *granularity, rows); err != nil {
		log.Error(err, logger.NewField("path", upstream.Path(*ticker, *granularity)))
		os.Exit(1)
	}

	log.Info("bars written",
		logger.NewField("path", upstream.Path(*ticker, *granularity)),
		logger.NewField("bars", len(rows)),
		logger.NewField("interval", iv.Name),
	)
}
