package bar

import (
	"context"
	"time"

	v1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
)

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=mock

// Upstream is the raw market data provider. Records come back in provider
// order, newest first. from and to are calendar days, both inclusive.
type Upstream interface {
	Intraday(ctx context.Context, ticker, granularity string, from, to time.Time) ([]v1.RawBar, error)
	Daily(ctx context.Context, ticker string, from, to time.Time) ([]v1.RawBar, error)
}

// Source fetches a normalized bar window for the given interval.
// The result is strictly ascending by Time and limited to [from, to+1 day).
type Source interface {
	Fetch(ctx context.Context, ticker, interval string, from, to time.Time) ([]v1.Bar, error)
}
