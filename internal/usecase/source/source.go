package source

import (
	"context"
	"slices"
	"time"

	"github.com/muhammadchandra19/bar-replay/internal/domain/bar"
	v1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	"github.com/muhammadchandra19/bar-replay/pkg/errors"
	"github.com/muhammadchandra19/bar-replay/pkg/interval"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
)

var _ bar.Source = (*Usecase)(nil)

// Usecase is the bar source: it fetches one window from the upstream and
// normalizes it into an ascending, de-duplicated, range filtered sequence.
type Usecase struct {
	upstream bar.Upstream
	logger   logger.Interface
}

// NewUsecase creates a new bar source.
func NewUsecase(upstream bar.Upstream, logger logger.Interface) *Usecase {
	return &Usecase{upstream: upstream, logger: logger}
}

// Fetch returns the bars of ticker at intervalName whose time falls in [from, to+1 day).
// Sub-daily intervals and 1d are served as the upstream returns them, 1w and 1M are
// resampled from daily records. An empty upstream answer yields an empty slice.
// Upstream failures come back as transport errors and are not retried.
func (u *Usecase) Fetch(ctx context.Context, ticker, intervalName string, from, to time.Time) ([]v1.Bar, error) {
	iv, err := interval.GetInterval(intervalName)
	if err != nil {
		return nil, errors.NewErrorDetails(err.Error(), string(errors.ReplayInvalidInterval), "interval")
	}

	var raw []v1.RawBar
	if iv.IsIntraday() {
		raw, err = u.upstream.Intraday(ctx, ticker, iv.Granularity, from, to)
	} else {
		raw, err = u.upstream.Daily(ctx, ticker, from, to)
	}
	if err != nil {
		return nil, errors.NewTransportError(err)
	}

	bars := u.normalize(ctx, raw)

	if iv.Daily {
		bars, err = resample(iv, bars)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
	}

	out := Filter(bars, from, to)
	u.logger.DebugContext(ctx, "bars fetched",
		logger.NewField("interval", iv.Name),
		logger.NewField("from", from.UTC().Format(time.DateOnly)),
		logger.NewField("to", to.UTC().Format(time.DateOnly)),
		logger.NewField("upstream", len(raw)),
		logger.NewField("bars", len(out)),
	)
	return out, nil
}

// normalize converts raw records, sorts them ascending and keeps the first
// record of any repeated time. Records with an unreadable date are dropped.
func (u *Usecase) normalize(ctx context.Context, raw []v1.RawBar) []v1.Bar {
	bars := make([]v1.Bar, 0, len(raw))
	for _, r := range raw {
		b, err := r.ToBar()
		if err != nil {
			u.logger.WarnContext(ctx, "skipping upstream record", logger.NewField("date", r.Date))
			continue
		}
		bars = append(bars, b)
	}

	slices.SortStableFunc(bars, func(a, b v1.Bar) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})

	return slices.CompactFunc(bars, func(a, b v1.Bar) bool {
		return a.Time == b.Time
	})
}

func resample(iv interval.Interval, bars []v1.Bar) ([]v1.Bar, error) {
	data := make([]interval.OHLCData, len(bars))
	for i, b := range bars {
		data[i] = b.ToOHLCData()
	}

	resampled, err := iv.Resample(data)
	if err != nil {
		return nil, err
	}

	out := make([]v1.Bar, len(resampled))
	for i, d := range resampled {
		out[i] = v1.FromOHLCData(d)
	}
	return out, nil
}

// Filter keeps the bars whose time in millis lies in [from, to + 1 day).
func Filter(bars []v1.Bar, from, to time.Time) []v1.Bar {
	lo := from.UnixMilli()
	hi := to.Add(24 * time.Hour).UnixMilli()

	out := make([]v1.Bar, 0, len(bars))
	for _, b := range bars {
		ms := b.Time * 1000
		if ms >= lo && ms < hi {
			out = append(out, b)
		}
	}
	return out
}
