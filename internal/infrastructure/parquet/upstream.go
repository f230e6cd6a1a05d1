package parquet

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/muhammadchandra19/bar-replay/internal/domain/bar"
	v1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	"github.com/muhammadchandra19/bar-replay/pkg/errors"
	"github.com/muhammadchandra19/bar-replay/pkg/interval"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
	"github.com/parquet-go/parquet-go"
)

const (
	dailyLayout    = "2006-01-02"
	intradayLayout = "2006-01-02 15:04:05"
)

// Row is one bar as stored on disk. T is unix millis.
type Row struct {
	T     int64   `json:"t" parquet:"t"`
	Open  float64 `json:"o" parquet:"o"`
	High  float64 `json:"h" parquet:"h"`
	Low   float64 `json:"l" parquet:"l"`
	Close float64 `json:"c" parquet:"c"`
}

var _ bar.Upstream = (*Upstream)(nil)

// Upstream replays bars from files laid out as {dir}/{TICKER}/{granularity}.parquet.
type Upstream struct {
	dir    string
	logger logger.Interface
}

// NewUpstream creates an offline upstream rooted at dir.
func NewUpstream(dir string, log logger.Interface) *Upstream {
	return &Upstream{dir: dir, logger: log}
}

// Path returns the file holding ticker bars of the given granularity.
func (u *Upstream) Path(ticker, granularity string) string {
	return filepath.Join(u.dir, strings.ToUpper(ticker), granularity+".parquet")
}

// Intraday returns stored records within the inclusive days [from, to], newest first.
func (u *Upstream) Intraday(ctx context.Context, ticker, granularity string, from, to time.Time) ([]v1.RawBar, error) {
	iv, err := interval.GetIntervalByGranularity(granularity)
	if err != nil {
		return nil, errors.TracerFromError(err).WithCode(errors.GeneralBadRequestError)
	}
	return u.read(ctx, u.Path(ticker, granularity), iv.IsIntraday(), from, to)
}

// Daily returns stored daily records within the inclusive days [from, to], newest first.
func (u *Upstream) Daily(ctx context.Context, ticker string, from, to time.Time) ([]v1.RawBar, error) {
	return u.read(ctx, u.Path(ticker, interval.Interval1d.Granularity), false, from, to)
}

func (u *Upstream) read(ctx context.Context, path string, intraday bool, from, to time.Time) ([]v1.RawBar, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			u.logger.DebugContext(ctx, "no bar file", logger.NewField("path", path))
			return []v1.RawBar{}, nil
		}
		return nil, errors.TracerFromError(err).WithCode(errors.UpstreamDecodeError)
	}

	lo := from.UTC().UnixMilli()
	hi := to.UTC().AddDate(0, 0, 1).UnixMilli()

	layout := dailyLayout
	if intraday {
		layout = intradayLayout
	}

	selected := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.T >= lo && r.T < hi {
			selected = append(selected, r)
		}
	}
	slices.SortFunc(selected, func(a, b Row) int {
		switch {
		case a.T > b.T:
			return -1
		case a.T < b.T:
			return 1
		}
		return 0
	})

	out := make([]v1.RawBar, len(selected))
	for i, r := range selected {
		out[i] = v1.RawBar{
			Date:  time.UnixMilli(r.T).UTC().Format(layout),
			Open:  r.Open,
			High:  r.High,
			Low:   r.Low,
			Close: r.Close,
		}
	}
	return out, nil
}

// Write stores rows for ticker and granularity, replacing any existing file.
func (u *Upstream) Write(ticker, granularity string, rows []Row) error {
	path := u.Path(ticker, granularity)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.TracerFromError(err)
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return errors.TracerFromError(err)
	}
	return nil
}
