package v1

import (
	"fmt"
	"strings"
	"time"

	"github.com/muhammadchandra19/bar-replay/pkg/interval"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// RawBar is one upstream record as the provider returns it.
type RawBar struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Bar is one OHLC record for a fixed time bucket. Time is epoch seconds derived from Date.
type Bar struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
	Date  string  `json:"date"`
}

// ParseDate turns a provider date into a UTC timestamp. Daily records carry
// YYYY-MM-DD (UTC midnight), intraday ones YYYY-MM-DD HH:MM:SS.
func ParseDate(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	layout := dateLayout
	if len(date) > len(dateLayout) {
		layout = dateTimeLayout
	}
	t, err := time.ParseInLocation(layout, date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid bar date %q: %w", date, err)
	}
	return t, nil
}

// ToBar converts a raw record, deriving Time from Date.
func (r RawBar) ToBar() (Bar, error) {
	t, err := ParseDate(r.Date)
	if err != nil {
		return Bar{}, err
	}
	return Bar{
		Time:  t.Unix(),
		Open:  r.Open,
		High:  r.High,
		Low:   r.Low,
		Close: r.Close,
		Date:  r.Date,
	}, nil
}

// Timestamp returns Time as a UTC time.Time.
func (b Bar) Timestamp() time.Time {
	return time.Unix(b.Time, 0).UTC()
}

// ToOHLCData converts the bar for the interval aggregator.
func (b Bar) ToOHLCData() interval.OHLCData {
	return interval.OHLCData{
		Timestamp: b.Timestamp(),
		Date:      b.Date,
		Open:      b.Open,
		High:      b.High,
		Low:       b.Low,
		Close:     b.Close,
	}
}

// FromOHLCData converts an aggregated bar back.
func FromOHLCData(d interval.OHLCData) Bar {
	return Bar{
		Time:  d.Timestamp.Unix(),
		Open:  d.Open,
		High:  d.High,
		Low:   d.Low,
		Close: d.Close,
		Date:  d.Date,
	}
}

// Page is one fetched window of bars. RangeStart and RangeEnd are epoch millis,
// the window is [RangeStart, RangeEnd).
type Page struct {
	Bars       []Bar
	RangeStart int64
	RangeEnd   int64
}

// Start returns RangeStart as time.
func (p Page) Start() time.Time {
	return time.UnixMilli(p.RangeStart).UTC()
}

// End returns RangeEnd as time.
func (p Page) End() time.Time {
	return time.UnixMilli(p.RangeEnd).UTC()
}

// Key identifies a paginated sequence of pages.
type Key struct {
	Ticker   string
	Interval string
	Anchor   time.Time
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Ticker, k.Interval, k.Anchor.UTC().Format(dateLayout))
}
