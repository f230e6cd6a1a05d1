package ohlc

import (
	"time"

	v1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
)

const (
	dailyLayout    = "2006-01-02"
	intradayLayout = "2006-01-02 15:04:05"
)

// OHLC is one row of the ohlc table.
type OHLC struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

// List is a list of OHLC.
type List []*OHLC

// ToRawBar renders the row the way the HTTP provider would.
func (o *OHLC) ToRawBar(intraday bool) v1.RawBar {
	layout := dailyLayout
	if intraday {
		layout = intradayLayout
	}
	return v1.RawBar{
		Date:  o.Timestamp.UTC().Format(layout),
		Open:  o.Open,
		High:  o.High,
		Low:   o.Low,
		Close: o.Close,
	}
}

// ToRawBars converts every row, keeping order.
func (l List) ToRawBars(intraday bool) []v1.RawBar {
	out := make([]v1.RawBar, len(l))
	for i, o := range l {
		out[i] = o.ToRawBar(intraday)
	}
	return out
}

// OHLCFilter represents the filter criteria for OHLC rows. To is exclusive.
type OHLCFilter struct {
	Symbol   string
	Interval string
	From     time.Time
	To       time.Time
}
