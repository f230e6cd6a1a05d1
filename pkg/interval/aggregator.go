package interval

import (
	"fmt"
	"math"
	"time"
)

// OHLCData is one bar as seen by the aggregator.
type OHLCData struct {
	Timestamp time.Time
	Date      string
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

// Resample folds ascending daily bars into one bar per calendar bucket of i
// (ISO week for 1w, calendar month for 1M). Open is the first bar's open, close
// the last bar's close, high/low the extremes of the bucket. The aggregated bar
// keeps the timestamp and date of the first daily bar in its bucket.
//
// The trailing in-progress bucket is flushed too, so the output always covers
// every input bar.
func (i Interval) Resample(bars []OHLCData) ([]OHLCData, error) {
	if i.Name != Interval1w.Name && i.Name != Interval1M.Name {
		return nil, fmt.Errorf("interval %s is not resampled from daily bars", i.Name)
	}
	if len(bars) == 0 {
		return []OHLCData{}, nil
	}

	out := make([]OHLCData, 0, len(bars)/5+1)
	current := bars[0]
	currentKey := i.BucketKey(current.Timestamp)

	for _, bar := range bars[1:] {
		key := i.BucketKey(bar.Timestamp)
		if key != currentKey {
			out = append(out, current)
			current = bar
			currentKey = key
			continue
		}

		current.High = math.Max(current.High, bar.High)
		current.Low = math.Min(current.Low, bar.Low)
		current.Close = bar.Close
	}

	return append(out, current), nil
}
