package interval

import (
	"fmt"
	"math"
	"time"
)

// Interval represents the bucket width of replayed bars.
type Interval struct {
	Name     string
	Duration time.Duration
	// Granularity is the upstream query granularity name.
	Granularity string
	// DaySpan is the approximate number of days one upstream record covers.
	DaySpan float64
	// Daily marks intervals resampled from daily upstream records.
	Daily bool
}

// Supported intervals configuration
var (
	Interval1m  = Interval{Name: "1m", Duration: time.Minute, Granularity: "1min", DaySpan: 1.0 / 24 / 60}
	Interval5m  = Interval{Name: "5m", Duration: 5 * time.Minute, Granularity: "5min", DaySpan: 5.0 / 24 / 60}
	Interval15m = Interval{Name: "15m", Duration: 15 * time.Minute, Granularity: "15min", DaySpan: 15.0 / 24 / 60}
	Interval30m = Interval{Name: "30m", Duration: 30 * time.Minute, Granularity: "30min", DaySpan: 30.0 / 24 / 60}
	Interval1h  = Interval{Name: "1h", Duration: time.Hour, Granularity: "1hour", DaySpan: 1.0 / 24}
	Interval4h  = Interval{Name: "4h", Duration: 4 * time.Hour, Granularity: "4hour", DaySpan: 4.0 / 24}
	Interval1d  = Interval{Name: "1d", Duration: 24 * time.Hour, Granularity: "1day", DaySpan: 1}
	// weekly and monthly bars are built from daily records, so a page is sized in days
	Interval1w = Interval{Name: "1w", Duration: 7 * 24 * time.Hour, Granularity: "1week", DaySpan: 1, Daily: true}
	Interval1M = Interval{Name: "1M", Duration: 30 * 24 * time.Hour, Granularity: "1month", DaySpan: 1, Daily: true}
)

// AllIntervals lists every supported interval, finest first.
var AllIntervals = []Interval{
	Interval1m, Interval5m, Interval15m, Interval30m,
	Interval1h, Interval4h, Interval1d, Interval1w, Interval1M,
}

// Interval registry for lookup
var (
	intervalRegistry    = make(map[string]Interval)
	granularityRegistry = make(map[string]Interval)
)

func init() {
	for _, interval := range AllIntervals {
		intervalRegistry[interval.Name] = interval
		granularityRegistry[interval.Granularity] = interval
	}
}

// GetInterval returns an interval by name
func GetInterval(name string) (Interval, error) {
	interval, exists := intervalRegistry[name]
	if !exists {
		return Interval{}, fmt.Errorf("unsupported interval: %s", name)
	}
	return interval, nil
}

// GetIntervalByGranularity returns the interval an upstream granularity name belongs to.
func GetIntervalByGranularity(granularity string) (Interval, error) {
	interval, exists := granularityRegistry[granularity]
	if !exists {
		return Interval{}, fmt.Errorf("unsupported granularity: %s", granularity)
	}
	return interval, nil
}

// IsValidInterval checks if interval name is supported
func IsValidInterval(name string) bool {
	_, exists := intervalRegistry[name]
	return exists
}

// GetAllIntervalNames returns all supported interval names
func GetAllIntervalNames() []string {
	names := make([]string, 0, len(AllIntervals))
	for _, interval := range AllIntervals {
		names = append(names, interval.Name)
	}
	return names
}

// IsIntraday reports whether bars of this interval carry a time of day.
func (i Interval) IsIntraday() bool {
	return i.Duration < 24*time.Hour
}

// WindowDays is the width in days of one fetched page: twice the days needed
// to cover barsPerLoad upstream records.
func (i Interval) WindowDays(barsPerLoad int) int {
	return 2 * int(math.Ceil(float64(barsPerLoad)*i.DaySpan))
}

// Window is WindowDays as a duration.
func (i Interval) Window(barsPerLoad int) time.Duration {
	return time.Duration(i.WindowDays(barsPerLoad)) * 24 * time.Hour
}

func (i Interval) String() string {
	return i.Name
}
