package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(date string) time.Time {
	t, _ := time.Parse("2006-01-02", date)
	return t
}

func TestInterval_GetInterval(t *testing.T) {
	for _, name := range []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d", "1w", "1M"} {
		iv, err := GetInterval(name)
		assert.NoError(t, err)
		assert.Equal(t, name, iv.Name)
	}

	_, err := GetInterval("2d")
	assert.Error(t, err)
	assert.False(t, IsValidInterval("1y"))
	assert.Len(t, GetAllIntervalNames(), 9)
}

func TestInterval_GetIntervalByGranularity(t *testing.T) {
	for _, i := range AllIntervals {
		got, err := GetIntervalByGranularity(i.Granularity)
		assert.NoError(t, err)
		assert.Equal(t, i.Name, got.Name)
	}

	_, err := GetIntervalByGranularity("2min")
	assert.Error(t, err)
}

func TestInterval_WindowDays(t *testing.T) {
	testCases := []struct {
		interval Interval
		want     int
	}{
		{interval: Interval1m, want: 2},
		{interval: Interval5m, want: 8},
		{interval: Interval15m, want: 22},
		{interval: Interval30m, want: 42},
		{interval: Interval1h, want: 84},
		{interval: Interval4h, want: 334},
		{interval: Interval1d, want: 2000},
		{interval: Interval1w, want: 2000},
		{interval: Interval1M, want: 2000},
	}

	for _, tc := range testCases {
		t.Run(tc.interval.Name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.interval.WindowDays(1000))
			assert.Equal(t, time.Duration(tc.want)*24*time.Hour, tc.interval.Window(1000))
		})
	}
}

func TestInterval_CalculateBucketTime(t *testing.T) {
	testCases := []struct {
		name     string
		interval Interval
		in       time.Time
		want     time.Time
	}{
		{
			name:     "week from wednesday",
			interval: Interval1w,
			in:       time.Date(2023, 9, 6, 15, 30, 0, 0, time.UTC),
			want:     day("2023-09-04"),
		},
		{
			name:     "week from sunday belongs to previous monday",
			interval: Interval1w,
			in:       day("2023-09-10"),
			want:     day("2023-09-04"),
		},
		{
			name:     "month",
			interval: Interval1M,
			in:       day("2023-09-29"),
			want:     day("2023-09-01"),
		},
		{
			name:     "day",
			interval: Interval1d,
			in:       time.Date(2023, 9, 6, 23, 59, 0, 0, time.UTC),
			want:     day("2023-09-06"),
		},
		{
			name:     "four hours",
			interval: Interval4h,
			in:       time.Date(2023, 9, 6, 7, 15, 0, 0, time.UTC),
			want:     time.Date(2023, 9, 6, 4, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.want.Equal(tc.interval.CalculateBucketTime(tc.in)))
		})
	}

	assert.True(t, Interval1w.IsInBucket(day("2023-09-04"), day("2023-09-10")))
	assert.False(t, Interval1w.IsInBucket(day("2023-09-10"), day("2023-09-11")))
}

func dailyBars(start string, n int) []OHLCData {
	first := day(start)
	bars := make([]OHLCData, 0, n)
	for i := 0; i < n; i++ {
		ts := first.AddDate(0, 0, i)
		base := float64(100 + i)
		bars = append(bars, OHLCData{
			Timestamp: ts,
			Date:      ts.Format("2006-01-02"),
			Open:      base,
			High:      base + 5,
			Low:       base - 5,
			Close:     base + 1,
		})
	}
	return bars
}

func TestInterval_ResampleWeekly(t *testing.T) {
	// Mon 2023-09-04 .. Sun 2023-09-10, then Mon 2023-09-11 .. Wed 2023-09-13
	bars := dailyBars("2023-09-04", 10)

	weekly, err := Interval1w.Resample(bars)
	require.NoError(t, err)
	require.Len(t, weekly, 2)

	first := weekly[0]
	assert.Equal(t, "2023-09-04", first.Date)
	assert.Equal(t, bars[0].Open, first.Open)
	assert.Equal(t, bars[6].Close, first.Close)
	assert.Equal(t, bars[6].High, first.High)
	assert.Equal(t, bars[0].Low, first.Low)

	// The trailing partial week is kept. Dropping it would lose Mon..Wed here.
	second := weekly[1]
	assert.Equal(t, "2023-09-11", second.Date)
	assert.Equal(t, bars[7].Open, second.Open)
	assert.Equal(t, bars[9].Close, second.Close)
	assert.Equal(t, bars[9].High, second.High)
	assert.Equal(t, bars[7].Low, second.Low)
}

func TestInterval_ResampleMonthly(t *testing.T) {
	bars := dailyBars("2023-08-30", 5) // Aug 30, 31, Sep 1, 2, 3

	monthly, err := Interval1M.Resample(bars)
	require.NoError(t, err)
	require.Len(t, monthly, 2)

	assert.Equal(t, "2023-08-30", monthly[0].Date)
	assert.Equal(t, bars[1].Close, monthly[0].Close)

	// The first bar of a new month opens that month's bar.
	assert.Equal(t, "2023-09-01", monthly[1].Date)
	assert.Equal(t, bars[2].Open, monthly[1].Open)
	assert.Equal(t, bars[2].Low, monthly[1].Low)
	assert.Equal(t, bars[4].High, monthly[1].High)
	assert.Equal(t, bars[4].Close, monthly[1].Close)
}

func TestInterval_ResampleEdges(t *testing.T) {
	out, err := Interval1w.Resample(nil)
	assert.NoError(t, err)
	assert.Empty(t, out)

	out, err = Interval1M.Resample(dailyBars("2023-09-01", 1))
	assert.NoError(t, err)
	assert.Len(t, out, 1)

	_, err = Interval1d.Resample(dailyBars("2023-09-01", 3))
	assert.Error(t, err)

	bars := dailyBars("2023-09-01", 30)
	out, err = Interval1w.Resample(bars)
	assert.NoError(t, err)
	assert.LessOrEqual(t, len(out), len(bars))
}
