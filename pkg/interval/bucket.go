package interval

import (
	"time"
)

// CalculateBucketTime calculates the start time of the interval bucket in UTC.
func (i Interval) CalculateBucketTime(timestamp time.Time) time.Time {
	timestamp = timestamp.UTC()
	switch i.Name {
	case "1d":
		return time.Date(timestamp.Year(), timestamp.Month(), timestamp.Day(), 0, 0, 0, 0, time.UTC)
	case "1w":
		// ISO weeks start on Monday
		days := int(timestamp.Weekday())
		if days == 0 { // Sunday
			days = 7
		}
		day := time.Date(timestamp.Year(), timestamp.Month(), timestamp.Day(), 0, 0, 0, 0, time.UTC)
		return day.AddDate(0, 0, 1-days)
	case "1M":
		return time.Date(timestamp.Year(), timestamp.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return timestamp.Truncate(i.Duration)
	}
}

// BucketKey returns the bucket identifier used to group bars: the bucket start in epoch millis.
func (i Interval) BucketKey(timestamp time.Time) int64 {
	return i.CalculateBucketTime(timestamp).UnixMilli()
}

// IsInBucket checks if a timestamp falls within the same bucket as another timestamp
func (i Interval) IsInBucket(timestamp1, timestamp2 time.Time) bool {
	return i.BucketKey(timestamp1) == i.BucketKey(timestamp2)
}
