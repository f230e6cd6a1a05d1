package main

import (
	"math"
	"math/rand"
	"time"

	"github.com/muhammadchandra19/bar-replay/internal/infrastructure/parquet"
)

// generateBars walks a price from basePrice, one bar per step starting at start.
// Every bar opens at the previous close and keeps low <= open, close <= high.
func generateBars(rng *rand.Rand, start time.Time, step time.Duration, count int, basePrice, priceSpread float64) []parquet.Row {
	rows := make([]parquet.Row, count)
	price := basePrice

	for i := 0; i < count; i++ {
		open := price
		last := open + (rng.Float64()-0.5)*priceSpread
		if last <= 0 {
			last = basePrice
		}

		high := math.Max(open, last) + rng.Float64()*priceSpread*0.25
		low := math.Min(open, last) - rng.Float64()*priceSpread*0.25
		if low <= 0 {
			low = math.Min(open, last)
		}

		rows[i] = parquet.Row{
			T:     start.Add(time.Duration(i) * step).UnixMilli(),
			Open:  round(open),
			High:  round(high),
			Low:   round(low),
			Close: round(last),
		}
		price = last
	}

	return rows
}

// round keeps four decimal places.
func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
