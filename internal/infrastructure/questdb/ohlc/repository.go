package ohlc

import (
	"context"
	"time"

	"github.com/muhammadchandra19/bar-replay/internal/domain/bar"
	v1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	"github.com/muhammadchandra19/bar-replay/pkg/errors"
	"github.com/muhammadchandra19/bar-replay/pkg/interval"
	"github.com/muhammadchandra19/bar-replay/pkg/questdb"
)

const selectByFilter = `SELECT timestamp, open, high, low, close FROM ohlc
			  WHERE symbol = $1 AND interval = $2 AND timestamp >= $3 AND timestamp < $4
			  ORDER BY timestamp DESC`

var _ bar.Upstream = (*Repository)(nil)

// Repository serves stored bars from the QuestDB ohlc table.
type Repository struct {
	client questdb.QuestDBClient
}

// NewRepository creates a new OHLC repository.
func NewRepository(client questdb.QuestDBClient) *Repository {
	return &Repository{
		client: client,
	}
}

// Intraday returns rows of the interval matching granularity, newest first.
func (r *Repository) Intraday(ctx context.Context, ticker, granularity string, from, to time.Time) ([]v1.RawBar, error) {
	iv, err := interval.GetIntervalByGranularity(granularity)
	if err != nil {
		return nil, errors.TracerFromError(err).WithCode(errors.GeneralBadRequestError)
	}

	rows, err := r.GetByFilter(ctx, filterFor(ticker, iv, from, to))
	if err != nil {
		return nil, err
	}
	return rows.ToRawBars(iv.IsIntraday()), nil
}

// Daily returns 1d rows, newest first.
func (r *Repository) Daily(ctx context.Context, ticker string, from, to time.Time) ([]v1.RawBar, error) {
	rows, err := r.GetByFilter(ctx, filterFor(ticker, interval.Interval1d, from, to))
	if err != nil {
		return nil, err
	}
	return rows.ToRawBars(false), nil
}

// filterFor turns the inclusive calendar days [from, to] into [from, to+1d).
func filterFor(ticker string, iv interval.Interval, from, to time.Time) OHLCFilter {
	return OHLCFilter{
		Symbol:   ticker,
		Interval: iv.Name,
		From:     from.UTC(),
		To:       to.UTC().AddDate(0, 0, 1),
	}
}

// GetByFilter retrieves OHLC rows by filter.
func (r *Repository) GetByFilter(ctx context.Context, filter OHLCFilter) (List, error) {
	rows, err := r.client.Query(ctx, selectByFilter, filter.Symbol, filter.Interval, filter.From, filter.To)
	if err != nil {
		return nil, errors.TracerFromError(err).WithCode(errors.QuestDBQueryError)
	}
	defer rows.Close()

	var ohlcs List
	for rows.Next() {
		ohlc := &OHLC{}
		err := rows.Scan(&ohlc.Timestamp, &ohlc.Open, &ohlc.High, &ohlc.Low, &ohlc.Close)
		if err != nil {
			return nil, errors.TracerFromError(err).WithCode(errors.QuestDBQueryError)
		}
		ohlcs = append(ohlcs, ohlc)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err).WithCode(errors.QuestDBQueryError)
	}

	return ohlcs, nil
}
