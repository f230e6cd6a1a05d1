package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	mockBar "github.com/muhammadchandra19/bar-replay/internal/domain/bar/mock"
	v1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	pkgerrors "github.com/muhammadchandra19/bar-replay/pkg/errors"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

// descendingDaily returns n daily records starting at start, newest first.
func descendingDaily(start string, n int) []v1.RawBar {
	out := make([]v1.RawBar, n)
	first := day(start)
	for i := 0; i < n; i++ {
		p := float64(i + 1)
		out[n-1-i] = v1.RawBar{
			Date:  first.AddDate(0, 0, i).Format(time.DateOnly),
			Open:  p,
			High:  p + 2,
			Low:   p - 1,
			Close: p + 1,
		}
	}
	return out
}

func assertAscending(t *testing.T, bars []v1.Bar) {
	t.Helper()
	for i := 1; i < len(bars); i++ {
		assert.Greater(t, bars[i].Time, bars[i-1].Time)
	}
}

func TestSource_Fetch(t *testing.T) {
	testCases := []struct {
		name     string
		interval string
		from, to time.Time
		mockFn   func(up *mockBar.MockUpstream)
		assertFn func(t *testing.T, bars []v1.Bar, err error)
	}{
		{
			name:     "daily ascending and filtered",
			interval: "1d",
			from:     day("2023-09-01"),
			to:       day("2023-09-05"),
			mockFn: func(up *mockBar.MockUpstream) {
				// provider answers a wider window than asked
				up.EXPECT().Daily(gomock.Any(), "EURUSD", day("2023-09-01"), day("2023-09-05")).
					Return(descendingDaily("2023-08-30", 10), nil)
			},
			assertFn: func(t *testing.T, bars []v1.Bar, err error) {
				require.NoError(t, err)
				require.Len(t, bars, 5)
				assert.Equal(t, "2023-09-01", bars[0].Date)
				assert.Equal(t, "2023-09-05", bars[4].Date)
				assertAscending(t, bars)
			},
		},
		{
			name:     "intraday uses granularity",
			interval: "5m",
			from:     day("2023-09-01"),
			to:       day("2023-09-01"),
			mockFn: func(up *mockBar.MockUpstream) {
				up.EXPECT().Intraday(gomock.Any(), "EURUSD", "5min", day("2023-09-01"), day("2023-09-01")).
					Return([]v1.RawBar{
						{Date: "2023-09-02 00:00:00"},
						{Date: "2023-09-01 23:55:00"},
						{Date: "2023-09-01 00:00:00"},
						{Date: "2023-08-31 23:55:00"},
					}, nil)
			},
			assertFn: func(t *testing.T, bars []v1.Bar, err error) {
				require.NoError(t, err)
				require.Len(t, bars, 2)
				assert.Equal(t, "2023-09-01 00:00:00", bars[0].Date)
				assert.Equal(t, "2023-09-01 23:55:00", bars[1].Date)
			},
		},
		{
			name:     "duplicates and bad dates dropped",
			interval: "1d",
			from:     day("2023-09-01"),
			to:       day("2023-09-03"),
			mockFn: func(up *mockBar.MockUpstream) {
				up.EXPECT().Daily(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]v1.RawBar{
						{Date: "2023-09-02", Close: 2},
						{Date: "2023-09-02", Close: 3},
						{Date: "not a date"},
						{Date: "2023-09-01", Close: 1},
					}, nil)
			},
			assertFn: func(t *testing.T, bars []v1.Bar, err error) {
				require.NoError(t, err)
				require.Len(t, bars, 2)
				assert.Equal(t, 2.0, bars[1].Close)
			},
		},
		{
			name:     "weekly resampled from daily",
			interval: "1w",
			from:     day("2023-09-04"),
			to:       day("2023-09-13"),
			mockFn: func(up *mockBar.MockUpstream) {
				up.EXPECT().Daily(gomock.Any(), "EURUSD", day("2023-09-04"), day("2023-09-13")).
					Return(descendingDaily("2023-09-04", 10), nil)
			},
			assertFn: func(t *testing.T, bars []v1.Bar, err error) {
				require.NoError(t, err)
				require.Len(t, bars, 2)
				// Mon 09-04..Sun 09-10 then Mon 09-11..Wed 09-13
				assert.Equal(t, "2023-09-04", bars[0].Date)
				assert.Equal(t, 1.0, bars[0].Open)
				assert.Equal(t, 8.0, bars[0].Close)
				assert.Equal(t, 9.0, bars[0].High)
				assert.Equal(t, 0.0, bars[0].Low)
				// the trailing week is kept
				assert.Equal(t, "2023-09-11", bars[1].Date)
				assert.Equal(t, 8.0, bars[1].Open)
				assert.Equal(t, 11.0, bars[1].Close)
			},
		},
		{
			name:     "monthly resampled from daily",
			interval: "1M",
			from:     day("2023-08-30"),
			to:       day("2023-09-03"),
			mockFn: func(up *mockBar.MockUpstream) {
				up.EXPECT().Daily(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(descendingDaily("2023-08-30", 5), nil)
			},
			assertFn: func(t *testing.T, bars []v1.Bar, err error) {
				require.NoError(t, err)
				require.Len(t, bars, 2)
				assert.Equal(t, "2023-08-30", bars[0].Date)
				assert.Equal(t, "2023-09-01", bars[1].Date)
			},
		},
		{
			name:     "empty upstream",
			interval: "1d",
			from:     day("2023-09-01"),
			to:       day("2023-09-05"),
			mockFn: func(up *mockBar.MockUpstream) {
				up.EXPECT().Daily(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			assertFn: func(t *testing.T, bars []v1.Bar, err error) {
				require.NoError(t, err)
				assert.NotNil(t, bars)
				assert.Empty(t, bars)
			},
		},
		{
			name:     "error - transport",
			interval: "1h",
			from:     day("2023-09-01"),
			to:       day("2023-09-05"),
			mockFn: func(up *mockBar.MockUpstream) {
				up.EXPECT().Intraday(gomock.Any(), gomock.Any(), "1hour", gomock.Any(), gomock.Any()).
					Return(nil, errors.New("connection reset"))
			},
			assertFn: func(t *testing.T, bars []v1.Bar, err error) {
				assert.Error(t, err)
				assert.True(t, pkgerrors.IsTransportError(err))
				assert.Nil(t, bars)
			},
		},
		{
			name:     "error - unknown interval",
			interval: "2d",
			mockFn:   func(up *mockBar.MockUpstream) {},
			assertFn: func(t *testing.T, bars []v1.Bar, err error) {
				assert.Error(t, err)
				assert.True(t, pkgerrors.ErrorCodeEquals(err, string(pkgerrors.ReplayInvalidInterval)))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			up := mockBar.NewMockUpstream(ctrl)
			tc.mockFn(up)

			bars, err := NewUsecase(up, logger.NewNop()).Fetch(context.Background(), "EURUSD", tc.interval, tc.from, tc.to)
			tc.assertFn(t, bars, err)
		})
	}
}

func TestSource_Filter(t *testing.T) {
	base := day("2023-09-01")
	bars := make([]v1.Bar, 10)
	for i := range bars {
		bars[i] = v1.Bar{Time: base.AddDate(0, 0, i).Unix()}
	}

	// [09-03, 09-05 + 1 day) holds t2..t4
	out := Filter(bars, base.AddDate(0, 0, 2), base.AddDate(0, 0, 4))
	require.Len(t, out, 3)
	assert.Equal(t, bars[2:5], out)

	assert.Empty(t, Filter(bars, base.AddDate(0, 0, 20), base.AddDate(0, 0, 30)))
	assert.Len(t, Filter(bars, base, base.AddDate(0, 0, 9)), 10)
}
