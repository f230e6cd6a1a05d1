package chart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	barv1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	playbackv1 "github.com/muhammadchandra19/bar-replay/internal/domain/playback/v1"
	mockChart "github.com/muhammadchandra19/bar-replay/internal/infrastructure/kafka/chart/mock"
	"github.com/muhammadchandra19/bar-replay/pkg/config"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
	"github.com/muhammadchandra19/bar-replay/pkg/util"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureEvent(t *testing.T, out *Event) func(ctx context.Context, msgs ...kafka.Message) error {
	return func(ctx context.Context, msgs ...kafka.Message) error {
		require.Len(t, msgs, 1)
		assert.Equal(t, "session-1", string(msgs[0].Key))
		require.NoError(t, json.Unmarshal(msgs[0].Value, out))
		return nil
	}
}

func TestPublisher(t *testing.T) {
	bar := barv1.Bar{Time: 1693526400, Open: 1, High: 2, Low: 0.5, Close: 1.5, Date: "2023-09-01"}

	testCases := []struct {
		name     string
		call     func(ctx context.Context, p *Publisher) error
		mockFn   func(writer *mockChart.MockWriter, out *Event)
		assertFn func(t *testing.T, event Event, err error)
	}{
		{
			name: "set data",
			call: func(ctx context.Context, p *Publisher) error {
				return p.SetData(ctx, []barv1.Bar{bar})
			},
			mockFn: func(writer *mockChart.MockWriter, out *Event) {
				writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(captureEvent(t, out))
			},
			assertFn: func(t *testing.T, event Event, err error) {
				require.NoError(t, err)
				assert.Equal(t, EventSetData, event.Type)
				assert.Equal(t, "session-1", event.SessionID)
				assert.Equal(t, []barv1.Bar{bar}, event.Bars)
			},
		},
		{
			name: "update",
			call: func(ctx context.Context, p *Publisher) error {
				return p.Update(ctx, bar)
			},
			mockFn: func(writer *mockChart.MockWriter, out *Event) {
				writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(captureEvent(t, out))
			},
			assertFn: func(t *testing.T, event Event, err error) {
				require.NoError(t, err)
				assert.Equal(t, EventUpdate, event.Type)
				require.NotNil(t, event.Bar)
				assert.Equal(t, bar, *event.Bar)
			},
		},
		{
			name: "notice",
			call: func(ctx context.Context, p *Publisher) error {
				p.Notify(ctx, playbackv1.Notice{Kind: playbackv1.NoticeExhausted, Message: "No more data to load"})
				return nil
			},
			mockFn: func(writer *mockChart.MockWriter, out *Event) {
				writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(captureEvent(t, out))
			},
			assertFn: func(t *testing.T, event Event, err error) {
				assert.Equal(t, EventNotice, event.Type)
				require.NotNil(t, event.Notice)
				assert.Equal(t, playbackv1.NoticeExhausted, event.Notice.Kind)
			},
		},
		{
			name: "error - write fails",
			call: func(ctx context.Context, p *Publisher) error {
				return p.Update(ctx, bar)
			},
			mockFn: func(writer *mockChart.MockWriter, out *Event) {
				writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(errors.New("leader not available"))
			},
			assertFn: func(t *testing.T, event Event, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			writer := mockChart.NewMockWriter(ctrl)
			var event Event
			tc.mockFn(writer, &event)

			ctx := util.WithSessionID(context.Background(), "session-1")
			err := tc.call(ctx, NewPublisher(writer, time.Second, logger.NewNop()))
			tc.assertFn(t, event, err)
		})
	}
}

func TestPublisher_WriteTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	writer := mockChart.NewMockWriter(ctrl)
	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, msgs ...kafka.Message) error {
			<-ctx.Done()
			return ctx.Err()
		})

	p := NewPublisher(writer, 20*time.Millisecond, logger.NewNop())
	ctx := util.WithSessionID(context.Background(), "session-1")

	start := time.Now()
	err := p.Update(ctx, barv1.Bar{Time: 1693526400, Date: "2023-09-01"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.NoError(t, ctx.Err(), "the caller context is left alone")
}

func TestPublisher_NewWriter(t *testing.T) {
	w := NewWriter(config.ChartKafkaConfig{
		Brokers:      []string{"a:9092"},
		Topic:        "chart-events",
		WriteTimeout: 2 * time.Second,
		MaxAttempts:  2,
	})
	defer w.Close()

	assert.Equal(t, "chart-events", w.Topic)
	assert.Equal(t, 2*time.Second, w.WriteTimeout)
	assert.Equal(t, 2, w.MaxAttempts)
	assert.Equal(t, 1, w.BatchSize)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}
