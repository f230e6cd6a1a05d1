package console

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	barv1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	playbackv1 "github.com/muhammadchandra19/bar-replay/internal/domain/playback/v1"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
	mockLogger "github.com/muhammadchandra19/bar-replay/pkg/logger/mock"
	"github.com/stretchr/testify/assert"
)

func TestRenderer(t *testing.T) {
	ctx := context.Background()
	bars := []barv1.Bar{
		{Time: 1693526400, Date: "2023-09-01"},
		{Time: 1693612800, Date: "2023-09-02"},
	}

	testCases := []struct {
		name   string
		call   func(r *Renderer) error
		mockFn func(log *mockLogger.MockInterface)
	}{
		{
			name: "set data",
			call: func(r *Renderer) error { return r.SetData(ctx, bars) },
			mockFn: func(log *mockLogger.MockInterface) {
				log.EXPECT().InfoContext(ctx, "chart reset",
					logger.NewField("bars", 2),
					logger.NewField("first", "2023-09-01"),
					logger.NewField("last", "2023-09-02"),
				)
			},
		},
		{
			name: "set data empty",
			call: func(r *Renderer) error { return r.SetData(ctx, nil) },
			mockFn: func(log *mockLogger.MockInterface) {
				log.EXPECT().InfoContext(ctx, "chart reset", logger.NewField("bars", 0))
			},
		},
		{
			name: "update",
			call: func(r *Renderer) error { return r.Update(ctx, bars[0]) },
			mockFn: func(log *mockLogger.MockInterface) {
				log.EXPECT().InfoContext(ctx, "bar", gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
			},
		},
		{
			name: "transport notice",
			call: func(r *Renderer) error {
				r.Notify(ctx, playbackv1.Notice{Kind: playbackv1.NoticeTransport, Message: "timeout"})
				return nil
			},
			mockFn: func(log *mockLogger.MockInterface) {
				log.EXPECT().WarnContext(ctx, "timeout", logger.NewField("kind", playbackv1.NoticeTransport))
			},
		},
		{
			name: "boundary notice",
			call: func(r *Renderer) error {
				r.Notify(ctx, playbackv1.Notice{Kind: playbackv1.NoticeBoundary, Message: "You can't go back anymore"})
				return nil
			},
			mockFn: func(log *mockLogger.MockInterface) {
				log.EXPECT().InfoContext(ctx, "You can't go back anymore", logger.NewField("kind", playbackv1.NoticeBoundary))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			log := mockLogger.NewMockInterface(ctrl)
			tc.mockFn(log)

			assert.NoError(t, tc.call(NewRenderer(log)))
		})
	}
}
