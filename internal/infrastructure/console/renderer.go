package console

import (
	"context"

	barv1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	"github.com/muhammadchandra19/bar-replay/internal/domain/playback"
	playbackv1 "github.com/muhammadchandra19/bar-replay/internal/domain/playback/v1"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
)

var (
	_ playback.Renderer = (*Renderer)(nil)
	_ playback.Notifier = (*Renderer)(nil)
)

// Renderer draws the chart as log lines.
type Renderer struct {
	logger logger.Interface
}

// NewRenderer creates a log backed renderer.
func NewRenderer(log logger.Interface) *Renderer {
	return &Renderer{logger: log}
}

// SetData logs the span of the redrawn sequence.
func (r *Renderer) SetData(ctx context.Context, bars []barv1.Bar) error {
	fields := []logger.Field{logger.NewField("bars", len(bars))}
	if len(bars) > 0 {
		fields = append(fields,
			logger.NewField("first", bars[0].Date),
			logger.NewField("last", bars[len(bars)-1].Date),
		)
	}
	r.logger.InfoContext(ctx, "chart reset", fields...)
	return nil
}

// Update logs one bar.
func (r *Renderer) Update(ctx context.Context, bar barv1.Bar) error {
	r.logger.InfoContext(ctx, "bar",
		logger.NewField("date", bar.Date),
		logger.NewField("time", bar.Time),
		logger.NewField("open", bar.Open),
		logger.NewField("high", bar.High),
		logger.NewField("low", bar.Low),
		logger.NewField("close", bar.Close),
	)
	return nil
}

// Notify logs a notice, transport failures as warnings.
func (r *Renderer) Notify(ctx context.Context, notice playbackv1.Notice) {
	field := logger.NewField("kind", notice.Kind)
	if notice.Kind == playbackv1.NoticeTransport {
		r.logger.WarnContext(ctx, notice.Message, field)
		return
	}
	r.logger.InfoContext(ctx, notice.Message, field)
}
