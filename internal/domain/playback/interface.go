package playback

import (
	"context"

	barv1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	v1 "github.com/muhammadchandra19/bar-replay/internal/domain/playback/v1"
)

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=mock

// Renderer is the chart surface bars are drawn on.
type Renderer interface {
	// SetData replaces everything drawn with bars.
	SetData(ctx context.Context, bars []barv1.Bar) error
	// Update draws one bar. Its Time is never lower than the last drawn bar.
	Update(ctx context.Context, bar barv1.Bar) error
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(ctx context.Context, notice v1.Notice)
}
