package bootstrap

import (
	"context"

	"github.com/muhammadchandra19/bar-replay/internal/domain/playback"
	"github.com/muhammadchandra19/bar-replay/internal/infrastructure/console"
	"github.com/muhammadchandra19/bar-replay/internal/infrastructure/kafka/chart"
	"github.com/muhammadchandra19/bar-replay/pkg/config"
)

// Renderer is the chart surface of the session.
type Renderer struct {
	Renderer playback.Renderer
	Notifier playback.Notifier
}

// registerRenderer registers the renderer.
func (b *Bootstrap) registerRenderer() {
	switch b.Config.Replay.Renderer {
	case config.RendererKafka:
		publisher := chart.NewPublisher(chart.NewWriter(b.Config.ChartKafka), b.Config.ChartKafka.WriteTimeout, b.Logger)
		b.onClose(func(context.Context) error {
			return publisher.Close()
		})
		b.Renderer.Renderer = publisher
		b.Renderer.Notifier = publisher
	default:
		r := console.NewRenderer(b.Logger)
		b.Renderer.Renderer = r
		b.Renderer.Notifier = r
	}
}
