package bootstrap

import (
	v1 "github.com/muhammadchandra19/bar-replay/internal/domain/playback/v1"
	"github.com/muhammadchandra19/bar-replay/internal/usecase/command"
	"github.com/muhammadchandra19/bar-replay/internal/usecase/playback"
	"github.com/muhammadchandra19/bar-replay/internal/usecase/source"
	"github.com/muhammadchandra19/bar-replay/pkg/errors"
)

// Usecase holds the session usecases.
type Usecase struct {
	Source *source.Usecase
	Bus    *command.Bus
	Player *playback.Player
}

// registerUsecase registers the usecase.
func (b *Bootstrap) registerUsecase() error {
	state, err := b.initialState()
	if err != nil {
		return err
	}

	b.Usecase.Source = source.NewUsecase(b.Upstream.Cached, b.Logger)
	b.Usecase.Bus = command.NewBus(b.Logger)
	b.Usecase.Player = playback.NewPlayer(
		b.Usecase.Source,
		b.Renderer.Renderer,
		b.Renderer.Notifier,
		b.Logger,
		state,
		playback.WithClock(b.now),
		playback.WithBarsPerLoad(b.Config.Replay.BarsPerLoad),
	)

	b.Usecase.Bus.Subscribe(command.TopicBackBar, b.Usecase.Player)
	b.Usecase.Bus.Subscribe(command.TopicForwardBar, b.Usecase.Player)
	return nil
}

func (b *Bootstrap) initialState() (v1.State, error) {
	replay := b.Config.Replay
	state := v1.DefaultState(b.now())

	anchor, err := replay.Anchor(b.now())
	if err != nil {
		return v1.State{}, errors.NewErrorDetails(err.Error(), string(errors.GeneralBadRequestError), "anchor_date")
	}
	if !v1.ValidSpeed(replay.Speed) {
		return v1.State{}, errors.NewErrorDetails("speed must be between 1 and 10", string(errors.ReplayInvalidSpeed), "speed")
	}

	if replay.Ticker != "" {
		state.Ticker = replay.Ticker
	}
	if replay.Interval != "" {
		state.Interval = replay.Interval
	}
	state.AnchorDate = anchor
	state.Speed = replay.Speed
	return state, nil
}
