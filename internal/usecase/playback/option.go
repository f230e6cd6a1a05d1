package playback

import "time"

// Option configures a Player.
type Option func(*Player)

// WithClock replaces time.Now, used to decide whether more pages exist.
func WithClock(now func() time.Time) Option {
	return func(p *Player) {
		p.now = now
	}
}

// WithDispatcher replaces how fetches are started. The default runs each
// fetch on its own goroutine.
func WithDispatcher(dispatch func(func())) Option {
	return func(p *Player) {
		p.dispatch = dispatch
	}
}

// WithBarsPerLoad sizes fetched pages.
func WithBarsPerLoad(n int) Option {
	return func(p *Player) {
		p.barsPerLoad = n
	}
}

// WithManualTicks disables the internal timer; the caller drives Tick.
func WithManualTicks() Option {
	return func(p *Player) {
		p.manual = true
	}
}
