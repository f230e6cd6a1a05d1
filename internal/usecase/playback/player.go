package playback

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/muhammadchandra19/bar-replay/internal/domain/bar"
	barv1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	"github.com/muhammadchandra19/bar-replay/internal/domain/playback"
	v1 "github.com/muhammadchandra19/bar-replay/internal/domain/playback/v1"
	"github.com/muhammadchandra19/bar-replay/internal/usecase/command"
	"github.com/muhammadchandra19/bar-replay/internal/usecase/loader"
	"github.com/muhammadchandra19/bar-replay/pkg/errors"
	"github.com/muhammadchandra19/bar-replay/pkg/interval"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
	"github.com/muhammadchandra19/bar-replay/pkg/util"
)

var _ command.Handler = (*Player)(nil)

// Player owns the playback state of one session and the scheduler that
// advances its cursor. Every cursor and cache mutation happens under mu;
// fetches run outside it and are applied when they resolve.
type Player struct {
	mu sync.Mutex

	// base is the session context given to Start; ctx is base carrying the
	// current ticker.
	base   context.Context
	ctx    context.Context
	state  v1.State
	status v1.Status
	loader *loader.Loader

	renderer playback.Renderer
	notifier playback.Notifier
	logger   logger.Interface

	now         func() time.Time
	dispatch    func(func())
	barsPerLoad int
	manual      bool
	started     bool

	timer    *time.Timer
	timerGen uint64
}

// NewPlayer creates a player for initial. Nothing is fetched until Start.
func NewPlayer(source bar.Source, renderer playback.Renderer, notifier playback.Notifier, log logger.Interface, initial v1.State, opts ...Option) *Player {
	p := &Player{
		base:        context.Background(),
		ctx:         context.Background(),
		state:       initial,
		status:      v1.StatusIdle,
		renderer:    renderer,
		notifier:    notifier,
		logger:      log,
		now:         time.Now,
		dispatch:    func(f func()) { go f() },
		barsPerLoad: loader.DefaultBarsPerLoad,
	}
	for _, opt := range opts {
		opt(p)
	}
	if !v1.ValidSpeed(p.state.Speed) {
		p.state.Speed = v1.DefaultSpeed
	}
	p.loader = loader.NewLoader(source, p.barsPerLoad, log)
	return p
}

// Start binds the session context and requests the lookback window and the
// first page for the initial state.
func (p *Player) Start(ctx context.Context) error {
	p.mu.Lock()
	if err := validateTicker(p.state.Ticker); err != nil {
		p.mu.Unlock()
		return err
	}
	p.base = ctx
	jobs, err := p.resetLocked(func(*v1.State) {})
	p.mu.Unlock()

	p.run(jobs...)
	return err
}

// Close stops the timer. Fetches still in flight are discarded when they resolve.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopTimerLocked()
	p.status = v1.StatusIdle
	p.state.Playing = false
	p.loader.Invalidate()
}

// State returns a snapshot of the playback state.
func (p *Player) State() v1.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Status returns the scheduler state.
func (p *Player) Status() v1.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Loaded returns the number of bars loaded past the anchor.
func (p *Player) Loaded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loader.Len()
}

// Play starts the timer. It fails with ErrNotReady until the lookback window
// has resolved, re-requesting it if a previous attempt failed, and with
// ErrExhausted once playback ran out of data.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()

	if !p.started {
		p.mu.Unlock()
		return errors.ErrNotReady
	}

	switch p.status {
	case v1.StatusExhausted:
		p.mu.Unlock()
		return errors.ErrExhausted
	case v1.StatusRunning:
		p.mu.Unlock()
		return nil
	}

	if job, ready := p.awaitLookbackLocked(); !ready {
		p.mu.Unlock()
		p.run(job)
		return errors.ErrNotReady
	}

	p.status = v1.StatusRunning
	p.state.Playing = true
	p.startTimerLocked()
	speed := p.state.Speed
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "playback started", logger.NewField("speed", speed))
	return nil
}

// Pause stops the timer. The cursor is kept.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopTimerLocked()
	if p.status == v1.StatusRunning {
		p.status = v1.StatusIdle
	}
	p.state.Playing = false
}

// Toggle pauses a running player and plays any other.
func (p *Player) Toggle(ctx context.Context) error {
	if p.Status() == v1.StatusRunning {
		p.Pause()
		return nil
	}
	return p.Play(ctx)
}

// SetTicker switches the instrument and resets playback.
func (p *Player) SetTicker(ctx context.Context, ticker string) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if err := validateTicker(ticker); err != nil {
		return err
	}
	return p.reset(ctx, func(s *v1.State) { s.Ticker = ticker })
}

// SetInterval switches the bar interval and resets playback.
func (p *Player) SetInterval(ctx context.Context, name string) error {
	if !interval.IsValidInterval(name) {
		return errors.NewErrorDetails("unsupported interval "+name, string(errors.ReplayInvalidInterval), "interval")
	}
	return p.reset(ctx, func(s *v1.State) { s.Interval = name })
}

// SetAnchorDate moves the anchor to the start of date's day and resets playback.
func (p *Player) SetAnchorDate(ctx context.Context, date time.Time) error {
	date = date.UTC()
	anchor := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return p.reset(ctx, func(s *v1.State) { s.AnchorDate = anchor })
}

// SetSpeed changes bars per second. A running timer uses it from its next tick on.
func (p *Player) SetSpeed(speed int) error {
	if !v1.ValidSpeed(speed) {
		return errors.NewErrorDetails("speed must be between 1 and 10", string(errors.ReplayInvalidSpeed), "speed")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Speed = speed
	return nil
}

// Tick runs one scheduler step. It does nothing unless the player is running.
func (p *Player) Tick(ctx context.Context) {
	p.mu.Lock()
	job := p.tickLocked(ctx)
	p.mu.Unlock()

	p.run(job)
}

// Forward advances one bar whether or not the player is running, loading the
// next page when the cursor caught up. Like Play it fails with ErrNotReady
// until the lookback window has resolved.
func (p *Player) Forward(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return errors.ErrNotReady
	}
	if job, ready := p.awaitLookbackLocked(); !ready {
		p.mu.Unlock()
		p.run(job)
		return errors.ErrNotReady
	}
	job, exhausted := p.advanceLocked(ctx)
	if exhausted {
		p.noticeLocked(ctx, v1.NoticeExhausted, errors.ErrExhausted.Message)
	}
	p.mu.Unlock()

	p.run(job)
	if exhausted {
		return errors.ErrExhausted
	}
	return nil
}

// Back moves the cursor one bar back and redraws the chart up to it.
func (p *Player) Back(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return errors.ErrNotReady
	}
	if job, ready := p.awaitLookbackLocked(); !ready {
		p.mu.Unlock()
		p.run(job)
		return errors.ErrNotReady
	}
	defer p.mu.Unlock()

	if p.state.Cursor == 0 {
		p.noticeLocked(ctx, v1.NoticeBoundary, errors.ErrBoundary.Message)
		return errors.ErrBoundary
	}

	p.state.Cursor--
	p.redrawLocked(ctx)
	return nil
}

// awaitLookbackLocked reports whether the lookback window resolved. Until it
// has, the chart has no base series to step on, so callers bail out; the
// returned job re-requests a lookback that failed.
func (p *Player) awaitLookbackLocked() (func(), bool) {
	if _, ready := p.loader.Lookback(); ready {
		return nil, true
	}
	if req, ok := p.loader.BeginLookback(); ok {
		return p.fetchJob(req), false
	}
	return nil, false
}

// redrawLocked replaces the chart with the lookback followed by every bar
// before the cursor.
func (p *Player) redrawLocked(ctx context.Context) {
	lookback, _ := p.loader.Lookback()
	bars := make([]barv1.Bar, 0, len(lookback)+p.state.Cursor)
	bars = append(bars, lookback...)
	bars = append(bars, p.loader.Flatten()[:p.state.Cursor]...)
	if err := p.renderer.SetData(ctx, bars); err != nil {
		p.logger.ErrorContext(ctx, err)
	}
}

// Handle serves backBar and forwardBar commands.
func (p *Player) Handle(ctx context.Context, cmd command.Command) {
	var err error
	switch cmd.Topic {
	case command.TopicBackBar:
		err = p.Back(ctx)
	case command.TopicForwardBar:
		err = p.Forward(ctx)
	default:
		return
	}
	if err != nil {
		p.logger.DebugContext(ctx, "command not applied",
			logger.NewField("topic", cmd.Topic),
			logger.NewField("code", errors.CodeOf(err)),
		)
	}
}

func validateTicker(ticker string) error {
	if ticker == "" {
		return errors.NewErrorDetails("ticker is required", string(errors.ReplayInvalidTicker), "ticker")
	}
	return nil
}

func (p *Player) reset(ctx context.Context, mutate func(*v1.State)) error {
	p.mu.Lock()
	jobs, err := p.resetLocked(mutate)
	state := p.state
	p.mu.Unlock()

	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "playback reset",
		logger.NewField("ticker", state.Ticker),
		logger.NewField("interval", state.Interval),
		logger.NewField("anchor", state.AnchorDate.Format(time.DateOnly)),
	)
	p.run(jobs...)
	return nil
}

// resetLocked applies mutate, stops playback, drops every loaded bar and
// returns the lookback and first page fetches to dispatch.
func (p *Player) resetLocked(mutate func(*v1.State)) ([]func(), error) {
	next := p.state
	mutate(&next)

	key := barv1.Key{Ticker: next.Ticker, Interval: next.Interval, Anchor: next.AnchorDate}
	if err := p.loader.Reset(key); err != nil {
		return nil, errors.NewErrorDetails(err.Error(), string(errors.ReplayInvalidInterval), "interval")
	}

	p.stopTimerLocked()
	p.started = true
	p.state = next
	p.ctx = util.WithTicker(p.base, next.Ticker)
	p.state.Cursor = 0
	p.state.Playing = false
	p.status = v1.StatusIdle

	if err := p.renderer.SetData(p.ctx, []barv1.Bar{}); err != nil {
		p.logger.ErrorContext(p.ctx, err)
	}

	var jobs []func()
	if req, ok := p.loader.BeginLookback(); ok {
		jobs = append(jobs, p.fetchJob(req))
	}
	if req, ok := p.loader.BeginNext(); ok {
		jobs = append(jobs, p.fetchJob(req))
	}
	return jobs, nil
}

func (p *Player) tickLocked(ctx context.Context) func() {
	if p.status != v1.StatusRunning {
		return nil
	}

	job, exhausted := p.advanceLocked(ctx)
	if exhausted {
		p.stopTimerLocked()
		p.status = v1.StatusExhausted
		p.state.Playing = false
		p.noticeLocked(ctx, v1.NoticeExhausted, errors.ErrExhausted.Message)
	}
	return job
}

// advanceLocked is the single cursor step shared by ticks and Forward. When
// the cursor caught up it either starts the next page fetch, waits for the
// one in flight, or reports exhaustion.
func (p *Player) advanceLocked(ctx context.Context) (func(), bool) {
	if p.state.Cursor < p.loader.Len() {
		b := p.loader.At(p.state.Cursor)
		if err := p.renderer.Update(ctx, b); err != nil {
			p.logger.ErrorContext(ctx, err)
		}
		p.state.Cursor++
		return nil, false
	}

	if p.loader.InFlight() {
		return nil, false
	}
	if !p.loader.HasMore(p.now()) {
		return nil, true
	}

	req, _ := p.loader.BeginNext()
	p.logger.DebugContext(ctx, "loading next page",
		logger.NewField("page", req.Page),
		logger.NewField("from", req.From.Format(time.DateOnly)),
		logger.NewField("to", req.To.Format(time.DateOnly)),
	)
	return p.fetchJob(req), false
}

func (p *Player) fetchJob(req loader.Request) func() {
	ctx := p.ctx
	return func() {
		bars, err := p.loader.Fetch(ctx, req)

		p.mu.Lock()
		defer p.mu.Unlock()
		p.completeLocked(ctx, req, bars, err)
	}
}

func (p *Player) completeLocked(ctx context.Context, req loader.Request, bars []barv1.Bar, err error) {
	if !p.loader.Complete(req, bars, err) {
		return
	}

	if err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.NewField("lookback", req.Lookback),
			logger.NewField("page", req.Page),
		)
		p.noticeLocked(ctx, v1.NoticeTransport, err.Error())
		return
	}

	if req.Lookback {
		p.redrawLocked(ctx)
		return
	}

	p.logger.DebugContext(ctx, "page loaded",
		logger.NewField("page", req.Page),
		logger.NewField("bars", len(bars)),
	)
}

func (p *Player) noticeLocked(ctx context.Context, kind v1.NoticeKind, message string) {
	p.logger.InfoContext(ctx, message, logger.NewField("notice", kind))
	p.notifier.Notify(ctx, v1.Notice{Kind: kind, Message: message})
}

// startTimerLocked arms the single session timer. A fired timer re-arms
// itself with the period of the current speed.
func (p *Player) startTimerLocked() {
	p.stopTimerLocked()
	if p.manual {
		return
	}

	gen := p.timerGen
	p.timer = time.AfterFunc(p.state.Period(), func() {
		p.onTimer(gen)
	})
}

func (p *Player) stopTimerLocked() {
	p.timerGen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Player) onTimer(gen uint64) {
	p.mu.Lock()
	if gen != p.timerGen {
		p.mu.Unlock()
		return
	}

	job := p.tickLocked(p.ctx)
	if gen == p.timerGen && p.timer != nil {
		p.timer.Reset(p.state.Period())
	}
	p.mu.Unlock()

	p.run(job)
}

func (p *Player) run(jobs ...func()) {
	for _, job := range jobs {
		if job != nil {
			p.dispatch(job)
		}
	}
}
