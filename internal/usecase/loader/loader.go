package loader

import (
	"context"
	"time"

	"github.com/muhammadchandra19/bar-replay/internal/domain/bar"
	v1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	"github.com/muhammadchandra19/bar-replay/pkg/interval"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
)

// DefaultBarsPerLoad is the number of bars one page is sized for.
const DefaultBarsPerLoad = 1000

// Request describes one pending fetch. Generation ties it to the key it was
// issued for; a request from an older generation is discarded on completion.
type Request struct {
	Generation uint64
	Key        v1.Key
	Lookback   bool
	Page       int
	// From and To are the inclusive calendar days sent to the source.
	From time.Time
	To   time.Time
}

// Loader holds the pages fetched for one key plus the lookback window in
// front of the anchor. It is not safe for concurrent use: the owner
// serializes calls and only Fetch may run outside that lock.
type Loader struct {
	source      bar.Source
	barsPerLoad int
	logger      logger.Interface

	key        v1.Key
	iv         interval.Interval
	generation uint64

	pages    []v1.Page
	bars     []v1.Bar
	inFlight bool

	lookback         []v1.Bar
	lookbackReady    bool
	lookbackInFlight bool
}

// NewLoader creates an empty loader.
func NewLoader(source bar.Source, barsPerLoad int, log logger.Interface) *Loader {
	if barsPerLoad <= 0 {
		barsPerLoad = DefaultBarsPerLoad
	}
	return &Loader{
		source:      source,
		barsPerLoad: barsPerLoad,
		logger:      log,
	}
}

// Reset drops every page and the lookback window and re-keys the loader.
// Requests issued before the reset become stale.
func (l *Loader) Reset(key v1.Key) error {
	iv, err := interval.GetInterval(key.Interval)
	if err != nil {
		return err
	}

	l.key = key
	l.iv = iv
	l.generation++
	l.pages = nil
	l.bars = nil
	l.inFlight = false
	l.lookback = nil
	l.lookbackReady = false
	l.lookbackInFlight = false
	return nil
}

// Invalidate makes every outstanding request stale without re-keying.
func (l *Loader) Invalidate() {
	l.generation++
	l.inFlight = false
	l.lookbackInFlight = false
}

// Key returns the current key.
func (l *Loader) Key() v1.Key {
	return l.key
}

// WindowDays is the page width for the current interval.
func (l *Loader) WindowDays() int {
	return l.iv.WindowDays(l.barsPerLoad)
}

// Window returns [start, end) of page p, counted from the anchor.
func (l *Loader) Window(p int) (time.Time, time.Time) {
	w := l.WindowDays()
	start := l.key.Anchor.UTC().AddDate(0, 0, p*w)
	return start, start.AddDate(0, 0, w)
}

// BeginNext marks the next page as in flight and returns its request.
// It returns false while another page fetch is outstanding.
func (l *Loader) BeginNext() (Request, bool) {
	if l.inFlight {
		return Request{}, false
	}
	l.inFlight = true

	p := len(l.pages)
	start, end := l.Window(p)
	return Request{
		Generation: l.generation,
		Key:        l.key,
		Page:       p,
		From:       start,
		To:         end.AddDate(0, 0, -1),
	}, true
}

// BeginLookback marks the lookback window as in flight and returns its request.
// The window ends the day before the anchor. It returns false when the
// window is loaded or already being fetched.
func (l *Loader) BeginLookback() (Request, bool) {
	if l.lookbackReady || l.lookbackInFlight {
		return Request{}, false
	}
	l.lookbackInFlight = true

	to := l.key.Anchor.UTC().AddDate(0, 0, -1)
	return Request{
		Generation: l.generation,
		Key:        l.key,
		Lookback:   true,
		From:       to.AddDate(0, 0, -l.WindowDays()),
		To:         to,
	}, true
}

// Fetch runs req against the source. It reads no loader state.
func (l *Loader) Fetch(ctx context.Context, req Request) ([]v1.Bar, error) {
	return l.source.Fetch(ctx, req.Key.Ticker, req.Key.Interval, req.From, req.To)
}

// Complete applies the result of req. It reports false when req is stale.
// A failed request only clears the in-flight mark so it can be issued again.
func (l *Loader) Complete(req Request, bars []v1.Bar, err error) bool {
	if req.Generation != l.generation {
		l.logger.Debug("discarding stale fetch",
			logger.NewField("key", req.Key.String()),
			logger.NewField("lookback", req.Lookback),
			logger.NewField("page", req.Page),
		)
		return false
	}

	if req.Lookback {
		l.lookbackInFlight = false
		if err != nil {
			return true
		}
		l.lookback = bars
		l.lookbackReady = true
		return true
	}

	l.inFlight = false
	if err != nil {
		return true
	}

	start, end := l.Window(req.Page)
	l.pages = append(l.pages, v1.Page{
		Bars:       bars,
		RangeStart: start.UnixMilli(),
		RangeEnd:   end.UnixMilli(),
	})
	l.bars = append(l.bars, bars...)
	return true
}

// HasMore reports whether another page may exist. Paging stops once the last
// page reaches past now.
func (l *Loader) HasMore(now time.Time) bool {
	if len(l.pages) == 0 {
		return true
	}
	return l.pages[len(l.pages)-1].RangeEnd <= now.UnixMilli()
}

// InFlight reports whether a page fetch is outstanding.
func (l *Loader) InFlight() bool {
	return l.inFlight
}

// Pages returns the loaded pages in order.
func (l *Loader) Pages() []v1.Page {
	return l.pages[:len(l.pages):len(l.pages)]
}

// Len is the number of loaded bars.
func (l *Loader) Len() int {
	return len(l.bars)
}

// At returns the i-th loaded bar.
func (l *Loader) At(i int) v1.Bar {
	return l.bars[i]
}

// Flatten returns all loaded bars in page order. Callers must not modify it.
func (l *Loader) Flatten() []v1.Bar {
	return l.bars[:len(l.bars):len(l.bars)]
}

// Lookback returns the lookback window and whether it has resolved.
func (l *Loader) Lookback() ([]v1.Bar, bool) {
	return l.lookback, l.lookbackReady
}
