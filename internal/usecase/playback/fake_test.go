package playback

import (
	"context"
	"sync"
	"time"

	barv1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	v1 "github.com/muhammadchandra19/bar-replay/internal/domain/playback/v1"
	"github.com/muhammadchandra19/bar-replay/internal/usecase/source"
	"github.com/muhammadchandra19/bar-replay/pkg/util"
)

type fetchCall struct {
	interval string
	from, to time.Time
}

// seriesSource serves a fixed daily series, filtered like the real source.
type seriesSource struct {
	mu     sync.Mutex
	series []barv1.Bar
	calls  []fetchCall
	fail   int
}

func newSeriesSource(start time.Time, days int) *seriesSource {
	series := make([]barv1.Bar, days)
	for i := range series {
		d := start.AddDate(0, 0, i)
		p := float64(i + 1)
		series[i] = barv1.Bar{Time: d.Unix(), Open: p, High: p + 1, Low: p - 1, Close: p, Date: d.Format(time.DateOnly)}
	}
	return &seriesSource{series: series}
}

func (s *seriesSource) Fetch(_ context.Context, _ string, interval string, from, to time.Time) ([]barv1.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, fetchCall{interval: interval, from: from, to: to})
	if s.fail > 0 {
		s.fail--
		return nil, errTransport
	}
	return source.Filter(s.series, from, to), nil
}

func (s *seriesSource) Calls() []fetchCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]fetchCall(nil), s.calls...)
}

type recordingRenderer struct {
	mu      sync.Mutex
	setData [][]barv1.Bar
	tickers []string
	updates []barv1.Bar
	chart   []barv1.Bar
}

func (r *recordingRenderer) SetData(ctx context.Context, bars []barv1.Bar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setData = append(r.setData, append([]barv1.Bar(nil), bars...))
	r.tickers = append(r.tickers, util.GetTicker(ctx))
	r.chart = append([]barv1.Bar(nil), bars...)
	return nil
}

// Chart is the series a chart fed these calls would show.
func (r *recordingRenderer) Chart() []barv1.Bar {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]barv1.Bar(nil), r.chart...)
}

func (r *recordingRenderer) SetDataTickers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tickers...)
}

func (r *recordingRenderer) Update(_ context.Context, bar barv1.Bar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, bar)
	r.chart = append(r.chart, bar)
	return nil
}

func (r *recordingRenderer) Updates() []barv1.Bar {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]barv1.Bar(nil), r.updates...)
}

func (r *recordingRenderer) SetDataCalls() [][]barv1.Bar {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]barv1.Bar(nil), r.setData...)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []v1.Notice
}

func (n *recordingNotifier) Notify(_ context.Context, notice v1.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) Kinds() []v1.NoticeKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]v1.NoticeKind, len(n.notices))
	for i, notice := range n.notices {
		kinds[i] = notice.Kind
	}
	return kinds
}

// queue holds dispatched fetches until the test releases them.
type queue struct {
	mu   sync.Mutex
	jobs []func()
}

func (q *queue) Dispatch(job func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
}

func (q *queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *queue) Drain() {
	q.mu.Lock()
	jobs := q.jobs
	q.jobs = nil
	q.mu.Unlock()

	for _, job := range jobs {
		job()
	}
}

func synchronous(job func()) { job() }
