package healthcheck

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// Probe reports whether one dependency is reachable.
type Probe func(ctx context.Context) error

// HealthCheck is the health check handler.
type HealthCheck struct {
	probes  map[string]Probe
	timeout time.Duration
}

// New creates a health check whose probes share timeout.
func New(timeout time.Duration) *HealthCheck {
	return &HealthCheck{
		probes:  make(map[string]Probe),
		timeout: timeout,
	}
}

// Register adds a named probe. Not safe to call while serving.
func (hc *HealthCheck) Register(name string, probe Probe) {
	hc.probes[name] = probe
}

// Names returns the registered probe names, sorted.
func (hc *HealthCheck) Names() []string {
	names := make([]string, 0, len(hc.probes))
	for name := range hc.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handler is used to control the flow of GET /health endpoint
func (hc *HealthCheck) Handler(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if IsHealthCheckRequest(r) {
			hc.ServeHTTP(w, r)

			return
		}

		h.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

// ServeHTTP runs every probe and answers 200 "ok", or 503 listing the failed probes.
func (hc *HealthCheck) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), hc.timeout)
	defer cancel()

	var failed []string
	for _, name := range hc.Names() {
		if err := hc.probes[name](ctx); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", name, err))
		}
	}

	if len(failed) > 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		for _, line := range failed {
			fmt.Fprintln(w, line)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// IsHealthCheckRequest is used to check if the request is a health check request
func IsHealthCheckRequest(r *http.Request) bool {
	return r.Method == http.MethodGet && r.URL.Path == "/health"
}
