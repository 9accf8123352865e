package metrics

import (
	"sort"
	"sync"
	"time"
)

const (
	// samplesPerRoute bounds memory per route; oldest samples are overwritten.
	samplesPerRoute = 1024
	// observeBuffer is the middleware-side channel depth. Overflow drops the
	// sample rather than blocking the request path.
	observeBuffer = 4096
)

// Sample is one HTTP request observation.
type Sample struct {
	Route    string
	Method   string
	Status   int
	Duration time.Duration
}

// RouteStats is the aggregate served by the admin metrics view.
type RouteStats struct {
	Route  string        `json:"route"`
	Method string        `json:"method"`
	Count  int           `json:"count"`
	Errors int           `json:"errors"`
	P50Ms  float64       `json:"p50Ms"`
	P95Ms  float64       `json:"p95Ms"`
	P99Ms  float64       `json:"p99Ms"`
}

// Recorder aggregates request samples off the hot path. Middleware sends into
// a buffered channel; a single goroutine folds samples into per-route rings.
type Recorder struct {
	ch   chan Sample
	done chan struct{}

	mu     sync.RWMutex
	routes map[string]*ring
}

type ring struct {
	route   string
	method  string
	samples [samplesPerRoute]float64 // milliseconds
	n       int                      // total observed
	errors  int
}

// NewRecorder starts the aggregation goroutine.
func NewRecorder() *Recorder {
	r := &Recorder{
		ch:     make(chan Sample, observeBuffer),
		done:   make(chan struct{}),
		routes: make(map[string]*ring),
	}
	go r.loop()
	return r
}

// Observe enqueues a sample without blocking; saturated recorders drop.
func (r *Recorder) Observe(s Sample) {
	select {
	case r.ch <- s:
	default:
	}
}

// Close stops the aggregation goroutine.
func (r *Recorder) Close() {
	close(r.done)
}

func (r *Recorder) loop() {
	for {
		select {
		case s := <-r.ch:
			r.record(s)
		case <-r.done:
			return
		}
	}
}

func (r *Recorder) record(s Sample) {
	key := s.Method + " " + s.Route

	r.mu.Lock()
	defer r.mu.Unlock()

	rg, ok := r.routes[key]
	if !ok {
		rg = &ring{route: s.Route, method: s.Method}
		r.routes[key] = rg
	}
	rg.samples[rg.n%samplesPerRoute] = float64(s.Duration) / float64(time.Millisecond)
	rg.n++
	if s.Status >= 500 {
		rg.errors++
	}
}

// Snapshot computes per-route quantiles over the retained window.
func (r *Recorder) Snapshot() []RouteStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RouteStats, 0, len(r.routes))
	for _, rg := range r.routes {
		window := rg.n
		if window > samplesPerRoute {
			window = samplesPerRoute
		}
		vals := make([]float64, window)
		copy(vals, rg.samples[:window])
		sort.Float64s(vals)

		out = append(out, RouteStats{
			Route:  rg.route,
			Method: rg.method,
			Count:  rg.n,
			Errors: rg.errors,
			P50Ms:  quantile(vals, 0.50),
			P95Ms:  quantile(vals, 0.95),
			P99Ms:  quantile(vals, 0.99),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Route != out[j].Route {
			return out[i].Route < out[j].Route
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// quantile returns the nearest-rank quantile of an ascending slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(q * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
