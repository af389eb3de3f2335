package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Recorder collects request latencies, overall and per request name.
// It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	overall  *series
	requests map[string]*series
}

type series struct {
	total     int64
	errors    int64
	histogram *hdrhistogram.Histogram
}

func newSeries() *series {
	// 1us to 60s range, 3 significant digits
	return &series{histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3)}
}

func (s *series) record(latencyUs int64, failed bool) {
	s.total++
	if failed {
		s.errors++
	}
	_ = s.histogram.RecordValue(latencyUs)
}

func NewRecorder() *Recorder {
	return &Recorder{
		overall:  newSeries(),
		requests: make(map[string]*series),
	}
}

// Record adds one request. name groups requests, e.g. "DELETE /usuarios/{id}".
// err marks the request as failed at the transport level.
func (r *Recorder) Record(name string, duration time.Duration, err error) {
	latencyUs := duration.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.overall.record(latencyUs, err != nil)
	if name == "" {
		return
	}
	s, ok := r.requests[name]
	if !ok {
		s = newSeries()
		r.requests[name] = s
	}
	s.record(latencyUs, err != nil)
}

// Latency summarizes one series.
type Latency struct {
	Name   string        `json:"name,omitempty"`
	Count  int64         `json:"count"`
	Errors int64         `json:"errors"`
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
	Mean   time.Duration `json:"mean"`
	P50    time.Duration `json:"p50"`
	P95    time.Duration `json:"p95"`
	P99    time.Duration `json:"p99"`
}

// ErrorRate is the fraction of failed requests, 0 when nothing was recorded.
func (l Latency) ErrorRate() float64 {
	if l.Count == 0 {
		return 0
	}
	return float64(l.Errors) / float64(l.Count)
}

func (s *series) summary(name string) Latency {
	l := Latency{Name: name, Count: s.total, Errors: s.errors}
	if s.total == 0 {
		return l
	}
	h := s.histogram
	l.Min = time.Duration(h.Min()) * time.Microsecond
	l.Max = time.Duration(h.Max()) * time.Microsecond
	l.Mean = time.Duration(h.Mean()) * time.Microsecond
	l.P50 = time.Duration(h.ValueAtQuantile(50)) * time.Microsecond
	l.P95 = time.Duration(h.ValueAtQuantile(95)) * time.Microsecond
	l.P99 = time.Duration(h.ValueAtQuantile(99)) * time.Microsecond
	return l
}

// Summary holds the overall latency and a per-request breakdown sorted by
// name.
type Summary struct {
	Overall  Latency   `json:"overall"`
	Requests []Latency `json:"requests,omitempty"`
}

func (r *Recorder) Summary() *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary := &Summary{Overall: r.overall.summary("")}
	names := make([]string, 0, len(r.requests))
	for name := range r.requests {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		summary.Requests = append(summary.Requests, r.requests[name].summary(name))
	}
	return summary
}
