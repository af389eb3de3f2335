// Package metrics exports the numbers of a contract run for scraping or
// archiving: Prometheus text exposition and JSON.
package metrics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/stats"
	"github.com/abdul-hamid-achik/contractcheck/packages/suite"
)

// Snapshot is the flattened, exportable form of one run.
type Snapshot struct {
	BaseURL       string            `json:"base_url"`
	Timestamp     time.Time         `json:"timestamp"`
	DurationMs    float64           `json:"duration_ms"`
	Passed        int               `json:"passed"`
	Failed        int               `json:"failed"`
	Skipped       int               `json:"skipped"`
	SetupFailures int               `json:"setup_failures"`
	Cleaned       int               `json:"cleaned"`
	OK            bool              `json:"ok"`
	Scenarios     []ScenarioMetric  `json:"scenarios"`
	Requests      []RequestMetric   `json:"requests,omitempty"`
	Thresholds    []ThresholdMetric `json:"thresholds,omitempty"`
}

type ScenarioMetric struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Attempts   int     `json:"attempts"`
	DurationMs float64 `json:"duration_ms"`
}

// RequestMetric is the latency of one request kind. The overall series is
// named "all".
type RequestMetric struct {
	Name   string  `json:"name"`
	Count  int64   `json:"count"`
	Errors int64   `json:"errors"`
	MinMs  float64 `json:"min_ms"`
	MaxMs  float64 `json:"max_ms"`
	MeanMs float64 `json:"mean_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

type ThresholdMetric struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// OverallRequest names the series covering every request.
const OverallRequest = "all"

// Exporter writes a snapshot to its destination.
type Exporter interface {
	Export(s *Snapshot) error
}

// FromRun flattens a run taken at now.
func FromRun(r *suite.RunResult, now time.Time) *Snapshot {
	s := &Snapshot{
		BaseURL:       r.BaseURL,
		Timestamp:     now.UTC(),
		DurationMs:    ms(r.Duration),
		Passed:        r.Passed,
		Failed:        r.Failed,
		Skipped:       r.Skipped,
		SetupFailures: r.SetupFailures(),
		Cleaned:       r.Cleaned,
		OK:            r.OK(),
	}

	for _, sc := range r.Scenarios {
		s.Scenarios = append(s.Scenarios, ScenarioMetric{
			ID:         sc.ID,
			Name:       sc.Name,
			Status:     string(sc.Status),
			Attempts:   sc.Attempts,
			DurationMs: ms(sc.Duration),
		})
	}

	if r.Latency != nil {
		s.Requests = append(s.Requests, requestMetric(OverallRequest, r.Latency.Overall))
		for _, l := range r.Latency.Requests {
			s.Requests = append(s.Requests, requestMetric(l.Name, l))
		}
	}

	for _, t := range r.Thresholds {
		s.Thresholds = append(s.Thresholds, ThresholdMetric{
			Name:     t.Name,
			Passed:   t.Passed,
			Expected: t.Expected,
			Actual:   t.Actual,
		})
	}
	return s
}

func requestMetric(name string, l stats.Latency) RequestMetric {
	return RequestMetric{
		Name:   name,
		Count:  l.Count,
		Errors: l.Errors,
		MinMs:  ms(l.Min),
		MaxMs:  ms(l.Max),
		MeanMs: ms(l.Mean),
		P50Ms:  ms(l.P50),
		P95Ms:  ms(l.P95),
		P99Ms:  ms(l.P99),
	}
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// Formats lists the names accepted by NewExporter.
var Formats = []string{"prometheus", "json"}

// FormatForPath picks json for a .json file and prometheus otherwise.
func FormatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "prometheus"
}

// WriteFile exports s to path in format. The file is replaced whole so a
// scraper never reads a partial write.
func WriteFile(path, format string, s *Snapshot) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".contractcheck-metrics-*")
	if err != nil {
		return fmt.Errorf("creating metrics file: %w", err)
	}
	defer os.Remove(tmp.Name())

	exporter, err := NewExporter(format, tmp)
	if err != nil {
		tmp.Close()
		return err
	}
	if err := exporter.Export(s); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// NewExporter returns the exporter named format writing to w.
func NewExporter(format string, w io.Writer) (Exporter, error) {
	switch format {
	case "", "prometheus":
		return NewPrometheusExporter(WithPrometheusWriter(w)), nil
	case "json":
		return NewJSONExporter(WithJSONWriter(w)), nil
	}
	return nil, fmt.Errorf("unknown metrics format %q (valid: %v)", format, Formats)
}
