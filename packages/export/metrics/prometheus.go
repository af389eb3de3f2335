package metrics

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PrometheusExporter writes the text exposition format, suitable for the
// node_exporter textfile collector or a Pushgateway. Samples carry no
// timestamps; contractcheck_last_run_timestamp_seconds records the run time.
type PrometheusExporter struct {
	writer io.Writer
	prefix string
}

// PrometheusOption is a functional option for PrometheusExporter
type PrometheusOption func(*PrometheusExporter)

// WithPrometheusWriter sets the output writer for Prometheus metrics
func WithPrometheusWriter(w io.Writer) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.writer = w
	}
}

// WithPrometheusPrefix replaces the metric name prefix.
func WithPrometheusPrefix(prefix string) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.prefix = prefix
	}
}

func NewPrometheusExporter(opts ...PrometheusOption) *PrometheusExporter {
	p := &PrometheusExporter{
		writer: io.Discard,
		prefix: "contractcheck",
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *PrometheusExporter) Export(s *Snapshot) error {
	w := bufio.NewWriter(p.writer)

	p.family(w, "scenarios", "gauge", "Scenarios in the last run by outcome")
	fmt.Fprintf(w, "%s_scenarios{status=\"passed\"} %d\n", p.prefix, s.Passed)
	fmt.Fprintf(w, "%s_scenarios{status=\"failed\"} %d\n", p.prefix, s.Failed)
	fmt.Fprintf(w, "%s_scenarios{status=\"skipped\"} %d\n", p.prefix, s.Skipped)

	p.family(w, "scenario_passed", "gauge", "1 when the scenario passed in the last run")
	for _, sc := range s.Scenarios {
		if sc.Status == "skipped" {
			continue
		}
		fmt.Fprintf(w, "%s_scenario_passed{id=\"%s\",name=\"%s\"} %d\n",
			p.prefix, sanitizeLabel(sc.ID), sanitizeLabel(sc.Name), boolValue(sc.Status == "passed"))
	}

	p.family(w, "scenario_attempts", "gauge", "Attempts used by each scenario")
	for _, sc := range s.Scenarios {
		fmt.Fprintf(w, "%s_scenario_attempts{id=\"%s\"} %d\n", p.prefix, sanitizeLabel(sc.ID), sc.Attempts)
	}

	p.family(w, "setup_failures", "gauge", "Fixture creations whose response broke the success schema")
	fmt.Fprintf(w, "%s_setup_failures %d\n", p.prefix, s.SetupFailures)

	p.family(w, "cleaned_users", "gauge", "Users deleted during cleanup")
	fmt.Fprintf(w, "%s_cleaned_users %d\n", p.prefix, s.Cleaned)

	if len(s.Requests) > 0 {
		p.family(w, "request_duration_seconds", "summary", "Request latency by request kind")
		for _, r := range s.Requests {
			label := sanitizeLabel(r.Name)
			for _, q := range []struct {
				quantile string
				ms       float64
			}{{"0.5", r.P50Ms}, {"0.95", r.P95Ms}, {"0.99", r.P99Ms}} {
				fmt.Fprintf(w, "%s_request_duration_seconds{request=\"%s\",quantile=\"%s\"} %g\n",
					p.prefix, label, q.quantile, q.ms/1000)
			}
			fmt.Fprintf(w, "%s_request_duration_seconds_sum{request=\"%s\"} %g\n", p.prefix, label, r.MeanMs*float64(r.Count)/1000)
			fmt.Fprintf(w, "%s_request_duration_seconds_count{request=\"%s\"} %d\n", p.prefix, label, r.Count)
		}

		p.family(w, "request_errors", "gauge", "Requests that got no response")
		for _, r := range s.Requests {
			fmt.Fprintf(w, "%s_request_errors{request=\"%s\"} %d\n", p.prefix, sanitizeLabel(r.Name), r.Errors)
		}
	}

	if len(s.Thresholds) > 0 {
		p.family(w, "threshold_passed", "gauge", "1 when the latency threshold held")
		for _, t := range s.Thresholds {
			fmt.Fprintf(w, "%s_threshold_passed{threshold=\"%s\"} %d\n", p.prefix, sanitizeLabel(t.Name), boolValue(t.Passed))
		}
	}

	p.family(w, "run_success", "gauge", "1 when the last run passed")
	fmt.Fprintf(w, "%s_run_success %d\n", p.prefix, boolValue(s.OK))

	p.family(w, "run_duration_seconds", "gauge", "Wall time of the last run")
	fmt.Fprintf(w, "%s_run_duration_seconds %g\n", p.prefix, s.DurationMs/1000)

	p.family(w, "last_run_timestamp_seconds", "gauge", "Unix time the last run finished")
	fmt.Fprintf(w, "%s_last_run_timestamp_seconds %d\n", p.prefix, s.Timestamp.Unix())

	return w.Flush()
}

func (p *PrometheusExporter) family(w io.Writer, name, kind, help string) {
	fmt.Fprintf(w, "# HELP %s_%s %s\n", p.prefix, name, help)
	fmt.Fprintf(w, "# TYPE %s_%s %s\n", p.prefix, name, kind)
}

// sanitizeLabel makes a string safe for use as a Prometheus label value
func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}
