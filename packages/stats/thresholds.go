package stats

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Thresholds are upper bounds on a run's overall latency. Zero fields are
// not checked.
type Thresholds struct {
	P50        time.Duration
	P95        time.Duration
	P99        time.Duration
	MaxLatency time.Duration
	ErrorRate  float64 // maximum error rate (0.0 - 1.0)
}

// HasThresholds returns true if any thresholds are configured
func (t Thresholds) HasThresholds() bool {
	return t.P50 > 0 || t.P95 > 0 || t.P99 > 0 || t.MaxLatency > 0 || t.ErrorRate > 0
}

// ThresholdResult holds the result of evaluating a threshold
type ThresholdResult struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

var thresholdPattern = regexp.MustCompile(`^(\w+)\s*(<=?)\s*(.+)$`)

// ParseThresholds parses a comma separated list such as
// "p95<500ms,max<2s,errors<1%".
func ParseThresholds(s string) (Thresholds, error) {
	var t Thresholds
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := parseThresholdPart(part, &t); err != nil {
			return Thresholds{}, err
		}
	}
	return t, nil
}

func parseThresholdPart(part string, t *Thresholds) error {
	matches := thresholdPattern.FindStringSubmatch(part)
	if matches == nil {
		return fmt.Errorf("invalid threshold format: %s (use e.g. p95<500ms)", part)
	}

	metric := strings.ToLower(matches[1])
	valueStr := strings.TrimSpace(matches[3])

	var target *time.Duration
	switch metric {
	case "p50":
		target = &t.P50
	case "p95":
		target = &t.P95
	case "p99":
		target = &t.P99
	case "max", "maxlatency":
		target = &t.MaxLatency
	case "errors", "error", "errorrate":
		percent := strings.HasSuffix(valueStr, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(valueStr, "%"), 64)
		if err != nil {
			return fmt.Errorf("invalid error rate: %s", valueStr)
		}
		if percent {
			f = f / 100
		}
		t.ErrorRate = f
		return nil
	default:
		return fmt.Errorf("unknown threshold metric: %s", metric)
	}

	d, err := time.ParseDuration(valueStr)
	if err != nil {
		return fmt.Errorf("invalid duration for %s: %s", metric, valueStr)
	}
	*target = d
	return nil
}

// Evaluate checks the overall latency of s against t.
func (t Thresholds) Evaluate(s *Summary) []ThresholdResult {
	var results []ThresholdResult
	check := func(name string, limit, actual time.Duration) {
		if limit <= 0 {
			return
		}
		results = append(results, ThresholdResult{
			Name:     name,
			Passed:   actual <= limit,
			Expected: "<= " + limit.String(),
			Actual:   actual.String(),
		})
	}

	o := s.Overall
	check("p50", t.P50, o.P50)
	check("p95", t.P95, o.P95)
	check("p99", t.P99, o.P99)
	check("max latency", t.MaxLatency, o.Max)

	if t.ErrorRate > 0 {
		results = append(results, ThresholdResult{
			Name:     "error rate",
			Passed:   o.ErrorRate() <= t.ErrorRate,
			Expected: "<= " + formatPercent(t.ErrorRate),
			Actual:   formatPercent(o.ErrorRate()),
		})
	}
	return results
}

func formatPercent(f float64) string {
	return strconv.FormatFloat(f*100, 'f', -1, 64) + "%"
}
