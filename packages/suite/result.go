package suite

import (
	"errors"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/contract"
	"github.com/abdul-hamid-achik/contractcheck/packages/stats"
)

type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ScenarioResult is the outcome of one scenario after retries.
type ScenarioResult struct {
	ID         string
	Name       string
	Tags       []string
	Status     Status
	SkipReason string
	Checks     []Check
	Err        error
	Attempts   int
	Duration   time.Duration
}

func (r *ScenarioResult) Passed() bool {
	return r.Status == StatusPassed
}

// Failures lists what went wrong in the scenario, one line each.
func (r *ScenarioResult) Failures() []string {
	var out []string
	if r.Err != nil && r.Status == StatusFailed {
		out = append(out, r.Err.Error())
	}
	for _, c := range r.Checks {
		if c.Passed() {
			continue
		}
		for _, f := range c.Result.Failures() {
			out = append(out, c.Label+": "+f)
		}
	}
	return out
}

// SetupResult records the creation of one fixture user.
type SetupResult struct {
	Fixture string
	Email   string
	ID      string
	Err     error
	// Result is the create response checked against the success schema,
	// nil when the request did not complete.
	Result *contract.Result
}

// Failed reports a 201 whose body broke the success schema. A rejected
// create is not a failure: scenarios depending on that user are skipped
// instead.
func (s SetupResult) Failed() bool {
	return s.Result != nil && !s.Result.Passed
}

// RunResult is the outcome of a whole run.
type RunResult struct {
	BaseURL    string
	Setup      []SetupResult
	Scenarios  []ScenarioResult
	Passed     int
	Failed     int
	Skipped    int
	Cleaned    int
	Duration   time.Duration
	Latency    *stats.Summary
	Thresholds []stats.ThresholdResult
}

func (r *RunResult) SetupFailures() int {
	n := 0
	for _, s := range r.Setup {
		if s.Failed() {
			n++
		}
	}
	return n
}

func (r *RunResult) ThresholdFailures() int {
	n := 0
	for _, t := range r.Thresholds {
		if !t.Passed {
			n++
		}
	}
	return n
}

// OK reports whether the run passed as a whole.
func (r *RunResult) OK() bool {
	return r.Failed == 0 && r.SetupFailures() == 0 && r.ThresholdFailures() == 0
}

// NetworkFailure reports a failed run in which every failed scenario
// failed to reach the API.
func (r *RunResult) NetworkFailure() bool {
	if r.Failed == 0 {
		return false
	}
	for _, s := range r.Scenarios {
		if s.Status != StatusFailed {
			continue
		}
		var terr *TransportError
		if !errors.As(s.Err, &terr) {
			return false
		}
	}
	return true
}

func (r *RunResult) add(s ScenarioResult) {
	r.Scenarios = append(r.Scenarios, s)
	switch s.Status {
	case StatusPassed:
		r.Passed++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	}
}
