package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/contract"
	"github.com/abdul-hamid-achik/contractcheck/packages/stats"
	"github.com/abdul-hamid-achik/contractcheck/packages/suite"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	BaseURL    string                  `json:"baseUrl"`
	Summary    JSONSummary             `json:"summary"`
	Setup      []JSONSetup             `json:"setup"`
	Tests      []JSONTest              `json:"tests"`
	Latency    *stats.Summary          `json:"latency,omitempty"`
	Thresholds []stats.ThresholdResult `json:"thresholds,omitempty"`
	Duration   float64                 `json:"duration"`
	Time       string                  `json:"time"`
}

// JSONSummary represents the test summary
type JSONSummary struct {
	Total         int  `json:"total"`
	Passed        int  `json:"passed"`
	Failed        int  `json:"failed"`
	Skipped       int  `json:"skipped"`
	SetupFailures int  `json:"setupFailures"`
	Cleaned       int  `json:"cleaned"`
	OK            bool `json:"ok"`
}

// JSONSetup represents the creation of one fixture user
type JSONSetup struct {
	Fixture  string           `json:"fixture"`
	Email    string           `json:"email"`
	ID       string           `json:"_id,omitempty"`
	Error    string           `json:"error,omitempty"`
	Contract *contract.Result `json:"contract,omitempty"`
}

// JSONTest represents a single scenario result
type JSONTest struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Tags       []string    `json:"tags,omitempty"`
	Status     string      `json:"status"`
	SkipReason string      `json:"skipReason,omitempty"`
	Attempts   int         `json:"attempts"`
	Duration   float64     `json:"duration"`
	Error      string      `json:"error,omitempty"`
	Checks     []JSONCheck `json:"checks,omitempty"`
}

// JSONCheck represents one contract assertion
type JSONCheck struct {
	Label    string           `json:"label"`
	Method   string           `json:"method"`
	URL      string           `json:"url"`
	Status   int              `json:"status"`
	Duration float64          `json:"duration"`
	Passed   bool             `json:"passed"`
	Failures []string         `json:"failures,omitempty"`
	Contract *contract.Result `json:"contract,omitempty"`
}

// JSONFormatter formats test results as JSON
type JSONFormatter struct {
	writer io.Writer
	output JSONOutput
	runs   int
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		output: JSONOutput{
			Setup: make([]JSONSetup, 0),
			Tests: make([]JSONTest, 0),
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *suite.RunResult) {
	out := &f.output
	out.BaseURL = result.BaseURL
	out.Latency = result.Latency
	out.Thresholds = append(out.Thresholds, result.Thresholds...)
	out.Summary.Cleaned += result.Cleaned
	out.Summary.SetupFailures += result.SetupFailures()
	out.Summary.OK = result.OK() && (f.runs == 0 || out.Summary.OK)
	f.runs++

	for _, s := range result.Setup {
		js := JSONSetup{
			Fixture: s.Fixture,
			Email:   s.Email,
			ID:      s.ID,
		}
		if s.Err != nil {
			js.Error = s.Err.Error()
		}
		if s.Failed() {
			js.Contract = s.Result
		}
		out.Setup = append(out.Setup, js)
	}

	for i := range result.Scenarios {
		r := &result.Scenarios[i]
		test := JSONTest{
			ID:         r.ID,
			Name:       r.Name,
			Tags:       r.Tags,
			Status:     string(r.Status),
			SkipReason: r.SkipReason,
			Attempts:   r.Attempts,
			Duration:   ms(r.Duration),
		}
		if r.Err != nil && r.Status == suite.StatusFailed {
			test.Error = r.Err.Error()
		}
		for _, c := range r.Checks {
			jc := JSONCheck{
				Label:    c.Label,
				Method:   c.Method,
				URL:      c.URL,
				Status:   c.Status,
				Duration: ms(c.Duration),
				Passed:   c.Passed(),
			}
			if !c.Passed() {
				jc.Failures = c.Result.Failures()
				jc.Contract = c.Result
			}
			test.Checks = append(test.Checks, jc)
		}

		switch r.Status {
		case suite.StatusPassed:
			out.Summary.Passed++
		case suite.StatusFailed:
			out.Summary.Failed++
		case suite.StatusSkipped:
			out.Summary.Skipped++
		}
		out.Tests = append(out.Tests, test)
	}
	out.Summary.Total = len(out.Tests)
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual test results
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	f.output.Duration = ms(totalDuration)
	f.output.Time = time.Now().Format(time.RFC3339)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(f.output)
}
