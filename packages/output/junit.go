package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/suite"
)

// JUnit XML structures

// JUnitTestSuites is the root element
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite represents one run against a base URL
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr,omitempty"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase represents a single test case
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a test failure
type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitError represents a test error
type JUnitError struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitSkipped represents a skipped test
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// Class names grouping test cases inside a suite.
const (
	ClassSetup      = "setup"
	ClassScenarios  = "usuarios"
	ClassThresholds = "thresholds"
)

// JUnitFormatter formats test results as JUnit XML
type JUnitFormatter struct {
	writer     io.Writer
	testSuites []JUnitTestSuite
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{
		writer:     os.Stdout,
		testSuites: make([]JUnitTestSuite, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

// FormatResult adds one test suite per run. Setup users whose 201 broke
// the schema and failed thresholds are reported as failing test cases.
func (f *JUnitFormatter) FormatResult(result *suite.RunResult) {
	ts := JUnitTestSuite{
		Name:      result.BaseURL,
		Time:      result.Duration.Seconds(),
		Timestamp: time.Now().Format(time.RFC3339),
	}

	for _, s := range result.Setup {
		tc := JUnitTestCase{Name: s.Fixture, ClassName: ClassSetup}
		switch {
		case s.Err != nil:
			ts.Skipped++
			tc.Skipped = &JUnitSkipped{Message: s.Err.Error()}
		case s.Failed():
			ts.Failures++
			tc.Failure = &JUnitFailure{
				Message: "Contract failed",
				Type:    "ContractError",
				Content: strings.Join(setupFailures(&s), "\n"),
			}
		}
		ts.TestCases = append(ts.TestCases, tc)
	}

	for i := range result.Scenarios {
		r := &result.Scenarios[i]
		tc := JUnitTestCase{
			Name:      r.ID + " " + r.Name,
			ClassName: ClassScenarios,
			Time:      r.Duration.Seconds(),
		}

		switch {
		case r.Status == suite.StatusSkipped:
			ts.Skipped++
			tc.Skipped = &JUnitSkipped{Message: r.SkipReason}
		case r.Status == suite.StatusFailed && len(r.Checks) == 0 && r.Err != nil:
			ts.Errors++
			tc.Error = &JUnitError{
				Message: r.Err.Error(),
				Type:    "Error",
			}
		case r.Status == suite.StatusFailed:
			ts.Failures++
			tc.Failure = &JUnitFailure{
				Message: "Contract failed",
				Type:    "ContractError",
				Content: strings.Join(failures(r), "\n"),
			}
		}
		ts.TestCases = append(ts.TestCases, tc)
	}

	for _, t := range result.Thresholds {
		tc := JUnitTestCase{Name: t.Name, ClassName: ClassThresholds}
		if !t.Passed {
			ts.Failures++
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s: expected %s, got %s", t.Name, t.Expected, t.Actual),
				Type:    "ThresholdError",
			}
		}
		ts.TestCases = append(ts.TestCases, tc)
	}

	ts.Tests = len(ts.TestCases)
	f.testSuites = append(f.testSuites, ts)
}

func (f *JUnitFormatter) FormatError(err error) {
	// Errors are included in individual test cases
}

func (f *JUnitFormatter) FormatHeader(version string) {
	// No header needed for JUnit XML
}

// Flush writes the accumulated JUnit XML output
func (f *JUnitFormatter) Flush(totalDuration time.Duration) error {
	var totalTests, totalFailures, totalErrors, totalSkipped int
	for _, ts := range f.testSuites {
		totalTests += ts.Tests
		totalFailures += ts.Failures
		totalErrors += ts.Errors
		totalSkipped += ts.Skipped
	}

	suites := JUnitTestSuites{
		Name:       "contractcheck",
		Tests:      totalTests,
		Failures:   totalFailures,
		Errors:     totalErrors,
		Skipped:    totalSkipped,
		Time:       totalDuration.Seconds(),
		Timestamp:  time.Now().Format(time.RFC3339),
		TestSuites: f.testSuites,
	}

	fmt.Fprintf(f.writer, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	return encoder.Encode(suites)
}
