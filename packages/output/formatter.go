package output

import (
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/suite"
)

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *suite.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Formats lists the names accepted by New.
var Formats = []string{"console", "json", "junit", "tap"}

// New returns the formatter named format writing to w.
func New(format string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch format {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case "junit":
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	case "tap":
		return NewTAPFormatter(TAPWithWriter(w)), nil
	}
	return nil, fmt.Errorf("unknown output format %q (valid: %v)", format, Formats)
}

func failures(r *suite.ScenarioResult) []string {
	return r.Failures()
}

func setupFailures(s *suite.SetupResult) []string {
	if !s.Failed() {
		return nil
	}
	return s.Result.Failures()
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func round(d time.Duration) time.Duration {
	if d >= time.Millisecond {
		return d.Round(10 * time.Microsecond)
	}
	return d.Round(time.Microsecond)
}
