package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/contractcheck/packages/stats"
	"github.com/abdul-hamid-achik/contractcheck/packages/suite"
	"github.com/fatih/color"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *suite.RunResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Running: "+result.BaseURL))

	if len(result.Setup) > 0 {
		fmt.Fprintf(f.writer, "\n  %s\n", bold("Setup"))
		for _, s := range result.Setup {
			switch {
			case s.Err != nil:
				fmt.Fprintf(f.writer, "    %s %s %s\n", yellow("-"), s.Fixture, yellow(fmt.Sprintf("(%v)", s.Err)))
			case s.Failed():
				fmt.Fprintf(f.writer, "    %s %s\n", red("✗"), s.Fixture)
				for _, msg := range setupFailures(&s) {
					fmt.Fprintf(f.writer, "      %s %s\n", red("→"), msg)
				}
			default:
				fmt.Fprintf(f.writer, "    %s %s %s\n", green("✓"), s.Fixture, cyan(s.Email))
				if f.verbose {
					fmt.Fprintf(f.writer, "      _id: %s\n", s.ID)
				}
			}
		}
	}

	fmt.Fprintf(f.writer, "\n")
	for i := range result.Scenarios {
		r := &result.Scenarios[i]
		label := r.ID + " " + r.Name

		switch r.Status {
		case suite.StatusSkipped:
			fmt.Fprintf(f.writer, "  %s %s", yellow("-"), label)
			if r.SkipReason != "" {
				fmt.Fprintf(f.writer, " (%s)", r.SkipReason)
			}
			fmt.Fprintf(f.writer, "\n")
			continue
		case suite.StatusPassed:
			fmt.Fprintf(f.writer, "  %s %s %s", green("✓"), label, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))
		default:
			fmt.Fprintf(f.writer, "  %s %s %s", red("✗"), label, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))
		}
		if r.Attempts > 1 {
			fmt.Fprintf(f.writer, " %s", yellow(fmt.Sprintf("[%d attempts]", r.Attempts)))
		}
		fmt.Fprintf(f.writer, "\n")

		if f.verbose {
			for _, c := range r.Checks {
				fmt.Fprintf(f.writer, "    %s %s -> %d\n", c.Method, c.URL, c.Status)
			}
		}
		for _, msg := range failures(r) {
			fmt.Fprintf(f.writer, "    %s %s\n", red("→"), msg)
		}
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Tests: ")
	if result.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", result.Passed)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", result.Failed)))
	}
	if result.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", result.Skipped)))
	}
	total := result.Passed + result.Failed + result.Skipped
	fmt.Fprintf(f.writer, "%d total\n", total)
	if n := result.SetupFailures(); n > 0 {
		fmt.Fprintf(f.writer, "Setup: %s\n", red(fmt.Sprintf("%d failed", n)))
	}
	fmt.Fprintf(f.writer, "Cleanup: %d removed\n", result.Cleaned)

	if result.Latency != nil && result.Latency.Overall.Count > 0 {
		f.formatLatency(result.Latency)
	}
	for _, t := range result.Thresholds {
		symbol := green("✓")
		if !t.Passed {
			symbol = red("✗")
		}
		fmt.Fprintf(f.writer, "  %s %s %s (actual %s)\n", symbol, t.Name, t.Expected, t.Actual)
	}

	fmt.Fprintf(f.writer, "Time:  %dms\n", result.Duration.Milliseconds())
	fmt.Fprintf(f.writer, "\n")
}

func (f *ConsoleFormatter) formatLatency(s *stats.Summary) {
	o := s.Overall
	fmt.Fprintf(f.writer, "Latency: p50=%s p95=%s p99=%s max=%s (%d requests",
		round(o.P50), round(o.P95), round(o.P99), round(o.Max), o.Count)
	if o.Errors > 0 {
		fmt.Fprintf(f.writer, ", %d errors", o.Errors)
	}
	fmt.Fprintf(f.writer, ")\n")

	if !f.verbose {
		return
	}
	width := 0
	for _, l := range s.Requests {
		width = max(width, len(l.Name))
	}
	for _, l := range s.Requests {
		fmt.Fprintf(f.writer, "  %s%s  n=%d p50=%s p95=%s max=%s\n",
			l.Name, strings.Repeat(" ", width-len(l.Name)), l.Count, round(l.P50), round(l.P95), round(l.Max))
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("contractcheck"), version)
}
