package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/core/config"
	"github.com/abdul-hamid-achik/contractcheck/packages/core/env"
	"github.com/abdul-hamid-achik/contractcheck/packages/export/metrics"
	"github.com/abdul-hamid-achik/contractcheck/packages/fixtures"
	"github.com/abdul-hamid-achik/contractcheck/packages/output"
	"github.com/abdul-hamid-achik/contractcheck/packages/stats"
	"github.com/abdul-hamid-achik/contractcheck/packages/suite"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the /usuarios contract suite",
	Long: `Create the fixture users, run the contract scenarios and delete
whatever the run created.

Examples:
  contractcheck run
  contractcheck run --base-url http://localhost:3000
  contractcheck run --mock -v
  contractcheck run --tags negative --bail
  contractcheck run --run CT-00 --retries 2
  contractcheck run --fixtures users.yaml --unique
  contractcheck run --rate 5 --threshold "p95<500ms,errors<1%"
  contractcheck run --output junit --output-file results.xml
  contractcheck run --metrics-file /var/lib/node_exporter/contractcheck.prom
  contractcheck run --notify slack --slack-webhook $SLACK_WEBHOOK_URL`,
	Args: cobra.NoArgs,
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	baseURLFlag    string
	configFlag     string
	envFileFlag    string
	fixturesFlag   string
	runFlag        string
	tagsFlag       string
	bailFlag       bool
	timeoutFlag    string
	retriesFlag    int
	rateFlag       float64
	thresholdFlag  string
	uniqueFlag     bool
	varFlags       []string
	verboseFlag    int // 0=warn, 1=-v info, 2=-vv debug
	noColorFlag    bool
	outputFlag     string
	outputFileFlag string
	watchFlag      bool
	mockFlag       bool
	mockDBFlag     string
	metricsFlag    string
	metricsFmtFlag string
	insecureFlag   bool
)

func init() {
	// Target flags
	runCmd.Flags().StringVarP(&baseURLFlag, "base-url", "b", getEnvString("CONTRACTCHECK_BASE_URL", getEnvString("CYPRESS_BASE_URL", "")), "API base URL (env: CONTRACTCHECK_BASE_URL, CYPRESS_BASE_URL)")
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("CONTRACTCHECK_CONFIG", ""), "Path to config file (env: CONTRACTCHECK_CONFIG)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("CONTRACTCHECK_ENV_FILE", ""), "Path to .env file exported before the run (env: CONTRACTCHECK_ENV_FILE)")
	runCmd.Flags().StringVarP(&fixturesFlag, "fixtures", "f", getEnvString("CONTRACTCHECK_FIXTURES", ""), "Fixture users file, JSON or YAML (env: CONTRACTCHECK_FIXTURES)")
	runCmd.Flags().StringArrayVar(&varFlags, "var", nil, "Variable for fixture placeholders, as name=value (repeatable)")
	runCmd.Flags().BoolVar(&uniqueFlag, "unique", getEnvBool("CONTRACTCHECK_UNIQUE", false), "Suffix fixture emails so reruns do not collide (env: CONTRACTCHECK_UNIQUE)")

	// Selection flags
	runCmd.Flags().StringVarP(&runFlag, "run", "n", "", "Run only scenarios whose id or name contains pattern")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("CONTRACTCHECK_TAGS", ""), "Run only scenarios with one of the tags (comma-separated) (env: CONTRACTCHECK_TAGS)")

	// Execution flags
	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("CONTRACTCHECK_BAIL", false), "Stop on first failed scenario (env: CONTRACTCHECK_BAIL)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("CONTRACTCHECK_TIMEOUT", ""), "Request timeout, e.g. 10s (env: CONTRACTCHECK_TIMEOUT)")
	runCmd.Flags().IntVar(&retriesFlag, "retries", getEnvInt("CONTRACTCHECK_RETRIES", 0), "Retries for a failed scenario (env: CONTRACTCHECK_RETRIES)")
	runCmd.Flags().Float64VarP(&rateFlag, "rate", "r", getEnvFloat("CONTRACTCHECK_RATE", 0), "Maximum requests per second, 0 for unlimited (env: CONTRACTCHECK_RATE)")
	runCmd.Flags().StringVar(&thresholdFlag, "threshold", getEnvString("CONTRACTCHECK_THRESHOLD", ""), "Latency thresholds, e.g. \"p95<500ms,errors<1%\" (env: CONTRACTCHECK_THRESHOLD)")
	runCmd.Flags().BoolVar(&insecureFlag, "insecure", getEnvBool("CONTRACTCHECK_INSECURE", false), "Skip TLS certificate verification (env: CONTRACTCHECK_INSECURE)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-run when the config, fixtures or env file changes")
	runCmd.Flags().BoolVar(&mockFlag, "mock", false, "Run against an in-process mock API")
	runCmd.Flags().StringVar(&mockDBFlag, "mock-db", "", "SQLite database for the mock API (default: in memory)")

	// Output flags
	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v logs requests, -vv debug)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("CONTRACTCHECK_NO_COLOR", false), "Disable colored output (env: CONTRACTCHECK_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("CONTRACTCHECK_OUTPUT", "console"), "Output format: console, json, junit, tap (env: CONTRACTCHECK_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("CONTRACTCHECK_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: CONTRACTCHECK_OUTPUT_FILE)")
	runCmd.Flags().StringVar(&metricsFlag, "metrics-file", getEnvString("CONTRACTCHECK_METRICS_FILE", ""), "Write run metrics to file (env: CONTRACTCHECK_METRICS_FILE)")
	runCmd.Flags().StringVar(&metricsFmtFlag, "metrics-format", getEnvString("CONTRACTCHECK_METRICS_FORMAT", ""), "Metrics format: prometheus, json (default: from file extension) (env: CONTRACTCHECK_METRICS_FORMAT)")

	_ = runCmd.RegisterFlagCompletionFunc("run", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var ids []string
		for _, s := range suite.All() {
			ids = append(ids, s.ID+"\t"+s.Name)
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	})
	_ = runCmd.RegisterFlagCompletionFunc("tags", cobra.FixedCompletions(
		[]string{suite.TagPositive, suite.TagNegative, suite.TagCreate, suite.TagDelete}, cobra.ShellCompDirectiveNoFileComp))
	_ = runCmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(output.Formats, cobra.ShellCompDirectiveNoFileComp))
	_ = runCmd.RegisterFlagCompletionFunc("metrics-format", cobra.FixedCompletions(metrics.Formats, cobra.ShellCompDirectiveNoFileComp))
}

// settings is one run's configuration: the config file merged with
// environment variables and command line flags.
type settings struct {
	config     *config.Config
	configPath string
	output     string
	verbosity  int
	unique     bool
	tags       []string
	thresholds stats.Thresholds
	variables  map[string]any
}

// stringSetting returns the flag value when it was given on the command
// line, else the first environment variable set, else "".
func stringSetting(cmd *cobra.Command, name, flagVal string, keys ...string) string {
	if cmd.Flags().Changed(name) {
		return flagVal
	}
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func boolSetting(cmd *cobra.Command, name string, flagVal bool, key string, current *bool) *bool {
	if cmd.Flags().Changed(name) {
		return config.BoolPtr(flagVal)
	}
	if envSet(key) {
		return config.BoolPtr(getEnvBool(key, false))
	}
	return current
}

// findConfigPath returns the config file LoadConfig would read, or "".
func findConfigPath(path string) string {
	if path != "" {
		return path
	}
	for _, name := range config.ConfigFilenames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// envExporter is shared by every watch iteration so variables exported
// from --env-file can be updated when the file changes.
var envExporter = env.NewExporter()

// loadEnvFile exports path and logs which settings it did or did not
// override.
func loadEnvFile(path string, logger *logrus.Logger) error {
	if path == "" {
		return nil
	}
	loaded, err := envExporter.Load(path)
	if err != nil {
		return err
	}
	log := logger.WithField("env_file", path)
	exported, shadowed := loaded.Settings()
	for _, k := range exported {
		log.Debugf("%s set from env file", k)
	}
	for _, k := range shadowed {
		log.Infof("%s ignored: already set in the environment", k)
	}
	for _, k := range loaded.Removed {
		log.Debugf("%s unset: no longer in env file", k)
	}
	log.Debugf("exported %d of %d variables", len(loaded.Exported), len(loaded.Vars))

	primary, legacy := os.Getenv("CONTRACTCHECK_BASE_URL"), os.Getenv(env.LegacyBaseURL)
	if primary != "" && legacy != "" && primary != legacy {
		logger.Debugf("CONTRACTCHECK_BASE_URL (%s) takes precedence over %s (%s)", primary, env.LegacyBaseURL, legacy)
	}
	return nil
}

// resolveSettings is re-run for every watch iteration so edits to the
// config and env files apply. Environment variables are read here rather
// than from flag defaults because --env-file exports them late.
func resolveSettings(cmd *cobra.Command, logger *logrus.Logger) (*settings, error) {
	if err := loadEnvFile(envFileFlag, logger); err != nil {
		return nil, withCode(ExitConfigError, fmt.Errorf("loading env file: %w", err))
	}

	s := &settings{configPath: findConfigPath(configFlag), verbosity: verboseFlag}
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	cfg := *fileConfig
	flags := cmd.Flags()

	if v := stringSetting(cmd, "base-url", baseURLFlag, "CONTRACTCHECK_BASE_URL", env.LegacyBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := stringSetting(cmd, "fixtures", fixturesFlag, "CONTRACTCHECK_FIXTURES"); v != "" {
		cfg.Fixtures = v
	}
	if v := stringSetting(cmd, "timeout", timeoutFlag, "CONTRACTCHECK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, usageError(fmt.Errorf("invalid timeout value %q (use format like 10s, 1m, 500ms)", v))
		}
		cfg.Timeout = int(d.Milliseconds())
	}
	if flags.Changed("retries") {
		cfg.Retries = retriesFlag
	} else {
		cfg.Retries = getEnvInt("CONTRACTCHECK_RETRIES", cfg.Retries)
	}
	if flags.Changed("rate") {
		cfg.RateLimit = rateFlag
	} else {
		cfg.RateLimit = getEnvFloat("CONTRACTCHECK_RATE", cfg.RateLimit)
	}
	cfg.Bail = boolSetting(cmd, "bail", bailFlag, "CONTRACTCHECK_BAIL", cfg.Bail)
	cfg.NoColor = boolSetting(cmd, "no-color", noColorFlag, "CONTRACTCHECK_NO_COLOR", cfg.NoColor)
	cfg.Insecure = boolSetting(cmd, "insecure", insecureFlag, "CONTRACTCHECK_INSECURE", cfg.Insecure)
	s.unique = *boolSetting(cmd, "unique", uniqueFlag, "CONTRACTCHECK_UNIQUE", config.BoolPtr(false))
	if cfg.GetVerbose() && s.verbosity == 0 {
		s.verbosity = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	s.config = &cfg

	s.output = stringSetting(cmd, "output", outputFlag, "CONTRACTCHECK_OUTPUT")
	if s.output == "" && len(cfg.Reporters) > 0 {
		s.output = cfg.Reporters[0]
	}
	if s.output == "" {
		s.output = "console"
	}
	s.output = strings.ToLower(s.output)

	for _, t := range strings.Split(stringSetting(cmd, "tags", tagsFlag, "CONTRACTCHECK_TAGS"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			s.tags = append(s.tags, t)
		}
	}

	if v := stringSetting(cmd, "threshold", thresholdFlag, "CONTRACTCHECK_THRESHOLD"); v != "" {
		if s.thresholds, err = stats.ParseThresholds(v); err != nil {
			return nil, usageError(err)
		}
	}

	if s.variables, err = parseVars(varFlags); err != nil {
		return nil, usageError(err)
	}
	return s, nil
}

func parseVars(pairs []string) (map[string]any, error) {
	vars := make(map[string]any, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --var %q (use name=value)", p)
		}
		vars[strings.TrimSpace(name)] = value
	}
	return vars, nil
}

func loadFixtures(path string) (*fixtures.Set, error) {
	if path == "" {
		return fixtures.Default(), nil
	}
	set, err := fixtures.Load(path)
	if err != nil {
		var parseErr *fixtures.ParseError
		if errors.As(err, &parseErr) {
			return nil, withCode(ExitParseError, err)
		}
		return nil, withCode(ExitConfigError, err)
	}
	return set, nil
}

func runCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(verboseFlag, noColorFlag)

	notifier, err := newNotifyManager(notifyFlag, notifyOnFlag, slackWebhookFlag, slackChannelFlag, teamsWebhookFlag)
	if err != nil {
		return err
	}

	var mockURL string
	if mockFlag {
		url, closeMock, err := startMock(logger, mockDBFlag)
		if err != nil {
			return withCode(ExitConfigError, fmt.Errorf("starting mock: %w", err))
		}
		defer closeMock()
		mockURL = url
		logger.Infof("running against mock API at %s", url)
	}

	result, err := runOnce(ctx, cmd, logger, mockURL)
	sendNotifications(ctx, notifier, result, logger)
	if !watchFlag {
		if err != nil {
			return err
		}
		return resultError(result)
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}

	var paths []string
	if s, err := resolveSettings(cmd, logger); err == nil {
		paths = append(paths, s.configPath, s.config.Fixtures)
	}
	paths = append(paths, envFileFlag)

	return watchAndRerun(ctx, cmd, paths, func() {
		result, err := runOnce(ctx, cmd, logger, mockURL)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		sendNotifications(ctx, notifier, result, logger)
	})
}

// runOnce resolves settings, runs the suite and writes every report.
func runOnce(ctx context.Context, cmd *cobra.Command, logger *logrus.Logger, mockURL string) (*suite.RunResult, error) {
	s, err := resolveSettings(cmd, logger)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(logLevel(s.verbosity))
	if mockURL != "" {
		s.config.BaseURL = mockURL
	}

	reporters, err := openReporters(cmd.OutOrStdout(), s)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	defer closeReporters(reporters)

	for _, r := range reporters {
		r.FormatHeader(version)
	}

	set, err := loadFixtures(s.config.Fixtures)
	if err != nil {
		for _, r := range reporters {
			r.FormatError(err)
		}
		return nil, err
	}

	runner := suite.NewRunner(&suite.Config{
		BaseURL:        s.config.BaseURL,
		Timeout:        s.config.TimeoutDuration(),
		Retries:        s.config.Retries,
		RateLimit:      s.config.RateLimit,
		Bail:           s.config.GetBail(),
		NameFilter:     runFlag,
		TagsFilter:     s.tags,
		DefaultHeaders: s.config.Headers,
		Unique:         s.unique,
		Variables:      s.variables,
		Thresholds:     s.thresholds,
		Insecure:       s.config.GetInsecure(),
	}, suite.WithFixtures(set), suite.WithLogger(logger))

	start := time.Now()
	result, err := runner.Run(ctx)
	if err != nil {
		for _, r := range reporters {
			r.FormatError(err)
		}
		return nil, withCode(ExitConfigError, err)
	}

	for _, r := range reporters {
		r.FormatResult(result)
	}
	if err := writeMetrics(metricsFlag, metricsFmtFlag, result); err != nil {
		logger.WithError(err).Warn("could not write metrics")
	}
	totalDuration := time.Since(start)
	for _, r := range reporters {
		if flushable, ok := r.Formatter.(output.Flushable); ok {
			if err := flushable.Flush(totalDuration); err != nil {
				return result, fmt.Errorf("error writing output: %w", err)
			}
		}
	}
	return result, nil
}

// writeMetrics exports result to path when --metrics-file is set.
func writeMetrics(path, format string, result *suite.RunResult) error {
	if path == "" {
		return nil
	}
	if format == "" {
		format = metrics.FormatForPath(path)
	}
	return metrics.WriteFile(path, strings.ToLower(format), metrics.FromRun(result, time.Now()))
}

// resultError maps a finished run to the process exit code.
func resultError(result *suite.RunResult) error {
	switch {
	case result.NetworkFailure():
		return withCode(ExitNetworkError, fmt.Errorf("could not reach %s", result.BaseURL))
	case !result.OK():
		return withCode(ExitTestFailure, nil)
	}
	return nil
}

// reporter is a formatter plus the file it writes to, if any.
type reporter struct {
	output.Formatter
	close func() error
}

var reportExt = map[string]string{
	"console": ".txt",
	"json":    ".json",
	"junit":   ".xml",
	"tap":     ".tap",
}

// openReporters returns the primary formatter, writing to stdout or
// --output-file, followed by one file reporter per extra entry of the
// config's reporters list, written under outputDir.
func openReporters(stdout io.Writer, s *settings) ([]reporter, error) {
	noColor := s.config.GetNoColor()
	verbose := s.verbosity > 0

	var reporters []reporter
	primary := reporter{close: func() error { return nil }}
	w := stdout
	if outputFileFlag != "" {
		f, err := os.Create(outputFileFlag)
		if err != nil {
			return nil, fmt.Errorf("cannot create output file: %w", err)
		}
		w = f
		primary.close = f.Close
	}
	formatter, err := output.New(s.output, w, verbose, noColor)
	if err != nil {
		_ = primary.close()
		return nil, err
	}
	primary.Formatter = formatter
	reporters = append(reporters, primary)

	dir := s.config.OutputDir
	if dir == "" {
		dir = "."
	}
	for _, name := range s.config.Reporters {
		name = strings.ToLower(name)
		if name == s.output {
			continue
		}
		ext, ok := reportExt[name]
		if !ok {
			closeReporters(reporters)
			return nil, fmt.Errorf("unknown reporter %q in config (valid: %v)", name, output.Formats)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			closeReporters(reporters)
			return nil, fmt.Errorf("creating output dir: %w", err)
		}
		f, err := os.Create(filepath.Join(dir, "contractcheck-results"+ext))
		if err != nil {
			closeReporters(reporters)
			return nil, fmt.Errorf("cannot create report file: %w", err)
		}
		formatter, _ := output.New(name, f, verbose, true)
		reporters = append(reporters, reporter{Formatter: formatter, close: f.Close})
	}
	return reporters, nil
}

func closeReporters(reporters []reporter) {
	for _, r := range reporters {
		_ = r.close()
	}
}

// watchAndRerun calls rerun whenever one of paths is written, until ctx
// is cancelled.
func watchAndRerun(ctx context.Context, cmd *cobra.Command, paths []string, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	watchedDirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			watchedDirs[dir] = true
		}
	}
	if len(watched) == 0 {
		return usageError(fmt.Errorf("--watch needs a config, fixtures or env file to watch"))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	// Debounce timer for rapid file changes
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(out, "\n\nFile changed: %s\nRe-running scenarios...\n\n", name)
				rerun()
				fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}
