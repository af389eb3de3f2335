package suite

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/contract"
	"github.com/abdul-hamid-achik/contractcheck/packages/core/env"
	"github.com/abdul-hamid-achik/contractcheck/packages/fixtures"
	"github.com/abdul-hamid-achik/contractcheck/packages/http"
	"github.com/abdul-hamid-achik/contractcheck/packages/stats"
	"github.com/abdul-hamid-achik/contractcheck/packages/usuarios"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the per request timeout
	DefaultTimeout = 10 * time.Second
	// CleanupTimeout bounds the cleanup phase, which runs even after the
	// run's context is cancelled
	CleanupTimeout = 30 * time.Second
)

// Config controls a run.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	Retries        int
	RateLimit      float64 // requests per second, 0 = unlimited
	Bail           bool
	NameFilter     string
	TagsFilter     []string
	DefaultHeaders map[string]string
	// Unique suffixes fixture emails so reruns do not collide
	Unique     bool
	Variables  map[string]any
	Thresholds stats.Thresholds
	// Insecure skips TLS certificate verification
	Insecure bool
}

// Runner executes scenarios against one API.
type Runner struct {
	config    *Config
	fixtures  *fixtures.Set
	scenarios []Scenario
	log       logrus.FieldLogger
	transport nethttp.RoundTripper
	resolver  *env.Resolver
}

type RunnerOption func(*Runner)

func WithFixtures(set *fixtures.Set) RunnerOption {
	return func(r *Runner) {
		r.fixtures = set
	}
}

func WithScenarios(scenarios ...Scenario) RunnerOption {
	return func(r *Runner) {
		r.scenarios = scenarios
	}
}

func WithLogger(l logrus.FieldLogger) RunnerOption {
	return func(r *Runner) {
		r.log = l
	}
}

// WithTransport routes requests through rt, e.g. an in-process handler.
func WithTransport(rt nethttp.RoundTripper) RunnerOption {
	return func(r *Runner) {
		r.transport = rt
	}
}

func WithResolver(res *env.Resolver) RunnerOption {
	return func(r *Runner) {
		r.resolver = res
	}
}

func NewRunner(cfg *Config, opts ...RunnerOption) *Runner {
	r := &Runner{
		config:    cfg,
		fixtures:  fixtures.Default(),
		scenarios: All(),
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.resolver == nil {
		r.resolver = env.NewResolver()
	}
	if r.config.Timeout <= 0 {
		r.config.Timeout = DefaultTimeout
	}
	return r
}

func (r *Runner) newEnv() *Env {
	httpOpts := []http.ClientOption{
		http.WithTimeout(r.config.Timeout),
		http.WithDefaultHeaders(r.config.DefaultHeaders),
	}
	if r.config.Insecure {
		httpOpts = append(httpOpts, http.WithValidateSSL(false))
	}
	if r.transport != nil {
		httpOpts = append(httpOpts, http.WithTransport(r.transport))
	}

	limit := rate.Inf
	if r.config.RateLimit > 0 {
		limit = rate.Limit(r.config.RateLimit)
	}

	return &Env{
		Client: usuarios.NewClient(r.config.BaseURL,
			usuarios.WithHTTPClient(http.NewClient(httpOpts...)),
			usuarios.WithLogger(r.log),
		),
		Fixture:  NewFixture(),
		Log:      r.log,
		limiter:  rate.NewLimiter(limit, 1),
		recorder: stats.NewRecorder(),
	}
}

// Run executes setup, the selected scenarios and cleanup. The returned
// error is reserved for runs that cannot start; failing scenarios are
// reported in the result.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	if err := http.ValidateURL(r.config.BaseURL); err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}

	r.resolver.SetVariables(r.config.Variables)
	r.resolver.SetWarnFunc(r.log.Warnf)
	set, err := r.fixtures.Resolve(r.resolver)
	if err != nil {
		return nil, err
	}
	if r.config.Unique {
		set = set.Unique()
	}

	start := time.Now()
	e := r.newEnv()
	result := &RunResult{BaseURL: r.config.BaseURL}

	result.Setup = r.setup(ctx, e, set)

	for _, s := range Filter(r.scenarios, r.config.NameFilter, r.config.TagsFilter) {
		if ctx.Err() != nil {
			break
		}
		sr := r.runScenario(ctx, e, s)
		result.add(sr)
		if r.config.Bail && sr.Status == StatusFailed {
			r.log.WithField("scenario", s.ID).Warn("bail: stopping after first failure")
			break
		}
	}

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CleanupTimeout)
	defer cancel()
	result.Cleaned = e.Client.Cleanup(cleanupCtx, e.Fixture.PendingIDs())

	result.Duration = time.Since(start)
	result.Latency = e.recorder.Summary()
	if r.config.Thresholds.HasThresholds() {
		result.Thresholds = r.config.Thresholds.Evaluate(result.Latency)
	}
	return result, nil
}

func (r *Runner) setup(ctx context.Context, e *Env, set *fixtures.Set) []SetupResult {
	var results []SetupResult
	for _, name := range set.Names() {
		u, _ := set.Get(name)
		sr := SetupResult{Fixture: name, Email: u.Email}

		id, resp, err := e.Create(ctx, u)
		switch {
		case err != nil:
			sr.Err = err
			r.log.WithError(err).WithField("fixture", name).Warn("setup: create failed")
		case resp.StatusCode != nethttp.StatusCreated:
			sr.Err = &usuarios.UnexpectedStatusError{
				Method: nethttp.MethodPost,
				URL:    e.Client.URL(),
				Status: resp.StatusCode,
				Body:   resp.BodyString(),
			}
			r.log.WithFields(logrus.Fields{"fixture": name, "status": resp.StatusCode}).
				Warnf("setup: failed to create %s (%s)", u.Nome, u.Email)
		default:
			sr.Result = contract.Assert(resp.Observed(), contract.New(contract.ExpectBody(usuarios.CreatedSchema)))
		}

		if id != "" {
			sr.ID = id
			e.Fixture.Add(name, u, id)
			r.resolver.SetCapture(name, "_id", id)
			r.log.WithFields(logrus.Fields{"fixture": name, "id": id}).
				Infof("setup: created %s", u.Nome)
		}
		results = append(results, sr)
	}
	return results
}

func (r *Runner) runScenario(ctx context.Context, e *Env, s Scenario) ScenarioResult {
	result := ScenarioResult{ID: s.ID, Name: s.Name, Tags: s.Tags}
	start := time.Now()
	attempts := 1 + r.config.Retries

	for attempt := 1; attempt <= attempts; attempt++ {
		checks, err := s.Run(ctx, e)

		var skip *SkipError
		if errors.As(err, &skip) {
			if attempt > 1 {
				// The earlier failure stands; the retry found nothing left
				// to run against.
				result.Attempts = attempt
				r.log.WithField("scenario", s.ID).Warnf("retry skipped: %s", skip.Reason)
				break
			}
			result.Attempts = attempt
			result.Status = StatusSkipped
			result.SkipReason = skip.Reason
			result.Err = err
			r.log.WithField("scenario", s.ID).Info(skip.Reason)
			break
		}

		result.Attempts = attempt
		result.Checks = checks
		result.Err = err
		result.Status = StatusPassed
		if err != nil {
			result.Status = StatusFailed
		}
		for _, c := range checks {
			if !c.Passed() {
				result.Status = StatusFailed
			}
		}
		if result.Status == StatusPassed || ctx.Err() != nil {
			break
		}
		var terr *TransportError
		if s.Consumes && !errors.As(err, &terr) {
			r.log.WithField("scenario", s.ID).Warn("not retried: its fixture user was consumed")
			break
		}
		if attempt < attempts {
			r.log.WithFields(logrus.Fields{"scenario": s.ID, "attempt": attempt}).Warn("retrying failed scenario")
		}
	}

	result.Duration = time.Since(start)
	return result
}
