package suite

import (
	"context"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/contract"
	"github.com/abdul-hamid-achik/contractcheck/packages/fixtures"
	"github.com/abdul-hamid-achik/contractcheck/packages/http"
	"github.com/abdul-hamid-achik/contractcheck/packages/stats"
	"github.com/abdul-hamid-achik/contractcheck/packages/usuarios"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Request names used for latency grouping.
const (
	RequestCreate = "POST /usuarios"
	RequestDelete = "DELETE /usuarios/{id}"
)

// TransportError wraps a request that produced no response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Check is one contract assertion made by a scenario.
type Check struct {
	Label    string           `json:"label"`
	Method   string           `json:"method"`
	URL      string           `json:"url"`
	Status   int              `json:"status"`
	Duration time.Duration    `json:"duration"`
	Result   *contract.Result `json:"result"`
}

func (c Check) Passed() bool {
	return c.Result == nil || c.Result.Passed
}

// Env is what a scenario sees of the run: the API client, the fixture
// users and the run's logger. Requests made through Env are rate limited
// and timed.
type Env struct {
	Client  *usuarios.Client
	Fixture *Fixture
	Log     logrus.FieldLogger

	limiter  *rate.Limiter
	recorder *stats.Recorder
}

func (e *Env) wait(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}

func (e *Env) record(name string, resp *http.Response, err error) {
	if e.recorder == nil {
		return
	}
	var d time.Duration
	if resp != nil {
		d = resp.Duration
	}
	e.recorder.Record(name, d, err)
}

// Create posts u. Only transport failures are returned as errors; any
// status is handed back for assertion.
func (e *Env) Create(ctx context.Context, u fixtures.User) (string, *http.Response, error) {
	if err := e.wait(ctx); err != nil {
		return "", nil, &TransportError{Err: err}
	}
	id, resp, err := e.Client.Create(ctx, u)
	if resp == nil && err != nil {
		e.record(RequestCreate, nil, err)
		return "", nil, &TransportError{Err: err}
	}
	e.record(RequestCreate, resp, nil)
	return id, resp, nil
}

// Delete deletes id and marks it deleted in the fixture when the API
// confirms the removal.
func (e *Env) Delete(ctx context.Context, id string) (*http.Response, error) {
	if err := e.wait(ctx); err != nil {
		return nil, &TransportError{Err: err}
	}
	resp, err := e.Client.Delete(ctx, id)
	e.record(RequestDelete, resp, err)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode == nethttp.StatusOK {
		if v, err := resp.BodyJSON(); err == nil {
			if msg, ok := v.Get("message"); ok {
				if s, _ := msg.Str(); s == usuarios.MessageDeleted {
					e.Fixture.MarkDeleted(id)
				}
			}
		}
	}
	return resp, nil
}

// Expect asserts c against resp and returns the check.
func (e *Env) Expect(label, method, url string, resp *http.Response, c *contract.HTTPContract) Check {
	check := Check{
		Label:  label,
		Method: method,
		URL:    url,
		Result: contract.Assert(resp.Observed(), c),
	}
	check.Status = resp.StatusCode
	check.Duration = resp.Duration
	return check
}

// DeleteExpect deletes id and asserts c against the response.
func (e *Env) DeleteExpect(ctx context.Context, label, id string, c *contract.HTTPContract) (Check, error) {
	resp, err := e.Delete(ctx, id)
	if err != nil {
		return Check{}, err
	}
	return e.Expect(label, nethttp.MethodDelete, e.Client.URL(id), resp, c), nil
}

// SkipError marks a scenario as skipped rather than failed.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "skipped: " + e.Reason
}

func Skip(format string, args ...any) error {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}
