// Package notify posts contract run summaries to chat webhooks.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/suite"
)

// NotifyOn specifies when to send notifications
type NotifyOn string

const (
	// NotifyAlways sends notifications for every run
	NotifyAlways NotifyOn = "always"
	// NotifyFailure sends notifications only when the run fails
	NotifyFailure NotifyOn = "failure"
	// NotifySuccess sends notifications only when the run passes
	NotifySuccess NotifyOn = "success"
	// NotifyRecovery sends notifications on failure and on the first
	// passing run after a failure
	NotifyRecovery NotifyOn = "recovery"
)

// ParseNotifyOn accepts always, failure, success or recovery.
func ParseNotifyOn(s string) (NotifyOn, error) {
	switch n := NotifyOn(strings.ToLower(strings.TrimSpace(s))); n {
	case NotifyAlways, NotifyFailure, NotifySuccess, NotifyRecovery:
		return n, nil
	case "":
		return NotifyFailure, nil
	}
	return "", fmt.Errorf("invalid notify-on %q (valid: always, failure, success, recovery)", s)
}

// Summary is the part of a run that gets posted.
type Summary struct {
	BaseURL           string
	Total             int
	Passed            int
	Failed            int
	Skipped           int
	SetupFailures     int
	ThresholdFailures []string
	Duration          time.Duration
	FailedScenarios   []FailedScenario
	IsRecovery        bool
}

type FailedScenario struct {
	ID       string
	Name     string
	Failures []string
}

// OK mirrors suite.RunResult.OK.
func (s *Summary) OK() bool {
	return s.Failed == 0 && s.SetupFailures == 0 && len(s.ThresholdFailures) == 0
}

// Title is the one-line headline shared by every notifier.
func (s *Summary) Title() string {
	switch {
	case !s.OK() && s.Failed > 0:
		return fmt.Sprintf("%d contract scenario(s) failed", s.Failed)
	case !s.OK():
		return "Contract run failed"
	case s.IsRecovery:
		return "Contracts recovered"
	}
	return "All contracts passed"
}

// Summarize extracts a Summary from a run.
func Summarize(r *suite.RunResult) *Summary {
	s := &Summary{
		BaseURL:       r.BaseURL,
		Total:         len(r.Scenarios),
		Passed:        r.Passed,
		Failed:        r.Failed,
		Skipped:       r.Skipped,
		SetupFailures: r.SetupFailures(),
		Duration:      r.Duration,
	}
	for i := range r.Scenarios {
		sc := &r.Scenarios[i]
		if sc.Status != suite.StatusFailed {
			continue
		}
		s.FailedScenarios = append(s.FailedScenarios, FailedScenario{
			ID:       sc.ID,
			Name:     sc.Name,
			Failures: sc.Failures(),
		})
	}
	for _, t := range r.Thresholds {
		if !t.Passed {
			s.ThresholdFailures = append(s.ThresholdFailures, fmt.Sprintf("%s: %s (limit %s)", t.Name, t.Actual, t.Expected))
		}
	}
	return s
}

// Notifier is the interface for notification services
type Notifier interface {
	Notify(ctx context.Context, summary *Summary) error
	Name() string
}

// Manager fans a summary out to its notifiers according to a NotifyOn
// policy. It remembers the previous outcome, so one Manager should live as
// long as a watch session.
type Manager struct {
	notifiers []Notifier
	notifyOn  NotifyOn
	lastOK    bool
}

func NewManager(notifyOn NotifyOn, notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
		notifyOn:  notifyOn,
		lastOK:    true,
	}
}

func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

func (m *Manager) Len() int {
	return len(m.notifiers)
}

// ShouldNotify applies the policy to the outcome of a run and records it.
func (m *Manager) ShouldNotify(summary *Summary) bool {
	ok := summary.OK()
	notify := false

	switch m.notifyOn {
	case NotifyAlways:
		notify = true
	case NotifyFailure:
		notify = !ok
	case NotifySuccess:
		notify = ok
	case NotifyRecovery:
		if !m.lastOK && ok {
			notify = true
			summary.IsRecovery = true
		}
		if !ok {
			notify = true
		}
	}

	m.lastOK = ok
	return notify
}

// Notify sends the summary to every notifier when the policy allows it.
// All notifiers are tried; their errors are joined.
func (m *Manager) Notify(ctx context.Context, summary *Summary) error {
	if !m.ShouldNotify(summary) {
		return nil
	}

	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, summary); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
