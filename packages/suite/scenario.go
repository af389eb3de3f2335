package suite

import (
	"context"
	"strings"
)

// Tags used by the built-in scenarios.
const (
	TagPositive = "positive"
	TagNegative = "negative"
	TagCreate   = "create"
	TagDelete   = "delete"
)

// Scenario is one test case. Run returns the checks it made; a nil error
// with every check passing is a pass. A *SkipError skips the scenario.
type Scenario struct {
	ID   string
	Name string
	Tags []string
	// Consumes marks scenarios that delete fixture users. Once such a
	// scenario has reached the API it is not retried: its user is gone and
	// a second attempt would pick another one.
	Consumes bool
	Run      func(ctx context.Context, e *Env) ([]Check, error)
}

func (s Scenario) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Matches reports whether the scenario ID or name contains filter,
// ignoring case. An empty filter matches everything.
func (s Scenario) Matches(filter string) bool {
	if filter == "" {
		return true
	}
	filter = strings.ToLower(filter)
	return strings.Contains(strings.ToLower(s.ID), filter) ||
		strings.Contains(strings.ToLower(s.Name), filter)
}

// Filter returns the scenarios matching name and carrying at least one of
// tags. Empty arguments do not filter.
func Filter(scenarios []Scenario, name string, tags []string) []Scenario {
	var out []Scenario
	for _, s := range scenarios {
		if !s.Matches(name) {
			continue
		}
		if len(tags) > 0 {
			found := false
			for _, tag := range tags {
				if s.HasTag(tag) {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
