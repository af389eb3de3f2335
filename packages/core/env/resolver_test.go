package env

import (
	"fmt"
	"strings"
	"testing"
)

func TestResolverHasUnresolvedVariables(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		variables map[string]any
		captures  map[string]string
		expected  bool
	}{
		{
			name:     "no placeholders",
			input:    "Fulano da Silva",
			expected: false,
		},
		{
			name:      "resolved variable",
			input:     "{{password}}",
			variables: map[string]any{"password": "teste"},
			expected:  false,
		},
		{
			name:     "unresolved variable",
			input:    "{{password}}",
			expected: true,
		},
		{
			name:      "mixed resolved and unresolved",
			input:     "{{nome}} <{{email}}>",
			variables: map[string]any{"nome": "Fulano"},
			expected:  true,
		},
		{
			name:     "fixture capture unresolved",
			input:    "{{admin_user._id}}",
			expected: true,
		},
		{
			name:     "fixture capture resolved",
			input:    "{{admin_user._id}}",
			captures: map[string]string{"admin_user": "0uxuPY0cbmQhpEz1"},
			expected: false,
		},
		{
			name:     "builtin function",
			input:    "qa-{{uuid()}}@qa.com",
			expected: false,
		},
		{
			name:     "unknown function",
			input:    "{{nope()}}",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver()
			if tt.variables != nil {
				r.SetVariables(tt.variables)
			}
			for fixture, id := range tt.captures {
				r.SetCapture(fixture, "_id", id)
			}

			got := r.HasUnresolvedVariables(tt.input)
			if got != tt.expected {
				t.Errorf("HasUnresolvedVariables(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestResolverGetUnresolvedVariables(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		variables map[string]any
		expected  []string
	}{
		{
			name:     "no placeholders",
			input:    "hello world",
			expected: nil,
		},
		{
			name:      "resolved variable",
			input:     "{{foo}}",
			variables: map[string]any{"foo": "bar"},
			expected:  nil,
		},
		{
			name:     "multiple unresolved in order",
			input:    "{{foo}} and {{bar}}",
			expected: []string{"foo", "bar"},
		},
		{
			name:      "mixed resolved and unresolved",
			input:     "{{foo}} and {{bar}} and {{baz}}",
			variables: map[string]any{"bar": "middle"},
			expected:  []string{"foo", "baz"},
		},
		{
			name:     "whitespace inside braces is trimmed",
			input:    "/usuarios/{{ delete_user._id }}",
			expected: []string{"delete_user._id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver()
			if tt.variables != nil {
				r.SetVariables(tt.variables)
			}

			got := r.GetUnresolvedVariables(tt.input)

			if tt.expected == nil {
				if got != nil {
					t.Errorf("GetUnresolvedVariables(%q) = %v, want nil", tt.input, got)
				}
				return
			}

			if len(got) != len(tt.expected) {
				t.Fatalf("GetUnresolvedVariables(%q) returned %d placeholders, want %d", tt.input, len(got), len(tt.expected))
			}
			for i, v := range tt.expected {
				if got[i] != v {
					t.Errorf("GetUnresolvedVariables(%q)[%d] = %q, want %q", tt.input, i, got[i], v)
				}
			}
		})
	}
}

func TestResolverResolve(t *testing.T) {
	t.Setenv("CONTRACTCHECK_TEST_DOMAIN", "qa.com.br")

	tests := []struct {
		name      string
		input     string
		variables map[string]any
		captures  map[string]string
		expected  string
	}{
		{
			name:     "no placeholders",
			input:    "hello world",
			expected: "hello world",
		},
		{
			name:      "multiple variables",
			input:     "{{nome}} {{sobrenome}}",
			variables: map[string]any{"nome": "Fulano", "sobrenome": "da Silva"},
			expected:  "Fulano da Silva",
		},
		{
			name:     "fixture capture",
			input:    "/usuarios/{{delete_user._id}}",
			captures: map[string]string{"delete_user": "abc123"},
			expected: "/usuarios/abc123",
		},
		{
			name:     "environment variable",
			input:    "fulano@{{$CONTRACTCHECK_TEST_DOMAIN}}",
			expected: "fulano@qa.com.br",
		},
		{
			name:     "builtin repeat",
			input:    `{{repeat("ab", 3)}}`,
			expected: "ababab",
		},
		{
			name:     "unresolved stays as-is",
			input:    "hello {{unknown}}",
			expected: "hello {{unknown}}",
		},
		{
			name:     "unset environment variable stays as-is",
			input:    "{{$CONTRACTCHECK_TEST_UNSET}}",
			expected: "{{$CONTRACTCHECK_TEST_UNSET}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver()
			if tt.variables != nil {
				r.SetVariables(tt.variables)
			}
			for fixture, id := range tt.captures {
				r.SetCapture(fixture, "_id", id)
			}

			got := r.Resolve(tt.input)
			if got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestResolverWarnsOnUnresolved(t *testing.T) {
	var warnings []string
	r := NewResolver()
	r.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	r.Resolve("{{missing}} and {{nope()}}")

	if len(warnings) != 2 {
		t.Fatalf("got %d warnings, want 2: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "missing") {
		t.Errorf("warning %q does not name the placeholder", warnings[0])
	}
}

func TestResolverClone(t *testing.T) {
	r := NewResolver()
	r.SetVariable("nome", "Fulano")
	r.SetCapture("admin_user", "_id", "1")

	clone := r.Clone()
	clone.SetVariable("nome", "Beltrano")

	if got := r.Resolve("{{nome}}"); got != "Fulano" {
		t.Errorf("original changed after clone mutation: %q", got)
	}
	if got := clone.Resolve("{{nome}} {{admin_user._id}}"); got != "Beltrano 1" {
		t.Errorf("clone resolved %q", got)
	}
}
