package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/contractcheck/packages/jsonvalue"
	"github.com/abdul-hamid-achik/contractcheck/packages/schema"
)

// StatusMismatch records a failed status code check.
type StatusMismatch struct {
	Expected int `json:"expected"`
	Actual   int `json:"actual"`
}

// HeaderMismatch records a failed header check. Actual is empty and Present
// false when the header was absent.
type HeaderMismatch struct {
	Name     string    `json:"name"`
	Kind     MatchKind `json:"kind"`
	Expected string    `json:"expected"`
	Actual   string    `json:"actual"`
	Present  bool      `json:"present"`
}

// FieldMismatch records a body value that did not equal the expected one.
type FieldMismatch struct {
	Path     string `json:"path"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// Result aggregates the outcome of every check in a contract.
type Result struct {
	Passed  bool               `json:"passed"`
	Status  *StatusMismatch    `json:"status,omitempty"`
	Headers []HeaderMismatch   `json:"headers,omitempty"`
	Body    []schema.Violation `json:"body,omitempty"`
	Fields  []FieldMismatch    `json:"fields,omitempty"`
}

// Assert evaluates c against resp. All checks run regardless of earlier
// failures. A nil response is treated as an empty one.
func Assert(resp *ObservedResponse, c *HTTPContract) *Result {
	if resp == nil {
		resp = &ObservedResponse{}
	}
	result := &Result{}
	if c == nil {
		result.Passed = true
		return result
	}

	if c.status != 0 && resp.StatusCode != c.status {
		result.Status = &StatusMismatch{Expected: c.status, Actual: resp.StatusCode}
	}

	for _, m := range c.headers {
		if mismatch, ok := checkHeader(resp, m); !ok {
			result.Headers = append(result.Headers, mismatch)
		}
	}

	if c.body != nil || len(c.fields) > 0 {
		body, err := resp.Value()
		if err != nil {
			result.Body = append(result.Body, schema.Violation{
				Kind:     schema.BodyNotJSON,
				Path:     schema.RootPath,
				Expected: "JSON body",
				Actual:   describeBody(resp.Body),
			})
		} else {
			result.Body = append(result.Body, schema.Validate(body, c.body)...)
			for _, f := range c.fields {
				if mismatch, ok := checkField(body, f); !ok {
					result.Fields = append(result.Fields, mismatch)
				}
			}
		}
	}

	result.Passed = result.Status == nil &&
		len(result.Headers) == 0 &&
		len(result.Body) == 0 &&
		len(result.Fields) == 0
	return result
}

func checkHeader(resp *ObservedResponse, m HeaderMatcher) (HeaderMismatch, bool) {
	actual, present := resp.Header(m.Name)
	mismatch := HeaderMismatch{
		Name:     m.Name,
		Kind:     m.Kind,
		Expected: m.Value,
		Actual:   actual,
		Present:  present,
	}
	if !present {
		return mismatch, false
	}
	switch m.Kind {
	case MatchExact:
		return mismatch, actual == m.Value
	case MatchContains:
		return mismatch, strings.Contains(actual, m.Value)
	}
	return mismatch, true
}

func checkField(body jsonvalue.Value, f FieldExpectation) (FieldMismatch, bool) {
	mismatch := FieldMismatch{Path: f.Path, Expected: f.Value.String()}
	actual, ok := Lookup(body, f.Path)
	if !ok {
		mismatch.Actual = "absent"
		return mismatch, false
	}
	mismatch.Actual = actual.String()
	return mismatch, actual.Equal(f.Value)
}

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// Lookup resolves a dotted path such as "usuarios[0].nome" in v. An empty
// path or "$" returns v itself.
func Lookup(v jsonvalue.Value, path string) (jsonvalue.Value, bool) {
	path = strings.TrimPrefix(strings.TrimPrefix(path, schema.RootPath), ".")
	if path == "" {
		return v, true
	}
	// Convert bracket notation to dots: "items[0].id" -> "items.0.id"
	path = strings.TrimPrefix(indexPattern.ReplaceAllString(path, ".$1"), ".")

	cur := v
	for _, seg := range strings.Split(path, ".") {
		switch cur.Kind() {
		case jsonvalue.Object:
			next, ok := cur.Get(seg)
			if !ok {
				return jsonvalue.Value{}, false
			}
			cur = next
		case jsonvalue.Array:
			i, err := strconv.Atoi(seg)
			items := cur.Items()
			if err != nil || i < 0 || i >= len(items) {
				return jsonvalue.Value{}, false
			}
			cur = items[i]
		default:
			return jsonvalue.Value{}, false
		}
	}
	return cur, true
}

func describeBody(body []byte) string {
	if len(body) == 0 {
		return "empty body"
	}
	s := string(body)
	if len(s) > 100 {
		s = s[:100] + "..."
	}
	return strconv.Quote(s)
}

// Failures renders each failed check as one line, for reporters.
func (r *Result) Failures() []string {
	var out []string
	if r.Status != nil {
		out = append(out, fmt.Sprintf("status: expected %d, got %d", r.Status.Expected, r.Status.Actual))
	}
	for _, h := range r.Headers {
		switch {
		case !h.Present:
			out = append(out, fmt.Sprintf("header %s: missing", h.Name))
		default:
			out = append(out, fmt.Sprintf("header %s: expected to %s %q, got %q", h.Name, h.Kind, h.Expected, h.Actual))
		}
	}
	for _, v := range r.Body {
		out = append(out, "body "+v.String())
	}
	for _, f := range r.Fields {
		out = append(out, fmt.Sprintf("field %s: expected %s, got %s", f.Path, f.Expected, f.Actual))
	}
	return out
}
