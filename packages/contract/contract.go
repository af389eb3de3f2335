package contract

import (
	"github.com/abdul-hamid-achik/contractcheck/packages/jsonvalue"
	"github.com/abdul-hamid-achik/contractcheck/packages/schema"
)

// MatchKind selects how a header value is compared.
type MatchKind int

const (
	// MatchPresent only requires the header to be present.
	MatchPresent MatchKind = iota
	// MatchExact requires the header value to equal the expected value.
	MatchExact
	// MatchContains requires the header value to contain the expected value.
	MatchContains
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "equals"
	case MatchContains:
		return "contains"
	default:
		return "exists"
	}
}

// MarshalText renders the kind by name in JSON reports.
func (k MatchKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// HeaderMatcher is a single header expectation.
type HeaderMatcher struct {
	Name  string
	Kind  MatchKind
	Value string
}

// FieldExpectation requires the body value at Path to equal Value.
type FieldExpectation struct {
	Path  string
	Value jsonvalue.Value
}

// HTTPContract is the expected status, headers and body of a response. It
// is immutable once built and safe to share between goroutines.
type HTTPContract struct {
	status  int
	headers []HeaderMatcher
	body    *schema.Schema
	fields  []FieldExpectation
}

// Option configures a contract.
type Option func(*HTTPContract)

// New builds a contract from options.
func New(opts ...Option) *HTTPContract {
	c := &HTTPContract{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With returns a copy of c with additional options applied. The receiver
// is left unchanged.
func (c *HTTPContract) With(opts ...Option) *HTTPContract {
	cp := &HTTPContract{
		status:  c.status,
		headers: append([]HeaderMatcher(nil), c.headers...),
		body:    c.body,
		fields:  append([]FieldExpectation(nil), c.fields...),
	}
	for _, opt := range opts {
		opt(cp)
	}
	return cp
}

// ExpectStatus sets the expected status code. A contract without one does
// not check the status.
func ExpectStatus(code int) Option {
	return func(c *HTTPContract) {
		c.status = code
	}
}

// ExpectHeader requires a header to equal value.
func ExpectHeader(name, value string) Option {
	return func(c *HTTPContract) {
		c.headers = append(c.headers, HeaderMatcher{Name: name, Kind: MatchExact, Value: value})
	}
}

// ExpectHeaderContains requires a header to contain substr.
func ExpectHeaderContains(name, substr string) Option {
	return func(c *HTTPContract) {
		c.headers = append(c.headers, HeaderMatcher{Name: name, Kind: MatchContains, Value: substr})
	}
}

// ExpectHeaderPresent requires a header to be present with any value.
func ExpectHeaderPresent(name string) Option {
	return func(c *HTTPContract) {
		c.headers = append(c.headers, HeaderMatcher{Name: name, Kind: MatchPresent})
	}
}

// ExpectHeaders appends a set of header matchers, typically a shared group
// such as the security headers every endpoint sends.
func ExpectHeaders(matchers ...HeaderMatcher) Option {
	return func(c *HTTPContract) {
		c.headers = append(c.headers, matchers...)
	}
}

// ExpectBody sets the schema the body must conform to.
func ExpectBody(s *schema.Schema) Option {
	return func(c *HTTPContract) {
		c.body = s
	}
}

// ExpectField requires the body value at path (dotted, with [n] for array
// indexes) to equal want.
func ExpectField(path string, want jsonvalue.Value) Option {
	return func(c *HTTPContract) {
		c.fields = append(c.fields, FieldExpectation{Path: path, Value: want})
	}
}

// ExpectMessage is shorthand for the {"message": "..."} bodies most
// endpoints return.
func ExpectMessage(message string) Option {
	return ExpectField("message", jsonvalue.StringValue(message))
}

func (c *HTTPContract) Status() int              { return c.status }
func (c *HTTPContract) Headers() []HeaderMatcher { return append([]HeaderMatcher(nil), c.headers...) }
func (c *HTTPContract) Body() *schema.Schema     { return c.body }
func (c *HTTPContract) Fields() []FieldExpectation {
	return append([]FieldExpectation(nil), c.fields...)
}
