package http

import (
	"strings"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/contract"
	"github.com/abdul-hamid-achik/contractcheck/packages/jsonvalue"
)

type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// BodyJSON parses the body into a tagged JSON value.
func (r *Response) BodyJSON() (jsonvalue.Value, error) {
	return jsonvalue.Parse(r.Body)
}

func (r *Response) Header(key string) string {
	v, _ := contract.LookupHeader(r.Headers, key)
	return v
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	ct := r.ContentType()
	return strings.Contains(ct, "application/json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

// Observed converts the response into the form contracts are asserted
// against. Headers are copied so the contract never aliases driver state.
func (r *Response) Observed() *contract.ObservedResponse {
	headers := make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		headers[k] = v
	}
	return &contract.ObservedResponse{
		StatusCode: r.StatusCode,
		Headers:    headers,
		Body:       r.Body,
	}
}
