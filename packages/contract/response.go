package contract

import (
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/contractcheck/packages/jsonvalue"
)

// ObservedResponse is the response data a contract is asserted against.
// Body may be given as raw bytes, as an already parsed Value, or both; the
// parsed form wins when present.
type ObservedResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	JSON       *jsonvalue.Value
}

// Header looks up a header case-insensitively.
func (r *ObservedResponse) Header(name string) (string, bool) {
	return LookupHeader(r.Headers, name)
}

// LookupHeader finds name in headers, ignoring case. An exact key wins;
// otherwise, when several keys differ only by case, the lexically smallest
// one is used so the result does not depend on map iteration order.
func LookupHeader(headers map[string]string, name string) (string, bool) {
	if v, ok := headers[name]; ok {
		return v, true
	}
	var keys []string
	for k := range headers {
		if strings.EqualFold(k, name) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)
	return headers[keys[0]], true
}

// Value returns the parsed body, parsing Body on demand.
func (r *ObservedResponse) Value() (jsonvalue.Value, error) {
	if r.JSON != nil {
		return *r.JSON, nil
	}
	return jsonvalue.Parse(r.Body)
}
