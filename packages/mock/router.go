package mock

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// HandlerFunc serves a matched route. params holds the decoded path
// parameters.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, params map[string]string)

// Route represents a mock route
type Route struct {
	Method      string
	PathPattern string
	PathRegex   *regexp.Regexp
	Name        string
	Handler     HandlerFunc
}

// Router matches incoming requests to routes
type Router struct {
	routes []*Route
}

func NewRouter() *Router {
	return &Router{
		routes: make([]*Route, 0),
	}
}

// Handle registers handler for method and a path pattern such as
// /usuarios/{{id}}.
func (r *Router) Handle(method, pattern, name string, handler HandlerFunc) {
	r.AddRoute(&Route{
		Method:      method,
		PathPattern: pattern,
		PathRegex:   createPathRegex(pattern),
		Name:        name,
		Handler:     handler,
	})
}

func (r *Router) AddRoute(route *Route) {
	r.routes = append(r.routes, route)
}

func (r *Router) Routes() []*Route {
	return r.routes
}

// Match finds a route matching the given method and escaped path. The
// second result reports whether any route matched the path regardless of
// method.
func (r *Router) Match(method, escapedPath string) (*Route, map[string]string, bool) {
	path := normalizePath(escapedPath)
	pathMatched := false

	for _, route := range r.routes {
		params := matchPath(route, path)
		if params == nil {
			continue
		}
		pathMatched = true
		if strings.EqualFold(route.Method, method) {
			return route, params, true
		}
	}

	return nil, nil, pathMatched
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

var paramPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

func createPathRegex(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	last := 0
	for _, loc := range paramPattern.FindAllStringSubmatchIndex(pattern, -1) {
		b.WriteString(regexp.QuoteMeta(pattern[last:loc[0]]))
		b.WriteString("(?P<" + pattern[loc[2]:loc[3]] + ">[^/]+)")
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(pattern[last:]))
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

func matchPath(route *Route, path string) map[string]string {
	matches := route.PathRegex.FindStringSubmatch(path)
	if matches == nil {
		return nil
	}
	params := make(map[string]string)
	for i, name := range route.PathRegex.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		value, err := url.PathUnescape(matches[i])
		if err != nil {
			value = matches[i]
		}
		params[name] = value
	}
	return params
}
