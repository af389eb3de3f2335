// Package http provides the HTTP client the suite drives the API with.
//
// It wraps the standard library's http package with additional features:
//   - Configurable timeouts, per client and per request
//   - Redirect handling
//   - Default headers applied to every request
//   - Response capture (status, headers, body, duration) and conversion
//     into a contract.ObservedResponse for assertion
package http
