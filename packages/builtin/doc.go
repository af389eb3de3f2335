// Package builtin provides the functions available to fixture templates.
//
// Available functions:
//   - uuid(): Generate a random UUID v4
//   - shortId(): First 8 hex digits of a UUID
//   - now(): Current time in RFC 3339
//   - timestamp(): Current Unix timestamp
//   - random(min, max): Random integer in range
//   - randomString(length): Random alphanumeric string
//   - randomEmail(): Random email address
//   - repeat(s, n): s repeated n times
//
// Functions are invoked using the {{functionName(args)}} syntax.
package builtin
