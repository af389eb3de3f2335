// Package contract asserts that an observed HTTP response satisfies an
// expected contract.
//
// A contract declares:
//   - The expected status code (ExpectStatus(200))
//   - Headers, matched exactly or by substring, name case-insensitive
//     (ExpectHeaderContains("Content-Type", "application/json"))
//   - A body schema, delegated to the schema package (ExpectBody(s))
//   - Expected values at body paths (ExpectField("message", ...))
//
// Assert evaluates every check and never stops at the first failure. It
// performs no I/O; obtaining the response is the caller's job.
package contract
