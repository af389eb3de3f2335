// Package suite runs the /usuarios contract scenarios against a live or
// mock API.
//
// A run has three phases:
//   - setup creates every fixture user and records its id
//   - scenarios run one at a time, in order, each asserting one or more
//     response contracts
//   - cleanup deletes every user the run created and did not delete
//
// Scenarios share state only through the Fixture passed in their Env.
// A scenario whose fixture user could not be created is skipped.
package suite
