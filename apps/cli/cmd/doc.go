// Package cmd implements the contractcheck CLI commands using Cobra.
//
// Available commands:
//   - run: Run the /usuarios contract suite against an API
//   - check: Validate a JSON body against a schema document offline
//   - validate: Check schema documents for definition errors
//   - list: Display the built-in scenarios
//   - mock: Serve a local /usuarios API
//   - init: Write a starter config and fixture file
//   - version: Show version information
package cmd
