// Package stats records request latencies for a suite run and evaluates
// latency thresholds such as "p95<500ms".
package stats
