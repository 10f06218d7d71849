// Package executor runs a long-lived colonies executor.
//
// Ownership boundary:
// - executor registration, approval and function publication
// - assign loops with rate limiting and connection backoff
// - dispatch of assigned processes to registered handlers
// - closing processes with handler output or failure text
package executor
