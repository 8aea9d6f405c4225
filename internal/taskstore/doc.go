// Package taskstore records the state of long-running tool calls.
//
// A Task moves from processing to completed or error. The Store interface
// has an in-memory implementation for single-process use and a Redis
// implementation for shared state with expiry.
package taskstore
