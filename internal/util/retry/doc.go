// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max attempts,
// initial delay, and maximum delay. Inventory API calls that hit locked or
// still-referenced objects use it; errors wrapped with [Fatal] stop immediately.
package retry
