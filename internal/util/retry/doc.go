// Package retry provides exponential backoff for transient failures and a
// marker for failures that must never be retried.
//
// [Do] retries an operation with configurable attempts and delays. Errors
// wrapped with [Fatal] stop the loop immediately; the engine uses this for
// precondition failures (missing Terraform output, invalid configuration)
// and for ownership-adoption failures, where a blind retry against a resource
// in an unknown state is unsafe.
package retry
