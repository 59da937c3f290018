// Package errors provides the structured error type used across lazyseq.
// Errors carry a machine-readable code, a human-readable message, optional
// details and an optional cause. Codes compare with errors.Is, so callers can
// test for a kind of failure without matching message text.
package errors
