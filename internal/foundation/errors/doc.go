// Package errors provides foundational, type-safe error primitives used across mathspan.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, parse, render, watch, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry behavior (never, immediate, backoff, user action)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and messages for the command line
//
// Example usage:
//
//	err := errors.WrapError(readErr, errors.CategoryFileSystem, "read document").
//		WithContext("file", path).
//		Build()
package errors
