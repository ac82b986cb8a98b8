package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "config.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}
		if file := err.Context()["file"]; file != "config.yaml" {
			t.Errorf("expected context file=config.yaml, got %v", file)
		}
		if err.Error() != "[config:fatal] invalid configuration" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("Cause is part of the message", func(t *testing.T) {
		err := WrapError(errors.New("denied"), CategoryFileSystem, "write page").Build()
		if err.Error() != "[filesystem:error] write page: denied" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("original error")
		err := WrapError(originalErr, CategoryWatch, "watch failure").
			Retryable().
			WithContext("path", "docs").
			WithContext("events", 3).
			Build()

		if err.Category() != CategoryWatch {
			t.Errorf("expected category %s, got %s", CategoryWatch, err.Category())
		}
		if err.RetryStrategy() != RetryBackoff {
			t.Errorf("expected retry strategy %s, got %s", RetryBackoff, err.RetryStrategy())
		}
		if !errors.Is(err, originalErr) || err.Cause() != originalErr {
			t.Error("expected error to wrap original error")
		}
		if err.Context()["path"] != "docs" || err.Context()["events"] != 3 {
			t.Errorf("unexpected context %v", err.Context())
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
			retry    RetryStrategy
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal, RetryUserAction},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal, RetryUserAction},
			{"NotFoundError", NotFoundError("test"), CategoryNotFound, SeverityError, RetryUserAction},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal, RetryNever},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != tt.severity {
					t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
				}
				if err.RetryStrategy() != tt.retry {
					t.Errorf("expected retry strategy %s, got %s", tt.retry, err.RetryStrategy())
				}
			})
		}
	})
}

func TestErrorContext_SetOnNil(t *testing.T) {
	var ctx ErrorContext
	ctx = ctx.Set("key", "value")
	if ctx["key"] != "value" {
		t.Errorf("expected key=value, got %v", ctx["key"])
	}
}

func TestAsClassified_UnwrapsChain(t *testing.T) {
	inner := NewError(CategoryParse, "bad front matter").WithContext("file", "a.md").Build()
	wrapped := fmt.Errorf("convert: %w", inner)

	got, ok := AsClassified(wrapped)
	if !ok {
		t.Fatal("expected classified error in chain")
	}
	if got != inner {
		t.Errorf("expected the inner error, got %v", got)
	}
	if _, ok := AsClassified(errors.New("plain")); ok {
		t.Error("expected no classified error in a plain error")
	}
}

func TestPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unclassified", errors.New("timeout"), false},
		{"backoff", NewError(CategoryRuntime, "flush").Retryable().Build(), false},
		{"immediate", NewError(CategoryRuntime, "flush").WithRetry(RetryImmediate).Build(), false},
		{"never", NewError(CategoryRuntime, "closed").Build(), true},
		{"user action", fmt.Errorf("wrapped: %w", ConfigError("bad url").Build()), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Permanent(tt.err); got != tt.want {
				t.Errorf("Permanent() = %v, want %v", got, tt.want)
			}
		})
	}
}
