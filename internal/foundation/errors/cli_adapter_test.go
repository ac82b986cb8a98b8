package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: 0,
		},
		{
			name:     "classified validation error",
			err:      ValidationError("invalid input").Build(),
			expected: 2,
		},
		{
			name:     "missing document",
			err:      NotFoundError("no such file").Build(),
			expected: 3,
		},
		{
			name:     "config error",
			err:      ConfigError("bad config").Build(),
			expected: 7,
		},
		{
			name:     "render error",
			err:      NewError(CategoryRender, "unbalanced braces").Build(),
			expected: 9,
		},
		{
			name:     "filesystem error",
			err:      NewError(CategoryFileSystem, "write failed").Retryable().Build(),
			expected: 11,
		},
		{
			name:     "wrapped watch error",
			err:      fmt.Errorf("watch loop: %w", NewError(CategoryWatch, "watcher closed").Build()),
			expected: 12,
		},
		{
			name:     "unclassified error",
			err:      &customError{msg: "unknown error"},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "internal error in non-verbose mode",
			err:  InternalError("internal issue").Build(),
			want: "Internal error occurred (use -v for details)",
		},
		{
			name: "config error shows message",
			err:  ConfigError("bad config").Build(),
			want: "Error: bad config",
		},
		{
			name: "cause is appended",
			err:  WrapError(errors.New("permission denied"), CategoryFileSystem, "write output").Build(),
			want: "Error: write output: permission denied",
		},
		{
			name: "unclassified error",
			err:  &customError{msg: "unknown error"},
			want: "Error: unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.FormatError(tt.err); got != tt.want {
				t.Errorf("FormatError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLIErrorAdapter_VerboseUsesFullError(t *testing.T) {
	adapter := NewCLIErrorAdapter(true, nil)
	err := InternalError("boom").Build()
	if got := adapter.FormatError(err); got != "[internal:fatal] boom" {
		t.Errorf("FormatError() = %q", got)
	}
}

func TestCLIErrorAdapter_LogsContext(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewCLIErrorAdapter(true, slog.New(slog.NewTextHandler(&buf, nil)))
	err := NewError(CategoryFileSystem, "write page").
		Retryable().
		WithContext("output", "html/a.html").
		WithContext("file", "a.md").
		Build()

	adapter.logError(fmt.Errorf("convert: %w", err))
	line := buf.String()
	for _, want := range []string{"level=ERROR", `msg="write page"`, "category=filesystem", "retryable=true", "file=a.md", "output=html/a.html"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q is missing %q", line, want)
		}
	}
	if strings.Index(line, "file=") > strings.Index(line, "output=") {
		t.Errorf("context keys are not sorted: %q", line)
	}
}

// customError is a test helper for unclassified errors
type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
