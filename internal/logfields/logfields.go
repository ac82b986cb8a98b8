package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyFile       = "file"
	KeyPath       = "path"
	KeyOutput     = "output"
	KeyKind       = "kind"
	KeyContent    = "content"
	KeyDirective  = "directive"
	KeyLine       = "line"
	KeyCount      = "count"
	KeyOutcome    = "outcome"
	KeyDurationMS = "duration_ms"
	KeyListen     = "listen"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Output(o string) slog.Attr        { return slog.String(KeyOutput, o) }
func Kind(k string) slog.Attr          { return slog.String(KeyKind, k) }
func Content(c string) slog.Attr       { return slog.String(KeyContent, c) }
func Directive(d string) slog.Attr     { return slog.String(KeyDirective, d) }
func Line(n int) slog.Attr             { return slog.Int(KeyLine, n) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Outcome(o string) slog.Attr       { return slog.String(KeyOutcome, o) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Listen(addr string) slog.Attr     { return slog.String(KeyListen, addr) }
func Error(err error) slog.Attr {
	if err == nil { return slog.String(KeyError, "") }
	return slog.String(KeyError, err.Error())
}
