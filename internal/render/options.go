// Package render turns scanned math spans into markup through a pluggable
// expression renderer, falling back to the raw expression when it fails.
package render

import "maps"

// Options is the render configuration fixed when the extension is registered.
type Options struct {
	// GlobalStyle is prepended to every span's directive.
	GlobalStyle string
	// ThrowOnError logs render failures at error level. Output still falls
	// back to the raw expression.
	ThrowOnError bool
	// Passthrough is forwarded untouched to the Service.
	Passthrough map[string]any
}

// Params is the per-call view of Options handed to a Service. A new value is
// built for every span, so services may retain it without coordination.
type Params struct {
	Options
	DisplayMode bool
	Style       string
}

// Option returns a passthrough option by key.
func (p Params) Option(key string) (any, bool) {
	v, ok := p.Passthrough[key]
	return v, ok
}

// Service renders one expression to markup.
type Service interface {
	RenderToString(content, style string, p Params) (string, error)
}

// ServiceFunc adapts a function to the Service interface.
type ServiceFunc func(content, style string, p Params) (string, error)

// RenderToString calls f.
func (f ServiceFunc) RenderToString(content, style string, p Params) (string, error) {
	return f(content, style, p)
}

func (o Options) clone() Options {
	o.Passthrough = maps.Clone(o.Passthrough)
	return o
}

// EffectiveStyle is the style handed to the Service: the global style
// followed by a line break, then the span directive. Either may be empty.
func (o Options) EffectiveStyle(directive string) string {
	if o.GlobalStyle == "" {
		return directive
	}
	return o.GlobalStyle + "\n" + directive
}
