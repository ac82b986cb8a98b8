// Package convert turns Markdown files with math spans into standalone HTML
// pages and skips pages whose sources have not changed.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/mathspan/internal/foundation/errors"
	"git.home.luguber.info/inful/mathspan/internal/frontmatter"
	"git.home.luguber.info/inful/mathspan/internal/history"
	"git.home.luguber.info/inful/mathspan/internal/logfields"
	"git.home.luguber.info/inful/mathspan/internal/markdown"
	"git.home.luguber.info/inful/mathspan/internal/mathext"
	"git.home.luguber.info/inful/mathspan/internal/metrics"
	"git.home.luguber.info/inful/mathspan/internal/notify"
	"git.home.luguber.info/inful/mathspan/internal/render"
	"git.home.luguber.info/inful/mathspan/internal/version"
)

// Settings are the conversion inputs shared by every page.
type Settings struct {
	render.Options
	GFM bool
	// OutputDir receives generated pages, mirroring the source tree.
	OutputDir string
	// Extension replaces the Markdown extension of each page.
	Extension string
	// Clean removes OutputDir before a tree conversion.
	Clean bool
	// Force rewrites pages even when their fingerprint is unchanged.
	Force bool
}

// Outcome describes what happened to one document.
type Outcome string

const (
	OutcomeConverted Outcome = "converted"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// FileResult reports the conversion of one document.
type FileResult struct {
	Source  string
	Output  string
	Outcome Outcome
	Spans   []markdown.Span
}

// Summary totals a tree conversion.
type Summary struct {
	// RunID identifies the run in the history journal. Empty without one.
	RunID     string
	Converted int
	Skipped   int
	Failed    int
	Spans     int
	Duration  time.Duration
}

// Converter renders Markdown documents to HTML pages.
type Converter struct {
	settings Settings
	service  render.Service
	recorder metrics.Recorder
	logger   *slog.Logger
	journal  history.Store
	notifier notify.Notifier
}

// Option configures a Converter.
type Option func(*Converter)

// WithService sets the expression renderer used for math spans.
func WithService(s render.Service) Option {
	return func(c *Converter) {
		c.service = s
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Converter) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHistory journals every ConvertTree run into store.
func WithHistory(store history.Store) Option {
	return func(c *Converter) {
		c.journal = store
	}
}

// WithNotifier publishes conversion events to n.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Converter) {
		c.notifier = n
	}
}

// New creates a Converter.
func New(settings Settings, opts ...Option) *Converter {
	if settings.Extension == "" {
		settings.Extension = ".html"
	}
	c := &Converter{
		settings: settings,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Settings returns the conversion settings.
func (c *Converter) Settings() Settings {
	return c.settings
}

// IsMarkdown reports whether path names a Markdown source.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// OutputPath maps a source path relative to the source root onto the output tree.
func (c *Converter) OutputPath(rel string) string {
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + c.settings.Extension
	return filepath.Join(c.settings.OutputDir, rel)
}

// RenderDocument converts a whole Markdown file, front matter included, to a
// page body. It does not touch the filesystem.
func (c *Converter) RenderDocument(content []byte) (*markdown.Result, frontmatter.Meta, error) {
	doc, err := frontmatter.Split(content)
	if err != nil {
		return nil, frontmatter.Meta{}, ferrors.WrapError(err, ferrors.CategoryParse, "invalid front matter").Build()
	}
	meta, _, err := doc.Meta()
	if err != nil {
		return nil, frontmatter.Meta{}, ferrors.WrapError(err, ferrors.CategoryParse, "invalid front matter").Build()
	}
	res, err := c.renderBody(meta, doc.Body)
	return res, meta, err
}

func (c *Converter) renderBody(meta frontmatter.Meta, body []byte) (*markdown.Result, error) {
	res, err := c.engine(meta).Render(body)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "failed to render markdown").Build()
	}
	return res, nil
}

func (c *Converter) engine(meta frontmatter.Meta) *markdown.Engine {
	opts := c.settings.Options
	if meta.MathStyle != "" {
		if opts.GlobalStyle != "" {
			opts.GlobalStyle += "\n"
		}
		opts.GlobalStyle += meta.MathStyle
	}
	math := []mathext.Option{
		mathext.WithOptions(opts),
		mathext.WithRecorder(c.recorder),
		mathext.WithLogger(c.logger),
	}
	if c.service != nil {
		math = append(math, mathext.WithService(c.service))
	}
	return markdown.New(markdown.Options{
		Math:        math,
		DisableMath: !meta.MathEnabled(),
		GFM:         c.settings.GFM,
	})
}

// ConvertFile converts the Markdown file at root/rel into the output tree.
func (c *Converter) ConvertFile(ctx context.Context, root, rel string) (FileResult, error) {
	start := time.Now()
	src := filepath.Join(root, rel)
	out := c.OutputPath(rel)
	result := FileResult{Source: src, Output: out, Outcome: OutcomeFailed}

	defer func() {
		c.recorder.ObserveDocumentDuration(time.Since(start))
		c.recorder.IncDocumentOutcome(documentLabel(result.Outcome))
	}()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	// #nosec G304 -- src is built from the walked source tree.
	content, err := os.ReadFile(src)
	if err != nil {
		return result, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read markdown file").
			WithContext("path", src).
			Build()
	}

	doc, err := frontmatter.Split(content)
	if err != nil {
		return result, ferrors.WrapError(err, ferrors.CategoryParse, "invalid front matter").
			WithContext("path", src).
			Build()
	}
	meta, fields, err := doc.Meta()
	if err != nil {
		return result, ferrors.WrapError(err, ferrors.CategoryParse, "invalid front matter").
			WithContext("path", src).
			Build()
	}
	fp, err := Fingerprint(fields, doc.Body, c.settings)
	if err != nil {
		return result, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to fingerprint document").
			WithContext("path", src).
			Build()
	}

	if !c.settings.Force {
		existing, readErr := ReadFingerprint(out)
		if readErr != nil {
			c.logger.Debug("Ignoring unreadable output page", logfields.Output(out), logfields.Error(readErr))
		}
		if existing != "" && existing == fp {
			result.Outcome = OutcomeSkipped
			c.logger.Debug("Document unchanged", logfields.File(rel))
			return result, nil
		}
	}

	res, err := c.renderBody(meta, doc.Body)
	if err != nil {
		return result, err
	}
	result.Spans = res.Spans
	c.recordSpans(res.Spans)

	title := meta.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	}

	var page bytes.Buffer
	if err := writePage(&page, pageData{
		Title:       title,
		Version:     version.Version,
		Fingerprint: fp,
		// #nosec G203 -- body is goldmark output; math fallbacks are escaped by the renderer.
		Body: template.HTML(res.HTML),
	}); err != nil {
		return result, ferrors.WrapError(err, ferrors.CategoryRender, "failed to render page").
			WithContext("path", src).
			Build()
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
		return result, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", out).
			Build()
	}
	if err := os.WriteFile(out, page.Bytes(), 0o644); err != nil {
		return result, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write page").
			WithContext("path", out).
			Build()
	}

	result.Outcome = OutcomeConverted
	c.logger.Info("Converted document",
		logfields.File(rel),
		logfields.Output(out),
		logfields.Count(len(res.Spans)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return result, nil
}

func (c *Converter) recordSpans(spans []markdown.Span) {
	total, directives := markdown.CountKinds(spans)
	for kind, n := range total {
		c.recorder.IncSpans(string(kind), n)
	}
	for kind, n := range directives {
		c.recorder.IncDirectives(string(kind), n)
	}
}

func documentLabel(o Outcome) metrics.DocumentOutcomeLabel {
	switch o {
	case OutcomeConverted:
		return metrics.DocumentConverted
	case OutcomeSkipped:
		return metrics.DocumentSkipped
	default:
		return metrics.DocumentFailed
	}
}

// ConvertTree converts every Markdown file below root. A failing document
// does not stop the walk; all failures are returned joined.
func (c *Converter) ConvertTree(ctx context.Context, root string) (Summary, error) {
	start := time.Now()
	var summary Summary

	info, err := os.Stat(root)
	if err != nil {
		return summary, ferrors.WrapError(err, ferrors.CategoryNotFound, "source directory not found").
			WithContext("path", root).
			UserAction().
			Build()
	}
	if !info.IsDir() {
		return summary, ferrors.ValidationError("source is not a directory").WithContext("path", root).Build()
	}

	if c.settings.Clean {
		if err := c.CleanOutput(root); err != nil {
			return summary, err
		}
	}

	sources, err := c.Sources(root)
	if err != nil {
		return summary, err
	}

	runID := c.beginRun(ctx, root)
	summary.RunID = runID

	var errs []error
	for _, rel := range sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		res, err := c.ConvertFile(ctx, root, rel)
		switch res.Outcome {
		case OutcomeConverted:
			summary.Converted++
		case OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
		summary.Spans += len(res.Spans)
		if err != nil {
			c.logger.Error("Failed to convert document", logfields.File(rel), logfields.Error(err))
			errs = append(errs, err)
		}
		c.recordDocument(ctx, runID, res, err)
	}

	summary.Duration = time.Since(start)
	c.finishRun(ctx, runID, summary)
	c.logger.Info("Conversion complete",
		slog.Int("converted", summary.Converted),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		logfields.DurationMS(float64(summary.Duration.Microseconds())/1000))
	return summary, errors.Join(errs...)
}

// Sources lists Markdown files below root relative to it, in lexical order.
// Hidden directories and the output directory are not descended into.
func (c *Converter) Sources(root string) ([]string, error) {
	outAbs, _ := filepath.Abs(c.settings.OutputDir)
	var sources []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if abs, _ := filepath.Abs(path); abs == outAbs {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsMarkdown(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		sources = append(sources, rel)
		return nil
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to walk source directory").
			WithContext("path", root).
			Build()
	}
	return sources, nil
}

// CleanOutput removes the output directory. It refuses when the output
// directory contains root.
func (c *Converter) CleanOutput(root string) error {
	outAbs, err := filepath.Abs(c.settings.OutputDir)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "invalid output directory").Build()
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "invalid source directory").Build()
	}
	if rel, err := filepath.Rel(outAbs, rootAbs); err == nil && !strings.HasPrefix(rel, "..") {
		return ferrors.ConfigError(fmt.Sprintf("refusing to clean %s: it contains the source directory", c.settings.OutputDir)).Build()
	}
	if err := os.RemoveAll(outAbs); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to clean output directory").
			WithContext("path", outAbs).
			Build()
	}
	c.logger.Debug("Cleaned output directory", logfields.Path(outAbs))
	return nil
}
