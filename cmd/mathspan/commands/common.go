package commands

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mathspan/internal/config"
	"git.home.luguber.info/inful/mathspan/internal/convert"
	ferrors "git.home.luguber.info/inful/mathspan/internal/foundation/errors"
	"git.home.luguber.info/inful/mathspan/internal/history"
	"git.home.luguber.info/inful/mathspan/internal/logfields"
	"git.home.luguber.info/inful/mathspan/internal/metrics"
	"git.home.luguber.info/inful/mathspan/internal/notify"
)

// Global carries process-wide handles into every command.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
	In     io.Reader
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"mathspan.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render  RenderCmd  `cmd:"" help:"Convert Markdown files to HTML pages"`
	Tokens  TokensCmd  `cmd:"" help:"Print the math token stream of a Markdown file"`
	Watch   WatchCmd   `cmd:"" help:"Convert a directory and reconvert it on every change"`
	History HistoryCmd `cmd:"" help:"List recent conversion runs from the history journal"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// LoadConfig reads the configuration file. A missing file at the default
// location yields the built-in defaults.
func (c *CLI) LoadConfig() (*config.Config, error) {
	if _, err := os.Stat(c.Config); errors.Is(err, fs.ErrNotExist) && filepath.Clean(c.Config) == config.DefaultPath {
		slog.Debug("No configuration file; using defaults", logfields.Path(c.Config))
		return config.Default(), nil
	}
	return config.Load(c.Config)
}

// NewLogger builds the configured logger. --verbose forces debug level.
func NewLogger(w io.Writer, cfg config.LoggingConfig, verbose bool) *slog.Logger {
	level := cfg.Level.Slog()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// setup loads configuration and installs the configured logger.
func (c *CLI) setup(g *Global) (*config.Config, *slog.Logger, error) {
	cfg, err := c.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := NewLogger(os.Stderr, cfg.Logging, c.Verbose)
	slog.SetDefault(logger)
	g.Logger = logger
	return cfg, logger, nil
}

// ConverterFlags are shared by commands that write pages.
type ConverterFlags struct {
	Output string `short:"o" help:"Output directory (overrides output.directory)" type:"path"`
	Force  bool   `short:"f" help:"Rewrite pages even when their sources are unchanged"`
	Clean  bool   `help:"Remove the output directory before converting"`
}

func (f ConverterFlags) settings(cfg *config.Config) convert.Settings {
	out := cfg.Output.Directory
	if f.Output != "" {
		out = f.Output
	}
	return convert.Settings{
		Options:   cfg.RenderOptions(),
		GFM:       cfg.Markdown.GFM,
		OutputDir: out,
		Extension: cfg.Output.Extension,
		Clean:     f.Clean || cfg.Output.Clean,
		Force:     f.Force,
	}
}

// newConverter builds a converter with the configured history journal and
// event publisher. The returned cleanup closes them.
func newConverter(cfg *config.Config, settings convert.Settings, rec metrics.Recorder, logger *slog.Logger) (*convert.Converter, func(), error) {
	opts := []convert.Option{convert.WithRecorder(rec), convert.WithLogger(logger)}
	var closers []func()

	if cfg.History.Path != "" {
		store, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open history journal").
				WithContext("path", cfg.History.Path).
				Build()
		}
		opts = append(opts, convert.WithHistory(store))
		closers = append(closers, func() { _ = store.Close() })
	}

	if cfg.Notify.NATSURL != "" {
		pub, err := notify.NewNATSPublisher(cfg.Notify.NATSURL, cfg.Notify.Subject, cfg.Notify.RetryPolicy())
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, err
		}
		opts = append(opts, convert.WithNotifier(pub))
		closers = append(closers, pub.Close)
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return convert.New(settings, opts...), cleanup, nil
}
