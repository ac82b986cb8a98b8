package commands

import (
	"context"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/mathspan/internal/logfields"
	"git.home.luguber.info/inful/mathspan/internal/metrics"
	"git.home.luguber.info/inful/mathspan/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	ConverterFlags `embed:""`
	Source  string `arg:"" name:"source" help:"Directory to watch" default:"docs"`
	Metrics bool   `help:"Serve Prometheus metrics (overrides metrics.enabled)"`
	Listen  string `help:"Metrics listen address (overrides metrics.listen)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := root.setup(g)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rec metrics.Recorder = metrics.NoopRecorder{}
	if w.Metrics || cfg.Metrics.Enabled {
		listen := cfg.Metrics.Listen
		if w.Listen != "" {
			listen = w.Listen
		}
		reg := prom.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec = metrics.NewPrometheusRecorder(reg)

		srv, err := watch.ListenMetrics(listen, metrics.HTTPHandler(reg))
		if err != nil {
			return err
		}
		go func() {
			if err := srv.Serve(ctx); err != nil {
				logger.Error("Metrics server stopped", logfields.Error(err))
			}
		}()
	}

	// Only the initial pass may clean; rebuilds rely on unchanged pages being skipped.
	settings := w.settings(cfg)
	clean := settings.Clean
	settings.Clean = false
	conv, cleanup, err := newConverter(cfg, settings, rec, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if clean {
		if err := conv.CleanOutput(w.Source); err != nil {
			return err
		}
	}
	if _, err := conv.ConvertTree(ctx, w.Source); err != nil {
		logger.Warn("Initial conversion had failures", logfields.Error(err))
	}

	watcher := watch.New(w.Source, func(ctx context.Context) error {
		_, err := conv.ConvertTree(ctx, w.Source)
		return err
	},
		watch.WithDebounce(cfg.Watch.Debounce),
		watch.WithRescan(cfg.Watch.Rescan),
		watch.WithLogger(logger),
		watch.WithIgnoredDir(settings.OutputDir),
	)
	return watcher.Run(ctx)
}
