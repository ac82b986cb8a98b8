package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/mathspan/internal/foundation/errors"
	"git.home.luguber.info/inful/mathspan/internal/logfields"
	"git.home.luguber.info/inful/mathspan/internal/metrics"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	ConverterFlags `embed:""`
	Source string `arg:"" name:"source" help:"Markdown file, directory, or - for stdin" default:"docs"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := root.setup(g)
	if err != nil {
		return err
	}
	conv, cleanup, err := newConverter(cfg, r.settings(cfg), metrics.NoopRecorder{}, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := context.Background()

	if r.Source == "-" {
		content, err := io.ReadAll(g.In)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read stdin").Build()
		}
		res, _, err := conv.RenderDocument(content)
		if err != nil {
			return err
		}
		_, err = g.Out.Write(res.HTML)
		return err
	}

	info, err := os.Stat(r.Source)
	if err != nil {
		return ferrors.NotFoundError("source not found").WithContext("path", r.Source).Build()
	}
	if info.IsDir() {
		summary, err := conv.ConvertTree(ctx, r.Source)
		if err != nil {
			return err
		}
		logger.Info("Render finished", logfields.Count(summary.Converted+summary.Skipped))
		return nil
	}

	res, err := conv.ConvertFile(ctx, filepath.Dir(r.Source), filepath.Base(r.Source))
	if err != nil {
		return err
	}
	logger.Info("Render finished", logfields.Output(res.Output), logfields.Outcome(string(res.Outcome)))
	return nil
}
