package commands

import (
	"context"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	ferrors "git.home.luguber.info/inful/mathspan/internal/foundation/errors"
	"git.home.luguber.info/inful/mathspan/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" help:"Number of runs to list" default:"10"`
	RunID string `name:"run" help:"Show the documents of one run instead"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, _, err := root.setup(g)
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return ferrors.ConfigError("history.path is not configured").Build()
	}

	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open history journal").
			WithContext("path", cfg.History.Path).
			Build()
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	table := tablewriter.NewWriter(g.Out)
	table.SetAutoWrapText(false)
	if h.RunID != "" {
		docs, err := store.Documents(ctx, h.RunID)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read history").Build()
		}
		if len(docs) == 0 {
			return ferrors.NotFoundError("no documents recorded for run").WithContext("run", h.RunID).Build()
		}
		table.SetHeader([]string{"Outcome", "Spans", "Source", "Error"})
		for _, d := range docs {
			table.Append([]string{d.Outcome, strconv.Itoa(d.Spans), d.Source, d.Error})
		}
		table.Render()
		return nil
	}

	runs, err := store.Runs(ctx, h.Limit)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read history").Build()
	}
	table.SetHeader([]string{"Run", "Started", "Converted", "Skipped", "Failed", "Spans", "Source"})
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			r.StartedAt.Format(time.RFC3339),
			strconv.Itoa(r.Converted),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Spans),
			r.Source,
		})
	}
	table.Render()
	return nil
}
