package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mathspan/cmd/mathspan/commands"
	ferrors "git.home.luguber.info/inful/mathspan/internal/foundation/errors"
	"git.home.luguber.info/inful/mathspan/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("mathspan"),
		kong.Description("Render Markdown with $inline$ and $$block$$ math spans to HTML."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Logger: slog.Default(), Out: os.Stdout, In: os.Stdin}
	if err := parser.Run(global, cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
