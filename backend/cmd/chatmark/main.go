package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("chatmark"),
		kong.Description("Render chat Markdown to HTML."),
		kong.UsageOnError(),
	)
	global := &Global{Out: os.Stdout, In: os.Stdin}
	if err := ctx.Run(global, &cli); err != nil {
		slog.Error("command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}
