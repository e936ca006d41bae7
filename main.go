// Command mdtrans translates Markdown documents with DeepL while keeping
// their structure intact.
package main

import (
	"github.com/alecthomas/kong"

	"github.com/gerunddev/mdtrans/internal/commands"
	"github.com/gerunddev/mdtrans/internal/config"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("mdtrans"),
		kong.Description("Translate Markdown documents with DeepL, preserving structure.\n\nConfig file: "+config.ConfigPath()+"\nState file:  "+config.StateFilePath()),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
