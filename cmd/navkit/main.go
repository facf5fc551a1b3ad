package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"

	"github.com/MrSnakeDoc/navkit/cmd/navkit/commands"
	"github.com/MrSnakeDoc/navkit/internal/logger"
	"github.com/MrSnakeDoc/navkit/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("navkit"),
		kong.Description("Navigation model service for documentation sites."),
		kong.Vars{"version": version.Version},
		kong.UsageOnError(),
	)

	log := logger.New(cli.LogLevel, cli.Pretty)
	defer func() { _ = log.Sync() }()

	g := &commands.Global{Logger: log, Out: os.Stdout, Fs: afero.NewOsFs()}
	if err := parser.Run(g); err != nil {
		log.Errorf("❌ navkit %s failed: %v", parser.Command(), err)
		_ = log.Sync()
		os.Exit(1)
	}
}
