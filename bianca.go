package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/alienx/bianca/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	app := &cli.App{
		Name:    "bianca",
		Usage:   "Multi-agent assistant service with streaming task results",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				Value:   "bianca.toml",
				EnvVars: []string{"BIANCA_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			cmd.ServeCommand(),
			cmd.ChatCommand(),
			cmd.ConfigCommand(),
			cmd.SendCommand(),
			cmd.TokenCommand(),
			cmd.EnvCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
