package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/mad/internal"
)

func main() {
	cmd := &cli.Command{
		Name:  "mad",
		Usage: "Keep note tags and vault locations in sync, across work and documentation trees",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (.toml or .yaml)",
				DefaultText: "$XDG_CONFIG_HOME/magic-documents/config.toml",
				Value:       internal.DefaultConfigPath(),
				Sources:     cli.EnvVars("MAD_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			retagCommand(),
			redirCommand(),
			renameCommand(),
			migrateCommand(),
			whereCommand(),
			cacheCommand(),
			tagsCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
