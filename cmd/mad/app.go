package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/mad/internal"
	"github.com/starford/mad/internal/models"
	"github.com/starford/mad/internal/ui"
	pkgconfig "github.com/starford/mad/pkg/config"
)

// loadApp reads the config named by --config and builds the application.
func loadApp(cmd *cli.Command) (*internal.App, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	app, err := internal.New(
		internal.WithConfig(cfg),
		internal.WithChooser(ui.NewPromptChooser(os.Stdin, os.Stdout)),
	)
	if err != nil {
		return nil, fmt.Errorf("app init error: %w", err)
	}
	return app, nil
}

// targetArg returns the first argument or the working directory.
func targetArg(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() > 0 {
		return cmd.Args().First(), nil
	}
	return os.Getwd()
}

// finish prints the report and turns per-note failures into a non-zero exit.
func finish(verb string, r models.Report) error {
	ui.PrintReport(os.Stdout, verb, r)
	if r.Errored > 0 {
		return fmt.Errorf("%d notes failed", r.Errored)
	}
	return nil
}
