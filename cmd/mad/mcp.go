package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/starford/mad/internal/mcpserver"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the tag tools over MCP on stdin/stdout",
		Action: func(_ context.Context, cmd *cli.Command) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			srv := mcpserver.New(mcpserver.Deps{
				Store:    app.Store,
				Scanner:  app.Scanner,
				Cache:    app.Cache,
				Retag:    app.Retag,
				DirIndex: app.DirIndex,
			})
			return srv.ServeStdio()
		},
	}
}
