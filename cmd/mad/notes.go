package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/mad/internal/migrate"
	"github.com/starford/mad/internal/redir"
	"github.com/starford/mad/internal/rename"
	"github.com/starford/mad/internal/retag"
	"github.com/starford/mad/internal/ui"
)

func noBackupFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "no-bak",
		Usage: "Do not copy notes to the backup directory before rewriting them",
	}
}

func retagCommand() *cli.Command {
	return &cli.Command{
		Name:      "retag",
		Usage:     "Rewrite primary tags to match each note's location under the tag root",
		ArgsUsage: "[FILE_OR_DIR]",
		Flags: []cli.Flag{
			noBackupFlag(),
			&cli.BoolFlag{Name: "no-alias", Usage: "Do not record the old tag in aliases"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			target, err := targetArg(cmd)
			if err != nil {
				return err
			}
			r, err := app.Retag.Run(target, retag.Options{
				NoBackup: cmd.Bool("no-bak"),
				NoAlias:  cmd.Bool("no-alias"),
			})
			if err != nil {
				return err
			}
			return finish("updated", r)
		},
	}
}

func redirCommand() *cli.Command {
	return &cli.Command{
		Name:      "redir",
		Usage:     "Move notes into the notes directory matching their tag",
		ArgsUsage: "[FILE_OR_DIR]",
		Flags:     []cli.Flag{noBackupFlag()},
		Action: func(_ context.Context, cmd *cli.Command) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			target, err := targetArg(cmd)
			if err != nil {
				return err
			}
			r, err := app.Redir.Run(target, redir.Options{NoBackup: cmd.Bool("no-bak")})
			if err != nil {
				return err
			}
			return finish("moved", r)
		},
	}
}

func renameCommand() *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "Rename the current directory and its mapped counterpart, then retag",
		ArgsUsage: "NEW_NAME",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "Directory to rename instead of the working directory"},
			&cli.BoolFlag{Name: "no-retag", Usage: "Skip the retag of the renamed documentation directory"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("rename: expected exactly one NEW_NAME argument")
			}
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			dir := cmd.String("dir")
			if dir == "" {
				if dir, err = os.Getwd(); err != nil {
					return err
				}
			}

			res, err := app.Rename(dir, cmd.Args().First(), rename.Options{NoRetag: cmd.Bool("no-retag")})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s work: %s -> %s\n", ui.SymbolOK, res.OldWork, ui.Accent.Render(res.NewWork))
			fmt.Fprintf(os.Stdout, "%s doc:  %s -> %s\n", ui.SymbolOK, res.OldDoc, ui.Accent.Render(res.NewDoc))
			if res.Retag != nil {
				return finish("retagged", *res.Retag)
			}
			return nil
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Convert legacy [a, b] frontmatter tag lists into a single a/b tag",
		Flags: []cli.Flag{noBackupFlag()},
		Action: func(_ context.Context, cmd *cli.Command) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			r, err := app.Migrate.Run(app.Store.Root(), migrate.Options{NoBackup: cmd.Bool("no-bak")})
			if err != nil {
				return err
			}
			return finish("converted", r)
		},
	}
}

func whereCommand() *cli.Command {
	return &cli.Command{
		Name:      "where",
		Usage:     "Show the mapped counterpart of a work or documentation directory",
		ArgsUsage: "[DIR]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			dir, err := targetArg(cmd)
			if err != nil {
				return err
			}
			loc, err := app.Where(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s %s\n", ui.Muted.Render("work:"), loc.Match.WorkDir)
			fmt.Fprintf(os.Stdout, "%s %s\n", ui.Muted.Render("doc: "), loc.Match.DocDir)
			fmt.Fprintf(os.Stdout, "%s %s\n", ui.Muted.Render("tag: "), ui.Accent.Render(loc.Tag.String()))
			return nil
		},
	}
}
