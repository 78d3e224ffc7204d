package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/starford/mad/internal/index"
	"github.com/starford/mad/internal/models"
	"github.com/starford/mad/internal/scan"
	"github.com/starford/mad/internal/tagrename"
	"github.com/starford/mad/internal/ui"
)

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the tag caches",
		Commands: []*cli.Command{
			{
				Name:  "rebuild",
				Usage: "Scan the vault and rewrite the caches",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dir-tags", Usage: "Only rebuild the primary tag cache"},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					app, err := loadApp(cmd)
					if err != nil {
						return err
					}
					kind := index.KindAll
					if cmd.Bool("dir-tags") {
						kind = index.KindDirTags
					}
					if err := app.Cache.Rebuild(kind); err != nil {
						return err
					}
					fmt.Fprintf(os.Stdout, "%s caches rebuilt in %s\n", ui.SymbolOK, ui.Accent.Render(app.Cache.Dir()))
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "Show when each cache was last built",
				Action: func(_ context.Context, cmd *cli.Command) error {
					app, err := loadApp(cmd)
					if err != nil {
						return err
					}
					fmt.Fprintln(os.Stdout, ui.Muted.Render(app.Cache.Dir()))
					for _, st := range app.Cache.Status() {
						if !st.Exists {
							fmt.Fprintf(os.Stdout, "%s %s missing\n", ui.SymbolSkip, st.File)
							continue
						}
						fmt.Fprintf(os.Stdout, "%s %s v%d, %d tags, built %s\n",
							ui.SymbolOK, ui.Accent.Render(st.File), st.Version, st.Tags, humanize.Time(st.Built))
					}
					return nil
				},
			},
			{
				Name:  "watch",
				Usage: "Rebuild the caches whenever notes change",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := loadApp(cmd)
					if err != nil {
						return err
					}
					return app.Watch(ctx, func(changed []string, err error) {
						if err != nil {
							return
						}
						fmt.Fprintf(os.Stdout, "%s rebuilt after %d changes\n", ui.SymbolOK, len(changed))
					})
				},
			},
		},
	}
}

func primaryFlag() cli.Flag {
	return &cli.BoolFlag{Name: "primary", Usage: "Use primary tags only"}
}

func tagsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "Browse tags",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List every tag",
				Flags: []cli.Flag{primaryFlag()},
				Action: func(_ context.Context, cmd *cli.Command) error {
					root, err := loadTree(cmd)
					if err != nil {
						return err
					}
					for _, p := range root.Paths() {
						fmt.Fprintln(os.Stdout, p)
					}
					return nil
				},
			},
			{
				Name:  "tree",
				Usage: "Print the tag hierarchy",
				Flags: []cli.Flag{primaryFlag()},
				Action: func(_ context.Context, cmd *cli.Command) error {
					root, err := loadTree(cmd)
					if err != nil {
						return err
					}
					fmt.Fprint(os.Stdout, ui.RenderTree("tags", root))
					return nil
				},
			},
			{
				Name:      "find",
				Usage:     "List notes tagged TAG or any tag below it",
				ArgsUsage: "TAG",
				Action: func(_ context.Context, cmd *cli.Command) error {
					tag, err := tagArg(cmd)
					if err != nil {
						return err
					}
					app, err := loadApp(cmd)
					if err != nil {
						return err
					}
					items, err := app.Scanner.Scan()
					if err != nil {
						return err
					}
					for _, item := range scan.FindByTag(items, tag) {
						rel, err := filepath.Rel(app.Store.Root(), item.Path)
						if err != nil {
							rel = item.Path
						}
						fmt.Fprintln(os.Stdout, rel)
					}
					return nil
				},
			},
			{
				Name:      "dirs",
				Usage:     "List directories holding notes whose primary tag is TAG",
				ArgsUsage: "TAG",
				Action: func(_ context.Context, cmd *cli.Command) error {
					tag, err := tagArg(cmd)
					if err != nil {
						return err
					}
					app, err := loadApp(cmd)
					if err != nil {
						return err
					}
					p, err := app.Cache.LoadPrimary()
					if err != nil {
						return err
					}
					for _, d := range p.Dirs(tag) {
						if d == "" {
							d = "."
						}
						fmt.Fprintln(os.Stdout, d)
					}
					return nil
				},
			},
			{
				Name:      "rename",
				Usage:     "Rename a frontmatter tag in every note that carries it",
				ArgsUsage: "OLD NEW",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}, Usage: "Also rename the tags below OLD, keeping their suffix"},
					noBackupFlag(),
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("%s: expected OLD and NEW tags", cmd.Name)
					}
					from := models.ParseTagPath(strings.TrimPrefix(cmd.Args().Get(0), "#"))
					to := models.ParseTagPath(strings.TrimPrefix(cmd.Args().Get(1), "#"))
					if err := tagrename.Validate(from, to); err != nil {
						return err
					}
					app, err := loadApp(cmd)
					if err != nil {
						return err
					}
					r, err := app.RenameTag(from, to, tagrename.Options{
						Recursive: cmd.Bool("recursive"),
						NoBackup:  cmd.Bool("no-bak"),
					})
					if err != nil {
						return err
					}
					return finish("renamed", r)
				},
			},
		},
	}
}

func loadTree(cmd *cli.Command) (*models.TagNode, error) {
	app, err := loadApp(cmd)
	if err != nil {
		return nil, err
	}
	if cmd.Bool("primary") {
		p, err := app.Cache.LoadPrimary()
		if err != nil {
			return nil, err
		}
		return p.Root, nil
	}
	return app.Cache.LoadTags()
}

func tagArg(cmd *cli.Command) (models.TagPath, error) {
	tag := models.ParseTagPath(strings.TrimPrefix(cmd.Args().First(), "#"))
	if tag.IsZero() {
		return nil, fmt.Errorf("%s: expected a TAG argument", cmd.Name)
	}
	return tag, nil
}
