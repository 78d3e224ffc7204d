// Package internal wires configuration, storage and the tag engines into
// one application.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/mad/internal/dirmap"
	"github.com/starford/mad/internal/index"
	"github.com/starford/mad/internal/migrate"
	"github.com/starford/mad/internal/models"
	"github.com/starford/mad/internal/noteservice"
	"github.com/starford/mad/internal/paths"
	"github.com/starford/mad/internal/redir"
	"github.com/starford/mad/internal/rename"
	"github.com/starford/mad/internal/retag"
	"github.com/starford/mad/internal/scan"
	"github.com/starford/mad/internal/storage"
	"github.com/starford/mad/internal/tagrename"
)

// App holds the services built from one configuration.
type App struct {
	Config  *Config
	Logger  *slog.Logger
	Store   *storage.FS
	Notes   *noteservice.Service
	Scanner *scan.Scanner
	Cache   *index.Cache
	Retag   *retag.Engine
	Redir   *redir.Engine
	Migrate *migrate.Migrator
	Tags    *tagrename.Renamer
}

// New builds an App from the given options. A config is required.
func New(opts ...Option) (*App, error) {
	app := &application{out: os.Stderr}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(app.out, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}

	logger.Debug("Configuration loaded",
		slog.String("vault", cfg.Vault),
		slog.String("tag_root", cfg.TagRoot),
		slog.String("notes_dir", cfg.NotesDir),
		slog.Int("dir_mappings", len(cfg.DirMappings)),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if !paths.IsDir(cfg.Vault) {
		return nil, fmt.Errorf("vault %s is not a directory", cfg.Vault)
	}

	store, err := storage.NewFS(cfg.Vault,
		storage.WithBackupDir(cfg.BackupDir),
		storage.WithExcludedDirs(cfg.TemplatesPath()))
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	notes := noteservice.NewService(store)
	scanner := scan.New(store, logger)

	cacheDir, err := cfg.CachePath()
	if err != nil {
		return nil, err
	}
	cache, err := index.New(cacheDir, store.Root(), scanner, logger)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Notes:   notes,
		Scanner: scanner,
		Cache:   cache,
		Retag:   retag.New(notes, cfg.TagRootPath(), logger, retag.WithDateFormat(cfg.Date)),
		Redir:   redir.New(notes, cfg.NotesPath(), app.chooser, logger),
		Migrate: migrate.New(notes, logger),
		Tags:    tagrename.New(notes, scanner, logger),
	}, nil
}

// DirIndex resolves the configured dir mappings for one operation.
func (a *App) DirIndex() (*dirmap.Index, error) {
	return dirmap.Build(a.Config.TagRootPath(), a.Config.DirMappings, a.Logger)
}

// Rename renames dir and its mapped counterpart to newName.
func (a *App) Rename(dir, newName string, opts rename.Options) (*rename.Result, error) {
	idx, err := a.DirIndex()
	if err != nil {
		return nil, err
	}
	return rename.New(idx, a.Retag, a.Logger).Rename(dir, newName, opts)
}

// RenameTag renames a frontmatter tag across the vault, then rebuilds both
// tag caches so listings reflect the new name.
func (a *App) RenameTag(from, to models.TagPath, opts tagrename.Options) (models.Report, error) {
	r, err := a.Tags.Run(from, to, opts)
	if err != nil {
		return r, err
	}
	if err := a.Cache.Rebuild(index.KindAll); err != nil {
		return r, fmt.Errorf("rebuild cache: %w", err)
	}
	return r, nil
}

// Where resolves dir, from either tree, to its mapped counterpart.
func (a *App) Where(dir string) (dirmap.Location, error) {
	idx, err := a.DirIndex()
	if err != nil {
		return dirmap.Location{}, err
	}
	return idx.Locate(dir)
}

// Watch rebuilds the caches on vault changes until ctx is cancelled or the
// process receives SIGINT or SIGTERM.
func (a *App) Watch(ctx context.Context, cb index.RebuildCallback) error {
	if err := a.Cache.Rebuild(index.KindAll); err != nil {
		a.Logger.Warn("initial cache rebuild failed", slog.String("error", err.Error()))
	}

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stop := context.WithCancel(gCtx)
	defer stop()

	g.Go(func() error {
		defer stop()
		return index.Watch(watchCtx, a.Cache, a.Store.Root(), a.Config.App.Debounce(), a.Logger, cb)
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			a.Logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-watchCtx.Done():
		}
		stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		a.Logger.Error("Watcher error", slog.String("error", err.Error()))
		return err
	}
	a.Logger.Info("Watcher stopped")
	return nil
}
