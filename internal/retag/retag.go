// Package retag rewrites each note's primary tag so it matches the note's
// location below the tag root.
package retag

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/starford/mad/internal/apperr"
	"github.com/starford/mad/internal/models"
	"github.com/starford/mad/internal/noteservice"
	"github.com/starford/mad/internal/parser"
	"github.com/starford/mad/internal/paths"
)

// DefaultDateFormat is the strftime layout used for alias entries.
const DefaultDateFormat = "%Y-%m-%d"

// Options controls a retag run.
type Options struct {
	NoBackup bool
	NoAlias  bool
}

// Engine recomputes primary tags from paths.
type Engine struct {
	notes      *noteservice.Service
	tagRoot    string
	dateFormat string
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithDateFormat sets the strftime layout of the alias date.
func WithDateFormat(layout string) Option {
	return func(e *Engine) {
		if layout != "" {
			e.dateFormat = layout
		}
	}
}

// WithClock overrides the clock used for alias dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New returns an Engine deriving tags relative to tagRoot.
func New(notes *noteservice.Service, tagRoot string, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		notes:      notes,
		tagRoot:    tagRoot,
		dateFormat: DefaultDateFormat,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DeriveTag returns the tag implied by the location of the note at path:
// the directories between the tag root and the file, joined with "/".
// A note directly under the tag root yields the zero tag.
func (e *Engine) DeriveTag(path string) (models.TagPath, error) {
	root, err := paths.Canonical(e.tagRoot)
	if err != nil {
		return nil, fmt.Errorf("retag: resolve tag root: %w", err)
	}
	abs, err := paths.Canonical(path)
	if err != nil {
		return nil, fmt.Errorf("retag: resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)
	if !paths.Within(root, dir) {
		return nil, fmt.Errorf("retag: %w: %s is not under tag root %s", apperr.ErrOutsideRoot, abs, root)
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return nil, fmt.Errorf("retag: %w", err)
	}
	return models.NewTagPath(paths.Components(rel)...), nil
}

// Run retags target, which may be a single note or a directory.
func (e *Engine) Run(target string, opts Options) (models.Report, error) {
	if !paths.Exists(target) {
		return models.Report{}, fmt.Errorf("retag: %w: %s", apperr.ErrNotFound, target)
	}
	if paths.IsDir(target) {
		return e.Dir(target, opts)
	}
	var r models.Report
	e.tally(&r, target, opts)
	return r, nil
}

// Dir retags every note under dir. Per-note failures are recorded in the
// report and do not stop the batch.
func (e *Engine) Dir(dir string, opts Options) (models.Report, error) {
	var r models.Report
	files, err := e.notes.Files(dir)
	if err != nil {
		return r, fmt.Errorf("retag: %w", err)
	}
	for _, p := range files {
		e.tally(&r, p, opts)
	}
	e.logger.Info("retag: done",
		slog.String("dir", dir),
		slog.Int("updated", r.Updated),
		slog.Int("skipped", r.Skipped),
		slog.Int("errored", r.Errored))
	return r, nil
}

func (e *Engine) tally(r *models.Report, path string, opts Options) {
	updated, err := e.File(path, opts)
	switch {
	case err != nil:
		e.logger.Warn("retag: failed", slog.String("path", path), slog.String("error", err.Error()))
		r.Fail(path, err)
	case updated:
		r.Updated++
	default:
		r.Skipped++
	}
}

// File retags a single note and reports whether it was rewritten.
func (e *Engine) File(path string, opts Options) (bool, error) {
	note, err := e.notes.Load(path)
	if err != nil {
		return false, err
	}
	tag, err := e.DeriveTag(note.Path)
	if err != nil {
		return false, err
	}
	if tag.IsZero() {
		e.logger.Debug("retag: at tag root, skipped", slog.String("path", note.Path))
		return false, nil
	}

	current := parser.PrimaryTag(note.Doc.Body)
	if current.Equal(tag) {
		e.logger.Debug("retag: unchanged", slog.String("path", note.Path))
		return false, nil
	}

	if !current.IsZero() && !opts.NoAlias {
		note.Doc.AppendAlias(strftime.Format(e.dateFormat, e.now()) + " " + current.String())
	}
	note.Doc.Body = parser.ReplacePrimaryTag(note.Doc.Body, tag)

	if err := e.notes.Save(note, !opts.NoBackup); err != nil {
		return false, err
	}
	e.logger.Info("retag: updated",
		slog.String("path", note.Path),
		slog.String("from", current.String()),
		slog.String("to", tag.String()))
	return true, nil
}
