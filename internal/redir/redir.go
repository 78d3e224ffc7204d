// Package redir moves notes into the directory implied by their tag.
package redir

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/starford/mad/internal/apperr"
	"github.com/starford/mad/internal/models"
	"github.com/starford/mad/internal/noteservice"
	"github.com/starford/mad/internal/parser"
	"github.com/starford/mad/internal/paths"
)

// Chooser picks one tag when a note declares several and none is primary.
// Returning ok=false declines, leaving the note where it is.
type Chooser interface {
	Choose(path string, tags []models.TagPath) (tag models.TagPath, ok bool, err error)
}

// Options controls a redir run.
type Options struct {
	NoBackup bool
}

// Engine relocates notes under the notes root.
type Engine struct {
	notes     *noteservice.Service
	notesRoot string
	chooser   Chooser
	logger    *slog.Logger
}

// New returns an Engine. chooser may be nil, in which case ambiguous notes
// are skipped.
func New(notes *noteservice.Service, notesRoot string, chooser Chooser, logger *slog.Logger) *Engine {
	return &Engine{notes: notes, notesRoot: notesRoot, chooser: chooser, logger: logger}
}

// Destination returns the directory a note tagged tag belongs in. Tags with
// a "." or ".." segment are rejected so a move never leaves the notes root.
func (e *Engine) Destination(tag models.TagPath) (string, error) {
	if tag.IsZero() || !tag.IsPathSafe() {
		return "", fmt.Errorf("redir: %w: %q", apperr.ErrInvalidTag, tag.String())
	}
	return filepath.Join(append([]string{e.notesRoot}, tag...)...), nil
}

// SelectTag picks the tag that decides the note's location: the primary tag,
// else the only frontmatter tag, else the chooser's pick.
func (e *Engine) SelectTag(note *noteservice.Note) (models.TagPath, bool, error) {
	if tag := parser.PrimaryTag(note.Doc.Body); !tag.IsZero() {
		return tag, true, nil
	}
	tags := note.Doc.FrontmatterTags()
	switch {
	case len(tags) == 0:
		return nil, false, nil
	case len(tags) == 1:
		return tags[0], true, nil
	case e.chooser == nil:
		e.logger.Info("redir: several tags and no chooser, skipped", slog.String("path", note.Path))
		return nil, false, nil
	}
	return e.chooser.Choose(note.Path, tags)
}

// Run redirects target, which may be a single note or a directory.
func (e *Engine) Run(target string, opts Options) (models.Report, error) {
	if !paths.Exists(target) {
		return models.Report{}, fmt.Errorf("redir: %w: %s", apperr.ErrNotFound, target)
	}
	if paths.IsDir(target) {
		return e.Dir(target, opts)
	}
	var r models.Report
	e.tally(&r, target, opts)
	return r, nil
}

// Dir redirects every note found under dir. The file list is collected
// before anything moves so a note is visited at most once.
func (e *Engine) Dir(dir string, opts Options) (models.Report, error) {
	var r models.Report
	files, err := e.notes.Files(dir)
	if err != nil {
		return r, fmt.Errorf("redir: %w", err)
	}
	for _, p := range files {
		e.tally(&r, p, opts)
	}
	e.logger.Info("redir: done",
		slog.String("dir", dir),
		slog.Int("moved", r.Updated),
		slog.Int("skipped", r.Skipped),
		slog.Int("errored", r.Errored))
	return r, nil
}

func (e *Engine) tally(r *models.Report, path string, opts Options) {
	dest, err := e.File(path, opts)
	switch {
	case err != nil:
		e.logger.Warn("redir: failed", slog.String("path", path), slog.String("error", err.Error()))
		r.Fail(path, err)
	case dest != "":
		r.Updated++
	default:
		r.Skipped++
	}
}

// File moves one note to its tag directory and returns the new path, or ""
// when the note stays put.
func (e *Engine) File(path string, opts Options) (string, error) {
	note, err := e.notes.Load(path)
	if err != nil {
		return "", err
	}
	tag, ok, err := e.SelectTag(note)
	if err != nil {
		return "", fmt.Errorf("redir: choose tag for %s: %w", note.Path, err)
	}
	if !ok {
		e.logger.Debug("redir: no tag selected", slog.String("path", note.Path))
		return "", nil
	}

	dest, err := e.Destination(tag)
	if err != nil {
		return "", err
	}
	destDir, err := paths.Canonical(dest)
	if err != nil {
		return "", fmt.Errorf("redir: resolve destination: %w", err)
	}
	if filepath.Dir(note.Path) == destDir {
		e.logger.Debug("redir: already correct", slog.String("path", note.Path))
		return "", nil
	}

	moved, err := e.notes.Move(note, destDir, !opts.NoBackup)
	if err != nil {
		return "", err
	}
	e.logger.Info("redir: moved", slog.String("from", path), slog.String("to", moved))
	return moved, nil
}
