// Package tagrename renames a frontmatter tag in every note that carries it.
package tagrename

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/starford/mad/internal/apperr"
	"github.com/starford/mad/internal/index"
	"github.com/starford/mad/internal/models"
	"github.com/starford/mad/internal/noteservice"
	"github.com/starford/mad/internal/parser"
)

// Options controls a rename run.
type Options struct {
	// Recursive also renames tags below the old one, keeping their suffix.
	Recursive bool
	NoBackup  bool
}

// Renamer rewrites frontmatter tag lists.
type Renamer struct {
	notes   *noteservice.Service
	scanner index.Scanner
	logger  *slog.Logger
}

// New returns a Renamer. scanner selects the candidate notes.
func New(notes *noteservice.Service, scanner index.Scanner, logger *slog.Logger) *Renamer {
	return &Renamer{notes: notes, scanner: scanner, logger: logger}
}

// Change describes one rewritten tag list.
type Change struct {
	Key string
	Old []string
	New []models.TagPath
}

// Rewrite renames from to to in the first tag key of doc. Each list entry is
// matched on its own: exactly, or by prefix when recursive is set. Untouched
// entries are kept in order and duplicates produced by the rename collapse.
func Rewrite(doc *parser.Document, from, to models.TagPath, recursive bool) (Change, bool) {
	key, values := doc.TagList()
	if key == "" {
		return Change{}, false
	}
	tags := make([]models.TagPath, 0, len(values))
	changed := false
	for _, v := range values {
		tag := models.ParseTagPath(v)
		if next, ok := renamed(tag, from, to, recursive); ok {
			tag = next
			changed = true
		}
		tags = append(tags, tag)
	}
	if !changed {
		return Change{}, false
	}
	tags = models.DedupeTags(tags)
	doc.SetTags(key, tags)
	return Change{Key: key, Old: values, New: tags}, true
}

func renamed(tag, from, to models.TagPath, recursive bool) (models.TagPath, bool) {
	switch {
	case tag.Equal(from):
		return slices.Clone(to), true
	case recursive && tag.HasPrefix(from):
		return append(slices.Clone(to), tag[len(from):]...), true
	}
	return nil, false
}

// Validate rejects empty tags, a no-op rename and targets that cannot name a
// directory.
func Validate(from, to models.TagPath) error {
	switch {
	case from.IsZero() || to.IsZero():
		return fmt.Errorf("tagrename: %w: empty tag", apperr.ErrInvalidTag)
	case from.Equal(to):
		return fmt.Errorf("tagrename: %w: %s renamed to itself", apperr.ErrInvalidTag, from)
	case !to.IsPathSafe():
		return fmt.Errorf("tagrename: %w: %q", apperr.ErrInvalidTag, to.String())
	}
	return nil
}

// File renames the tag in one note and reports whether it was rewritten.
func (r *Renamer) File(path string, from, to models.TagPath, opts Options) (bool, error) {
	note, err := r.notes.Load(path)
	if err != nil {
		return false, err
	}
	change, ok := Rewrite(note.Doc, from, to, opts.Recursive)
	if !ok {
		return false, nil
	}
	if err := r.notes.Save(note, !opts.NoBackup); err != nil {
		return false, err
	}
	r.logger.Info("tagrename: rewritten",
		slog.String("path", note.Path),
		slog.String("key", change.Key),
		slog.Int("tags", len(change.New)))
	return true, nil
}

// Run renames from to to across the vault. Only notes whose tags include
// from (or a tag below it, when recursive) are opened; those that carry it
// only inline or as their primary marker count as skipped.
func (r *Renamer) Run(from, to models.TagPath, opts Options) (models.Report, error) {
	var rep models.Report
	if err := Validate(from, to); err != nil {
		return rep, err
	}
	items, err := r.scanner.Scan()
	if err != nil {
		return rep, fmt.Errorf("tagrename: %w", err)
	}
	for _, item := range items {
		if !carries(item.SecondaryTags, from, opts.Recursive) {
			continue
		}
		updated, err := r.File(item.Path, from, to, opts)
		switch {
		case err != nil:
			r.logger.Warn("tagrename: failed", slog.String("path", item.Path), slog.String("error", err.Error()))
			rep.Fail(item.Path, err)
		case updated:
			rep.Updated++
		default:
			rep.Skipped++
		}
	}
	r.logger.Info("tagrename: done",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.Int("updated", rep.Updated),
		slog.Int("skipped", rep.Skipped),
		slog.Int("errored", rep.Errored))
	return rep, nil
}

func carries(tags []models.TagPath, from models.TagPath, recursive bool) bool {
	for _, t := range tags {
		if t.Equal(from) || recursive && t.HasPrefix(from) {
			return true
		}
	}
	return false
}
