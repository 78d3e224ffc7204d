// Package migrate converts legacy frontmatter tag lists, where each list
// element was one level of a single hierarchy, into one slash-separated tag.
package migrate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/mad/internal/models"
	"github.com/starford/mad/internal/noteservice"
	"github.com/starford/mad/internal/parser"
)

// Options controls a migration run.
type Options struct {
	NoBackup bool
}

// Migrator rewrites legacy tag lists.
type Migrator struct {
	notes  *noteservice.Service
	logger *slog.Logger
}

// New returns a Migrator.
func New(notes *noteservice.Service, logger *slog.Logger) *Migrator {
	return &Migrator{notes: notes, logger: logger}
}

// Change describes one converted tag list.
type Change struct {
	Key string
	Old []string
	New models.TagPath
}

func (c Change) String() string {
	return fmt.Sprintf("%s: [%s] -> [%s]", c.Key, strings.Join(c.Old, ", "), c.New)
}

// Convert rewrites the first tag key holding a legacy list, e.g.
// [padre, hijo] becomes [padre/hijo]. A single element that already contains
// "/" is left alone, as is any list that yields fewer than two segments.
func Convert(doc *parser.Document) (Change, bool) {
	for _, key := range parser.TagKeys {
		values, ok := doc.TagSequence(key)
		if !ok || len(values) == 0 {
			continue
		}
		if len(values) == 1 && strings.Contains(values[0], "/") {
			continue
		}
		tag := models.NewTagPath(values...)
		if len(tag) < 2 {
			continue
		}
		doc.SetTags(key, []models.TagPath{tag})
		return Change{Key: key, Old: values, New: tag}, true
	}
	return Change{}, false
}

// File migrates one note and reports whether it was rewritten.
func (m *Migrator) File(path string, opts Options) (bool, error) {
	note, err := m.notes.Load(path)
	if err != nil {
		return false, err
	}
	change, ok := Convert(note.Doc)
	if !ok {
		return false, nil
	}
	if err := m.notes.Save(note, !opts.NoBackup); err != nil {
		return false, err
	}
	m.logger.Info("migrate: converted", slog.String("path", note.Path), slog.String("change", change.String()))
	return true, nil
}

// Run migrates every note under dir.
func (m *Migrator) Run(dir string, opts Options) (models.Report, error) {
	var r models.Report
	files, err := m.notes.Files(dir)
	if err != nil {
		return r, fmt.Errorf("migrate: %w", err)
	}
	for _, p := range files {
		converted, err := m.File(p, opts)
		switch {
		case err != nil:
			m.logger.Warn("migrate: failed", slog.String("path", p), slog.String("error", err.Error()))
			r.Fail(p, err)
		case converted:
			r.Updated++
		default:
			r.Skipped++
		}
	}
	return r, nil
}
