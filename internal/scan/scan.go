// Package scan classifies the tags of every note in a directory tree.
package scan

import (
	"errors"
	"log/slog"

	"github.com/starford/mad/internal/apperr"
	"github.com/starford/mad/internal/models"
	"github.com/starford/mad/internal/parser"
	"github.com/starford/mad/internal/storage"
)

// Scanner produces ScanItems from the notes under a vault.
type Scanner struct {
	store  storage.Provider
	logger *slog.Logger
}

// New returns a Scanner over store.
func New(store storage.Provider, logger *slog.Logger) *Scanner {
	return &Scanner{store: store, logger: logger}
}

// Scan classifies every note below the vault root.
func (s *Scanner) Scan() ([]models.ScanItem, error) {
	return s.ScanDir(s.store.Root())
}

// ScanDir classifies every note below dir. Unreadable files are logged and
// skipped; malformed frontmatter yields an item with no tags and a warning.
func (s *Scanner) ScanDir(dir string) ([]models.ScanItem, error) {
	files, err := s.store.List(dir)
	if err != nil {
		return nil, err
	}
	items := make([]models.ScanItem, 0, len(files))
	for _, p := range files {
		data, err := s.store.Read(p)
		if err != nil {
			s.logger.Warn("scan: read failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		primary, secondary, err := parser.Classify(data)
		if err != nil {
			if !errors.Is(err, apperr.ErrMalformedFrontmatter) {
				return nil, err
			}
			s.logger.Warn("scan: malformed frontmatter, no tags detected",
				slog.String("path", p), slog.String("error", err.Error()))
		}
		items = append(items, models.ScanItem{
			Path:          p,
			PrimaryTag:    primary,
			SecondaryTags: secondary,
		})
	}
	return items, nil
}

// FindByTag returns the items carrying a secondary tag equal to or below tag.
func FindByTag(items []models.ScanItem, tag models.TagPath) []models.ScanItem {
	var out []models.ScanItem
	for _, item := range items {
		for _, t := range item.SecondaryTags {
			if t.HasPrefix(tag) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
