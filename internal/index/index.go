// Package index persists the tag trees derived from a vault scan. The caches
// are read accelerators for browsing only; they are rebuilt explicitly and
// never consulted when notes are rewritten or moved.
package index

import "github.com/starford/mad/internal/models"

// TagIndex defines the cache operations consumers depend on.
type TagIndex interface {
	LoadTags() (*models.TagNode, error)
	UpdateTags() (*models.TagNode, error)
	LoadPrimary() (*PrimaryTags, error)
	UpdatePrimary() (*PrimaryTags, error)
	Rebuild(kind Kind) error
}

// Scanner produces a fresh classification of the whole vault.
type Scanner interface {
	Scan() ([]models.ScanItem, error)
}

// Verify *Cache satisfies TagIndex at compile time.
var _ TagIndex = (*Cache)(nil)
