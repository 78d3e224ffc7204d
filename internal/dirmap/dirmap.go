// Package dirmap relates directories of the work trees to their counterparts
// in the documentation tree through the configured mapping table.
package dirmap

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/mad/internal/apperr"
	"github.com/starford/mad/internal/models"
	"github.com/starford/mad/internal/paths"
)

// Direction tells which tree a directory belongs to.
type Direction int

const (
	Unmapped Direction = iota
	FromWork
	FromDoc
)

func (d Direction) String() string {
	switch d {
	case FromWork:
		return "work"
	case FromDoc:
		return "doc"
	default:
		return "unmapped"
	}
}

// Mapping is one work-prefix to doc-subpath pair.
type Mapping struct {
	WorkPrefix string // canonical absolute path
	DocSubpath string // slash-separated, relative to the tag root; "" is the tag root itself

	docParts []string
}

// DocDir is the documentation directory the work prefix maps to.
func (m Mapping) DocDir(tagRoot string) string {
	return filepath.Join(append([]string{tagRoot}, m.docParts...)...)
}

// Match is the result of resolving a directory against the index.
type Match struct {
	Mapping Mapping
	WorkDir string
	DocDir  string
	// Rel is the slash-separated suffix below the matched prefix.
	Rel string
}

// Index is the mapping table resolved once for an operation: work prefixes
// canonicalized and ordered so the longest prefix is tried first on both sides.
type Index struct {
	tagRoot string
	byWork  []Mapping
	byDoc   []Mapping
}

// Build canonicalizes tagRoot and every work prefix of table. Prefixes whose
// directory does not exist are skipped.
func Build(tagRoot string, table map[string]string, logger *slog.Logger) (*Index, error) {
	root, err := paths.Canonical(tagRoot)
	if err != nil {
		return nil, fmt.Errorf("dirmap: resolve tag root: %w", err)
	}
	idx := &Index{tagRoot: root}

	for work, doc := range table {
		if !paths.IsDir(work) {
			logger.Debug("dirmap: skipping missing work dir", slog.String("path", work))
			continue
		}
		canon, err := paths.Canonical(work)
		if err != nil {
			logger.Warn("dirmap: resolve work dir", slog.String("path", work), slog.String("error", err.Error()))
			continue
		}
		parts := paths.Components(filepath.FromSlash(doc))
		idx.byWork = append(idx.byWork, Mapping{
			WorkPrefix: canon,
			DocSubpath: strings.Join(parts, "/"),
			docParts:   parts,
		})
	}

	idx.byDoc = append([]Mapping(nil), idx.byWork...)
	sort.SliceStable(idx.byWork, func(i, j int) bool {
		a, b := idx.byWork[i].WorkPrefix, idx.byWork[j].WorkPrefix
		if na, nb := len(paths.Components(a)), len(paths.Components(b)); na != nb {
			return na > nb
		}
		return a < b
	})
	sort.SliceStable(idx.byDoc, func(i, j int) bool {
		a, b := idx.byDoc[i], idx.byDoc[j]
		if len(a.docParts) != len(b.docParts) {
			return len(a.docParts) > len(b.docParts)
		}
		return a.WorkPrefix < b.WorkPrefix
	})
	return idx, nil
}

// TagRoot returns the canonical documentation tree root.
func (x *Index) TagRoot() string {
	return x.tagRoot
}

// Mappings returns the usable mappings, longest work prefix first.
func (x *Index) Mappings() []Mapping {
	return x.byWork
}

// Direction reports which side dir lies on. The documentation tree wins
// when a work prefix happens to live inside it.
func (x *Index) Direction(dir string) Direction {
	abs, err := paths.Canonical(dir)
	if err != nil {
		return Unmapped
	}
	if paths.Within(x.tagRoot, abs) {
		return FromDoc
	}
	for _, m := range x.byWork {
		if paths.Within(m.WorkPrefix, abs) {
			return FromWork
		}
	}
	return Unmapped
}

// ResolveWork finds the longest work prefix containing dir and the matching
// documentation directory.
func (x *Index) ResolveWork(dir string) (Match, error) {
	abs, err := paths.Canonical(dir)
	if err != nil {
		return Match{}, fmt.Errorf("dirmap: resolve %s: %w", dir, err)
	}
	for _, m := range x.byWork {
		if !paths.Within(m.WorkPrefix, abs) {
			continue
		}
		rel, err := filepath.Rel(m.WorkPrefix, abs)
		if err != nil {
			return Match{}, fmt.Errorf("dirmap: %w", err)
		}
		suffix := paths.Components(rel)
		return Match{
			Mapping: m,
			WorkDir: abs,
			DocDir:  filepath.Join(append([]string{m.DocDir(x.tagRoot)}, suffix...)...),
			Rel:     strings.Join(suffix, "/"),
		}, nil
	}
	return Match{}, fmt.Errorf("dirmap: %w: no work mapping contains %s", apperr.ErrNoMapping, abs)
}

// ResolveDoc finds the longest doc subpath that prefixes dir's path relative
// to the tag root and the matching work directory.
func (x *Index) ResolveDoc(dir string) (Match, error) {
	abs, err := paths.Canonical(dir)
	if err != nil {
		return Match{}, fmt.Errorf("dirmap: resolve %s: %w", dir, err)
	}
	if !paths.Within(x.tagRoot, abs) {
		return Match{}, fmt.Errorf("dirmap: %w: %s is not inside %s", apperr.ErrOutsideRoot, abs, x.tagRoot)
	}
	rel, err := filepath.Rel(x.tagRoot, abs)
	if err != nil {
		return Match{}, fmt.Errorf("dirmap: %w", err)
	}
	parts := paths.Components(rel)

	for _, m := range x.byDoc {
		if !hasPrefix(parts, m.docParts) {
			continue
		}
		suffix := parts[len(m.docParts):]
		return Match{
			Mapping: m,
			WorkDir: filepath.Join(append([]string{m.WorkPrefix}, suffix...)...),
			DocDir:  abs,
			Rel:     strings.Join(suffix, "/"),
		}, nil
	}
	return Match{}, fmt.Errorf("dirmap: %w: no doc mapping contains %s", apperr.ErrNoMapping, abs)
}

// Location is a directory resolved from either tree, with the tag the notes
// of its documentation directory carry.
type Location struct {
	Match     Match
	Direction Direction
	Tag       models.TagPath
}

// Locate detects which tree dir lies on and resolves it to its counterpart.
func (x *Index) Locate(dir string) (Location, error) {
	loc := Location{Direction: x.Direction(dir)}
	var err error
	switch loc.Direction {
	case FromWork:
		loc.Match, err = x.ResolveWork(dir)
	case FromDoc:
		loc.Match, err = x.ResolveDoc(dir)
	default:
		return loc, fmt.Errorf("dirmap: %w: no dir mapping covers %s", apperr.ErrNoMapping, dir)
	}
	if err != nil {
		return loc, err
	}
	rel, err := filepath.Rel(x.tagRoot, loc.Match.DocDir)
	if err != nil {
		return loc, fmt.Errorf("dirmap: %w", err)
	}
	loc.Tag = models.NewTagPath(paths.Components(rel)...)
	return loc, nil
}

func hasPrefix(parts, prefix []string) bool {
	if len(prefix) > len(parts) {
		return false
	}
	for i := range prefix {
		if parts[i] != prefix[i] {
			return false
		}
	}
	return true
}
