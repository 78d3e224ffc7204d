package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/starford/mad/internal/models"
	"github.com/starford/mad/internal/storage"
)

// Cache file names and format version.
const (
	Version     = 1
	TagsFile    = "tags_cache.json"
	PrimaryFile = "primary_tags_cache.json"
)

// Kind selects which caches Rebuild regenerates.
type Kind string

const (
	KindAll     Kind = "all"
	KindDirTags Kind = "dir-tags"
)

type tagsFile struct {
	Version   int             `json:"version"`
	Timestamp int64           `json:"timestamp"`
	Root      *models.TagNode `json:"root"`
}

type primaryFile struct {
	Version   int                 `json:"version"`
	Timestamp int64               `json:"timestamp"`
	Root      *models.TagNode     `json:"root"`
	DirsByTag map[string][]string `json:"dirs_by_tag"`
}

// Cache reads and writes the tag caches inside one directory.
// The timestamp is informational; staleness is never checked.
type Cache struct {
	files     storage.Provider
	vaultRoot string
	scanner   Scanner
	logger    *slog.Logger
	now       func() time.Time
}

// New creates the cache directory if needed and returns a Cache over it.
func New(dir, vaultRoot string, scanner Scanner, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("index: create cache dir: %w", err)
	}
	files, err := storage.NewFS(dir)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	return &Cache{
		files:     files,
		vaultRoot: vaultRoot,
		scanner:   scanner,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.files.Root()
}

// LoadTags returns the cached full tag tree, scanning and persisting a new
// one when the file is missing, unreadable or of another version.
func (c *Cache) LoadTags() (*models.TagNode, error) {
	var f tagsFile
	if c.read(TagsFile, &f) && f.Version == Version && f.Root != nil {
		return f.Root, nil
	}
	return c.UpdateTags()
}

// UpdateTags scans the vault and overwrites the full tag cache.
func (c *Cache) UpdateTags() (*models.TagNode, error) {
	items, err := c.scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("index: scan: %w", err)
	}
	root := BuildTagTree(items)
	if err := c.writeTags(root); err != nil {
		return nil, err
	}
	return root, nil
}

// LoadPrimary returns the cached primary-tag data, rebuilding it when needed.
func (c *Cache) LoadPrimary() (*PrimaryTags, error) {
	var f primaryFile
	if c.read(PrimaryFile, &f) && f.Version == Version && f.Root != nil {
		if f.DirsByTag == nil {
			f.DirsByTag = map[string][]string{}
		}
		return &PrimaryTags{Root: f.Root, DirsByTag: f.DirsByTag}, nil
	}
	return c.UpdatePrimary()
}

// UpdatePrimary scans the vault and overwrites the primary-tag cache.
func (c *Cache) UpdatePrimary() (*PrimaryTags, error) {
	items, err := c.scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("index: scan: %w", err)
	}
	p := BuildPrimary(items, c.vaultRoot)
	if err := c.writePrimary(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Rebuild regenerates the selected caches from a single scan.
func (c *Cache) Rebuild(kind Kind) error {
	items, err := c.scanner.Scan()
	if err != nil {
		return fmt.Errorf("index: scan: %w", err)
	}
	switch kind {
	case KindAll:
		if err := c.writeTags(BuildTagTree(items)); err != nil {
			return err
		}
	case KindDirTags:
	default:
		return fmt.Errorf("index: unknown cache kind %q", kind)
	}
	if err := c.writePrimary(BuildPrimary(items, c.vaultRoot)); err != nil {
		return err
	}
	c.logger.Info("cache: rebuilt", slog.String("kind", string(kind)), slog.Int("notes", len(items)))
	return nil
}

func (c *Cache) writeTags(root *models.TagNode) error {
	return c.write(TagsFile, tagsFile{Version: Version, Timestamp: c.now().Unix(), Root: root})
}

func (c *Cache) writePrimary(p *PrimaryTags) error {
	return c.write(PrimaryFile, primaryFile{
		Version:   Version,
		Timestamp: c.now().Unix(),
		Root:      p.Root,
		DirsByTag: p.DirsByTag,
	})
}

// read decodes name into target, reporting whether a usable file was found.
func (c *Cache) read(name string, target any) bool {
	data, err := c.files.Read(name)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("cache: read failed", slog.String("file", name), slog.String("error", err.Error()))
		}
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		c.logger.Warn("cache: invalid file, rebuilding", slog.String("file", name), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (c *Cache) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("index: encode %s: %w", name, err)
	}
	if err := c.files.Write(name, data); err != nil {
		return fmt.Errorf("index: write %s: %w", name, err)
	}
	return nil
}

// Status describes one cache file as found on disk.
type Status struct {
	File    string
	Exists  bool
	Version int
	Built   time.Time
	Tags    int
}

// Status reports the state of both cache files without rebuilding them.
func (c *Cache) Status() []Status {
	out := make([]Status, 0, 2)
	for _, name := range []string{TagsFile, PrimaryFile} {
		st := Status{File: name}
		var f tagsFile
		if c.read(name, &f) {
			st.Exists = true
			st.Version = f.Version
			st.Built = time.Unix(f.Timestamp, 0)
			if f.Root != nil {
				st.Tags = len(f.Root.Paths())
			}
		}
		out = append(out, st)
	}
	return out
}
