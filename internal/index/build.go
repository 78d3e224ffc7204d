package index

import (
	"path/filepath"
	"sort"

	"github.com/starford/mad/internal/models"
)

// PrimaryTags is the primary-tag tree plus, for each primary tag, the
// vault-relative directories holding notes with that tag.
type PrimaryTags struct {
	Root      *models.TagNode
	DirsByTag map[string][]string
}

// Dirs returns the directories recorded for tag.
func (p *PrimaryTags) Dirs(tag models.TagPath) []string {
	return p.DirsByTag[tag.String()]
}

// BuildTagTree inserts every secondary tag of items into a new tree.
func BuildTagTree(items []models.ScanItem) *models.TagNode {
	root := models.NewTagTree()
	for _, item := range items {
		for _, tag := range item.SecondaryTags {
			root.Insert(tag)
		}
	}
	return root
}

// BuildPrimary builds the primary-tag tree and directory map. Directories
// are relative to vaultRoot, slash-separated, sorted and unique; the vault
// root itself is "".
func BuildPrimary(items []models.ScanItem, vaultRoot string) *PrimaryTags {
	root := models.NewTagTree()
	sets := make(map[string]map[string]struct{})
	for _, item := range items {
		if !item.HasPrimary() {
			continue
		}
		root.Insert(item.PrimaryTag)

		dir := filepath.Dir(item.Path)
		rel, err := filepath.Rel(vaultRoot, dir)
		if err != nil {
			rel = dir
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			rel = ""
		}

		key := item.PrimaryTag.String()
		if sets[key] == nil {
			sets[key] = make(map[string]struct{})
		}
		sets[key][rel] = struct{}{}
	}

	dirs := make(map[string][]string, len(sets))
	for key, set := range sets {
		list := make([]string, 0, len(set))
		for d := range set {
			list = append(list, d)
		}
		sort.Strings(list)
		dirs[key] = list
	}
	return &PrimaryTags{Root: root, DirsByTag: dirs}
}
