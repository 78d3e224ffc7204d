package migrate

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/starford/mad/internal/noteservice"
	"github.com/starford/mad/internal/parser"
	"github.com/starford/mad/internal/testutil"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		changed bool
		key     string
		want    string
	}{
		{"legacy list", "---\ntags: [padre, hijo]\n---\n", true, "tags", "padre/hijo"},
		{"mixed list", "---\ntags: [a/b, c]\n---\n", true, "tags", "a/b/c"},
		{"already migrated", "---\ntags: [a/b]\n---\n", false, "", ""},
		{"single simple tag", "---\ntags: [solo]\n---\n", false, "", ""},
		{"empty list falls through", "---\ntags: []\nTag: [x, y]\n---\n", true, "Tag", "x/y"},
		{"scalar", "---\ntags: a\n---\n", false, "", ""},
		{"no frontmatter", "body", false, "", ""},
		{"nested values", "---\ntags: [[a, b]]\n---\n", false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parser.ParseDocument([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseDocument: %v", err)
			}
			change, ok := Convert(doc)
			if ok != tt.changed {
				t.Fatalf("changed = %v, want %v", ok, tt.changed)
			}
			if !ok {
				return
			}
			if change.Key != tt.key || change.New.String() != tt.want {
				t.Errorf("change = %+v", change)
			}
			values, _ := doc.TagSequence(tt.key)
			if !reflect.DeepEqual(values, []string{tt.want}) {
				t.Errorf("stored = %v", values)
			}
		})
	}
}

func TestRun(t *testing.T) {
	root, store := testutil.TestVault(t, map[string]string{
		"a.md":     "---\ntitle: A\ntags:\n  - padre\n  - hijo\n---\nbody\n",
		"b.md":     "---\ntags: [done/already]\n---\n",
		"c.md":     "---\ntags: [\n---\n",
		"sub/d.md": "---\ntag: [x, y, z]\n---\n",
	})
	m := New(noteservice.NewService(store), testutil.Logger())

	r, err := m.Run(root, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.Updated != 2 || r.Skipped != 1 || r.Errored != 1 {
		t.Errorf("report = %+v", r)
	}

	doc, err := parser.ParseDocument([]byte(testutil.ReadFile(t, root, "a.md")))
	if err != nil {
		t.Fatal(err)
	}
	if tags := doc.FrontmatterTags(); len(tags) != 1 || tags[0].String() != "padre/hijo" {
		t.Errorf("a.md tags = %v", tags)
	}
	if doc.Body != "body\n" {
		t.Errorf("body = %q", doc.Body)
	}

	backups, _ := filepath.Glob(filepath.Join(root, ".arc", "backups", "*.md.bak"))
	if len(backups) != 2 {
		t.Errorf("backups = %v", backups)
	}
}
