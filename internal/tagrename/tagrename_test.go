package tagrename

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/starford/mad/internal/apperr"
	"github.com/starford/mad/internal/models"
	"github.com/starford/mad/internal/noteservice"
	"github.com/starford/mad/internal/parser"
	"github.com/starford/mad/internal/scan"
	"github.com/starford/mad/internal/testutil"
)

func TestRewrite(t *testing.T) {
	from, to := models.ParseTagPath("proj/old"), models.ParseTagPath("proj/new")
	tests := []struct {
		name      string
		input     string
		recursive bool
		changed   bool
		key       string
		want      []string
	}{
		{"exact match", "---\ntags: [proj/old, misc]\n---\n", false, true, "tags", []string{"proj/new", "misc"}},
		{"single leaves sub-tags", "---\ntags: [proj/old/sub]\n---\n", false, false, "", nil},
		{"recursive keeps suffix", "---\ntags: [proj/old/sub/x, proj/old]\n---\n", true, true, "tags", []string{"proj/new/sub/x", "proj/new"}},
		{"prefix is per segment", "---\ntags: [proj/older]\n---\n", true, false, "", nil},
		{"first key only", "---\ntags: [misc]\nTag: [proj/old]\n---\n", false, false, "", nil},
		{"later key when earlier is absent", "---\nTag: [proj/old]\n---\n", false, true, "Tag", []string{"proj/new"}},
		{"duplicates collapse", "---\ntags: [proj/old, proj/new]\n---\n", false, true, "tags", []string{"proj/new"}},
		{"scalar value", "---\ntags: proj/old\n---\n", false, true, "tags", []string{"proj/new"}},
		{"no frontmatter", "proj/old\n", false, false, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parser.ParseDocument([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseDocument: %v", err)
			}
			change, ok := Rewrite(doc, from, to, tt.recursive)
			if ok != tt.changed {
				t.Fatalf("changed = %v, want %v", ok, tt.changed)
			}
			if !ok {
				return
			}
			if change.Key != tt.key {
				t.Errorf("key = %q, want %q", change.Key, tt.key)
			}
			values, _ := doc.TagSequence(tt.key)
			if !reflect.DeepEqual(values, tt.want) {
				t.Errorf("stored = %v, want %v", values, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		from, to string
	}{
		{"", "a"},
		{"a", ""},
		{"a/b", "a/b"},
		{"a", "../b"},
	}
	for _, tt := range tests {
		err := Validate(models.ParseTagPath(tt.from), models.ParseTagPath(tt.to))
		if !errors.Is(err, apperr.ErrInvalidTag) {
			t.Errorf("Validate(%q, %q) = %v, want ErrInvalidTag", tt.from, tt.to, err)
		}
	}
	if err := Validate(models.ParseTagPath("a"), models.ParseTagPath("b/c")); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

var vaultFiles = map[string]string{
	"a.md":     "---\ntitle: A\ntags: [proj/old, misc]\n---\nbody\n",
	"sub/b.md": "---\ntags: [proj/old/sub]\n---\n",
	"c.md":     "{ #proj/old }\n\nonly the marker\n",
	"d.md":     "---\ntags: [other]\n---\nproj/old is just text\n",
}

func setup(t *testing.T) (*Renamer, string) {
	t.Helper()
	root, store := testutil.TestVault(t, vaultFiles)
	scanner := scan.New(store, testutil.Logger())
	return New(noteservice.NewService(store), scanner, testutil.Logger()), root
}

func tagsOf(t *testing.T, root, rel string) []string {
	t.Helper()
	doc, err := parser.ParseDocument([]byte(testutil.ReadFile(t, root, rel)))
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	for _, tag := range doc.FrontmatterTags() {
		out = append(out, tag.String())
	}
	return out
}

func TestRun_Single(t *testing.T) {
	r, root := setup(t)
	rep, err := r.Run(models.ParseTagPath("proj/old"), models.ParseTagPath("proj/new"), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Updated != 1 || rep.Skipped != 1 || rep.Errored != 0 {
		t.Errorf("report = %+v", rep)
	}
	if got := tagsOf(t, root, "a.md"); !reflect.DeepEqual(got, []string{"proj/new", "misc"}) {
		t.Errorf("a.md tags = %v", got)
	}
	if got := tagsOf(t, root, "sub/b.md"); !reflect.DeepEqual(got, []string{"proj/old/sub"}) {
		t.Errorf("sub/b.md tags = %v", got)
	}
	for rel, want := range map[string]string{"c.md": vaultFiles["c.md"], "d.md": vaultFiles["d.md"], "sub/b.md": vaultFiles["sub/b.md"]} {
		if got := testutil.ReadFile(t, root, rel); got != want {
			t.Errorf("%s rewritten: %q", rel, got)
		}
	}

	backups, _ := filepath.Glob(filepath.Join(root, ".arc", "backups", "a_*.md.bak"))
	if len(backups) != 1 {
		t.Errorf("backups = %v", backups)
	}
}

func TestRun_Recursive(t *testing.T) {
	r, root := setup(t)
	rep, err := r.Run(models.ParseTagPath("proj/old"), models.ParseTagPath("work"), Options{Recursive: true, NoBackup: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Updated != 2 || rep.Skipped != 1 || rep.Errored != 0 {
		t.Errorf("report = %+v", rep)
	}
	if got := tagsOf(t, root, "a.md"); !reflect.DeepEqual(got, []string{"work", "misc"}) {
		t.Errorf("a.md tags = %v", got)
	}
	if got := tagsOf(t, root, "sub/b.md"); !reflect.DeepEqual(got, []string{"work/sub"}) {
		t.Errorf("sub/b.md tags = %v", got)
	}
	if got := testutil.ReadFile(t, root, "d.md"); got != vaultFiles["d.md"] {
		t.Errorf("d.md rewritten: %q", got)
	}
	if _, err := os.Stat(filepath.Join(root, ".arc", "backups")); !os.IsNotExist(err) {
		t.Errorf("backup dir created: %v", err)
	}
}

func TestRun_KeepsBodyAndOtherFields(t *testing.T) {
	r, root := setup(t)
	if _, err := r.Run(models.ParseTagPath("proj/old"), models.ParseTagPath("proj/new"), Options{NoBackup: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	doc, err := parser.ParseDocument([]byte(testutil.ReadFile(t, root, "a.md")))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Body != "body\n" {
		t.Errorf("body = %q", doc.Body)
	}
	var fm struct {
		Title string `yaml:"title"`
	}
	if err := doc.Frontmatter.Decode(&fm); err != nil || fm.Title != "A" {
		t.Errorf("title = %q, err = %v", fm.Title, err)
	}
}

func TestRun_InvalidTag(t *testing.T) {
	r, _ := setup(t)
	if _, err := r.Run(models.ParseTagPath("proj/old"), nil, Options{}); !errors.Is(err, apperr.ErrInvalidTag) {
		t.Errorf("err = %v, want ErrInvalidTag", err)
	}
}
