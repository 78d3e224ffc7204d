package rename

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/starford/mad/internal/apperr"
	"github.com/starford/mad/internal/dirmap"
	"github.com/starford/mad/internal/noteservice"
	"github.com/starford/mad/internal/parser"
	"github.com/starford/mad/internal/paths"
	"github.com/starford/mad/internal/retag"
	"github.com/starford/mad/internal/testutil"
)

type env struct {
	vault   string
	tagRoot string
	work    string
	engine  *Engine
	calls   []string
}

func setup(t *testing.T) *env {
	t.Helper()
	vault, store := testutil.TestVault(t, map[string]string{
		"Notas/proj/old/note.md": "{ #proj/old }\n\nbody\n",
	})
	work, err := paths.Canonical(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(work, "old", "src"), 0o755); err != nil {
		t.Fatal(err)
	}

	e := &env{vault: vault, tagRoot: filepath.Join(vault, "Notas"), work: work}
	idx, err := dirmap.Build(e.tagRoot, map[string]string{work: "proj"}, testutil.Logger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	rt := retag.New(noteservice.NewService(store), e.tagRoot, testutil.Logger(),
		retag.WithClock(func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }))
	e.engine = New(idx, rt, testutil.Logger())
	e.engine.renameDir = func(from, to string) error {
		e.calls = append(e.calls, filepath.Base(filepath.Dir(from))+"/"+filepath.Base(from))
		return os.Rename(from, to)
	}
	return e
}

func (e *env) assertOriginal(t *testing.T) {
	t.Helper()
	if !paths.IsDir(filepath.Join(e.work, "old")) || !paths.IsDir(filepath.Join(e.tagRoot, "proj", "old")) {
		t.Error("original directories missing")
	}
	if paths.Exists(filepath.Join(e.work, "new")) || paths.Exists(filepath.Join(e.tagRoot, "proj", "new")) {
		t.Error("new directories present")
	}
}

func TestRename_FromWork(t *testing.T) {
	e := setup(t)

	res, err := e.engine.Rename(filepath.Join(e.work, "old"), "new", Options{})
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if res.Direction != dirmap.FromWork {
		t.Errorf("direction = %v", res.Direction)
	}
	if !paths.IsDir(filepath.Join(e.work, "new", "src")) {
		t.Error("work dir not renamed")
	}
	if !paths.IsDir(filepath.Join(e.tagRoot, "proj", "new")) {
		t.Error("doc dir not renamed")
	}
	if want := []string{"proj/old", filepath.Base(e.work) + "/old"}; !reflect.DeepEqual(e.calls, want) {
		t.Errorf("rename order = %v, want %v", e.calls, want)
	}

	if res.Retag == nil || res.Retag.Updated != 1 {
		t.Fatalf("retag report = %+v", res.Retag)
	}
	doc, err := parser.ParseDocument([]byte(testutil.ReadFile(t, e.vault, "Notas/proj/new/note.md")))
	if err != nil {
		t.Fatal(err)
	}
	if got := parser.PrimaryTag(doc.Body).String(); got != "proj/new" {
		t.Errorf("primary = %q", got)
	}
	if got := doc.Aliases(); !reflect.DeepEqual(got, []string{"2024-05-01 proj/old"}) {
		t.Errorf("aliases = %v", got)
	}
	if paths.Exists(filepath.Join(e.vault, ".arc", "backups")) {
		t.Error("cascading retag wrote backups")
	}
}

func TestRename_FromDoc(t *testing.T) {
	e := setup(t)

	res, err := e.engine.Rename(filepath.Join(e.tagRoot, "proj", "old"), "new", Options{NoRetag: true})
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if res.Direction != dirmap.FromDoc {
		t.Errorf("direction = %v", res.Direction)
	}
	if want := []string{filepath.Base(e.work) + "/old", "proj/old"}; !reflect.DeepEqual(e.calls, want) {
		t.Errorf("rename order = %v, want %v", e.calls, want)
	}
	if res.NewWork != filepath.Join(e.work, "new") || res.NewDoc != filepath.Join(e.tagRoot, "proj", "new") {
		t.Errorf("result = %+v", res)
	}
	if res.Retag != nil {
		t.Error("retag ran with NoRetag")
	}
	if got := testutil.ReadFile(t, e.vault, "Notas/proj/new/note.md"); got != "{ #proj/old }\n\nbody\n" {
		t.Errorf("note rewritten: %q", got)
	}
}

func TestRename_DestinationExists(t *testing.T) {
	e := setup(t)
	if err := os.Mkdir(filepath.Join(e.work, "new"), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := e.engine.Rename(filepath.Join(e.tagRoot, "proj", "old"), "new", Options{})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
	if len(e.calls) != 0 {
		t.Errorf("renames attempted: %v", e.calls)
	}
	if !paths.IsDir(filepath.Join(e.tagRoot, "proj", "old")) {
		t.Error("doc dir moved")
	}
}

func TestRename_CounterpartMissing(t *testing.T) {
	e := setup(t)
	if err := os.RemoveAll(filepath.Join(e.tagRoot, "proj", "old")); err != nil {
		t.Fatal(err)
	}
	_, err := e.engine.Rename(filepath.Join(e.work, "old"), "new", Options{})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(e.calls) != 0 {
		t.Errorf("renames attempted: %v", e.calls)
	}
}

func TestRename_RollsBackFirstRename(t *testing.T) {
	e := setup(t)
	n := 0
	e.engine.renameDir = func(from, to string) error {
		n++
		if n == 2 {
			return errors.New("disk on fire")
		}
		return os.Rename(from, to)
	}

	_, err := e.engine.Rename(filepath.Join(e.work, "old"), "new", Options{})
	if err == nil || !strings.Contains(err.Error(), "rolled back") {
		t.Fatalf("err = %v, want rolled back error", err)
	}
	if errors.Is(err, apperr.ErrInconsistent) {
		t.Error("successful rollback reported as inconsistent")
	}
	e.assertOriginal(t)
}

func TestRename_RollbackFailureIsInconsistent(t *testing.T) {
	e := setup(t)
	n := 0
	e.engine.renameDir = func(from, to string) error {
		n++
		if n >= 2 {
			return errors.New("read-only")
		}
		return os.Rename(from, to)
	}
	_, err := e.engine.Rename(filepath.Join(e.work, "old"), "new", Options{})
	if !errors.Is(err, apperr.ErrInconsistent) {
		t.Fatalf("err = %v, want ErrInconsistent", err)
	}
	if !strings.Contains(err.Error(), filepath.Join(e.tagRoot, "proj", "new")) {
		t.Errorf("error does not name the renamed path: %v", err)
	}
}

func TestRename_MappingRootRejected(t *testing.T) {
	e := setup(t)
	_, err := e.engine.Rename(e.work, "new", Options{})
	if !errors.Is(err, apperr.ErrInvalidName) {
		t.Fatalf("err = %v, want ErrInvalidName", err)
	}
}

func TestRename_Unmapped(t *testing.T) {
	e := setup(t)
	_, err := e.engine.Rename(t.TempDir(), "new", Options{})
	if !errors.Is(err, apperr.ErrNoMapping) {
		t.Fatalf("err = %v, want ErrNoMapping", err)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"new", true},
		{"with space", true},
		{"", false},
		{"  ", false},
		{".", false},
		{"..", false},
		{"a/b", false},
	}
	for _, tt := range tests {
		err := ValidateName(tt.name)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateName(%q) = %v, want ok=%v", tt.name, err, tt.ok)
		}
		if err != nil && !errors.Is(err, apperr.ErrInvalidName) {
			t.Errorf("ValidateName(%q) error not ErrInvalidName: %v", tt.name, err)
		}
	}
}
