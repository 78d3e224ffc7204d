package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/starford/mad/internal/models"
)

func TestRenderTree(t *testing.T) {
	root := models.NewTagTree()
	root.Insert(models.NewTagPath("dev", "go"))
	root.Insert(models.NewTagPath("dev", "rust"))
	root.Insert(models.NewTagPath("home"))

	out := RenderTree("tags", root)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 5 || lines[0] != "tags" {
		t.Fatalf("tree = %q", out)
	}
	for i, want := range []string{"dev", "go", "rust", "home"} {
		if !strings.HasSuffix(lines[i+1], want) {
			t.Errorf("line %d = %q, want suffix %q", i+1, lines[i+1], want)
		}
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	r := models.Report{Updated: 2, Skipped: 1}
	r.Fail("/v/bad.md", errors.New("boom"))
	PrintReport(&buf, "moved", r)

	out := buf.String()
	for _, want := range []string{"/v/bad.md", "boom", "2 moved", "1 skipped", "1 errors"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestPrintReport_SummarySymbol(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, "updated", models.Report{Updated: 1})
	if !strings.HasPrefix(buf.String(), SymbolOK) {
		t.Errorf("clean run = %q", buf.String())
	}

	buf.Reset()
	r := models.Report{Updated: 1}
	r.Fail("/v/bad.md", errors.New("boom"))
	PrintReport(&buf, "updated", r)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if summary := lines[len(lines)-1]; !strings.HasPrefix(summary, SymbolFail) {
		t.Errorf("summary with errors = %q", summary)
	}
}

func TestPromptChooser(t *testing.T) {
	tags := []models.TagPath{models.NewTagPath("a"), models.NewTagPath("b", "c")}
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2\n", "b/c", true},
		{"1", "a", true},
		{"\n", "", false},
		{"0\n", "", false},
		{"x\n", "", false},
		{"3\n", "", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		c := newPromptChooser(strings.NewReader(tt.input), &out, true)
		tag, ok, err := c.Choose("/v/n.md", tags)
		if err != nil {
			t.Fatalf("Choose(%q): %v", tt.input, err)
		}
		if ok != tt.ok || tag.String() != tt.want {
			t.Errorf("Choose(%q) = %q %v, want %q %v", tt.input, tag, ok, tt.want, tt.ok)
		}
	}
}

func TestPromptChooser_NonInteractiveDeclines(t *testing.T) {
	var out bytes.Buffer
	c := newPromptChooser(strings.NewReader("1\n"), &out, false)
	_, ok, err := c.Choose("/v/n.md", []models.TagPath{models.NewTagPath("a")})
	if err != nil || ok {
		t.Fatalf("Choose = %v %v, want declined", ok, err)
	}
}
