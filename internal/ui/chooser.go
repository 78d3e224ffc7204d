package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/starford/mad/internal/models"
)

// PromptChooser asks on the terminal which tag to use for an ambiguous note.
// When input is not a terminal every choice is declined.
type PromptChooser struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPromptChooser returns a chooser reading from in and prompting on out.
func NewPromptChooser(in *os.File, out io.Writer) *PromptChooser {
	tty := isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd())
	return newPromptChooser(in, out, tty)
}

func newPromptChooser(in io.Reader, out io.Writer, interactive bool) *PromptChooser {
	return &PromptChooser{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// Choose lists tags and reads a 1-based index. An empty answer, 0 or
// anything unparsable declines.
func (c *PromptChooser) Choose(path string, tags []models.TagPath) (models.TagPath, bool, error) {
	if !c.interactive {
		fmt.Fprintf(c.out, "%s %s has several tags, skipped (not a terminal)\n", SymbolSkip, Accent.Render(path))
		return nil, false, nil
	}

	fmt.Fprintf(c.out, "%s\n", Bold.Render("Several tags in "+path))
	for i, tag := range tags {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, Accent.Render(tag.String()))
	}
	fmt.Fprint(c.out, Muted.Render("Choose a number (empty to skip): "))

	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, false, fmt.Errorf("ui: read choice: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false, nil
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(tags) {
		fmt.Fprintf(c.out, "%s invalid choice %q, skipped\n", SymbolSkip, line)
		return nil, false, nil
	}
	return tags[n-1], true, nil
}
