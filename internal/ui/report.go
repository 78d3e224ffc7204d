package ui

import (
	"fmt"
	"io"

	"github.com/starford/mad/internal/models"
)

// PrintReport writes a batch summary followed by one line per failed note.
// verb names what Updated counts ("updated", "moved", "converted").
func PrintReport(w io.Writer, verb string, r models.Report) {
	for _, e := range r.Errors {
		fmt.Fprintf(w, "%s %s: %s\n", SymbolFail, Accent.Render(e.Path), e.Err)
	}
	symbol := SymbolOK
	if r.Errored > 0 {
		symbol = SymbolFail
	}
	fmt.Fprintf(w, "%s %d %s, %s, %s\n",
		symbol,
		r.Updated, verb,
		Muted.Render(fmt.Sprintf("%d skipped", r.Skipped)),
		fmt.Sprintf("%d errors", r.Errored))
}
