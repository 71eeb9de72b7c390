package presenter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteText writes t as aligned, tab-separated columns. An empty table
// writes nothing.
func WriteText(w io.Writer, t Table) error {
	if t.Empty() {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	lines := make([][]string, 0, len(t.Rows)+2)
	lines = append(lines, t.Header)
	lines = append(lines, t.Rows...)
	lines = append(lines, t.Totals)

	for _, cells := range lines {
		if _, err := fmt.Fprintf(tw, "%s\t\n", strings.Join(cells, "\t")); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}

	return nil
}
