package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const numWidth = 10

// Text writes the classic two-part report: the flat table, then the call
// graph (omitted when the report has none).
func Text(w io.Writer, rep *Report) error {
	bw := bufio.NewWriter(w)

	width := 0
	for _, r := range rep.Flat {
		width = max(width, runewidth.StringWidth(r.Location))
	}

	fmt.Fprintf(bw, "Total instantiations: %d\n", rep.TotalMatches)
	fmt.Fprintf(bw, "%s%*s%*s\n", runewidth.FillLeft("Location", width), numWidth, "count", numWidth, "cum.")
	bw.WriteString(strings.Repeat("-", width+2*numWidth))
	bw.WriteByte('\n')
	for _, r := range rep.Flat {
		fmt.Fprintf(bw, "%s%*d%*d\n", runewidth.FillLeft(r.Location, width), numWidth, r.Count, numWidth, r.Cumulative)
	}

	if rep.CallGraph != nil {
		bw.WriteString("\nCall Graph\n\n")
		for _, e := range rep.CallGraph {
			fmt.Fprintf(bw, "%s (%d)\n", e.Location, e.Count)
			bw.WriteString("  Parents:\n")
			for _, p := range e.Parents {
				fmt.Fprintf(bw, "    %s (%d)\n", p.Location, p.Weight)
			}
			bw.WriteString("  Children:\n")
			for _, c := range e.Children {
				fmt.Fprintf(bw, "    %s (%d/%d)\n", c.Location, c.Weight, c.Count)
			}
		}
	}
	return bw.Flush()
}
