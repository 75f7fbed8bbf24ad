package report

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// Mermaid writes the call graph as a Mermaid "graph TD" diagram. Locations
// are grouped into one subgraph per file; child edges become weighted arrows.
func Mermaid(w io.Writer, rep *Report) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("graph TD\n")

	byFile := make(map[string][]Entry)
	var files []string
	for _, e := range rep.CallGraph {
		if _, ok := byFile[e.File]; !ok {
			files = append(files, e.File)
		}
		byFile[e.File] = append(byFile[e.File], e)
	}
	sort.Strings(files)

	known := make(map[uint32]bool, len(rep.CallGraph))
	for i, f := range files {
		fmt.Fprintf(bw, "  subgraph F%d[\"%s\"]\n", i, escapeLabel(shortPath(f)))
		entries := byFile[f]
		sort.Slice(entries, func(a, b int) bool { return entries[a].Line < entries[b].Line })
		for _, e := range entries {
			known[e.ID] = true
			fmt.Fprintf(bw, "    %s[\"%d: %d (%d)\"]\n", nodeID(e.ID), e.Line, e.Count, e.Total)
		}
		bw.WriteString("  end\n")
	}

	for _, e := range rep.CallGraph {
		for _, c := range e.Children {
			// with --top the child may be cut off
			if !known[c.ID] {
				continue
			}
			fmt.Fprintf(bw, "  %s -->|%d| %s\n", nodeID(e.ID), c.Weight, nodeID(c.ID))
		}
	}
	return bw.Flush()
}

func nodeID(id uint32) string { return fmt.Sprintf("N%d", id) }

// shortPath returns the last 2 path segments for readability.
func shortPath(path string) string {
	parts := strings.Split(strings.ReplaceAll(filepath.ToSlash(path), `\`, "/"), "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
