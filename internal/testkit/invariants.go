// Package testkit holds structural checks for trees, graphs and registries.
// Tests run them always; the CLI runs them with --check-invariants.
package testkit

import (
	"fmt"

	"tmplprof/internal/callgraph"
	"tmplprof/internal/calltree"
	"tmplprof/internal/source"
)

// CheckTree verifies the arena tree:
// 1) the root has no location and is its own parent
// 2) every other node has a location, an earlier parent and depth parent+1
// 3) child lists and parent links agree and every node is reachable once
func CheckTree(t *calltree.Tree) error {
	if t == nil {
		return fmt.Errorf("nil tree")
	}
	root := t.Root()
	if root.Loc != source.NoLocationID || root.Parent != calltree.RootID || root.Depth != 0 {
		return fmt.Errorf("malformed root: %+v", *root)
	}

	seen := make([]bool, t.Len())
	seen[calltree.RootID] = true
	for i := 1; i < t.Len(); i++ {
		id := calltree.NodeID(i) //nolint:gosec // bounded by t.Len
		n := t.Node(id)
		if n.Loc == source.NoLocationID {
			return fmt.Errorf("node %d has no location", id)
		}
		if n.Parent >= id {
			return fmt.Errorf("node %d: parent %d is not older", id, n.Parent)
		}
		if p := t.Node(n.Parent); n.Depth != p.Depth+1 {
			return fmt.Errorf("node %d: depth %d, parent depth %d", id, n.Depth, p.Depth)
		}
	}
	for i := 0; i < t.Len(); i++ {
		id := calltree.NodeID(i) //nolint:gosec // bounded by t.Len
		for _, c := range t.Node(id).Children {
			cn := t.Node(c)
			if cn == nil {
				return fmt.Errorf("node %d: child %d out of range", id, c)
			}
			if cn.Parent != id {
				return fmt.Errorf("node %d lists child %d whose parent is %d", id, c, cn.Parent)
			}
			if seen[c] {
				return fmt.Errorf("node %d listed twice", c)
			}
			seen[c] = true
		}
	}
	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("node %d is unreachable", i)
		}
	}
	return nil
}

// CheckGraph verifies an aggregated graph against the tree it came from:
// 1) children[A][B] == parents[B][A] and there are no self edges
// 2) TotalWithChildren equals the sum of child edge weights
// 3) counts sum to the number of non-root nodes
func CheckGraph(g *callgraph.Graph, t *calltree.Tree) error {
	if g == nil {
		return fmt.Errorf("nil graph")
	}
	sum := 0
	for _, a := range g.Locations() {
		ra, _ := g.Record(a)
		sum += ra.Count
		total := 0
		for b, w := range ra.Children {
			if b == a {
				return fmt.Errorf("self edge on location %d", a)
			}
			rb, ok := g.Record(b)
			if !ok {
				return fmt.Errorf("child %d of %d has no record", b, a)
			}
			if rb.Parents[a] != w {
				return fmt.Errorf("asymmetric edge %d->%d: children=%d parents=%d", a, b, w, rb.Parents[a])
			}
			total += w
		}
		for b, w := range ra.Parents {
			rb, ok := g.Record(b)
			if !ok || rb.Children[a] != w {
				return fmt.Errorf("asymmetric edge %d->%d seen from the parent map", b, a)
			}
		}
		if total != ra.TotalWithChildren {
			return fmt.Errorf("location %d: total %d, child weights sum %d", a, ra.TotalWithChildren, total)
		}
	}
	if t != nil && sum != t.Len()-1 {
		return fmt.Errorf("counts sum to %d, tree has %d nodes", sum, t.Len()-1)
	}
	return nil
}

// CheckRegistry verifies that every stored location maps back to its own id.
func CheckRegistry(r *source.Registry) error {
	if r == nil {
		return fmt.Errorf("nil registry")
	}
	snap := r.Snapshot()
	for i := 1; i < len(snap); i++ {
		loc := snap[i]
		want := source.LocationID(i) //nolint:gosec // bounded by registry size
		got, ok := r.Find(loc.File, loc.Line)
		if !ok || got != want {
			return fmt.Errorf("location %s: find=%d,%v want %d", loc, got, ok, want)
		}
	}
	return nil
}
