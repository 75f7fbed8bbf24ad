// Package callgraph folds an instantiation tree into per-location counts and
// weighted parent/child edges.
package callgraph

import (
	"sort"

	"tmplprof/internal/calltree"
	"tmplprof/internal/source"
)

// Record aggregates every tree node that shares one location.
type Record struct {
	// Count is the number of nodes with this location.
	Count int
	// TotalWithChildren counts descendant nodes, over all occurrences, whose
	// location differs from this one.
	TotalWithChildren int
	Children          map[source.LocationID]int
	Parents           map[source.LocationID]int
}

// Edge is one weighted adjacency of a Record.
type Edge struct {
	Loc    source.LocationID
	Weight int
}

// Entry pairs a location with its record.
type Entry struct {
	Loc source.LocationID
	*Record
}

// Graph is the aggregated call graph.
type Graph struct {
	records map[source.LocationID]*Record
	order   []source.LocationID // first-seen, post-order
}

// Aggregate walks tree once in post-order. For each node it bumps the node's
// Count and, for each ancestor whose location is real and different from the
// node's, the ancestor->node child edge, the node->ancestor parent edge and the
// ancestor's TotalWithChildren. The tree is not modified.
func Aggregate(tree *calltree.Tree) *Graph {
	g := &Graph{records: make(map[source.LocationID]*Record)}
	tree.PostOrder(func(id calltree.NodeID) {
		n := tree.Node(id)
		if n.Loc == source.NoLocationID {
			return
		}
		self := g.record(n.Loc)
		self.Count++
		tree.Ancestors(id, func(aid calltree.NodeID) bool {
			anc := tree.Node(aid).Loc
			if anc == source.NoLocationID || anc == n.Loc {
				return true
			}
			ar := g.record(anc)
			ar.Children[n.Loc]++
			ar.TotalWithChildren++
			self.Parents[anc]++
			return true
		})
	})
	return g
}

func (g *Graph) record(loc source.LocationID) *Record {
	if r, ok := g.records[loc]; ok {
		return r
	}
	r := &Record{
		Children: make(map[source.LocationID]int),
		Parents:  make(map[source.LocationID]int),
	}
	g.records[loc] = r
	g.order = append(g.order, loc)
	return r
}

// Len returns the number of distinct locations.
func (g *Graph) Len() int { return len(g.records) }

// Record returns the record of loc.
func (g *Graph) Record(loc source.LocationID) (*Record, bool) {
	r, ok := g.records[loc]
	return r, ok
}

// Locations returns every location in first-seen order.
func (g *Graph) Locations() []source.LocationID {
	out := make([]source.LocationID, len(g.order))
	copy(out, g.order)
	return out
}

// Entries returns all records ordered by TotalWithChildren descending. Equal
// totals keep first-seen order.
func (g *Graph) Entries() []Entry {
	out := make([]Entry, 0, len(g.order))
	for _, loc := range g.order {
		out = append(out, Entry{Loc: loc, Record: g.records[loc]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalWithChildren > out[j].TotalWithChildren
	})
	return out
}

// ChildEdges returns the child edges of loc, heaviest first.
func (g *Graph) ChildEdges(loc source.LocationID) []Edge {
	r, ok := g.records[loc]
	if !ok {
		return nil
	}
	return sortedEdges(r.Children)
}

// ParentEdges returns the parent edges of loc, heaviest first.
func (g *Graph) ParentEdges(loc source.LocationID) []Edge {
	r, ok := g.records[loc]
	if !ok {
		return nil
	}
	return sortedEdges(r.Parents)
}

// sortedEdges orders by weight descending, then by location id, which is the
// order the registry first saw the locations in.
func sortedEdges(m map[source.LocationID]int) []Edge {
	out := make([]Edge, 0, len(m))
	for loc, w := range m {
		out = append(out, Edge{Loc: loc, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Loc < out[j].Loc
	})
	return out
}

// Count returns the direct count of loc, 0 when unknown.
func (g *Graph) Count(loc source.LocationID) int {
	if r, ok := g.records[loc]; ok {
		return r.Count
	}
	return 0
}
