// Package calltree reconstructs the nesting of template instantiations from
// the ordered enter/backtrace/exit events of a compiler log.
package calltree

import "tmplprof/internal/source"

// NodeID addresses a node inside a Tree arena. RootID is the synthetic root.
type NodeID uint32

const RootID NodeID = 0

// Node is one instantiation event.
type Node struct {
	Loc      source.LocationID // NoLocationID only for the root
	Parent   NodeID            // RootID for top-level nodes and for the root itself
	Children []NodeID          // in commit order
	Depth    uint32            // root = 0
	// Backtrace is the backtrace depth counter at the moment of commit.
	Backtrace uint32
	// Line is the input line of the enter event, 0 for the root.
	Line uint32
}

// Tree is an arena of nodes. Nodes are never removed.
type Tree struct {
	nodes []Node
}

func newTree() *Tree {
	t := &Tree{nodes: make([]Node, 1, 64)}
	t.nodes[RootID] = Node{Loc: source.NoLocationID, Parent: RootID}
	return t
}

// Len returns the number of nodes including the root.
func (t *Tree) Len() int { return len(t.nodes) }

// Root returns the synthetic root.
func (t *Tree) Root() *Node { return &t.nodes[RootID] }

// Node returns the node with the given id or nil.
func (t *Tree) Node(id NodeID) *Node {
	if int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

func (t *Tree) attach(parent NodeID, loc source.LocationID, backtrace, line uint32) NodeID {
	id := NodeID(mustLen32(len(t.nodes)))
	t.nodes = append(t.nodes, Node{
		Loc:       loc,
		Parent:    parent,
		Depth:     t.nodes[parent].Depth + 1,
		Backtrace: backtrace,
		Line:      line,
	})
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	return id
}

// Ancestors calls fn for every proper ancestor of id, nearest first, ending
// with the root. Iteration stops when fn returns false.
func (t *Tree) Ancestors(id NodeID, fn func(NodeID) bool) {
	for id != RootID {
		id = t.nodes[id].Parent
		if !fn(id) {
			return
		}
	}
}

// PostOrder visits every node, children (in order) before their parent, the
// root last. It uses an explicit stack so deep trees do not grow the
// goroutine stack.
func (t *Tree) PostOrder(fn func(NodeID)) {
	type frame struct {
		id   NodeID
		next int
	}
	stack := make([]frame, 1, 64)
	stack[0] = frame{id: RootID}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		kids := t.nodes[top.id].Children
		if top.next < len(kids) {
			child := kids[top.next]
			top.next++
			stack = append(stack, frame{id: child})
			continue
		}
		fn(top.id)
		stack = stack[:len(stack)-1]
	}
}

// MaxDepth returns the deepest node depth.
func (t *Tree) MaxDepth() uint32 {
	var m uint32
	for i := range t.nodes {
		if t.nodes[i].Depth > m {
			m = t.nodes[i].Depth
		}
	}
	return m
}
