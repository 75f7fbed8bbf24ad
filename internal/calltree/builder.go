package calltree

import (
	"fmt"

	"tmplprof/internal/diag"
	"tmplprof/internal/dialect"
	"tmplprof/internal/source"
)

// Stats counts the events a Builder saw and the irregularities it absorbed.
type Stats struct {
	Enters     int
	Exits      int
	Backtraces int
	Nodes      int // committed nodes, root excluded
	// ExtraExits counts exits seen while the cursor was at the root.
	ExtraExits int
	// Unterminated counts instantiations still open at end of input.
	Unterminated int
	// Skipped counts enter events whose location could not be parsed.
	Skipped  int
	MaxDepth uint32
}

// Builder turns an ordered event stream into a Tree. The dialect profile fixes
// when an enter event becomes a node and how exit changes the backtrace depth.
// Builder never fails: unbalanced input degrades the tree, never the run.
type Builder struct {
	tree   *Tree
	commit dialect.CommitPolicy
	exit   dialect.DepthPolicy
	rep    diag.Reporter

	cursor NodeID
	depth  uint32

	pending     source.LocationID
	pendingLine uint32
	hasPending  bool

	// skipped enters that are still open, recorded by the cursor at which
	// they were opened; their exits must not ascend.
	phantoms []NodeID

	stats Stats
	done  bool
}

// NewBuilder creates a builder for the given dialect profile. rep may be nil.
func NewBuilder(p *dialect.Profile, rep diag.Reporter) *Builder {
	if p == nil {
		panic("calltree: nil dialect profile")
	}
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Builder{
		tree:   newTree(),
		commit: p.Commit,
		exit:   p.ExitDepth,
		rep:    rep,
		cursor: RootID,
	}
}

// Enter handles an enter event for loc read at input line `line`.
func (b *Builder) Enter(loc source.LocationID, line uint32) {
	b.checkOpen()
	b.stats.Enters++
	switch b.commit {
	case dialect.CommitDeferred:
		b.commitPending()
		b.pending, b.pendingLine, b.hasPending = loc, line, true
	default:
		b.depth++
		b.descend(loc, line)
		b.depth = 0
	}
}

// Skip handles an enter event whose location fragment was malformed. No node
// is created, but the matching exit is absorbed so the tree stays balanced.
func (b *Builder) Skip() {
	b.checkOpen()
	b.stats.Skipped++
	if b.commit == dialect.CommitDeferred {
		// новый enter подтверждает предыдущий отложенный
		b.commitPending()
	} else {
		b.depth = 0
	}
	b.phantoms = append(b.phantoms, b.cursor)
}

// Backtrace handles one backtrace frame.
func (b *Builder) Backtrace() {
	b.checkOpen()
	b.stats.Backtraces++
	b.depth++
}

// Exit handles an exit event read at input line `line`.
func (b *Builder) Exit(line uint32) {
	b.checkOpen()
	b.stats.Exits++
	b.commitPending()

	switch {
	case len(b.phantoms) > 0 && b.phantoms[len(b.phantoms)-1] == b.cursor:
		b.phantoms = b.phantoms[:len(b.phantoms)-1]
	case b.cursor == RootID:
		b.stats.ExtraExits++
		b.rep.Report(diag.TreeExtraExit, diag.SevInfo, line, "exit without a matching enter ignored")
	default:
		b.cursor = b.tree.nodes[b.cursor].Parent
	}

	switch b.exit {
	case dialect.DepthDecrement:
		if b.depth > 0 {
			b.depth--
		}
	default:
		b.depth = 0
	}
}

// Finish commits a pending location, records the instantiations left open and
// returns the tree. The builder must not be used afterwards.
func (b *Builder) Finish() *Tree {
	b.checkOpen()
	b.commitPending()
	open := int(b.tree.nodes[b.cursor].Depth) + len(b.phantoms)
	if open > 0 {
		b.stats.Unterminated = open
		b.rep.Report(diag.TreeUnterminated, diag.SevInfo, 0, fmt.Sprintf("%d instantiation(s) without exit at end of input", open))
	}
	b.done = true
	return b.tree
}

// Current returns the cursor node.
func (b *Builder) Current() NodeID { return b.cursor }

// Depth returns the backtrace depth counter.
func (b *Builder) Depth() uint32 { return b.depth }

// Pending returns the location waiting for its commit point, if any.
func (b *Builder) Pending() (source.LocationID, bool) { return b.pending, b.hasPending }

// Stats returns a snapshot of the counters.
func (b *Builder) Stats() Stats { return b.stats }

func (b *Builder) commitPending() {
	if !b.hasPending {
		return
	}
	b.descend(b.pending, b.pendingLine)
	b.pending, b.pendingLine, b.hasPending = source.NoLocationID, 0, false
}

func (b *Builder) descend(loc source.LocationID, line uint32) {
	id := b.tree.attach(b.cursor, loc, b.depth, line)
	b.cursor = id
	b.stats.Nodes++
	if d := b.tree.nodes[id].Depth; d > b.stats.MaxDepth {
		b.stats.MaxDepth = d
	}
}

func (b *Builder) checkOpen() {
	if b.done {
		panic("calltree: builder used after Finish")
	}
}
