// Package postprocess turns a compiler log into frequency and call-graph data.
//
// Processor is the pure core: it is fed lines one at a time and performs no
// I/O. Run wraps it with reading, dialect detection, cancellation, tracing and
// progress reporting.
package postprocess

import (
	"fmt"

	"tmplprof/internal/callgraph"
	"tmplprof/internal/calltree"
	"tmplprof/internal/diag"
	"tmplprof/internal/dialect"
	"tmplprof/internal/freq"
	"tmplprof/internal/source"
)

// Stats counts what a run saw.
type Stats struct {
	Lines      int            `json:"lines" yaml:"lines" msgpack:"lines"`
	Enters     int            `json:"enters" yaml:"enters" msgpack:"enters"`
	Exits      int            `json:"exits" yaml:"exits" msgpack:"exits"`
	Backtraces int            `json:"backtraces" yaml:"backtraces" msgpack:"backtraces"`
	Malformed  int            `json:"malformed" yaml:"malformed" msgpack:"malformed"`
	Tree       calltree.Stats `json:"tree" yaml:"tree" msgpack:"tree"`
}

// Result is everything a run produces.
type Result struct {
	Input     string
	Dialect   dialect.Kind
	Detection *dialect.Classification // nil when the dialect was given
	Frequency freq.Table
	Registry  *source.Registry
	Tree      *calltree.Tree
	Graph     *callgraph.Graph
	Stats     Stats
	Bag       *diag.Bag
}

// Processor classifies lines and feeds both the frequency counter and the
// tree builder in a single pass.
type Processor struct {
	matcher *dialect.Matcher
	kind    dialect.Kind
	reg     *source.Registry
	counter freq.Counter
	builder *calltree.Builder
	rep     diag.Reporter
	stats   Stats
	done    bool
}

// NewProcessor creates a processor for profile. rep may be nil.
func NewProcessor(profile *dialect.Profile, rep diag.Reporter) *Processor {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Processor{
		matcher: profile.Matcher,
		kind:    profile.Kind,
		reg:     source.NewRegistry(),
		builder: calltree.NewBuilder(profile, rep),
		rep:     rep,
	}
}

// Line processes one log line. lineNo is 1-based and only used for
// diagnostics. It returns the event the line was classified as.
func (p *Processor) Line(text string, lineNo uint32) dialect.EventKind {
	p.stats.Lines++
	ev := p.matcher.Classify(text)
	switch ev.Kind {
	case dialect.EventEnter:
		p.stats.Enters++
		p.counter.Add(ev.Fragment)
		file, line, ok := p.matcher.SplitLocation(ev.Fragment)
		if !ok {
			p.malformed(ev.Fragment, lineNo)
			p.builder.Skip()
			break
		}
		p.builder.Enter(p.reg.Intern(file, line), lineNo)
	case dialect.EventBacktrace:
		if _, _, ok := p.matcher.SplitLocation(ev.Fragment); !ok {
			p.malformed(ev.Fragment, lineNo)
			break
		}
		p.stats.Backtraces++
		p.builder.Backtrace()
	case dialect.EventExit:
		p.stats.Exits++
		p.builder.Exit(lineNo)
	}
	return ev.Kind
}

func (p *Processor) malformed(fragment string, lineNo uint32) {
	p.stats.Malformed++
	p.rep.Report(diag.ParseMalformedLocation, diag.SevWarning, lineNo,
		fmt.Sprintf("cannot split %q into file and line", fragment))
}

// Enters returns the number of enter events seen so far.
func (p *Processor) Enters() int { return p.stats.Enters }

// finishTree closes the builder and returns a result without a graph.
func (p *Processor) finishTree() *Result {
	if p.done {
		panic("postprocess: processor finished twice")
	}
	p.done = true
	tree := p.builder.Finish()
	p.stats.Tree = p.builder.Stats()
	return &Result{
		Dialect:   p.kind,
		Frequency: p.counter.Table(),
		Registry:  p.reg,
		Tree:      tree,
		Stats:     p.stats,
	}
}

// Finish ends the input, aggregates the call graph and returns the result.
// The processor must not be used afterwards.
func (p *Processor) Finish() *Result {
	res := p.finishTree()
	res.Graph = callgraph.Aggregate(res.Tree)
	return res
}
