package postprocess

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmplprof/internal/calltree"
	"tmplprof/internal/diag"
	"tmplprof/internal/dialect"
	"tmplprof/internal/freq"
	"tmplprof/internal/observ"
	"tmplprof/internal/source"
	"tmplprof/internal/testkit"
	"tmplprof/internal/trace"
)

func msvcEnter(loc string) string {
	return loc + " : warning C4150: deletion of pointer to incomplete type 'template_profiler::incomplete_enter'; no destructor called"
}

func msvcExit(loc string) string {
	return loc + " : warning C4150: deletion of pointer to incomplete type 'template_profiler::incomplete_exit'; no destructor called"
}

func msvcFrame(loc string) string {
	return "        " + loc + " : see reference to class template instantiation 'X<int>' being compiled"
}

func gccEnter(loc string) string {
	return loc + ": warning: unused variable in int template_profiler::enter(int) [-Wunused]"
}

func gccExit(loc string) string {
	return loc + ": warning: unused variable in int template_profiler::exit(int) [-Wunused]"
}

func gccFrame(loc string) string {
	return loc + ":   required from 'struct X<int>'"
}

func run(t *testing.T, kind dialect.Kind, lines ...string) *Result {
	t.Helper()
	res, err := Run(context.Background(), strings.NewReader(strings.Join(lines, "\n")+"\n"), Options{
		Input:   "build.log",
		Dialect: kind,
	})
	require.NoError(t, err)
	require.NoError(t, testkit.CheckTree(res.Tree))
	require.NoError(t, testkit.CheckGraph(res.Graph, res.Tree))
	require.NoError(t, testkit.CheckRegistry(res.Registry))
	return res
}

func loc(t *testing.T, res *Result, file string, line uint32) source.LocationID {
	t.Helper()
	id, ok := res.Registry.Find(file, line)
	require.True(t, ok, "%s(%d) not interned", file, line)
	return id
}

func TestEndToEndNesting(t *testing.T) {
	res := run(t, dialect.MSVC,
		msvcEnter("a.cpp(10)"),
		msvcEnter("a.cpp(20)"),
		msvcExit("a.cpp(20)"),
		msvcExit("a.cpp(10)"),
	)

	a10, a20 := loc(t, res, "a.cpp", 10), loc(t, res, "a.cpp", 20)

	root := res.Tree.Root()
	require.Len(t, root.Children, 1)
	first := res.Tree.Node(root.Children[0])
	assert.Equal(t, a10, first.Loc)
	require.Len(t, first.Children, 1)
	assert.Equal(t, a20, res.Tree.Node(first.Children[0]).Loc)

	r, ok := res.Graph.Record(a10)
	require.True(t, ok)
	assert.Equal(t, 1, r.Count)
	assert.Equal(t, 1, r.TotalWithChildren)
	assert.Equal(t, map[source.LocationID]int{a20: 1}, r.Children)

	assert.Equal(t, 2, res.Frequency.Total)
	assert.Equal(t, 4, res.Stats.Lines)
	assert.Equal(t, 2, res.Stats.Exits)
	assert.Zero(t, res.Bag.Len())
}

func TestFlatReportCountsVerbatim(t *testing.T) {
	res := run(t, dialect.MSVC,
		msvcEnter("a.cpp(10)"),
		msvcExit("a.cpp(10)"),
		msvcEnter("a.cpp(10)"),
		msvcExit("a.cpp(10)"),
	)
	require.Len(t, res.Frequency.Rows, 1)
	assert.Equal(t, freq.Row{Location: "a.cpp(10)", Count: 2, Cumulative: 2}, res.Frequency.Rows[0])
	assert.Equal(t, 2, res.Frequency.Total)
	assert.Equal(t, 2, res.Graph.Count(loc(t, res, "a.cpp", 10)))
}

func TestDialectsAgree(t *testing.T) {
	msvc := run(t, dialect.MSVC,
		"Compiling main.cpp",
		msvcEnter("a.cpp(10)"),
		msvcFrame("main.cpp(3)"),
		msvcEnter("b.hpp(7)"),
		msvcFrame("a.cpp(10)"),
		msvcFrame("main.cpp(3)"),
		msvcExit("b.hpp(7)"),
		msvcEnter("b.hpp(7)"),
		msvcExit("b.hpp(7)"),
		msvcExit("a.cpp(10)"),
	)
	gcc := run(t, dialect.GCC,
		"In file included from main.cpp:1:",
		gccFrame("main.cpp:3:1"),
		gccEnter("a.cpp:10:5"),
		gccFrame("a.cpp:10:5"),
		gccFrame("main.cpp:3:1"),
		gccEnter("b.hpp:7:2"),
		gccExit("b.hpp:7:2"),
		gccEnter("b.hpp:7:2"),
		gccExit("b.hpp:7:2"),
		gccExit("a.cpp:10:5"),
	)

	for _, res := range []*Result{msvc, gcc} {
		a, b := loc(t, res, "a.cpp", 10), loc(t, res, "b.hpp", 7)
		ra, _ := res.Graph.Record(a)
		rb, _ := res.Graph.Record(b)
		assert.Equal(t, 1, ra.Count, res.Dialect.String())
		assert.Equal(t, 2, ra.TotalWithChildren, res.Dialect.String())
		assert.Equal(t, 2, rb.Count, res.Dialect.String())
		assert.Equal(t, map[source.LocationID]int{a: 2}, rb.Parents, res.Dialect.String())
		assert.Equal(t, uint32(2), res.Tree.MaxDepth())
	}
	assert.Equal(t, "b.hpp(7)", msvc.Frequency.Rows[0].Location)
	assert.Equal(t, "b.hpp:7:2", gcc.Frequency.Rows[0].Location)
}

func TestMalformedLocationIsSkipped(t *testing.T) {
	res := run(t, dialect.MSVC,
		msvcEnter("a.cpp(10)"),
		msvcEnter("no-line-here"),
		msvcEnter("b.hpp(7)"),
		msvcExit("b.hpp(7)"),
		msvcExit("no-line-here"),
		msvcExit("a.cpp(10)"),
	)
	assert.Equal(t, 1, res.Stats.Malformed)
	assert.Equal(t, 1, res.Stats.Tree.Skipped)
	assert.Equal(t, 2, res.Registry.Len()-1)
	assert.Equal(t, 3, res.Frequency.Total, "flat report keeps the verbatim text")
	assert.Zero(t, res.Stats.Tree.ExtraExits)
	assert.Zero(t, res.Stats.Tree.Unterminated)

	require.Equal(t, 1, res.Bag.Len())
	d := res.Bag.Items()[0]
	assert.Equal(t, diag.ParseMalformedLocation, d.Code)
	assert.Equal(t, uint32(2), d.Line)

	b, _ := res.Graph.Record(loc(t, res, "b.hpp", 7))
	assert.Equal(t, map[source.LocationID]int{loc(t, res, "a.cpp", 10): 1}, b.Parents)
}

func TestUnbalancedInputIsTolerated(t *testing.T) {
	res := run(t, dialect.MSVC,
		msvcExit("x.cpp(1)"),
		msvcEnter("a.cpp(10)"),
		msvcEnter("a.cpp(20)"),
	)
	assert.Equal(t, 1, res.Stats.Tree.ExtraExits)
	assert.Equal(t, 2, res.Stats.Tree.Unterminated)

	a10 := loc(t, res, "a.cpp", 10)
	r, _ := res.Graph.Record(a10)
	assert.Equal(t, map[source.LocationID]int{loc(t, res, "a.cpp", 20): 1}, r.Children)

	codes := res.Bag.CountByCode()
	assert.Equal(t, 1, codes[diag.TreeExtraExit])
	assert.Equal(t, 1, codes[diag.TreeUnterminated])
}

func TestAutoDetect(t *testing.T) {
	in := strings.Join([]string{
		gccFrame("main.cpp:3:1"),
		gccEnter("a.cpp:10:5"),
		gccExit("a.cpp:10:5"),
	}, "\r\n")
	res, err := Run(context.Background(), strings.NewReader("\ufeff"+in), Options{Input: "gcc.log", DetectLines: 2})
	require.NoError(t, err)
	assert.Equal(t, dialect.GCC, res.Dialect)
	require.NotNil(t, res.Detection)
	assert.Equal(t, dialect.GCC, res.Detection.Kind)
	assert.Equal(t, 3, res.Stats.Lines, "detection lines are replayed")
	assert.Equal(t, 1, res.Graph.Len())

	codes := res.Bag.CountByCode()
	assert.Equal(t, 1, codes[diag.DialectInfo])
	assert.Equal(t, 1, codes[diag.ParseInfo])
}

func TestAutoDetectFails(t *testing.T) {
	_, err := Run(context.Background(), strings.NewReader("nothing\nto see\n"), Options{Input: "empty.log"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDialectUnknown))
	var de *DetectError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "empty.log", de.Input)
	assert.False(t, de.Classification.Ambiguous)
}

func TestNoCallGraph(t *testing.T) {
	res, err := Run(context.Background(), strings.NewReader(msvcEnter("a.cpp(1)")+"\n"), Options{
		Dialect:     dialect.MSVC,
		NoCallGraph: true,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Graph)
	assert.Equal(t, 1, res.Frequency.Total)
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := strings.Repeat("noise\n", cancelCheckEvery*2)
	_, err := Run(ctx, strings.NewReader(in), Options{Dialect: dialect.GCC})
	require.ErrorIs(t, err, context.Canceled)
}

func TestProgressTimerAndTrace(t *testing.T) {
	var events []Progress
	timer := observ.NewTimer("p.log")
	ring := trace.NewRingTracer(64, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)

	in := strings.Repeat(msvcEnter("a.cpp(1)")+"\n"+msvcExit("a.cpp(1)")+"\n", progressEveryLines)
	res, err := Run(ctx, strings.NewReader(in), Options{
		Input:    "p.log",
		Dialect:  dialect.MSVC,
		Size:     int64(len(in)),
		Progress: func(p Progress) { events = append(events, p) },
		Timer:    timer,
	})
	require.NoError(t, err)
	assert.Equal(t, progressEveryLines, res.Frequency.Total)

	require.Len(t, events, 3)
	last := events[len(events)-1]
	assert.True(t, last.Done)
	assert.Equal(t, 2*progressEveryLines, last.Lines)
	assert.Equal(t, int64(len(in)), last.Bytes)

	phases := timer.Report().Phases
	require.Len(t, phases, 2)
	assert.Equal(t, "read", phases[0].Name)
	assert.Equal(t, "aggregate", phases[1].Name)

	names := map[string]int{}
	for _, ev := range ring.Snapshot() {
		names[ev.Name]++
	}
	assert.Equal(t, 2, names["input:p.log"])
	assert.Equal(t, 2, names["read"])
	assert.Equal(t, 2, names["aggregate"])
}

func TestProcessorIsPure(t *testing.T) {
	p := NewProcessor(dialect.MustProfile(dialect.GCC), nil)
	assert.Equal(t, dialect.EventBacktrace, p.Line(gccFrame("m.cpp:1"), 1))
	assert.Equal(t, dialect.EventEnter, p.Line(gccEnter("a.cpp:2"), 2))
	assert.Equal(t, dialect.EventNone, p.Line("noise", 3))
	assert.Equal(t, dialect.EventExit, p.Line(gccExit("a.cpp:2"), 4))
	res := p.Finish()
	assert.Equal(t, 1, res.Graph.Len())
	assert.Equal(t, calltree.Stats{Enters: 1, Exits: 1, Backtraces: 1, Nodes: 1, MaxDepth: 1}, res.Stats.Tree)
	assert.Panics(t, func() { p.Finish() })
}

func TestDetect(t *testing.T) {
	c, err := Detect(strings.NewReader(msvcEnter("a.cpp(1)")+"\n"+msvcExit("a.cpp(1)")+"\n"), 0)
	require.NoError(t, err)
	assert.Equal(t, dialect.MSVC, c.Kind)
	assert.Equal(t, 2, c.ObservedSignals)
}
