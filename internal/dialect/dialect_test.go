package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	msvcEnter = "a.cpp(10) : warning C4150: deletion of pointer to incomplete type 'template_profiler::incomplete_enter'; no destructor called"
	msvcExit  = "a.cpp(10) : warning C4150: deletion of pointer to incomplete type 'template_profiler::incomplete_exit'; no destructor called"
	msvcFrame = "        b.cpp(20) : see reference to class template instantiation 'X<int>' being compiled"

	gccEnter = "a.cpp:10:5: warning: unused variable 'x' in int template_profiler::enter(int) [-Wunused]"
	gccExit  = "a.cpp:12:5: warning: unused variable 'x' in int template_profiler::exit(int) [-Wunused]"
	gccFrame = "b.cpp:20:7:   required from 'struct X<int>'"

	legacyEnter = "a.cpp:10: warning: division by zero in 'template_profiler::enter_value / 0'"
	legacyExit  = "a.cpp:12: warning: division by zero in 'template_profiler::exit_value / 0'"
	legacyFrame = "b.cpp:20:   instantiated from 'X<int>'"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		line     string
		wantKind EventKind
		wantFrag string
	}{
		{"msvc enter", MSVC, msvcEnter, EventEnter, "a.cpp(10)"},
		{"msvc exit", MSVC, msvcExit, EventExit, ""},
		{"msvc frame", MSVC, msvcFrame, EventBacktrace, "b.cpp(20)"},
		{"msvc frame with column", MSVC, "        c.h(7,3): see reference to function template instantiation 'f<int>'", EventBacktrace, "c.h(7,3)"},
		{"msvc noise", MSVC, "Compiling...", EventNone, ""},
		{"gcc enter", GCC, gccEnter, EventEnter, "a.cpp:10:5"},
		{"gcc exit", GCC, gccExit, EventExit, ""},
		{"gcc frame", GCC, gccFrame, EventBacktrace, "b.cpp:20:7"},
		{"gcc old frame", GCC, "b.cpp:20:   instantiated from here", EventBacktrace, "b.cpp:20"},
		{"gcc noise", GCC, "In file included from main.cpp:1:", EventNone, ""},
		{"legacy enter", GCCLegacy, legacyEnter, EventEnter, "a.cpp:10"},
		{"legacy exit", GCCLegacy, legacyExit, EventExit, ""},
		{"legacy frame", GCCLegacy, legacyFrame, EventBacktrace, "b.cpp:20"},
		{"msvc line under gcc", GCC, msvcEnter, EventNone, ""},
		{"gcc line under msvc", MSVC, gccEnter, EventNone, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := MustProfile(tt.kind).Matcher.Classify(tt.line)
			assert.Equal(t, tt.wantKind, ev.Kind)
			assert.Equal(t, tt.wantFrag, ev.Fragment)
		})
	}
}

func TestSplitLocation(t *testing.T) {
	tests := []struct {
		kind     Kind
		fragment string
		file     string
		line     uint32
		ok       bool
	}{
		{MSVC, "a.cpp(10)", "a.cpp", 10, true},
		{MSVC, `C:\src\a b.cpp(7,12)`, `C:\src\a b.cpp`, 7, true},
		{MSVC, "a.cpp", "", 0, false},
		{MSVC, "a.cpp(x)", "", 0, false},
		{MSVC, "(10)", "", 0, false},
		{MSVC, "a.cpp(99999999999)", "", 0, false},
		{GCC, "a.cpp:10", "a.cpp", 10, true},
		{GCC, "a.cpp:10:5", "a.cpp", 10, true},
		{GCC, `C:\src\a.cpp:10:5`, `C:\src\a.cpp`, 10, true},
		{GCC, "a.cpp", "", 0, false},
		{GCCLegacy, "dir/b.hpp:3", "dir/b.hpp", 3, true},
	}
	for _, tt := range tests {
		file, line, ok := MustProfile(tt.kind).Matcher.SplitLocation(tt.fragment)
		if ok != tt.ok || file != tt.file || line != tt.line {
			t.Errorf("%s SplitLocation(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tt.kind, tt.fragment, file, line, ok, tt.file, tt.line, tt.ok)
		}
	}
}

func TestProfilesPolicies(t *testing.T) {
	assert.Equal(t, CommitDeferred, MustProfile(MSVC).Commit)
	assert.Equal(t, DepthDecrement, MustProfile(MSVC).ExitDepth)
	for _, k := range []Kind{GCC, GCCLegacy} {
		assert.Equal(t, CommitImmediate, MustProfile(k).Commit, k.String())
		assert.Equal(t, DepthReset, MustProfile(k).ExitDepth, k.String())
	}
	_, err := ProfileFor(Unknown)
	require.Error(t, err)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"":           Unknown,
		"auto":       Unknown,
		"MSVC":       MSVC,
		"gcc":        GCC,
		"gcc-legacy": GCCLegacy,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("clang")
	require.Error(t, err)

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("gcc")))
	assert.Equal(t, GCC, k)
	b, err := Unknown.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "auto", string(b))
}

func TestDetect(t *testing.T) {
	c := Detect([]string{"noise", msvcEnter, msvcFrame, msvcExit})
	assert.Equal(t, MSVC, c.Kind)
	assert.False(t, c.Ambiguous)
	assert.InDelta(t, 1.0, c.Confidence, 1e-9)

	c = Detect([]string{gccFrame, gccEnter, gccExit})
	assert.Equal(t, GCC, c.Kind)
	assert.Equal(t, GCCLegacy, c.RunnerUp)
	assert.Equal(t, 1, c.RunnerUpScore)

	c = Detect([]string{legacyFrame, legacyEnter})
	assert.Equal(t, GCCLegacy, c.Kind)
}

func TestDetectAmbiguousAndEmpty(t *testing.T) {
	// Backtrace frames alone fit both gcc flavours equally.
	c := Detect([]string{gccFrame, legacyFrame})
	assert.True(t, c.Ambiguous)
	assert.Equal(t, Unknown, c.Kind)
	assert.Equal(t, GCC, c.Leader)
	assert.Equal(t, GCCLegacy, c.RunnerUp)

	c = Detect([]string{"nothing here"})
	assert.Equal(t, Unknown, c.Kind)
	assert.False(t, c.Ambiguous)
}
