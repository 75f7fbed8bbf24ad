package dialect

import (
	"regexp"
	"strconv"
	"strings"
)

// EventKind classifies one log line.
type EventKind uint8

const (
	EventNone      EventKind = iota // no pattern matched
	EventEnter                      // an instantiation starts
	EventExit                       // an instantiation ends
	EventBacktrace                  // one frame of the compiler's instantiation backtrace
)

func (k EventKind) String() string {
	switch k {
	case EventEnter:
		return "enter"
	case EventExit:
		return "exit"
	case EventBacktrace:
		return "backtrace"
	default:
		return "none"
	}
}

// Event is the result of classifying a line. Fragment is the location text
// exactly as the compiler printed it; it is set for enter and backtrace events.
type Event struct {
	Kind     EventKind
	Fragment string
}

// Matcher classifies lines of one compiler dialect. It is immutable and safe
// for concurrent use.
type Matcher struct {
	enter     *regexp.Regexp
	exit      *regexp.Regexp
	backtrace *regexp.Regexp
	split     *regexp.Regexp

	// Cheap substring prefilters: a line containing neither marker cannot match.
	eventMarker     string
	backtraceMarker string
}

type patternSet struct {
	enter, exit, backtrace, split string
	eventMarker, backtraceMarker  string
}

var patternSets = [kindCount]patternSet{
	MSVC: {
		enter:           `^(.*?)\s*: warning C4150: deletion of pointer to incomplete type 'template_profiler::incomplete_enter'; no destructor called$`,
		exit:            `^(.*?)\s*: warning C4150: deletion of pointer to incomplete type 'template_profiler::incomplete_exit'; no destructor called$`,
		backtrace:       `^        (.*?\(\d+(?:,\d+)?\))\s*: see reference to .*$`,
		split:           `^(.*)\((\d+)(?:,\d+)?\)$`,
		eventMarker:     "template_profiler::incomplete_",
		backtraceMarker: "see reference to",
	},
	GCC: {
		enter:           `^(.*?): warning: .+int template_profiler::enter\(int\).*$`,
		exit:            `^(.*?): warning: .+int template_profiler::exit\(int\).*$`,
		backtrace:       `^(.*?:\d+(?::\d+)?):   (?:instantiated|required) from .*$`,
		split:           `^(.*?):(\d+)(?::\d+)?$`,
		eventMarker:     "template_profiler::",
		backtraceMarker: " from ",
	},
	GCCLegacy: {
		enter:           `^(.*?): warning: division by zero in .template_profiler::enter_value / 0.$`,
		exit:            `^(.*?): warning: division by zero in .template_profiler::exit_value / 0.$`,
		backtrace:       `^(.*?:\d+(?::\d+)?):   (?:instantiated|required) from .*$`,
		split:           `^(.*?):(\d+)(?::\d+)?$`,
		eventMarker:     "template_profiler::",
		backtraceMarker: " from ",
	},
}

func compileMatcher(ps patternSet) *Matcher {
	return &Matcher{
		enter:           regexp.MustCompile(ps.enter),
		exit:            regexp.MustCompile(ps.exit),
		backtrace:       regexp.MustCompile(ps.backtrace),
		split:           regexp.MustCompile(ps.split),
		eventMarker:     ps.eventMarker,
		backtraceMarker: ps.backtraceMarker,
	}
}

// Classify returns exactly one event for line. Enter is tried first, then
// backtrace, then exit.
func (m *Matcher) Classify(line string) Event {
	hasEvent := strings.Contains(line, m.eventMarker)
	if hasEvent {
		if sub := m.enter.FindStringSubmatch(line); sub != nil {
			return Event{Kind: EventEnter, Fragment: sub[1]}
		}
	}
	if strings.Contains(line, m.backtraceMarker) {
		if sub := m.backtrace.FindStringSubmatch(line); sub != nil {
			return Event{Kind: EventBacktrace, Fragment: sub[1]}
		}
	}
	if hasEvent && m.exit.MatchString(line) {
		return Event{Kind: EventExit}
	}
	return Event{}
}

// SplitLocation splits a fragment into file and line number. ok is false when
// the fragment does not have the dialect's file/line shape or the line number
// does not fit in uint32; such events must be skipped by the caller.
func (m *Matcher) SplitLocation(fragment string) (file string, line uint32, ok bool) {
	sub := m.split.FindStringSubmatch(fragment)
	if sub == nil || sub[1] == "" {
		return "", 0, false
	}
	n, err := strconv.ParseUint(sub[2], 10, 32)
	if err != nil {
		return "", 0, false
	}
	return sub[1], uint32(n), true
}
