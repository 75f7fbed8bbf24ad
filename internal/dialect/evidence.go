package dialect

// Hint is a small piece of evidence suggesting a particular dialect.
type Hint struct {
	Dialect Kind
	Score   int
	Reason  string
	Line    uint32
}

const (
	scoreEvent     = 4 // enter/exit markers are compiler specific
	scoreBacktrace = 1 // gcc and gcc-legacy share the backtrace shape
)

// Evidence aggregates hints collected from the head of a log.
type Evidence struct {
	hints []Hint
}

// NewEvidence creates a new Evidence container.
func NewEvidence() *Evidence {
	return &Evidence{
		hints: make([]Hint, 0, 16),
	}
}

// Add appends a hint to the evidence collection.
func (e *Evidence) Add(h Hint) {
	if e == nil {
		return
	}
	e.hints = append(e.hints, h)
}

// Hints returns the collected hints.
func (e *Evidence) Hints() []Hint {
	if e == nil {
		return nil
	}
	return e.hints
}

// Observe runs every dialect's matcher over line and records a hint for each
// dialect that recognises it.
func (e *Evidence) Observe(line string, lineNo uint32) {
	if e == nil {
		return
	}
	for _, k := range Kinds() {
		ev := profiles[k].Matcher.Classify(line)
		switch ev.Kind {
		case EventEnter, EventExit:
			e.Add(Hint{Dialect: k, Score: scoreEvent, Reason: ev.Kind.String() + " marker", Line: lineNo})
		case EventBacktrace:
			e.Add(Hint{Dialect: k, Score: scoreBacktrace, Reason: "backtrace frame", Line: lineNo})
		}
	}
}
