package postprocess

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"tmplprof/internal/callgraph"
	"tmplprof/internal/diag"
	"tmplprof/internal/dialect"
	"tmplprof/internal/observ"
	"tmplprof/internal/source"
	"tmplprof/internal/trace"
)

const (
	// DefaultDetectLines is how many leading lines auto-detection looks at.
	DefaultDetectLines = 2000
	// DefaultMaxDiagnostics caps the diagnostics bag of one run.
	DefaultMaxDiagnostics = 256

	cancelCheckEvery   = 1024
	progressEveryLines = 8192
)

// ErrDialectUnknown is returned when auto-detection cannot pick a dialect.
var ErrDialectUnknown = errors.New("cannot detect compiler dialect")

// DetectError carries the classification that failed.
type DetectError struct {
	Input          string
	Classification dialect.Classification
}

func (e *DetectError) Error() string {
	c := e.Classification
	if c.Ambiguous {
		return fmt.Sprintf("%s: %s: %s and %s match equally (score %d); pass --compiler",
			e.Input, ErrDialectUnknown, c.Leader, c.RunnerUp, c.Score)
	}
	return fmt.Sprintf("%s: %s: no enter/exit/backtrace line found; pass --compiler", e.Input, ErrDialectUnknown)
}

func (e *DetectError) Unwrap() error { return ErrDialectUnknown }

// Progress is reported while an input is consumed.
type Progress struct {
	Input  string
	Lines  int
	Bytes  int64
	Size   int64 // 0 when unknown
	Enters int
	Done   bool
}

// Options configure Run.
type Options struct {
	// Input labels diagnostics, trace spans and progress events.
	Input string
	// Dialect selects the compiler; Unknown means detect from the log head.
	Dialect dialect.Kind
	// DetectLines bounds detection; DefaultDetectLines when <= 0.
	DetectLines int
	// NoCallGraph skips aggregation; Result.Graph stays nil.
	NoCallGraph bool
	// MaxDiagnostics caps Result.Bag; DefaultMaxDiagnostics when <= 0.
	MaxDiagnostics int
	// Size is the input size in bytes for progress reporting.
	Size int64
	// Progress, when set, is called periodically from the reading goroutine.
	Progress func(Progress)
	// Timer, when set, records read/aggregate phases.
	Timer *observ.Timer
}

type bufferedLine struct {
	text string
	no   uint32
}

// Run reads r once and returns the post-processed result. The tracer in ctx
// receives one input span with read and aggregate phases.
func Run(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	if opts.DetectLines <= 0 {
		opts.DetectLines = DefaultDetectLines
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = DefaultMaxDiagnostics
	}

	ctx, span := trace.Start(ctx, trace.ScopeInput, "input:"+opts.Input)
	defer span.End("")

	bag := diag.NewBag(opts.MaxDiagnostics)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	lr := source.NewLineReader(r)

	readIdx := opts.Timer.Begin("read")
	_, readSpan := trace.Start(ctx, trace.ScopePhase, "read")

	kind := opts.Dialect
	var head []bufferedLine
	var detection *dialect.Classification
	if kind == dialect.Unknown {
		var err error
		head, err = readHead(lr, opts.DetectLines)
		if err != nil {
			readSpan.End("error")
			return nil, fmt.Errorf("%s: %w", opts.Input, err)
		}
		lines := make([]string, len(head))
		for i, l := range head {
			lines[i] = l.text
		}
		c := dialect.Detect(lines)
		if c.Kind == dialect.Unknown {
			readSpan.End("dialect unknown")
			return nil, &DetectError{Input: opts.Input, Classification: c}
		}
		kind = c.Kind
		detection = &c
		rep.Report(diag.DialectInfo, diag.SevInfo, 0,
			fmt.Sprintf("detected %s (confidence %.2f, %d signals)", c.Kind, c.Confidence, c.ObservedSignals))
	}

	profile, err := dialect.ProfileFor(kind)
	if err != nil {
		readSpan.End("error")
		return nil, err
	}
	proc := NewProcessor(profile, rep)

	emit := func(done bool) {
		if opts.Progress == nil {
			return
		}
		opts.Progress(Progress{
			Input:  opts.Input,
			Lines:  proc.stats.Lines,
			Bytes:  lr.Offset(),
			Size:   opts.Size,
			Enters: proc.Enters(),
			Done:   done,
		})
	}

	for _, l := range head {
		proc.Line(l.text, l.no)
	}
	for lr.Next() {
		n := lr.LineNo()
		proc.Line(lr.Text(), n)
		if n%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				readSpan.End("canceled")
				return nil, err
			}
		}
		if n%progressEveryLines == 0 {
			emit(false)
		}
	}
	if err := lr.Err(); err != nil {
		readSpan.End("error")
		return nil, fmt.Errorf("%s: line %d: %w", opts.Input, lr.LineNo()+1, err)
	}
	if lr.HadBOM() {
		rep.Report(diag.ParseInfo, diag.SevInfo, 1, "UTF-8 byte order mark removed")
	}

	res := proc.finishTree()
	readSpan.WithExtra("lines", strconv.Itoa(res.Stats.Lines)).
		WithExtra("enters", strconv.Itoa(res.Stats.Enters)).
		End(kind.String())
	opts.Timer.End(readIdx, fmt.Sprintf("%d lines", res.Stats.Lines))

	if !opts.NoCallGraph {
		aggIdx := opts.Timer.Begin("aggregate")
		_, aggSpan := trace.Start(ctx, trace.ScopePhase, "aggregate")
		res.Graph = callgraph.Aggregate(res.Tree)
		aggSpan.WithExtra("locations", strconv.Itoa(res.Graph.Len())).End("")
		opts.Timer.End(aggIdx, fmt.Sprintf("%d locations", res.Graph.Len()))
	}

	emit(true)
	bag.Sort()
	res.Input = opts.Input
	res.Detection = detection
	res.Bag = bag
	return res, nil
}

func readHead(lr *source.LineReader, limit int) ([]bufferedLine, error) {
	head := make([]bufferedLine, 0, min(limit, 256))
	for len(head) < limit && lr.Next() {
		head = append(head, bufferedLine{text: lr.Text(), no: lr.LineNo()})
	}
	return head, lr.Err()
}

// Detect classifies the first limit lines of r without processing the rest.
func Detect(r io.Reader, limit int) (dialect.Classification, error) {
	if limit <= 0 {
		limit = DefaultDetectLines
	}
	head, err := readHead(source.NewLineReader(r), limit)
	if err != nil {
		return dialect.Classification{}, err
	}
	ev := dialect.NewEvidence()
	for _, l := range head {
		ev.Observe(l.text, l.no)
	}
	return dialect.Classifier{}.Classify(ev), nil
}
