// Package driver post-processes several compiler logs concurrently.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"tmplprof/internal/diag"
	"tmplprof/internal/observ"
	"tmplprof/internal/postprocess"
	"tmplprof/internal/source"
	"tmplprof/internal/trace"
)

// Request describes one batch of inputs.
type Request struct {
	Files []string
	// Jobs bounds concurrent inputs; GOMAXPROCS when <= 0.
	Jobs int
	// Options is the template for every input. Input, Size, Progress and
	// Timer are filled per file.
	Options postprocess.Options
	// Timings gives every input its own observ.Timer.
	Timings  bool
	Progress ProgressSink
}

// FileResult is the outcome of one input. Exactly one of Result and Err is set.
type FileResult struct {
	Path   string
	Result *postprocess.Result
	Timer  *observ.Timer
	// Bag is Result.Bag, or a single error diagnostic when the input failed.
	Bag *diag.Bag
	Err error
}

// ProcessFile opens path and runs the post-processor over it.
func ProcessFile(ctx context.Context, path string, opts postprocess.Options) (*postprocess.Result, error) {
	log, err := source.OpenLog(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = log.Close() }()

	if opts.Input == "" {
		opts.Input = path
	}
	opts.Size = log.Size
	return postprocess.Run(ctx, log.Reader(), opts)
}

// Process runs every file of req. A failing input does not stop the others;
// its error is kept in the FileResult. The returned error is non-nil only
// when ctx was canceled.
func Process(ctx context.Context, req *Request) ([]FileResult, error) {
	if req == nil {
		return nil, fmt.Errorf("missing request")
	}
	results := make([]FileResult, len(req.Files))
	if len(req.Files) == 0 {
		return results, nil
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "postprocess")
	defer span.WithExtra("inputs", strconv.Itoa(len(req.Files))).End("")

	var sink ProgressSink = FuncSink(nil)
	if req.Progress != nil {
		sink = req.Progress
	}
	for _, path := range req.Files {
		sink.Emit(Event{Input: path, Status: StatusQueued})
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))

	for i, path := range req.Files {
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				results[i] = FileResult{Path: path, Err: gctx.Err()}
				return gctx.Err()
			default:
			}

			opts := req.Options
			opts.Input = path
			if req.Timings {
				opts.Timer = observ.NewTimer(path)
			}
			opts.Progress = func(p postprocess.Progress) {
				if p.Done {
					return
				}
				sink.Emit(Event{
					Input: path, Status: StatusReading,
					Bytes: p.Bytes, Size: p.Size, Lines: p.Lines, Enters: p.Enters,
				})
			}
			sink.Emit(Event{Input: path, Status: StatusReading})

			res, err := ProcessFile(gctx, path, opts)
			// индекс i уникален для горутины, мьютекс не нужен
			results[i] = FileResult{Path: path, Result: res, Timer: opts.Timer, Err: err}
			if err != nil {
				sink.Emit(Event{Input: path, Status: StatusError, Err: err})
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				results[i].Bag = errorBag(err)
				return nil
			}
			results[i].Bag = res.Bag
			sink.Emit(Event{
				Input: path, Status: StatusDone,
				Lines: res.Stats.Lines, Enters: res.Stats.Enters,
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func errorBag(err error) *diag.Bag {
	bag := diag.NewBag(1)
	var de *postprocess.DetectError
	switch {
	case errors.As(err, &de) && de.Classification.Ambiguous:
		bag.Add(diag.New(diag.SevError, diag.DialectAmbiguous, 0, err.Error()))
	case errors.As(err, &de):
		bag.Add(diag.New(diag.SevError, diag.DialectUnknown, 0, err.Error()))
	default:
		bag.Add(diag.New(diag.SevError, diag.IOLoadFileError, 0, "failed to load file: "+err.Error()))
	}
	return bag
}
