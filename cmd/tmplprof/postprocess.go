package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tmplprof/internal/config"
	"tmplprof/internal/diag"
	"tmplprof/internal/dialect"
	"tmplprof/internal/driver"
	"tmplprof/internal/observ"
	"tmplprof/internal/postprocess"
	"tmplprof/internal/report"
	"tmplprof/internal/testkit"
)

type postprocessOptions struct {
	compiler        dialect.Kind
	format          report.Format
	output          string
	outputDir       string
	top             int
	detectLines     int
	maxDiagnostics  int
	jobs            int
	noCallGraph     bool
	verbose         bool
	checkInvariants bool
	timings         bool
	quiet           bool
	ui              uiMode
}

func newPostprocessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "postprocess <input>...",
		Short: "Build frequency tables and call graphs from compiler logs",
		Long: `postprocess reads compiler warning logs of an instrumented build and reports,
for every template instantiation site, how often it was instantiated and from where.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runPostprocess,
	}
	f := cmd.Flags()
	f.StringP("output", "o", "", "output file for a single input (\"-\" for stdout)")
	f.String("output-dir", "", "directory for derived report files")
	f.StringP("compiler", "c", "auto", "compiler dialect (msvc|gcc|gcc-legacy|auto)")
	f.StringP("format", "f", "text", "report format (text|json|yaml|msgpack|mermaid)")
	f.Int("top", 0, "keep only the first N call-graph entries (0 = all)")
	f.Int("detect-lines", postprocess.DefaultDetectLines, "lines inspected by dialect auto-detection")
	f.Int("jobs", runtime.GOMAXPROCS(0), "inputs processed concurrently")
	f.Bool("no-call-graph", false, "skip call-graph aggregation")
	f.BoolP("verbose", "v", false, "print data-quality diagnostics")
	f.Bool("check-invariants", false, "verify tree and graph invariants after each input")
	f.String("ui", "auto", "progress UI (auto|on|off)")
	return cmd
}

func readPostprocessOptions(cmd *cobra.Command, cfg config.Config) (postprocessOptions, error) {
	opts := postprocessOptions{
		compiler:    cfg.Postprocess.Compiler,
		format:      cfg.Postprocess.Format,
		top:         cfg.Postprocess.Top,
		detectLines: cfg.Postprocess.DetectLines,
		outputDir:   cfg.Output.Dir,
	}
	f := cmd.Flags()
	var err error

	if f.Changed("compiler") {
		s, err := f.GetString("compiler")
		if err != nil {
			return opts, fmt.Errorf("failed to get compiler flag: %w", err)
		}
		if opts.compiler, err = dialect.ParseKind(s); err != nil {
			return opts, err
		}
	}
	if f.Changed("format") {
		s, err := f.GetString("format")
		if err != nil {
			return opts, fmt.Errorf("failed to get format flag: %w", err)
		}
		if opts.format, err = report.ParseFormat(s); err != nil {
			return opts, err
		}
	}
	if f.Changed("top") {
		if opts.top, err = f.GetInt("top"); err != nil {
			return opts, fmt.Errorf("failed to get top flag: %w", err)
		}
	}
	if f.Changed("detect-lines") {
		if opts.detectLines, err = f.GetInt("detect-lines"); err != nil {
			return opts, fmt.Errorf("failed to get detect-lines flag: %w", err)
		}
	}
	if f.Changed("output-dir") {
		if opts.outputDir, err = f.GetString("output-dir"); err != nil {
			return opts, fmt.Errorf("failed to get output-dir flag: %w", err)
		}
	}
	if opts.output, err = f.GetString("output"); err != nil {
		return opts, fmt.Errorf("failed to get output flag: %w", err)
	}
	if opts.jobs, err = f.GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if opts.noCallGraph, err = f.GetBool("no-call-graph"); err != nil {
		return opts, fmt.Errorf("failed to get no-call-graph flag: %w", err)
	}
	if opts.verbose, err = f.GetBool("verbose"); err != nil {
		return opts, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if opts.checkInvariants, err = f.GetBool("check-invariants"); err != nil {
		return opts, fmt.Errorf("failed to get check-invariants flag: %w", err)
	}
	uiValue, err := f.GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}

	root := cmd.Root().PersistentFlags()
	if opts.timings, err = root.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.maxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	opts.quiet = quiet(cmd)

	if opts.top < 0 {
		return opts, fmt.Errorf("--top must not be negative")
	}
	if opts.detectLines <= 0 {
		return opts, fmt.Errorf("--detect-lines must be positive")
	}
	return opts, nil
}

func runPostprocess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := readPostprocessOptions(cmd, cfg)
	if err != nil {
		return err
	}
	targets, err := planOutputs(args, opts.output, opts.outputDir, opts.format)
	if err != nil {
		return err
	}
	for _, t := range targets {
		if t == stdoutTarget && opts.format.Binary() && isTerminal(os.Stdout) {
			return fmt.Errorf("refusing to write %s to a terminal; use -o", opts.format)
		}
	}
	if opts.outputDir != "" {
		if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	req := &driver.Request{
		Files: args,
		Jobs:  opts.jobs,
		Options: postprocess.Options{
			Dialect:        opts.compiler,
			DetectLines:    opts.detectLines,
			NoCallGraph:    opts.noCallGraph,
			MaxDiagnostics: opts.maxDiagnostics,
		},
		Timings: opts.timings,
	}

	var results []driver.FileResult
	if !opts.quiet && shouldUseTUI(opts.ui) {
		results, err = runProcessWithUI(cmd.Context(), "postprocess", req)
	} else {
		results, err = driver.Process(cmd.Context(), req)
	}
	if err != nil {
		dumpTraceRing(cmd)
		return err
	}

	stdout := bufio.NewWriter(cmd.OutOrStdout())
	defer func() { _ = stdout.Flush() }()

	failed := 0
	for i, fr := range results {
		if err := emitResult(cmd, stdout, fr, targets[i], opts); err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", color.RedString("error:"), err)
			if opts.verbose && fr.Bag != nil && fr.Err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), diag.FormatShort(fr.Bag.Items(), fr.Path))
			}
		}
	}
	if failed > 0 {
		dumpTraceRing(cmd)
		return fmt.Errorf("%d of %d inputs failed", failed, len(results))
	}
	return nil
}

func emitResult(cmd *cobra.Command, stdout io.Writer, fr driver.FileResult, target string, opts postprocessOptions) error {
	if fr.Err != nil {
		return fr.Err
	}
	res := fr.Result
	if opts.checkInvariants {
		if err := checkInvariants(res); err != nil {
			return fmt.Errorf("%s: invariant violated: %w", fr.Path, err)
		}
	}

	var timings *observ.Report
	if opts.timings && opts.format != report.FormatText {
		r := fr.Timer.Report()
		timings = &r
	}
	rep := report.Build(res, report.Options{
		Top:         opts.top,
		NoCallGraph: opts.noCallGraph,
		Diagnostics: opts.format != report.FormatText,
		Timings:     timings,
	})

	idx := fr.Timer.Begin("render")
	err := writeReport(stdout, target, rep, opts.format)
	fr.Timer.End(idx, opts.format.String())
	if err != nil {
		return fmt.Errorf("%s: %w", fr.Path, err)
	}

	errOut := cmd.ErrOrStderr()
	if opts.verbose && fr.Bag != nil && fr.Bag.Len() > 0 {
		fmt.Fprintln(errOut, diag.FormatShort(fr.Bag.Items(), fr.Path))
		if n := fr.Bag.Dropped(); n > 0 {
			fmt.Fprintf(errOut, "... %d more diagnostics dropped (raise --max-diagnostics)\n", n)
		}
	}
	if opts.timings {
		fmt.Fprint(errOut, fr.Timer.Summary())
	}
	if !opts.quiet && target != stdoutTarget {
		fmt.Fprintf(errOut, "%s %s (%s, %d instantiations) -> %s\n",
			color.GreenString("wrote"), fr.Path, res.Dialect, res.Frequency.Total, target)
	}
	return nil
}

func writeReport(stdout io.Writer, target string, rep *report.Report, f report.Format) (err error) {
	if target == stdoutTarget {
		return report.Write(stdout, rep, f)
	}
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(out)
	if err := report.Write(w, rep, f); err != nil {
		return err
	}
	return w.Flush()
}

func checkInvariants(res *postprocess.Result) error {
	errs := []error{
		testkit.CheckRegistry(res.Registry),
		testkit.CheckTree(res.Tree),
	}
	if res.Graph != nil {
		errs = append(errs, testkit.CheckGraph(res.Graph, res.Tree))
	}
	return errors.Join(errs...)
}
