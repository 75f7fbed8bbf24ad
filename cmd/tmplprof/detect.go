package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tmplprof/internal/dialect"
	"tmplprof/internal/postprocess"
	"tmplprof/internal/source"
)

type detectPayload struct {
	Input      string  `json:"input"`
	Compiler   string  `json:"compiler"`
	Score      int     `json:"score"`
	Confidence float64 `json:"confidence"`
	RunnerUp   string  `json:"runner_up,omitempty"`
	Signals    int     `json:"signals"`
	Ambiguous  bool    `json:"ambiguous,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func newDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <input>...",
		Short: "Detect which compiler produced a log",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDetect,
	}
	cmd.Flags().Int("detect-lines", postprocess.DefaultDetectLines, "lines inspected per input")
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runDetect(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("detect-lines")
	if err != nil {
		return fmt.Errorf("failed to get detect-lines flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	payloads := make([]detectPayload, 0, len(args))
	unknown := 0
	for _, path := range args {
		p := detectOne(path, limit)
		if p.Compiler == dialect.Unknown.String() {
			unknown++
		}
		payloads = append(payloads, p)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payloads); err != nil {
			return err
		}
	} else {
		for _, p := range payloads {
			renderDetectPretty(out, p)
		}
	}
	if unknown > 0 {
		return fmt.Errorf("%d of %d inputs: %w", unknown, len(args), postprocess.ErrDialectUnknown)
	}
	return nil
}

func detectOne(path string, limit int) detectPayload {
	p := detectPayload{Input: path, Compiler: dialect.Unknown.String()}
	log, err := source.OpenLog(path)
	if err != nil {
		p.Error = err.Error()
		return p
	}
	defer func() { _ = log.Close() }()

	c, err := postprocess.Detect(log.Reader(), limit)
	if err != nil {
		p.Error = err.Error()
		return p
	}
	p.Compiler = c.Kind.String()
	p.Score = c.Score
	p.Confidence = c.Confidence
	p.Signals = c.ObservedSignals
	p.Ambiguous = c.Ambiguous
	if c.RunnerUp != dialect.Unknown {
		p.RunnerUp = c.RunnerUp.String()
	}
	return p
}

func renderDetectPretty(out io.Writer, p detectPayload) {
	switch {
	case p.Error != "":
		fmt.Fprintf(out, "%s: %s %s\n", p.Input, color.RedString("error"), p.Error)
	case p.Ambiguous:
		fmt.Fprintf(out, "%s: %s (%d signals, runner-up %s)\n", p.Input, color.YellowString("ambiguous"), p.Signals, p.RunnerUp)
	case p.Compiler == dialect.Unknown.String():
		fmt.Fprintf(out, "%s: %s (no instrumentation lines found)\n", p.Input, color.YellowString("unknown"))
	default:
		fmt.Fprintf(out, "%s: %s score %d, confidence %.2f, %d signals", p.Input, color.GreenString(p.Compiler), p.Score, p.Confidence, p.Signals)
		if p.RunnerUp != "" {
			fmt.Fprintf(out, ", runner-up %s", p.RunnerUp)
		}
		fmt.Fprintln(out)
	}
}
