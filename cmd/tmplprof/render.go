package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tmplprof/internal/report"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <report.msgpack>",
		Short: "Re-render a saved msgpack report in another format",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	cmd.Flags().StringP("format", "f", "text", "output format (text|json|yaml|msgpack|mermaid)")
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	cmd.Flags().Int("top", 0, "keep only the first N call-graph entries (0 = all)")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := report.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return fmt.Errorf("failed to get top flag: %w", err)
	}

	rep, err := readReport(args[0])
	if err != nil {
		return err
	}
	if top > 0 && top < len(rep.CallGraph) {
		rep.CallGraph = rep.CallGraph[:top]
	}

	if output == "" || output == stdoutTarget {
		if format.Binary() && isTerminal(os.Stdout) {
			return fmt.Errorf("refusing to write %s to a terminal; use -o", format)
		}
		w := bufio.NewWriter(cmd.OutOrStdout())
		if err := report.Write(w, rep, format); err != nil {
			return err
		}
		return w.Flush()
	}
	return writeReport(nil, output, rep, format)
}

func readReport(path string) (*report.Report, error) {
	// #nosec G304 -- path is provided by the user
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	rep, err := report.DecodeMsgpack(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rep, nil
}
