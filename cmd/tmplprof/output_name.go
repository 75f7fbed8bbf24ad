package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"tmplprof/internal/report"
)

const stdoutTarget = "-"

// outputPathFor derives the report path of input: the input name with the
// format's extension, next to the input or under dir.
func outputPathFor(input, dir string, f report.Format) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + f.Ext()
	if name == base {
		name = base + f.Ext()
	}
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, name)
}

// planOutputs maps every input to its report target. One input goes to
// output (stdout when empty) unless only dir is set; several inputs always get
// derived paths.
func planOutputs(inputs []string, output, dir string, f report.Format) ([]string, error) {
	if len(inputs) == 1 {
		switch {
		case output != "":
			return []string{output}, nil
		case dir != "":
			return []string{outputPathFor(inputs[0], dir, f)}, nil
		default:
			return []string{stdoutTarget}, nil
		}
	}
	if output != "" && output != stdoutTarget {
		return nil, fmt.Errorf("-o/--output needs exactly one input, got %d; use --output-dir", len(inputs))
	}
	if output == stdoutTarget {
		if f.Binary() {
			return nil, fmt.Errorf("cannot write several %s reports to stdout", f)
		}
		targets := make([]string, len(inputs))
		for i := range targets {
			targets[i] = stdoutTarget
		}
		return targets, nil
	}

	targets := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, in := range inputs {
		t := outputPathFor(in, dir, f)
		if prev, dup := seen[t]; dup {
			return nil, fmt.Errorf("inputs %s and %s both map to %s", prev, in, t)
		}
		if filepath.Clean(t) == filepath.Clean(in) {
			return nil, fmt.Errorf("report for %s would overwrite the input", in)
		}
		seen[t] = in
		targets[i] = t
	}
	return targets, nil
}
