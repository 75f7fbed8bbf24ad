// Package report turns a post-processing result into a renderer-neutral
// Report and writes it as text, JSON, YAML, msgpack or Mermaid.
package report

import (
	"tmplprof/internal/diag"
	"tmplprof/internal/freq"
	"tmplprof/internal/observ"
	"tmplprof/internal/postprocess"
	"tmplprof/internal/source"
)

// SchemaVersion is bumped when the serialised Report changes incompatibly.
const SchemaVersion = 1

// Report is the complete output of one input log.
type Report struct {
	Schema       int               `json:"schema" yaml:"schema" msgpack:"schema"`
	Input        string            `json:"input" yaml:"input" msgpack:"input"`
	Compiler     string            `json:"compiler" yaml:"compiler" msgpack:"compiler"`
	TotalMatches int               `json:"total_matches" yaml:"total_matches" msgpack:"total_matches"`
	Flat         []freq.Row        `json:"flat" yaml:"flat" msgpack:"flat"`
	CallGraph    []Entry           `json:"call_graph,omitempty" yaml:"call_graph,omitempty" msgpack:"call_graph,omitempty"`
	Stats        postprocess.Stats `json:"stats" yaml:"stats" msgpack:"stats"`
	Diagnostics  []Diagnostic      `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
	Timings      *observ.Report    `json:"timings,omitempty" yaml:"timings,omitempty" msgpack:"timings,omitempty"`
}

// Entry is one location of the call graph.
type Entry struct {
	ID       uint32 `json:"id" yaml:"id" msgpack:"id"`
	Location string `json:"location" yaml:"location" msgpack:"location"`
	File     string `json:"file" yaml:"file" msgpack:"file"`
	Line     uint32 `json:"line" yaml:"line" msgpack:"line"`
	Count    int    `json:"count" yaml:"count" msgpack:"count"`
	Total    int    `json:"total_with_children" yaml:"total_with_children" msgpack:"total_with_children"`
	Parents  []Edge `json:"parents" yaml:"parents" msgpack:"parents"`
	Children []Edge `json:"children" yaml:"children" msgpack:"children"`
}

// Edge is a weighted link to another location. Count is the other location's
// direct count and is only filled for child edges.
type Edge struct {
	ID       uint32 `json:"id" yaml:"id" msgpack:"id"`
	Location string `json:"location" yaml:"location" msgpack:"location"`
	Weight   int    `json:"weight" yaml:"weight" msgpack:"weight"`
	Count    int    `json:"count,omitempty" yaml:"count,omitempty" msgpack:"count,omitempty"`
}

// Diagnostic is the serialised form of a diag.Diagnostic.
type Diagnostic struct {
	Severity string `json:"severity" yaml:"severity" msgpack:"severity"`
	Code     string `json:"code" yaml:"code" msgpack:"code"`
	Line     uint32 `json:"line,omitempty" yaml:"line,omitempty" msgpack:"line,omitempty"`
	Message  string `json:"message" yaml:"message" msgpack:"message"`
}

// Options tune Build.
type Options struct {
	// Top keeps only the first Top call-graph entries; 0 keeps all.
	Top int
	// NoCallGraph leaves CallGraph empty.
	NoCallGraph bool
	// Diagnostics copies the result's diagnostics into the report.
	Diagnostics bool
	// Timings attaches a timer report.
	Timings *observ.Report
}

// Build converts res into a Report. It does not modify res.
func Build(res *postprocess.Result, opts Options) *Report {
	rep := &Report{
		Schema:       SchemaVersion,
		Input:        res.Input,
		Compiler:     res.Dialect.String(),
		TotalMatches: res.Frequency.Total,
		Flat:         res.Frequency.Rows,
		Stats:        res.Stats,
		Timings:      opts.Timings,
	}
	if rep.Flat == nil {
		rep.Flat = []freq.Row{}
	}

	if !opts.NoCallGraph && res.Graph != nil {
		entries := res.Graph.Entries()
		if opts.Top > 0 && opts.Top < len(entries) {
			entries = entries[:opts.Top]
		}
		rep.CallGraph = make([]Entry, 0, len(entries))
		for _, e := range entries {
			loc := res.Registry.MustLookup(e.Loc)
			out := Entry{
				ID:       uint32(e.Loc),
				Location: loc.String(),
				File:     loc.File,
				Line:     loc.Line,
				Count:    e.Count,
				Total:    e.TotalWithChildren,
				Parents:  []Edge{},
				Children: []Edge{},
			}
			for _, p := range res.Graph.ParentEdges(e.Loc) {
				out.Parents = append(out.Parents, Edge{
					ID:       uint32(p.Loc),
					Location: locString(res.Registry, p.Loc),
					Weight:   p.Weight,
				})
			}
			for _, c := range res.Graph.ChildEdges(e.Loc) {
				out.Children = append(out.Children, Edge{
					ID:       uint32(c.Loc),
					Location: locString(res.Registry, c.Loc),
					Weight:   c.Weight,
					Count:    res.Graph.Count(c.Loc),
				})
			}
			rep.CallGraph = append(rep.CallGraph, out)
		}
	}

	if opts.Diagnostics && res.Bag != nil {
		for _, d := range res.Bag.Items() {
			rep.Diagnostics = append(rep.Diagnostics, fromDiag(d))
		}
	}
	return rep
}

func locString(reg *source.Registry, id source.LocationID) string {
	return reg.MustLookup(id).String()
}

func fromDiag(d diag.Diagnostic) Diagnostic {
	return Diagnostic{
		Severity: d.Severity.Label(),
		Code:     d.Code.ID(),
		Line:     d.Line,
		Message:  d.Message,
	}
}
