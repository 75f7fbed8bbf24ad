// Package diag defines the data-quality findings produced while a compiler log
// is post-processed.
//
// # Purpose
//
// The post-processor is lenient: lines it cannot classify are
// ignored, malformed instantiation sites are skipped, and unbalanced enter/exit
// messages are absorbed by the tree builder. None of these stop a run. Package
// diag records them so the CLI can explain, on request, why a report looks the
// way it does.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info for tolerated irregularities, Warning for dropped input.
//   - Code – compact numeric identifier (see codes.go) with a stable string form
//     such as PRS1001 or TRE2001.
//   - Message – short human oriented text.
//   - Line – 1-based line of the input log, 0 for findings at end of input.
//
// # Emitting diagnostics
//
// Producers depend on the Reporter interface only. BagReporter stores into a
// Bag (bounded, sortable), DedupReporter collapses repeats, NopReporter drops
// everything. Package diag performs no I/O; FormatShort returns a string.
package diag
