// Package trace records spans for the phases of a tmplprof run.
//
// Enable it from the command line:
//
//	tmplprof postprocess --trace=- --trace-level=detail build.log
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes each event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events in memory for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// ScopeDriver events cover the whole command, ScopePhase the read, build,
// aggregate and render phases, ScopeInput one input log. LevelPhase emits
// driver and phase spans, LevelDetail adds per-input spans, LevelDebug
// everything.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "aggregate", trace.CurrentSpan(ctx).SpanID)
//	defer span.End("")
package trace
