// Package trace records what the analysis pipeline is doing.
//
// A Tracer travels in the context.Context handed to the driver and the
// collector:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "collect", parent)
//	defer span.End("")
//
// Levels gate scopes: phase shows the session and its passes, detail adds
// one span per file, debug adds declarations and instantiations.
//
// Sinks: Nop when disabled, StreamTracer for immediate text or NDJSON
// output, RingTracer keeping the most recent events in memory, and
// MultiTracer fanning out to several of them.
package trace
