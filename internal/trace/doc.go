// Package trace records what a remediation run is doing while it does it.
//
// Spans nest run → phase → category → provider call and carry the project
// name, so interleaved output of parallel runs stays readable. A tracer
// lives in the context:
//
//	ctx = trace.WithTracer(ctx, trace.NewStreamTracer(os.Stderr, trace.LevelDetail, trace.FormatText))
//	ctx = trace.WithProject(ctx, "docs")
//
//	span, ctx := trace.Start(ctx, trace.ScopePhase, "collect")
//	defer span.End("")
//
// The level filters by scope: phase keeps runs and phases, detail adds
// categories, debug adds provider calls. A RingTracer keeps the last
// events in memory and is dumped when the command panics; StartHeartbeat
// marks time passing so a hung provider is visible in the stream.
package trace
