// Package trace records what the generator and batch driver are doing.
//
// Events are grouped into layers, from coarse to fine:
//
//   - LayerDriver: CLI commands and batch runs
//   - LayerCase: one generated program (generate, check, store)
//   - LayerScope: scope pushes and pops inside a program
//   - LayerPick: individual symbol picks, shadowed draws and fallbacks
//
// The level decides how deep tracing goes:
//
//	jsfuzz run --trace=- --trace-level=case
//	jsfuzz gen --trace=gen.ndjson --trace-level=debug
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.LayerCase, "case", 0)
//	defer span.End("")
package trace
