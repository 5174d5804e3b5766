package chromez

import (
	"context"
	"maps"
	"slices"

	"go.opentelemetry.io/otel/trace"
)

// Args carrying the OpenTelemetry identity of the surrounding span, so a
// Chrome trace can be lined up with distributed traces of the same request.
const (
	ArgOtelTraceID = "otel.trace_id"
	ArgOtelSpanID  = "otel.span_id"
)

// SpanContextFields returns the OpenTelemetry trace and span ids found in
// ctx as fields, or nil if ctx carries no valid span context.
func SpanContextFields(ctx context.Context) []Field {
	if ctx == nil {
		return nil
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []Field{
		Arg(ArgOtelTraceID, sc.TraceID().String()),
		Arg(ArgOtelSpanID, sc.SpanID().String()),
	}
}

// RecordContext records ev on the active session with the OpenTelemetry ids
// from ctx added to its args.
func RecordContext(ctx context.Context, ev Event) {
	if c, ok := Current(); ok {
		c.RecordContext(ctx, ev)
	}
}

// RecordContext records ev with the OpenTelemetry ids from ctx added to its
// args.
func (c Context) RecordContext(ctx context.Context, ev Event) {
	if c.s == nil {
		return
	}
	if fields := SpanContextFields(ctx); len(fields) > 0 {
		ev.Args = maps.Clone(ev.Args)
		ev.Apply(fields...)
	}
	c.Record(ev)
}

// TraceContext is Trace for a body that takes a context. The recorded event
// carries the OpenTelemetry ids found in ctx.
func TraceContext(ctx context.Context, name Key, fn func(context.Context), fields ...Field) {
	c, ok := Current()
	if !ok {
		fn(ctx)
		return
	}

	span := c.Begin(name, slices.Concat(fields, SpanContextFields(ctx))...)
	defer span.Finish()
	fn(ctx)
}
