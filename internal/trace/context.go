package trace

import "context"

type ctxKey struct{}

// FromContext returns the tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx. A nil tracer is stored as Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// SpanContext is the innermost open span and the project it runs for.
type SpanContext struct {
	SpanID  uint64
	Project string
}

type spanCtxKey struct{}

// CurrentSpan returns the span context stored in ctx; the zero value when
// there is none.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	sc, _ := ctx.Value(spanCtxKey{}).(SpanContext)
	return sc
}

// WithSpanContext attaches sc to ctx.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanCtxKey{}, sc)
}

// WithProject tags every span started from the returned context with
// project.
func WithProject(ctx context.Context, project string) context.Context {
	sc := CurrentSpan(ctx)
	sc.Project = project
	return WithSpanContext(ctx, sc)
}

// Start opens a span as a child of the span in ctx and returns a context
// in which it is the current span. When the scope is filtered out the
// returned span is inert and ctx keeps its parent.
func Start(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	parent := CurrentSpan(ctx)
	span := begin(FromContext(ctx), scope, name, parent)
	if span.id == 0 {
		return span, ctx
	}
	return span, WithSpanContext(ctx, SpanContext{SpanID: span.id, Project: parent.Project})
}

// Mark emits an instant event under the span in ctx.
func Mark(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	parent := CurrentSpan(ctx)
	t.Emit(&Event{
		Time:     now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent.SpanID,
		Project:  parent.Project,
		Name:     name,
		Detail:   detail,
	})
}
