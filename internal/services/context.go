package services

import "context"

type scopeKey struct{}

// Scope is the request-scoped identity carried through a planning call.
type Scope struct {
	JobID     string
	Stage     string
	RequestID string
}

// ScopeFrom returns the scope stored in ctx, or the zero Scope.
func ScopeFrom(ctx context.Context) Scope {
	if ctx == nil {
		return Scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(Scope)
	return s
}

func withScope(ctx context.Context, update func(*Scope)) context.Context {
	s := ScopeFrom(ctx)
	update(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithJobID records the render job being planned. Blank ids leave ctx unchanged.
func WithJobID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return withScope(ctx, func(s *Scope) { s.JobID = id })
}

// WithStage records the component doing the work.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return withScope(ctx, func(s *Scope) { s.Stage = stage })
}

// WithRequestID records the correlation id for one Plan call.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return withScope(ctx, func(s *Scope) { s.RequestID = id })
}

func JobIDFromContext(ctx context.Context) (string, bool) {
	id := ScopeFrom(ctx).JobID
	return id, id != ""
}

func StageFromContext(ctx context.Context) (string, bool) {
	stage := ScopeFrom(ctx).Stage
	return stage, stage != ""
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	id := ScopeFrom(ctx).RequestID
	return id, id != ""
}
