package logging

import (
	"context"
	"log/slog"

	"reeltime/internal/services"
)

// Structured field keys shared by every component. FieldEventType classifies
// a line for filtering (e.g. "duration_capped"); FieldImpact is what the
// operator loses because of a warning.
const (
	FieldComponent     = "component"
	FieldJobID         = "job_id"
	FieldStage         = "stage"
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
	FieldImpact        = "impact"
)

// ContextFields turns the services.Scope stored in ctx into attributes,
// skipping blank values.
func ContextFields(ctx context.Context) []slog.Attr {
	scope := services.ScopeFrom(ctx)
	pairs := [...]struct{ key, value string }{
		{FieldJobID, scope.JobID},
		{FieldStage, scope.Stage},
		{FieldCorrelationID, scope.RequestID},
	}
	var fields []slog.Attr
	for _, p := range pairs {
		if p.value != "" {
			fields = append(fields, slog.String(p.key, p.value))
		}
	}
	return fields
}

// WithContext adds the ctx scope fields to logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if fields := ContextFields(ctx); len(fields) > 0 {
		return logger.With(Args(fields...)...)
	}
	return logger
}
