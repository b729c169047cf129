package logging

import (
	"context"
	"log/slog"

	"datefixer/internal/services"
)

const (
	// FieldComponent names the package or command emitting the record.
	FieldComponent = "component"
	// FieldFile is the path of the file a record concerns.
	FieldFile = "file"
	// FieldWorker is the traversal worker index.
	FieldWorker = "worker"
	// FieldRunID identifies one fix run in logs and the journal.
	FieldRunID        = "run_id"
	FieldEventType    = "event_type"
	FieldErrorHint    = "error_hint"
	FieldImpact       = "impact"
	FieldDecisionType = "decision_type"
	// FieldErrorKind carries services.Classify for failed operations.
	FieldErrorKind = "error_kind"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if path, ok := services.FilePathFromContext(ctx); ok {
		fields = append(fields, FilePath(path))
	}
	if id, ok := services.WorkerFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldWorker, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
