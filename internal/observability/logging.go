// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// SetLogger replaces the logger used by the observability helpers.
func SetLogger(l *slog.Logger) {
	if l != nil {
		GlobalLogger = &Logger{Logger: l}
	}
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// Context keys for logging
const (
	CorrelationID LogContextKey = "correlation_id"
)

// LoggingConfig defines which types of automated logging are enabled.
type LoggingConfig struct {
	EnableRepoLogging      bool
	EnableLifecycleLogging bool
}

// Config holds the current logging configuration.
var Config = LoggingConfig{
	EnableRepoLogging:      true,
	EnableLifecycleLogging: true,
}

// GenerateCorrelationID creates a new unique correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationID).(string); ok {
		return id
	}
	return ""
}

func withFields(attrs []any, fields map[string]interface{}) []any {
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	tableName string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{tableName: tableName}
}

func (l *RepoLogger) log(ctx context.Context, operation string, fields map[string]interface{}) {
	if !Config.EnableRepoLogging {
		return
	}
	attrs := withFields([]any{
		slog.String("table", l.tableName),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}, fields)
	GlobalLogger.DebugContext(ctx, "repository "+operation, attrs...)
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]interface{}) {
	l.log(ctx, "create", fields)
}

// LogUpdate logs a repository update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]interface{}) {
	l.log(ctx, "update", fields)
}

// LogDelete logs a repository delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]interface{}) {
	l.log(ctx, "delete", fields)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	GlobalLogger.ErrorContext(ctx, "repository error",
		slog.String("table", l.tableName),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}

// LogTransition records a moderation lifecycle transition as an audit line.
func LogTransition(ctx context.Context, kind string, id uint, action string, actorID uint, fields map[string]interface{}) {
	ModerationTransitions.WithLabelValues(kind, action).Inc()
	if !Config.EnableLifecycleLogging {
		return
	}
	attrs := withFields([]any{
		slog.String("kind", kind),
		slog.Uint64("listing_id", uint64(id)),
		slog.String("action", action),
		slog.Uint64("actor_id", uint64(actorID)),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}, fields)
	GlobalLogger.InfoContext(ctx, "listing lifecycle", attrs...)
}

// LogAsyncOperationStart logs the start of an asynchronous operation.
func LogAsyncOperationStart(ctx context.Context, operation string, fields map[string]interface{}) {
	attrs := withFields([]any{
		slog.String("operation", operation),
		slog.String("type", "async_start"),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}, fields)
	GlobalLogger.DebugContext(ctx, "async operation started", attrs...)
}

// LogAsyncOperationEnd logs the completion of an asynchronous operation.
func LogAsyncOperationEnd(ctx context.Context, operation string, fields map[string]interface{}) {
	attrs := withFields([]any{
		slog.String("operation", operation),
		slog.String("type", "async_end"),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}, fields)
	GlobalLogger.InfoContext(ctx, "async operation completed", attrs...)
}

// LogAsyncOperationError logs an error in an asynchronous operation.
func LogAsyncOperationError(ctx context.Context, operation string, err error, fields map[string]interface{}) {
	attrs := withFields([]any{
		slog.String("operation", operation),
		slog.String("type", "async_error"),
		slog.String("error", err.Error()),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}, fields)
	GlobalLogger.ErrorContext(ctx, "async operation failed", attrs...)
}
