package logger

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	globalLogger    *slog.Logger
	logLevel        slog.Level
	detailedLogging bool
	tracingEnabled  bool
	tracer          trace.Tracer
	tracerProvider  *sdktrace.TracerProvider
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level           string // DEBUG, INFO, WARN, ERROR
	Format          string // json or text
	DetailedLogging bool   // Enable detailed logs
	TracingEnabled  bool   // Enable OpenTelemetry tracing
}

// Init initializes the global logger and tracer based on environment variables
func Init() error {
	config := LoadConfigFromEnv()
	return InitWithConfig(config)
}

// LoadConfigFromEnv loads logging configuration from environment variables
func LoadConfigFromEnv() LogConfig {
	return LogConfig{
		Level:           getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format:          getEnvOrDefault("LOG_FORMAT", "json"),
		DetailedLogging: getEnvOrDefault("LOG_DETAILED", "false") == "true",
		TracingEnabled:  getEnvOrDefault("LOG_TRACING_ENABLED", "true") == "true",
	}
}

// InitWithConfig initializes the logger and tracer with specific configuration
func InitWithConfig(config LogConfig) error {
	logLevel = parseLogLevel(config.Level)
	detailedLogging = config.DetailedLogging
	tracingEnabled = config.TracingEnabled

	// Source information is added manually in logWithTrace so the caller
	// location points at the call site, not this package.
	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: false,
	}

	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)

	if tracingEnabled {
		if err := initTracer(); err != nil {
			globalLogger.Warn("Failed to initialize OpenTelemetry tracer, tracing disabled", "error", err)
			tracingEnabled = false
		}
	}

	return nil
}

// initTracer initializes the OpenTelemetry tracer
func initTracer() error {
	exporter, err := stdouttrace.New(
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName("floorsheet"),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return err
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = otel.Tracer("floorsheet")

	return nil
}

// Shutdown gracefully shuts down the tracer provider
func Shutdown(ctx context.Context) error {
	if tracerProvider != nil {
		return tracerProvider.Shutdown(ctx)
	}
	return nil
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// StartSpan starts a new OpenTelemetry span
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !tracingEnabled || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName, opts...)
}

// getTraceAttrs extracts trace ID and span ID from context for logging
func getTraceAttrs(ctx context.Context) []any {
	if !tracingEnabled {
		return nil
	}

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}

	return []any{
		"trace_id", span.SpanContext().TraceID().String(),
		"span_id", span.SpanContext().SpanID().String(),
	}
}

// Debug logs a debug message
func Debug(ctx context.Context, msg string, args ...any) {
	if !detailedLogging {
		return
	}
	logWithTrace(ctx, slog.LevelDebug, msg, 2, args...)
}

// Info logs an info message
func Info(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelInfo, msg, 2, args...)
}

// Warn logs a warning message
func Warn(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelWarn, msg, 2, args...)
}

// Error logs an error message
func Error(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelError, msg, 2, args...)
}

// ErrorWithErr logs an error message with an error object
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	if tracingEnabled {
		span := trace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}

	allArgs := append([]any{"error", err}, args...)
	logWithTrace(ctx, slog.LevelError, msg, 2, allArgs...)
}

// logWithTrace logs a message with trace ID and span ID if available.
// skip indicates how many stack frames to skip to reach the actual caller.
func logWithTrace(ctx context.Context, level slog.Level, msg string, skip int, args ...any) {
	if globalLogger == nil {
		globalLogger = slog.Default()
	}
	if traceAttrs := getTraceAttrs(ctx); traceAttrs != nil {
		args = append(traceAttrs, args...)
	}

	if detailedLogging {
		if pc, file, line, ok := runtime.Caller(skip); ok {
			fn := runtime.FuncForPC(pc)
			if fn != nil {
				args = append(args, "source", slog.GroupValue(
					slog.String("function", fn.Name()),
					slog.String("file", file),
					slog.Int("line", line),
				))
			}
		}
	}

	globalLogger.Log(ctx, level, msg, args...)
}

// OperationTimer helps measure operation duration with OpenTelemetry spans
type OperationTimer struct {
	ctx    context.Context
	span   trace.Span
	start  time.Time
	fields []any
}

// StartOperation starts timing an operation with an OpenTelemetry span
func StartOperation(ctx context.Context, operation string, fields ...any) *OperationTimer {
	var span trace.Span
	if tracingEnabled {
		ctx, span = StartSpan(ctx, operation)

		attrs := make([]attribute.KeyValue, 0)
		for i := 0; i < len(fields); i += 2 {
			if i+1 < len(fields) {
				key := fields[i].(string)
				switch v := fields[i+1].(type) {
				case string:
					attrs = append(attrs, attribute.String(key, v))
				case int:
					attrs = append(attrs, attribute.Int(key, v))
				case int64:
					attrs = append(attrs, attribute.Int64(key, v))
				case float64:
					attrs = append(attrs, attribute.Float64(key, v))
				case bool:
					attrs = append(attrs, attribute.Bool(key, v))
				}
			}
		}
		span.SetAttributes(attrs...)
	}

	if detailedLogging {
		Debug(ctx, "Operation started", append([]any{"operation", operation}, fields...)...)
	}

	return &OperationTimer{
		ctx:    ctx,
		span:   span,
		start:  time.Now(),
		fields: fields,
	}
}

// End completes the operation timer and logs the duration
func (ot *OperationTimer) End(additionalFields ...any) {
	duration := time.Since(ot.start)

	if tracingEnabled && ot.span != nil {
		ot.span.SetAttributes(attribute.Int64("duration_ms", duration.Milliseconds()))
		ot.span.SetStatus(codes.Ok, "completed")
		ot.span.End()
	}

	if detailedLogging {
		fields := append(ot.fields, "duration_ms", duration.Milliseconds())
		fields = append(fields, additionalFields...)
		Debug(ot.ctx, "Operation completed", fields...)
	}
}

// EndWithError completes the operation timer with an error
func (ot *OperationTimer) EndWithError(err error, additionalFields ...any) {
	duration := time.Since(ot.start)

	if tracingEnabled && ot.span != nil {
		ot.span.SetAttributes(attribute.Int64("duration_ms", duration.Milliseconds()))
		ot.span.RecordError(err)
		ot.span.SetStatus(codes.Error, err.Error())
		ot.span.End()
	}

	fields := append(ot.fields, "duration_ms", duration.Milliseconds(), "error", err)
	fields = append(fields, additionalFields...)
	Error(ot.ctx, "Operation failed", fields...)
}

// GetContext returns the context with the span
func (ot *OperationTimer) GetContext() context.Context {
	return ot.ctx
}

// Merge logs the outcome of an aggregate-store merge (always logged
// regardless of level)
func Merge(ctx context.Context, date string, newRows, updatedRows, carriedRows int, fields ...any) {
	if tracingEnabled {
		span := trace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.AddEvent("aggregate_merge", trace.WithAttributes(
				attribute.String("date", date),
				attribute.Int("new_rows", newRows),
				attribute.Int("updated_rows", updatedRows),
				attribute.Int("carried_rows", carriedRows),
			))
		}
	}

	allFields := append([]any{
		"type", "MERGE",
		"date", date,
		"new_rows", newRows,
		"updated_rows", updatedRows,
		"carried_rows", carriedRows,
	}, fields...)
	logWithTrace(ctx, slog.LevelInfo, "Aggregate store merged", 2, allFields...)
}

// Scrape logs a completed scrape of one floorsheet page (always logged
// regardless of level)
func Scrape(ctx context.Context, date string, page, totalPages, records int, fields ...any) {
	if tracingEnabled {
		span := trace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.AddEvent("page_scraped", trace.WithAttributes(
				attribute.String("date", date),
				attribute.Int("page", page),
				attribute.Int("total_pages", totalPages),
				attribute.Int("records", records),
			))
		}
	}

	allFields := append([]any{
		"type", "SCRAPE",
		"date", date,
		"page", page,
		"total_pages", totalPages,
		"records", records,
	}, fields...)
	logWithTrace(ctx, slog.LevelInfo, "Floorsheet page scraped", 2, allFields...)
}

// IsDebugEnabled returns whether debug logging is enabled
func IsDebugEnabled() bool {
	return detailedLogging && logLevel <= slog.LevelDebug
}

// IsTracingEnabled returns whether tracing is enabled
func IsTracingEnabled() bool {
	return tracingEnabled
}
