package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"ladder-calculator/internal/handlers"
)

// RecordError centralises error handling across all domains: records the error
// on the span, increments the provided error counter, logs with trace context,
// and writes a JSON error HTTP response.
func RecordError(ctx context.Context, span trace.Span, logger *zap.Logger, counter metric.Int64Counter, opName, msg string, err error, status int, w http.ResponseWriter) {
	RecordErrorBody(ctx, span, logger, counter, opName, handlers.ErrorBody{Error: msg}, err, status, w)
}

// RecordErrorBody is RecordError with a caller-built response body.
func RecordErrorBody(ctx context.Context, span trace.Span, logger *zap.Logger, counter metric.Int64Counter, opName string, body handlers.ErrorBody, err error, status int, w http.ResponseWriter) {
	span.RecordError(err)
	span.SetStatus(codes.Error, body.Error)

	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", opName),
		attribute.Int("status", status),
	))

	fields := []zap.Field{
		zap.String("operation", opName),
		zap.Int("status", status),
		zap.Error(err),
		RequestIDField(ctx),
	}
	if body.Field != "" {
		fields = append(fields, zap.String("field", body.Field))
	}

	// Client mistakes are expected traffic.
	if status < http.StatusInternalServerError {
		logger.Warn(body.Error, fields...)
	} else {
		logger.Error(body.Error, fields...)
	}

	handlers.WriteJSON(w, status, body)
}
