package telemetry

import (
	"context"
	"encoding/hex"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// LogSpanExporter implements the OpenTelemetry SpanExporter interface and
// writes every finished span as one structured log record.
type LogSpanExporter struct {
	logger *slog.Logger
}

// NewLogSpanExporter creates an exporter writing to logger.
func NewLogSpanExporter(logger *slog.Logger) *LogSpanExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSpanExporter{logger: logger}
}

// ExportSpans logs a batch of spans. It never fails.
func (e *LogSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		level := slog.LevelDebug
		if span.Status().Code == codes.Error {
			level = slog.LevelWarn
		}
		e.logger.LogAttrs(ctx, level, "span", spanAttrs(span)...)
	}
	return nil
}

// Shutdown is a no-op; the logger outlives the exporter.
func (e *LogSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

func spanAttrs(span sdktrace.ReadOnlySpan) []slog.Attr {
	sc := span.SpanContext()
	traceID := sc.TraceID()
	spanID := sc.SpanID()

	attrs := []slog.Attr{
		slog.String("name", span.Name()),
		slog.String("trace_id", hex.EncodeToString(traceID[:])),
		slog.String("span_id", hex.EncodeToString(spanID[:])),
		slog.Duration("duration", span.EndTime().Sub(span.StartTime())),
		slog.String("status", span.Status().Code.String()),
	}
	if span.Parent().IsValid() {
		parentID := span.Parent().SpanID()
		attrs = append(attrs, slog.String("parent_span_id", hex.EncodeToString(parentID[:])))
	}
	if desc := span.Status().Description; desc != "" {
		attrs = append(attrs, slog.String("status_message", desc))
	}
	if kvs := span.Attributes(); len(kvs) > 0 {
		attrs = append(attrs, slog.Attr{Key: "attributes", Value: slog.GroupValue(attributesToSlog(kvs)...)})
	}
	return attrs
}

// attributesToSlog converts OpenTelemetry attributes to slog attributes.
func attributesToSlog(kvs []attribute.KeyValue) []slog.Attr {
	out := make([]slog.Attr, 0, len(kvs))
	for _, kv := range kvs {
		key := string(kv.Key)
		switch kv.Value.Type() {
		case attribute.BOOL:
			out = append(out, slog.Bool(key, kv.Value.AsBool()))
		case attribute.INT64:
			out = append(out, slog.Int64(key, kv.Value.AsInt64()))
		case attribute.FLOAT64:
			out = append(out, slog.Float64(key, kv.Value.AsFloat64()))
		case attribute.STRING:
			out = append(out, slog.String(key, kv.Value.AsString()))
		default:
			out = append(out, slog.String(key, kv.Value.Emit()))
		}
	}
	return out
}
