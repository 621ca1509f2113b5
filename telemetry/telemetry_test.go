package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", "json")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])

	_, err = NewLogger(&buf, "info", "xml")
	assert.Error(t, err)
	_, err = NewLogger(&buf, "loud", "text")
	assert.Error(t, err)
}

func TestLogTracerProvider_LogsSpans(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tp := NewLogTracerProvider(logger, "test")
	defer tp.Shutdown(context.Background())

	ctx, parent := tp.Tracer("test").Start(context.Background(), "parent")
	_, child := tp.Tracer("test").Start(ctx, "redsim.step")
	child.SetAttributes(
		attribute.String("redsim.phase", "exploitation"),
		attribute.Int("count", 2),
		attribute.Bool("ok", true),
	)
	child.SetStatus(codes.Error, "boom")
	child.End()
	parent.End()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "span", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "redsim.step", rec["name"])
	assert.Equal(t, "boom", rec["status_message"])
	assert.NotEmpty(t, rec["parent_span_id"])

	attrs, ok := rec["attributes"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "exploitation", attrs["redsim.phase"])
	assert.EqualValues(t, 2, attrs["count"])
	assert.Equal(t, true, attrs["ok"])

	var rootRec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rootRec))
	assert.Equal(t, "parent", rootRec["name"])
	assert.Equal(t, "DEBUG", rootRec["level"])
	assert.NotContains(t, rootRec, "parent_span_id")
}

func TestLogSpanExporter_Empty(t *testing.T) {
	e := NewLogSpanExporter(nil)
	assert.NoError(t, e.ExportSpans(context.Background(), nil))
	assert.NoError(t, e.Shutdown(context.Background()))
}
