package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewLoggerHonoursLevelAndFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(LogConfig{Level: "warn", Format: "json", Output: buf})

	logger.Info("dropped")
	logger.Warn("kept", "tool", "scrape_as_markdown")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"tool":"scrape_as_markdown"`)
}

func TestWithContextAddsTraceID(t *testing.T) {
	provider := sdktrace.NewTracerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()

	ctx, span := provider.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	buf := &bytes.Buffer{}
	NewLogger(LogConfig{Output: buf}).InfoContext(ctx, "hello")

	assert.Contains(t, buf.String(), "trace_id="+span.SpanContext().TraceID().String())
}

func TestSanitizeAPIKey(t *testing.T) {
	assert.Equal(t, "***", SanitizeAPIKey("short"))
	assert.Equal(t, "abcdefgh...wxyz", SanitizeAPIKey("abcdefgh1234567890wxyz"))
}

func TestDisabledTracingIsNoop(t *testing.T) {
	tp, err := NewTracerProvider(TracingConfig{Enabled: false})
	assert.NoError(t, err)

	_, span := tp.StartSpan(context.Background(), SpanToolCall, ToolAttrs("search_engine")...)
	assert.False(t, span.SpanContext().IsValid())
	EndSpan(span, nil)
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProviderRejectsUnknownExporter(t *testing.T) {
	_, err := NewTracerProvider(TracingConfig{Enabled: true, Exporter: "carrier-pigeon"})
	assert.Error(t, err)
}
