package observability

import (
	"context"
	"errors"
	"testing"

	"momentum/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewSampler(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", newSampler(1).Description())
	assert.Equal(t, "AlwaysOnSampler", newSampler(2.5).Description())
	assert.Contains(t, newSampler(0).Description(), "root:AlwaysOffSampler")
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestNewTracingConfig(t *testing.T) {
	tc := NewTracingConfig(&config.Config{
		Env:                 "staging",
		TracingEnabled:      true,
		TracingExporter:     "otlp",
		OTLPEndpoint:        "collector:4318",
		TracingSamplerRatio: 0.5,
	}, "1.2.3")

	assert.Equal(t, TracingConfig{
		ServiceVersion: "1.2.3",
		Environment:    "staging",
		Enabled:        true,
		Exporter:       "otlp",
		OTLPEndpoint:   "collector:4318",
		SamplerRatio:   0.5,
	}, tc)
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_UnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "zipkin"})
	assert.ErrorContains(t, err, `unknown exporter "zipkin"`)
}

func TestServiceSpan_RecordsError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := Tracer
	Tracer = tp.Tracer(ServiceName)
	t.Cleanup(func() { Tracer = prev })

	_, span := StartServiceSpan(context.Background(), "JobService", "Create")
	EndSpan(span, errors.New("boom"))

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "JobService.Create", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
}
