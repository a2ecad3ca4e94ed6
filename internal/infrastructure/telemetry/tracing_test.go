package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// useRecorder installs a recording tracer provider for the duration of the test
func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	rec := useRecorder(t)
	id := uuid.New()

	ctx, span := StartServiceSpan(context.Background(), "InvoiceService", "Create",
		WithAttribute(AttrOwnerID, id),
		WithAttribute(AttrSweepChanged, 3),
		WithSpanKind(trace.SpanKindServer),
	)
	assert.NotEmpty(t, TraceID(ctx))
	EndSpan(span, nil)

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "InvoiceService.Create", ended[0].Name())
	assert.Equal(t, trace.SpanKindServer, ended[0].SpanKind())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)

	attrs := attrMap(ended[0].Attributes())
	assert.Equal(t, id.String(), attrs[AttrOwnerID].AsString())
	assert.Equal(t, int64(3), attrs[AttrSweepChanged].AsInt64())
}

func TestEndSpan_RecordsError(t *testing.T) {
	rec := useRecorder(t)

	_, span := StartSpan(context.Background(), "op")
	EndSpan(span, errors.New("boom"))

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}

func TestToAttribute(t *testing.T) {
	assert.Equal(t, attribute.StringValue("x"), toAttribute("k", "x").Value)
	assert.Equal(t, attribute.Int64Value(5), toAttribute("k", int64(5)).Value)
	assert.Equal(t, attribute.BoolValue(true), toAttribute("k", true).Value)
	assert.Equal(t, attribute.Float64Value(1.5), toAttribute("k", 1.5).Value)
	assert.Equal(t, attribute.StringSliceValue([]string{"a"}), toAttribute("k", []string{"a"}).Value)
	assert.Equal(t, attribute.StringValue("{1}"), toAttribute("k", struct{ N int }{1}).Value)
}
