package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer() (Tracer, *tracetest.SpanRecorder) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	return NewTracer(tp.Tracer("test")), sr
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracer_SpanAttributes(t *testing.T) {
	tracer, sr := newRecordingTracer()
	meta := RequestMeta{ID: "r1", Method: "GET", Endpoint: "/lookup/id/ENSG1", Server: "grch38", Release: "113"}

	_, span := tracer.StartSpan(context.Background(), meta)
	tracer.EndSpan(span, nil)

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	s := spans[0]
	if s.Name() != "upstream.GET /lookup" {
		t.Errorf("Name() = %q", s.Name())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}
	if v, ok := attrValue(s.Attributes(), "upstream.release"); !ok || v.AsString() != "113" {
		t.Errorf("upstream.release = %v", v)
	}
}

func TestTracer_ErrorStatus(t *testing.T) {
	tracer, sr := newRecordingTracer()

	_, span := tracer.StartSpan(context.Background(), RequestMeta{Endpoint: "/info/ping"})
	tracer.EndSpan(span, errors.New("503"))

	s := sr.Ended()[0]
	if s.Status().Code != codes.Error || s.Status().Description != "503" {
		t.Errorf("status = %+v", s.Status())
	}
	if v, _ := attrValue(s.Attributes(), "upstream.error"); !v.AsBool() {
		t.Error("upstream.error should be true")
	}
	if len(s.Events()) == 0 {
		t.Error("error event should be recorded")
	}
}

func TestNopTracer_NoPanic(t *testing.T) {
	tracer := NopTracer()
	_, span := tracer.StartSpan(context.Background(), RequestMeta{})
	tracer.EndSpan(span, errors.New("x"))
}
