package tracing

import (
	"context"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrPreset     = "mask.preset"
	AttrTemplate   = "mask.template"
	AttrRawLength  = "mask.raw.length"
	AttrValue      = "mask.value"
	AttrComplete   = "mask.complete"
	AttrValueCount = "mask.values"
)

// Span names.
const (
	SpanApplyBatch = "apply"
	SpanApplyValue = "apply.value"
)

// Event names.
const (
	EventTruncated = "value.truncated"
	EventRejected  = "value.rejected"
)

// StartBatch opens the span covering one apply run over count values.
func StartBatch(ctx context.Context, tracer trace.Tracer, preset, template string, count int) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanApplyBatch, trace.WithAttributes(
		attribute.String(AttrPreset, preset),
		attribute.String(AttrTemplate, template),
		attribute.Int(AttrValueCount, count),
	))
}

// StartValue opens the span for one raw input value.
func StartValue(ctx context.Context, tracer trace.Tracer, raw string) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanApplyValue, trace.WithAttributes(
		attribute.Int(AttrRawLength, utf8.RuneCountInString(raw)),
	))
}

// EndValue records the outcome on span and ends it. A value rejected by
// validation marks the span as an error.
func EndValue(span trace.Span, value string, complete, truncated, rejected bool) {
	span.SetAttributes(
		attribute.String(AttrValue, value),
		attribute.Bool(AttrComplete, complete),
	)
	if truncated {
		span.AddEvent(EventTruncated)
	}
	if rejected {
		span.AddEvent(EventRejected)
		span.SetStatus(codes.Error, "rejected by validation")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
