package oneroster

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/fivetwenty-io/oneroster/pkg/oneroster"

type telemetry struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) *telemetry {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(instrumentationName)

	requests, err := meter.Int64Counter("oneroster.client.requests",
		metric.WithDescription("Roster API calls by method and outcome"))
	if err != nil {
		requests = noop.Int64Counter{}
	}

	duration, err := meter.Float64Histogram("oneroster.client.duration",
		metric.WithDescription("Roster API call duration"),
		metric.WithUnit("ms"))
	if err != nil {
		duration = noop.Float64Histogram{}
	}

	return &telemetry{
		tracer:   tp.Tracer(instrumentationName),
		requests: requests,
		duration: duration,
	}
}

func (t *telemetry) start(ctx context.Context, method Method, path string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "oneroster.execute",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", string(method)),
			attribute.String("url.path", path),
		))
}

// record finishes span bookkeeping for a call that produced a status.
func (t *telemetry) record(ctx context.Context, span trace.Span, method Method, status int, outcome Outcome, millis float64) {
	span.SetAttributes(
		attribute.Int("http.response.status_code", status),
		attribute.String("oneroster.outcome", outcome.String()),
	)

	if outcome == OutcomeFatal {
		span.SetStatus(codes.Error, "gateway timeout")
	}

	attrs := metric.WithAttributes(
		attribute.String("method", string(method)),
		attribute.String("status_class", strconv.Itoa(status/100)+"xx"),
		attribute.String("outcome", outcome.String()),
	)

	t.requests.Add(ctx, 1, attrs)
	t.duration.Record(ctx, millis, attrs)
}

func (t *telemetry) fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
