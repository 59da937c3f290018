package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/pipeline"
)

// PipelineObserver reports pipeline runs as spans and metrics.
type PipelineObserver struct {
	tracer  trace.Tracer
	metrics *PipelineMetrics
	plan    string
}

var _ pipeline.Observer = (*PipelineObserver)(nil)

type observerOptions struct {
	tp   trace.TracerProvider
	mp   metric.MeterProvider
	plan string
}

// ObserverOption configures a PipelineObserver.
type ObserverOption func(*observerOptions)

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) ObserverOption {
	return func(o *observerOptions) { o.tp = tp }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) ObserverOption {
	return func(o *observerOptions) { o.mp = mp }
}

// WithPlanName labels spans and metrics with the plan being run.
func WithPlanName(name string) ObserverOption {
	return func(o *observerOptions) { o.plan = name }
}

// NewPipelineObserver creates an observer on the global providers unless
// overridden.
func NewPipelineObserver(opts ...ObserverOption) (*PipelineObserver, error) {
	o := observerOptions{tp: otel.GetTracerProvider(), mp: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&o)
	}
	metrics, err := NewPipelineMetrics(o.mp.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}
	return &PipelineObserver{
		tracer:  o.tp.Tracer(instrumentationName),
		metrics: metrics,
		plan:    o.plan,
	}, nil
}

// RunStarted opens the run span. The returned context carries the span and
// the run ID, so transforms and loggers downstream can pick both up.
func (o *PipelineObserver) RunStarted(ctx context.Context, info pipeline.RunInfo) context.Context {
	ctx, _ = o.tracer.Start(ctx, SpanPipelineRun,
		trace.WithTimestamp(info.Started),
		trace.WithAttributes(
			attribute.String(AttrRunID, info.ID),
			attribute.Int(AttrStages, info.Stages),
			attribute.String(AttrPlan, o.plan),
		),
	)
	return logger.ContextWithRunID(ctx, info.ID)
}

// RunFinished closes the run span and records the run metrics.
func (o *PipelineObserver) RunFinished(ctx context.Context, info pipeline.RunInfo, yielded int, err error) {
	span := trace.SpanFromContext(ctx)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Int(AttrYielded, yielded))
	span.End()

	o.metrics.RecordRun(ctx, o.plan, status, yielded, time.Since(info.Started))
}
