// Package observability exports pipeline runs to OpenTelemetry.
//
// InitTracer and InitMeter install OTLP/HTTP providers globally:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("seqpipe"))
//	defer tp.Shutdown(ctx)
//
// A PipelineObserver turns every Pipeline.Run into a "pipeline.run" span and
// records run, element and duration metrics:
//
//	obs, err := observability.NewPipelineObserver(observability.WithPlanName("shout"))
//	p = p.WithObserver(obs)
package observability
