// Package observability provides OpenTelemetry tracing and metrics for
// the authentication path, plus the health model implemented by cached
// components such as the JWKS key set.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanValidateToken)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-service"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("my-service"))
//	metrics.RecordValidation(ctx, "ok", duration)
//
// Health Checks:
//
//	health := observability.NewServiceHealth("my-service", "1.0.0")
//	health.AddComponent(jwksCache.CheckHealth(ctx))
package observability
