package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/skillsenselab/authkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the metric instruments for authentication observability.
type Metrics struct {
	requestActive       metric.Int64UpDownCounter
	requestTotal        metric.Int64Counter
	requestDuration     metric.Float64Histogram
	validationTotal     metric.Int64Counter
	validationDuration  metric.Float64Histogram
	jwksRefreshTotal    metric.Int64Counter
	jwksRefreshDuration metric.Float64Histogram
	deniedTotal         metric.Int64Counter
	errorTotal          metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestActive, err := meter.Int64UpDownCounter("auth.requests.active",
		metric.WithDescription("Number of credential checks currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.requests.active gauge: %w", err)
	}

	requestTotal, err := meter.Int64Counter("auth.requests.total",
		metric.WithDescription("Total number of authenticated requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.requests.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("auth.requests.duration",
		metric.WithDescription("Duration of credential checks in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.requests.duration histogram: %w", err)
	}

	validationTotal, err := meter.Int64Counter("auth.validations.total",
		metric.WithDescription("Total token validations by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.validations.total counter: %w", err)
	}

	validationDuration, err := meter.Float64Histogram("auth.validations.duration",
		metric.WithDescription("Duration of token validations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.validations.duration histogram: %w", err)
	}

	jwksRefreshTotal, err := meter.Int64Counter("auth.jwks.refreshes.total",
		metric.WithDescription("Total JWKS refresh attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.jwks.refreshes.total counter: %w", err)
	}

	jwksRefreshDuration, err := meter.Float64Histogram("auth.jwks.refreshes.duration",
		metric.WithDescription("Duration of JWKS refreshes in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.jwks.refreshes.duration histogram: %w", err)
	}

	deniedTotal, err := meter.Int64Counter("auth.denials.total",
		metric.WithDescription("Total authorization denials by dimension"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.denials.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("auth.errors.total",
		metric.WithDescription("Total errors by type and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.errors.total counter: %w", err)
	}

	return &Metrics{
		requestActive:       requestActive,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		validationTotal:     validationTotal,
		validationDuration:  validationDuration,
		jwksRefreshTotal:    jwksRefreshTotal,
		jwksRefreshDuration: jwksRefreshDuration,
		deniedTotal:         deniedTotal,
		errorTotal:          errorTotal,
	}, nil
}

// RecordRequestStart increments the active request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements active requests and records the completed request.
func (m *Metrics) RecordRequestEnd(ctx context.Context, service, operation, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
	))
}

// RecordValidation records a token validation. Outcome is "ok" or the
// error code of the rejection.
func (m *Metrics) RecordValidation(ctx context.Context, outcome string, duration time.Duration) {
	m.validationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
	m.validationDuration.Record(ctx, duration.Seconds())
}

// RecordJWKSRefresh records a key set refresh attempt. Outcome is "ok",
// "stale" (failure with previous keys retained), or "error".
func (m *Metrics) RecordJWKSRefresh(ctx context.Context, outcome string, duration time.Duration) {
	m.jwksRefreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
	m.jwksRefreshDuration.Record(ctx, duration.Seconds())
}

// RecordDenied records an authorization denial for a requirement dimension
// ("roles" or "groups").
func (m *Metrics) RecordDenied(ctx context.Context, dimension string) {
	m.deniedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("dimension", dimension),
	))
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
