// Package metrics exposes OTel instruments for the subscription core.
package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	subscriptionTransitions metric.Int64Counter
	billingTransitions      metric.Int64Counter
	usageRecords            metric.Int64Counter
	usageRecordFailures     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "kissa"
	}
	meter := provider.Meter(name)

	subscriptionTransitions, err := meter.Int64Counter("kissa_subscription_transitions_total")
	if err != nil {
		return nil, err
	}
	billingTransitions, err := meter.Int64Counter("kissa_billing_transitions_total")
	if err != nil {
		return nil, err
	}
	usageRecords, err := meter.Int64Counter("kissa_usage_records_total")
	if err != nil {
		return nil, err
	}
	usageRecordFailures, err := meter.Int64Counter("kissa_usage_record_failures_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		subscriptionTransitions: subscriptionTransitions,
		billingTransitions:      billingTransitions,
		usageRecords:            usageRecords,
		usageRecordFailures:     usageRecordFailures,
	}, nil
}

// RecordSubscriptionTransition increments subscription lifecycle counts.
func (m *Metrics) RecordSubscriptionTransition(ctx context.Context, operation, status string) {
	if m == nil {
		return
	}
	m.subscriptionTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

// RecordBillingTransition increments billing record transition counts.
func (m *Metrics) RecordBillingTransition(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.billingTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

// RecordUsage increments usage recording counts.
func (m *Metrics) RecordUsage(ctx context.Context, event string) {
	if m == nil {
		return
	}
	m.usageRecords.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
	))
}

// RecordUsageFailure increments swallowed auto-record failure counts.
func (m *Metrics) RecordUsageFailure(ctx context.Context, event string) {
	if m == nil {
		return
	}
	m.usageRecordFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
	))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}
