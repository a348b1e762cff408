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
	Environment      string
}

// Metrics exposes domain instruments pushed over OTLP.
type Metrics struct {
	reportTransitions metric.Int64Counter
	aggregateWarnings metric.Int64Counter
	rollupRequests    metric.Int64Counter
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

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))
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

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "hsekpi"
	}
	meter := provider.Meter(name)

	reportTransitions, err := meter.Int64Counter("hsekpi_report_transitions_total")
	if err != nil {
		return nil, err
	}
	aggregateWarnings, err := meter.Int64Counter("hsekpi_aggregate_warnings_total")
	if err != nil {
		return nil, err
	}
	rollupRequests, err := meter.Int64Counter("hsekpi_rollup_requests_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		reportTransitions: reportTransitions,
		aggregateWarnings: aggregateWarnings,
		rollupRequests:    rollupRequests,
	}, nil
}

// RecordReportTransition counts weekly report status changes.
func (m *Metrics) RecordReportTransition(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.reportTransitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordAggregateWarnings counts data-quality warnings raised while folding a week.
func (m *Metrics) RecordAggregateWarnings(ctx context.Context, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.aggregateWarnings.Add(ctx, int64(count))
}

// RecordRollupRequest counts monthly rollup requests by cache outcome.
func (m *Metrics) RecordRollupRequest(ctx context.Context, cacheStatus string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("cache", strings.TrimSpace(cacheStatus)))
	m.rollupRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
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

var allowedLabelKeys = map[attribute.Key]struct{}{
	"status":  {},
	"cache":   {},
	"section": {},
	"route":   {},
	"reason":  {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
// Project and user identifiers never become labels.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
