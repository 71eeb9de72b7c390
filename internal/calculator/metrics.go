package calculator

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"ladder-calculator/internal/observability"
)

// Metric instruments, initialized once via InitMetrics(). Until then they
// discard everything and the Prometheus collectors stay unregistered.
var (
	opsCounter     metric.Int64Counter     = noop.Int64Counter{}
	opsHistogram   metric.Float64Histogram = noop.Float64Histogram{}
	errorCounter   metric.Int64Counter     = noop.Int64Counter{}
	stepCountGauge metric.Int64Gauge       = noop.Int64Gauge{}

	promCalculations = newCalculationsCounter()
	promSessions     = newSessionsGauge()
)

// Outcome label values for ladder_calculations_total.
const (
	outcomeComputed = "computed"
	outcomeRejected = "rejected"
)

// InitMetrics registers custom OTel metric instruments and Prometheus
// collectors for the ladder domain. Call this once at startup (after
// observability.InitMetrics). Repeated calls reuse the registered collectors.
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	opsCounter, err = meter.Int64Counter("ladder.calculations.total",
		metric.WithDescription("Total number of ladders computed"),
		metric.WithUnit("{calculation}"),
	)
	if err != nil {
		return fmt.Errorf("creating ops counter: %w", err)
	}

	opsHistogram, err = meter.Float64Histogram("ladder.calculation.duration",
		metric.WithDescription("Duration of ladder calculations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating ops histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("ladder.errors.total",
		metric.WithDescription("Total number of rejected ladder requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	stepCountGauge, err = meter.Int64Gauge("ladder.last_step_count",
		metric.WithDescription("Step count of the last computed ladder"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		return fmt.Errorf("creating step count gauge: %w", err)
	}

	promCalculations, err = observability.RegisterCollector(newCalculationsCounter())
	if err != nil {
		return fmt.Errorf("registering calculations counter: %w", err)
	}

	promSessions, err = observability.RegisterCollector(newSessionsGauge())
	if err != nil {
		return fmt.Errorf("registering sessions gauge: %w", err)
	}

	return nil
}

func newCalculationsCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ladder_calculations_total",
			Help: "Ladder calculation attempts by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)
}

func newSessionsGauge() prometheus.Gauge {
	return prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ladder_sessions_active",
			Help: "Number of live calculator sessions",
		},
	)
}
