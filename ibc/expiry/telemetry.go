package expiry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "chainops/ibc/expiry"

// Metric names.
const (
	MetricClientsChecked = "ibc.client_expiry.clients_checked"
	MetricClientElapsed  = "ibc.client_expiry.elapsed"
)

type instruments struct {
	tracer  trace.Tracer
	checked metric.Int64Counter
	elapsed metric.Float64Histogram
}

// WithTracerProvider sets the provider of the run and per-client spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) ReporterOption {
	return func(r *Reporter) {
		if tp != nil {
			r.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the provider of the reporter metrics. Defaults to the
// global provider.
func WithMeterProvider(mp metric.MeterProvider) ReporterOption {
	return func(r *Reporter) {
		if mp != nil {
			r.meterProvider = mp
		}
	}
}

func newInstruments(tp trace.TracerProvider, mp metric.MeterProvider) (instruments, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	checked, err := meter.Int64Counter(
		MetricClientsChecked,
		metric.WithDescription("Number of light clients checked, by status"),
	)
	if err != nil {
		return instruments{}, err
	}
	elapsed, err := meter.Float64Histogram(
		MetricClientElapsed,
		metric.WithDescription("Time since the latest consensus state of a light client"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return instruments{}, err
	}

	return instruments{
		tracer:  tp.Tracer(instrumentationName),
		checked: checked,
		elapsed: elapsed,
	}, nil
}

func noopInstruments(tp trace.TracerProvider) instruments {
	meter := noop.NewMeterProvider().Meter(instrumentationName)
	checked, _ := meter.Int64Counter(MetricClientsChecked)
	elapsed, _ := meter.Float64Histogram(MetricClientElapsed)
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return instruments{tracer: tp.Tracer(instrumentationName), checked: checked, elapsed: elapsed}
}
