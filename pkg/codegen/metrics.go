package codegen

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/0xmhha/indexer-codegen/internal/constants"
	"github.com/0xmhha/indexer-codegen/pkg/errdefs"
	"github.com/0xmhha/indexer-codegen/pkg/model"
)

// Metrics holds the Prometheus metrics of generator runs. Each Metrics owns
// its registry so a run can be exported on its own.
type Metrics struct {
	registry *prometheus.Registry

	// Counters (cumulative values)
	NetworksTotal  prometheus.Counter
	ContractsTotal prometheus.Counter
	EventsTotal    prometheus.Counter
	ParamsTotal    *prometheus.CounterVec
	FailuresTotal  *prometheus.CounterVec

	// Histograms (distributions)
	RunDuration prometheus.Histogram
}

// NewMetrics creates a registry and registers all generator metrics on it
func NewMetrics(namespace, subsystem string) *Metrics {
	if namespace == "" {
		namespace = constants.MetricsNamespace
	}
	if subsystem == "" {
		subsystem = constants.MetricsSubsystem
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		NetworksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "networks_total",
			Help:      "Total number of networks in generated models",
		}),
		ContractsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "contracts_total",
			Help:      "Total number of contracts in generated models",
		}),
		EventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_total",
			Help:      "Total number of events in generated models",
		}),
		ParamsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "params_total",
			Help:      "Total number of flattened event parameters",
		}, []string{"nested"}),
		FailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "failures_total",
			Help:      "Total number of failed runs by error kind",
		}, []string{"kind"}),

		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Generator run duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}, // 1ms to 5s
		}),
	}
}

// Registry returns the registry holding the metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveModel counts the networks, contracts, events and params of a model
func (m *Metrics) ObserveModel(built *model.Model) {
	m.NetworksTotal.Add(float64(len(built.Networks)))
	m.ContractsTotal.Add(float64(len(built.Contracts)))

	for _, c := range built.Contracts {
		m.EventsTotal.Add(float64(len(c.Events)))
		for _, e := range c.Events {
			for _, p := range e.Params {
				m.ParamsTotal.WithLabelValues(strconv.FormatBool(p.AccessorPath != nil)).Inc()
			}
		}
	}
}

// ObserveFailure counts a failed run under the kind of err
func (m *Metrics) ObserveFailure(err error) {
	m.FailuresTotal.WithLabelValues(KindLabel(err)).Inc()
}

// ObserveRun records the duration of a run
func (m *Metrics) ObserveRun(duration time.Duration) {
	m.RunDuration.Observe(duration.Seconds())
}

// WriteToTextfile writes the metrics in the text exposition format, for the
// node exporter textfile collector
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// KindLabel names the error kind of err for metric labels and log fields
func KindLabel(err error) string {
	switch errdefs.KindOf(err) {
	case errdefs.ErrConfigRead:
		return "config_read"
	case errdefs.ErrConfigDeserialize:
		return "config_deserialize"
	case errdefs.ErrConfigValidation:
		return "config_validation"
	case errdefs.ErrAbiParse:
		return "abi_parse"
	case errdefs.ErrModelBuild:
		return "model_build"
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	}
	return "unknown"
}
