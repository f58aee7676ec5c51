package daemon

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the command loop. A nil *Metrics is valid and records nothing.
//
// The daemon has no network surface, so metrics live in a private registry
// that callers may gather or write out as a node_exporter textfile.
type Metrics struct {
	reg *prometheus.Registry

	commandsTotal      *prometheus.CounterVec
	loadsTotal         *prometheus.CounterVec
	generationsTotal   *prometheus.CounterVec
	tokensTotal        prometheus.Counter
	generationDuration prometheus.Histogram
	modelLoaded        prometheus.Gauge
}

// NewMetrics registers the daemon collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "aidaemon",
				Subsystem: "protocol",
				Name:      "commands_total",
				Help:      "Total number of input lines by decoded command type",
			},
			[]string{"type"},
		),
		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "aidaemon",
				Subsystem: "model",
				Name:      "loads_total",
				Help:      "Total load_model outcomes",
			},
			[]string{"result"},
		),
		generationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "aidaemon",
				Subsystem: "generate",
				Name:      "requests_total",
				Help:      "Total generate outcomes",
			},
			[]string{"result"},
		),
		tokensTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "aidaemon",
				Subsystem: "generate",
				Name:      "tokens_total",
				Help:      "Total tokens streamed to the client",
			},
		),
		generationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "aidaemon",
				Subsystem: "generate",
				Name:      "duration_seconds",
				Help:      "Duration of generate commands in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
		),
		modelLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "aidaemon",
				Subsystem: "model",
				Name:      "loaded",
				Help:      "1 when a model is resident",
			},
		),
	}
	m.reg.MustRegister(m.commandsTotal, m.loadsTotal, m.generationsTotal, m.tokensTotal, m.generationDuration, m.modelLoaded)
	return m
}


// WriteTextfile writes the current values in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}

func (m *Metrics) command(kind string) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) load(result string, resident bool) {
	if m == nil {
		return
	}
	m.loadsTotal.WithLabelValues(result).Inc()
	if resident {
		m.modelLoaded.Set(1)
	}
}

func (m *Metrics) unloaded() {
	if m == nil {
		return
	}
	m.modelLoaded.Set(0)
}

func (m *Metrics) token() {
	if m == nil {
		return
	}
	m.tokensTotal.Inc()
}

func (m *Metrics) generation(result string, started time.Time) {
	if m == nil {
		return
	}
	m.generationsTotal.WithLabelValues(result).Inc()
	m.generationDuration.Observe(time.Since(started).Seconds())
}
