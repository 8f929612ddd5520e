package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters/histograms for the conversation pipeline and the
// model orchestration layer. It satisfies the llm observer, the ledger drop
// counter, and the conversation turn observer.
type Metrics struct {
	turnsTotal       *prometheus.CounterVec
	turnLatency      *prometheus.HistogramVec
	modelCallsTotal  *prometheus.CounterVec
	modelCallLatency *prometheus.HistogramVec
	ledgerDropsTotal prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadqual",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total processed conversation turns",
		}, []string{"intent", "outcome"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadqual",
			Subsystem: "conversation",
			Name:      "turn_latency_seconds",
			Help:      "End-to-end latency of one conversation turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
		modelCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadqual",
			Subsystem: "llm",
			Name:      "model_calls_total",
			Help:      "Total model invocations by tier and category",
		}, []string{"tier", "category", "success", "fallback"}),
		modelCallLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadqual",
			Subsystem: "llm",
			Name:      "model_call_latency_seconds",
			Help:      "Latency of individual model invocations",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}, []string{"tier", "category"}),
		ledgerDropsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leadqual",
			Subsystem: "ledger",
			Name:      "dropped_records_total",
			Help:      "Invocation records the ledger failed to persist",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.turnLatency, m.modelCallsTotal, m.modelCallLatency, m.ledgerDropsTotal)
	return m
}

// ObserveTurn records one processed conversation turn.
func (m *Metrics) ObserveTurn(intent, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent, outcome).Inc()
	m.turnLatency.WithLabelValues(intent).Observe(seconds)
}

// ObserveModelCall records one model invocation attempt.
func (m *Metrics) ObserveModelCall(tier, category string, success, fallback bool, seconds float64) {
	if m == nil {
		return
	}
	m.modelCallsTotal.WithLabelValues(tier, category, boolLabel(success), boolLabel(fallback)).Inc()
	m.modelCallLatency.WithLabelValues(tier, category).Observe(seconds)
}

// ObserveLedgerDrop counts an invocation record lost to a storage failure.
func (m *Metrics) ObserveLedgerDrop() {
	if m == nil {
		return
	}
	m.ledgerDropsTotal.Inc()
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
