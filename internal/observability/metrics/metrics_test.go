package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveTurn("BANT", "replied", 1.2)
	m.ObserveModelCall("standard", "classification", true, false, 0.4)
	m.ObserveModelCall("economy", "reply", false, true, 2.0)
	m.ObserveLedgerDrop()
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveTurn("GENERAL", "replied", 0.1)
	m.ObserveModelCall("premium", "reply", true, false, 0.2)
	m.ObserveLedgerDrop()
}
