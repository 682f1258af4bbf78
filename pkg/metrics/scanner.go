package metrics

import "github.com/prometheus/client_golang/prometheus"

// Scanner message outcomes.
const (
	ScanInserted = "inserted"
	ScanDropped  = "dropped"
	ScanRetried  = "retried"
)

type ScannerMetrics struct {
	messages *prometheus.CounterVec
}

func NewScannerMetrics(reg prometheus.Registerer) *ScannerMetrics {
	if reg == nil {
		return &ScannerMetrics{}
	}
	m := &ScannerMetrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_messages_total",
			Help: "RFID scan messages processed by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.messages)
	return m
}

func (m *ScannerMetrics) Inc(outcome string) {
	if m == nil || m.messages == nil {
		return
	}
	m.messages.WithLabelValues(normalizeLabel(outcome)).Inc()
}
