package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for lead intake and the admin session.
type LeadMetrics struct {
	intakeTotal  *prometheus.CounterVec
	listingTotal *prometheus.CounterVec
	sessionTotal *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		intakeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadgate",
			Subsystem: "leads",
			Name:      "intake_total",
			Help:      "Lead submissions by outcome",
		}, []string{"outcome"}),
		listingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadgate",
			Subsystem: "leads",
			Name:      "listing_total",
			Help:      "Admin lead listings by outcome",
		}, []string{"outcome"}),
		sessionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadgate",
			Subsystem: "session",
			Name:      "events_total",
			Help:      "Admin session logins, checks and logouts by result",
		}, []string{"event", "result"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadgate",
			Subsystem: "leads",
			Name:      "store_latency_seconds",
			Help:      "Latency of lead store calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.intakeTotal, m.listingTotal, m.sessionTotal, m.storeLatency)
	return m
}

// ObserveIntake records one intake outcome: created, invalid, store_error, config_error.
func (m *LeadMetrics) ObserveIntake(outcome string) {
	if m == nil {
		return
	}
	m.intakeTotal.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveListing(outcome string) {
	if m == nil {
		return
	}
	m.listingTotal.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveSession(event, result string) {
	if m == nil {
		return
	}
	m.sessionTotal.WithLabelValues(event, result).Inc()
}

func (m *LeadMetrics) ObserveStoreLatency(op string, seconds float64) {
	if m == nil {
		return
	}
	m.storeLatency.WithLabelValues(op).Observe(seconds)
}
