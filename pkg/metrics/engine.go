package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records outcomes of the decision engine: tax quotes,
// lifecycle transitions and cascade validations.
type EngineMetrics struct {
	quoteDuration       *prometheus.HistogramVec
	quotesComputed      *prometheus.CounterVec
	transitionsApplied  *prometheus.CounterVec
	transitionsRejected *prometheus.CounterVec
	cascadeBlocked      *prometheus.CounterVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	quoteDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tax_quote_duration_seconds",
		Help:    "Duration of tax quote computations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"country"})
	quotesComputed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tax_quotes_computed",
		Help: "Tax quotes computed, labeled by destination country.",
	}, []string{"country"})
	transitionsApplied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_applied",
		Help: "Order lifecycle transitions applied, labeled by domain.",
	}, []string{"domain"})
	transitionsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_rejected",
		Help: "Order lifecycle transitions rejected, labeled by domain and reason.",
	}, []string{"domain", "reason"})
	cascadeBlocked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cascade_deletes_blocked",
		Help: "Cascade delete validations that produced blocked entries, labeled by entity type.",
	}, []string{"entity_type"})
	reg.MustRegister(quoteDuration, quotesComputed, transitionsApplied, transitionsRejected, cascadeBlocked)
	return &EngineMetrics{
		quoteDuration:       quoteDuration,
		quotesComputed:      quotesComputed,
		transitionsApplied:  transitionsApplied,
		transitionsRejected: transitionsRejected,
		cascadeBlocked:      cascadeBlocked,
	}
}

// ObserveQuoteDuration records how long a quote took for the destination country.
func (m *EngineMetrics) ObserveQuoteDuration(country string, duration time.Duration) {
	if m == nil || m.quoteDuration == nil {
		return
	}
	m.quoteDuration.WithLabelValues(normalizeLabel(country)).Observe(duration.Seconds())
}

// IncQuoteComputed increments the quote counter for the destination country.
func (m *EngineMetrics) IncQuoteComputed(country string) {
	if m == nil || m.quotesComputed == nil {
		return
	}
	m.quotesComputed.WithLabelValues(normalizeLabel(country)).Inc()
}

// IncTransitionApplied increments the applied counter for the given status domain.
func (m *EngineMetrics) IncTransitionApplied(domain string) {
	if m == nil || m.transitionsApplied == nil {
		return
	}
	m.transitionsApplied.WithLabelValues(normalizeLabel(domain)).Inc()
}

// IncTransitionRejected increments the rejected counter for the domain and reason.
func (m *EngineMetrics) IncTransitionRejected(domain, reason string) {
	if m == nil || m.transitionsRejected == nil {
		return
	}
	m.transitionsRejected.WithLabelValues(normalizeLabel(domain), normalizeLabel(reason)).Inc()
}

// IncCascadeBlocked increments the blocked counter for the entity type.
func (m *EngineMetrics) IncCascadeBlocked(entityType string) {
	if m == nil || m.cascadeBlocked == nil {
		return
	}
	m.cascadeBlocked.WithLabelValues(normalizeLabel(entityType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
