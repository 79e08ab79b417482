package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// SupplierSearchTotal counts supplier search executions by cache outcome.
	SupplierSearchTotal *prometheus.CounterVec
	// SupplierSearchResults observes the size of supplier search results.
	SupplierSearchResults prometheus.Histogram
	// OrdersCreatedTotal counts created orders by initial status.
	OrdersCreatedTotal *prometheus.CounterVec
	// ComplianceVerificationsTotal counts verification outcomes by resulting status.
	ComplianceVerificationsTotal *prometheus.CounterVec
	// NegotiationRequestsTotal counts negotiation generator calls by kind and outcome.
	NegotiationRequestsTotal *prometheus.CounterVec
	// DomainEventsTotal counts emitted domain events by topic.
	DomainEventsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		SupplierSearchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "supplier_search_total",
			Help:      "Count of supplier searches by cache outcome.",
		}, []string{"cache"})
		SupplierSearchResults = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "supplier_search_results",
			Help:      "Number of suppliers returned per search.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		})
		OrdersCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Count of created purchase orders by initial status.",
		}, []string{"status"})
		ComplianceVerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compliance_verifications_total",
			Help:      "Count of compliance verifications by resulting status.",
		}, []string{"status"})
		NegotiationRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "negotiation_requests_total",
			Help:      "Count of negotiation generator calls by kind and result (ok, fallback).",
		}, []string{"kind", "result"})
		DomainEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Count of emitted domain events by topic.",
		}, []string{"topic"})

		mustRegisterCollector(reg, SupplierSearchTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SupplierSearchTotal = v
			}
		})
		mustRegisterCollector(reg, SupplierSearchResults, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				SupplierSearchResults = v
			}
		})
		mustRegisterCollector(reg, OrdersCreatedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrdersCreatedTotal = v
			}
		})
		mustRegisterCollector(reg, ComplianceVerificationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ComplianceVerificationsTotal = v
			}
		})
		mustRegisterCollector(reg, NegotiationRequestsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				NegotiationRequestsTotal = v
			}
		})
		mustRegisterCollector(reg, DomainEventsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DomainEventsTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, c prometheus.Collector, onExisting func(prometheus.Collector)) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			onExisting(are.ExistingCollector)
			return
		}
		panic(fmt.Errorf("register collector: %w", err))
	}
}

// IncSupplierSearch records a search and its result size. Safe before registration.
func IncSupplierSearch(cache string, results int) {
	if SupplierSearchTotal != nil {
		SupplierSearchTotal.WithLabelValues(cache).Inc()
	}
	if SupplierSearchResults != nil {
		SupplierSearchResults.Observe(float64(results))
	}
}

// IncOrderCreated records a created order.
func IncOrderCreated(status string) {
	if OrdersCreatedTotal != nil {
		OrdersCreatedTotal.WithLabelValues(status).Inc()
	}
}

// IncComplianceVerification records a verification outcome.
func IncComplianceVerification(status string) {
	if ComplianceVerificationsTotal != nil {
		ComplianceVerificationsTotal.WithLabelValues(status).Inc()
	}
}

// IncNegotiation records a negotiation generator call.
func IncNegotiation(kind, result string) {
	if NegotiationRequestsTotal != nil {
		NegotiationRequestsTotal.WithLabelValues(kind, result).Inc()
	}
}

// IncDomainEvent records an emitted event.
func IncDomainEvent(topic string) {
	if DomainEventsTotal != nil {
		DomainEventsTotal.WithLabelValues(topic).Inc()
	}
}
