package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics holds the counters and histograms for order lifecycle
// operations.
type OrderMetrics struct {
	ordersPlaced   prometheus.Counter
	ordersCanceled prometheus.Counter
	statusChanges  *prometheus.CounterVec

	stockConflicts prometheus.Counter
	stockClamped   prometheus.Counter

	checkoutDuration prometheus.Histogram
	stepDuration     *prometheus.HistogramVec

	trackingEvents prometheus.Counter
	outboxEvents   prometheus.Counter
	emailsQueued   prometheus.Counter
	emailsFailed   prometheus.Counter
}

// NewOrderMetrics creates order metrics on the default registerer.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders placed",
		}),
		ordersCanceled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_canceled_total",
			Help: "Total number of orders canceled",
		}),
		statusChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_order_status_changes_total",
			Help: "Total number of order status transitions",
		}, []string{"status"}),
		stockConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_stock_version_conflicts_total",
			Help: "Total number of optimistic-locking conflicts on stock writes",
		}),
		stockClamped: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_stock_decrements_clamped_total",
			Help: "Total number of checkout decrements clamped by the zero floor",
		}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_checkout_duration_seconds",
			Help:    "Duration of checkout operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stepDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "storefront_order_step_duration_seconds",
			Help:    "Duration of individual order lifecycle steps in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"step"}),
		trackingEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_tracking_events_total",
			Help: "Total number of tracking ledger events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_outbox_events_total",
			Help: "Total number of events enqueued to the transactional outbox",
		}),
		emailsQueued: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_emails_queued_total",
			Help: "Total number of transactional emails queued for dispatch",
		}),
		emailsFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_emails_failed_total",
			Help: "Total number of transactional emails that failed to send",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced increments the placed-orders counter.
func (m *OrderMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordOrderCanceled increments the canceled-orders counter.
func (m *OrderMetrics) RecordOrderCanceled() {
	m.ordersCanceled.Inc()
}

// RecordStatusChange counts one transition into the given status.
func (m *OrderMetrics) RecordStatusChange(status string) {
	m.statusChanges.WithLabelValues(status).Inc()
}

// RecordStockConflict counts one lost optimistic-locking race on stock.
func (m *OrderMetrics) RecordStockConflict() {
	m.stockConflicts.Inc()
}

// RecordStockClamped counts one checkout decrement floored at zero.
func (m *OrderMetrics) RecordStockClamped() {
	m.stockClamped.Inc()
}

// RecordCheckoutDuration records how long a checkout took.
func (m *OrderMetrics) RecordCheckoutDuration(duration time.Duration) {
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordStepDuration records the duration of one lifecycle step.
func (m *OrderMetrics) RecordStepDuration(step string, duration time.Duration) {
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordTrackingEvent counts one appended ledger event.
func (m *OrderMetrics) RecordTrackingEvent() {
	m.trackingEvents.Inc()
}

// RecordOutboxEvent counts one enqueued outbox event.
func (m *OrderMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}

// RecordEmailQueued counts one email handed to the mailer.
func (m *OrderMetrics) RecordEmailQueued() {
	m.emailsQueued.Inc()
}

// RecordEmailFailed counts one email the mailer rejected.
func (m *OrderMetrics) RecordEmailFailed() {
	m.emailsFailed.Inc()
}
