package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flow.
type BookingMetrics struct {
	allocatedTotal  *prometheus.CounterVec
	failuresTotal   *prometheus.CounterVec
	malformedTotal  *prometheus.CounterVec
	searchDaysSpent prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		allocatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consulta",
			Subsystem: "bookings",
			Name:      "allocated_total",
			Help:      "Total slots allocated and appended to the ledger",
		}, []string{"shift"}),
		failuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consulta",
			Subsystem: "bookings",
			Name:      "failures_total",
			Help:      "Total allocation batches that failed",
		}, []string{"reason"}),
		malformedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consulta",
			Subsystem: "store",
			Name:      "malformed_lines_total",
			Help:      "Total malformed lines skipped while scanning flat files",
		}, []string{"file"}),
		searchDaysSpent: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "consulta",
			Subsystem: "bookings",
			Name:      "search_days",
			Help:      "Calendar days scanned before a free slot was found",
			Buckets:   []float64{0, 1, 2, 7, 14, 30, 90, 365, 730},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.allocatedTotal, m.failuresTotal, m.malformedTotal, m.searchDaysSpent)
	return m
}

func (m *BookingMetrics) ObserveAllocated(shift string) {
	if m == nil {
		return
	}
	m.allocatedTotal.WithLabelValues(shift).Inc()
}

func (m *BookingMetrics) ObserveFailure(reason string) {
	if m == nil {
		return
	}
	m.failuresTotal.WithLabelValues(reason).Inc()
}

func (m *BookingMetrics) ObserveMalformedLine(file string) {
	if m == nil {
		return
	}
	m.malformedTotal.WithLabelValues(file).Inc()
}

func (m *BookingMetrics) ObserveSearchDays(days int) {
	if m == nil {
		return
	}
	m.searchDaysSpent.Observe(float64(days))
}
