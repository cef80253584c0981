package obs

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Calculation outcome labels.
const (
	CalcOK             = "ok"
	CalcCouponRejected = "coupon_rejected"
	CalcError          = "error"
)

// PricingMetrics groups the domain collectors for cart calculations. A nil
// receiver is a no-op so callers never need to guard on metrics being enabled.
type PricingMetrics struct {
	calculations *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	discounts    *prometheus.CounterVec
	pendingGifts *prometheus.CounterVec
}

// NewPricingMetrics initialises and registers the pricing collectors. Double
// registration reuses the existing collector so tests can construct freely.
func NewPricingMetrics(namespace string, reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PricingMetrics{
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Count of cart calculations by outcome.",
		}, []string{"result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_ms",
			Help:      "Cart calculation latency in milliseconds.",
			Buckets:   []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"result"}),
		discounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_amount_total",
			Help:      "Sum of granted discount amounts in minor units, by stage.",
		}, []string{"stage"}),
		pendingGifts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pending_gifts_total",
			Help:      "Count of gifts that could not be attached automatically.",
		}, []string{"reason"}),
	}
	mustRegisterCollector(reg, m.calculations, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.calculations = v
		}
	})
	mustRegisterCollector(reg, m.duration, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.HistogramVec); ok {
			m.duration = v
		}
	})
	mustRegisterCollector(reg, m.discounts, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.discounts = v
		}
	})
	mustRegisterCollector(reg, m.pendingGifts, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.pendingGifts = v
		}
	})
	return m
}

// ObserveCalculation records one calculation outcome and its latency.
func (m *PricingMetrics) ObserveCalculation(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(result).Inc()
	m.duration.WithLabelValues(result).Observe(float64(elapsed.Milliseconds()))
}

// AddDiscount accumulates a granted discount amount for one stage
// (tier, automatic, coupon, bonus).
func (m *PricingMetrics) AddDiscount(stage string, amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.discounts.WithLabelValues(stage).Add(float64(amount))
}

// PendingGift counts a gift surfaced as pending instead of attached.
func (m *PricingMetrics) PendingGift(reason string) {
	if m == nil {
		return
	}
	m.pendingGifts.WithLabelValues(reason).Inc()
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
