package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeCreated  = "created"
	OutcomeConflict = "conflict"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	once sync.Once

	reservationAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking_manager",
			Name:      "reservation_attempts_total",
			Help:      "Count of reservation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking_manager",
			Name:      "cache_lookups_total",
			Help:      "Count of cache lookups by cache and result.",
		},
		[]string{"cache", "result"},
	)

	shiftsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "booking_manager",
			Name:      "shifts_created_total",
			Help:      "Count of shifts persisted.",
		},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "booking_manager",
			Name:      "rate_limited_requests_total",
			Help:      "Count of requests rejected by the rate limiter.",
		},
	)
)

// Register 注册所有指标，可以重复调用
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationAttempts, cacheLookups, shiftsCreated, rateLimited)
	})
}

func IncReservationAttempt(outcome string) {
	reservationAttempts.WithLabelValues(outcome).Inc()
}

func IncCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(cache, result).Inc()
}

func AddShiftsCreated(n int) {
	shiftsCreated.Add(float64(n))
}

func IncRateLimited() {
	rateLimited.Inc()
}
