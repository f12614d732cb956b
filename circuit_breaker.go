package asinfo

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// NewCircuitBreakerConfig returns a function that creates circuit breakers for nodes.
// This is a helper for common use cases.
//
// The breaker opens once at least 3 requests were seen in the interval and
// 60% of them failed. While open, requests to the node fail fast with
// gobreaker.ErrOpenState. Only transport failures count: a response that
// does not echo the requested name leaves the breaker untouched.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(string) *gobreaker.CircuitBreaker[int] {
	return func(addr string) *gobreaker.CircuitBreaker[int] {
		settings := gobreaker.Settings{
			Name:        addr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			IsSuccessful: isBreakerSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("asinfo: circuit breaker state changed", "addr", name, "from", from.String(), "to", to.String())
			},
		}
		return gobreaker.NewCircuitBreaker[int](settings)
	}
}
