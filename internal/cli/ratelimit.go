package cli

import "golang.org/x/time/rate"

// newRateLimiter throttles how fast the orchestrator starts new
// journals to rps starts per second, with a burst of one (no start
// beyond the steady rate).
func newRateLimiter(rps float64) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(rps), 1)
}
