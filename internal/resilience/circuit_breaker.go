package resilience

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Upstream names, one breaker each
const (
	UpstreamNBAStats = "nba_stats"
	UpstreamDVP      = "dvp"
	UpstreamOdds     = "odds"
)

type CircuitBreakerService struct {
	breakers map[string]*gobreaker.CircuitBreaker
	logger   *logrus.Logger
}

func NewCircuitBreakerService(threshold int, timeout time.Duration, logger *logrus.Logger) *CircuitBreakerService {
	breakers := make(map[string]*gobreaker.CircuitBreaker)
	for _, name := range []string{UpstreamNBAStats, UpstreamDVP, UpstreamOdds} {
		breakers[name] = gobreaker.NewCircuitBreaker(breakerSettings(name, threshold, timeout, logger))
	}

	return &CircuitBreakerService{
		breakers: breakers,
		logger:   logger,
	}
}

func breakerSettings(name string, threshold int, timeout time.Duration, logger *logrus.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(threshold),
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("Circuit breaker state changed")
		},
	}
}

// Execute wraps a function call with circuit breaker protection
func (cb *CircuitBreakerService) Execute(service string, fn func() (interface{}, error)) (interface{}, error) {
	if cb == nil {
		return fn()
	}
	breaker, exists := cb.breakers[service]
	if !exists {
		cb.logger.WithFields(logrus.Fields{
			"component": "circuit_breaker",
			"service":   service,
		}).Warn("No circuit breaker found for service, executing without protection")
		return fn()
	}

	return breaker.Execute(fn)
}

// GetState returns the current state of a circuit breaker
func (cb *CircuitBreakerService) GetState(service string) gobreaker.State {
	if cb == nil {
		return gobreaker.StateClosed
	}
	if breaker, exists := cb.breakers[service]; exists {
		return breaker.State()
	}
	return gobreaker.StateClosed
}

// States returns the state of every breaker, for health reporting
func (cb *CircuitBreakerService) States() map[string]string {
	states := make(map[string]string)
	if cb == nil {
		return states
	}
	for name, breaker := range cb.breakers {
		states[name] = breaker.State().String()
	}
	return states
}
