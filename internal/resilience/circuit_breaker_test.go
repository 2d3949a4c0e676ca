package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	cb := NewCircuitBreakerService(1, time.Minute, quietLogger())
	failing := func() (interface{}, error) { return nil, errors.New("status 429") }

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(UpstreamNBAStats, failing)
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.GetState(UpstreamNBAStats))

	_, err := cb.Execute(UpstreamNBAStats, func() (interface{}, error) { return "ok", nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	assert.Equal(t, gobreaker.StateClosed, cb.GetState(UpstreamOdds), "breakers are independent")
}

func TestCircuitBreakerUnknownServiceRunsUnprotected(t *testing.T) {
	cb := NewCircuitBreakerService(1, time.Minute, quietLogger())

	result, err := cb.Execute("unknown", func() (interface{}, error) { return 42, nil })

	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestNilCircuitBreakerServicePassesThrough(t *testing.T) {
	var cb *CircuitBreakerService

	result, err := cb.Execute(UpstreamDVP, func() (interface{}, error) { return "html", nil })

	require.NoError(t, err)
	assert.Equal(t, "html", result)
	assert.Equal(t, gobreaker.StateClosed, cb.GetState(UpstreamDVP))
	assert.Empty(t, cb.States())
}

func TestCircuitBreakerStates(t *testing.T) {
	cb := NewCircuitBreakerService(1, time.Minute, quietLogger())

	states := cb.States()

	assert.Equal(t, map[string]string{
		UpstreamNBAStats: "closed",
		UpstreamDVP:      "closed",
		UpstreamOdds:     "closed",
	}, states)
}
