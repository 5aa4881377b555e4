package rabbitmq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateRetryBackoff_ExponentialUntilCap(t *testing.T) {
	t.Parallel()

	initial := 5 * time.Second
	maxDelay := 30 * time.Second
	multiplier := 2.0

	assert.Equal(t, 5*time.Second, calculateRetryBackoff(0, initial, maxDelay, multiplier))
	assert.Equal(t, 10*time.Second, calculateRetryBackoff(1, initial, maxDelay, multiplier))
	assert.Equal(t, 20*time.Second, calculateRetryBackoff(2, initial, maxDelay, multiplier))
	assert.Equal(t, maxDelay, calculateRetryBackoff(3, initial, maxDelay, multiplier), "delay exceeding cap clamps to cap")
	assert.Equal(t, maxDelay, calculateRetryBackoff(10, initial, maxDelay, multiplier), "far exceeding cap still clamps")
}

func TestDefaultMaxRetries_MatchesConfiguredAttempts(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4, defaultMaxRetries)
}

func TestRetryOrDLQRouting_BoundaryCondition(t *testing.T) {
	t.Parallel()

	const maxRetries = 4

	tests := []struct {
		retryCount  int
		routeToDLQ  bool
		description string
	}{
		{0, false, "first failure republishes to retry queue"},
		{1, false, "second failure republishes to retry queue"},
		{2, false, "third failure republishes to retry queue"},
		{3, true, "fourth failure (retryCount == maxRetries-1) routes to dlq"},
		{4, true, "retryCount exceeding maxRetries-1 routes to dlq"},
		{100, true, "retryCount far exceeding maxRetries-1 routes to dlq"},
	}

	for _, tt := range tests {
		got := tt.retryCount >= maxRetries-1
		assert.Equal(t, tt.routeToDLQ, got, tt.description)
	}
}
