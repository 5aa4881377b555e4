package rabbitmq

import (
	"context"
	"testing"

	libLog "github.com/LerianStudio/lib-commons/v2/commons/log"
	libZap "github.com/LerianStudio/lib-commons/v2/commons/zap"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"

	"github.com/drithh/news-management/internal/services/handler"
)

var testLogger libLog.Logger

func init() {
	testLogger = libZap.InitializeLogger()
}

func TestConsumerRoutes_Register(t *testing.T) {
	t.Parallel()

	cr := &ConsumerRoutes{
		routes: make(map[string]QueueHandlerFunc),
		Logger: testLogger,
	}

	cr.Register("news.created", func(ctx context.Context, body []byte) handler.Outcome {
		return handler.Outcome{Result: handler.ResultAck}
	})

	assert.Len(t, cr.routes, 1)
	assert.Contains(t, cr.routes, "news.created")
}

func TestConsumerRoutes_RegisterAndRunConsumers_NoRoutes(t *testing.T) {
	t.Parallel()

	cr := &ConsumerRoutes{
		routes: make(map[string]QueueHandlerFunc),
		Logger: testLogger,
	}

	err := cr.RunConsumers()

	assert.NoError(t, err)
}

func TestNewConsumerRoutes_DefaultValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		inputWorkers     int
		inputPrefetch    int
		expectedWorkers  int
		expectedPrefetch int
	}{
		{"zero_workers_and_prefetch", 0, 0, defaultWorkers, defaultWorkers * defaultPrefetch},
		{"zero_workers_only", 0, 20, defaultWorkers, defaultWorkers * 20},
		{"zero_prefetch_only", 3, 0, 3, 3 * defaultPrefetch},
		{"custom_values", 10, 5, 10, 10 * 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			workers := tt.inputWorkers
			prefetch := tt.inputPrefetch

			if workers == 0 {
				workers = defaultWorkers
			}

			if prefetch == 0 {
				prefetch = defaultPrefetch
			}

			assert.Equal(t, tt.expectedWorkers, workers)
			assert.Equal(t, tt.expectedPrefetch, workers*prefetch)
		})
	}
}

func TestNewConsumerRoutes_DefaultMaxRetries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		inputValue  int
		expectValue int
	}{
		{"zero_uses_default", 0, defaultMaxRetries},
		{"custom_value_kept", 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			maxRetries := tt.inputValue
			if maxRetries == 0 {
				maxRetries = defaultMaxRetries
			}

			assert.Equal(t, tt.expectValue, maxRetries)
		})
	}
}

func TestGetRetryCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, getRetryCount(nil))
	assert.Equal(t, 0, getRetryCount(amqp.Table{}))
	assert.Equal(t, 3, getRetryCount(amqp.Table{"x-retry-count": int32(3)}))
	assert.Equal(t, 5, getRetryCount(amqp.Table{"x-retry-count": int64(5)}))
	assert.Equal(t, 2, getRetryCount(amqp.Table{"x-retry-count": 2}))
}

func TestSafeIncrementRetryCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int32(1), safeIncrementRetryCount(0))
	assert.Equal(t, int32(4), safeIncrementRetryCount(3))
}

func TestCopyHeadersSafe_NilInput(t *testing.T) {
	t.Parallel()

	out := copyHeadersSafe(nil)

	assert.Empty(t, out)
}

func TestCopyHeadersSafe_CopiesOnlyAllowlisted(t *testing.T) {
	t.Parallel()

	in := amqp.Table{
		"x-correlation-id": "abc",
		"x-retry-count":    int32(9),
		"some-other":       "drop-me",
	}

	out := copyHeadersSafe(in)

	assert.Equal(t, "abc", out["x-correlation-id"])
	assert.NotContains(t, out, "x-retry-count")
	assert.NotContains(t, out, "some-other")
}

func TestBuildRetryQueueName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "news.created.retry", buildRetryQueueName("news.created"))
}
