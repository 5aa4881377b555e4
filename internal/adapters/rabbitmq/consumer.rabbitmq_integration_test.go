//go:build integration

package rabbitmq

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	libRabbitmq "github.com/LerianStudio/lib-commons/v2/commons/rabbitmq"
	libZap "github.com/LerianStudio/lib-commons/v2/commons/zap"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/drithh/news-management/internal/services/handler"
)

const (
	testUser     = "test"
	testPassword = "test"
)

func setupRabbitMQContainer(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:4.1-management-alpine",
		ExposedPorts: []string{"5672/tcp", "15672/tcp"},
		Env: map[string]string{
			"RABBITMQ_DEFAULT_USER": testUser,
			"RABBITMQ_DEFAULT_PASS": testPassword,
		},
		WaitingFor: wait.ForLog("Server startup complete").WithStartupTimeout(120 * time.Second),
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start rabbitmq container")

	host, err := ctr.Host(ctx)
	require.NoError(t, err)

	port, err := ctr.MappedPort(ctx, "5672")
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate rabbitmq container: %v", err)
		}
	})

	return fmt.Sprintf("amqp://%s:%s@%s:%s/", testUser, testPassword, host, port.Port())
}

// TestIntegration_RunConsumers_RetryRoutesBackToMainQueue proves the
// retry-queue TTL/dead-letter topology actually redelivers a message to the
// original queue after AckAndRetry, and that the handler eventually sees
// enough deliveries to succeed (§4.4).
func TestIntegration_RunConsumers_RetryRoutesBackToMainQueue(t *testing.T) {
	uri := setupRabbitMQContainer(t)

	conn := &libRabbitmq.RabbitMQConnection{
		ConnectionStringSource: uri,
		Logger:                 libZap.InitializeLogger(),
	}

	const queue = "news.created"
	const wantDeliveries = 3

	var deliveries int32

	done := make(chan struct{})

	routes := NewConsumerRoutes(conn, "newsindexer", 1, 1, 10*time.Millisecond, 50*time.Millisecond, 2.0, 4, libZap.InitializeLogger(), nil)
	routes.Register(queue, func(_ context.Context, _ []byte) handler.Outcome {
		n := atomic.AddInt32(&deliveries, 1)

		if n < wantDeliveries {
			return handler.Outcome{Result: handler.ResultAckAndRetry}
		}

		close(done)

		return handler.Outcome{Result: handler.ResultAck}
	})

	require.NoError(t, routes.RunConsumers())

	publishConn, err := amqp.Dial(uri)
	require.NoError(t, err)
	defer publishConn.Close()

	ch, err := publishConn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	require.NoError(t, ch.PublishWithContext(context.Background(), "", queue, false, false, amqp.Publishing{
		Body: []byte(`{"event":"news.created"}`),
	}))

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("timed out waiting for %d deliveries, got %d", wantDeliveries, atomic.LoadInt32(&deliveries))
	}

	require.Equal(t, int32(wantDeliveries), atomic.LoadInt32(&deliveries))
}
