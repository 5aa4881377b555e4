// Package rabbitmq is the Consumer Dispatcher (§4.4): broker connection,
// queue/DLX topology, per-message lifecycle, and retry/DLQ routing. It maps
// every handler.Outcome to exactly one broker action.
package rabbitmq

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libConstants "github.com/LerianStudio/lib-commons/v2/commons/constants"
	libLog "github.com/LerianStudio/lib-commons/v2/commons/log"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	libRabbitmq "github.com/LerianStudio/lib-commons/v2/commons/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/drithh/news-management/internal/services/handler"
	"github.com/drithh/news-management/pkg/constant"
)

const (
	defaultWorkers  = 5
	defaultPrefetch = 10

	// defaultMaxRetries is used when Config's MAX_RETRIES is left at its
	// zero value (e.g. in tests constructing ConsumerRoutes directly).
	defaultMaxRetries = 4
)

// allowedHeaders is the set of incoming headers copied forward on retry or
// DLQ republish. Everything else — including a stale x-retry-count from a
// misbehaving producer — is dropped and recomputed.
var allowedHeaders = map[string]struct{}{
	"x-correlation-id": {},
	"x-request-id":     {},
	"content-type":     {},
}

// QueueHandlerFunc processes one message body and reports how it was
// handled. It never returns a plain error: handler.Outcome is exhaustive.
type QueueHandlerFunc func(ctx context.Context, body []byte) handler.Outcome

// ConsumerRoutes declares topology and runs worker goroutines for every
// registered queue, routing each delivery by its handler.Outcome.
type ConsumerRoutes struct {
	conn *libRabbitmq.RabbitMQConnection

	routes map[string]QueueHandlerFunc

	NumbersOfWorkers  int
	NumbersOfPrefetch int

	// Namespace prefixes the shared dead-letter exchange/queue (NS.dlx,
	// NS.dlq) so multiple services can share a vhost without collisions.
	Namespace string

	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64

	// MaxRetries is the number of AckAndRetry attempts (including the
	// first delivery) allowed before a message is routed to the DLQ
	// instead of the retry queue (§4.4, MAX_RETRIES).
	MaxRetries int

	Logger    libLog.Logger
	Telemetry *libOpentelemetry.Telemetry

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewConsumerRoutes returns a ConsumerRoutes bound to conn. It panics on
// connection failure, matching the fail-fast startup style of the rest of
// the bootstrap package.
func NewConsumerRoutes(conn *libRabbitmq.RabbitMQConnection, namespace string, workers, prefetch int, initialBackoff, maxBackoff time.Duration, multiplier float64, maxRetries int, logger libLog.Logger, telemetry *libOpentelemetry.Telemetry) *ConsumerRoutes {
	if workers == 0 {
		workers = defaultWorkers
	}

	if prefetch == 0 {
		prefetch = defaultPrefetch
	}

	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	if _, err := conn.GetNewConnect(); err != nil {
		panic("Failed to connect on rabbitmq")
	}

	return &ConsumerRoutes{
		conn:              conn,
		routes:            make(map[string]QueueHandlerFunc),
		NumbersOfWorkers:  workers,
		NumbersOfPrefetch: workers * prefetch,
		Namespace:         namespace,
		InitialBackoff:    initialBackoff,
		MaxBackoff:        maxBackoff,
		BackoffMultiplier: multiplier,
		MaxRetries:        maxRetries,
		Logger:            logger,
		Telemetry:         telemetry,
	}
}

// Register associates a queue name with the handler that consumes it.
// Not concurrency-safe; call only during startup, before RunConsumers.
func (cr *ConsumerRoutes) Register(queue string, h QueueHandlerFunc) {
	cr.routes[queue] = h
}

// RunConsumers declares topology for every registered queue and spawns
// NumbersOfWorkers goroutines per queue. It returns once topology
// declaration succeeds; workers run until Shutdown is called.
func (cr *ConsumerRoutes) RunConsumers() error {
	ctx, cancel := context.WithCancel(context.Background())
	cr.cancel = cancel

	for queue, h := range cr.routes {
		ch, err := cr.conn.GetNewConnect()
		if err != nil {
			return fmt.Errorf("open channel for queue %s: %w", queue, err)
		}

		if _, _, _, err := cr.declareTopology(ch, queue); err != nil {
			return fmt.Errorf("declare topology for queue %s: %w", queue, err)
		}

		if err := ch.Qos(cr.NumbersOfPrefetch, 0, false); err != nil {
			return fmt.Errorf("set qos for queue %s: %w", queue, err)
		}

		for i := 0; i < cr.NumbersOfWorkers; i++ {
			cr.wg.Add(1)

			go cr.startWorker(ctx, ch, queue, h, i)
		}
	}

	return nil
}

// Shutdown cancels all consumers and waits for in-flight deliveries to
// finish being routed before returning.
func (cr *ConsumerRoutes) Shutdown(ctx context.Context) error {
	if cr.cancel != nil {
		cr.cancel()
	}

	done := make(chan struct{})
	go func() {
		cr.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (cr *ConsumerRoutes) startWorker(ctx context.Context, ch *amqp.Channel, queue string, h QueueHandlerFunc, workerID int) {
	defer cr.wg.Done()

	deliveries, err := ch.Consume(queue, fmt.Sprintf("%s-worker-%d", queue, workerID), false, false, false, false, nil)
	if err != nil {
		cr.Logger.Errorf("failed to start consuming queue %s: %v", queue, err)

		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}

			cr.handleDelivery(ctx, ch, queue, h, d)
		}
	}
}

func (cr *ConsumerRoutes) handleDelivery(ctx context.Context, ch *amqp.Channel, queue string, h QueueHandlerFunc, d amqp.Delivery) {
	retryCount := getRetryCount(d.Headers)

	headerID, ok := d.Headers[libConstants.HeaderID].(string)
	if !ok || headerID == "" {
		headerID = libCommons.GenerateUUIDv7().String()
	}

	logger := cr.Logger.WithFields(libConstants.HeaderID, headerID).WithDefaultMessageTemplate(headerID + " | ")
	msgCtx := libCommons.ContextWithLogger(libCommons.ContextWithHeaderID(ctx, headerID), logger)

	tracer := libCommons.NewTracerFromContext(msgCtx)
	msgCtx, span := tracer.Start(msgCtx, "rabbitmq.consumer.process_message")
	defer span.End()

	outcome := cr.invoke(msgCtx, h, d.Body)

	switch outcome.Result {
	case handler.ResultAck:
		if err := d.Ack(false); err != nil {
			cr.Logger.Errorf("failed to ack message on queue %s: %v", queue, err)
		}
	case handler.ResultAckAndRetry:
		if err := d.Ack(false); err != nil {
			cr.Logger.Errorf("failed to ack message on queue %s: %v", queue, err)
		}

		if err := cr.retryOrDLQ(ch, d, queue, retryCount); err != nil {
			cr.Logger.Errorf("failed to route message for retry on queue %s: %v", queue, err)
		}
	case handler.ResultAckAndDLQ:
		libOpentelemetry.HandleSpanError(&span, "Message routed to dead-letter queue", fmt.Errorf("%s", outcome.Reason))

		if err := d.Ack(false); err != nil {
			cr.Logger.Errorf("failed to ack message on queue %s: %v", queue, err)
		}

		if err := cr.publishToDLQ(ch, d, queue, retryCount, outcome.Reason); err != nil {
			cr.Logger.Errorf("failed to publish message to dlq for queue %s: %v", queue, err)
		}
	case handler.ResultRequeue:
		if err := d.Nack(false, true); err != nil {
			cr.Logger.Errorf("failed to nack/requeue message on queue %s: %v", queue, err)
		}
	}
}

// invoke runs h and converts a panic into ResultAckAndRetry so a single bad
// message can never take down a worker (§4.4, §9).
func (cr *ConsumerRoutes) invoke(ctx context.Context, h QueueHandlerFunc, body []byte) (outcome handler.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			cr.Logger.Errorf("handler panicked: %v", r)

			outcome = handler.Outcome{Result: handler.ResultAckAndRetry}
		}
	}()

	return h(ctx, body)
}

// retryOrDLQ republishes to the queue's retry queue with an exponential
// per-message TTL, or to the DLQ once maxRetries is exhausted (§4.4).
func (cr *ConsumerRoutes) retryOrDLQ(ch *amqp.Channel, d amqp.Delivery, queue string, retryCount int) error {
	if retryCount >= cr.MaxRetries-1 {
		return cr.publishToDLQ(ch, d, queue, retryCount, "max_retries_exceeded")
	}

	headers := copyHeadersSafe(d.Headers)
	headers[constant.HeaderRetryCount] = safeIncrementRetryCount(retryCount)
	headers[constant.HeaderOriginalQueue] = queue

	delay := calculateRetryBackoff(retryCount, cr.InitialBackoff, cr.MaxBackoff, cr.BackoffMultiplier)

	return ch.PublishWithContext(context.Background(), "", buildRetryQueueName(queue), false, false, amqp.Publishing{
		Headers:      headers,
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		Body:         d.Body,
		Expiration:   fmt.Sprintf("%d", delay.Milliseconds()),
	})
}

// publishToDLQ sends straight to the namespace's shared DLQ, stamping the
// reason the handler rejected the message.
func (cr *ConsumerRoutes) publishToDLQ(ch *amqp.Channel, d amqp.Delivery, queue string, retryCount int, reason string) error {
	dlxName := cr.Namespace + ".dlx"
	dlqName := cr.Namespace + ".dlq"

	headers := copyHeadersSafe(d.Headers)
	headers[constant.HeaderRetryCount] = int32(retryCount)
	headers[constant.HeaderOriginalQueue] = queue

	if reason != "" {
		headers[constant.HeaderErrorReason] = reason
	}

	return ch.PublishWithContext(context.Background(), dlxName, dlqName, false, false, amqp.Publishing{
		Headers:      headers,
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		Body:         d.Body,
	})
}

// getRetryCount reads the retry-count header, defaulting to zero for a
// first delivery or an unrecognized numeric type.
func getRetryCount(headers amqp.Table) int {
	if headers == nil {
		return 0
	}

	switch v := headers[constant.HeaderRetryCount].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func safeIncrementRetryCount(current int) int32 {
	if current >= math.MaxInt32-1 {
		return math.MaxInt32
	}

	return int32(current + 1)
}

// copyHeadersSafe copies only the allow-listed headers forward, dropping
// anything else (including a stale retry-count) so the dispatcher is the
// single source of truth for its own bookkeeping headers.
func copyHeadersSafe(headers amqp.Table) amqp.Table {
	out := amqp.Table{}

	for k, v := range headers {
		if _, ok := allowedHeaders[k]; ok {
			out[k] = v
		}
	}

	return out
}

// calculateRetryBackoff implements delay(n) = min(initial * multiplier^n,
// max) (§4.4). retryCount is the number of attempts already made.
func calculateRetryBackoff(retryCount int, initial, maxDelay time.Duration, multiplier float64) time.Duration {
	delay := float64(initial) * math.Pow(multiplier, float64(retryCount))

	if delay > float64(maxDelay) {
		return maxDelay
	}

	return time.Duration(delay)
}

// ConsumerRepository is the narrow surface the bootstrap layer depends on,
// kept separate from ConsumerRoutes so it can be faked in tests.
//
//go:generate mockgen --destination=consumer_repository_mock.go --package=rabbitmq . ConsumerRepository
type ConsumerRepository interface {
	Register(queue string, h QueueHandlerFunc)
	RunConsumers() error
}

var _ ConsumerRepository = (*ConsumerRoutes)(nil)
