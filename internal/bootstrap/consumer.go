package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"

	"github.com/drithh/news-management/internal/adapters/rabbitmq"
	"github.com/drithh/news-management/internal/services/handler"
)

// MultiQueueConsumer is the top-level app: it registers the news.created
// handler against its queue and runs the dispatcher until interrupted.
type MultiQueueConsumer struct {
	consumerRoutes *rabbitmq.ConsumerRoutes
	Handler        *handler.Handler
}

// NewMultiQueueConsumer wires the handler to its queue.
func NewMultiQueueConsumer(routes *rabbitmq.ConsumerRoutes, h *handler.Handler, newsQueue string) *MultiQueueConsumer {
	consumer := &MultiQueueConsumer{
		consumerRoutes: routes,
		Handler:        h,
	}

	routes.Register(newsQueue, consumer.handleNewsCreated)

	return consumer
}

// Run starts consumers for all registered queues and blocks until an
// interrupt signal requests a graceful shutdown.
func (mq *MultiQueueConsumer) Run(l *libCommons.Launcher) error {
	if err := mq.consumerRoutes.RunConsumers(); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return mq.consumerRoutes.Shutdown(shutdownCtx)
}

// handleNewsCreated adapts the Handler's decode/claim/project state machine
// to the dispatcher's QueueHandlerFunc shape.
func (mq *MultiQueueConsumer) handleNewsCreated(ctx context.Context, body []byte) handler.Outcome {
	return mq.Handler.Handle(ctx, body)
}
