// Package handler is the per-message state machine (§4.3): decode, claim,
// project to search, mark complete. It returns a tagged Outcome instead of
// raising control-flow exceptions (§9) so the dispatcher's routing is
// exhaustive.
package handler

import (
	"context"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libLog "github.com/LerianStudio/lib-commons/v2/commons/log"

	"github.com/drithh/news-management/internal/adapters/elasticsearch"
	"github.com/drithh/news-management/internal/adapters/postgresql/idempotency"
	"github.com/drithh/news-management/internal/domain/event"
	"github.com/drithh/news-management/pkg/constant"
)

// Result is the dispatcher-facing classification of how a message was
// handled. The dispatcher maps each Result to exactly one broker action.
type Result int

const (
	// ResultAck: processed (or already-processed); basic_ack.
	ResultAck Result = iota
	// ResultAckAndRetry: transient failure after claim; ack then retry-or-dlq.
	ResultAckAndRetry
	// ResultAckAndDLQ: the envelope is permanently unprocessable; ack then
	// publish straight to the DLQ.
	ResultAckAndDLQ
	// ResultRequeue: another worker currently owns the claim; nack with
	// requeue=true, retry count unchanged.
	ResultRequeue
)

// Outcome carries the Result plus, for ResultAckAndDLQ, the reason recorded
// in the x-error-reason header.
type Outcome struct {
	Result Result
	Reason string
}

// Handler wires the Idempotency Claimer and Search Adapter ports behind the
// per-event-type decode → claim → project → complete flow.
type Handler struct {
	claimer idempotency.Claimer
	search  elasticsearch.Adapter
	logger  libLog.Logger
}

// New returns a Handler for the news.created event type.
func New(claimer idempotency.Claimer, search elasticsearch.Adapter, logger libLog.Logger) *Handler {
	return &Handler{claimer: claimer, search: search, logger: logger}
}

// Handle runs the state machine described in §4.3 against one message body.
func (h *Handler) Handle(ctx context.Context, body []byte) Outcome {
	logger := libCommons.NewLoggerFromContext(ctx)
	if logger == nil {
		logger = h.logger
	}

	ev, err := event.Decode(body)
	if err != nil {
		logger.Warnf("rejecting invalid message: %v", err)

		return Outcome{Result: ResultAckAndDLQ, Reason: "invalid_message"}
	}

	status, err := h.claimer.CheckAndClaim(ctx, ev.EventID, constant.ResourceKeyArticleIndexed)
	if err != nil {
		logger.Errorf("idempotency store unreachable for event %s: %v", ev.EventID, err)

		return Outcome{Result: ResultAckAndRetry}
	}

	switch status {
	case idempotency.StatusCompleted:
		logger.Infof("event %s already processed; skipping", ev.EventID)

		return Outcome{Result: ResultAck, Reason: constant.ErrDuplicateEvent.Error()}
	case idempotency.StatusInProgress:
		logger.Infof("event %s claimed by another worker; requeuing", ev.EventID)

		return Outcome{Result: ResultRequeue, Reason: constant.ErrRequeueRequested.Error()}
	}

	if err := h.search.IndexArticle(ctx, ev.Article); err != nil {
		logger.Errorf("failed to index article %s for event %s: %v", ev.Article.ID, ev.EventID, err)

		if markErr := h.claimer.MarkFailed(ctx, ev.EventID, constant.ResourceKeyArticleIndexed); markErr != nil {
			logger.Warnf("best-effort mark_failed failed for event %s: %v", ev.EventID, markErr)
		}

		return Outcome{Result: ResultAckAndRetry}
	}

	if err := h.claimer.MarkCompleted(ctx, ev.EventID, constant.ResourceKeyArticleIndexed); err != nil {
		logger.Errorf("failed to mark event %s completed: %v", ev.EventID, err)

		if markErr := h.claimer.MarkFailed(ctx, ev.EventID, constant.ResourceKeyArticleIndexed); markErr != nil {
			logger.Warnf("best-effort mark_failed failed for event %s: %v", ev.EventID, markErr)
		}

		return Outcome{Result: ResultAckAndRetry}
	}

	logger.Infof("indexed article %s for event %s", ev.Article.ID, ev.EventID)

	return Outcome{Result: ResultAck}
}
