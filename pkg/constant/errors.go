// Package constant holds sentinel errors and wire-level constants shared
// across the worker's adapters.
package constant

import "errors"

var (
	// ErrInvalidMessage marks an envelope that will never become valid on
	// redelivery: missing fields, unsupported event/version pair, bad UUID.
	ErrInvalidMessage = errors.New("invalid message envelope")

	// ErrRequeueRequested marks contention: another worker currently owns
	// the claim. The dispatcher nacks with requeue=true and does not
	// advance the retry count.
	ErrRequeueRequested = errors.New("idempotency key currently claimed by another worker")

	// ErrDuplicateEvent marks a COMPLETED claim: no further work is done.
	ErrDuplicateEvent = errors.New("event already processed")

	// ErrUnsupportedEventVersion marks an (event, version) pair this worker
	// does not recognize.
	ErrUnsupportedEventVersion = errors.New("unsupported event/version pair")
)

// Header names owned by the consumer dispatcher. Every republish copies only
// the allow-listed headers of the original (x-correlation-id, x-request-id,
// content-type) and then sets these; any other original header is not
// carried over.
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalQueue = "x-original-queue"
	HeaderErrorReason   = "x-error-reason"
)

// ResourceKeyArticleIndexed is the resource_path namespacing the idempotency
// key for the news.created → index_article projection.
const ResourceKeyArticleIndexed = "news.created"
