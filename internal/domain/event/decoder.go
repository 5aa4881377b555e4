// Package event decodes the raw broker payload into a typed Event,
// surfacing validation failures distinguishable by kind (§4.2).
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/drithh/news-management/internal/domain/article"
	"github.com/drithh/news-management/pkg"
	"github.com/drithh/news-management/pkg/constant"
	"github.com/drithh/news-management/pkg/mmodel"
)

// Event is the decoded, validated envelope ready for handling.
type Event struct {
	EventID   string
	EventType string
	Version   int
	Article   article.Article
}

var requiredDataFields = []string{
	"id", "title", "content", "source", "author", "link", "createdAt", "updatedAt",
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Decode parses and validates the envelope. Every failure is a
// pkg.ValidationError wrapping constant.ErrInvalidMessage; the Code field
// carries a short machine-readable reason (invalid_json, missing_field,
// bad_uuid, ...). The DLQ x-error-reason header does not carry this Code:
// the handler stamps every decode failure as invalid_message.
func Decode(body []byte) (*Event, error) {
	var raw map[string]any

	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, invalidMessage("invalid_json", "body is not valid JSON", err)
	}

	for _, field := range []string{"event", "version", "event_id", "data"} {
		if _, ok := raw[field]; !ok {
			return nil, invalidMessage("missing_field", fmt.Sprintf("missing required field %q", field), nil)
		}
	}

	dataRaw, ok := raw["data"].(map[string]any)
	if !ok {
		return nil, invalidMessage("invalid_data", "'data' field must be an object", nil)
	}

	for _, field := range requiredDataFields {
		if _, ok := dataRaw[field]; !ok {
			return nil, invalidMessage("missing_field", fmt.Sprintf("missing required data field %q", field), nil)
		}
	}

	var envelope mmodel.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, invalidMessage("invalid_json", "envelope does not match expected shape", err)
	}

	if envelope.Event != mmodel.EventNewsCreated || envelope.Version != mmodel.EventNewsCreatedVersion {
		return nil, invalidMessageWrapping(constant.ErrUnsupportedEventVersion, "unsupported_event_version",
			fmt.Sprintf("unsupported (event=%q, version=%d) pair", envelope.Event, envelope.Version))
	}

	articleID, err := uuid.Parse(envelope.Data.ID)
	if err != nil {
		return nil, invalidMessage("bad_uuid", "'id' is not a valid UUID", err)
	}

	createdAt, err := parseISO8601(envelope.Data.CreatedAt)
	if err != nil {
		return nil, invalidMessage("bad_timestamp", "'createdAt' is not a valid ISO-8601 timestamp", err)
	}

	updatedAt, err := parseISO8601(envelope.Data.UpdatedAt)
	if err != nil {
		return nil, invalidMessage("bad_timestamp", "'updatedAt' is not a valid ISO-8601 timestamp", err)
	}

	return &Event{
		EventID:   envelope.EventID,
		EventType: envelope.Event,
		Version:   envelope.Version,
		Article: article.Article{
			ID:        articleID,
			Title:     envelope.Data.Title,
			Content:   envelope.Data.Content,
			Source:    envelope.Data.Source,
			Author:    envelope.Data.Author,
			Link:      envelope.Data.Link,
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		},
	}, nil
}

func parseISO8601(value string) (time.Time, error) {
	var lastErr error

	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}

		lastErr = err
	}

	return time.Time{}, lastErr
}

func invalidMessage(reason, message string, cause error) error {
	return pkg.ValidationError{
		Code:    reason,
		Message: message,
		Err:     fmt.Errorf("%w: %s", constant.ErrInvalidMessage, message),
	}
}

// invalidMessageWrapping builds the same shape as invalidMessage but also
// wraps a more specific sentinel than constant.ErrInvalidMessage, so callers
// that care (e.g. errors.Is(err, constant.ErrUnsupportedEventVersion)) can
// tell this failure kind apart from other permanently-unprocessable
// envelopes.
func invalidMessageWrapping(sentinel error, reason, message string) error {
	return pkg.ValidationError{
		Code:    reason,
		Message: message,
		Err:     fmt.Errorf("%w: %w: %s", constant.ErrInvalidMessage, sentinel, message),
	}
}
