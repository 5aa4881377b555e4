package event

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drithh/news-management/pkg"
	"github.com/drithh/news-management/pkg/constant"
)

func baseEnvelope() map[string]any {
	return map[string]any{
		"event":    "news.created",
		"version":  1,
		"event_id": uuid.NewString(),
		"data": map[string]any{
			"id":        uuid.NewString(),
			"title":     "Some headline",
			"content":   "Body text",
			"source":    "reuters",
			"author":    "Jane Doe",
			"link":      "https://example.com/a",
			"createdAt": "2026-01-01T00:00:00Z",
			"updatedAt": "2026-01-02T00:00:00+07:00",
		},
	}
}

func marshal(t *testing.T, v any) []byte {
	t.Helper()

	body, err := json.Marshal(v)
	require.NoError(t, err)

	return body
}

func TestDecode_ValidEnvelope(t *testing.T) {
	env := baseEnvelope()

	ev, err := Decode(marshal(t, env))

	require.NoError(t, err)
	assert.Equal(t, "news.created", ev.EventType)
	assert.Equal(t, 1, ev.Version)
	assert.Equal(t, env["event_id"], ev.EventID)
	assert.Equal(t, "Some headline", ev.Article.Title)
	assert.False(t, ev.Article.CreatedAt.IsZero())
}

func TestDecode_AcceptsTimestampWithoutOffset(t *testing.T) {
	env := baseEnvelope()
	data := env["data"].(map[string]any)
	data["createdAt"] = "2026-01-01T00:00:00"

	ev, err := Decode(marshal(t, env))

	require.NoError(t, err)
	assert.False(t, ev.Article.CreatedAt.IsZero())
}

func TestDecode_NotJSON_ReturnsValidationError(t *testing.T) {
	_, err := Decode([]byte("{not json"))

	require.Error(t, err)

	var verr pkg.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invalid_json", verr.Code)
}

func TestDecode_MissingTopLevelField(t *testing.T) {
	for _, field := range []string{"event", "version", "event_id", "data"} {
		env := baseEnvelope()
		delete(env, field)

		_, err := Decode(marshal(t, env))

		require.Error(t, err, "field %q", field)

		var verr pkg.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "missing_field", verr.Code)
	}
}

func TestDecode_MissingDataField(t *testing.T) {
	for _, field := range requiredDataFields {
		env := baseEnvelope()
		delete(env["data"].(map[string]any), field)

		_, err := Decode(marshal(t, env))

		require.Error(t, err, "data field %q", field)

		var verr pkg.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "missing_field", verr.Code)
	}
}

func TestDecode_UnsupportedEventType(t *testing.T) {
	env := baseEnvelope()
	env["event"] = "news.updated"

	_, err := Decode(marshal(t, env))

	require.Error(t, err)

	var verr pkg.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unsupported_event_version", verr.Code)
	assert.True(t, errors.Is(err, constant.ErrUnsupportedEventVersion))
}

func TestDecode_UnsupportedVersion(t *testing.T) {
	env := baseEnvelope()
	env["version"] = 2

	_, err := Decode(marshal(t, env))

	require.Error(t, err)

	var verr pkg.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unsupported_event_version", verr.Code)
	assert.True(t, errors.Is(err, constant.ErrUnsupportedEventVersion))
}

func TestDecode_InvalidUUID(t *testing.T) {
	env := baseEnvelope()
	env["data"].(map[string]any)["id"] = "not-a-uuid"

	_, err := Decode(marshal(t, env))

	require.Error(t, err)

	var verr pkg.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "bad_uuid", verr.Code)
}

func TestDecode_InvalidTimestamp(t *testing.T) {
	env := baseEnvelope()
	env["data"].(map[string]any)["createdAt"] = "not-a-date"

	_, err := Decode(marshal(t, env))

	require.Error(t, err)

	var verr pkg.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "bad_timestamp", verr.Code)
}
