// Package mmodel holds the wire-format structs consumed off the broker.
package mmodel

// Envelope is the JSON wrapper carrying event type, version, id, and
// payload (§3). Unknown top-level and data fields are tolerated.
type Envelope struct {
	Event   string       `json:"event"`
	Version int          `json:"version"`
	EventID string       `json:"event_id"`
	Data    EnvelopeData `json:"data"`
}

// EnvelopeData is the `news.created` payload.
type EnvelopeData struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Source    string `json:"source"`
	Author    string `json:"author"`
	Link      string `json:"link"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// EventNewsCreated is the only (event, version) pair this worker recognizes.
const (
	EventNewsCreated        = "news.created"
	EventNewsCreatedVersion = 1
)
