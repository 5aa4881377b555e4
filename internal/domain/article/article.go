// Package article holds the in-memory projection of an article and its
// invariants.
package article

import (
	"time"

	"github.com/google/uuid"
)

// Article is immutable after construction (§3).
type Article struct {
	ID        uuid.UUID
	Title     string
	Content   string
	Source    string
	Author    string
	Link      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
