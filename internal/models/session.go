// Package models holds the session types shared by the API and the
// workers.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Session lifecycle: queued -> processing -> completed | failed.
// "queued" is the awaiting state, "completed" means a report is ready
// to render, "failed" carries an error message in the report slot.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Session is the queue message body and the API response shape.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	// Report is the persisted analysis report JSON, present once the
	// session completed or failed.
	Report json.RawMessage `json:"report,omitempty"`
}
