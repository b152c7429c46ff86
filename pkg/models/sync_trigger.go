package models

import "time"

// SyncTrigger correlates a user and a connected source with a downstream
// ingestion target. A user may hold several triggers for the same source;
// the relay forwards all of them.
type SyncTrigger struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id" validate:"required"`
	Source    string    `json:"source"  validate:"required"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
