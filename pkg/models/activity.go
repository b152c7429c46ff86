package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Activity is the append-only record of a received sync event. Records are
// never mutated or deleted by the relay; only the retention sweeper removes
// aged rows.
type Activity struct {
	ID         string    `json:"id"`
	Event      string    `json:"event"`
	Source     string    `json:"source"`
	ReceivedAt time.Time `json:"received_at"`
	Data       string    `json:"data"`
	UserID     string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewActivityFromEvent derives the durable activity record from an inbound
// sync event. ReceivedAt is the event-reported synced_at: the platform does
// not distinguish webhook delivery time from the time of the initial sync,
// so the reported timestamp is recorded as-is.
func NewActivityFromEvent(event *SyncEvent) (*Activity, error) {
	raw, err := json.Marshal(event.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event data: %w", err)
	}

	return &Activity{
		ID:         uuid.New().String(),
		Event:      event.Event,
		Source:     event.Sync,
		ReceivedAt: event.Data.SyncedAt,
		Data:       string(raw),
		UserID:     event.User.ID,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
