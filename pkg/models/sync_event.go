// Package models defines the core domain models for sync webhook relaying.
package models

import (
	"fmt"
	"time"
)

// SyncEventUser identifies the user on whose behalf a sync ran.
type SyncEventUser struct {
	ID string `json:"id" validate:"required"`
}

// SyncEventData carries the sync details reported by the integration platform.
type SyncEventData struct {
	Model      string    `json:"model"`
	SyncedAt   time.Time `json:"synced_at"   validate:"required"`
	NumRecords int       `json:"num_records" validate:"gte=0"`
}

// SyncEvent is the inbound notification that a data sync completed for a
// user's connected source. `sync` names the connected source.
type SyncEvent struct {
	Event string        `json:"event" validate:"required"`
	Sync  string        `json:"sync"  validate:"required"`
	User  SyncEventUser `json:"user"  validate:"required"`
	Data  SyncEventData `json:"data"  validate:"required"`
}

// DeliveryKey identifies one logical delivery of this event. The platform
// redelivers on timeout, so the same key can arrive more than once.
func (e *SyncEvent) DeliveryKey() string {
	return fmt.Sprintf("%s:%s:%s:%s",
		e.Event, e.Sync, e.Data.SyncedAt.UTC().Format(time.RFC3339), e.User.ID)
}
