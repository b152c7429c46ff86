// Package web provides the HTTP handlers for the sync webhook relay and the
// trigger administration endpoints.
package web

import (
	"time"

	"github.com/hooklinehq/hookline/pkg/models"
)

// SyncWebhookRequest is the inbound webhook payload posted by the
// integration platform.
type SyncWebhookRequest struct {
	Event string `json:"event"`
	Sync  string `json:"sync"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
	Data struct {
		Model      string    `json:"model"`
		SyncedAt   time.Time `json:"synced_at"`
		NumRecords int       `json:"num_records"`
	} `json:"data"`
}

// ToSyncEvent converts the request into the domain event.
func (r *SyncWebhookRequest) ToSyncEvent() *models.SyncEvent {
	return &models.SyncEvent{
		Event: r.Event,
		Sync:  r.Sync,
		User:  models.SyncEventUser{ID: r.User.ID},
		Data: models.SyncEventData{
			Model:      r.Data.Model,
			SyncedAt:   r.Data.SyncedAt,
			NumRecords: r.Data.NumRecords,
		},
	}
}

// CreateTriggerRequest is the request body for creating a sync trigger.
type CreateTriggerRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Source string `json:"source"  validate:"required"`
	Target string `json:"target"`
}

// MessageResponse is the diagnostic envelope for terminal-without-forward
// outcomes.
type MessageResponse struct {
	Message string `json:"message"`
}
