// Package persistence provides the data storage abstraction for activity
// records and sync triggers.
package persistence

import (
	"context"
	"time"

	"github.com/hooklinehq/hookline/pkg/models"
)

type Persistence interface {
	// Activity records are append-only. CreateActivity returns the stored
	// record id.
	CreateActivity(ctx context.Context, activity *models.Activity) (string, error)
	Activities(ctx context.Context, userID string, limit int) ([]*models.Activity, error)
	DeleteActivitiesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	SaveSyncTrigger(ctx context.Context, trigger *models.SyncTrigger) error
	SyncTriggerByID(ctx context.Context, id string) (*models.SyncTrigger, error)
	// SyncTriggersByUserAndSource returns every trigger configured for the
	// pair. An empty result is not an error.
	SyncTriggersByUserAndSource(ctx context.Context, userID, source string) ([]*models.SyncTrigger, error)
	SyncTriggersByUser(ctx context.Context, userID string) ([]*models.SyncTrigger, error)
	DeleteSyncTrigger(ctx context.Context, id string) error

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
