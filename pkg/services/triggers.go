package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
)

// Triggers manages the sync trigger configuration that the relay reads.
type Triggers struct {
	persistence persistence.Persistence
	logger      *slog.Logger
}

func NewTriggers(p persistence.Persistence, logger *slog.Logger) *Triggers {
	return &Triggers{
		persistence: p,
		logger:      logger.With("module", "triggers_service"),
	}
}

// CreateTrigger stores a new trigger correlating (user, source) with a
// worker-side target.
func (s *Triggers) CreateTrigger(ctx context.Context, trigger *models.SyncTrigger) (*models.SyncTrigger, error) {
	if trigger == nil {
		return nil, ErrTriggerNil
	}

	if trigger.UserID == "" {
		return nil, ErrEmptyUserID
	}

	if trigger.Source == "" {
		return nil, ErrEmptySource
	}

	if trigger.ID == "" {
		trigger.ID = uuid.New().String()
	}

	if err := s.persistence.SaveSyncTrigger(ctx, trigger); err != nil {
		return nil, err
	}

	s.logger.Info("Sync trigger created",
		"trigger_id", trigger.ID, "user_id", trigger.UserID, "source", trigger.Source)

	return trigger, nil
}

// ListTriggers returns all triggers configured by a user.
func (s *Triggers) ListTriggers(ctx context.Context, userID string) ([]*models.SyncTrigger, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	return s.persistence.SyncTriggersByUser(ctx, userID)
}

// DeleteTrigger removes a trigger by id.
func (s *Triggers) DeleteTrigger(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidRequest
	}

	err := s.persistence.DeleteSyncTrigger(ctx, id)
	if err != nil {
		return err
	}

	s.logger.Info("Sync trigger deleted", "trigger_id", id)

	return nil
}
