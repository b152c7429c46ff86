package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
	"github.com/hooklinehq/hookline/pkg/persistence/file"
)

func TestTriggers_CreateTrigger(t *testing.T) {
	t.Parallel()

	p := file.NewPersistence(t.TempDir())
	service := NewTriggers(p, testLogger())

	trigger, err := service.CreateTrigger(context.Background(), &models.SyncTrigger{
		UserID: "u1",
		Source: "gmail",
		Target: "ingest",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, trigger.ID)

	loaded, err := p.SyncTriggerByID(context.Background(), trigger.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", loaded.UserID)
}

func TestTriggers_CreateTrigger_Validation(t *testing.T) {
	t.Parallel()

	service := NewTriggers(file.NewPersistence(t.TempDir()), testLogger())

	tests := []struct {
		name    string
		trigger *models.SyncTrigger
		wantErr error
	}{
		{name: "nil trigger", trigger: nil, wantErr: ErrTriggerNil},
		{name: "empty user", trigger: &models.SyncTrigger{Source: "gmail"}, wantErr: ErrEmptyUserID},
		{name: "empty source", trigger: &models.SyncTrigger{UserID: "u1"}, wantErr: ErrEmptySource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := service.CreateTrigger(context.Background(), tt.trigger)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestTriggers_ListTriggers(t *testing.T) {
	t.Parallel()

	p := file.NewPersistence(t.TempDir())
	service := NewTriggers(p, testLogger())

	for _, source := range []string{"gmail", "hubspot"} {
		_, err := service.CreateTrigger(context.Background(), &models.SyncTrigger{UserID: "u1", Source: source})
		require.NoError(t, err)
	}

	triggers, err := service.ListTriggers(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, triggers, 2)

	_, err = service.ListTriggers(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyUserID)
}

func TestTriggers_DeleteTrigger(t *testing.T) {
	t.Parallel()

	p := file.NewPersistence(t.TempDir())
	service := NewTriggers(p, testLogger())

	trigger, err := service.CreateTrigger(context.Background(), &models.SyncTrigger{UserID: "u1", Source: "gmail"})
	require.NoError(t, err)

	require.NoError(t, service.DeleteTrigger(context.Background(), trigger.ID))

	err = service.DeleteTrigger(context.Background(), trigger.ID)
	assert.True(t, persistence.IsSyncTriggerNotFound(err))

	err = service.DeleteTrigger(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
