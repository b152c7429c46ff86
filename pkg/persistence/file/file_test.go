package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
)

func newTestPersistence(t *testing.T) *Persistence {
	t.Helper()

	return NewPersistence(t.TempDir())
}

func testActivity(id, userID string, receivedAt time.Time) *models.Activity {
	return &models.Activity{
		ID:         id,
		Event:      "sync_completed",
		Source:     "gmail",
		ReceivedAt: receivedAt,
		Data:       `{"model":"Message"}`,
		UserID:     userID,
	}
}

func TestPersistence_CreateAndListActivities(t *testing.T) {
	t.Parallel()

	p := newTestPersistence(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a1", "a2", "a3"} {
		_, err := p.CreateActivity(ctx, testActivity(id, "u1", base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	_, err := p.CreateActivity(ctx, testActivity("b1", "u2", base))
	require.NoError(t, err)

	activities, err := p.Activities(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, activities, 3)

	// Newest first.
	assert.Equal(t, "a3", activities[0].ID)
	assert.Equal(t, "a1", activities[2].ID)

	limited, err := p.Activities(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.Equal(t, "a3", limited[0].ID)

	none, err := p.Activities(ctx, "nobody", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPersistence_DeleteActivitiesBefore(t *testing.T) {
	t.Parallel()

	p := newTestPersistence(t)
	ctx := context.Background()
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := p.CreateActivity(ctx, testActivity("old", "u1", cutoff.Add(-time.Hour)))
	require.NoError(t, err)

	_, err = p.CreateActivity(ctx, testActivity("fresh", "u1", cutoff.Add(time.Hour)))
	require.NoError(t, err)

	removed, err := p.DeleteActivitiesBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := p.Activities(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh", remaining[0].ID)
}

func TestPersistence_SyncTriggerRoundtrip(t *testing.T) {
	t.Parallel()

	p := newTestPersistence(t)
	ctx := context.Background()

	trigger := &models.SyncTrigger{ID: "t1", UserID: "u1", Source: "gmail", Target: "ingest"}
	require.NoError(t, p.SaveSyncTrigger(ctx, trigger))
	assert.False(t, trigger.CreatedAt.IsZero())
	assert.False(t, trigger.UpdatedAt.IsZero())

	loaded, err := p.SyncTriggerByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "u1", loaded.UserID)
	assert.Equal(t, "gmail", loaded.Source)
	assert.Equal(t, "ingest", loaded.Target)
}

func TestPersistence_SyncTriggersByUserAndSource(t *testing.T) {
	t.Parallel()

	p := newTestPersistence(t)
	ctx := context.Background()

	triggers := []*models.SyncTrigger{
		{ID: "t1", UserID: "u1", Source: "gmail", Target: "a"},
		{ID: "t2", UserID: "u1", Source: "gmail", Target: "b"},
		{ID: "t3", UserID: "u1", Source: "hubspot", Target: "c"},
		{ID: "t4", UserID: "u2", Source: "gmail", Target: "d"},
	}
	for _, trigger := range triggers {
		require.NoError(t, p.SaveSyncTrigger(ctx, trigger))
	}

	matched, err := p.SyncTriggersByUserAndSource(ctx, "u1", "gmail")
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	for _, trigger := range matched {
		assert.Equal(t, "u1", trigger.UserID)
		assert.Equal(t, "gmail", trigger.Source)
	}

	byUser, err := p.SyncTriggersByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, byUser, 3)

	empty, err := p.SyncTriggersByUserAndSource(ctx, "u1", "salesforce")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPersistence_DeleteSyncTrigger(t *testing.T) {
	t.Parallel()

	p := newTestPersistence(t)
	ctx := context.Background()

	require.NoError(t, p.SaveSyncTrigger(ctx, &models.SyncTrigger{ID: "t1", UserID: "u1", Source: "gmail"}))
	require.NoError(t, p.DeleteSyncTrigger(ctx, "t1"))

	_, err := p.SyncTriggerByID(ctx, "t1")
	assert.True(t, persistence.IsSyncTriggerNotFound(err))

	err = p.DeleteSyncTrigger(ctx, "t1")
	assert.True(t, persistence.IsSyncTriggerNotFound(err))
}

func TestPersistence_HealthCheck(t *testing.T) {
	t.Parallel()

	p := newTestPersistence(t)
	assert.NoError(t, p.HealthCheck(context.Background()))
	assert.NoError(t, p.Close(context.Background()))
}

func TestNewPersistence_TrimsScheme(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := NewPersistence("file://" + dir)

	require.NoError(t, p.HealthCheck(context.Background()))

	_, err := p.CreateActivity(context.Background(), testActivity("a1", "u1", time.Now().UTC()))
	require.NoError(t, err)
}
