package postgres_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
	"github.com/hooklinehq/hookline/pkg/persistence/postgres"
)

var postgresContainer *tcpostgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"activities", "sync_triggers", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgres.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("hookline_test"),
			tcpostgres.WithUsername("hookline"),
			tcpostgres.WithPassword("hookline"),
			tcpostgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgres.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func testActivity(userID string, receivedAt time.Time) *models.Activity {
	return &models.Activity{
		ID:         uuid.New().String(),
		Event:      "sync_completed",
		Source:     "gmail",
		ReceivedAt: receivedAt,
		Data:       `{"model":"Message","num_records":42}`,
		UserID:     userID,
	}
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'activities')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "activities table should exist")

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'sync_triggers')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "sync_triggers table should exist")

	var version int

	err = db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE version = 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	err := p.HealthCheck(ctx)
	assert.NoError(t, err)
}

func TestPersistence_CreateAndListActivities(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	var ids []string

	for i := 0; i < 3; i++ {
		activity := testActivity("u1", base.Add(time.Duration(i)*time.Hour))

		id, err := p.CreateActivity(ctx, activity)
		require.NoError(t, err)

		ids = append(ids, id)
	}

	_, err := p.CreateActivity(ctx, testActivity("u2", base))
	require.NoError(t, err)

	activities, err := p.Activities(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, activities, 3)

	// Newest first.
	assert.Equal(t, ids[2], activities[0].ID)
	assert.Equal(t, ids[0], activities[2].ID)
	assert.JSONEq(t, `{"model":"Message","num_records":42}`, activities[0].Data)

	limited, err := p.Activities(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestPersistence_DeleteActivitiesBefore(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := p.CreateActivity(ctx, testActivity("u1", cutoff.Add(-time.Hour)))
	require.NoError(t, err)

	_, err = p.CreateActivity(ctx, testActivity("u1", cutoff.Add(time.Hour)))
	require.NoError(t, err)

	removed, err := p.DeleteActivitiesBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := p.Activities(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestPersistence_SaveAndRetrieveSyncTrigger(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	trigger := &models.SyncTrigger{
		ID:     uuid.New().String(),
		UserID: "u1",
		Source: "gmail",
		Target: "ingest",
	}

	require.NoError(t, p.SaveSyncTrigger(ctx, trigger))

	loaded, err := p.SyncTriggerByID(ctx, trigger.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", loaded.UserID)
	assert.Equal(t, "gmail", loaded.Source)
	assert.Equal(t, "ingest", loaded.Target)

	// Upsert updates in place.
	trigger.Target = "ingest-v2"
	require.NoError(t, p.SaveSyncTrigger(ctx, trigger))

	loaded, err = p.SyncTriggerByID(ctx, trigger.ID)
	require.NoError(t, err)
	assert.Equal(t, "ingest-v2", loaded.Target)
}

func TestPersistence_SyncTriggersByUserAndSource(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	triggers := []*models.SyncTrigger{
		{ID: uuid.New().String(), UserID: "u1", Source: "gmail", Target: "a"},
		{ID: uuid.New().String(), UserID: "u1", Source: "gmail", Target: "b"},
		{ID: uuid.New().String(), UserID: "u1", Source: "hubspot", Target: "c"},
		{ID: uuid.New().String(), UserID: "u2", Source: "gmail", Target: "d"},
	}
	for _, trigger := range triggers {
		require.NoError(t, p.SaveSyncTrigger(ctx, trigger))
	}

	matched, err := p.SyncTriggersByUserAndSource(ctx, "u1", "gmail")
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	byUser, err := p.SyncTriggersByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, byUser, 3)

	empty, err := p.SyncTriggersByUserAndSource(ctx, "u1", "salesforce")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPersistence_DeleteSyncTrigger(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	trigger := &models.SyncTrigger{ID: uuid.New().String(), UserID: "u1", Source: "gmail"}
	require.NoError(t, p.SaveSyncTrigger(ctx, trigger))

	require.NoError(t, p.DeleteSyncTrigger(ctx, trigger.ID))

	_, err := p.SyncTriggerByID(ctx, trigger.ID)
	assert.True(t, persistence.IsSyncTriggerNotFound(err))

	err = p.DeleteSyncTrigger(ctx, trigger.ID)
	assert.True(t, persistence.IsSyncTriggerNotFound(err))
}
