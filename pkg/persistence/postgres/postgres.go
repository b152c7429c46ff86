// Package postgres implements persistence on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
	"github.com/hooklinehq/hookline/pkg/persistence/sqlbase"

	_ "github.com/lib/pq"
)

// Persistence implements persistence.Persistence using PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ persistence.Persistence = (*Persistence)(nil)

// NewPersistence connects, pings and migrates the database.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.InfoContext(ctx, "PostgreSQL persistence initialized successfully")

	return &Persistence{
		db:     database,
		logger: logger.With("component", "postgres_persistence"),
	}, nil
}

// CreateActivity appends an activity record and returns its id.
func (p *Persistence) CreateActivity(ctx context.Context, activity *models.Activity) (string, error) {
	query := `
		INSERT INTO activities (id, event, source, received_at, data, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	_, err := p.db.ExecContext(ctx, query,
		activity.ID,
		activity.Event,
		activity.Source,
		activity.ReceivedAt,
		activity.Data,
		activity.UserID,
		activity.CreatedAt,
	)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to insert activity",
			"activity_id", activity.ID, "source", activity.Source, "error", err)

		return "", persistence.NewStoreError("CreateActivity", activity.ID, err)
	}

	p.logger.DebugContext(ctx, "Activity appended", "activity_id", activity.ID, "source", activity.Source)

	return activity.ID, nil
}

// Activities returns a user's most recent activity records, newest first.
func (p *Persistence) Activities(ctx context.Context, userID string, limit int) ([]*models.Activity, error) {
	query := `
		SELECT id, event, source, received_at, data, user_id, created_at
		FROM activities
		WHERE user_id = $1
		ORDER BY received_at DESC
		LIMIT $2
	`

	rows, err := p.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to query activities", "user_id", userID, "error", err)

		return nil, persistence.NewStoreError("Activities", userID, err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			p.logger.ErrorContext(ctx, "Failed to close rows", "error", closeErr)
		}
	}()

	var activities []*models.Activity

	for rows.Next() {
		activity := &models.Activity{}

		err := rows.Scan(
			&activity.ID,
			&activity.Event,
			&activity.Source,
			&activity.ReceivedAt,
			&activity.Data,
			&activity.UserID,
			&activity.CreatedAt,
		)
		if err != nil {
			return nil, persistence.NewStoreError("Activities", userID, err)
		}

		activities = append(activities, activity)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("Activities", userID, err)
	}

	return activities, nil
}

// DeleteActivitiesBefore removes activity records received before cutoff and
// returns the number of rows removed.
func (p *Persistence) DeleteActivitiesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := p.db.ExecContext(ctx, `DELETE FROM activities WHERE received_at < $1`, cutoff)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to delete aged activities", "cutoff", cutoff, "error", err)

		return 0, persistence.NewStoreError("DeleteActivitiesBefore", "", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, persistence.NewStoreError("DeleteActivitiesBefore", "", err)
	}

	return rowsAffected, nil
}

// SaveSyncTrigger saves or updates a sync trigger.
func (p *Persistence) SaveSyncTrigger(ctx context.Context, trigger *models.SyncTrigger) error {
	query := `
		INSERT INTO sync_triggers (id, user_id, source, target, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET
			user_id = EXCLUDED.user_id,
			source = EXCLUDED.source,
			target = EXCLUDED.target,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now().UTC()
	if trigger.CreatedAt.IsZero() {
		trigger.CreatedAt = now
	}

	trigger.UpdatedAt = now

	_, err := p.db.ExecContext(ctx, query,
		trigger.ID,
		trigger.UserID,
		trigger.Source,
		trigger.Target,
		trigger.CreatedAt,
		trigger.UpdatedAt,
	)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to save sync trigger", "trigger_id", trigger.ID, "error", err)

		return persistence.NewStoreError("SaveSyncTrigger", trigger.ID, err)
	}

	return nil
}

// SyncTriggerByID retrieves a sync trigger by its id.
func (p *Persistence) SyncTriggerByID(ctx context.Context, id string) (*models.SyncTrigger, error) {
	query := `
		SELECT id, user_id, source, target, created_at, updated_at
		FROM sync_triggers
		WHERE id = $1
	`

	trigger := &models.SyncTrigger{}

	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&trigger.ID,
		&trigger.UserID,
		&trigger.Source,
		&trigger.Target,
		&trigger.CreatedAt,
		&trigger.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrSyncTriggerNotFound
		}

		p.logger.ErrorContext(ctx, "Failed to scan sync trigger", "trigger_id", id, "error", err)

		return nil, persistence.NewStoreError("SyncTriggerByID", id, err)
	}

	return trigger, nil
}

// SyncTriggersByUserAndSource returns every trigger for the pair. An empty
// result is returned as (nil, nil).
func (p *Persistence) SyncTriggersByUserAndSource(ctx context.Context, userID, source string) ([]*models.SyncTrigger, error) {
	query := `
		SELECT id, user_id, source, target, created_at, updated_at
		FROM sync_triggers
		WHERE user_id = $1 AND source = $2
		ORDER BY created_at ASC
	`

	return p.querySyncTriggers(ctx, "SyncTriggersByUserAndSource", query, userID, source)
}

// SyncTriggersByUser returns every trigger configured by a user.
func (p *Persistence) SyncTriggersByUser(ctx context.Context, userID string) ([]*models.SyncTrigger, error) {
	query := `
		SELECT id, user_id, source, target, created_at, updated_at
		FROM sync_triggers
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	return p.querySyncTriggers(ctx, "SyncTriggersByUser", query, userID)
}

// DeleteSyncTrigger removes a sync trigger.
func (p *Persistence) DeleteSyncTrigger(ctx context.Context, id string) error {
	result, err := p.db.ExecContext(ctx, `DELETE FROM sync_triggers WHERE id = $1`, id)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to delete sync trigger", "trigger_id", id, "error", err)

		return persistence.NewStoreError("DeleteSyncTrigger", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("DeleteSyncTrigger", id, err)
	}

	if rowsAffected == 0 {
		return persistence.ErrSyncTriggerNotFound
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "Database health check failed", "error", err)

		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(ctx context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to close database connection", "error", err)

			return fmt.Errorf("failed to close database connection: %w", err)
		}

		p.logger.InfoContext(ctx, "Database connection closed successfully")
	}

	return nil
}

func (p *Persistence) querySyncTriggers(ctx context.Context, op, query string, args ...any) ([]*models.SyncTrigger, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to query sync triggers", "op", op, "error", err)

		return nil, persistence.NewStoreError(op, "", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			p.logger.ErrorContext(ctx, "Failed to close rows", "error", closeErr)
		}
	}()

	var triggers []*models.SyncTrigger

	for rows.Next() {
		trigger := &models.SyncTrigger{}

		err := rows.Scan(
			&trigger.ID,
			&trigger.UserID,
			&trigger.Source,
			&trigger.Target,
			&trigger.CreatedAt,
			&trigger.UpdatedAt,
		)
		if err != nil {
			return nil, persistence.NewStoreError(op, "", err)
		}

		triggers = append(triggers, trigger)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError(op, "", err)
	}

	return triggers, nil
}

// migrations returns the migration scripts for the relay tables.
func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Append-only log of received sync events
			CREATE TABLE activities (
				id VARCHAR(255) PRIMARY KEY,
				event VARCHAR(255) NOT NULL,
				source VARCHAR(255) NOT NULL,
				received_at TIMESTAMP WITH TIME ZONE NOT NULL,
				data JSONB NOT NULL,
				user_id VARCHAR(255) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_activities_user_id ON activities(user_id);
			CREATE INDEX idx_activities_received_at ON activities(received_at);
			CREATE INDEX idx_activities_source ON activities(source);

			-- Trigger configuration correlating (user, source) to a worker target
			CREATE TABLE sync_triggers (
				id VARCHAR(255) PRIMARY KEY,
				user_id VARCHAR(255) NOT NULL,
				source VARCHAR(255) NOT NULL,
				target VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_sync_triggers_user_source ON sync_triggers(user_id, source);
			CREATE INDEX idx_sync_triggers_user_id ON sync_triggers(user_id);
		`,
	}
}
