package dedup

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooklinehq/hookline/pkg/models"
)

func TestKey(t *testing.T) {
	t.Parallel()

	event := &models.SyncEvent{
		Event: "sync_completed",
		Sync:  "gmail",
		User:  models.SyncEventUser{ID: "u1"},
		Data: models.SyncEventData{
			SyncedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	assert.Equal(t, "hookline:dedup:sync_completed:gmail:2024-01-01T00:00:00Z:u1", Key(event))
}

func TestNewProbe_InvalidURL(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewProbe("not a redis url", DefaultTTL, logger)
	require.Error(t, err)
}

func TestNewProbe_DefaultTTL(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	probe, err := NewProbe("redis://localhost:6379/0", 0, logger)
	require.NoError(t, err)
	defer probe.Close()

	assert.Equal(t, DefaultTTL, probe.ttl)
}
