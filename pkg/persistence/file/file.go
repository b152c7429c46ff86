// Package file implements persistence on plain JSON files. It is meant for
// local development and tests; production deployments use postgres.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
)

const (
	activitiesDir = "activities"
	triggersDir   = "triggers"
	fileMode      = 0o600
	dirMode       = 0o755
)

// Persistence implements persistence.Persistence on a directory of JSON files.
type Persistence struct {
	root string
	mu   sync.RWMutex
}

var _ persistence.Persistence = (*Persistence)(nil)

// NewPersistence creates the storage directories under root.
func NewPersistence(root string) *Persistence {
	root = strings.TrimPrefix(root, "file://")

	for _, dir := range []string{activitiesDir, triggersDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), dirMode); err != nil {
			panic(fmt.Errorf("failed to create persistence directory: %w", err))
		}
	}

	return &Persistence{root: root}
}

func (p *Persistence) CreateActivity(_ context.Context, activity *models.Activity) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	err := p.writeJSON(filepath.Join(activitiesDir, activity.ID+".json"), activity)
	if err != nil {
		return "", persistence.NewStoreError("CreateActivity", activity.ID, err)
	}

	return activity.ID, nil
}

func (p *Persistence) Activities(_ context.Context, userID string, limit int) ([]*models.Activity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var activities []*models.Activity

	err := p.eachFile(activitiesDir, func(path string) error {
		activity := &models.Activity{}
		if err := p.readJSON(path, activity); err != nil {
			return err
		}

		if activity.UserID == userID {
			activities = append(activities, activity)
		}

		return nil
	})
	if err != nil {
		return nil, persistence.NewStoreError("Activities", userID, err)
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].ReceivedAt.After(activities[j].ReceivedAt)
	})

	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}

	return activities, nil
}

func (p *Persistence) DeleteActivitiesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var removed int64

	err := p.eachFile(activitiesDir, func(path string) error {
		activity := &models.Activity{}
		if err := p.readJSON(path, activity); err != nil {
			return err
		}

		if activity.ReceivedAt.Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return err
			}

			removed++
		}

		return nil
	})
	if err != nil {
		return removed, persistence.NewStoreError("DeleteActivitiesBefore", "", err)
	}

	return removed, nil
}

func (p *Persistence) SaveSyncTrigger(_ context.Context, trigger *models.SyncTrigger) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now().UTC()
	if trigger.CreatedAt.IsZero() {
		trigger.CreatedAt = now
	}

	trigger.UpdatedAt = now

	err := p.writeJSON(filepath.Join(triggersDir, trigger.ID+".json"), trigger)
	if err != nil {
		return persistence.NewStoreError("SaveSyncTrigger", trigger.ID, err)
	}

	return nil
}

func (p *Persistence) SyncTriggerByID(_ context.Context, id string) (*models.SyncTrigger, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	trigger := &models.SyncTrigger{}

	err := p.readJSON(filepath.Join(p.root, triggersDir, id+".json"), trigger)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.ErrSyncTriggerNotFound
		}

		return nil, persistence.NewStoreError("SyncTriggerByID", id, err)
	}

	return trigger, nil
}

func (p *Persistence) SyncTriggersByUserAndSource(ctx context.Context, userID, source string) ([]*models.SyncTrigger, error) {
	return p.filterTriggers("SyncTriggersByUserAndSource", func(t *models.SyncTrigger) bool {
		return t.UserID == userID && t.Source == source
	})
}

func (p *Persistence) SyncTriggersByUser(ctx context.Context, userID string) ([]*models.SyncTrigger, error) {
	return p.filterTriggers("SyncTriggersByUser", func(t *models.SyncTrigger) bool {
		return t.UserID == userID
	})
}

func (p *Persistence) DeleteSyncTrigger(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := os.Remove(filepath.Join(p.root, triggersDir, id+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return persistence.ErrSyncTriggerNotFound
		}

		return persistence.NewStoreError("DeleteSyncTrigger", id, err)
	}

	return nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	info, err := os.Stat(p.root)
	if err != nil {
		return fmt.Errorf("persistence root unavailable: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("persistence root is not a directory: %s", p.root)
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) filterTriggers(op string, keep func(*models.SyncTrigger) bool) ([]*models.SyncTrigger, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var triggers []*models.SyncTrigger

	err := p.eachFile(triggersDir, func(path string) error {
		trigger := &models.SyncTrigger{}
		if err := p.readJSON(path, trigger); err != nil {
			return err
		}

		if keep(trigger) {
			triggers = append(triggers, trigger)
		}

		return nil
	})
	if err != nil {
		return nil, persistence.NewStoreError(op, "", err)
	}

	sort.Slice(triggers, func(i, j int) bool {
		return triggers[i].CreatedAt.Before(triggers[j].CreatedAt)
	})

	return triggers, nil
}

func (p *Persistence) eachFile(dir string, visit func(path string) error) error {
	entries, err := os.ReadDir(filepath.Join(p.root, dir))
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		if err := visit(filepath.Join(p.root, dir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

func (p *Persistence) writeJSON(relPath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(p.root, relPath), data, fileMode)
}

func (p *Persistence) readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, v)
}
