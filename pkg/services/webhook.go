package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hooklinehq/hookline/pkg/eventbus"
	"github.com/hooklinehq/hookline/pkg/events"
	"github.com/hooklinehq/hookline/pkg/models"
	"github.com/hooklinehq/hookline/pkg/persistence"
	"github.com/hooklinehq/hookline/pkg/relay"
)

// DeliveryProbe reports whether a sync event was delivered before.
type DeliveryProbe interface {
	Seen(ctx context.Context, event *models.SyncEvent) (bool, error)
}

// Webhook ingests sync events: it appends the activity record and hands the
// event to the relay. The two steps are independent failure domains; a
// relay failure never rolls back the activity write.
type Webhook struct {
	persistence persistence.Persistence
	relay       *relay.Relay
	publisher   eventbus.EventPublisher
	probe       DeliveryProbe
	logger      *slog.Logger
}

// NewWebhook creates the ingestion service. publisher and probe are
// optional; pass nil to disable event publishing or the duplicate probe.
func NewWebhook(
	p persistence.Persistence,
	r *relay.Relay,
	publisher eventbus.EventPublisher,
	probe DeliveryProbe,
	logger *slog.Logger,
) *Webhook {
	return &Webhook{
		persistence: p,
		relay:       r,
		publisher:   publisher,
		probe:       probe,
		logger:      logger.With("module", "webhook_service"),
	}
}

// ProcessSyncEvent appends exactly one activity record for the event and
// dispatches the relay. The relay result is returned verbatim for the HTTP
// layer; pipeline errors propagate typed so the caller can branch on the
// failure class.
func (s *Webhook) ProcessSyncEvent(ctx context.Context, event *models.SyncEvent) (*relay.Result, error) {
	s.probeDelivery(ctx, event)

	activity, err := models.NewActivityFromEvent(event)
	if err != nil {
		return nil, persistence.NewStoreError("ProcessSyncEvent", "", err)
	}

	activityID, err := s.persistence.CreateActivity(ctx, activity)
	if err != nil {
		s.logger.Error("Failed to create activity",
			"event", event.Event, "source", event.Sync, "user_id", event.User.ID, "error", err)

		return nil, err
	}

	s.logger.Info("Successfully logged activity",
		"activity_id", activityID, "event", event.Event, "source", event.Sync, "user_id", event.User.ID)
	s.publish(ctx, event, events.ActivityRecorded{
		BaseEvent:  s.baseEvent(events.ActivityRecordedEvent, event),
		ActivityID: activityID,
		Model:      event.Data.Model,
		NumRecords: event.Data.NumRecords,
	})

	result, err := s.relay.Dispatch(ctx, event.User.ID, event.Sync)
	if err != nil {
		s.publish(ctx, event, events.SyncRelayFailed{
			BaseEvent: s.baseEvent(events.SyncRelayFailedEvent, event),
			Error:     err.Error(),
		})

		return nil, err
	}

	switch result.Outcome {
	case relay.OutcomeForwarded:
		s.publish(ctx, event, events.SyncForwarded{
			BaseEvent: s.baseEvent(events.SyncForwardedEvent, event),
			Triggers:  result.Triggers,
		})
	case relay.OutcomeNoTrigger, relay.OutcomeWorkerUnconfigured:
		s.publish(ctx, event, events.SyncSkipped{
			BaseEvent: s.baseEvent(events.SyncSkippedEvent, event),
			Reason:    string(result.Outcome),
		})
	}

	return result, nil
}

// RecentActivities lists a user's activity history, newest first.
func (s *Webhook) RecentActivities(ctx context.Context, userID string, limit int) ([]*models.Activity, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	if limit <= 0 {
		limit = 50
	}

	return s.persistence.Activities(ctx, userID, limit)
}

// probeDelivery logs redeliveries. Duplicates stay accepted: the activity
// log is append-only and tolerates them.
func (s *Webhook) probeDelivery(ctx context.Context, event *models.SyncEvent) {
	if s.probe == nil {
		return
	}

	seen, err := s.probe.Seen(ctx, event)
	if err != nil {
		s.logger.Warn("Delivery probe unavailable", "error", err)

		return
	}

	if seen {
		s.logger.Warn("Duplicate webhook delivery",
			"event", event.Event, "source", event.Sync, "user_id", event.User.ID,
			"synced_at", event.Data.SyncedAt)
	}
}

// publish is best effort: a bus failure is logged and never fails the request.
func (s *Webhook) publish(ctx context.Context, event *models.SyncEvent, busEvent eventbus.Event) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(ctx, event.User.ID, busEvent); err != nil {
		s.logger.Warn("Failed to publish event",
			"event_type", busEvent.GetType(), "user_id", event.User.ID, "error", err)
	}
}

func (s *Webhook) baseEvent(eventType events.EventType, event *models.SyncEvent) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		UserID:    event.User.ID,
		Source:    event.Sync,
	}
}
