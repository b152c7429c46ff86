// Package events defines the lifecycle events published to the event bus as
// sync deliveries move through the relay.
package events

import "time"

type EventType string

// Kafka topic carrying all relay lifecycle events.
const Topic = "hookline.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ActivityRecordedEvent EventType = "activity.recorded"
	SyncForwardedEvent    EventType = "sync.forwarded"
	SyncSkippedEvent      EventType = "sync.skipped"
	SyncRelayFailedEvent  EventType = "sync.relay.failed"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Source    string    `json:"source"`
}

// ActivityRecorded is published after an activity record is appended.
type ActivityRecorded struct {
	BaseEvent

	ActivityID string `json:"activity_id"`
	Model      string `json:"model,omitempty"`
	NumRecords int    `json:"num_records"`
}

func (e ActivityRecorded) GetType() EventType {
	return ActivityRecordedEvent
}

// SyncForwarded is published after the trigger payload reached the worker.
type SyncForwarded struct {
	BaseEvent

	Triggers int `json:"triggers"`
}

func (e SyncForwarded) GetType() EventType {
	return SyncForwardedEvent
}

// SyncSkipped is published when the relay terminated without forwarding:
// no trigger matched or no worker is configured.
type SyncSkipped struct {
	BaseEvent

	Reason string `json:"reason"`
}

func (e SyncSkipped) GetType() EventType {
	return SyncSkippedEvent
}

// SyncRelayFailed is published when the relay pipeline failed after the
// activity record was written.
type SyncRelayFailed struct {
	BaseEvent

	Error string `json:"error"`
}

func (e SyncRelayFailed) GetType() EventType {
	return SyncRelayFailedEvent
}
