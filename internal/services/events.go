package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Routing keys of the domain events.
const (
	EventUserRegistered  = "user.registered"
	EventActivityCreated = "activity.created"
	EventActivityUpdated = "activity.updated"
	EventActivityDeleted = "activity.deleted"
)

// EventPublisher sends a message to the event exchange under routingKey.
// *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// Event is the JSON payload of every published event. It never carries
// credentials.
type Event struct {
	Event      string    `json:"event"`
	UserID     string    `json:"user_id"`
	ActivityID string    `json:"activity_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publishEvent sends ev if a publisher is configured. Failures are logged
// and never returned: events are best effort.
func publishEvent(p EventPublisher, ev Event) {
	if p == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", ev.Event, err)
		return
	}
	if err := p.Publish(ev.Event, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for user %s: %v", ev.Event, ev.UserID, err)
	}
}

// AuditEvent logs a consumed event. It returns an error for payloads that
// are not an Event, so the consumer can drop them.
func AuditEvent(routingKey string, body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("malformed %s event: %w", routingKey, err)
	}
	if ev.Event == "" || ev.UserID == "" {
		return fmt.Errorf("incomplete %s event", routingKey)
	}
	if ev.ActivityID != "" {
		log.Printf("[audit] %s user=%s activity=%s at=%s", ev.Event, ev.UserID, ev.ActivityID, ev.OccurredAt.Format(time.RFC3339))
	} else {
		log.Printf("[audit] %s user=%s at=%s", ev.Event, ev.UserID, ev.OccurredAt.Format(time.RFC3339))
	}
	return nil
}
