package events

import "time"

// Envelope is the canonical event shape carried on the platform bus.
// The payload is the service-level event; the envelope adds the routing
// and provenance fields every producer must stamp.
type Envelope struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	SourceService  string    `json:"source_service"`
	EntityType     string    `json:"entity_type"`
	EntityID       string    `json:"entity_id"`
	CorrelationID  string    `json:"correlation_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
	PayloadVersion int       `json:"payload_version"`
	Payload        any       `json:"payload"`
}

// NewEnvelope stamps provenance onto a payload. A zero occurredAt falls
// back to the current time so consumers always see an ordering hint.
func NewEnvelope(
	eventID string,
	eventType string,
	sourceService string,
	entityType string,
	entityID string,
	occurredAt time.Time,
	payload any,
) Envelope {
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return Envelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  sourceService,
		EntityType:     entityType,
		EntityID:       entityID,
		CorrelationID:  entityID,
		OccurredAt:     occurredAt.UTC(),
		PayloadVersion: 1,
		Payload:        payload,
	}
}
