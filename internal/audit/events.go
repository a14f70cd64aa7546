package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds as routing-key suffixes
const (
	KindModification = "modification"
	KindDeletion     = "deletion"
)

// Sensitivity tiers
const (
	SensitivityInternal        = "internal"
	SensitivitySensitive       = "sensitive"
	SensitivityHighlySensitive = "highly_sensitive"
)

// Outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Event is the structured record emitted for every mutating or failing
// operation on clinical data.
type Event struct {
	EventID     string                 `json:"event_id"`
	Kind        string                 `json:"kind"`
	Resource    string                 `json:"resource"`
	Action      string                 `json:"action"`
	Sensitivity string                 `json:"sensitivity"`
	Outcome     string                 `json:"outcome"`
	ActorID     string                 `json:"actor_id"`
	Timestamp   time.Time              `json:"timestamp"`
	ServiceName string                 `json:"service_name"`
	Detail      map[string]interface{} `json:"detail,omitempty"`
}

// NewEvent creates an event with common fields populated
func NewEvent(kind, resource, action, sensitivity, outcome, actorID string, detail map[string]interface{}) Event {
	return Event{
		EventID:     uuid.NewString(),
		Kind:        kind,
		Resource:    resource,
		Action:      action,
		Sensitivity: sensitivity,
		Outcome:     outcome,
		ActorID:     actorID,
		Timestamp:   time.Now().UTC(), // Explicitly set to UTC
		ServiceName: "clinic-service",
		Detail:      detail,
	}
}

// RoutingKey returns the topic routing key for the event, e.g.
// "audit.modification".
func (e Event) RoutingKey() string {
	return "audit." + e.Kind
}
