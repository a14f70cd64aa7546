package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent(KindDeletion, "appointments/appt-1", "delete",
		SensitivitySensitive, OutcomeSuccess, "prac-1",
		map[string]interface{}{"patient_id": "pat-1"})

	if event.EventID == "" {
		t.Error("Expected event ID to be set")
	}
	if event.Kind != KindDeletion {
		t.Errorf("Expected kind deletion, got %s", event.Kind)
	}
	if event.Resource != "appointments/appt-1" {
		t.Errorf("Unexpected resource: %s", event.Resource)
	}
	if event.ActorID != "prac-1" {
		t.Errorf("Unexpected actor: %s", event.ActorID)
	}
	if event.ServiceName != "clinic-service" {
		t.Errorf("Unexpected service name: %s", event.ServiceName)
	}
	if event.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
	if event.Timestamp.Location().String() != "UTC" {
		t.Errorf("Expected UTC timestamp, got %s", event.Timestamp.Location())
	}
	if event.Detail["patient_id"] != "pat-1" {
		t.Errorf("Unexpected detail: %v", event.Detail)
	}
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	a := NewEvent(KindModification, "appointments/appt-1", "create",
		SensitivitySensitive, OutcomeSuccess, "prac-1", nil)
	b := NewEvent(KindModification, "appointments/appt-1", "create",
		SensitivitySensitive, OutcomeSuccess, "prac-1", nil)

	if _, err := uuid.Parse(a.EventID); err != nil {
		t.Errorf("Expected a UUID event ID, got %q: %v", a.EventID, err)
	}
	if a.EventID == b.EventID {
		t.Errorf("Expected distinct event IDs, got %q twice", a.EventID)
	}
}

func TestEventRoutingKey(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{KindModification, "audit.modification"},
		{KindDeletion, "audit.deletion"},
	}

	for _, tt := range tests {
		event := Event{Kind: tt.kind}
		if got := event.RoutingKey(); got != tt.want {
			t.Errorf("RoutingKey(%s): expected %s, got %s", tt.kind, tt.want, got)
		}
	}
}

func TestPublisherRecord_NilReceiver(t *testing.T) {
	var p *Publisher

	event := NewEvent(KindModification, "appointments", "create",
		SensitivitySensitive, OutcomeSuccess, "prac-1", nil)

	if err := p.Record(context.Background(), event); err != nil {
		t.Errorf("Expected nil publisher to drop the event, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Expected nil publisher Close to succeed, got %v", err)
	}
}
