package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/osteoflow/clinic-service/internal/audit"
)

// MockRecorder is an in-memory implementation of audit.Recorder for testing
// It stores all recorded events and doesn't make any real broker calls
type MockRecorder struct {
	mu     sync.RWMutex
	events []audit.Event
}

// NewMockRecorder creates a new mock audit recorder
func NewMockRecorder() *MockRecorder {
	return &MockRecorder{
		events: make([]audit.Event, 0),
	}
}

// Record stores an event in memory (no real broker call)
func (m *MockRecorder) Record(ctx context.Context, event audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	return nil
}

// Close is a no-op for mock recorder
func (m *MockRecorder) Close() error {
	return nil
}

// Helper methods for test assertions

// GetAllEvents returns all recorded events
func (m *MockRecorder) GetAllEvents() []audit.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy
	eventsCopy := make([]audit.Event, len(m.events))
	copy(eventsCopy, m.events)
	return eventsCopy
}

// GetEventsByAction returns all events with the specified action
func (m *MockRecorder) GetEventsByAction(action string) []audit.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var filtered []audit.Event
	for _, event := range m.events {
		if event.Action == action {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// GetEventCount returns the total number of events recorded
func (m *MockRecorder) GetEventCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.events)
}

// Reset clears all recorded events (for test cleanup)
func (m *MockRecorder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = make([]audit.Event, 0)
}

// AssertEventRecorded asserts that at least one event with the given action was recorded
func (m *MockRecorder) AssertEventRecorded(t *testing.T, action string) {
	t.Helper()

	if len(m.GetEventsByAction(action)) == 0 {
		t.Errorf("Expected event with action '%s' to be recorded, but found none", action)
	}
}

// AssertEventOutcome asserts that the most recent event with the given action has the outcome
func (m *MockRecorder) AssertEventOutcome(t *testing.T, action, outcome string) {
	t.Helper()

	events := m.GetEventsByAction(action)
	if len(events) == 0 {
		t.Errorf("Expected event with action '%s' to be recorded, but found none", action)
		return
	}
	last := events[len(events)-1]
	if last.Outcome != outcome {
		t.Errorf("Expected event '%s' to have outcome '%s', got '%s'", action, outcome, last.Outcome)
	}
}

// GetLastEvent returns the most recently recorded event, or nil if no events
func (m *MockRecorder) GetLastEvent() *audit.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.events) == 0 {
		return nil
	}

	lastEvent := m.events[len(m.events)-1]
	return &lastEvent
}

var _ audit.Recorder = (*MockRecorder)(nil)
