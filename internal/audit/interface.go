package audit

import "context"

// Recorder defines the contract for emitting audit events
// This allows for easy mocking in tests
type Recorder interface {
	Record(ctx context.Context, event Event) error
	Close() error
}

// Ensure Publisher implements Recorder
var _ Recorder = (*Publisher)(nil)
