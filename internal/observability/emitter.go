// Package observability records operational telemetry for simulation runs.
//
// Telemetry events are appended to the run archive; they describe run
// lifecycle (started, completed, failed), not gameplay outcomes. Tracing is
// handled separately by the OpenTelemetry provider in platform/otel.
package observability

import (
	"context"
	"time"

	"github.com/louisbranch/ratinglab/internal/simulation/storage"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Run lifecycle event names.
const (
	EventRunStarted   = "run_started"
	EventRunCompleted = "run_completed"
	EventRunFailed    = "run_failed"
)

// Emitter records operational telemetry events.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
}

// NewEmitter creates a telemetry emitter. A nil store yields a no-op
// emitter, so callers never need to branch on whether telemetry is wired.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// NewRunEvent builds a run lifecycle event.
func NewRunEvent(severity Severity, eventName, runID, message string) storage.TelemetryEvent {
	return storage.TelemetryEvent{
		Severity:  string(severity),
		EventName: eventName,
		RunID:     runID,
		Message:   message,
	}
}

// Emit records a telemetry event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, evt storage.TelemetryEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	return e.store.AppendTelemetryEvent(ctx, evt)
}
