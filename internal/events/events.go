// Package events publishes clustering run lifecycle events to Kafka for the
// analytics pipeline.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/searchlabs/docluster/pkg/kafka"
)

// Event types on the run topic.
const (
	TypeRunStarted   = "run_started"
	TypeRunCompleted = "run_completed"
	TypeRunFailed    = "run_failed"
)

// RunEvent is the payload for every run lifecycle event.
type RunEvent struct {
	Type       string    `json:"type"`
	RunID      string    `json:"run_id"`
	Clusters   int       `json:"clusters"`
	InitMethod string    `json:"init_method"`
	NumDocs    int       `json:"num_docs,omitempty"`
	Iterations int       `json:"iterations,omitempty"`
	Converged  bool      `json:"converged,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Emitter publishes run events, keyed by run id so one run's events land on
// one partition in order.
type Emitter struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewEmitter creates an Emitter over the given producer.
func NewEmitter(producer *kafka.Producer) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   slog.Default().With("component", "run-events"),
	}
}

// Emit publishes one event. Timestamp is stamped here when unset.
func (e *Emitter) Emit(ctx context.Context, event RunEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	err := e.producer.Publish(ctx, kafka.Event{
		Key:   event.RunID,
		Value: event,
	})
	if err != nil {
		return err
	}
	e.logger.Debug("run event emitted", "type", event.Type, "run_id", event.RunID)
	return nil
}

// Close closes the underlying producer.
func (e *Emitter) Close() error {
	return e.producer.Close()
}
