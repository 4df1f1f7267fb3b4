package engine

import (
	"context"
	"sync"

	"github.com/flowbyte/agentrun/core"
)

// EventSink receives the ordered stream of lifecycle events produced by a
// run. The engine awaits each delivery before proceeding, so events arrive
// in strict execution order and a slow sink slows the run; there is no
// internal buffering.
type EventSink interface {
	OnEvent(ctx context.Context, event core.StreamingEvent) error
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(ctx context.Context, event core.StreamingEvent) error

// OnEvent implements EventSink.
func (f SinkFunc) OnEvent(ctx context.Context, event core.StreamingEvent) error {
	return f(ctx, event)
}

// NoopSink discards all events.
type NoopSink struct{}

// OnEvent implements EventSink.
func (NoopSink) OnEvent(context.Context, core.StreamingEvent) error { return nil }

// CollectorSink records every event in memory. Intended for tests and for
// callers that post-process the event log after the run.
type CollectorSink struct {
	mu     sync.Mutex
	events []core.StreamingEvent
}

// OnEvent implements EventSink.
func (c *CollectorSink) OnEvent(_ context.Context, event core.StreamingEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

// Events returns a copy of the recorded events in delivery order.
func (c *CollectorSink) Events() []core.StreamingEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.StreamingEvent, len(c.events))
	copy(out, c.events)
	return out
}
