package game

import (
	"go.uber.org/zap"

	"github.com/user/guildmaster/internal/interfaces"
	"github.com/user/guildmaster/internal/types"
)

// EventBus is a synchronous fan-out implementation of the notification
// port. Entities publish after a committed mutation; subscribers run
// inline in publish order. Single-writer timeline, so no locking.
type EventBus struct {
	subscribers []func(types.Event)
	logger      *zap.Logger
}

// Ensure EventBus satisfies the notification port
var _ interfaces.EventPublisher = (*EventBus)(nil)

// NewEventBus creates an event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBus{logger: logger}
}

// Subscribe registers a handler invoked synchronously for every published event
func (b *EventBus) Subscribe(fn func(types.Event)) {
	b.subscribers = append(b.subscribers, fn)
}

// Publish delivers an event to every subscriber. Fire-and-forget from the
// publisher's perspective: the entity never depends on subscriber completion.
func (b *EventBus) Publish(event types.Event) {
	b.logger.Debug("event published",
		zap.String("kind", string(event.Kind())),
		zap.String("entity_id", event.EntityID()))

	for _, fn := range b.subscribers {
		fn(event)
	}
}

// EventRecorder collects published events in order; used by tests and by
// the day driver to observe game-over without coupling to Debt
type EventRecorder struct {
	Events []types.Event
}

// Ensure EventRecorder satisfies the notification port
var _ interfaces.EventPublisher = (*EventRecorder)(nil)

// Publish appends the event to the record
func (r *EventRecorder) Publish(event types.Event) {
	r.Events = append(r.Events, event)
}

// ByKind returns the recorded events of one kind, in publish order
func (r *EventRecorder) ByKind(kind types.EventKind) []types.Event {
	var out []types.Event
	for _, e := range r.Events {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

// publish is the nil-safe emit helper shared by all entities
func publish(events interfaces.EventPublisher, event types.Event) {
	if events != nil {
		events.Publish(event)
	}
}

// diag returns a usable diagnostic logger even for zero-value entities
func diag(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
