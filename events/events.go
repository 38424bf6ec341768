package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeChannelProvisioned   EventType = "channel_provisioned"
	EventTypeChannelReleased      EventType = "channel_released"
	EventTypeOwnershipTransferred EventType = "ownership_transferred"
	EventTypeGuildSetupCompleted  EventType = "guild_setup_completed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ChannelProvisionedEvent represents a dynamic channel that was created for a member
type ChannelProvisionedEvent struct {
	GuildID   int64
	OwnerID   int64
	ChannelID int64
	Name      string
	UserLimit int
}

func (e ChannelProvisionedEvent) Type() EventType {
	return EventTypeChannelProvisioned
}

// ChannelReleasedEvent represents a dynamic channel that became empty and was destroyed
type ChannelReleasedEvent struct {
	GuildID   int64
	OwnerID   int64
	ChannelID int64
}

func (e ChannelReleasedEvent) Type() EventType {
	return EventTypeChannelReleased
}

// OwnershipTransferredEvent represents a claim of an abandoned channel
type OwnershipTransferredEvent struct {
	GuildID         int64
	ChannelID       int64
	PreviousOwnerID int64
	NewOwnerID      int64
}

func (e OwnershipTransferredEvent) Type() EventType {
	return EventTypeOwnershipTransferred
}

// GuildSetupCompletedEvent represents a completed join-to-create setup for a guild
type GuildSetupCompletedEvent struct {
	GuildID        int64
	OwnerID        int64
	LobbyChannelID int64
	CategoryID     int64
}

func (e GuildSetupCompletedEvent) Type() EventType {
	return EventTypeGuildSetupCompleted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Use background context for event emission to avoid issues with transaction context expiration
	// Events should be processed independently of the transaction lifecycle
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
