// Package bus provides a synchronous named-event publish/subscribe hub.
//
// Views and controls that do not know about each other communicate through a
// Bus: a component registers handlers for event names it cares about, and any
// component can emit an event with a free-form payload. Delivery is fully
// synchronous - by the time Emit returns, every handler registered at
// emit-time has run exactly once.
package bus

import (
	"sync"

	"genelink/internal/log"
)

// Conventional event names used across genelink components. The set is an
// extensible convention, not a fixed schema - collaborators may introduce new
// names without any change to the bus.
const (
	SelectionChange = "selection:change"
	SelectionClear  = "selection:clear"
	FilterApply     = "filter:apply"
)

// Handler receives the payload of an emitted event.
type Handler func(payload any)

// ErrorReporter is invoked when a handler panics during Emit. The panic is
// contained to the failing handler; remaining handlers still run.
type ErrorReporter func(event string, recovered any)

// Subscription identifies a single registered handler. It is the handle
// passed to Off; cancelling twice is a no-op.
type Subscription struct {
	event   string
	fn      Handler
	once    bool
	removed bool
}

// Bus is a named-event hub with an owned handler registry. Construct one per
// application context rather than sharing a package-level value, so tests can
// run against independent instances.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]*Subscription
	onError  ErrorReporter
}

// Option configures a Bus.
type Option func(*Bus)

// WithErrorReporter replaces the default panic reporter (the debug log).
func WithErrorReporter(r ErrorReporter) Option {
	return func(b *Bus) { b.onError = r }
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[string][]*Subscription),
		onError: func(event string, recovered any) {
			log.Error(log.CatBus, "handler panic", "event", event, "panic", recovered)
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// On registers a handler for the named event. Handlers for the same event are
// invoked in registration order. The returned subscription is the handle for
// Off.
func (b *Bus) On(event string, fn Handler) *Subscription {
	return b.register(event, fn, false)
}

// Once registers a handler that is automatically unsubscribed after its first
// invocation.
func (b *Bus) Once(event string, fn Handler) *Subscription {
	return b.register(event, fn, true)
}

func (b *Bus) register(event string, fn Handler, once bool) *Subscription {
	sub := &Subscription{event: event, fn: fn, once: once}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], sub)
	return sub
}

// Off removes a previously registered handler. Removing a handler that was
// never registered, or was already removed, is a no-op. Removing a handler
// while an Emit for its event is in progress prevents it from running if it
// has not run yet, without affecting delivery to other handlers.
func (b *Bus) Off(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remove(sub)
}

// remove marks the subscription dead and prunes it from the registry.
// Callers must hold b.mu.
func (b *Bus) remove(sub *Subscription) {
	if sub.removed {
		return
	}
	sub.removed = true
	list := b.handlers[sub.event]
	for i, s := range list {
		if s == sub {
			b.handlers[sub.event] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(b.handlers[sub.event]) == 0 {
		delete(b.handlers, sub.event)
	}
}

// Emit synchronously invokes every handler currently registered for the named
// event, in registration order. The handler list is snapshotted at emit time:
// handlers registered during the emit (by another handler) are not invoked as
// part of it. A panicking handler is reported and does not prevent the
// remaining handlers from running. Emitting an event with no handlers is a
// no-op.
func (b *Bus) Emit(event string, payload any) {
	b.mu.Lock()
	snapshot := make([]*Subscription, len(b.handlers[event]))
	copy(snapshot, b.handlers[event])
	b.mu.Unlock()

	for _, sub := range snapshot {
		b.mu.Lock()
		if sub.removed {
			b.mu.Unlock()
			continue
		}
		if sub.once {
			b.remove(sub)
		}
		b.mu.Unlock()

		b.invoke(event, sub.fn, payload)
	}
}

func (b *Bus) invoke(event string, fn Handler, payload any) {
	defer func() {
		if r := recover(); r != nil && b.onError != nil {
			b.onError(event, r)
		}
	}()
	fn(payload)
}

// HandlerCount returns the number of handlers registered for an event.
func (b *Bus) HandlerCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[event])
}
