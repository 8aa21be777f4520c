package event

import "go.uber.org/zap"

// Handler consumes events. Each system implements a single Handle with a type
// switch over the events it cares about.
type Handler interface {
	Handle(ev Event)
}

// HandlerFunc adapts a function into a Handler.
type HandlerFunc func(ev Event)

// Handle calls f(ev).
func (f HandlerFunc) Handle(ev Event) { f(ev) }

type subscription struct {
	name    string
	handler Handler
}

// Bus delivers events synchronously to every subscriber in subscription order.
//
// Publish is depth-first: an event re-published by a handler is fully handled
// before the outer handler continues. Defer queues an event until the
// outermost Publish has finished, which the state machine uses to hand the
// turn to the next combatant without growing the call stack.
//
// Bus is not safe for concurrent use; the owning encounter serialises calls.
type Bus struct {
	logger    *zap.Logger
	subs      []subscription
	depth     int
	deferred  []Event
	draining  bool
	published uint64
}

// NewBus creates a Bus.
//
// Precondition: logger must be non-nil.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe appends h to the subscriber list. Handlers added while an event is
// being dispatched first see the next event.
//
// Precondition: h must be non-nil.
func (b *Bus) Subscribe(name string, h Handler) {
	b.subs = append(b.subs, subscription{name: name, handler: h})
}

// Publish dispatches ev to every subscriber and returns once ev, everything it
// triggered, and every deferred event have been handled.
func (b *Bus) Publish(ev Event) {
	b.published++
	b.depth++
	if ce := b.logger.Check(zap.DebugLevel, "event"); ce != nil {
		ce.Write(append([]zap.Field{zap.String("event", ev.Name()), zap.Int("depth", b.depth)}, ev.fields()...)...)
	}
	subs := b.subs
	for _, s := range subs {
		s.handler.Handle(ev)
	}
	b.depth--
	if b.depth == 0 {
		b.drain()
	}
}

// Defer publishes ev after the outermost Publish completes. Called outside any
// dispatch it publishes immediately.
func (b *Bus) Defer(ev Event) {
	if b.depth == 0 && !b.draining {
		b.Publish(ev)
		return
	}
	b.deferred = append(b.deferred, ev)
}

// Published returns the number of events dispatched so far.
func (b *Bus) Published() uint64 { return b.published }

// Pending returns the number of deferred events not yet dispatched.
func (b *Bus) Pending() int { return len(b.deferred) }

func (b *Bus) drain() {
	if b.draining {
		return
	}
	b.draining = true
	defer func() { b.draining = false }()
	for len(b.deferred) > 0 {
		ev := b.deferred[0]
		b.deferred = b.deferred[1:]
		b.Publish(ev)
	}
}
