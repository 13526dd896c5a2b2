package ecs

// EventKind identifies a contact event type.
type EventKind string

const (
	EventCollisionEnter EventKind = "collision_enter"
	EventCollisionExit  EventKind = "collision_exit"
	EventTriggerEnter   EventKind = "trigger_enter"
	EventTriggerExit    EventKind = "trigger_exit"
)

// ContactEvent reports a backend contact or trigger transition involving
// Entity; Other is the entity on the far side of the contact.
type ContactEvent struct {
	Kind   EventKind
	Entity Entity
	Other  Entity
}

type subKey struct {
	entity Entity
	kind   EventKind
}

// EventBus queues contact events published during the physics step and
// dispatches them to per-entity subscribers at the end of the tick. The
// queue decouples publishing (mid-step) from handler execution so handlers
// observe a fully resolved tick.
type EventBus struct {
	queue []ContactEvent
	subs  map[subKey][]func(ContactEvent)
}

// Subscribe registers a handler for one event kind on one entity.
func (b *EventBus) Subscribe(e Entity, kind EventKind, fn func(ContactEvent)) {
	if b == nil || fn == nil || !e.Valid() {
		return
	}
	if b.subs == nil {
		b.subs = make(map[subKey][]func(ContactEvent))
	}
	key := subKey{entity: e, kind: kind}
	b.subs[key] = append(b.subs[key], fn)
}

// DropEntity removes every subscription held for an entity, called on
// entity destruction.
func (b *EventBus) DropEntity(e Entity) {
	if b == nil || b.subs == nil {
		return
	}
	for key := range b.subs {
		if key.entity == e {
			delete(b.subs, key)
		}
	}
}

// Publish queues an event for dispatch at the end of the tick.
func (b *EventBus) Publish(ev ContactEvent) {
	if b == nil {
		return
	}
	b.queue = append(b.queue, ev)
}

// Pending returns the number of queued events.
func (b *EventBus) Pending() int {
	if b == nil {
		return 0
	}
	return len(b.queue)
}

// Flush dispatches queued events to their subscribers and clears the queue.
// Events published by handlers during the flush are dispatched next tick.
func (b *EventBus) Flush() {
	if b == nil || len(b.queue) == 0 {
		return
	}
	batch := b.queue
	b.queue = nil
	for _, ev := range batch {
		for _, fn := range b.subs[subKey{entity: ev.Entity, kind: ev.Kind}] {
			fn(ev)
		}
	}
}
