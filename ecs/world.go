package ecs

import "github.com/milk9111/worldsmith/ecs/component"

// World owns entities, component tables, and the contact event bus. All
// access happens from the owning world instance's simulation goroutine.
type World struct {
	entities entityStore
	tables   map[component.ID]*table
	bus      EventBus
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{tables: make(map[component.ID]*table)}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity removes an entity and all of its components. Returns false
// for a stale or unknown handle.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.destroy(e) {
		return false
	}
	for _, t := range w.tables {
		t.remove(e.id())
	}
	w.bus.DropEntity(e)
	return true
}

// IsAlive reports whether the handle names a live entity.
func (w *World) IsAlive(e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// Entities returns all live entities.
func (w *World) Entities() []Entity {
	if w == nil {
		return nil
	}
	return w.entities.alive()
}

// Events returns the world's contact event bus.
func (w *World) Events() *EventBus {
	if w == nil {
		return nil
	}
	return &w.bus
}

// AddComponent attaches or replaces a component value on a live entity.
func (w *World) AddComponent(e Entity, id component.ID, v any) error {
	if w == nil || !w.entities.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	if id == 0 {
		return component.ErrInvalidComponent
	}
	t, ok := w.tables[id]
	if !ok {
		t = &table{}
		w.tables[id] = t
	}
	t.set(e.id(), v)
	return nil
}

// GetComponent returns the raw component value for an entity.
func (w *World) GetComponent(e Entity, id component.ID) (any, bool) {
	if w == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	return w.tables[id].get(e.id())
}

// HasComponent reports whether the entity carries the component.
func (w *World) HasComponent(e Entity, id component.ID) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	return w.tables[id].has(e.id())
}

// RemoveComponent detaches a component from an entity.
func (w *World) RemoveComponent(e Entity, id component.ID) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	return w.tables[id].remove(e.id())
}

// Query returns entities carrying every listed component, iterating the
// smallest table and probing the rest.
func (w *World) Query(ids ...component.ID) []Entity {
	if w == nil || len(ids) == 0 {
		return nil
	}

	smallest := w.tables[ids[0]]
	for _, id := range ids[1:] {
		t := w.tables[id]
		if t.len() < smallest.len() {
			smallest = t
		}
	}
	if smallest.len() == 0 {
		return nil
	}

	out := make([]Entity, 0, smallest.len())
next:
	for _, slot := range smallest.denseIDs {
		for _, id := range ids {
			if !w.tables[id].has(slot) {
				continue next
			}
		}
		out = append(out, makeEntity(slot, w.entities.gens[slot-1]))
	}
	return out
}

// First returns an arbitrary entity carrying the component, useful for
// singletons like the level bounds.
func (w *World) First(id component.ID) (Entity, bool) {
	if w == nil {
		return Nil, false
	}
	t := w.tables[id]
	if t.len() == 0 {
		return Nil, false
	}
	slot := t.denseIDs[0]
	return makeEntity(slot, w.entities.gens[slot-1]), true
}
