package ecs

import "github.com/milk9111/worldsmith/ecs/component"

// Add attaches a typed component value to an entity.
func Add[T any](w *World, e Entity, handle component.Handle[T], value T) error {
	return w.AddComponent(e, handle.ID(), value)
}

// Remove detaches a typed component from an entity.
func Remove[T any](w *World, e Entity, handle component.Handle[T]) bool {
	return w.RemoveComponent(e, handle.ID())
}

// Has reports whether the entity carries the typed component.
func Has[T any](w *World, e Entity, handle component.Handle[T]) bool {
	return w.HasComponent(e, handle.ID())
}

// Get returns the typed component value for an entity.
func Get[T any](w *World, e Entity, handle component.Handle[T]) (T, bool) {
	var zero T
	value, ok := w.GetComponent(e, handle.ID())
	if !ok {
		return zero, false
	}
	cast, ok := value.(T)
	if !ok {
		return zero, false
	}
	return cast, true
}
