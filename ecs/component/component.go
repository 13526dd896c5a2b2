package component

import (
	"errors"
	"sync/atomic"
)

var (
	ErrEntityNotAlive   = errors.New("ecs: entity not alive")
	ErrInvalidComponent = errors.New("ecs: invalid component")
)

// ID identifies a component type at runtime.
type ID uint32

var nextID atomic.Uint32

// Handle is the typed registration of a component. Declare one package-level
// handle per component type and share it between writers and queries.
type Handle[T any] struct {
	id ID
}

// New registers a component type and returns its handle.
func New[T any]() Handle[T] {
	return Handle[T]{id: ID(nextID.Add(1))}
}

func (h Handle[T]) ID() ID {
	return h.id
}

func (h Handle[T]) Valid() bool {
	return h.id != 0
}
