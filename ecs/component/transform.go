package component

import "github.com/milk9111/worldsmith/reactive"

// Transform is an entity's world placement. Position is reactive: the
// physics system registers the observer so any mutation from game logic
// marks the entity dirty for the next fixed tick, no polling involved.
type Transform struct {
	Position *reactive.Vector
	Yaw      float64
}

// NewTransform creates a transform at the given position.
func NewTransform(x, y, z float64) Transform {
	return Transform{Position: reactive.NewVector(x, y, z)}
}

var TransformComponent = New[Transform]()
