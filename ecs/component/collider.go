package component

import (
	"github.com/milk9111/worldsmith/geometry"
	"github.com/milk9111/worldsmith/physics"
)

// Collider declares an entity's collision intent. The physics system owns
// the runtime Binding and reconciles it against these fields every tick:
// shape, dims, and trigger changes rebuild the backend handle, material and
// layer changes update it in place.
type Collider struct {
	Shape    physics.ShapeKind
	Dims     physics.Dims
	Trigger  bool
	Material physics.Material
	Layers   []string
	Static   bool

	// Mesh and MeshMode apply only when Shape is physics.ShapeMesh.
	Mesh     geometry.Source
	MeshMode geometry.CookMode

	// Binding is runtime state managed by the physics system.
	Binding *physics.Binding
}

var ColliderComponent = New[Collider]()
