package native

import (
	"github.com/chewxy/math32"

	"github.com/milk9111/worldsmith/physics"
)

// AABB is an axis-aligned bounding box in local shape space. Cooked bounds
// stay in float32, the precision the vertex buffers arrive in.
type AABB struct {
	Min [3]float32
	Max [3]float32
}

func emptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: [3]float32{inf, inf, inf},
		Max: [3]float32{-inf, -inf, -inf},
	}
}

func (bb *AABB) extend(x, y, z float32) {
	bb.Min[0] = math32.Min(bb.Min[0], x)
	bb.Min[1] = math32.Min(bb.Min[1], y)
	bb.Min[2] = math32.Min(bb.Min[2], z)
	bb.Max[0] = math32.Max(bb.Max[0], x)
	bb.Max[1] = math32.Max(bb.Max[1], y)
	bb.Max[2] = math32.Max(bb.Max[2], z)
}

// Shape is a backend-owned collision resource produced by cooking or
// primitive construction. One shape may be attached to several bodies at
// once: that is how a cooked mesh is shared across entities. Trigger,
// material, and layer properties live on the shape and therefore apply to
// every attachment of a shared handle.
type Shape struct {
	id   uint64
	kind physics.ShapeKind
	dims physics.Dims

	trigger     bool
	friction    float64
	restitution float64
	layers      map[string]struct{}

	// cooked buffers, retained for the shape's lifetime
	verts []float32
	idx16 []uint16
	idx32 []uint32

	local     AABB
	destroyed bool
}

// Kind returns the shape's kind; cooked shapes report ShapeMesh.
func (s *Shape) Kind() physics.ShapeKind {
	if s == nil {
		return physics.ShapeMesh
	}
	return s.kind
}

// Trigger reports whether the shape overlaps without physical response.
func (s *Shape) Trigger() bool {
	return s != nil && s.trigger
}

// Destroyed reports whether the shape has been released back to the backend.
func (s *Shape) Destroyed() bool {
	return s == nil || s.destroyed
}

// Bounds returns the shape's local-space bounding box.
func (s *Shape) Bounds() AABB {
	if s == nil {
		return AABB{}
	}
	return s.local
}

func (s *Shape) collidesWith(o *Shape) bool {
	if len(s.layers) == 0 || len(o.layers) == 0 {
		return true
	}
	for l := range s.layers {
		if _, ok := o.layers[l]; ok {
			return true
		}
	}
	return false
}

func aabbOverlap(minA, maxA, minB, maxB [3]float64) bool {
	for i := 0; i < 3; i++ {
		if maxA[i] < minB[i] || maxB[i] < minA[i] {
			return false
		}
	}
	return true
}
