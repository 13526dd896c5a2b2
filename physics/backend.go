package physics

// ShapeKind is the declared collision shape of a binding.
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapeCapsule
	ShapeMesh
)

// Valid reports whether k is a known shape kind.
func (k ShapeKind) Valid() bool {
	return k >= ShapeBox && k <= ShapeMesh
}

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCapsule:
		return "capsule"
	case ShapeMesh:
		return "mesh"
	default:
		return "invalid"
	}
}

// Dims holds shape dimensions. Box uses Width/Height/Depth, Sphere uses
// Radius, Capsule uses Radius and Height.
type Dims struct {
	Width  float64
	Height float64
	Depth  float64
	Radius float64
}

// Material holds surface and mass properties applied to a live handle.
type Material struct {
	Friction    float64
	Restitution float64
	Density     float64
}

// Handle is an opaque reference to a backend-owned collision shape. Only the
// backend that produced a handle may interpret or destroy it.
type Handle interface{}

// Cooker is the part of the physics backend the shape cache talks to. Cook
// calls are synchronous CPU work on raw buffers and return nil when the
// backend rejects malformed input.
type Cooker interface {
	CookConvex(positions []float32) Handle
	CookTriangleMesh(positions []float32, indices16 []uint16, indices32 []uint32) Handle
	Destroy(h Handle)
}

// Backend adds primitive shape construction and in-place property updates on
// live handles. All calls are synchronous.
type Backend interface {
	Cooker
	NewPrimitive(kind ShapeKind, dims Dims) Handle
	SetTrigger(h Handle, trigger bool)
	SetMaterial(h Handle, friction, restitution float64)
	SetLayers(h Handle, layers []string)
}
