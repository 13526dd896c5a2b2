package physics

import (
	"errors"
	"log"

	"github.com/milk9111/worldsmith/geometry"
)

// ErrInvalidShapeKind is returned by setters rejecting an unknown shape kind.
var ErrInvalidShapeKind = errors.New("physics: invalid shape kind")

// ErrMeshRequired is returned when a mesh-kind binding is configured without
// geometry to cook.
var ErrMeshRequired = errors.New("physics: mesh shape kind requires geometry")

// BindingState is the lifecycle state of a Binding.
type BindingState int

const (
	BindingUninitialized BindingState = iota
	BindingBuilt
	BindingStale
	BindingDestroyed
)

func (s BindingState) String() string {
	switch s {
	case BindingUninitialized:
		return "uninitialized"
	case BindingBuilt:
		return "built"
	case BindingStale:
		return "stale"
	case BindingDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// BindingConfig is the declared shape intent of a collider.
type BindingConfig struct {
	Kind     ShapeKind
	Dims     Dims
	Trigger  bool
	Material Material
	Layers   []string

	// Mesh and MeshMode are consulted only when Kind is ShapeMesh.
	Mesh     geometry.Source
	MeshMode geometry.CookMode
}

// Binding translates declared shape intent into a live backend handle and
// keeps the two consistent under mutation. Mesh kinds lease cooked shapes
// from the world's ShapeCache; primitives are built directly on the backend
// since they are cheap and not identity-shared.
//
// With no backend loaded the binding is inert: it holds no handle, stays
// Stale, and every mutation remains safe. That is a normal state for runtime
// roles without physics, not an error.
type Binding struct {
	backend Backend
	cache   *ShapeCache

	cfg    BindingConfig
	state  BindingState
	lease  *Lease
	handle Handle
}

// NewBinding creates an uninitialized binding. A nil backend produces an
// inert binding.
func NewBinding(backend Backend, cache *ShapeCache) *Binding {
	return &Binding{backend: backend, cache: cache}
}

// State returns the binding's lifecycle state.
func (b *Binding) State() BindingState {
	if b == nil {
		return BindingDestroyed
	}
	return b.state
}

// Handle returns the live backend handle, or nil when the binding holds none.
func (b *Binding) Handle() Handle {
	if b == nil {
		return nil
	}
	return b.handle
}

// Config returns the declared shape intent.
func (b *Binding) Config() BindingConfig {
	if b == nil {
		return BindingConfig{}
	}
	return b.cfg
}

// Stale reports whether the declared intent is ahead of the backend handle.
func (b *Binding) Stale() bool {
	return b != nil && b.state == BindingStale
}

// Attach initializes the binding from its first shape parameters and builds
// the backend handle. Invalid parameters are programmer errors and are
// rejected before any state changes.
func (b *Binding) Attach(cfg BindingConfig) error {
	if b == nil || b.state == BindingDestroyed {
		return nil
	}
	if !cfg.Kind.Valid() {
		return ErrInvalidShapeKind
	}
	if cfg.Kind == ShapeMesh {
		if cfg.Mesh == nil {
			return ErrMeshRequired
		}
		if !cfg.MeshMode.Valid() {
			return ErrInvalidShapeKind
		}
	}
	b.cfg = cfg
	b.state = BindingStale
	b.Rebuild()
	return nil
}

// SetKind changes the declared shape kind. Rejects unknown kinds.
func (b *Binding) SetKind(kind ShapeKind) error {
	if b == nil || b.state == BindingDestroyed {
		return nil
	}
	if !kind.Valid() {
		return ErrInvalidShapeKind
	}
	if kind == ShapeMesh && b.cfg.Mesh == nil {
		return ErrMeshRequired
	}
	if kind == b.cfg.Kind {
		return nil
	}
	b.cfg.Kind = kind
	b.markStale()
	return nil
}

// SetDims changes the shape dimensions.
func (b *Binding) SetDims(dims Dims) {
	if b == nil || b.state == BindingDestroyed {
		return
	}
	if dims == b.cfg.Dims {
		return
	}
	b.cfg.Dims = dims
	b.markStale()
}

// SetTrigger switches the shape between solid and trigger. The backend bakes
// the flag into the handle, so this is a shape-defining change.
func (b *Binding) SetTrigger(trigger bool) {
	if b == nil || b.state == BindingDestroyed {
		return
	}
	if trigger == b.cfg.Trigger {
		return
	}
	b.cfg.Trigger = trigger
	b.markStale()
}

// SetMesh replaces the geometry and cook mode behind a mesh-kind binding.
func (b *Binding) SetMesh(src geometry.Source, mode geometry.CookMode) error {
	if b == nil || b.state == BindingDestroyed {
		return nil
	}
	if src == nil {
		return ErrMeshRequired
	}
	if !mode.Valid() {
		return ErrInvalidShapeKind
	}
	if src == b.cfg.Mesh && mode == b.cfg.MeshMode {
		return nil
	}
	b.cfg.Mesh = src
	b.cfg.MeshMode = mode
	if b.cfg.Kind == ShapeMesh {
		b.markStale()
	}
	return nil
}

// SetMaterial updates surface properties on the live handle in place; no
// rebuild. Density changes on a live handle are not supported by the backend
// integration and are reported loudly instead of silently dropped.
func (b *Binding) SetMaterial(m Material) {
	if b == nil || b.state == BindingDestroyed {
		return
	}
	if m.Density != b.cfg.Material.Density && b.handle != nil {
		log.Printf("physics: binding: density change on a live handle is not supported; keeping density %v", b.cfg.Material.Density)
		m.Density = b.cfg.Material.Density
	}
	b.cfg.Material = m
	if b.backend != nil && b.handle != nil {
		b.backend.SetMaterial(b.handle, m.Friction, m.Restitution)
	}
}

// SetLayers updates the collision layer set on the live handle in place.
func (b *Binding) SetLayers(layers []string) {
	if b == nil || b.state == BindingDestroyed {
		return
	}
	b.cfg.Layers = append([]string(nil), layers...)
	if b.backend != nil && b.handle != nil {
		b.backend.SetLayers(b.handle, b.cfg.Layers)
	}
}

// Rebuild brings the backend handle in line with the declared intent. The
// previous handle is not torn down until the replacement is built, so the
// entity never observes a gap between old and new colliders. If the new
// build legitimately fails, the binding falls back to no handle at all,
// never to a dangling old one.
func (b *Binding) Rebuild() {
	if b == nil || b.state == BindingDestroyed || b.state == BindingUninitialized {
		return
	}
	if b.state == BindingBuilt {
		return
	}
	if b.backend == nil {
		// Physics is optional on some runtime roles. Collision is silently
		// disabled; the binding stays Stale so a late-loaded backend can
		// still build it.
		b.detach()
		log.Printf("physics: binding: backend unavailable, collision disabled for %s shape", b.cfg.Kind)
		return
	}

	var (
		newLease  *Lease
		newHandle Handle
	)
	if b.cfg.Kind == ShapeMesh {
		newLease = b.cache.Acquire(b.cfg.Mesh, b.cfg.MeshMode)
		if newLease == nil {
			b.detach()
			log.Printf("physics: binding: mesh cook unavailable, collision disabled")
			return
		}
		newHandle = newLease.Handle()
	} else {
		newHandle = b.backend.NewPrimitive(b.cfg.Kind, b.cfg.Dims)
		if newHandle == nil {
			b.detach()
			log.Printf("physics: binding: backend rejected %s primitive, collision disabled", b.cfg.Kind)
			return
		}
	}

	b.backend.SetTrigger(newHandle, b.cfg.Trigger)
	b.backend.SetMaterial(newHandle, b.cfg.Material.Friction, b.cfg.Material.Restitution)
	b.backend.SetLayers(newHandle, b.cfg.Layers)

	// Old handle goes away only after the replacement succeeded.
	b.detach()
	b.lease = newLease
	b.handle = newHandle
	b.state = BindingBuilt
}

// Destroy releases the lease and detaches the handle. Idempotent.
func (b *Binding) Destroy() {
	if b == nil || b.state == BindingDestroyed {
		return
	}
	b.detach()
	b.state = BindingDestroyed
}

func (b *Binding) markStale() {
	if b.state == BindingBuilt {
		b.state = BindingStale
	}
}

// detach releases whatever the binding currently holds. Leased handles go
// back to the cache; owned primitives are destroyed directly.
func (b *Binding) detach() {
	if b.lease != nil {
		b.lease.Release()
		b.lease = nil
	} else if b.handle != nil && b.backend != nil {
		b.backend.Destroy(b.handle)
	}
	b.handle = nil
	if b.state == BindingBuilt {
		b.state = BindingStale
	}
}
