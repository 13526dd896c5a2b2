package geometry

import "github.com/google/uuid"

// Source is any renderable geometry the physics layer can cook. Triangle
// mesh cooking additionally requires IndexBuffer to be non-nil.
type Source interface {
	// ID is the stable identity of this geometry instance. Two sources with
	// identical buffers but different identities are distinct.
	ID() string
	PositionAttribute() *Attribute
	IndexBuffer() *IndexBuffer
}

// Mesh is the standard Source implementation. Identity is assigned at
// construction and never derived from buffer content.
type Mesh struct {
	id        string
	positions *Attribute
	index     *IndexBuffer
}

// NewMesh creates a mesh with a fresh identity.
func NewMesh(positions *Attribute, index *IndexBuffer) *Mesh {
	return &Mesh{
		id:        uuid.NewString(),
		positions: positions,
		index:     index,
	}
}

func (m *Mesh) ID() string {
	if m == nil {
		return ""
	}
	return m.id
}

func (m *Mesh) PositionAttribute() *Attribute {
	if m == nil {
		return nil
	}
	return m.positions
}

func (m *Mesh) IndexBuffer() *IndexBuffer {
	if m == nil {
		return nil
	}
	return m.index
}
