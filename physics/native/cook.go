package native

import (
	"github.com/milk9111/worldsmith/physics"
)

// CookConvex pre-processes a packed position buffer into a convex collision
// shape. The buffer must hold at least three xyz vertices. Returns nil when
// the input is malformed; no partial state is retained on that path.
func (s *Space) CookConvex(positions []float32) physics.Handle {
	if s == nil {
		return nil
	}
	if len(positions) < 9 || len(positions)%3 != 0 {
		return nil
	}

	bounds := emptyAABB()
	for i := 0; i+2 < len(positions); i += 3 {
		bounds.extend(positions[i], positions[i+1], positions[i+2])
	}

	verts := append([]float32(nil), positions...)
	sh := &Shape{
		kind:  physics.ShapeMesh,
		verts: verts,
		local: bounds,
	}
	return s.addShape(sh)
}

// CookTriangleMesh pre-processes an indexed triangle soup. Exactly one index
// slice must be populated, 16- or 32-bit wide; 8-bit input is widened by the
// caller before it reaches the backend. Returns nil for malformed input.
func (s *Space) CookTriangleMesh(positions []float32, indices16 []uint16, indices32 []uint32) physics.Handle {
	if s == nil {
		return nil
	}
	if len(positions) < 9 || len(positions)%3 != 0 {
		return nil
	}
	if (indices16 == nil) == (indices32 == nil) {
		return nil
	}

	vertexCount := len(positions) / 3
	indexCount := len(indices16) + len(indices32)
	if indexCount == 0 || indexCount%3 != 0 {
		return nil
	}
	for _, idx := range indices16 {
		if int(idx) >= vertexCount {
			return nil
		}
	}
	for _, idx := range indices32 {
		if int(idx) >= vertexCount {
			return nil
		}
	}

	bounds := emptyAABB()
	for i := 0; i+2 < len(positions); i += 3 {
		bounds.extend(positions[i], positions[i+1], positions[i+2])
	}

	sh := &Shape{
		kind:  physics.ShapeMesh,
		verts: append([]float32(nil), positions...),
		idx16: append([]uint16(nil), indices16...),
		idx32: append([]uint32(nil), indices32...),
		local: bounds,
	}
	return s.addShape(sh)
}

// NewPrimitive builds a primitive shape directly, no cooking involved.
// Nonpositive dimensions fall back to unit defaults rather than failing;
// primitives are cheap and a degenerate size is a data bug, not a reason to
// drop collision.
func (s *Space) NewPrimitive(kind physics.ShapeKind, dims physics.Dims) physics.Handle {
	if s == nil || !kind.Valid() || kind == physics.ShapeMesh {
		return nil
	}

	sh := &Shape{kind: kind, dims: dims}
	switch kind {
	case physics.ShapeBox:
		w, h, d := dims.Width, dims.Height, dims.Depth
		if w <= 0 {
			w = 1
		}
		if h <= 0 {
			h = 1
		}
		if d <= 0 {
			d = 1
		}
		sh.local = AABB{
			Min: [3]float32{float32(-w / 2), float32(-h / 2), float32(-d / 2)},
			Max: [3]float32{float32(w / 2), float32(h / 2), float32(d / 2)},
		}
	case physics.ShapeSphere:
		r := dims.Radius
		if r <= 0 {
			r = 0.5
		}
		fr := float32(r)
		sh.local = AABB{
			Min: [3]float32{-fr, -fr, -fr},
			Max: [3]float32{fr, fr, fr},
		}
	case physics.ShapeCapsule:
		r := dims.Radius
		if r <= 0 {
			r = 0.5
		}
		h := dims.Height
		if h < 2*r {
			h = 2 * r
		}
		fr := float32(r)
		fh := float32(h / 2)
		sh.local = AABB{
			Min: [3]float32{-fr, -fh, -fr},
			Max: [3]float32{fr, fh, fr},
		}
	}
	return s.addShape(sh)
}
