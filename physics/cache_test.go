package physics

import (
	"testing"

	"github.com/milk9111/worldsmith/geometry"
)

type fakeHandle struct {
	id          int
	destroyed   bool
	trigger     bool
	friction    float64
	restitution float64
	layers      []string
}

type fakeBackend struct {
	nextID   int
	failCook bool
	failNew  bool

	cooks    int
	news     int
	destroys int
	events   []string

	lastIdx16 []uint16
	lastIdx32 []uint32
}

func (f *fakeBackend) newHandle() *fakeHandle {
	f.nextID++
	return &fakeHandle{id: f.nextID}
}

func (f *fakeBackend) CookConvex(positions []float32) Handle {
	if f.failCook || len(positions) == 0 {
		return nil
	}
	f.cooks++
	f.events = append(f.events, "cook")
	return f.newHandle()
}

func (f *fakeBackend) CookTriangleMesh(positions []float32, indices16 []uint16, indices32 []uint32) Handle {
	if f.failCook || len(positions) == 0 || (indices16 == nil && indices32 == nil) {
		return nil
	}
	f.cooks++
	f.events = append(f.events, "cook")
	f.lastIdx16 = indices16
	f.lastIdx32 = indices32
	return f.newHandle()
}

func (f *fakeBackend) NewPrimitive(kind ShapeKind, dims Dims) Handle {
	if f.failNew {
		return nil
	}
	f.news++
	f.events = append(f.events, "new")
	return f.newHandle()
}

func (f *fakeBackend) Destroy(h Handle) {
	f.destroys++
	f.events = append(f.events, "destroy")
	if fh, ok := h.(*fakeHandle); ok {
		fh.destroyed = true
	}
}

func (f *fakeBackend) SetTrigger(h Handle, trigger bool) {
	if fh, ok := h.(*fakeHandle); ok {
		fh.trigger = trigger
	}
}

func (f *fakeBackend) SetMaterial(h Handle, friction, restitution float64) {
	if fh, ok := h.(*fakeHandle); ok {
		fh.friction = friction
		fh.restitution = restitution
	}
}

func (f *fakeBackend) SetLayers(h Handle, layers []string) {
	if fh, ok := h.(*fakeHandle); ok {
		fh.layers = append([]string(nil), layers...)
	}
}

func triangleMesh() *geometry.Mesh {
	return geometry.NewMesh(
		&geometry.Attribute{Data: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, ItemSize: 3},
		&geometry.IndexBuffer{U16: []uint16{0, 1, 2}},
	)
}

func TestShapeCacheReuse(t *testing.T) {
	backend := &fakeBackend{}
	cache := NewShapeCache(backend)
	mesh := triangleMesh()

	first := cache.Acquire(mesh, geometry.Convex)
	second := cache.Acquire(mesh, geometry.Convex)
	if first == nil || second == nil {
		t.Fatalf("expected leases for a valid mesh")
	}
	if backend.cooks != 1 {
		t.Fatalf("expected one cook for two acquires, got %d", backend.cooks)
	}
	if first.Handle() != second.Handle() {
		t.Fatalf("expected both leases to share one handle")
	}

	first.Release()
	if backend.destroys != 0 {
		t.Fatalf("handle destroyed with an outstanding lease")
	}
	second.Release()
	if backend.destroys != 1 {
		t.Fatalf("expected exactly one destroy after last release, got %d", backend.destroys)
	}
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache after last release, got %d records", cache.Len())
	}
}

func TestShapeCacheNoPrematureDestruction(t *testing.T) {
	backend := &fakeBackend{}
	cache := NewShapeCache(backend)
	mesh := triangleMesh()

	const n = 5
	leases := make([]*Lease, 0, n)
	for i := 0; i < n; i++ {
		leases = append(leases, cache.Acquire(mesh, geometry.TriangleMesh))
	}
	for i := 0; i < n-1; i++ {
		leases[i].Release()
		if backend.destroys != 0 {
			t.Fatalf("handle destroyed after %d of %d releases", i+1, n)
		}
	}
	leases[n-1].Release()
	if backend.destroys != 1 {
		t.Fatalf("expected one destroy after the final release, got %d", backend.destroys)
	}
}

func TestShapeCacheIdempotentRelease(t *testing.T) {
	backend := &fakeBackend{}
	cache := NewShapeCache(backend)
	mesh := triangleMesh()

	a := cache.Acquire(mesh, geometry.Convex)
	b := cache.Acquire(mesh, geometry.Convex)

	a.Release()
	a.Release() // must not double-decrement
	if backend.destroys != 0 {
		t.Fatalf("double release destroyed a handle still leased by b")
	}
	if b.Handle() == nil {
		t.Fatalf("b's lease should still be live")
	}

	b.Release()
	b.Release()
	if backend.destroys != 1 {
		t.Fatalf("expected one destroy, got %d", backend.destroys)
	}
}

func TestShapeCacheUnavailableBackend(t *testing.T) {
	cache := NewShapeCache(nil)
	mesh := triangleMesh()

	for i := 0; i < 3; i++ {
		if lease := cache.Acquire(mesh, geometry.Convex); lease != nil {
			t.Fatalf("expected nil lease with no backend loaded")
		}
	}
	if cache.Len() != 0 {
		t.Fatalf("unavailable acquires must not create cache records, got %d", cache.Len())
	}
}

func TestShapeCacheCookFailureLeavesCacheUnchanged(t *testing.T) {
	backend := &fakeBackend{failCook: true}
	cache := NewShapeCache(backend)
	mesh := triangleMesh()

	if lease := cache.Acquire(mesh, geometry.TriangleMesh); lease != nil {
		t.Fatalf("expected nil lease on cook failure")
	}
	if cache.Len() != 0 {
		t.Fatalf("cook failure must not insert a record, got %d", cache.Len())
	}

	// Backend recovers: the same key cooks cleanly afterwards.
	backend.failCook = false
	if lease := cache.Acquire(mesh, geometry.TriangleMesh); lease == nil {
		t.Fatalf("expected successful cook after backend recovery")
	}
}

func TestShapeCacheIndexNormalization(t *testing.T) {
	t.Run("widen_8_bit", func(t *testing.T) {
		backend := &fakeBackend{}
		cache := NewShapeCache(backend)
		mesh := geometry.NewMesh(
			&geometry.Attribute{Data: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, ItemSize: 3},
			&geometry.IndexBuffer{U8: []uint8{0, 1, 2}},
		)

		lease := cache.Acquire(mesh, geometry.TriangleMesh)
		if lease == nil {
			t.Fatalf("expected lease")
		}
		if backend.lastIdx32 != nil {
			t.Fatalf("8-bit indices must be widened to 16-bit, backend saw 32-bit")
		}
		want := []uint16{0, 1, 2}
		if len(backend.lastIdx16) != len(want) {
			t.Fatalf("expected %v, got %v", want, backend.lastIdx16)
		}
		for i := range want {
			if backend.lastIdx16[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, backend.lastIdx16)
			}
		}
	})

	t.Run("16_bit_passthrough", func(t *testing.T) {
		backend := &fakeBackend{}
		cache := NewShapeCache(backend)
		idx := []uint16{0, 1, 2}
		mesh := geometry.NewMesh(
			&geometry.Attribute{Data: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, ItemSize: 3},
			&geometry.IndexBuffer{U16: idx},
		)

		if cache.Acquire(mesh, geometry.TriangleMesh) == nil {
			t.Fatalf("expected lease")
		}
		if len(backend.lastIdx16) != 3 || &backend.lastIdx16[0] != &idx[0] {
			t.Fatalf("16-bit indices must pass through unchanged")
		}
	})
}

func TestShapeCacheIsIdentityKeyed(t *testing.T) {
	backend := &fakeBackend{}
	cache := NewShapeCache(backend)

	attr := &geometry.Attribute{Data: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, ItemSize: 3}
	a := geometry.NewMesh(attr, nil)
	b := geometry.NewMesh(attr, nil)

	la := cache.Acquire(a, geometry.Convex)
	lb := cache.Acquire(b, geometry.Convex)
	if la == nil || lb == nil {
		t.Fatalf("expected leases")
	}
	if backend.cooks != 2 {
		t.Fatalf("identical buffers under distinct identities must cook separately, got %d cooks", backend.cooks)
	}
	if la.Handle() == lb.Handle() {
		t.Fatalf("distinct identities must not share a handle")
	}
}

func TestShapeCacheRejectsDegenerateIndexCount(t *testing.T) {
	backend := &fakeBackend{}
	cache := NewShapeCache(backend)

	mesh := geometry.NewMesh(
		&geometry.Attribute{Data: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, ItemSize: 3},
		&geometry.IndexBuffer{U16: []uint16{0, 1}},
	)

	if lease := cache.Acquire(mesh, geometry.TriangleMesh); lease != nil {
		t.Fatalf("expected nil lease for a non-triangle index count")
	}
	if backend.cooks != 0 {
		t.Fatalf("degenerate buffer should be rejected before the cooker, got %d cooks", backend.cooks)
	}
	if cache.Len() != 0 {
		t.Fatalf("rejected cook must not create cache records, got %d", cache.Len())
	}
}
