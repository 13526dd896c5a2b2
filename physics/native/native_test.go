package native

import (
	"testing"

	"github.com/milk9111/worldsmith/physics"
)

var _ physics.Backend = (*Space)(nil)

var triVerts = []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}

func TestCookConvexValidation(t *testing.T) {
	cases := []struct {
		name      string
		positions []float32
		ok        bool
	}{
		{"valid_triangle", triVerts, true},
		{"empty", nil, false},
		{"too_few_vertices", []float32{0, 0, 0, 1, 0, 0}, false},
		{"ragged_buffer", []float32{0, 0, 0, 1, 0, 0, 0, 1}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewSpace()
			h := s.CookConvex(c.positions)
			if (h != nil) != c.ok {
				t.Fatalf("expected ok=%v, got handle=%v", c.ok, h)
			}
		})
	}
}

func TestCookTriangleMeshValidation(t *testing.T) {
	cases := []struct {
		name  string
		verts []float32
		idx16 []uint16
		idx32 []uint32
		ok    bool
	}{
		{"valid_16", triVerts, []uint16{0, 1, 2}, nil, true},
		{"valid_32", triVerts, nil, []uint32{0, 1, 2}, true},
		{"no_indices", triVerts, nil, nil, false},
		{"both_widths", triVerts, []uint16{0, 1, 2}, []uint32{0, 1, 2}, false},
		{"ragged_indices", triVerts, []uint16{0, 1}, nil, false},
		{"out_of_range", triVerts, []uint16{0, 1, 9}, nil, false},
		{"empty_positions", nil, []uint16{0, 1, 2}, nil, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewSpace()
			h := s.CookTriangleMesh(c.verts, c.idx16, c.idx32)
			if (h != nil) != c.ok {
				t.Fatalf("expected ok=%v, got handle=%v", c.ok, h)
			}
		})
	}
}

func TestCookedBounds(t *testing.T) {
	s := NewSpace()
	h := s.CookConvex([]float32{-1, -2, -3, 4, 5, 6, 0, 0, 0})
	sh := h.(*Shape)
	bb := sh.Bounds()
	if bb.Min != [3]float32{-1, -2, -3} || bb.Max != [3]float32{4, 5, 6} {
		t.Fatalf("unexpected bounds %+v", bb)
	}
}

func TestPrimitiveBounds(t *testing.T) {
	s := NewSpace()

	box := s.NewPrimitive(physics.ShapeBox, physics.Dims{Width: 2, Height: 4, Depth: 6}).(*Shape)
	if bb := box.Bounds(); bb.Min != [3]float32{-1, -2, -3} || bb.Max != [3]float32{1, 2, 3} {
		t.Fatalf("unexpected box bounds %+v", bb)
	}

	sphere := s.NewPrimitive(physics.ShapeSphere, physics.Dims{Radius: 2}).(*Shape)
	if bb := sphere.Bounds(); bb.Min != [3]float32{-2, -2, -2} {
		t.Fatalf("unexpected sphere bounds %+v", bb)
	}

	if s.NewPrimitive(physics.ShapeMesh, physics.Dims{}) != nil {
		t.Fatalf("mesh kind must go through the cook path, not NewPrimitive")
	}
}

func collect(s *Space) *[]ContactEvent {
	events := &[]ContactEvent{}
	s.OnContact(func(ev ContactEvent) {
		*events = append(*events, ev)
	})
	return events
}

func TestOverlapBeginEndEvents(t *testing.T) {
	s := NewSpace()
	s.SetGravity(0, 0, 0)
	s.SetGroundPlane(false)
	events := collect(s)

	a := s.NewBody()
	shA := s.NewPrimitive(physics.ShapeBox, physics.Dims{Width: 1, Height: 1, Depth: 1})
	s.Attach(shA, a)

	b := s.NewBody()
	shB := s.NewPrimitive(physics.ShapeBox, physics.Dims{Width: 1, Height: 1, Depth: 1})
	s.Attach(shB, b)

	a.SetPosition(0, 0, 0)
	b.SetPosition(5, 0, 0)
	s.Step(1.0 / 60)
	if len(*events) != 0 {
		t.Fatalf("separated shapes must not emit contacts, got %v", *events)
	}

	b.SetPosition(0.5, 0, 0)
	s.Step(1.0 / 60)
	if len(*events) != 1 || (*events)[0].Kind != ContactBegin {
		t.Fatalf("expected one begin event, got %v", *events)
	}

	s.Step(1.0 / 60)
	if len(*events) != 1 {
		t.Fatalf("sustained overlap must not re-emit begin, got %v", *events)
	}

	b.SetPosition(5, 0, 0)
	s.Step(1.0 / 60)
	if len(*events) != 2 || (*events)[1].Kind != ContactEnd {
		t.Fatalf("expected an end event on separation, got %v", *events)
	}
}

func TestTriggerFlagOnEvents(t *testing.T) {
	s := NewSpace()
	s.SetGravity(0, 0, 0)
	s.SetGroundPlane(false)
	events := collect(s)

	a := s.NewBody()
	solid := s.NewPrimitive(physics.ShapeBox, physics.Dims{Width: 1, Height: 1, Depth: 1})
	s.Attach(solid, a)

	b := s.NewBody()
	zone := s.NewPrimitive(physics.ShapeBox, physics.Dims{Width: 1, Height: 1, Depth: 1})
	s.SetTrigger(zone, true)
	s.Attach(zone, b)

	s.Step(1.0 / 60)
	if len(*events) != 1 || !(*events)[0].Trigger {
		t.Fatalf("expected a trigger-flagged begin event, got %v", *events)
	}
}

func TestLayerFiltering(t *testing.T) {
	s := NewSpace()
	s.SetGravity(0, 0, 0)
	s.SetGroundPlane(false)
	events := collect(s)

	a := s.NewBody()
	shA := s.NewPrimitive(physics.ShapeBox, physics.Dims{Width: 1, Height: 1, Depth: 1})
	s.SetLayers(shA, []string{"players"})
	s.Attach(shA, a)

	b := s.NewBody()
	shB := s.NewPrimitive(physics.ShapeBox, physics.Dims{Width: 1, Height: 1, Depth: 1})
	s.SetLayers(shB, []string{"projectiles"})
	s.Attach(shB, b)

	s.Step(1.0 / 60)
	if len(*events) != 0 {
		t.Fatalf("disjoint layers must not collide, got %v", *events)
	}

	s.SetLayers(shB, []string{"projectiles", "players"})
	s.Step(1.0 / 60)
	if len(*events) != 1 {
		t.Fatalf("shared layer must collide, got %v", *events)
	}
}

func TestDestroyEmitsEndAndIsIdempotent(t *testing.T) {
	s := NewSpace()
	s.SetGravity(0, 0, 0)
	s.SetGroundPlane(false)
	events := collect(s)

	a := s.NewBody()
	shA := s.NewPrimitive(physics.ShapeBox, physics.Dims{Width: 1, Height: 1, Depth: 1})
	s.Attach(shA, a)
	b := s.NewBody()
	shB := s.NewPrimitive(physics.ShapeBox, physics.Dims{Width: 1, Height: 1, Depth: 1})
	s.Attach(shB, b)

	s.Step(1.0 / 60)
	if len(*events) != 1 {
		t.Fatalf("expected begin, got %v", *events)
	}

	s.Destroy(shB)
	s.Destroy(shB) // no-op
	s.Step(1.0 / 60)
	if len(*events) != 2 || (*events)[1].Kind != ContactEnd {
		t.Fatalf("expected end event after destroy, got %v", *events)
	}
	if !shB.(*Shape).Destroyed() {
		t.Fatalf("expected destroyed shape")
	}
}

func TestSharedShapeAcrossBodies(t *testing.T) {
	s := NewSpace()
	s.SetGravity(0, 0, 0)
	s.SetGroundPlane(false)
	events := collect(s)

	shared := s.CookConvex([]float32{-0.5, -0.5, -0.5, 0.5, 0.5, 0.5, 0, 0, 0})
	a := s.NewBody()
	b := s.NewBody()
	s.Attach(shared, a)
	s.Attach(shared, b)
	s.Attach(shared, b) // duplicate pairing is a no-op
	a.SetPosition(0, 0, 0)
	b.SetPosition(0.25, 0, 0)

	s.Step(1.0 / 60)
	if len(*events) != 1 || (*events)[0].Kind != ContactBegin {
		t.Fatalf("two bodies sharing one cooked shape should overlap once, got %v", *events)
	}
	ev := (*events)[0]
	if ev.A != shared.(*Shape) || ev.B != shared.(*Shape) {
		t.Fatalf("both sides of the pair should reference the shared shape")
	}
	if ev.BodyA == ev.BodyB {
		t.Fatalf("event bodies must be distinct")
	}

	s.Detach(shared, b)
	s.Step(1.0 / 60)
	if len(*events) != 2 || (*events)[1].Kind != ContactEnd {
		t.Fatalf("detaching one pairing should end the overlap, got %v", *events)
	}
	if shared.(*Shape).Destroyed() {
		t.Fatalf("detach must not destroy the shared shape")
	}
}

func TestIntegrationAndGroundPlane(t *testing.T) {
	s := NewSpace()
	s.SetGravity(0, -10, 0)

	body := s.NewBody()
	sh := s.NewPrimitive(physics.ShapeSphere, physics.Dims{Radius: 1})
	s.Attach(sh, body)
	body.SetPosition(0, 10, 0)

	for i := 0; i < 600; i++ {
		s.Step(1.0 / 60)
	}

	_, y, _ := body.Position()
	if y != 1 {
		t.Fatalf("sphere of radius 1 should rest at y=1, got %v", y)
	}
	_, vy, _ := body.Velocity()
	if vy < 0 {
		t.Fatalf("downward velocity should be cleared at rest, got %v", vy)
	}
}

func TestStaticBodyDoesNotIntegrate(t *testing.T) {
	s := NewSpace()
	body := s.NewStaticBody()
	sh := s.NewPrimitive(physics.ShapeBox, physics.Dims{Width: 1, Height: 1, Depth: 1})
	s.Attach(sh, body)
	body.SetPosition(0, 5, 0)

	s.Step(1.0)

	_, y, _ := body.Position()
	if y != 5 {
		t.Fatalf("static body moved to y=%v", y)
	}
}
