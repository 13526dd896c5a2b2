package native

import (
	"log"

	"github.com/milk9111/worldsmith/physics"
)

// ContactKind distinguishes begin and end overlap events.
type ContactKind int

const (
	ContactBegin ContactKind = iota
	ContactEnd
)

// ContactEvent is emitted during Step whenever two attachments start or stop
// overlapping. Trigger is set when either shape is a trigger.
type ContactEvent struct {
	A, B         *Shape
	BodyA, BodyB *Body
	Kind         ContactKind
	Trigger      bool
}

// attachment is one (shape, body) pairing: the unit the broadphase works on.
// A shared cooked shape attached to N bodies yields N attachments.
type attachment struct {
	id    uint64
	shape *Shape
	body  *Body
}

type pairKey struct {
	a, b uint64
}

type pairAtts struct {
	a, b attachment
}

// Space owns bodies, shapes, and their attachments, and advances the
// simulation. It implements physics.Backend. The contact model is
// broadphase-only: attachments report begin/end overlap of their bounding
// volumes, and solid (non-trigger) response is limited to the ground plane.
// There is no impulse solver here.
//
// A Space belongs to one world instance and must only be touched from that
// world's simulation goroutine.
type Space struct {
	gravity     [3]float64
	groundPlane bool

	nextShapeID  uint64
	nextAttachID uint64
	bodies       []*Body
	shapes       []*Shape
	attachments  []attachment

	onContact func(ContactEvent)
	overlaps  map[pairKey]pairAtts
}

// NewSpace creates an empty space with gravity pulling down the y axis.
func NewSpace() *Space {
	return &Space{
		gravity:     [3]float64{0, -9.81, 0},
		groundPlane: true,
		overlaps:    make(map[pairKey]pairAtts),
	}
}

// SetGravity replaces the global gravity vector.
func (s *Space) SetGravity(x, y, z float64) {
	if s == nil {
		return
	}
	s.gravity = [3]float64{x, y, z}
}

// SetGroundPlane toggles the y=0 ground plane clamp.
func (s *Space) SetGroundPlane(enabled bool) {
	if s == nil {
		return
	}
	s.groundPlane = enabled
}

// OnContact registers the single contact observer. Events fire from inside
// Step, after positions for the tick are resolved.
func (s *Space) OnContact(fn func(ContactEvent)) {
	if s == nil {
		return
	}
	s.onContact = fn
}

// NewBody creates a dynamic body.
func (s *Space) NewBody() *Body {
	if s == nil {
		return nil
	}
	b := &Body{gravity: true}
	s.bodies = append(s.bodies, b)
	return b
}

// NewStaticBody creates a body that never integrates.
func (s *Space) NewStaticBody() *Body {
	if s == nil {
		return nil
	}
	b := &Body{static: true}
	s.bodies = append(s.bodies, b)
	return b
}

// RemoveBody detaches the body's shapes and drops it from the space.
func (s *Space) RemoveBody(b *Body) {
	if s == nil || b == nil {
		return
	}
	for _, sh := range append([]*Shape(nil), b.shapes...) {
		s.Detach(sh, b)
	}
	for i, other := range s.bodies {
		if other == b {
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			break
		}
	}
}

// Attach enters a (shape, body) pairing into the broadphase. Attaching the
// same pairing twice is a no-op.
func (s *Space) Attach(h physics.Handle, b *Body) {
	sh := s.shape(h)
	if sh == nil || b == nil || sh.destroyed {
		return
	}
	for _, att := range s.attachments {
		if att.shape == sh && att.body == b {
			return
		}
	}
	s.nextAttachID++
	s.attachments = append(s.attachments, attachment{id: s.nextAttachID, shape: sh, body: b})
	b.shapes = append(b.shapes, sh)
}

// Detach removes one (shape, body) pairing. Pairs the attachment
// participated in emit end events on the next Step.
func (s *Space) Detach(h physics.Handle, b *Body) {
	sh := s.shape(h)
	if sh == nil || b == nil {
		return
	}
	for i, att := range s.attachments {
		if att.shape == sh && att.body == b {
			s.attachments = append(s.attachments[:i], s.attachments[i+1:]...)
			break
		}
	}
	for i, other := range b.shapes {
		if other == sh {
			b.shapes = append(b.shapes[:i], b.shapes[i+1:]...)
			break
		}
	}
}

// Step advances the simulation by dt seconds: integrate velocities, clamp to
// the ground plane, then diff broadphase overlaps against the previous tick
// and emit begin/end contact events.
func (s *Space) Step(dt float64) {
	if s == nil || dt <= 0 {
		return
	}
	s.integrate(dt)
	s.emitContacts()
}

func (s *Space) integrate(dt float64) {
	for _, b := range s.bodies {
		if b.static {
			continue
		}
		if b.gravity {
			b.velocity[0] += s.gravity[0] * dt
			b.velocity[1] += s.gravity[1] * dt
			b.velocity[2] += s.gravity[2] * dt
		}
		b.position[0] += b.velocity[0] * dt
		b.position[1] += b.velocity[1] * dt
		b.position[2] += b.velocity[2] * dt

		if s.groundPlane {
			s.clampToGround(b)
		}
	}
}

// clampToGround keeps a body's lowest solid shape at or above y=0.
func (s *Space) clampToGround(b *Body) {
	lowest := 0.0
	found := false
	for _, sh := range b.shapes {
		if sh.trigger || sh.destroyed {
			continue
		}
		bottom := b.position[1] + float64(sh.local.Min[1])
		if !found || bottom < lowest {
			lowest = bottom
			found = true
		}
	}
	if !found || lowest >= 0 {
		return
	}
	b.position[1] -= lowest
	if b.velocity[1] < 0 {
		b.velocity[1] = 0
	}
}

func attWorldAABB(att attachment) (min, max [3]float64, ok bool) {
	if att.shape == nil || att.shape.destroyed || att.body == nil {
		return min, max, false
	}
	px, py, pz := att.body.Position()
	local := att.shape.local
	min = [3]float64{float64(local.Min[0]) + px, float64(local.Min[1]) + py, float64(local.Min[2]) + pz}
	max = [3]float64{float64(local.Max[0]) + px, float64(local.Max[1]) + py, float64(local.Max[2]) + pz}
	return min, max, true
}

func (s *Space) emitContacts() {
	current := make(map[pairKey]pairAtts, len(s.overlaps))
	for i := 0; i < len(s.attachments); i++ {
		a := s.attachments[i]
		minA, maxA, ok := attWorldAABB(a)
		if !ok {
			continue
		}
		for j := i + 1; j < len(s.attachments); j++ {
			b := s.attachments[j]
			if b.body == a.body {
				continue
			}
			if !a.shape.collidesWith(b.shape) {
				continue
			}
			minB, maxB, ok := attWorldAABB(b)
			if !ok {
				continue
			}
			if !aabbOverlap(minA, maxA, minB, maxB) {
				continue
			}
			current[makePairKey(a, b)] = pairAtts{a: a, b: b}
		}
	}

	// Ends before begins: a handle swap retires one attachment pair and
	// creates another for the same physical contact in a single step, and
	// observers must net out still-touching.
	for key, pair := range s.overlaps {
		if _, still := current[key]; !still {
			s.emit(pair, ContactEnd)
		}
	}
	for key, pair := range current {
		if _, existed := s.overlaps[key]; !existed {
			s.emit(pair, ContactBegin)
		}
	}
	s.overlaps = current
}

func (s *Space) emit(pair pairAtts, kind ContactKind) {
	if s.onContact == nil {
		return
	}
	s.onContact(ContactEvent{
		A:       pair.a.shape,
		B:       pair.b.shape,
		BodyA:   pair.a.body,
		BodyB:   pair.b.body,
		Kind:    kind,
		Trigger: pair.a.shape.trigger || pair.b.shape.trigger,
	})
}

func makePairKey(a, b attachment) pairKey {
	if a.id < b.id {
		return pairKey{a: a.id, b: b.id}
	}
	return pairKey{a: b.id, b: a.id}
}

func (s *Space) shape(h physics.Handle) *Shape {
	if s == nil || h == nil {
		return nil
	}
	sh, ok := h.(*Shape)
	if !ok {
		log.Printf("native: foreign shape handle %T ignored", h)
		return nil
	}
	return sh
}

func (s *Space) addShape(sh *Shape) *Shape {
	s.nextShapeID++
	sh.id = s.nextShapeID
	s.shapes = append(s.shapes, sh)
	return sh
}

// Destroy releases a shape: all of its attachments leave the broadphase and
// the handle must not be reused. Destroying twice is a no-op.
func (s *Space) Destroy(h physics.Handle) {
	sh := s.shape(h)
	if sh == nil || sh.destroyed {
		return
	}
	for _, att := range append([]attachment(nil), s.attachments...) {
		if att.shape == sh {
			s.Detach(sh, att.body)
		}
	}
	sh.destroyed = true
	sh.verts = nil
	sh.idx16 = nil
	sh.idx32 = nil
	for i, other := range s.shapes {
		if other == sh {
			s.shapes = append(s.shapes[:i], s.shapes[i+1:]...)
			break
		}
	}
	// Overlaps involving the shape resolve to end events next Step.
}

// SetTrigger flips the shape between solid and trigger. On a shared cooked
// handle this applies to every attachment.
func (s *Space) SetTrigger(h physics.Handle, trigger bool) {
	if sh := s.shape(h); sh != nil && !sh.destroyed {
		sh.trigger = trigger
	}
}

// SetMaterial updates surface properties in place.
func (s *Space) SetMaterial(h physics.Handle, friction, restitution float64) {
	if sh := s.shape(h); sh != nil && !sh.destroyed {
		sh.friction = friction
		sh.restitution = restitution
	}
}

// SetLayers replaces the shape's collision layer set. Shapes collide when
// either declares no layers or the sets intersect.
func (s *Space) SetLayers(h physics.Handle, layers []string) {
	sh := s.shape(h)
	if sh == nil || sh.destroyed {
		return
	}
	if len(layers) == 0 {
		sh.layers = nil
		return
	}
	set := make(map[string]struct{}, len(layers))
	for _, l := range layers {
		set[l] = struct{}{}
	}
	sh.layers = set
}
