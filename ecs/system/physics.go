package system

import (
	"log"

	"github.com/milk9111/worldsmith/ecs"
	"github.com/milk9111/worldsmith/ecs/component"
	"github.com/milk9111/worldsmith/physics"
	"github.com/milk9111/worldsmith/physics/native"
)

// PhysicsSystem owns the backend space and every entity's binding and body.
// Each fixed tick it reconciles collider intent against live bindings, pushes
// transforms that changed since the last tick, steps the space, pulls
// resolved positions back, and fans contact events out to contact sets and
// the world's event bus.
//
// Constructed with a nil space the system is inert: runtime roles without
// physics keep scripting and replication, collision is simply absent.
type PhysicsSystem struct {
	space   *native.Space
	cache   *physics.ShapeCache
	fixedDt float64

	bodies   map[ecs.Entity]*native.Body
	bindings map[ecs.Entity]*physics.Binding
	attached map[ecs.Entity]physics.Handle
	byBody   map[*native.Body]ecs.Entity
	dirty    map[ecs.Entity]struct{}
	lastErr  map[ecs.Entity]string
	pending  []native.ContactEvent

	// touching mirrors the live contact pairs (value = trigger pair) so a
	// destroyed entity can be synthesized out of its partners' contact sets;
	// the backend's own end event arrives after the body is already gone.
	touching map[ecs.Entity]map[ecs.Entity]bool

	warnedOff bool
}

// NewPhysicsSystem wires the system to its space and shape cache. fixedDt is
// the fixed simulation step in seconds.
func NewPhysicsSystem(space *native.Space, cache *physics.ShapeCache, fixedDt float64) *PhysicsSystem {
	if fixedDt <= 0 {
		fixedDt = 1.0 / 60
	}
	ps := &PhysicsSystem{
		space:    space,
		cache:    cache,
		fixedDt:  fixedDt,
		bodies:   make(map[ecs.Entity]*native.Body),
		bindings: make(map[ecs.Entity]*physics.Binding),
		attached: make(map[ecs.Entity]physics.Handle),
		byBody:   make(map[*native.Body]ecs.Entity),
		dirty:    make(map[ecs.Entity]struct{}),
		lastErr:  make(map[ecs.Entity]string),
		touching: make(map[ecs.Entity]map[ecs.Entity]bool),
	}
	if space != nil {
		space.OnContact(func(ev native.ContactEvent) {
			ps.pending = append(ps.pending, ev)
		})
	}
	return ps
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	if ps.space == nil {
		if !ps.warnedOff {
			log.Printf("physics: no backend loaded, collision disabled for this role")
			ps.warnedOff = true
		}
		return
	}

	ps.cleanup(w)
	ps.ensure(w)
	ps.reconcile(w)
	ps.push(w)
	ps.space.Step(ps.fixedDt)
	ps.pull(w)
	ps.flushContacts(w)
}

// cleanup tears down bindings and bodies whose entities died.
func (ps *PhysicsSystem) cleanup(w *ecs.World) {
	for e := range ps.bindings {
		if !w.IsAlive(e) {
			ps.teardown(w, e)
		}
	}
}

func (ps *PhysicsSystem) teardown(w *ecs.World, e ecs.Entity) {
	for partner, trigger := range ps.touching[e] {
		delete(ps.touching[partner], e)
		if cs, ok := ecs.Get(w, partner, component.ContactStateComponent); ok && cs.Touching != nil {
			cs.Touching.HandleExit(uint64(e))
		}
		w.Events().Publish(ecs.ContactEvent{Kind: eventKind(trigger, false), Entity: partner, Other: e})
	}
	delete(ps.touching, e)

	body := ps.bodies[e]
	if h := ps.attached[e]; h != nil && body != nil {
		ps.space.Detach(h, body)
	}
	if b := ps.bindings[e]; b != nil {
		b.Destroy()
	}
	if body != nil {
		ps.space.RemoveBody(body)
		delete(ps.byBody, body)
	}
	delete(ps.bodies, e)
	delete(ps.bindings, e)
	delete(ps.attached, e)
	delete(ps.dirty, e)
	delete(ps.lastErr, e)
}

// ensure builds a binding and body for every entity that gained a collider.
func (ps *PhysicsSystem) ensure(w *ecs.World) {
	for _, e := range w.Query(component.TransformComponent.ID(), component.ColliderComponent.ID()) {
		if _, ok := ps.bindings[e]; ok {
			continue
		}
		tr, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok || tr.Position == nil {
			continue
		}
		col, _ := ecs.Get(w, e, component.ColliderComponent)

		binding := physics.NewBinding(ps.space, ps.cache)
		if err := binding.Attach(colliderConfig(col)); err != nil {
			ps.logOnce(e, err.Error())
		} else {
			delete(ps.lastErr, e)
		}

		var body *native.Body
		if col.Static {
			body = ps.space.NewStaticBody()
		} else {
			body = ps.space.NewBody()
		}
		body.SetPosition(tr.Position.Components())
		if h := binding.Handle(); h != nil {
			ps.space.Attach(h, body)
			ps.attached[e] = h
		}

		ps.bindings[e] = binding
		ps.bodies[e] = body
		ps.byBody[body] = e

		// Any later transform write from game logic marks the entity dirty
		// for the next fixed tick.
		ent := e
		tr.Position.OnChange(func() {
			ps.dirty[ent] = struct{}{}
		})
		ps.dirty[e] = struct{}{}

		col.Binding = binding
		col.Material = binding.Config().Material
		_ = ecs.Add(w, e, component.ColliderComponent, col)
		if !ecs.Has(w, e, component.ContactStateComponent) {
			_ = ecs.Add(w, e, component.ContactStateComponent, component.ContactState{
				Touching: physics.NewContactSet(),
			})
		}
	}
}

// reconcile folds collider field changes into each binding and rebuilds the
// ones that went stale, swapping the new handle into the broadphase.
func (ps *PhysicsSystem) reconcile(w *ecs.World) {
	for e, binding := range ps.bindings {
		col, ok := ecs.Get(w, e, component.ColliderComponent)
		if !ok {
			ps.teardown(w, e)
			continue
		}

		if binding.State() == physics.BindingUninitialized {
			// First attach was rejected; retry with whatever the collider
			// declares now.
			if err := binding.Attach(colliderConfig(col)); err != nil {
				ps.logOnce(e, err.Error())
				continue
			}
			delete(ps.lastErr, e)
		} else {
			cfg := binding.Config()
			if col.Shape != cfg.Kind {
				if err := binding.SetKind(col.Shape); err != nil {
					ps.logOnce(e, err.Error())
				}
			}
			if col.Dims != cfg.Dims {
				binding.SetDims(col.Dims)
			}
			if col.Trigger != cfg.Trigger {
				binding.SetTrigger(col.Trigger)
			}
			if col.Shape == physics.ShapeMesh && (col.Mesh != cfg.Mesh || col.MeshMode != cfg.MeshMode) {
				if col.Mesh != nil {
					if err := binding.SetMesh(col.Mesh, col.MeshMode); err != nil {
						ps.logOnce(e, err.Error())
					}
				}
			}
			if col.Material != cfg.Material {
				binding.SetMaterial(col.Material)
			}
			if !equalLayers(col.Layers, cfg.Layers) {
				binding.SetLayers(col.Layers)
			}
		}

		if binding.Stale() {
			ps.rebuild(e, binding)
		}

		// The binding is the source of truth for what the backend accepted;
		// fold unsupported mutations (density on a live handle) back into the
		// component so intent and state stay consistent.
		canon := binding.Config()
		if col.Binding != binding || col.Material != canon.Material {
			col.Binding = binding
			col.Material = canon.Material
			_ = ecs.Add(w, e, component.ColliderComponent, col)
		}
	}
}

func (ps *PhysicsSystem) rebuild(e ecs.Entity, binding *physics.Binding) {
	old := binding.Handle()
	binding.Rebuild()
	newH := binding.Handle()
	if newH == old {
		return
	}
	body := ps.bodies[e]
	if old != nil {
		// Rebuild released the old handle; a leased shape shared with other
		// entities survives the release, so detach our pairing explicitly.
		ps.space.Detach(old, body)
	}
	delete(ps.attached, e)
	if newH != nil {
		ps.space.Attach(newH, body)
		ps.attached[e] = newH
	}
}

// push writes dirty transforms and declared velocities into the space.
func (ps *PhysicsSystem) push(w *ecs.World) {
	for e := range ps.dirty {
		body := ps.bodies[e]
		if body == nil {
			delete(ps.dirty, e)
			continue
		}
		if tr, ok := ecs.Get(w, e, component.TransformComponent); ok && tr.Position != nil {
			body.SetPosition(tr.Position.Components())
		}
	}
	for e, body := range ps.bodies {
		if vel, ok := ecs.Get(w, e, component.VelocityComponent); ok {
			body.SetVelocity(vel.X, vel.Y, vel.Z)
		}
	}
}

// pull copies resolved positions and velocities back into components. The
// reactive write re-marks the entity dirty, so the flag is cleared right
// after: only game-logic writes survive to the next tick.
func (ps *PhysicsSystem) pull(w *ecs.World) {
	for e, body := range ps.bodies {
		if !body.Static() {
			if tr, ok := ecs.Get(w, e, component.TransformComponent); ok && tr.Position != nil {
				tr.Position.Set(body.Position())
			}
			if _, ok := ecs.Get(w, e, component.VelocityComponent); ok {
				vx, vy, vz := body.Velocity()
				_ = ecs.Add(w, e, component.VelocityComponent, component.Velocity{X: vx, Y: vy, Z: vz})
			}
		}
		delete(ps.dirty, e)
	}
}

// flushContacts turns backend events into contact-set updates and bus events
// for both entities of each pair.
func (ps *PhysicsSystem) flushContacts(w *ecs.World) {
	for _, ev := range ps.pending {
		ea, okA := ps.byBody[ev.BodyA]
		eb, okB := ps.byBody[ev.BodyB]
		if !okA || !okB {
			continue
		}
		enter := ev.Kind == native.ContactBegin
		ps.recordContact(w, ea, eb, enter, ev.Trigger)
		ps.recordContact(w, eb, ea, enter, ev.Trigger)

		kind := eventKind(ev.Trigger, enter)
		w.Events().Publish(ecs.ContactEvent{Kind: kind, Entity: ea, Other: eb})
		w.Events().Publish(ecs.ContactEvent{Kind: kind, Entity: eb, Other: ea})
	}
	ps.pending = ps.pending[:0]
}

func (ps *PhysicsSystem) recordContact(w *ecs.World, e, other ecs.Entity, enter, trigger bool) {
	if enter {
		if ps.touching[e] == nil {
			ps.touching[e] = make(map[ecs.Entity]bool)
		}
		ps.touching[e][other] = trigger
	} else if pairs := ps.touching[e]; pairs != nil {
		delete(pairs, other)
	}

	cs, ok := ecs.Get(w, e, component.ContactStateComponent)
	if !ok || cs.Touching == nil {
		return
	}
	if enter {
		cs.Touching.HandleEnter(uint64(other))
	} else {
		cs.Touching.HandleExit(uint64(other))
	}
}

func (ps *PhysicsSystem) logOnce(e ecs.Entity, msg string) {
	if ps.lastErr[e] == msg {
		return
	}
	ps.lastErr[e] = msg
	log.Printf("physics: entity %s: %s", e, msg)
}

func eventKind(trigger, enter bool) ecs.EventKind {
	switch {
	case trigger && enter:
		return ecs.EventTriggerEnter
	case trigger:
		return ecs.EventTriggerExit
	case enter:
		return ecs.EventCollisionEnter
	default:
		return ecs.EventCollisionExit
	}
}

func colliderConfig(col component.Collider) physics.BindingConfig {
	return physics.BindingConfig{
		Kind:     col.Shape,
		Dims:     col.Dims,
		Trigger:  col.Trigger,
		Material: col.Material,
		Layers:   col.Layers,
		Mesh:     col.Mesh,
		MeshMode: col.MeshMode,
	}
}

func equalLayers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, l := range a {
		seen[l] = struct{}{}
	}
	for _, l := range b {
		if _, ok := seen[l]; !ok {
			return false
		}
	}
	return true
}
