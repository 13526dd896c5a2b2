package prefabs

import (
	"fmt"

	"github.com/milk9111/worldsmith/ecs"
	"github.com/milk9111/worldsmith/ecs/component"
	"github.com/milk9111/worldsmith/physics"
)

// Spawn builds a world entity from a spec. The collider carries declared
// intent only; the physics system attaches its runtime binding on the next
// tick.
func Spawn(w *ecs.World, source string, spec EntitySpec) (ecs.Entity, error) {
	if w == nil {
		return ecs.Nil, fmt.Errorf("prefabs: nil world")
	}
	if spec.Name == "" {
		return ecs.Nil, fmt.Errorf("prefabs: spec has no name")
	}

	var collider *component.Collider
	if spec.Collider != nil {
		kind, err := spec.Collider.ShapeKind()
		if err != nil {
			return ecs.Nil, err
		}
		collider = &component.Collider{
			Shape:   kind,
			Dims:    spec.Collider.Dims(),
			Trigger: spec.Collider.Trigger,
			Static:  spec.Collider.Static,
			Material: physics.Material{
				Friction:    spec.Collider.Friction,
				Restitution: spec.Collider.Restitution,
				Density:     spec.Collider.Density,
			},
			Layers: spec.Collider.Layers,
		}
	}

	e := w.CreateEntity()
	tr := component.NewTransform(spec.Transform.X, spec.Transform.Y, spec.Transform.Z)
	tr.Yaw = spec.Transform.Yaw
	if err := ecs.Add(w, e, component.TransformComponent, tr); err != nil {
		return ecs.Nil, err
	}
	if err := ecs.Add(w, e, component.PrefabComponent, component.Prefab{Name: spec.Name, Source: source}); err != nil {
		return ecs.Nil, err
	}

	if spec.Velocity != nil {
		v := component.Velocity{X: spec.Velocity.X, Y: spec.Velocity.Y, Z: spec.Velocity.Z}
		if err := ecs.Add(w, e, component.VelocityComponent, v); err != nil {
			return ecs.Nil, err
		}
	}
	if collider != nil {
		if err := ecs.Add(w, e, component.ColliderComponent, *collider); err != nil {
			return ecs.Nil, err
		}
	}
	if spec.Script != nil && spec.Script.Path != "" {
		if err := ecs.Add(w, e, component.ScriptComponent, component.Script{Path: spec.Script.Path}); err != nil {
			return ecs.Nil, err
		}
	}

	return e, nil
}

// SpawnFile loads, validates, and spawns one prefab file.
func SpawnFile(w *ecs.World, filename string) (ecs.Entity, error) {
	spec, err := LoadEntitySpec(filename)
	if err != nil {
		return ecs.Nil, err
	}
	return Spawn(w, filename, spec)
}

// Respawn destroys every entity spawned from the given source file and
// spawns it again from the current file contents, used by hot reload.
func Respawn(w *ecs.World, filename string) error {
	if w == nil {
		return fmt.Errorf("prefabs: nil world")
	}
	for _, e := range w.Query(component.PrefabComponent.ID()) {
		p, ok := ecs.Get(w, e, component.PrefabComponent)
		if ok && p.Source == filename {
			w.DestroyEntity(e)
		}
	}
	_, err := SpawnFile(w, filename)
	return err
}
