package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/worldsmith/ecs"
	"github.com/milk9111/worldsmith/ecs/component"
	"github.com/milk9111/worldsmith/prefabs"
)

// ScriptSystem runs each scripted entity's behavior once per fixed tick.
// Scripts are tengo sources defining update(engine, state, dt) and optionally
// init(engine, state); they are compiled once per entity and re-entered every
// tick through a small dispatch stub.
type ScriptSystem struct {
	fixedDt float64
	cache   map[ecs.Entity]*scriptRuntime
}

type scriptRuntime struct {
	path        string
	compiled    *tengo.Compiled
	stateData   *tengo.Map
	hasInit     bool
	initialized bool
}

const tickDispatchScript = `
if __phase == "init" {
	init(__engine, __state)
} else if __phase == "update" {
	update(__engine, __state, __dt)
}
`

// NewScriptSystem creates the system; fixedDt is the fixed step in seconds.
func NewScriptSystem(fixedDt float64) *ScriptSystem {
	if fixedDt <= 0 {
		fixedDt = 1.0 / 60
	}
	return &ScriptSystem{
		fixedDt: fixedDt,
		cache:   map[ecs.Entity]*scriptRuntime{},
	}
}

func (s *ScriptSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	for e := range s.cache {
		if !w.IsAlive(e) {
			delete(s.cache, e)
		}
	}

	for _, e := range w.Query(component.ScriptComponent.ID(), component.TransformComponent.ID()) {
		sc, ok := ecs.Get(w, e, component.ScriptComponent)
		if !ok || strings.TrimSpace(sc.Path) == "" {
			continue
		}

		rt, err := s.runtime(e, sc.Path)
		if err != nil {
			fmt.Printf("script: entity=%s load %q error: %v\n", e, sc.Path, err)
			continue
		}

		engine := buildWorldScriptEngine(w, e)
		if !rt.initialized {
			if rt.hasInit {
				if err := rt.runPhase("init", engine, s.fixedDt); err != nil {
					fmt.Printf("script: entity=%s init error: %v\n", e, err)
					continue
				}
			}
			rt.initialized = true
		}

		if err := rt.runPhase("update", engine, s.fixedDt); err != nil {
			fmt.Printf("script: entity=%s update error: %v\n", e, err)
		}
	}
}

// Invalidate drops every compiled runtime so the next tick recompiles from
// the (possibly reloaded) script sources.
func (s *ScriptSystem) Invalidate() {
	if s == nil {
		return
	}
	s.cache = map[ecs.Entity]*scriptRuntime{}
}

func (s *ScriptSystem) runtime(e ecs.Entity, path string) (*scriptRuntime, error) {
	if rt, ok := s.cache[e]; ok && rt != nil && rt.path == path {
		return rt, nil
	}

	scriptBytes, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, err
	}

	src := string(scriptBytes) + "\n" + tickDispatchScript
	script := tengo.NewScript([]byte(src))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__dt", 0.0)

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}

	rt := &scriptRuntime{
		path:      path,
		compiled:  compiled,
		stateData: &tengo.Map{Value: map[string]tengo.Object{}},
	}

	// Noop run populates the script's top-level globals so optional hooks can
	// be detected.
	if err := rt.runPhase("noop", nil, 0); err != nil {
		return nil, err
	}
	rt.hasInit = compiled.IsDefined("init")
	if !compiled.IsDefined("update") {
		return nil, fmt.Errorf("script %q does not define update(engine, state, dt)", path)
	}

	s.cache[e] = rt
	return rt, nil
}

func (rt *scriptRuntime) runPhase(phase string, engine *tengo.ImmutableMap, dt float64) error {
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("nil script runtime")
	}
	if engine == nil {
		engine = &tengo.ImmutableMap{Value: map[string]tengo.Object{}}
	}
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	if err := rt.compiled.Set("__dt", dt); err != nil {
		return err
	}
	return rt.compiled.Run()
}

// buildWorldScriptEngine exposes the entity's transform, velocity, and
// contact state to the script. Transform writes go through the reactive
// vector, so scripted movement marks the entity dirty for the physics step
// like any other logic write.
func buildWorldScriptEngine(w *ecs.World, e ecs.Entity) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		tr, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok || tr.Position == nil {
			return floatArray(0, 0, 0), nil
		}
		return floatArray(tr.Position.Components()), nil
	}}

	values["set_position"] = &tengo.UserFunction{Name: "set_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return tengo.FalseValue, nil
		}
		tr, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok || tr.Position == nil {
			return tengo.FalseValue, nil
		}
		tr.Position.Set(objectAsFloat(args[0]), objectAsFloat(args[1]), objectAsFloat(args[2]))
		return tengo.TrueValue, nil
	}}

	values["move"] = &tengo.UserFunction{Name: "move", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return tengo.FalseValue, nil
		}
		tr, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok || tr.Position == nil {
			return tengo.FalseValue, nil
		}
		x, y, z := tr.Position.Components()
		tr.Position.Set(x+objectAsFloat(args[0]), y+objectAsFloat(args[1]), z+objectAsFloat(args[2]))
		return tengo.TrueValue, nil
	}}

	values["velocity"] = &tengo.UserFunction{Name: "velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		vel, ok := ecs.Get(w, e, component.VelocityComponent)
		if !ok {
			return floatArray(0, 0, 0), nil
		}
		return floatArray(vel.X, vel.Y, vel.Z), nil
	}}

	values["set_velocity"] = &tengo.UserFunction{Name: "set_velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return tengo.FalseValue, nil
		}
		v := component.Velocity{
			X: objectAsFloat(args[0]),
			Y: objectAsFloat(args[1]),
			Z: objectAsFloat(args[2]),
		}
		if err := ecs.Add(w, e, component.VelocityComponent, v); err != nil {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["touching"] = &tengo.UserFunction{Name: "touching", Value: func(args ...tengo.Object) (tengo.Object, error) {
		cs, ok := ecs.Get(w, e, component.ContactStateComponent)
		if !ok || cs.Touching == nil {
			return &tengo.Array{}, nil
		}
		ids := cs.Touching.Touching()
		out := make([]tengo.Object, 0, len(ids))
		for _, id := range ids {
			out = append(out, &tengo.Int{Value: int64(id)})
		}
		return &tengo.Array{Value: out}, nil
	}}

	values["is_touching"] = &tengo.UserFunction{Name: "is_touching", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		cs, ok := ecs.Get(w, e, component.ContactStateComponent)
		if !ok || cs.Touching == nil {
			return tengo.FalseValue, nil
		}
		if cs.Touching.Contains(uint64(objectAsInt(args[0]))) {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["yaw"] = &tengo.UserFunction{Name: "yaw", Value: func(args ...tengo.Object) (tengo.Object, error) {
		tr, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: tr.Yaw}, nil
	}}

	values["set_yaw"] = &tengo.UserFunction{Name: "set_yaw", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		tr, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			return tengo.FalseValue, nil
		}
		tr.Yaw = objectAsFloat(args[0])
		if err := ecs.Add(w, e, component.TransformComponent, tr); err != nil {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func floatArray(x, y, z float64) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{
		&tengo.Float{Value: x},
		&tengo.Float{Value: y},
		&tengo.Float{Value: z},
	}}
}

func objectAsFloat(obj tengo.Object) float64 {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value
	case *tengo.Int:
		return float64(v.Value)
	default:
		return 0
	}
}

func objectAsInt(obj tengo.Object) int64 {
	switch v := obj.(type) {
	case *tengo.Int:
		return v.Value
	case *tengo.Float:
		return int64(v.Value)
	default:
		return 0
	}
}
