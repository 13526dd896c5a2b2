package system

import (
	"math"
	"testing"

	"github.com/milk9111/worldsmith/ecs"
	"github.com/milk9111/worldsmith/ecs/component"
)

func spawnScripted(w *ecs.World, path string) ecs.Entity {
	e := w.CreateEntity()
	_ = ecs.Add(w, e, component.TransformComponent, component.NewTransform(0, 0, 0))
	_ = ecs.Add(w, e, component.ScriptComponent, component.Script{Path: path})
	return e
}

func TestScriptSystemRunsUpdateEachTick(t *testing.T) {
	w := ecs.NewWorld()
	sys := NewScriptSystem(1.0 / 60)
	e := spawnScripted(w, "patrol.tengo")

	sys.Update(w)
	tr, _ := ecs.Get(w, e, component.TransformComponent)
	x1, _, _ := tr.Position.Components()
	if x1 == 0 {
		t.Fatalf("patrol script should move the entity on the first tick")
	}

	sys.Update(w)
	x2, _, _ := tr.Position.Components()
	if x2 <= x1 {
		t.Fatalf("patrol should keep moving the same direction, got %v then %v", x1, x2)
	}
	// Two ticks of speed 2: dx per tick is 2*dt.
	want := 2 * 2.0 / 60
	if math.Abs(x2-want) > 1e-9 {
		t.Fatalf("x after two ticks = %v, want %v", x2, want)
	}
}

func TestScriptSystemStatePersistsAcrossTicks(t *testing.T) {
	w := ecs.NewWorld()
	// A long dt crosses the patrol leg boundary in two ticks, flipping
	// direction, which only works if script state survives between runs.
	sys := NewScriptSystem(3.0)
	e := spawnScripted(w, "patrol.tengo")

	sys.Update(w)
	tr, _ := ecs.Get(w, e, component.TransformComponent)
	x1, _, _ := tr.Position.Components()
	if x1 <= 0 {
		t.Fatalf("first tick should move +x, got %v", x1)
	}

	sys.Update(w) // elapsed reaches the leg length, direction flips
	x2, _, _ := tr.Position.Components()
	if x2 >= x1 {
		t.Fatalf("second tick should move -x after the flip, got %v then %v", x1, x2)
	}
}

func TestScriptSystemYawAPI(t *testing.T) {
	w := ecs.NewWorld()
	sys := NewScriptSystem(1.0 / 60)
	e := spawnScripted(w, "spinner.tengo")

	sys.Update(w)
	tr, _ := ecs.Get(w, e, component.TransformComponent)
	if tr.Yaw == 0 {
		t.Fatalf("spinner should advance yaw")
	}
}

func TestScriptSystemSurvivesBadScripts(t *testing.T) {
	w := ecs.NewWorld()
	sys := NewScriptSystem(1.0 / 60)
	spawnScripted(w, "does_not_exist.tengo")
	good := spawnScripted(w, "patrol.tengo")

	sys.Update(w)

	tr, _ := ecs.Get(w, good, component.TransformComponent)
	if x, _, _ := tr.Position.Components(); x == 0 {
		t.Fatalf("a broken script must not stop other entities")
	}
}

func TestScriptSystemInvalidateRecompiles(t *testing.T) {
	w := ecs.NewWorld()
	sys := NewScriptSystem(1.0 / 60)
	e := spawnScripted(w, "patrol.tengo")

	sys.Update(w)
	if len(sys.cache) != 1 {
		t.Fatalf("expected one cached runtime, got %d", len(sys.cache))
	}

	sys.Invalidate()
	if len(sys.cache) != 0 {
		t.Fatalf("invalidate should drop compiled runtimes")
	}

	sys.Update(w)
	if _, ok := sys.cache[e]; !ok {
		t.Fatalf("next tick should recompile the runtime")
	}
}
