package ecs

import (
	"testing"

	"github.com/milk9111/worldsmith/ecs/component"
)

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroyed", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, w.CreateEntity())
			}
			if len(w.Entities()) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(w.Entities()))
			}
			if c.destroyIndex >= 0 {
				if !w.DestroyEntity(ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if w.IsAlive(ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if len(w.Entities()) != c.create-1 {
					t.Fatalf("expected %d entities, got %d", c.create-1, len(w.Entities()))
				}
			}
		})
	}
}

func TestWorldStaleHandleDoesNotAliasReusedSlot(t *testing.T) {
	w := NewWorld()
	old := w.CreateEntity()
	w.DestroyEntity(old)

	reused := w.CreateEntity()
	if w.IsAlive(old) {
		t.Fatalf("stale handle must be dead after slot reuse")
	}
	if !w.IsAlive(reused) {
		t.Fatalf("reused slot must be alive under its new handle")
	}
	if old == reused {
		t.Fatalf("generations must distinguish reused slots")
	}
}

var (
	testIntComponent = component.New[int]()
	testStrComponent = component.New[string]()
	testTagComponent = component.New[struct{}]()
)

func TestWorldComponentsAndQueries(t *testing.T) {
	w := NewWorld()
	e1 := w.CreateEntity()
	e2 := w.CreateEntity()

	if err := Add(w, e1, testIntComponent, 10); err != nil {
		t.Fatalf("add int: %v", err)
	}
	if err := Add(w, e1, testStrComponent, "a"); err != nil {
		t.Fatalf("add string: %v", err)
	}
	if err := Add(w, e2, testStrComponent, "b"); err != nil {
		t.Fatalf("add string: %v", err)
	}

	if v, ok := Get(w, e1, testIntComponent); !ok || v != 10 {
		t.Fatalf("expected 10, got %v ok=%v", v, ok)
	}
	if !Has(w, e1, testStrComponent) || !Has(w, e2, testStrComponent) {
		t.Fatalf("expected both entities to carry string component")
	}

	both := w.Query(testIntComponent.ID(), testStrComponent.ID())
	if len(both) != 1 || both[0] != e1 {
		t.Fatalf("expected intersection [e1], got %v", both)
	}
	strs := w.Query(testStrComponent.ID())
	if len(strs) != 2 {
		t.Fatalf("expected two entities with strings, got %v", strs)
	}

	if !Remove(w, e1, testStrComponent) {
		t.Fatalf("remove should report success")
	}
	if Has(w, e1, testStrComponent) {
		t.Fatalf("component should be gone after remove")
	}

	if err := Add(w, Nil, testIntComponent, 1); err == nil {
		t.Fatalf("adding to the nil entity must fail")
	}
}

func TestWorldDestroyRemovesComponents(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	if err := Add(w, e, testIntComponent, 7); err != nil {
		t.Fatalf("add: %v", err)
	}
	w.DestroyEntity(e)

	reused := w.CreateEntity()
	if Has(w, reused, testIntComponent) {
		t.Fatalf("reused slot must not inherit destroyed entity's components")
	}
}

func TestWorldFirst(t *testing.T) {
	w := NewWorld()
	if _, ok := w.First(testTagComponent.ID()); ok {
		t.Fatalf("First on empty table must report false")
	}
	e := w.CreateEntity()
	if err := Add(w, e, testTagComponent, struct{}{}); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, ok := w.First(testTagComponent.ID())
	if !ok || got != e {
		t.Fatalf("expected %v, got %v ok=%v", e, got, ok)
	}
}

func TestEventBusDispatch(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	other := w.CreateEntity()

	var got []ContactEvent
	w.Events().Subscribe(e, EventCollisionEnter, func(ev ContactEvent) {
		got = append(got, ev)
	})

	w.Events().Publish(ContactEvent{Kind: EventCollisionEnter, Entity: e, Other: other})
	w.Events().Publish(ContactEvent{Kind: EventCollisionExit, Entity: e, Other: other})
	w.Events().Publish(ContactEvent{Kind: EventCollisionEnter, Entity: other, Other: e})
	if len(got) != 0 {
		t.Fatalf("handlers must not run before flush")
	}

	w.Events().Flush()
	if len(got) != 1 || got[0].Other != other {
		t.Fatalf("expected one matching dispatch, got %v", got)
	}

	// Subscriptions die with the entity.
	w.DestroyEntity(e)
	w.Events().Publish(ContactEvent{Kind: EventCollisionEnter, Entity: e, Other: other})
	w.Events().Flush()
	if len(got) != 1 {
		t.Fatalf("destroyed entity's subscription must not fire")
	}
}
