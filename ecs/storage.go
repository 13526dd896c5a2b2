package ecs

// entityStore allocates entity slots and tracks generations so destroyed
// handles cannot alias reused slots.
type entityStore struct {
	next entityID
	gens []generation // indexed by id-1
	free []entityID
}

func (s *entityStore) create() Entity {
	var id entityID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.next++
		id = s.next
		s.gens = append(s.gens, 0)
	}
	return makeEntity(id, s.gens[id-1])
}

func (s *entityStore) destroy(e Entity) bool {
	id := e.id()
	if id == 0 || int(id) > len(s.gens) {
		return false
	}
	if s.gens[id-1] != e.generation() {
		return false
	}
	s.gens[id-1]++
	s.free = append(s.free, id)
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	id := e.id()
	if id == 0 || int(id) > len(s.gens) {
		return false
	}
	return s.gens[id-1] == e.generation()
}

func (s *entityStore) alive() []Entity {
	out := make([]Entity, 0, len(s.gens))
	freeSet := make(map[entityID]struct{}, len(s.free))
	for _, id := range s.free {
		freeSet[id] = struct{}{}
	}
	for i := range s.gens {
		id := entityID(i + 1)
		if _, dead := freeSet[id]; dead {
			continue
		}
		out = append(out, makeEntity(id, s.gens[i]))
	}
	return out
}

// table is a sparse-set component store: dense slices for iteration, a
// sparse index for O(1) lookup by entity slot id.
type table struct {
	denseIDs    []entityID
	denseValues []any
	sparse      []int // indexed by id-1, -1 when absent
}

func (t *table) has(id entityID) bool {
	if t == nil || id == 0 || int(id) > len(t.sparse) {
		return false
	}
	idx := t.sparse[id-1]
	return idx >= 0 && idx < len(t.denseIDs) && t.denseIDs[idx] == id
}

func (t *table) get(id entityID) (any, bool) {
	if !t.has(id) {
		return nil, false
	}
	return t.denseValues[t.sparse[id-1]], true
}

func (t *table) set(id entityID, v any) {
	if t == nil || id == 0 {
		return
	}
	for int(id) > len(t.sparse) {
		t.sparse = append(t.sparse, -1)
	}
	if t.has(id) {
		t.denseValues[t.sparse[id-1]] = v
		return
	}
	t.denseIDs = append(t.denseIDs, id)
	t.denseValues = append(t.denseValues, v)
	t.sparse[id-1] = len(t.denseIDs) - 1
}

func (t *table) remove(id entityID) bool {
	if !t.has(id) {
		return false
	}
	idx := t.sparse[id-1]
	last := len(t.denseIDs) - 1
	lastID := t.denseIDs[last]

	t.denseIDs[idx] = lastID
	t.denseValues[idx] = t.denseValues[last]
	t.sparse[lastID-1] = idx

	t.denseIDs = t.denseIDs[:last]
	t.denseValues = t.denseValues[:last]
	t.sparse[id-1] = -1
	return true
}

func (t *table) len() int {
	if t == nil {
		return 0
	}
	return len(t.denseIDs)
}
