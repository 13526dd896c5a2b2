package physics

import "sort"

// ContactSet records which entities are currently touching one entity. It is
// populated exclusively from backend enter/exit events; the backend has no
// synchronous "what is touching me" query, and this set is the only answer
// to that question.
type ContactSet struct {
	touching map[uint64]struct{}
}

// NewContactSet returns an empty set.
func NewContactSet() *ContactSet {
	return &ContactSet{touching: make(map[uint64]struct{})}
}

// HandleEnter records a contact-begin event against the given entity id.
func (s *ContactSet) HandleEnter(id uint64) {
	if s == nil || id == 0 {
		return
	}
	s.touching[id] = struct{}{}
}

// HandleExit records a contact-end event against the given entity id.
func (s *ContactSet) HandleExit(id uint64) {
	if s == nil {
		return
	}
	delete(s.touching, id)
}

// Contains reports whether the entity id is currently touching.
func (s *ContactSet) Contains(id uint64) bool {
	if s == nil {
		return false
	}
	_, ok := s.touching[id]
	return ok
}

// Touching returns a sorted copy of the currently touching entity ids.
func (s *ContactSet) Touching() []uint64 {
	if s == nil || len(s.touching) == 0 {
		return nil
	}
	out := make([]uint64, 0, len(s.touching))
	for id := range s.touching {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of touching entities.
func (s *ContactSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.touching)
}

// Clear drops all recorded contacts, used when a binding is rebuilt and the
// backend will re-emit enter events for still-overlapping pairs.
func (s *ContactSet) Clear() {
	if s == nil {
		return
	}
	for id := range s.touching {
		delete(s.touching, id)
	}
}
