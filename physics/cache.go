package physics

import (
	"log"

	"github.com/milk9111/worldsmith/geometry"
)

// ShapeCache shares cooked collision shapes across bindings. It is keyed by
// geometry identity plus cook mode, not by buffer content: two geometry
// instances with equal vertex data cook separately.
//
// A cache belongs to one world instance and is only touched from that
// world's simulation goroutine, so refcounts need no atomics. Every Acquire
// must be paired with exactly one Lease.Release.
type ShapeCache struct {
	cooker  Cooker
	entries map[string]*cachedShape
}

type cachedShape struct {
	key    string
	handle Handle
	refs   int
}

// Lease wraps one unit of shared ownership over a cached cooked shape.
// Release is idempotent; only the first call decrements the refcount.
type Lease struct {
	cache    *ShapeCache
	entry    *cachedShape
	released bool
}

// Handle returns the backend handle backing this lease, or nil after release.
func (l *Lease) Handle() Handle {
	if l == nil || l.released || l.entry == nil {
		return nil
	}
	return l.entry.handle
}

// Release returns the lease's refcount unit. When the last lease on a record
// is released, the backend handle is destroyed and the record evicted.
// Calling Release twice is a no-op the second time.
func (l *Lease) Release() {
	if l == nil || l.released {
		return
	}
	l.released = true
	l.cache.release(l.entry)
}

// NewShapeCache creates a cache over the given cooker. A nil cooker is
// valid: every Acquire returns nil, the degraded state for runtime roles
// without a physics backend loaded.
func NewShapeCache(cooker Cooker) *ShapeCache {
	return &ShapeCache{
		cooker:  cooker,
		entries: make(map[string]*cachedShape),
	}
}

// Acquire returns a lease on the cooked shape for src in the given mode,
// cooking it on first use. It returns nil when the backend is unavailable,
// when src cannot be cooked in the requested mode, or when the backend
// rejects the buffers. Callers must treat nil as "no collision for now",
// not a failure.
func (sc *ShapeCache) Acquire(src geometry.Source, mode geometry.CookMode) *Lease {
	if sc == nil || sc.cooker == nil {
		return nil
	}
	if src == nil || !mode.Valid() {
		return nil
	}

	key := geometry.CacheKey(src, mode)
	if entry, ok := sc.entries[key]; ok {
		entry.refs++
		return &Lease{cache: sc, entry: entry}
	}

	handle := sc.cook(src, mode)
	if handle == nil {
		// Cook rejected. The cache is left unchanged; scratch buffers built
		// inside cook are function-local and reclaimed on this path too.
		return nil
	}

	entry := &cachedShape{key: key, handle: handle, refs: 1}
	sc.entries[key] = entry
	return &Lease{cache: sc, entry: entry}
}

// Len returns the number of live cache records.
func (sc *ShapeCache) Len() int {
	if sc == nil {
		return 0
	}
	return len(sc.entries)
}

func (sc *ShapeCache) cook(src geometry.Source, mode geometry.CookMode) Handle {
	attr := src.PositionAttribute()
	if attr == nil {
		log.Printf("physics: shape cache: geometry %s has no position attribute", src.ID())
		return nil
	}
	positions := attr.Packed()

	switch mode {
	case geometry.Convex:
		h := sc.cooker.CookConvex(positions)
		if h == nil {
			log.Printf("physics: shape cache: convex cook rejected for geometry %s", src.ID())
		}
		return h
	case geometry.TriangleMesh:
		index := src.IndexBuffer()
		if index == nil || index.Count() == 0 {
			log.Printf("physics: shape cache: geometry %s has no index buffer for trimesh cook", src.ID())
			return nil
		}
		if index.Count()%3 != 0 {
			// Reject before Normalize so a malformed buffer never pays for
			// the widening copy.
			log.Printf("physics: shape cache: geometry %s index count %d is not a triangle list", src.ID(), index.Count())
			return nil
		}
		idx16, idx32 := index.Normalize()
		h := sc.cooker.CookTriangleMesh(positions, idx16, idx32)
		if h == nil {
			log.Printf("physics: shape cache: trimesh cook rejected for geometry %s", src.ID())
		}
		return h
	default:
		return nil
	}
}

func (sc *ShapeCache) release(entry *cachedShape) {
	if sc == nil || entry == nil {
		return
	}
	entry.refs--
	if entry.refs > 0 {
		return
	}
	delete(sc.entries, entry.key)
	if sc.cooker != nil && entry.handle != nil {
		sc.cooker.Destroy(entry.handle)
	}
	entry.handle = nil
}
