package geometry

// CookMode selects how raw geometry is pre-processed for collision.
type CookMode int

const (
	// Convex cooks a convex hull from the position attribute alone.
	Convex CookMode = iota
	// TriangleMesh cooks the exact indexed triangle soup.
	TriangleMesh
)

func (m CookMode) String() string {
	switch m {
	case Convex:
		return "convex"
	case TriangleMesh:
		return "trimesh"
	default:
		return "unknown"
	}
}

// Valid reports whether m is a known cook mode.
func (m CookMode) Valid() bool {
	return m == Convex || m == TriangleMesh
}

// CacheKey maps a geometry instance and cook mode to a stable cache key.
// The key is identity-based: repeated cooks of distinct instances with equal
// buffers are intentional cache misses.
func CacheKey(src Source, mode CookMode) string {
	if src == nil {
		return ""
	}
	return src.ID() + "|" + mode.String()
}
