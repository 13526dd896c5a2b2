package reactive

// Vector is a 3-component value that invokes a single registered observer on
// every mutation. Game logic writes through it; the physics sync step
// registers the observer to mark the owning entity dirty without polling.
//
// Every write path funnels through commit, so one logical mutation fires the
// callback exactly once, after the new value is stored. The callback is never
// invoked reentrantly: writes made from inside the callback still commit but
// do not fire again.
type Vector struct {
	x, y, z  float64
	onChange func()
	firing   bool
}

// NewVector returns a vector with the given initial components. The
// constructor does not fire the observer.
func NewVector(x, y, z float64) *Vector {
	return &Vector{x: x, y: y, z: z}
}

func (v *Vector) X() float64 { return v.x }
func (v *Vector) Y() float64 { return v.y }
func (v *Vector) Z() float64 { return v.z }

// Components returns all three components without firing the observer.
func (v *Vector) Components() (x, y, z float64) {
	return v.x, v.y, v.z
}

// SetX writes the x component. One observer invocation.
func (v *Vector) SetX(x float64) {
	v.commit(x, v.y, v.z)
}

// SetY writes the y component. One observer invocation.
func (v *Vector) SetY(y float64) {
	v.commit(v.x, y, v.z)
}

// SetZ writes the z component. One observer invocation.
func (v *Vector) SetZ(z float64) {
	v.commit(v.x, v.y, z)
}

// Set writes all three components as one logical mutation: the observer
// fires once, not three times.
func (v *Vector) Set(x, y, z float64) {
	v.commit(x, y, z)
}

// Copy assigns other's components to v. One observer invocation.
func (v *Vector) Copy(other *Vector) {
	if other == nil {
		return
	}
	v.commit(other.x, other.y, other.z)
}

// FromArray loads three consecutive components starting at offset. Out of
// range loads are ignored.
func (v *Vector) FromArray(arr []float64, offset int) {
	if offset < 0 || offset+3 > len(arr) {
		return
	}
	v.commit(arr[offset], arr[offset+1], arr[offset+2])
}

// OnChange registers the observer. A nil fn clears it; no registered
// observer is a valid, silent state.
func (v *Vector) OnChange(fn func()) {
	v.onChange = fn
}

func (v *Vector) commit(x, y, z float64) {
	v.x, v.y, v.z = x, y, z
	if v.onChange == nil || v.firing {
		return
	}
	v.firing = true
	v.onChange()
	v.firing = false
}
