package component

// Velocity is an entity's linear velocity in world units per second. The
// physics system pushes it into the backend before the step and pulls the
// resolved velocity back after.
type Velocity struct {
	X, Y, Z float64
}

var VelocityComponent = New[Velocity]()
