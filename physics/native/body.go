package native

// Body carries the dynamic state shapes attach to. Positions are float64 to
// match the simulation's transform space; only cooked geometry is float32.
type Body struct {
	position [3]float64
	velocity [3]float64
	static   bool
	gravity  bool
	shapes   []*Shape
}

// Position returns the body's world position.
func (b *Body) Position() (x, y, z float64) {
	if b == nil {
		return 0, 0, 0
	}
	return b.position[0], b.position[1], b.position[2]
}

// SetPosition teleports the body.
func (b *Body) SetPosition(x, y, z float64) {
	if b == nil {
		return
	}
	b.position = [3]float64{x, y, z}
}

// Velocity returns the body's linear velocity.
func (b *Body) Velocity() (x, y, z float64) {
	if b == nil {
		return 0, 0, 0
	}
	return b.velocity[0], b.velocity[1], b.velocity[2]
}

// SetVelocity replaces the body's linear velocity.
func (b *Body) SetVelocity(x, y, z float64) {
	if b == nil {
		return
	}
	b.velocity = [3]float64{x, y, z}
}

// Static reports whether the body ignores integration.
func (b *Body) Static() bool {
	return b != nil && b.static
}

// SetGravityEnabled toggles gravity for this body. Defaults to enabled for
// dynamic bodies.
func (b *Body) SetGravityEnabled(enabled bool) {
	if b == nil {
		return
	}
	b.gravity = enabled
}

// Shapes returns the shapes currently attached to the body.
func (b *Body) Shapes() []*Shape {
	if b == nil {
		return nil
	}
	return b.shapes
}
