package prefabs

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/worldsmith/physics"
)

// EntitySpec is one prefab file: the declarative recipe a world entity is
// spawned from.
type EntitySpec struct {
	Name      string        `yaml:"name"`
	Transform TransformSpec `yaml:"transform"`
	Velocity  *VelocitySpec `yaml:"velocity"`
	Collider  *ColliderSpec `yaml:"collider"`
	Script    *ScriptSpec   `yaml:"script"`
}

type TransformSpec struct {
	X   float64 `yaml:"x"`
	Y   float64 `yaml:"y"`
	Z   float64 `yaml:"z"`
	Yaw float64 `yaml:"yaw"`
}

type VelocitySpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type ColliderSpec struct {
	Shape       string   `yaml:"shape"`
	Width       float64  `yaml:"width"`
	Height      float64  `yaml:"height"`
	Depth       float64  `yaml:"depth"`
	Radius      float64  `yaml:"radius"`
	Trigger     bool     `yaml:"trigger"`
	Static      bool     `yaml:"static"`
	Friction    float64  `yaml:"friction"`
	Restitution float64  `yaml:"restitution"`
	Density     float64  `yaml:"density"`
	Layers      []string `yaml:"layers"`
}

type ScriptSpec struct {
	Path string `yaml:"path"`
}

// ShapeKind maps the spec's shape name onto the physics enum.
func (c *ColliderSpec) ShapeKind() (physics.ShapeKind, error) {
	if c == nil {
		return 0, fmt.Errorf("prefabs: nil collider spec")
	}
	switch strings.ToLower(strings.TrimSpace(c.Shape)) {
	case "box", "":
		return physics.ShapeBox, nil
	case "sphere":
		return physics.ShapeSphere, nil
	case "capsule":
		return physics.ShapeCapsule, nil
	case "mesh":
		return physics.ShapeMesh, nil
	default:
		return 0, fmt.Errorf("prefabs: unknown collider shape %q", c.Shape)
	}
}

// Dims packs the spec's size fields for the shape kind.
func (c *ColliderSpec) Dims() physics.Dims {
	if c == nil {
		return physics.Dims{}
	}
	return physics.Dims{
		Width:  c.Width,
		Height: c.Height,
		Depth:  c.Depth,
		Radius: c.Radius,
	}
}

// LoadSpec reads and unmarshals one prefab file into the given spec type,
// validating it against the entity schema first.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	if err := ValidateEntity(data); err != nil {
		return zero, fmt.Errorf("prefabs: validate %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadEntitySpec reads one prefab file as an EntitySpec.
func LoadEntitySpec(filename string) (EntitySpec, error) {
	return LoadSpec[EntitySpec](filename)
}
