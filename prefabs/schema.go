package prefabs

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const entitySchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "transform": {
      "type": "object",
      "properties": {
        "x": {"type": "number"},
        "y": {"type": "number"},
        "z": {"type": "number"},
        "yaw": {"type": "number"}
      },
      "additionalProperties": false
    },
    "velocity": {
      "type": "object",
      "properties": {
        "x": {"type": "number"},
        "y": {"type": "number"},
        "z": {"type": "number"}
      },
      "additionalProperties": false
    },
    "collider": {
      "type": "object",
      "properties": {
        "shape": {"enum": ["box", "sphere", "capsule", "mesh"]},
        "width": {"type": "number", "minimum": 0},
        "height": {"type": "number", "minimum": 0},
        "depth": {"type": "number", "minimum": 0},
        "radius": {"type": "number", "minimum": 0},
        "trigger": {"type": "boolean"},
        "static": {"type": "boolean"},
        "friction": {"type": "number", "minimum": 0},
        "restitution": {"type": "number", "minimum": 0},
        "density": {"type": "number", "minimum": 0},
        "layers": {"type": "array", "items": {"type": "string", "minLength": 1}}
      },
      "additionalProperties": false
    },
    "script": {
      "type": "object",
      "required": ["path"],
      "properties": {
        "path": {"type": "string", "minLength": 1}
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

var entitySchema = jsonschema.MustCompileString("entity.schema.json", entitySchemaJSON)

// ValidateEntity checks raw prefab yaml against the entity schema. A file
// that fails validation is rejected before any component is built from it.
func ValidateEntity(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}

	// The validator expects json-decoded values; round-trip through json to
	// normalize yaml's integer and map types.
	buf, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var normalized any
	if err := dec.Decode(&normalized); err != nil {
		return err
	}

	if err := entitySchema.Validate(normalized); err != nil {
		return fmt.Errorf("entity spec invalid: %w", err)
	}
	return nil
}
