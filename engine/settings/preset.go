package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a named, persistable snapshot of one effect instance's configuration
// together with its placement in the render order.
type Preset struct {
	// Name identifies the preset in UI listings.
	Name string `yaml:"name"`

	// Effect is the registered effect type id this preset configures.
	Effect string `yaml:"effect"`

	// Order is the render-order key the effect is registered at.
	Order int `yaml:"order"`

	// Enabled controls whether the instance participates in the frame loop.
	Enabled bool `yaml:"enabled"`

	// Settings holds the effect configuration.
	Settings Config `yaml:"settings"`
}

// PresetFile is the on-disk document: a list of presets applied in order.
type PresetFile struct {
	Presets []Preset `yaml:"presets"`
}

// LoadPresets reads and decodes a YAML preset file.
//
// Parameters:
//   - path: filesystem path of the preset file
//
// Returns:
//   - *PresetFile: the decoded presets
//   - error: an error if the file cannot be read or parsed
func LoadPresets(path string) (*PresetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: failed to read preset file %q: %w", path, err)
	}
	var pf PresetFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("settings: failed to parse preset file %q: %w", path, err)
	}
	return &pf, nil
}

// SavePresets encodes and writes a YAML preset file.
//
// Parameters:
//   - path: filesystem path to write
//   - pf: the presets to persist
//
// Returns:
//   - error: an error if encoding or writing fails
func SavePresets(path string, pf *PresetFile) error {
	data, err := yaml.Marshal(pf)
	if err != nil {
		return fmt.Errorf("settings: failed to encode presets: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("settings: failed to write preset file %q: %w", path, err)
	}
	return nil
}

// MarshalYAML encodes a Value as a native YAML scalar (bool, int, float, string)
// or a 4-element flow sequence for colors, so preset files stay hand-editable.
func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindInt:
		return v.i, nil
	case KindFloat:
		return v.f, nil
	case KindColor:
		return []float32{v.c[0], v.c[1], v.c[2], v.c[3]}, nil
	case KindChoice:
		return v.s, nil
	default:
		return nil, fmt.Errorf("settings: cannot encode invalid value")
	}
}

// UnmarshalYAML decodes a Value from its scalar or sequence form, inferring the
// kind from the YAML node. Unknown node shapes produce an error at load time
// rather than an invalid Value that would later read as missing.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var comps []float32
		if err := node.Decode(&comps); err != nil {
			return fmt.Errorf("settings: invalid color value: %w", err)
		}
		if len(comps) != 4 {
			return fmt.Errorf("settings: color value needs 4 components, got %d", len(comps))
		}
		*v = Color([4]float32{comps[0], comps[1], comps[2], comps[3]})
		return nil
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return err
			}
			*v = Bool(b)
			return nil
		case "!!int":
			var i int
			if err := node.Decode(&i); err != nil {
				return err
			}
			*v = Int(i)
			return nil
		case "!!float":
			var f float32
			if err := node.Decode(&f); err != nil {
				return err
			}
			*v = Float(f)
			return nil
		case "!!str":
			*v = Choice(node.Value)
			return nil
		}
	}
	return fmt.Errorf("settings: unsupported value node at line %d", node.Line)
}
