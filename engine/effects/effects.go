// package effects holds the built-in cursor effects. Each effect owns its GPU
// resources outright — shaders, pipeline, quad mesh and bind groups are
// created per instance during Initialize and torn down in Dispose, so
// instances never share mutable GPU state.
//
// All particle effects draw the same instanced unit quad and differ only in
// how they fill their simulation state and which fragment shader and blend
// mode they register. The screen-sampling effects (lens, colorfilter) render
// from the capture provider's texture instead and declare continuous capture.
package effects

import "github.com/cursorfx/cursorfx/engine/effect"

// RegisterAll registers every built-in effect type on the given registry.
//
// Parameters:
//   - reg: the registry to populate
//
// Returns:
//   - error: an error if a type identifier is already taken
func RegisterAll(reg *effect.Registry) error {
	builtin := map[string]effect.Factory{
		"sparkle":     NewSparkle,
		"trail":       NewTrail,
		"orbit":       NewOrbit,
		"shockwave":   NewShockwave,
		"lens":        NewLens,
		"colorfilter": NewColorFilter,
	}
	for typeID, factory := range builtin {
		if err := reg.Register(typeID, factory); err != nil {
			return err
		}
	}
	return nil
}
