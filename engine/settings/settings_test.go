package settings

import (
	"math"
	"path/filepath"
	"testing"

	"golang.org/x/image/math/f32"
)

func TestConfigRoundTrip(t *testing.T) {
	cfg := Config{
		"enabled":    Bool(true),
		"count":      Int(128),
		"spawn_rate": Float(42.5),
		"tint":       Color(f32.Vec4{0.2, 0.4, 0.6, 1}),
		"mode":       Choice("orbit"),
	}

	if got := cfg.Bool("enabled", false); got != true {
		t.Errorf("Bool = %t, want true", got)
	}
	if got := cfg.Int("count", 0); got != 128 {
		t.Errorf("Int = %d, want 128", got)
	}
	if got := cfg.Float("spawn_rate", 0); math.Abs(float64(got-42.5)) > 1e-6 {
		t.Errorf("Float = %g, want 42.5", got)
	}
	want := f32.Vec4{0.2, 0.4, 0.6, 1}
	if got := cfg.Color("tint", f32.Vec4{}); got != want {
		t.Errorf("Color = %v, want %v", got, want)
	}
	if got := cfg.Choice("mode", "swarm", "swarm", "orbit"); got != "orbit" {
		t.Errorf("Choice = %q, want %q", got, "orbit")
	}
}

func TestConfigDefaultsOnMissingOrMistyped(t *testing.T) {
	cfg := Config{
		"count": Choice("not a number"),
	}

	if got := cfg.Int("count", 7); got != 7 {
		t.Errorf("mistyped Int = %d, want default 7", got)
	}
	if got := cfg.Float("absent", 1.5); got != 1.5 {
		t.Errorf("missing Float = %g, want default 1.5", got)
	}
	if got := cfg.Bool("absent", true); got != true {
		t.Errorf("missing Bool = %t, want default true", got)
	}
	if got := cfg.Choice("absent", "a", "a", "b"); got != "a" {
		t.Errorf("missing Choice = %q, want %q", got, "a")
	}
}

func TestIntCoercesIntoFloatSlot(t *testing.T) {
	cfg := Config{"size": Int(12)}
	if got := cfg.Float("size", 0); got != 12 {
		t.Errorf("Float from int = %g, want 12", got)
	}
	// The reverse coercion is not permitted.
	cfg = Config{"size": Float(12)}
	if got := cfg.Int("size", -1); got != -1 {
		t.Errorf("Int from float = %d, want default -1", got)
	}
}

func TestClampedGetters(t *testing.T) {
	cfg := Config{
		"rate":  Float(10000),
		"count": Int(-5),
	}
	if got := cfg.FloatClamped("rate", 1, 0, 500); got != 500 {
		t.Errorf("FloatClamped = %g, want 500", got)
	}
	if got := cfg.IntClamped("count", 10, 1, 256); got != 1 {
		t.Errorf("IntClamped = %d, want 1", got)
	}
	// Color components saturate into [0, 1].
	cfg["tint"] = Color(f32.Vec4{2, -1, 0.5, 3})
	want := f32.Vec4{1, 0, 0.5, 1}
	if got := cfg.Color("tint", f32.Vec4{}); got != want {
		t.Errorf("Color = %v, want %v", got, want)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Config{"count": Int(4)}
	cp := orig.Clone()
	orig["count"] = Int(9)
	orig["extra"] = Bool(true)

	if got := cp.Int("count", 0); got != 4 {
		t.Errorf("clone saw mutation: count = %d, want 4", got)
	}
	if _, present := cp["extra"]; present {
		t.Error("clone saw key added to original")
	}
}

func TestChoiceRejectsUnknownOption(t *testing.T) {
	cfg := Config{"mode": Choice("bogus")}
	if got := cfg.Choice("mode", "swarm", "swarm", "orbit"); got != "swarm" {
		t.Errorf("Choice = %q, want default %q", got, "swarm")
	}
}

func TestSchemaDefaults(t *testing.T) {
	s := Schema{
		{Key: "rate", Default: Float(120), Min: 0, Max: 1000, Step: 10},
		{Key: "enabled", Default: Bool(true)},
	}
	cfg := s.Defaults()
	if got := cfg.Float("rate", 0); got != 120 {
		t.Errorf("default rate = %g, want 120", got)
	}
	if got := cfg.Bool("enabled", false); !got {
		t.Error("default enabled = false, want true")
	}
	if _, ok := s.Entry("rate"); !ok {
		t.Error("Entry(rate) not found")
	}
	if _, ok := s.Entry("nope"); ok {
		t.Error("Entry(nope) unexpectedly found")
	}
}

func TestPresetFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	pf := &PresetFile{
		Presets: []Preset{
			{
				Name:    "default sparkles",
				Effect:  "sparkle",
				Order:   10,
				Enabled: true,
				Settings: Config{
					"spawn_rate": Float(90),
					"burst":      Int(24),
					"glow":       Bool(true),
					"tint":       Color(f32.Vec4{1, 0.8, 0.2, 1}),
					"blend":      Choice("additive"),
				},
			},
		},
	}

	if err := SavePresets(path, pf); err != nil {
		t.Fatalf("SavePresets: %v", err)
	}
	loaded, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	if len(loaded.Presets) != 1 {
		t.Fatalf("got %d presets, want 1", len(loaded.Presets))
	}
	got := loaded.Presets[0]
	if got.Name != "default sparkles" || got.Effect != "sparkle" || got.Order != 10 || !got.Enabled {
		t.Errorf("preset header mismatch: %+v", got)
	}
	if v := got.Settings.Float("spawn_rate", 0); v != 90 {
		t.Errorf("spawn_rate = %g, want 90", v)
	}
	if v := got.Settings.Int("burst", 0); v != 24 {
		t.Errorf("burst = %d, want 24", v)
	}
	if v := got.Settings.Choice("blend", "", "additive", "alpha"); v != "additive" {
		t.Errorf("blend = %q, want additive", v)
	}
	want := f32.Vec4{1, 0.8, 0.2, 1}
	if v := got.Settings.Color("tint", f32.Vec4{}); v != want {
		t.Errorf("tint = %v, want %v", v, want)
	}
}
