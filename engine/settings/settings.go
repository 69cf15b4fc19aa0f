package settings

import (
	"fmt"

	"github.com/cursorfx/cursorfx/common"
	"golang.org/x/image/math/f32"
)

// Kind identifies the type of value stored in a Value.
type Kind int

const (
	// KindInvalid is the zero Kind; reading a Config key that was never set yields it.
	KindInvalid Kind = iota

	// KindBool holds a boolean toggle.
	KindBool

	// KindInt holds a signed integer.
	KindInt

	// KindFloat holds a 32-bit float.
	KindFloat

	// KindColor holds an RGBA color with components in [0, 1].
	KindColor

	// KindChoice holds one option from an enumerated set, stored as its string name.
	KindChoice
)

// Value is a tagged-union setting value. Effects receive their tunables as flat
// string-keyed maps of these; the explicit tag replaces runtime type probing so
// that a mistyped key is an observable condition rather than a hidden panic.
type Value struct {
	kind Kind

	b bool
	i int
	f float32
	c f32.Vec4
	s string
}

// Bool wraps a boolean in a Value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int wraps an integer in a Value.
func Int(v int) Value { return Value{kind: KindInt, i: v} }

// Float wraps a float in a Value.
func Float(v float32) Value { return Value{kind: KindFloat, f: v} }

// Color wraps an RGBA color in a Value. Components are expected in [0, 1].
func Color(v f32.Vec4) Value { return Value{kind: KindColor, c: v} }

// Choice wraps an enumerated option name in a Value.
func Choice(v string) Value { return Value{kind: KindChoice, s: v} }

// Kind returns the tag identifying which accessor will succeed.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean payload.
//
// Returns:
//   - bool: the stored value, or false if the kind does not match
//   - bool: true if the Value holds a bool
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsInt returns the integer payload.
//
// Returns:
//   - int: the stored value, or 0 if the kind does not match
//   - bool: true if the Value holds an int
func (v Value) AsInt() (int, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the float payload. An int Value converts into a float slot;
// this is the single permitted coercion, covering configs that store whole
// numbers for float-typed tunables.
//
// Returns:
//   - float32: the stored value, or 0 if the kind does not match
//   - bool: true if the Value holds a float or an int
func (v Value) AsFloat() (float32, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float32(v.i), true
	default:
		return 0, false
	}
}

// AsColor returns the RGBA payload.
//
// Returns:
//   - f32.Vec4: the stored color, or the zero color if the kind does not match
//   - bool: true if the Value holds a color
func (v Value) AsColor() (f32.Vec4, bool) {
	if v.kind != KindColor {
		return f32.Vec4{}, false
	}
	return v.c, true
}

// AsChoice returns the enumerated option name.
//
// Returns:
//   - string: the stored option, or "" if the kind does not match
//   - bool: true if the Value holds a choice
func (v Value) AsChoice() (string, bool) {
	if v.kind != KindChoice {
		return "", false
	}
	return v.s, true
}

// String renders the value for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindColor:
		return fmt.Sprintf("rgba(%g, %g, %g, %g)", v.c[0], v.c[1], v.c[2], v.c[3])
	case KindChoice:
		return v.s
	default:
		return "<invalid>"
	}
}

// Config is a flat key→Value map of effect tunables. Effects never read a Config
// supplied by the caller directly; Configure stores a Clone so later mutation of
// the original map cannot be observed mid-frame.
//
// All getters tolerate missing or mistyped keys by returning the supplied default,
// never by erroring: a stale preset written by an older version must degrade to
// defaults, not break the effect.
type Config map[string]Value

// Clone returns a deep copy of the Config. Value has no reference-typed fields,
// so copying the map entries is a full deep copy.
//
// Returns:
//   - Config: an independent copy, never nil
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Bool reads a boolean key, returning def when missing or mistyped.
func (c Config) Bool(key string, def bool) bool {
	if v, ok := c[key].AsBool(); ok {
		return v
	}
	return def
}

// Int reads an integer key, returning def when missing or mistyped.
func (c Config) Int(key string, def int) int {
	if v, ok := c[key].AsInt(); ok {
		return v
	}
	return def
}

// IntClamped reads an integer key and saturates it into [lo, hi].
// Out-of-range values are clamped rather than rejected.
func (c Config) IntClamped(key string, def, lo, hi int) int {
	v := c.Int(key, def)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Float reads a float key (accepting int values), returning def when missing or mistyped.
func (c Config) Float(key string, def float32) float32 {
	if v, ok := c[key].AsFloat(); ok {
		return v
	}
	return def
}

// FloatClamped reads a float key and saturates it into [lo, hi].
// Out-of-range values are clamped rather than rejected.
func (c Config) FloatClamped(key string, def, lo, hi float32) float32 {
	return common.Clamp(c.Float(key, def), lo, hi)
}

// Color reads a color key, returning def when missing or mistyped.
// Components are saturated into [0, 1].
func (c Config) Color(key string, def f32.Vec4) f32.Vec4 {
	v, ok := c[key].AsColor()
	if !ok {
		return def
	}
	for i := range v {
		v[i] = common.Saturate(v[i])
	}
	return v
}

// Choice reads an enumerated key. The value must be one of allowed; anything
// else (including a missing or mistyped key) yields def.
func (c Config) Choice(key, def string, allowed ...string) string {
	v, ok := c[key].AsChoice()
	if !ok {
		return def
	}
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return def
}
