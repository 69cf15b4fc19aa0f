package settings

// Entry describes one configurable key for an external settings UI: its default
// and, for numeric kinds, the slider range and step. The core never enforces the
// range itself — Config getters clamp — so a UI rendering stale metadata cannot
// push an effect into a failing state.
type Entry struct {
	// Key is the Config key this entry describes.
	Key string

	// Label is a human-readable name for UI display.
	Label string

	// Default is the value applied when the key is absent.
	Default Value

	// Min, Max and Step bound the UI control for int and float kinds.
	// Ignored for other kinds.
	Min, Max, Step float32

	// Choices lists the allowed options for KindChoice entries.
	Choices []string
}

// Schema is the ordered list of configurable keys an effect exposes.
// Ordering is preserved so UIs render controls in a stable author-chosen order.
type Schema []Entry

// Defaults builds a Config holding every entry's default value.
//
// Returns:
//   - Config: a fresh Config with one entry per schema key
func (s Schema) Defaults() Config {
	cfg := make(Config, len(s))
	for _, e := range s {
		cfg[e.Key] = e.Default
	}
	return cfg
}

// Entry looks up the schema entry for a key.
//
// Parameters:
//   - key: the Config key to look up
//
// Returns:
//   - Entry: the entry for the key, zero-valued if not present
//   - bool: true if the key is described by this schema
func (s Schema) Entry(key string) (Entry, bool) {
	for _, e := range s {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}
