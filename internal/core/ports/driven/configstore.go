package driven

// ConfigStore holds the persisted application settings as dotted keys such as
// "llm.model" or "source.drive.folder_id".
type ConfigStore interface {
	// Get retrieves a value and reports whether the key is set.
	Get(key string) (any, bool)

	// GetString returns "" when the key is unset or not a string.
	GetString(key string) string

	// GetInt returns 0 when the key is unset or not a whole number.
	GetInt(key string) int

	// GetFloat returns 0 when the key is unset or not numeric.
	GetFloat(key string) float64

	// Update applies a batch of values and persists them together. A nil or
	// empty-string value removes the key.
	Update(values map[string]any) error

	// Path describes where the settings live.
	Path() string
}
