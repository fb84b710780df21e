package driven

// ConfigStore is the flat, dot-keyed view of the settings file
// (e.g. "completion.provider"). Typed getters return the zero value when a
// key is missing or holds another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int

	// Set stores value under key and persists it before returning.
	Set(key string, value any) error

	// Path names the backing file, for display.
	Path() string
}
