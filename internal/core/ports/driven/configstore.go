package driven

// ConfigStore edits the user's config file. Keys use dot notation that maps
// onto the file's tables ("llm.model"). Typed settings are read elsewhere;
// this port only backs the "kbrag config" commands.
type ConfigStore interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (any, bool)

	// Set stores value under key and persists immediately.
	Set(key string, value any) error

	// Unset removes key and persists. Removing a missing key is not an error.
	Unset(key string) error

	// Keys returns every stored key in sorted order.
	Keys() []string

	// Path returns where the values are persisted.
	Path() string
}
