package driven

// ConfigStore persists settings under dot-separated keys such as
// "github.token". Values are strings, int64 or bool as read from disk;
// SettingsService owns validation and typing.
type ConfigStore interface {
	// Get returns the stored value for key.
	Get(key string) (any, bool)

	// Set stores and persists one value.
	Set(key string, value any) error

	// Unset removes a key and persists the change. Unknown keys are not
	// an error.
	Unset(key string) error

	// Keys lists stored keys, sorted.
	Keys() []string

	// Path names where values are persisted.
	Path() string
}
