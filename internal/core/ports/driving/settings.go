package driving

import "github.com/custodia-labs/reveal-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.Settings, error)

	// Set validates and persists one setting by key.
	Set(key, value string) error

	// Unset removes a stored value so its default applies again.
	Unset(key string) error

	// Values returns every known key with its effective value as text.
	Values() []SettingValue

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// ConfigPath returns where settings are persisted.
	ConfigPath() string
}

// SettingValue is one key with its effective value.
type SettingValue struct {
	Key         string
	Value       string
	Description string
	IsDefault   bool
}
