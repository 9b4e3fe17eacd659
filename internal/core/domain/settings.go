package domain

import "time"

// OutputFormat selects how results are rendered.
type OutputFormat string

// Available output formats.
const (
	// FormatAuto picks text on a terminal and JSON otherwise.
	FormatAuto OutputFormat = "auto"

	// FormatJSON emits JSON envelopes.
	FormatJSON OutputFormat = "json"

	// FormatYAML emits YAML documents.
	FormatYAML OutputFormat = "yaml"

	// FormatText emits styled human-readable text.
	FormatText OutputFormat = "text"
)

// IsValid returns true if the format is recognised.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatAuto, FormatJSON, FormatYAML, FormatText:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f OutputFormat) String() string {
	return string(f)
}

// AllOutputFormats returns all supported formats.
func AllOutputFormats() []OutputFormat {
	return []OutputFormat{FormatAuto, FormatJSON, FormatYAML, FormatText}
}

// GitHubSettings configures the github:// adapter.
type GitHubSettings struct {
	// Token is a personal access token. Empty means anonymous access.
	Token string

	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string

	// MaxPages bounds how many 100-item pages a listing fetches.
	MaxPages int
}

// Settings holds the application configuration.
type Settings struct {
	// QueryTimeout is the deadline applied to each adapter call.
	QueryTimeout time.Duration

	// BatchWorkers bounds concurrent locators in batch mode.
	// One means strictly sequential.
	BatchWorkers int

	// OutputFormat is the default renderer.
	OutputFormat OutputFormat

	// DefaultBudget fills budget dimensions a locator leaves unset.
	DefaultBudget BudgetSpec

	GitHub GitHubSettings

	// SQLiteMaxRows caps rows read from one table.
	SQLiteMaxRows int

	// SSLTimeout bounds the TLS handshake.
	SSLTimeout time.Duration

	// NmapPorts is the port range scanned by nmap://.
	NmapPorts string
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		QueryTimeout: 30 * time.Second,
		BatchWorkers: 4,
		OutputFormat: FormatAuto,
		GitHub: GitHubSettings{
			MaxPages: 3,
		},
		SQLiteMaxRows: 10000,
		SSLTimeout:    10 * time.Second,
		NmapPorts:     "1-1024",
	}
}
