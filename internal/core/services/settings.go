package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driving"
	"github.com/custodia-labs/reveal-cli/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyQueryTimeout    = "query.timeout"
	keyBatchWorkers    = "batch.workers"
	keyOutputFormat    = "output.format"
	keyBudgetItems     = "budget.max_items"
	keyBudgetBytes     = "budget.max_bytes"
	keyBudgetDepth     = "budget.max_depth"
	keyBudgetSnippet   = "budget.max_snippet_chars"
	keyGitHubToken     = "github.token"
	keyGitHubBaseURL   = "github.base_url"
	keyGitHubMaxPages  = "github.max_pages"
	keySQLiteMaxRows   = "sqlite.max_rows"
	keySSLTimeout      = "ssl.timeout"
	keyNmapPorts       = "nmap.ports"
	envPrefix          = "REVEAL_"
	githubTokenEnvName = "GITHUB_TOKEN"
)

type settingKind int

const (
	kindString settingKind = iota
	kindDuration
	kindInt
	kindFormat
)

type settingDef struct {
	key         string
	kind        settingKind
	min         int
	secret      bool
	description string
}

// settingDefs lists every known key in display order.
var settingDefs = []settingDef{
	{key: keyQueryTimeout, kind: kindDuration, description: "Deadline for each adapter call"},
	{key: keyBatchWorkers, kind: kindInt, min: 1, description: "Concurrent locators in batch mode"},
	{key: keyOutputFormat, kind: kindFormat, description: "Default output format (auto, json, yaml, text)"},
	{key: keyBudgetItems, kind: kindInt, description: "Default max-items ceiling"},
	{key: keyBudgetBytes, kind: kindInt, description: "Default max-bytes ceiling"},
	{key: keyBudgetDepth, kind: kindInt, min: 1, description: "Default max-depth ceiling"},
	{key: keyBudgetSnippet, kind: kindInt, min: 1, description: "Default max-snippet-chars ceiling"},
	{key: keyGitHubToken, kind: kindString, secret: true, description: "GitHub personal access token"},
	{key: keyGitHubBaseURL, kind: kindString, description: "GitHub API base URL (Enterprise)"},
	{key: keyGitHubMaxPages, kind: kindInt, min: 1, description: "Pages fetched per GitHub listing"},
	{key: keySQLiteMaxRows, kind: kindInt, min: 1, description: "Rows read from one SQLite table"},
	{key: keySSLTimeout, kind: kindDuration, description: "TLS handshake timeout"},
	{key: keyNmapPorts, kind: kindString, description: "Port range scanned by nmap://"},
}

func findSettingDef(key string) (settingDef, bool) {
	for _, d := range settingDefs {
		if d.key == key {
			return d, true
		}
	}
	return settingDef{}, false
}

// EnvName returns the environment variable that overrides a key,
// e.g. query.timeout -> REVEAL_QUERY_TIMEOUT.
func EnvName(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// SettingsService manages application settings.
// Lookup order is environment, then config file, then defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup. Used by tests.
func (s *SettingsService) SetEnvLookup(lookup func(string) (string, bool)) {
	s.lookupEnv = lookup
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		QueryTimeout: s.getDuration(keyQueryTimeout, defaults.QueryTimeout),
		BatchWorkers: s.getInt(keyBatchWorkers, defaults.BatchWorkers),
		OutputFormat: s.getFormat(defaults.OutputFormat),
		DefaultBudget: domain.BudgetSpec{
			MaxItems:        s.getOptionalInt(keyBudgetItems),
			MaxBytes:        s.getOptionalInt(keyBudgetBytes),
			MaxDepth:        s.getOptionalInt(keyBudgetDepth),
			MaxSnippetChars: s.getOptionalInt(keyBudgetSnippet),
		},
		GitHub: domain.GitHubSettings{
			Token:    s.getGitHubToken(),
			BaseURL:  s.getString(keyGitHubBaseURL, defaults.GitHub.BaseURL),
			MaxPages: s.getInt(keyGitHubMaxPages, defaults.GitHub.MaxPages),
		},
		SQLiteMaxRows: s.getInt(keySQLiteMaxRows, defaults.SQLiteMaxRows),
		SSLTimeout:    s.getDuration(keySSLTimeout, defaults.SSLTimeout),
		NmapPorts:     s.getString(keyNmapPorts, defaults.NmapPorts),
	}

	return settings, nil
}

// Set validates a value and persists it.
func (s *SettingsService) Set(key, value string) error {
	def, ok := findSettingDef(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(def, value)
	if err != nil {
		return err
	}
	return s.configStore.Set(key, parsed)
}

// Unset removes a stored value so the default applies again.
func (s *SettingsService) Unset(key string) error {
	if _, ok := findSettingDef(key); !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return s.configStore.Unset(key)
}

func parseSetting(def settingDef, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch def.kind {
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%w: %s must be a duration like 30s, got %q", domain.ErrInvalidInput, def.key, value)
		}
		return d.String(), nil
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < def.min {
			return nil, fmt.Errorf("%w: %s must be an integer >= %d, got %q", domain.ErrInvalidInput, def.key, def.min, value)
		}
		return int64(n), nil
	case kindFormat:
		f := domain.OutputFormat(value)
		if !f.IsValid() {
			return nil, fmt.Errorf("%w: %s must be one of auto, json, yaml, text, got %q", domain.ErrInvalidInput, def.key, value)
		}
		return f.String(), nil
	}
	return value, nil
}

// Values returns every known key with its effective value.
// Secrets are masked.
func (s *SettingsService) Values() []driving.SettingValue {
	values := make([]driving.SettingValue, 0, len(settingDefs))
	for _, def := range settingDefs {
		raw, found := s.raw(def.key)
		if def.key == keyGitHubToken && !found {
			raw, found = s.lookupEnv(githubTokenEnvName)
		}
		display := raw
		if def.secret && raw != "" {
			display = maskSecret(raw)
		}
		if !found {
			display = s.defaultText(def.key)
		}
		values = append(values, driving.SettingValue{
			Key:         def.key,
			Value:       display,
			Description: def.description,
			IsDefault:   !found,
		})
	}
	return values
}

func (s *SettingsService) defaultText(key string) string {
	d := domain.DefaultSettings()
	switch key {
	case keyQueryTimeout:
		return d.QueryTimeout.String()
	case keyBatchWorkers:
		return strconv.Itoa(d.BatchWorkers)
	case keyOutputFormat:
		return d.OutputFormat.String()
	case keyGitHubMaxPages:
		return strconv.Itoa(d.GitHub.MaxPages)
	case keySQLiteMaxRows:
		return strconv.Itoa(d.SQLiteMaxRows)
	case keySSLTimeout:
		return d.SSLTimeout.String()
	case keyNmapPorts:
		return d.NmapPorts
	}
	return ""
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ConfigPath returns where settings are persisted.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// raw returns a key's value as text from the environment or config store.
func (s *SettingsService) raw(key string) (string, bool) {
	if v, ok := s.lookupEnv(EnvName(key)); ok && v != "" {
		return v, true
	}
	v, ok := s.configStore.Get(key)
	if !ok {
		return "", false
	}
	return fmt.Sprint(v), true
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val, ok := s.raw(key)
	if !ok || val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v := s.getOptionalInt(key); v != nil {
		return *v
	}
	return defaultVal
}

func (s *SettingsService) getOptionalInt(key string) *int {
	val, ok := s.raw(key)
	if !ok {
		return nil
	}
	def, _ := findSettingDef(key)
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n < def.min {
		logger.Warn("Ignoring invalid %s value %q", key, val)
		return nil
	}
	return &n
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	d, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil || d < 0 {
		logger.Warn("Ignoring invalid %s value %q", key, val)
		return defaultVal
	}
	return d
}

func (s *SettingsService) getFormat(defaultVal domain.OutputFormat) domain.OutputFormat {
	val, ok := s.raw(keyOutputFormat)
	if !ok {
		return defaultVal
	}
	format := domain.OutputFormat(val)
	if !format.IsValid() {
		return defaultVal
	}
	return format
}

// getGitHubToken falls back to the conventional GITHUB_TOKEN variable.
func (s *SettingsService) getGitHubToken() string {
	if token := s.getString(keyGitHubToken, ""); token != "" {
		return token
	}
	token, _ := s.lookupEnv(githubTokenEnvName)
	return token
}

func maskSecret(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
