package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/reveal-cli/internal/adapters/driven/config/memory"
	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/services"
)

// mockQueryService answers from a fixed table of envelopes and errors.
type mockQueryService struct {
	envelopes map[string]*domain.Envelope
	errs      map[string]error
	calls     []string
}

func (m *mockQueryService) Query(_ context.Context, raw string) (*domain.Envelope, error) {
	m.calls = append(m.calls, raw)
	if err, ok := m.errs[raw]; ok {
		return nil, err
	}
	if env, ok := m.envelopes[raw]; ok {
		return env, nil
	}
	return nil, &domain.UnknownSchemeError{Scheme: "missing"}
}

// mockSchemeRegistry is a mock implementation of driving.SchemeRegistry.
type mockSchemeRegistry struct {
	schemes []domain.Capabilities
}

func (m *mockSchemeRegistry) List() []domain.Capabilities {
	return m.schemes
}

func (m *mockSchemeRegistry) Describe(scheme string) (*domain.Capabilities, error) {
	for i := range m.schemes {
		if m.schemes[i].Scheme == scheme {
			return &m.schemes[i], nil
		}
	}
	return nil, &domain.UnknownSchemeError{Scheme: scheme}
}

// testEnv is the engine the commands see during a test.
type testEnv struct {
	query    *mockQueryService
	store    *memory.ConfigStore
	settings domain.Settings
	builds   int
}

// setupTestServices wires mock services and an in-memory settings store,
// and resets every flag. The returned cleanup restores the previous wiring.
func setupTestServices() (*testEnv, func()) {
	prevSettings, prevFactory := settingsService, serviceFactory

	env := &testEnv{
		query: &mockQueryService{
			envelopes: map[string]*domain.Envelope{
				"env://HOME": {
					Locator: "env://HOME",
					Result: domain.SingleResult(domain.NewObject().
						Set("name", "HOME").
						Set("value", "/home/ada")),
				},
				"env://?limit=2": {
					Locator: "env://?limit=2",
					Result: domain.SequenceResult([]*domain.Object{
						domain.NewObject().Set("name", "HOME"),
						domain.NewObject().Set("name", "PATH"),
					}),
				},
			},
			errs: map[string]error{
				"env://?limit=-1": &domain.LocatorError{Locator: "env://?limit=-1", Reason: "limit must not be negative"},
				"ssl://down.example.com": domain.NewAdapterExecutionError("ssl", "ssl://down.example.com",
					context.DeadlineExceeded),
			},
		},
		store: memory.NewConfigStore(),
	}

	settingsSvc := services.NewSettingsService(env.store)
	settingsSvc.SetEnvLookup(func(string) (string, bool) { return "", false })

	registry := &mockSchemeRegistry{schemes: []domain.Capabilities{
		{Scheme: "env", Description: "Environment variables", Structure: true, Element: true},
		{
			Scheme:            "github",
			Description:       "GitHub repositories",
			Structure:         true,
			Element:           true,
			AvailableElements: true,
			Schema:            []domain.FieldSchema{{Name: "stars", Type: "int", Description: "Stargazer count"}},
			Examples:          []string{"github://golang/go"},
		},
	}}

	Configure(settingsSvc, func(s domain.Settings) (*Services, error) {
		env.settings = s
		env.builds++
		return &Services{
			Query:   env.query,
			Batch:   services.NewBatchService(env.query, s.BatchWorkers),
			Schemes: registry,
		}, nil
	})
	resetFlags(rootCmd)

	return env, func() {
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		Configure(prevSettings, prevFactory)
	}
}

// resetFlags restores defaults, since cobra keeps flag state between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
