package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	envelopes map[string]*domain.Envelope
	err       error
}

func (m *mockQueryService) Query(_ context.Context, raw string) (*domain.Envelope, error) {
	if m.err != nil {
		return nil, m.err
	}
	if env, ok := m.envelopes[raw]; ok {
		return env, nil
	}
	return nil, domain.ErrNotFound
}

// mockBatchService is a mock implementation of driving.BatchService.
type mockBatchService struct {
	records []domain.BatchRecord
	summary domain.BatchSummary
	got     []string
}

func (m *mockBatchService) Run(
	ctx context.Context,
	_ io.Reader,
	emit func(domain.BatchRecord),
) (domain.BatchSummary, error) {
	return m.RunLocators(ctx, nil, emit), nil
}

func (m *mockBatchService) RunLocators(
	_ context.Context,
	locators []string,
	emit func(domain.BatchRecord),
) domain.BatchSummary {
	m.got = locators
	for _, rec := range m.records {
		emit(rec)
	}
	return m.summary
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

func testRegistry() *mockSchemeRegistry {
	return &mockSchemeRegistry{schemes: []domain.Capabilities{
		{Scheme: "env", Description: "Environment variables", Structure: true, Element: true},
		{
			Scheme:      "ssl",
			Description: "TLS certificates",
			Structure:   true,
			Element:     true,
			Examples:    []string{"ssl://example.com/san"},
		},
	}}
}
