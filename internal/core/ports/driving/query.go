package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

// QueryService runs one locator through the full pipeline.
type QueryService interface {
	// Query parses, dispatches, filters, orders, projects and budgets.
	Query(ctx context.Context, raw string) (*domain.Envelope, error)
}

// BatchService runs many locators with per-locator failure isolation.
type BatchService interface {
	// Run reads one locator per line from r and calls emit for each record
	// in input order. Returns the aggregated summary.
	Run(ctx context.Context, r io.Reader, emit func(domain.BatchRecord)) (domain.BatchSummary, error)

	// RunLocators is Run over an in-memory list.
	RunLocators(ctx context.Context, locators []string, emit func(domain.BatchRecord)) domain.BatchSummary
}

// SchemeRegistry exposes adapter descriptors to the CLI and MCP server.
type SchemeRegistry interface {
	// List returns every registered adapter's capabilities, sorted by scheme.
	List() []domain.Capabilities

	// Describe returns one adapter's capabilities.
	Describe(scheme string) (*domain.Capabilities, error)
}
