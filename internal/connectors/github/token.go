package github

import (
	"context"

	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
)

// Ensure StaticTokenProvider implements the interface.
var _ driven.TokenProvider = StaticTokenProvider("")

// StaticTokenProvider serves a fixed personal access token.
// The empty token means anonymous access.
type StaticTokenProvider string

// GetToken returns the token.
func (p StaticTokenProvider) GetToken(_ context.Context) (string, error) {
	return string(p), nil
}

// IsAuthenticated reports whether a token is set.
func (p StaticTokenProvider) IsAuthenticated() bool {
	return p != ""
}
