package driven

import "context"

// TokenProvider supplies the bearer token for adapters that call
// authenticated APIs. An empty token means anonymous access.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
	IsAuthenticated() bool
}
