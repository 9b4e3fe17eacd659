package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
)

var (
	// ErrMissingOwner indicates a locator without an owner.
	ErrMissingOwner = errors.New("github: locator needs an owner, as in github://owner/repo")

	// ErrRepoNotFound indicates the repository was not found or is not accessible.
	ErrRepoNotFound = errors.New("github: repository not found")
)

// RateLimitError reports an exhausted quota or a secondary rate limit.
type RateLimitError struct {
	Quota Quota

	// Secondary is set for abuse-detection limits, which reset after
	// Retry-After rather than at the hourly boundary.
	Secondary bool
}

func (e *RateLimitError) Error() string {
	kind := "rate limit"
	if e.Secondary {
		kind = "secondary rate limit"
	}
	if e.Quota.Reset.IsZero() {
		return fmt.Sprintf("github: %s exceeded", kind)
	}
	return fmt.Sprintf("github: %s exceeded, resets at %s", kind, e.Quota.Reset.UTC().Format(time.RFC3339))
}

// StatusCode returns the HTTP status behind a GitHub API error, or 0.
func StatusCode(err error) int {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	return 0
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound || errors.Is(err, ErrRepoNotFound)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var limited *RateLimitError
	return errors.As(err, &limited)
}
