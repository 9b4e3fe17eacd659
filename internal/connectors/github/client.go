package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// PerPage is the page size for every listing.
	PerPage = 100

	// DefaultMaxPages bounds listings when no limit is configured.
	DefaultMaxPages = 3
)

// Client wraps the go-github client with throttling and bounded paging.
type Client struct {
	mu            sync.Mutex
	gh            *gh.Client
	tokenProvider driven.TokenProvider
	throttle      *Throttle
	baseURL       string
	maxPages      int
	httpClient    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a GitHub Enterprise API root.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithMaxPages bounds how many pages a listing fetches.
func WithMaxPages(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithThrottle replaces the default throttle.
func WithThrottle(t *Throttle) ClientOption {
	return func(c *Client) { c.throttle = t }
}

// WithHTTPClient sets the transport used for anonymous access.
// Authenticated clients wrap its transport with the token source.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new GitHub API client with a token provider.
func NewClient(tokenProvider driven.TokenProvider, opts ...ClientOption) *Client {
	c := &Client{
		tokenProvider: tokenProvider,
		throttle:      NewThrottle(DefaultPace, 1),
		maxPages:      DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ensureClient initializes the go-github client if not already done.
// This is called lazily so the token is only read when a query needs it.
func (c *Client) ensureClient(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gh != nil {
		return nil
	}

	base := c.httpClient
	if base == nil {
		base = &http.Client{Timeout: DefaultTimeout}
	}

	httpClient := base
	if c.tokenProvider != nil && c.tokenProvider.IsAuthenticated() {
		token, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("get token: %w", err)
		}
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), ts)
		tc.Timeout = base.Timeout
		httpClient = tc
	}

	client := gh.NewClient(httpClient)
	if c.baseURL != "" {
		var err error
		if client, err = client.WithEnterpriseURLs(c.baseURL, c.baseURL); err != nil {
			return fmt.Errorf("github base url: %w", err)
		}
	}
	c.gh = client

	return nil
}

// GetRepository fetches a single repository.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*gh.Repository, error) {
	if err := c.ensureClient(ctx); err != nil {
		return nil, err
	}

	if err := c.throttle.Acquire(ctx); err != nil {
		return nil, err
	}

	repository, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	c.observe(resp)
	if err != nil {
		return nil, c.wrapError(err, "get repo")
	}
	return repository, nil
}

// ListRepos lists repositories owned by a user or organisation.
func (c *Client) ListRepos(ctx context.Context, owner string) ([]*gh.Repository, error) {
	opts := &gh.RepositoryListByUserOptions{
		Type:        "owner",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: PerPage},
	}
	return collect(ctx, c, "list repos", &opts.ListOptions, func() ([]*gh.Repository, *gh.Response, error) {
		return c.gh.Repositories.ListByUser(ctx, owner, opts)
	})
}

// ListCommits lists commits on the default branch, newest first.
func (c *Client) ListCommits(ctx context.Context, owner, repo string) ([]*gh.RepositoryCommit, error) {
	opts := &gh.CommitsListOptions{ListOptions: gh.ListOptions{PerPage: PerPage}}
	return collect(ctx, c, "list commits", &opts.ListOptions, func() ([]*gh.RepositoryCommit, *gh.Response, error) {
		return c.gh.Repositories.ListCommits(ctx, owner, repo, opts)
	})
}

// ListIssues lists issues in every state. Pull requests are excluded.
func (c *Client) ListIssues(ctx context.Context, owner, repo string) ([]*gh.Issue, error) {
	opts := &gh.IssueListByRepoOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: PerPage},
	}
	all, err := collect(ctx, c, "list issues", &opts.ListOptions, func() ([]*gh.Issue, *gh.Response, error) {
		return c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
	})
	if err != nil {
		return nil, err
	}

	issues := make([]*gh.Issue, 0, len(all))
	for _, issue := range all {
		// Skip pull requests (they show up in issues endpoint too).
		if issue.IsPullRequest() {
			continue
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// ListPullRequests lists pull requests in every state.
func (c *Client) ListPullRequests(ctx context.Context, owner, repo string) ([]*gh.PullRequest, error) {
	opts := &gh.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: PerPage},
	}
	return collect(ctx, c, "list pull requests", &opts.ListOptions, func() ([]*gh.PullRequest, *gh.Response, error) {
		return c.gh.PullRequests.List(ctx, owner, repo, opts)
	})
}

// ListReleases lists releases, newest first.
func (c *Client) ListReleases(ctx context.Context, owner, repo string) ([]*gh.RepositoryRelease, error) {
	opts := &gh.ListOptions{PerPage: PerPage}
	return collect(ctx, c, "list releases", opts, func() ([]*gh.RepositoryRelease, *gh.Response, error) {
		return c.gh.Repositories.ListReleases(ctx, owner, repo, opts)
	})
}

// ListBranches lists branches.
func (c *Client) ListBranches(ctx context.Context, owner, repo string) ([]*gh.Branch, error) {
	opts := &gh.BranchListOptions{ListOptions: gh.ListOptions{PerPage: PerPage}}
	return collect(ctx, c, "list branches", &opts.ListOptions, func() ([]*gh.Branch, *gh.Response, error) {
		return c.gh.Repositories.ListBranches(ctx, owner, repo, opts)
	})
}

// collect pages through a listing until it ends or maxPages is reached.
// page points into the options fetch uses, so advancing it moves fetch on.
func collect[T any](
	ctx context.Context,
	c *Client,
	operation string,
	page *gh.ListOptions,
	fetch func() ([]T, *gh.Response, error),
) ([]T, error) {
	if err := c.ensureClient(ctx); err != nil {
		return nil, err
	}

	var all []T
	for pages := 0; pages < c.maxPages; pages++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := c.throttle.Acquire(ctx); err != nil {
			return nil, err
		}

		items, resp, err := fetch()
		c.observe(resp)
		if err != nil {
			return nil, c.wrapError(err, operation)
		}
		all = append(all, items...)

		if resp == nil || resp.NextPage == 0 {
			break
		}
		page.Page = resp.NextPage
	}

	return all, nil
}

// Quota returns the allowance GitHub last reported.
func (c *Client) Quota() Quota {
	return c.throttle.Quota()
}

func (c *Client) observe(resp *gh.Response) {
	if resp != nil {
		c.throttle.Observe(resp.Rate)
	}
}

// wrapError maps go-github failures onto RateLimitError and keeps every
// other error wrapped, so StatusCode can still reach the response.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var primary *gh.RateLimitError
	if errors.As(err, &primary) {
		return &RateLimitError{Quota: Quota{
			Limit:     primary.Rate.Limit,
			Remaining: primary.Rate.Remaining,
			Reset:     primary.Rate.Reset.Time,
		}}
	}

	var secondary *gh.AbuseRateLimitError
	if errors.As(err, &secondary) {
		q := Quota{}
		if secondary.RetryAfter != nil {
			q.Reset = time.Now().Add(*secondary.RetryAfter)
		}
		return &RateLimitError{Quota: q, Secondary: true}
	}

	// A 403 or 429 that go-github did not classify still means a spent
	// quota when the headers said so.
	switch StatusCode(err) {
	case http.StatusForbidden, http.StatusTooManyRequests:
		if q := c.throttle.Quota(); q.Spent(time.Now()) {
			return &RateLimitError{Quota: q}
		}
	}

	return fmt.Errorf("%s: %w", operation, err)
}
