package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reveal-cli/internal/logger"
)

// Scheme is the locator scheme served by this adapter.
const Scheme = "github"

// Element names.
const (
	ElementCommits  = "commits"
	ElementIssues   = "issues"
	ElementPulls    = "pulls"
	ElementReleases = "releases"
	ElementBranches = "branches"
)

var elementDescriptions = []struct{ name, description string }{
	{ElementCommits, "Recent commits on the default branch"},
	{ElementIssues, "Issues in every state, pull requests excluded"},
	{ElementPulls, "Pull requests in every state"},
	{ElementReleases, "Published and draft releases"},
	{ElementBranches, "Branches and their head commits"},
}

// Ensure Adapter implements the interfaces.
var (
	_ driven.Adapter           = (*Adapter)(nil)
	_ driven.LocatorNormalizer = (*Adapter)(nil)
)

// Adapter reads repositories from the GitHub REST API.
type Adapter struct {
	client *Client
}

// New creates a github adapter from its settings.
func New(settings domain.GitHubSettings, opts ...ClientOption) *Adapter {
	options := []ClientOption{WithMaxPages(settings.MaxPages)}
	if settings.BaseURL != "" {
		options = append(options, WithBaseURL(settings.BaseURL))
	}
	options = append(options, opts...)
	return &Adapter{client: NewClient(StaticTokenProvider(settings.Token), options...)}
}

// Scheme returns "github".
func (a *Adapter) Scheme() string {
	return Scheme
}

// DescribeCapabilities returns the adapter's descriptor.
func (a *Adapter) DescribeCapabilities() domain.Capabilities {
	return domain.Capabilities{
		Scheme:            Scheme,
		Description:       "GitHub users, organisations and repositories",
		Structure:         true,
		Element:           true,
		AvailableElements: true,
		Schema: []domain.FieldSchema{
			{Name: "fullName", Type: "string", Description: "owner/repo"},
			{Name: "language", Type: "string"},
			{Name: "stars", Type: "int"},
			{Name: "forks", Type: "int"},
			{Name: "openIssues", Type: "int"},
			{Name: "number", Type: "int", Description: "issues and pulls"},
			{Name: "state", Type: "string", Description: "open, closed or merged"},
			{Name: "author", Type: "string"},
			{Name: "labels", Type: "[]string"},
			{Name: "createdAt", Type: "time"},
			{Name: "updatedAt", Type: "time"},
		},
		Examples: []string{
			"github://golang",
			"github://golang/go",
			"github://golang/go/issues?state=open&labels=NeedsFix",
			"github://golang/go/pulls?state=merged&sort=-updatedAt&limit=10",
		},
	}
}

// NormalizeLocator moves the repository name from the element into the
// resource, so github://owner/repo/issues addresses the issues element of
// owner/repo.
func (a *Adapter) NormalizeLocator(loc domain.Locator) (domain.Locator, error) {
	owner := strings.Trim(loc.Resource, "/")
	if owner == "" {
		return loc, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrMissingOwner)
	}

	repo, element, _ := strings.Cut(strings.Trim(loc.Element, "/"), "/")
	normalized := loc.WithElement(element)
	normalized.Resource = owner
	if repo != "" {
		normalized.Resource = owner + "/" + repo
	}
	return normalized, nil
}

// ResolveStructure lists an owner's repositories, or summarises one
// repository.
func (a *Adapter) ResolveStructure(ctx context.Context, loc domain.Locator) (domain.AdapterResult, error) {
	owner, repo := splitResource(loc.Resource)

	if repo == "" {
		repos, err := a.client.ListRepos(ctx, owner)
		if err != nil {
			return domain.AdapterResult{}, err
		}
		items := make([]*domain.Object, len(repos))
		for i, r := range repos {
			items[i] = repoItem(r)
		}
		logger.Debug("github: %d repositories for %s", len(items), owner)
		return domain.SequenceResult(items), nil
	}

	repository, err := a.client.GetRepository(ctx, owner, repo)
	if err != nil {
		if IsNotFound(err) {
			return domain.AdapterResult{}, fmt.Errorf("%w: %s/%s", ErrRepoNotFound, owner, repo)
		}
		return domain.AdapterResult{}, err
	}
	return domain.SingleResult(repoSummary(repository)), nil
}

// ResolveElement lists one kind of repository sub-resource.
func (a *Adapter) ResolveElement(ctx context.Context, loc domain.Locator, name string) (*domain.AdapterResult, error) {
	owner, repo := splitResource(loc.Resource)
	if repo == "" {
		return nil, nil
	}

	items, err := a.listElement(ctx, owner, repo, name)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrRepoNotFound, owner, repo)
		}
		return nil, err
	}
	if items == nil {
		return nil, nil
	}

	result := domain.SequenceResult(items)
	return &result, nil
}

// ListAvailableElements returns the repository elements. An owner alone
// has none.
func (a *Adapter) ListAvailableElements(_ context.Context, loc domain.Locator) ([]domain.ElementInfo, error) {
	_, repo := splitResource(loc.Resource)
	if repo == "" {
		return []domain.ElementInfo{}, nil
	}

	infos := make([]domain.ElementInfo, len(elementDescriptions))
	for i, e := range elementDescriptions {
		infos[i] = domain.ElementInfo{
			Name:        e.name,
			Description: e.description,
			Example:     Scheme + "://" + loc.Resource + "/" + e.name,
		}
	}
	return infos, nil
}

func splitResource(resource string) (owner, repo string) {
	owner, repo, _ = strings.Cut(resource, "/")
	return owner, repo
}

// listElement fetches and converts one element. It returns nil items for
// an unknown element name.
func (a *Adapter) listElement(ctx context.Context, owner, repo, name string) ([]*domain.Object, error) {
	switch name {
	case ElementCommits:
		commits, err := a.client.ListCommits(ctx, owner, repo)
		return convert(commits, err, commitItem)
	case ElementIssues:
		issues, err := a.client.ListIssues(ctx, owner, repo)
		return convert(issues, err, issueItem)
	case ElementPulls:
		pulls, err := a.client.ListPullRequests(ctx, owner, repo)
		return convert(pulls, err, pullItem)
	case ElementReleases:
		releases, err := a.client.ListReleases(ctx, owner, repo)
		return convert(releases, err, releaseItem)
	case ElementBranches:
		branches, err := a.client.ListBranches(ctx, owner, repo)
		return convert(branches, err, branchItem)
	}
	return nil, nil
}

func convert[T any](list []T, err error, fn func(T) *domain.Object) ([]*domain.Object, error) {
	if err != nil {
		return nil, err
	}
	items := make([]*domain.Object, len(list))
	for i, v := range list {
		items[i] = fn(v)
	}
	return items, nil
}
