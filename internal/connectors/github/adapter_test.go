package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

// newTestAdapter serves mux under the Enterprise API prefix go-github adds.
func newTestAdapter(t *testing.T, mux *http.ServeMux, maxPages int) *Adapter {
	t.Helper()
	server := httptest.NewServer(http.StripPrefix("/api/v3", mux))
	t.Cleanup(server.Close)

	return New(domain.GitHubSettings{BaseURL: server.URL + "/", MaxPages: maxPages},
		WithThrottle(NewThrottle(rate.Inf, 1)),
		WithHTTPClient(server.Client()))
}

func locator(t *testing.T, a *Adapter, raw string) domain.Locator {
	t.Helper()
	loc, err := domain.ParseLocator(raw)
	require.NoError(t, err)
	loc, err = a.NormalizeLocator(loc)
	require.NoError(t, err)
	return loc
}

func TestAdapter_NormalizeLocator(t *testing.T) {
	a := New(domain.GitHubSettings{})

	tests := []struct {
		raw      string
		resource string
		element  string
	}{
		{"github://golang", "golang", ""},
		{"github://golang/go", "golang/go", ""},
		{"github://golang/go/issues", "golang/go", "issues"},
		{"github://golang/go/issues/extra", "golang/go", "issues/extra"},
		{"github://golang/go/?limit=1", "golang/go", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			loc := locator(t, a, tt.raw)
			assert.Equal(t, tt.resource, loc.Resource)
			assert.Equal(t, tt.element, loc.Element)
		})
	}
}

func TestAdapter_NormalizeLocator_MissingOwner(t *testing.T) {
	a := New(domain.GitHubSettings{})
	loc, err := domain.ParseLocator("github://")
	require.NoError(t, err)

	_, err = a.NormalizeLocator(loc)

	assert.ErrorIs(t, err, ErrMissingOwner)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdapter_ResolveStructure_Repository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/golang/go", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"name": "go", "full_name": "golang/go", "description": "The Go programming language",
			"default_branch": "master", "language": "Go", "stargazers_count": 120000,
			"forks_count": 17000, "open_issues_count": 9000, "topics": ["go", "language"],
			"license": {"spdx_id": "BSD-3-Clause"},
			"created_at": "2014-08-19T04:33:40Z", "html_url": "https://github.com/golang/go"
		}`)
	})
	a := newTestAdapter(t, mux, 1)

	result, err := a.ResolveStructure(context.Background(), locator(t, a, "github://golang/go"))

	require.NoError(t, err)
	require.NotNil(t, result.Object)
	out, err := result.Object.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"fullName": "golang/go", "description": "The Go programming language",
		"private": false, "fork": false, "archived": false, "defaultBranch": "master",
		"language": "Go", "stars": 120000, "forks": 17000, "watchers": 0, "openIssues": 9000,
		"topics": ["go", "language"], "license": "BSD-3-Clause",
		"createdAt": "2014-08-19T04:33:40Z", "updatedAt": null, "pushedAt": null,
		"url": "https://github.com/golang/go"
	}`, string(out))
}

func TestAdapter_ResolveStructure_Owner(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/golang/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "owner", r.URL.Query().Get("type"))
		fmt.Fprint(w, `[{"name": "go", "full_name": "golang/go"}, {"name": "tools", "full_name": "golang/tools"}]`)
	})
	a := newTestAdapter(t, mux, 1)

	result, err := a.ResolveStructure(context.Background(), locator(t, a, "github://golang"))

	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	name, _ := result.Items[1].Get("fullName")
	assert.Equal(t, "golang/tools", name)
}

func TestAdapter_ResolveStructure_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/golang/nope", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	a := newTestAdapter(t, mux, 1)

	_, err := a.ResolveStructure(context.Background(), locator(t, a, "github://golang/nope"))

	assert.ErrorIs(t, err, ErrRepoNotFound)
}

func TestAdapter_ResolveElement_Pulls(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		fmt.Fprint(w, `[
			{"number": 2, "title": "Add feature", "state": "closed", "merged_at": "2024-05-01T10:00:00Z",
			 "user": {"login": "alice"}, "head": {"ref": "feature"}, "base": {"ref": "main"}},
			{"number": 1, "title": "WIP", "state": "open", "draft": true,
			 "user": {"login": "bob"}, "head": {"ref": "wip"}, "base": {"ref": "main"}}
		]`)
	})
	a := newTestAdapter(t, mux, 1)

	result, err := a.ResolveElement(context.Background(), locator(t, a, "github://o/r/pulls"), ElementPulls)

	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Items, 2)

	state, _ := result.Items[0].Get("state")
	assert.Equal(t, "merged", state)
	merged, _ := result.Items[0].Get("mergedAt")
	assert.Equal(t, "2024-05-01T10:00:00Z", merged)

	state, _ = result.Items[1].Get("state")
	assert.Equal(t, "open", state)
	draft, _ := result.Items[1].Get("draft")
	assert.Equal(t, true, draft)
	head, _ := result.Items[1].Get("head")
	assert.Equal(t, "wip", head)
}

func TestAdapter_ResolveElement_IssuesExcludePullRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/issues", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[
			{"number": 3, "title": "Bug", "state": "open", "user": {"login": "carol"},
			 "labels": [{"name": "bug"}], "assignees": [{"login": "dave"}], "comments": 4},
			{"number": 2, "title": "A pull request", "state": "open",
			 "pull_request": {"url": "https://api.github.com/repos/o/r/pulls/2"}}
		]`)
	})
	a := newTestAdapter(t, mux, 1)

	result, err := a.ResolveElement(context.Background(), locator(t, a, "github://o/r/issues"), ElementIssues)

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	out, err := result.Items[0].MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"number": 3, "title": "Bug", "state": "open", "author": "carol",
		"labels": ["bug"], "assignees": ["dave"], "comments": 4, "milestone": "",
		"createdAt": null, "updatedAt": null, "closedAt": null, "url": ""
	}`, string(out))
}

func TestAdapter_ResolveElement_CommitsAndBranches(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/commits", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"sha": "abc123", "author": {"login": "alice"},
			"commit": {"message": "Fix parser\n\nLonger body.", "author": {"name": "Alice", "email": "a@example.com", "date": "2024-01-02T03:04:05Z"}}}]`)
	})
	mux.HandleFunc("GET /repos/o/r/branches", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"name": "main", "protected": true, "commit": {"sha": "abc123"}}]`)
	})
	a := newTestAdapter(t, mux, 1)
	loc := locator(t, a, "github://o/r")

	commits, err := a.ResolveElement(context.Background(), loc, ElementCommits)
	require.NoError(t, err)
	require.Len(t, commits.Items, 1)
	subject, _ := commits.Items[0].Get("subject")
	assert.Equal(t, "Fix parser", subject)
	author, _ := commits.Items[0].Get("author")
	assert.Equal(t, "alice", author)
	date, _ := commits.Items[0].Get("date")
	assert.Equal(t, "2024-01-02T03:04:05Z", date)

	branches, err := a.ResolveElement(context.Background(), loc, ElementBranches)
	require.NoError(t, err)
	out, err := branches.Items[0].MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"name":"main","protected":true,"sha":"abc123"}`, string(out))
}

func TestAdapter_ResolveElement_Unknown(t *testing.T) {
	a := newTestAdapter(t, http.NewServeMux(), 1)

	result, err := a.ResolveElement(context.Background(), locator(t, a, "github://o/r/wiki"), "wiki")
	require.NoError(t, err)
	assert.Nil(t, result)

	// Owners have no elements.
	result, err = a.ResolveElement(context.Background(), locator(t, a, "github://o"), ElementIssues)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestAdapter_PaginationBoundedByMaxPages(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/releases", func(w http.ResponseWriter, r *http.Request) {
		calls++
		next := fmt.Sprintf(`<http://%s/api/v3/repos/o/r/releases?page=%d>; rel="next"`, r.Host, calls+1)
		w.Header().Set("Link", next)
		fmt.Fprintf(w, `[{"tag_name": "v%d"}]`, calls)
	})
	a := newTestAdapter(t, mux, 2)

	result, err := a.ResolveElement(context.Background(), locator(t, a, "github://o/r/releases"), ElementReleases)

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, result.Items, 2)
	tag, _ := result.Items[1].Get("tag")
	assert.Equal(t, "v2", tag)
}

func TestAdapter_RateLimited(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/branches", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Reset", "4102444800")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
	})
	a := newTestAdapter(t, mux, 1)

	_, err := a.ResolveElement(context.Background(), locator(t, a, "github://o/r"), ElementBranches)

	assert.True(t, IsRateLimited(err))
}

func TestAdapter_ListAvailableElements(t *testing.T) {
	a := New(domain.GitHubSettings{})

	elements, err := a.ListAvailableElements(context.Background(), locator(t, a, "github://o/r"))
	require.NoError(t, err)
	require.Len(t, elements, 5)
	assert.Equal(t, ElementCommits, elements[0].Name)
	assert.Equal(t, "github://o/r/commits", elements[0].Example)

	elements, err = a.ListAvailableElements(context.Background(), locator(t, a, "github://o"))
	require.NoError(t, err)
	assert.Empty(t, elements)
}

func TestAdapter_DescribeCapabilities(t *testing.T) {
	caps := New(domain.GitHubSettings{}).DescribeCapabilities()

	assert.Equal(t, Scheme, caps.Scheme)
	assert.True(t, caps.Structure)
	assert.True(t, caps.Element)
	assert.True(t, caps.AvailableElements)
	assert.NotEmpty(t, caps.Examples)
}
