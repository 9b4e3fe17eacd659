package github

import (
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

func repoSummary(r *gh.Repository) *domain.Object {
	license := ""
	if r.License != nil {
		license = r.GetLicense().GetSPDXID()
	}
	return domain.NewObject().
		Set("fullName", r.GetFullName()).
		Set("description", r.GetDescription()).
		Set("private", r.GetPrivate()).
		Set("fork", r.GetFork()).
		Set("archived", r.GetArchived()).
		Set("defaultBranch", r.GetDefaultBranch()).
		Set("language", r.GetLanguage()).
		Set("stars", r.GetStargazersCount()).
		Set("forks", r.GetForksCount()).
		Set("watchers", r.GetSubscribersCount()).
		Set("openIssues", r.GetOpenIssuesCount()).
		Set("topics", stringList(r.Topics)).
		Set("license", license).
		Set("createdAt", timestamp(r.GetCreatedAt())).
		Set("updatedAt", timestamp(r.GetUpdatedAt())).
		Set("pushedAt", timestamp(r.GetPushedAt())).
		Set("url", r.GetHTMLURL())
}

func repoItem(r *gh.Repository) *domain.Object {
	return domain.NewObject().
		Set("name", r.GetName()).
		Set("fullName", r.GetFullName()).
		Set("description", r.GetDescription()).
		Set("language", r.GetLanguage()).
		Set("stars", r.GetStargazersCount()).
		Set("forks", r.GetForksCount()).
		Set("private", r.GetPrivate()).
		Set("fork", r.GetFork()).
		Set("archived", r.GetArchived()).
		Set("updatedAt", timestamp(r.GetUpdatedAt()))
}

func commitItem(c *gh.RepositoryCommit) *domain.Object {
	commit := c.GetCommit()
	message := commit.GetMessage()
	subject, _, _ := strings.Cut(message, "\n")
	author := c.GetAuthor().GetLogin()
	if author == "" {
		author = commit.GetAuthor().GetName()
	}
	return domain.NewObject().
		Set("sha", c.GetSHA()).
		Set("subject", subject).
		Set("message", message).
		Set("author", author).
		Set("email", commit.GetAuthor().GetEmail()).
		Set("date", timestamp(commit.GetAuthor().GetDate())).
		Set("url", c.GetHTMLURL())
}

func issueItem(i *gh.Issue) *domain.Object {
	labels := make([]any, len(i.Labels))
	for n, l := range i.Labels {
		labels[n] = l.GetName()
	}
	assignees := make([]any, len(i.Assignees))
	for n, a := range i.Assignees {
		assignees[n] = a.GetLogin()
	}
	return domain.NewObject().
		Set("number", i.GetNumber()).
		Set("title", i.GetTitle()).
		Set("state", i.GetState()).
		Set("author", i.GetUser().GetLogin()).
		Set("labels", labels).
		Set("assignees", assignees).
		Set("comments", i.GetComments()).
		Set("milestone", i.GetMilestone().GetTitle()).
		Set("createdAt", timestamp(i.GetCreatedAt())).
		Set("updatedAt", timestamp(i.GetUpdatedAt())).
		Set("closedAt", timestamp(i.GetClosedAt())).
		Set("url", i.GetHTMLURL())
}

func pullItem(pr *gh.PullRequest) *domain.Object {
	labels := make([]any, len(pr.Labels))
	for n, l := range pr.Labels {
		labels[n] = l.GetName()
	}

	// Determine effective state.
	state := pr.GetState()
	if pr.MergedAt != nil {
		state = "merged"
	}

	return domain.NewObject().
		Set("number", pr.GetNumber()).
		Set("title", pr.GetTitle()).
		Set("state", state).
		Set("draft", pr.GetDraft()).
		Set("author", pr.GetUser().GetLogin()).
		Set("head", pr.GetHead().GetRef()).
		Set("base", pr.GetBase().GetRef()).
		Set("labels", labels).
		Set("createdAt", timestamp(pr.GetCreatedAt())).
		Set("updatedAt", timestamp(pr.GetUpdatedAt())).
		Set("mergedAt", timestamp(pr.GetMergedAt())).
		Set("url", pr.GetHTMLURL())
}

func releaseItem(r *gh.RepositoryRelease) *domain.Object {
	return domain.NewObject().
		Set("tag", r.GetTagName()).
		Set("name", r.GetName()).
		Set("draft", r.GetDraft()).
		Set("prerelease", r.GetPrerelease()).
		Set("author", r.GetAuthor().GetLogin()).
		Set("assets", len(r.Assets)).
		Set("createdAt", timestamp(r.GetCreatedAt())).
		Set("publishedAt", timestamp(r.GetPublishedAt())).
		Set("url", r.GetHTMLURL())
}

func branchItem(b *gh.Branch) *domain.Object {
	return domain.NewObject().
		Set("name", b.GetName()).
		Set("protected", b.GetProtected()).
		Set("sha", b.GetCommit().GetSHA())
}

// timestamp renders t as RFC 3339 in UTC, or nil when unset.
func timestamp(t gh.Timestamp) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func stringList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
