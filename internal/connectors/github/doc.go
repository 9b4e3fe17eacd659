// Package github implements the github:// adapter over the GitHub REST API.
//
// # Locators
//
//	github://{owner}                  repositories owned by a user or org
//	github://{owner}/{repo}           repository summary
//	github://{owner}/{repo}/{element} commits, issues, pulls, releases or branches
//
// Listings fetch at most github.max_pages pages of 100 items; filters,
// sorting and budgets then apply to what was fetched.
//
// # Authentication
//
// A personal access token from github.token (or REVEAL_GITHUB_TOKEN, or
// GITHUB_TOKEN) is sent as a bearer token. Without one, requests are
// anonymous and GitHub allows 60 per hour.
//
// # Rate Limiting
//
// A [Throttle] spaces requests at about 1.2 per second and records the
// X-RateLimit headers of every response. While the reported quota is spent,
// calls fail fast with a [RateLimitError] naming the reset time.
//
// # GitHub Enterprise
//
// github.base_url points the client at an Enterprise API root such as
// https://ghe.example.com/api/v3/.
package github
