// Package stars fetches GitHub stargazer counts for the repositories an
// organization force-pushed to, with a bounded worker fan-out.
package stars

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/google/go-github/v47/github"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
)

// Count pairs a repository with its stargazer count. Missing repositories
// (deleted, renamed, made private) are reported with Found=false.
type Count struct {
	Org   string
	Repo  string
	Stars int
	Found bool
}

// Counter queries the GitHub API for star counts.
type Counter struct {
	client  *github.Client
	workers int
	logger  hclog.Logger
}

// NewCounter builds a Counter. An empty token means anonymous requests,
// which GitHub throttles hard; callers should pass one when available.
func NewCounter(token string, workers int, logger hclog.Logger) *Counter {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), ts)
	}
	if workers < 1 {
		workers = 1
	}
	return &Counter{
		client:  github.NewClient(hc),
		workers: workers,
		logger:  logger,
	}
}

// CountAll resolves star counts for org/repo pairs concurrently. Results are
// sorted by descending star count, missing repositories last.
func (c *Counter) CountAll(ctx context.Context, org string, repos []string) []Count {
	guard := make(chan struct{}, c.workers)
	results := make([]Count, len(repos))

	var wg sync.WaitGroup
	for i, repo := range repos {
		guard <- struct{}{}
		wg.Add(1)
		go func(i int, repo string) {
			defer wg.Done()
			defer func() { <-guard }()
			results[i] = c.countOne(ctx, org, repo)
		}(i, repo)
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Found != results[j].Found {
			return results[i].Found
		}
		return results[i].Stars > results[j].Stars
	})
	return results
}

func (c *Counter) countOne(ctx context.Context, org, repo string) Count {
	count := Count{Org: org, Repo: repo}

	r, resp, err := c.client.Repositories.Get(ctx, org, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			c.logger.Debug("repository not found", "org", org, "repo", repo)
		} else {
			c.logger.Warn("failed to fetch repository", "org", org, "repo", repo, "error", err)
		}
		return count
	}

	count.Found = true
	count.Stars = r.GetStargazersCount()
	return count
}
