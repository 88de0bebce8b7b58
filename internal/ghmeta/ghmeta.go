// Package ghmeta talks to the GitHub API: repository search for the listing and
// live process attributes for analyzed repositories.
package ghmeta

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v76/github"

	"github.com/huangsam/repoquality/schema"
)

// Search defaults.
const (
	DefaultPerPage   = 100
	DefaultPageDelay = 2 * time.Second
)

// Client wraps a go-github client.
type Client struct {
	gh            *github.Client
	authenticated bool
	PageDelay     time.Duration // pause between search pages
}

// NewClient creates a client, authenticated when token is not empty.
func NewClient(token string) *Client {
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	return &Client{gh: gh, authenticated: token != "", PageDelay: DefaultPageDelay}
}

// NewClientFrom wraps an existing go-github client.
func NewClientFrom(gh *github.Client) *Client {
	return &Client{gh: gh}
}

// Authenticated reports whether requests carry a token.
func (c *Client) Authenticated() bool {
	return c.authenticated
}

// FetchMetadata returns the current process attributes of owner/name, including the release count.
func (c *Client) FetchMetadata(ctx context.Context, fullName string) (schema.ProcessMetadata, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return schema.ProcessMetadata{}, fmt.Errorf("invalid repository name %q", fullName)
	}
	repo, _, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return schema.ProcessMetadata{}, fmt.Errorf("Repositories.Get failed: %w", err)
	}
	releases, err := c.CountReleases(ctx, owner, name)
	if err != nil {
		return schema.ProcessMetadata{}, err
	}
	return schema.ProcessMetadata{
		Stars:      repo.GetStargazersCount(),
		Forks:      repo.GetForksCount(),
		SizeKB:     repo.GetSize(),
		OpenIssues: repo.GetOpenIssuesCount(),
		Releases:   releases,
		CreatedAt:  repo.GetCreatedAt().Time,
		UpdatedAt:  repo.GetUpdatedAt().Time,
	}, nil
}

// CountReleases asks for one release per page and reads the count off the last page number.
func (c *Client) CountReleases(ctx context.Context, owner, name string) (int, error) {
	releases, resp, err := c.gh.Repositories.ListReleases(ctx, owner, name, &github.ListOptions{PerPage: 1})
	if err != nil {
		return 0, fmt.Errorf("Repositories.ListReleases failed: %w", err)
	}
	if resp != nil && resp.LastPage > 0 {
		return resp.LastPage, nil
	}
	return len(releases), nil
}

// SearchRepositories runs query sorted by stars, descending, over the given number of pages.
// On an API error the descriptors from earlier pages are returned along with the error.
func (c *Client) SearchRepositories(ctx context.Context, query string, pages int, perPage int) ([]schema.RepositoryDescriptor, error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	var out []schema.RepositoryDescriptor
	for page := 1; page <= pages; page++ {
		if page > 1 && c.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(c.PageDelay):
			}
		}
		result, _, err := c.gh.Search.Repositories(ctx, query, &github.SearchOptions{
			Sort:        "stars",
			Order:       "desc",
			ListOptions: github.ListOptions{PerPage: perPage, Page: page},
		})
		if err != nil {
			return out, fmt.Errorf("search page %d failed: %w", page, err)
		}
		for _, r := range result.Repositories {
			out = append(out, Descriptor(r))
		}
		if len(result.Repositories) < perPage {
			break
		}
	}
	return out, nil
}

// Descriptor converts an API repository into a listing descriptor.
func Descriptor(r *github.Repository) schema.RepositoryDescriptor {
	return schema.RepositoryDescriptor{
		FullName:      r.GetFullName(),
		HTMLURL:       r.GetHTMLURL(),
		CloneURL:      r.GetCloneURL(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		CreatedAt:     r.GetCreatedAt().Time,
		UpdatedAt:     r.GetUpdatedAt().Time,
		SizeKB:        r.GetSize(),
		Language:      r.GetLanguage(),
		OpenIssues:    r.GetOpenIssuesCount(),
		DefaultBranch: r.GetDefaultBranch(),
	}
}
