// Package github is a minimal client for the repository and branch
// lookups the task creation form needs. Only search and branch listing
// are implemented; everything else about the hosting provider is out of
// scope.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.github.com"

// Repo identifies one repository returned by search.
type Repo struct {
	FullName    string `json:"fullName"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
}

// Branches is the branch inventory of one repository.
type Branches struct {
	Names   []string `json:"names"`
	Default string   `json:"default"`
}

// Client queries the GitHub REST API. The token is optional; without it
// requests run against the unauthenticated rate limit.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client. An empty baseURL selects api.github.com.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SearchRepos returns repositories matching a free-text query, most
// starred first.
func (c *Client) SearchRepos(ctx context.Context, query string, limit int) ([]Repo, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("sort", "stars")
	q.Set("order", "desc")
	q.Set("per_page", fmt.Sprintf("%d", limit))

	var resp struct {
		Items []struct {
			FullName    string `json:"full_name"`
			Description string `json:"description"`
			Stars       int    `json:"stargazers_count"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/search/repositories?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	repos := make([]Repo, 0, len(resp.Items))
	for _, item := range resp.Items {
		repos = append(repos, Repo{
			FullName:    item.FullName,
			Description: item.Description,
			Stars:       item.Stars,
		})
	}
	return repos, nil
}

// ListBranches returns the branch names and default branch of a
// repository given as "owner/name".
func (c *Client) ListBranches(ctx context.Context, fullName string) (Branches, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return Branches{}, fmt.Errorf("invalid repository %q, want owner/name", fullName)
	}

	var repo struct {
		DefaultBranch string `json:"default_branch"`
	}
	if err := c.get(ctx, "/repos/"+owner+"/"+name, &repo); err != nil {
		return Branches{}, err
	}

	var branches []struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/repos/"+owner+"/"+name+"/branches?per_page=100", &branches); err != nil {
		return Branches{}, err
	}

	out := Branches{Default: repo.DefaultBranch, Names: make([]string, 0, len(branches))}
	for _, b := range branches {
		out.Names = append(out.Names, b.Name)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github returned status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode github response: %w", err)
	}
	return nil
}
