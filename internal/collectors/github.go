package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"builderpulse/internal/models"
)

const githubSearchURL = "https://api.github.com/search/repositories"

// GitHubCollector pulls recently pushed repos with meaningful star counts
// from the GitHub search API.
type GitHubCollector struct {
	store      *Store
	httpClient *http.Client
	token      string
}

// NewGitHubCollector creates a new GitHub collector
func NewGitHubCollector(store *Store) *GitHubCollector {
	return &GitHubCollector{
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      os.Getenv("GITHUB_TOKEN"),
	}
}

// Platform returns the platform this collector feeds
func (c *GitHubCollector) Platform() models.Platform {
	return models.PlatformGitHub
}

type githubRepo struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	OpenIssuesCount int    `json:"open_issues_count"`
	CreatedAt       string `json:"created_at"`
}

type githubSearchResponse struct {
	Items []githubRepo `json:"items"`
}

// Collect fetches trending repos (stars > 100, pushed since yesterday) and
// records a snapshot for each.
func (c *GitHubCollector) Collect(ctx context.Context) (*Result, error) {
	result := &Result{}

	yesterday := time.Now().Add(-24 * time.Hour).Format("2006-01-02")
	query := fmt.Sprintf("stars:>100 pushed:>%s", yesterday)
	searchURL := fmt.Sprintf("%s?q=%s&sort=stars&order=desc&per_page=50",
		githubSearchURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return result, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "BuilderPulse/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("github search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("github search: status %d", resp.StatusCode)
	}

	var search githubSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return result, fmt.Errorf("decode github response: %w", err)
	}

	for _, repo := range search.Items {
		publishedAt := parseTime(repo.CreatedAt)
		post := models.Post{
			Platform:    models.PlatformGitHub,
			Title:       repo.FullName,
			URL:         repo.HTMLURL,
			Author:      repo.Owner.Login,
			Description: repo.Description,
			PublishedAt: publishedAt,
			Type:        models.PostTypeRepo,
			ExternalID:  fmt.Sprintf("github-%d", repo.ID),
		}
		snapshot := models.MetricSnapshot{
			Stars:    repo.StargazersCount,
			Comments: repo.OpenIssuesCount,
			Upvotes:  repo.ForksCount,
			Score:    repo.StargazersCount,
			Forks:    repo.ForksCount,
		}

		if err := c.store.SavePost(&post, snapshot); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("repo %s: %v", repo.FullName, err))
			continue
		}
		result.Collected++
	}

	return result, nil
}

// parseTime parses an RFC3339 timestamp, returning nil when absent or bad.
func parseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}
