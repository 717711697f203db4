package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"builderpulse/internal/models"
)

// builderSubreddits are the communities collected each run.
var builderSubreddits = []string{
	"programming",
	"webdev",
	"MachineLearning",
	"LocalLLaMA",
	"startups",
	"SideProject",
	"devops",
	"opensource",
	"javascript",
	"rust",
	"golang",
}

// RedditCollector pulls hot posts from a fixed set of builder subreddits.
type RedditCollector struct {
	store      *Store
	httpClient *http.Client
	baseURL    string
}

// NewRedditCollector creates a new Reddit collector
func NewRedditCollector(store *Store) *RedditCollector {
	return &RedditCollector{
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://www.reddit.com",
	}
}

// Platform returns the platform this collector feeds
func (c *RedditCollector) Platform() models.Platform {
	return models.PlatformReddit
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (c *RedditCollector) fetchSubreddit(ctx context.Context, subreddit string) ([]redditPost, error) {
	url := fmt.Sprintf("%s/r/%s/hot.json?limit=25", c.baseURL, subreddit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "BuilderPulse/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", subreddit, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch r/%s: status %d", subreddit, resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode r/%s: %w", subreddit, err)
	}

	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

// Collect fetches hot posts from each builder subreddit and records them
// with an upvote/comment snapshot.
func (c *RedditCollector) Collect(ctx context.Context) (*Result, error) {
	result := &Result{}

	for _, subreddit := range builderSubreddits {
		posts, err := c.fetchSubreddit(ctx, subreddit)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		for _, rp := range posts {
			if rp.Stickied || rp.Title == "" {
				continue
			}

			var publishedAt *time.Time
			if rp.CreatedUTC > 0 {
				t := time.Unix(int64(rp.CreatedUTC), 0)
				publishedAt = &t
			}

			description := rp.Selftext
			if len(description) > 500 {
				description = description[:500]
			}

			post := models.Post{
				Platform:    models.PlatformReddit,
				Title:       rp.Title,
				URL:         "https://www.reddit.com" + rp.Permalink,
				Author:      rp.Author,
				Description: description,
				PublishedAt: publishedAt,
				Type:        models.PostTypeDiscussion,
				ExternalID:  fmt.Sprintf("reddit-%s", rp.ID),
			}
			snapshot := models.MetricSnapshot{
				Comments: rp.NumComments,
				Upvotes:  rp.Ups,
				Score:    rp.Ups,
			}

			if err := c.store.SavePost(&post, snapshot); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("post %s: %v", rp.ID, err))
				continue
			}
			result.Collected++
		}
	}

	return result, nil
}
