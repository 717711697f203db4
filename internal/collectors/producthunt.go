package collectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"builderpulse/internal/models"
)

const productHuntAPIURL = "https://api.producthunt.com/v2/api/graphql"

// ProductHuntCollector pulls recent launches via the Product Hunt GraphQL API.
// It is a no-op when PRODUCTHUNT_TOKEN is not configured.
type ProductHuntCollector struct {
	store      *Store
	httpClient *http.Client
	token      string
	apiURL     string
}

// NewProductHuntCollector creates a new Product Hunt collector
func NewProductHuntCollector(store *Store) *ProductHuntCollector {
	return &ProductHuntCollector{
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      os.Getenv("PRODUCTHUNT_TOKEN"),
		apiURL:     productHuntAPIURL,
	}
}

// Platform returns the platform this collector feeds
func (c *ProductHuntCollector) Platform() models.Platform {
	return models.PlatformProductHunt
}

const productHuntQuery = `
query RecentPosts($postedAfter: DateTime!) {
  posts(order: VOTES, postedAfter: $postedAfter, first: 50) {
    edges {
      node {
        id
        name
        tagline
        url
        votesCount
        commentsCount
        createdAt
        user {
          name
        }
      }
    }
  }
}`

type productHuntNode struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Tagline       string `json:"tagline"`
	URL           string `json:"url"`
	VotesCount    int    `json:"votesCount"`
	CommentsCount int    `json:"commentsCount"`
	CreatedAt     string `json:"createdAt"`
	User          struct {
		Name string `json:"name"`
	} `json:"user"`
}

type productHuntResponse struct {
	Data struct {
		Posts struct {
			Edges []struct {
				Node productHuntNode `json:"node"`
			} `json:"edges"`
		} `json:"posts"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *ProductHuntCollector) fetchPosts(ctx context.Context) ([]productHuntNode, error) {
	postedAfter := time.Now().Add(-48 * time.Hour).UTC().Format(time.RFC3339)
	payload, err := json.Marshal(map[string]interface{}{
		"query": productHuntQuery,
		"variables": map[string]string{
			"postedAfter": postedAfter,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", "BuilderPulse/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch posts: status %d", resp.StatusCode)
	}

	var parsed productHuntResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", parsed.Errors[0].Message)
	}

	nodes := make([]productHuntNode, 0, len(parsed.Data.Posts.Edges))
	for _, edge := range parsed.Data.Posts.Edges {
		nodes = append(nodes, edge.Node)
	}
	return nodes, nil
}

// Collect fetches the last 48 hours of launches ordered by votes.
func (c *ProductHuntCollector) Collect(ctx context.Context) (*Result, error) {
	result := &Result{}

	if c.token == "" {
		log.Println("⚠️ PRODUCTHUNT_TOKEN not set, skipping Product Hunt collection")
		return result, nil
	}

	nodes, err := c.fetchPosts(ctx)
	if err != nil {
		return result, err
	}

	for _, node := range nodes {
		if node.Name == "" {
			continue
		}

		var publishedAt *time.Time
		if t, err := time.Parse(time.RFC3339, node.CreatedAt); err == nil {
			publishedAt = &t
		}

		post := models.Post{
			Platform:    models.PlatformProductHunt,
			Title:       node.Name,
			URL:         node.URL,
			Author:      node.User.Name,
			Description: node.Tagline,
			PublishedAt: publishedAt,
			Type:        models.PostTypeProduct,
			ExternalID:  fmt.Sprintf("ph:%s", node.ID),
		}
		snapshot := models.MetricSnapshot{
			Comments: node.CommentsCount,
			Upvotes:  node.VotesCount,
			Score:    node.VotesCount,
		}

		if err := c.store.SavePost(&post, snapshot); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("post %s: %v", node.ID, err))
			continue
		}
		result.Collected++
	}

	return result, nil
}
