package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"builderpulse/internal/models"
)

const hnBaseURL = "https://hacker-news.firebaseio.com/v0"

// builderKeywords gate which HN stories qualify: a story must mention at
// least one of these to be collected.
var builderKeywords = []string{
	"show hn",
	// Languages & runtimes
	"typescript", "javascript", "python", "rust", "golang", "go ", "wasm", "webassembly",
	"c++", "zig", "elixir", "swift", "kotlin",
	// AI / ML
	"llm", "gpt", "ai ", "ml ", "machine learning", "deep learning", "embedding", "vector",
	"diffusion", "transformer", "inference", "fine-tun", "rag", "agent", "copilot",
	// Infra & tooling
	"api", "sdk", "framework", "library", "open source", "github", "git ",
	"database", "postgres", "sqlite", "redis", "mysql", "supabase", "neon",
	"docker", "kubernetes", "k8s", "serverless", "edge function",
	"terraform", "pulumi", "infra", "devops", "ci/cd", "monorepo",
	// Frontend / backend
	"react", "next.js", "nextjs", "svelte", "vue", "astro", "remix",
	"graphql", "rest api", "grpc", "websocket", "backend", "frontend",
	"full stack", "fullstack",
	// Dev tooling
	"compiler", "runtime", "cli ", "debugger", "linter", "formatter", "bundler",
	"vite", "webpack", "esbuild", "rollup",
	// General builder terms
	"developer", "open-source", "self-hosted", "self hosted", "deployment",
	"performance", "benchmark", "latency", "throughput",
}

// excludeKeywords hard-exclude stories regardless of other matches.
var excludeKeywords = []string{
	"israel", "iran", "ukraine", "russia", "gaza", "hamas", "hezbollah",
	"trump", "biden", "harris", "musk", "election", "congress", "senate",
	"nato", "war ", "geopolit", "sanctions",
	"stock market", "stock price", "s&p", "nasdaq", "dow jones",
	"hedge fund", "ipo ", "quarterly earnings", "wall street",
	"climate change", "global warming",
	"covid", "pandemic", "vaccine",
	"celebrity", "oscar", "grammy", "nba ", "nfl ", "soccer", "football",
}

// blockedDomains are general news / media sites, never builder signal.
var blockedDomains = []string{
	"nytimes.com", "cnn.com", "bbc.com", "bbc.co.uk", "reuters.com",
	"foxnews.com", "aljazeera.com", "theguardian.com", "washingtonpost.com",
	"politico.com", "thehill.com", "bloomberg.com", "businessinsider.com",
	"cnbc.com", "wsj.com", "ft.com", "economist.com", "apnews.com",
	"usatoday.com", "nbcnews.com", "abcnews.go.com", "cbsnews.com",
}

var boostDomains = []string{"github.com", "github.io"}
var boostTitlePrefixes = []string{"show hn:", "ask hn:", "tell hn:"}

// HackerNewsCollector pulls top and new stories from the HN Firebase API
// and keeps the builder-relevant ones.
type HackerNewsCollector struct {
	store      *Store
	httpClient *http.Client
	baseURL    string
}

// NewHackerNewsCollector creates a new Hacker News collector
func NewHackerNewsCollector(store *Store) *HackerNewsCollector {
	return &HackerNewsCollector{
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    hnBaseURL,
	}
}

// Platform returns the platform this collector feeds
func (c *HackerNewsCollector) Platform() models.Platform {
	return models.PlatformHackerNews
}

type hnItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	By          string `json:"by"`
	Text        string `json:"text"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Time        int64  `json:"time"`
	Type        string `json:"type"`
}

func domainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

func matchesDomain(domain string, list []string) bool {
	for _, d := range list {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// relevanceScore rates how builder-relevant a story is; 0 means excluded.
func relevanceScore(item hnItem) int {
	lower := strings.ToLower(item.Title)
	domain := domainOf(item.URL)

	if matchesDomain(domain, blockedDomains) {
		return 0
	}
	for _, kw := range excludeKeywords {
		if strings.Contains(lower, kw) {
			return 0
		}
	}

	matchCount := 0
	for _, kw := range builderKeywords {
		if strings.Contains(lower, kw) {
			matchCount++
		}
	}
	if matchCount == 0 {
		return 0
	}

	score := 1
	for _, prefix := range boostTitlePrefixes {
		if strings.HasPrefix(lower, prefix) {
			score += 3
			break
		}
	}
	if matchesDomain(domain, boostDomains) {
		score += 2
	}
	// Reward specificity: each extra keyword matched, up to three.
	if extra := matchCount - 1; extra > 0 {
		if extra > 3 {
			extra = 3
		}
		score += extra
	}
	return score
}

func (c *HackerNewsCollector) fetchStoryIDs(ctx context.Context) ([]int64, error) {
	var top, newest []int64
	if err := c.getJSON(ctx, c.baseURL+"/topstories.json", &top); err != nil {
		return nil, err
	}
	if err := c.getJSON(ctx, c.baseURL+"/newstories.json", &newest); err != nil {
		return nil, err
	}

	if len(top) > 100 {
		top = top[:100]
	}
	if len(newest) > 50 {
		newest = newest[:50]
	}

	seen := make(map[int64]bool)
	combined := []int64{}
	for _, id := range append(top, newest...) {
		if !seen[id] {
			seen[id] = true
			combined = append(combined, id)
		}
	}
	if len(combined) > 120 {
		combined = combined[:120]
	}
	return combined, nil
}

func (c *HackerNewsCollector) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Collect fetches candidate stories, filters them for builder relevance,
// and records each qualifying story with a snapshot.
func (c *HackerNewsCollector) Collect(ctx context.Context) (*Result, error) {
	result := &Result{}

	ids, err := c.fetchStoryIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch story ids: %w", err)
	}

	type scoredStory struct {
		item  hnItem
		score int
	}
	stories := []scoredStory{}
	for _, id := range ids {
		var item hnItem
		if err := c.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", c.baseURL, id), &item); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", id, err))
			continue
		}
		if item.Type != "story" || item.Title == "" || item.URL == "" {
			continue
		}
		if score := relevanceScore(item); score > 0 {
			stories = append(stories, scoredStory{item: item, score: score})
		}
	}
	sort.Slice(stories, func(i, j int) bool { return stories[i].score > stories[j].score })

	for _, story := range stories {
		item := story.item
		storyURL := item.URL
		if storyURL == "" {
			storyURL = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID)
		}
		var publishedAt *time.Time
		if item.Time > 0 {
			t := time.Unix(item.Time, 0)
			publishedAt = &t
		}

		post := models.Post{
			Platform:    models.PlatformHackerNews,
			Title:       item.Title,
			URL:         storyURL,
			Author:      item.By,
			Description: item.Text,
			PublishedAt: publishedAt,
			Type:        models.PostTypeDiscussion,
			ExternalID:  fmt.Sprintf("hn-%d", item.ID),
		}
		snapshot := models.MetricSnapshot{
			Comments: item.Descendants,
			Upvotes:  item.Score,
			Score:    item.Score,
		}

		if err := c.store.SavePost(&post, snapshot); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("story %d: %v", item.ID, err))
			continue
		}
		result.Collected++
	}

	return result, nil
}
