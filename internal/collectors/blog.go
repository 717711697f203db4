package collectors

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"builderpulse/internal/models"
)

// defaultBlogFeeds seed the blog collector when BLOG_FEEDS is not set.
var defaultBlogFeeds = []string{
	"https://blog.pragmaticengineer.com/rss/",
	"https://vercel.com/atom",
	"https://github.blog/feed/",
	"https://stackoverflow.blog/feed/",
	"https://www.anthropic.com/rss.xml",
}

// BlogCollector pulls entries from a configurable list of engineering
// blog feeds. Blog posts carry no vote metrics; they feed clustering and
// phrase extraction only.
type BlogCollector struct {
	store  *Store
	parser *gofeed.Parser
	feeds  []string
}

// NewBlogCollector creates a new blog feed collector. Feed URLs come from
// the comma-separated BLOG_FEEDS env var, falling back to a default set.
func NewBlogCollector(store *Store) *BlogCollector {
	feeds := defaultBlogFeeds
	if raw := os.Getenv("BLOG_FEEDS"); raw != "" {
		feeds = []string{}
		for _, feedURL := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(feedURL); trimmed != "" {
				feeds = append(feeds, trimmed)
			}
		}
	}

	parser := gofeed.NewParser()
	parser.UserAgent = "BuilderPulse/1.0"

	return &BlogCollector{
		store:  store,
		parser: parser,
		feeds:  feeds,
	}
}

// Platform returns the platform this collector feeds
func (c *BlogCollector) Platform() models.Platform {
	return models.PlatformBlog
}

// stripHTML extracts the text content from an HTML fragment.
func stripHTML(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			builder.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(builder.String()), " ")
}

// Collect parses each configured feed and records recent entries with a
// zero-metric snapshot.
func (c *BlogCollector) Collect(ctx context.Context) (*Result, error) {
	result := &Result{}
	cutoff := time.Now().Add(-7 * 24 * time.Hour)

	for _, feedURL := range c.feeds {
		feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("feed %s: %v", feedURL, err))
			continue
		}

		for _, item := range feed.Items {
			if item.Title == "" || item.Link == "" {
				continue
			}
			if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
				continue
			}

			author := ""
			if len(item.Authors) > 0 {
				author = item.Authors[0].Name
			} else if feed.Title != "" {
				author = feed.Title
			}

			description := stripHTML(item.Description)
			if len(description) > 500 {
				description = description[:500]
			}

			post := models.Post{
				Platform:    models.PlatformBlog,
				Title:       item.Title,
				URL:         item.Link,
				Author:      author,
				Description: description,
				PublishedAt: item.PublishedParsed,
				Type:        models.PostTypeArticle,
				ExternalID:  fmt.Sprintf("blog:%s", item.Link),
			}

			if err := c.store.SavePost(&post, models.MetricSnapshot{}); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("entry %s: %v", item.Link, err))
				continue
			}
			result.Collected++
		}
	}

	return result, nil
}
