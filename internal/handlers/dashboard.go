package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"builderpulse/internal/models"
	"builderpulse/internal/scoring"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// sectionDef describes one dashboard section: which layer and platforms it
// draws from and how it is sorted.
type sectionDef struct {
	Title     string
	Layer     models.Layer
	Platforms []models.Platform
	SortField string
	Limit     int
}

// categorySections maps each audience category to its dashboard sections.
var categorySections = map[string][]sectionDef{
	"builder": {
		{Title: "Promising Repos", Layer: models.LayerPromising, Platforms: []models.Platform{models.PlatformGitHub, models.PlatformNpm}, SortField: "velocity", Limit: 8},
		{Title: "Trending Dev Tools", Layer: models.LayerTrending, Platforms: []models.Platform{models.PlatformGitHub, models.PlatformNpm, models.PlatformHackerNews}, SortField: "github_momentum", Limit: 8},
		{Title: "Builder Discussions", Layer: models.LayerTrending, Platforms: []models.Platform{models.PlatformHackerNews, models.PlatformReddit}, SortField: "hn_heat", Limit: 8},
		{Title: "Hall of Fame Tools", Layer: models.LayerHallOfFame, Platforms: []models.Platform{models.PlatformGitHub, models.PlatformNpm}, SortField: "github_momentum", Limit: 6},
	},
	"founder": {
		{Title: "Promising Products", Layer: models.LayerPromising, Platforms: []models.Platform{models.PlatformProductHunt, models.PlatformGitHub}, SortField: "velocity", Limit: 8},
		{Title: "Trending Launches", Layer: models.LayerTrending, Platforms: []models.Platform{models.PlatformProductHunt, models.PlatformHackerNews}, SortField: "ph_momentum", Limit: 8},
		{Title: "Problems Developers Discuss", Layer: models.LayerTrending, Platforms: []models.Platform{models.PlatformReddit, models.PlatformHackerNews}, SortField: "reddit_buzz", Limit: 8},
		{Title: "Hall of Fame Products", Layer: models.LayerHallOfFame, Platforms: []models.Platform{models.PlatformProductHunt, models.PlatformGitHub}, SortField: "ph_momentum", Limit: 6},
	},
	"growth": {
		{Title: "Exploding Conversations", Layer: models.LayerPromising, Platforms: []models.Platform{models.PlatformReddit, models.PlatformHackerNews}, SortField: "velocity", Limit: 8},
		{Title: "Trending Launches", Layer: models.LayerTrending, Platforms: []models.Platform{models.PlatformProductHunt, models.PlatformReddit}, SortField: "reddit_buzz", Limit: 8},
		{Title: "Communities Reacting", Layer: models.LayerTrending, Platforms: []models.Platform{models.PlatformReddit}, SortField: "reddit_buzz", Limit: 6},
		{Title: "Hall of Fame", Layer: models.LayerHallOfFame, Platforms: []models.Platform{models.PlatformGitHub, models.PlatformProductHunt}, SortField: "github_momentum", Limit: 6},
	},
}

// sortColumns whitelists the ORDER BY column per section sort field.
var sortColumns = map[string]string{
	"velocity":        "velocity DESC",
	"github_momentum": "github_momentum DESC",
	"hn_heat":         "hn_heat DESC",
	"reddit_buzz":     "reddit_buzz DESC",
	"ph_momentum":     "ph_momentum DESC",
	"npm_traction":    "npm_traction DESC",
}

// SectionItem is one dashboard entry: a post plus its latest metrics and a
// human-readable reason it appears.
type SectionItem struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	URL            string          `json:"url"`
	Platform       models.Platform `json:"platform"`
	Author         string          `json:"author"`
	Description    string          `json:"description"`
	PublishedAt    *time.Time      `json:"published_at"`
	Type           models.PostType `json:"type"`
	LatestStars    int             `json:"latest_stars"`
	LatestComments int             `json:"latest_comments"`
	LatestUpvotes  int             `json:"latest_upvotes"`
	LatestScore    int             `json:"latest_score"`
	Momentum       float64         `json:"momentum"`
	IsBreakout     bool            `json:"is_early_breakout"`
	SignalLabel    string          `json:"signal_label"`
	Layer          *models.Layer   `json:"layer"`
	Velocity       float64         `json:"velocity"`
	Reason         string          `json:"reason"`
}

// Section is one titled group of dashboard items.
type Section struct {
	Title string        `json:"title"`
	Layer models.Layer  `json:"layer"`
	Items []SectionItem `json:"items"`
}

// DashboardResponse is the full payload for one category view.
type DashboardResponse struct {
	Category       string    `json:"category"`
	Sections       []Section `json:"sections"`
	TrendingTopics []string  `json:"trending_topics"`
	EmergingTopics []string  `json:"emerging_topics"`
	LastUpdated    time.Time `json:"last_updated"`
}

// DashboardHandler serves the category dashboard views.
type DashboardHandler struct {
	db      *gorm.DB
	phrases *scoring.PhraseService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{
		db:      db,
		phrases: scoring.NewPhraseService(db),
	}
}

type latestMetrics struct {
	Stars           int
	Comments        int
	Upvotes         int
	Score           int
	DownloadsWeekly int
}

// latestMetricsFor maps each post to its most recent snapshot.
func (h *DashboardHandler) latestMetricsFor(postIDs []uuid.UUID) (map[uuid.UUID]latestMetrics, error) {
	var snapshots []models.MetricSnapshot
	err := h.db.
		Where("post_id IN ?", postIDs).
		Order("collected_at DESC").
		Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("fetch latest metrics: %w", err)
	}

	latest := make(map[uuid.UUID]latestMetrics, len(postIDs))
	for _, s := range snapshots {
		if _, ok := latest[s.PostID]; ok {
			continue
		}
		latest[s.PostID] = latestMetrics{
			Stars:           s.Stars,
			Comments:        s.Comments,
			Upvotes:         s.Upvotes,
			Score:           s.Score,
			DownloadsWeekly: s.DownloadsWeekly,
		}
	}
	return latest, nil
}

func formatAge(publishedAt *time.Time) string {
	if publishedAt == nil {
		return "just now"
	}
	hours := int(time.Since(*publishedAt).Hours())
	switch {
	case hours < 1:
		return "just now"
	case hours < 24:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dd", hours/24)
	}
}

// buildReason produces the one-line explanation shown next to each item.
func buildReason(post models.Post, m latestMetrics) string {
	if post.IsEarlyBreakout {
		return fmt.Sprintf("Early Breakout — %d stars, rapid growth", m.Stars)
	}

	prefix := ""
	if post.Layer != nil {
		switch *post.Layer {
		case models.LayerPromising:
			prefix = "✦ Promising · "
		case models.LayerHallOfFame:
			prefix = "🏆 Hall of Fame · "
		}
	}

	switch post.Platform {
	case models.PlatformGitHub:
		vel := ""
		if post.Velocity > 0 {
			vel = fmt.Sprintf(" · velocity %.1fx", post.Velocity)
		}
		return fmt.Sprintf("%s%d stars%s", prefix, m.Stars, vel)
	case models.PlatformHackerNews:
		return fmt.Sprintf("%s%d pts · %d comments · %s", prefix, m.Score, m.Comments, formatAge(post.PublishedAt))
	case models.PlatformReddit, models.PlatformProductHunt:
		return fmt.Sprintf("%s%d upvotes · %d comments", prefix, m.Upvotes, m.Comments)
	case models.PlatformNpm:
		dl := fmt.Sprintf("%d", m.DownloadsWeekly)
		if m.DownloadsWeekly >= 1000 {
			dl = fmt.Sprintf("%dk", m.DownloadsWeekly/1000)
		}
		return fmt.Sprintf("%s%s downloads/week", prefix, dl)
	}
	return prefix
}

func (h *DashboardHandler) buildSection(def sectionDef, since time.Time) (*Section, error) {
	order, ok := sortColumns[def.SortField]
	if !ok {
		order = "velocity DESC"
	}

	var posts []models.Post
	err := h.db.
		Where("created_at >= ?", since).
		Where("layer = ?", def.Layer).
		Where("platform IN ?", def.Platforms).
		Order(order).
		Limit(def.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("section %q: %w", def.Title, err)
	}
	if len(posts) == 0 {
		return nil, nil
	}

	postIDs := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}
	metrics, err := h.latestMetricsFor(postIDs)
	if err != nil {
		return nil, err
	}

	section := &Section{Title: def.Title, Layer: def.Layer}
	for _, p := range posts {
		m := metrics[p.ID]
		section.Items = append(section.Items, SectionItem{
			ID:             p.ID,
			Title:          p.Title,
			URL:            p.URL,
			Platform:       p.Platform,
			Author:         p.Author,
			Description:    p.Description,
			PublishedAt:    p.PublishedAt,
			Type:           p.Type,
			LatestStars:    m.Stars,
			LatestComments: m.Comments,
			LatestUpvotes:  m.Upvotes,
			LatestScore:    m.Score,
			Momentum:       p.MomentumFor(),
			IsBreakout:     p.IsEarlyBreakout,
			SignalLabel:    p.SignalLabel,
			Layer:          p.Layer,
			Velocity:       p.Velocity,
			Reason:         buildReason(p, m),
		})
	}
	return section, nil
}

// GetDashboard handles GET /api/dashboard?category=builder|founder|growth
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	category := c.DefaultQuery("category", "builder")
	defs, ok := categorySections[category]
	if !ok {
		category = "builder"
		defs = categorySections[category]
	}

	since := time.Now().Add(-48 * time.Hour)
	sections := []Section{}
	for _, def := range defs {
		section, err := h.buildSection(def, since)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to build dashboard",
				"details": err.Error(),
			})
			return
		}
		if section != nil {
			sections = append(sections, *section)
		}
	}

	trending, err := h.phrases.ExtractTrendingTopics(48, 10)
	if err != nil {
		log.Printf("⚠️ Failed to extract trending topics: %v", err)
		trending = []string{}
	}
	emerging, err := h.phrases.ExtractEmergingTopics(8)
	if err != nil {
		log.Printf("⚠️ Failed to extract emerging topics: %v", err)
		emerging = []string{}
	}

	lastUpdated := time.Now()
	var latest models.MetricSnapshot
	if err := h.db.Order("collected_at DESC").First(&latest).Error; err == nil {
		lastUpdated = latest.CollectedAt
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Category:       category,
		Sections:       sections,
		TrendingTopics: trending,
		EmergingTopics: emerging,
		LastUpdated:    lastUpdated,
	})
}
