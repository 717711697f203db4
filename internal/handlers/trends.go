package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"builderpulse/internal/models"
	"builderpulse/internal/scoring"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrendsHandler serves ranked topics and topic detail views.
type TrendsHandler struct {
	db      *gorm.DB
	phrases *scoring.PhraseService
}

// NewTrendsHandler creates a new trends handler
func NewTrendsHandler(db *gorm.DB) *TrendsHandler {
	return &TrendsHandler{
		db:      db,
		phrases: scoring.NewPhraseService(db),
	}
}

// TrendSummary is one topic in the ranked list.
type TrendSummary struct {
	ID            uuid.UUID            `json:"id"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	TrendScore    float64              `json:"trend_score"`
	MomentumLabel models.MomentumLabel `json:"momentum_label"`
	PlatformCount int                  `json:"platform_count"`
	Signals       []string             `json:"signals"`
	PostCount     int                  `json:"post_count"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// PostSummary is one post inside a topic detail view.
type PostSummary struct {
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
}

// GetTrends handles GET /api/trends
func (h *TrendsHandler) GetTrends(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}

	var topics []models.Topic
	err := h.db.
		Order("trend_score DESC").
		Limit(limit).
		Find(&topics).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve trends",
			"details": err.Error(),
		})
		return
	}

	topicIDs := make([]uuid.UUID, len(topics))
	for i, t := range topics {
		topicIDs[i] = t.ID
	}
	postCounts := make(map[uuid.UUID]int, len(topics))
	if len(topicIDs) > 0 {
		type topicCount struct {
			TopicID uuid.UUID
			Count   int
		}
		var counts []topicCount
		h.db.Model(&models.TopicPost{}).
			Select("topic_id, COUNT(*) AS count").
			Where("topic_id IN ?", topicIDs).
			Group("topic_id").
			Scan(&counts)
		for _, tc := range counts {
			postCounts[tc.TopicID] = tc.Count
		}
	}

	trends := make([]TrendSummary, 0, len(topics))
	for _, t := range topics {
		trends = append(trends, TrendSummary{
			ID:            t.ID,
			Title:         t.Title,
			Description:   t.Description,
			TrendScore:    t.TrendScore,
			MomentumLabel: t.MomentumLabel,
			PlatformCount: t.PlatformCount,
			Signals:       t.Signals,
			PostCount:     postCounts[t.ID],
			CreatedAt:     t.CreatedAt,
			UpdatedAt:     t.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends})
}

// topMetric summarizes the strongest raw signal across a topic's posts.
func topMetric(posts []PostSummary) string {
	bestStars, bestScore := 0, 0
	for _, p := range posts {
		if p.Platform == models.PlatformGitHub && p.LatestStars > bestStars {
			bestStars = p.LatestStars
		}
		if p.Platform == models.PlatformHackerNews && p.LatestScore > bestScore {
			bestScore = p.LatestScore
		}
	}
	if bestStars > 0 {
		return fmt.Sprintf("%d stars", bestStars)
	}
	if bestScore > 0 {
		return fmt.Sprintf("%d points on HN", bestScore)
	}
	return ""
}

// GetTrend handles GET /api/trends/:id
func (h *TrendsHandler) GetTrend(c *gin.Context) {
	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trend ID format"})
		return
	}

	var topic models.Topic
	if err := h.db.First(&topic, "id = ?", topicID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trend not found"})
		return
	}

	var links []models.TopicPost
	if err := h.db.Where("topic_id = ?", topicID).Find(&links).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve trend posts",
			"details": err.Error(),
		})
		return
	}

	posts := []PostSummary{}
	if len(links) > 0 {
		postIDs := make([]uuid.UUID, len(links))
		for i, link := range links {
			postIDs[i] = link.PostID
		}

		var rows []models.Post
		err := h.db.
			Where("id IN ?", postIDs).
			Order("published_at DESC").
			Find(&rows).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to retrieve trend posts",
				"details": err.Error(),
			})
			return
		}

		var snapshots []models.MetricSnapshot
		h.db.Where("post_id IN ?", postIDs).
			Order("collected_at DESC").
			Find(&snapshots)
		latest := make(map[uuid.UUID]models.MetricSnapshot, len(postIDs))
		for _, s := range snapshots {
			if _, ok := latest[s.PostID]; !ok {
				latest[s.PostID] = s
			}
		}

		for _, p := range rows {
			m := latest[p.ID]
			posts = append(posts, PostSummary{
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
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"trend": gin.H{
			"id":             topic.ID,
			"title":          topic.Title,
			"description":    topic.Description,
			"trend_score":    topic.TrendScore,
			"momentum_label": topic.MomentumLabel,
			"platform_count": topic.PlatformCount,
			"signals":        topic.Signals,
			"post_count":     len(posts),
			"top_metric":     topMetric(posts),
			"created_at":     topic.CreatedAt,
			"updated_at":     topic.UpdatedAt,
			"posts":          posts,
		},
	})
}

// GetTrendingPhrases handles GET /api/topics/trending
func (h *TrendsHandler) GetTrendingPhrases(c *gin.Context) {
	hoursBack, _ := strconv.Atoi(c.DefaultQuery("hours", "48"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if hoursBack < 1 {
		hoursBack = 48
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	phrases, err := h.phrases.ExtractTrendingTopics(hoursBack, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to extract trending topics",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": phrases})
}

// GetEmergingPhrases handles GET /api/topics/emerging
func (h *TrendsHandler) GetEmergingPhrases(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	if limit < 1 || limit > 50 {
		limit = 8
	}

	phrases, err := h.phrases.ExtractEmergingTopics(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to extract emerging topics",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": phrases})
}
