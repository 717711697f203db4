package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"builderpulse/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

func TestGetTrendsOrdersByScore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	cold := models.Topic{Title: "Cold topic", TrendScore: 10, MomentumLabel: models.MomentumNew, Signals: pq.StringArray{}}
	hot := models.Topic{Title: "Hot topic", TrendScore: 500, MomentumLabel: models.MomentumExploding, Signals: pq.StringArray{"github", "hackernews"}}
	for _, topic := range []*models.Topic{&cold, &hot} {
		if err := db.Create(topic).Error; err != nil {
			t.Fatalf("Failed to create topic: %v", err)
		}
	}

	handler := NewTrendsHandler(db)
	router := gin.New()
	router.GET("/api/trends", handler.GetTrends)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/trends", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Trends []TrendSummary `json:"trends"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Trends) != 2 {
		t.Fatalf("Expected 2 trends, got %d", len(resp.Trends))
	}
	if resp.Trends[0].Title != "Hot topic" {
		t.Errorf("Expected hottest topic first, got %q", resp.Trends[0].Title)
	}
	if len(resp.Trends[0].Signals) != 2 {
		t.Errorf("Expected signals carried through, got %v", resp.Trends[0].Signals)
	}
}

func TestGetTrendDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	topic := models.Topic{Title: "Detail topic", TrendScore: 42, MomentumLabel: models.MomentumRising, Signals: pq.StringArray{"github"}}
	if err := db.Create(&topic).Error; err != nil {
		t.Fatalf("Failed to create topic: %v", err)
	}

	published := time.Now().Add(-3 * time.Hour)
	post := models.Post{
		ID:          uuid.New(),
		Platform:    models.PlatformGitHub,
		Title:       "member repo",
		ExternalID:  "github-detail",
		PublishedAt: &published,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	if err := db.Create(&models.TopicPost{TopicID: topic.ID, PostID: post.ID}).Error; err != nil {
		t.Fatalf("Failed to link post: %v", err)
	}
	snap := models.MetricSnapshot{PostID: post.ID, Stars: 777, CollectedAt: time.Now()}
	if err := db.Create(&snap).Error; err != nil {
		t.Fatalf("Failed to create snapshot: %v", err)
	}

	handler := NewTrendsHandler(db)
	router := gin.New()
	router.GET("/api/trends/:id", handler.GetTrend)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/trends/"+topic.ID.String(), nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Trend struct {
			Title     string        `json:"title"`
			PostCount int           `json:"post_count"`
			TopMetric string        `json:"top_metric"`
			Posts     []PostSummary `json:"posts"`
		} `json:"trend"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Trend.Title != "Detail topic" {
		t.Errorf("Expected topic title, got %q", resp.Trend.Title)
	}
	if resp.Trend.PostCount != 1 {
		t.Errorf("Expected 1 post, got %d", resp.Trend.PostCount)
	}
	if resp.Trend.TopMetric != "777 stars" {
		t.Errorf("Expected top metric '777 stars', got %q", resp.Trend.TopMetric)
	}
	if len(resp.Trend.Posts) != 1 || resp.Trend.Posts[0].LatestStars != 777 {
		t.Errorf("Expected member post with 777 stars, got %+v", resp.Trend.Posts)
	}
}

func TestGetTrendNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	handler := NewTrendsHandler(db)
	router := gin.New()
	router.GET("/api/trends/:id", handler.GetTrend)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/trends/"+uuid.NewString(), nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/trends/not-a-uuid", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed id, got %d", w.Code)
	}
}
