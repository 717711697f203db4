package scoring

import (
	"math"
	"testing"
	"time"

	"builderpulse/internal/models"

	"github.com/google/uuid"
)

func TestExtractSubreddit(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.reddit.com/r/programming/comments/abc/title/", "programming"},
		{"https://reddit.com/r/LocalLLaMA/comments/xyz/", "localllama"},
		{"https://example.com/something", ""},
	}

	for _, tt := range tests {
		if got := extractSubreddit(tt.url); got != tt.expected {
			t.Errorf("extractSubreddit(%q) = %q, expected %q", tt.url, got, tt.expected)
		}
	}
}

func TestComputeRedditBuzzAppliesMultiplier(t *testing.T) {
	db := setupTestDB(t)
	service := NewMomentumService(db)

	post := models.Post{
		ID:         uuid.New(),
		Platform:   models.PlatformReddit,
		Title:      "some discussion",
		URL:        "https://www.reddit.com/r/programming/comments/abc/some_discussion/",
		ExternalID: "reddit-mult",
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}
	now := time.Now()
	addSnapshot(t, db, post.ID, models.MetricSnapshot{Upvotes: 100, Comments: 50}, now.Add(-10*time.Hour))
	addSnapshot(t, db, post.ID, models.MetricSnapshot{Upvotes: 200, Comments: 80}, now)

	scores, err := service.ComputeRedditBuzz([]uuid.UUID{post.ID})
	if err != nil {
		t.Fatalf("ComputeRedditBuzz failed: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("Expected 1 score, got %d", len(scores))
	}

	rb := scores[0]
	if rb.Subreddit != "programming" {
		t.Errorf("Expected subreddit programming, got %q", rb.Subreddit)
	}

	// growth = 100/10 = 10/hour; score = (200*1.5 + 80*2 + 10*3) * 1.4
	expected := (200*1.5 + 80*2 + 10*3.0) * 1.4
	if math.Abs(rb.Score-expected) > 0.01 {
		t.Errorf("Expected score %v, got %v", expected, rb.Score)
	}
}

func TestComputeRedditBuzzUnknownSubredditDefaultsToOne(t *testing.T) {
	db := setupTestDB(t)
	service := NewMomentumService(db)

	post := models.Post{
		ID:         uuid.New(),
		Platform:   models.PlatformReddit,
		Title:      "niche discussion",
		URL:        "https://www.reddit.com/r/obscuresub/comments/def/post/",
		ExternalID: "reddit-unknown",
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}
	addSnapshot(t, db, post.ID, models.MetricSnapshot{Upvotes: 48, Comments: 10}, time.Now())

	scores, err := service.ComputeRedditBuzz([]uuid.UUID{post.ID})
	if err != nil {
		t.Fatalf("ComputeRedditBuzz failed: %v", err)
	}

	// cold start growth = 48/24 = 2; score = 48*1.5 + 10*2 + 2*3
	expected := 48*1.5 + 10*2 + 2*3.0
	if math.Abs(scores[0].Score-expected) > 0.01 {
		t.Errorf("Expected score %v, got %v", expected, scores[0].Score)
	}
}

func TestComputeHNHeat(t *testing.T) {
	db := setupTestDB(t)
	service := NewMomentumService(db)

	published := time.Now().Add(-4 * time.Hour)
	post := models.Post{
		ID:          uuid.New(),
		Platform:    models.PlatformHackerNews,
		Title:       "fresh story",
		PublishedAt: &published,
		ExternalID:  "hn-heat-1",
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}
	addSnapshot(t, db, post.ID, models.MetricSnapshot{Score: 150, Comments: 40}, time.Now())

	scores, err := service.ComputeHNHeat([]uuid.UUID{post.ID})
	if err != nil {
		t.Fatalf("ComputeHNHeat failed: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("Expected 1 score, got %d", len(scores))
	}

	// 150*2 + 40*3 + (24-4) = 440
	if math.Abs(scores[0].Score-440) > 0.01 {
		t.Errorf("Expected heat ~440, got %v", scores[0].Score)
	}
}

func TestComputeHNHeatOldStoryGetsNoBoost(t *testing.T) {
	db := setupTestDB(t)
	service := NewMomentumService(db)

	published := time.Now().Add(-72 * time.Hour)
	post := models.Post{
		ID:          uuid.New(),
		Platform:    models.PlatformHackerNews,
		Title:       "old story",
		PublishedAt: &published,
		ExternalID:  "hn-heat-2",
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}
	addSnapshot(t, db, post.ID, models.MetricSnapshot{Score: 100, Comments: 10}, time.Now())

	scores, err := service.ComputeHNHeat([]uuid.UUID{post.ID})
	if err != nil {
		t.Fatalf("ComputeHNHeat failed: %v", err)
	}

	// boost floors at zero: 100*2 + 10*3 + 0
	if scores[0].Score != 230 {
		t.Errorf("Expected heat 230, got %v", scores[0].Score)
	}
}

func TestComputePHMomentum(t *testing.T) {
	db := setupTestDB(t)
	service := NewMomentumService(db)

	published := time.Now().Add(-12 * time.Hour)
	post := models.Post{
		ID:          uuid.New(),
		Platform:    models.PlatformProductHunt,
		Title:       "fresh launch",
		PublishedAt: &published,
		ExternalID:  "ph:1",
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}
	addSnapshot(t, db, post.ID, models.MetricSnapshot{Upvotes: 300, Comments: 45}, time.Now())

	scores, err := service.ComputePHMomentum([]uuid.UUID{post.ID})
	if err != nil {
		t.Fatalf("ComputePHMomentum failed: %v", err)
	}

	// 300*2 + 45*3 + (48-12) = 771, rounded to 2dp
	if math.Abs(scores[0].Score-771) > 0.01 {
		t.Errorf("Expected score ~771, got %v", scores[0].Score)
	}
}

func TestComputePHMomentumMissingPublishTime(t *testing.T) {
	db := setupTestDB(t)
	service := NewMomentumService(db)

	post := createPost(t, db, models.PlatformProductHunt, "ph:2")
	addSnapshot(t, db, post.ID, models.MetricSnapshot{Upvotes: 100, Comments: 20}, time.Now())

	scores, err := service.ComputePHMomentum([]uuid.UUID{post.ID})
	if err != nil {
		t.Fatalf("ComputePHMomentum failed: %v", err)
	}

	// no publish time means no recency boost: 100*2 + 20*3
	if scores[0].Score != 260 {
		t.Errorf("Expected score 260, got %v", scores[0].Score)
	}
}

func TestComputeNpmTraction(t *testing.T) {
	db := setupTestDB(t)
	service := NewMomentumService(db)

	post := createPost(t, db, models.PlatformNpm, "npm:fastpkg")
	addSnapshot(t, db, post.ID, models.MetricSnapshot{DownloadsWeekly: 250000, DownloadGrowth: 0.4}, time.Now())

	scores, err := service.ComputeNpmTraction([]uuid.UUID{post.ID})
	if err != nil {
		t.Fatalf("ComputeNpmTraction failed: %v", err)
	}

	// 250000/1000 + 0.4*50 = 270
	if scores[0].Score != 270 {
		t.Errorf("Expected traction 270, got %v", scores[0].Score)
	}
}

func TestComputeNpmTractionRoundsToTwoDecimals(t *testing.T) {
	db := setupTestDB(t)
	service := NewMomentumService(db)

	post := createPost(t, db, models.PlatformNpm, "npm:tinypkg")
	addSnapshot(t, db, post.ID, models.MetricSnapshot{DownloadsWeekly: 1234, DownloadGrowth: 0.123}, time.Now())

	scores, err := service.ComputeNpmTraction([]uuid.UUID{post.ID})
	if err != nil {
		t.Fatalf("ComputeNpmTraction failed: %v", err)
	}

	// 1.234 + 6.15 = 7.384 → 7.38
	if scores[0].Score != 7.38 {
		t.Errorf("Expected traction 7.38, got %v", scores[0].Score)
	}
}
