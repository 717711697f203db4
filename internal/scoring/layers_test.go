package scoring

import (
	"testing"
	"time"

	"builderpulse/internal/models"

	"github.com/google/uuid"
)

func hoursAgo(h float64) *time.Time {
	t := time.Now().Add(-time.Duration(h * float64(time.Hour)))
	return &t
}

func TestClassifyPost(t *testing.T) {
	tests := []struct {
		name     string
		input    PostClassification
		expected models.Layer
	}{
		{
			name: "github hall of fame by total stars",
			input: PostClassification{
				Platform:    models.PlatformGitHub,
				LatestStars: 60000,
			},
			expected: models.LayerHallOfFame,
		},
		{
			name: "github promising small fast repo",
			input: PostClassification{
				Platform:       models.PlatformGitHub,
				LatestStars:    100,
				GitHubMomentum: 50, // velocity 0.5
			},
			expected: models.LayerPromising,
		},
		{
			name: "github trending mid-size repo",
			input: PostClassification{
				Platform:       models.PlatformGitHub,
				LatestStars:    10000,
				GitHubMomentum: 80,
			},
			expected: models.LayerTrending,
		},
		{
			name: "hn hall of fame by score",
			input: PostClassification{
				Platform:    models.PlatformHackerNews,
				LatestScore: 600,
				PublishedAt: hoursAgo(3),
			},
			expected: models.LayerHallOfFame,
		},
		{
			name: "hn promising young active discussion",
			input: PostClassification{
				Platform:       models.PlatformHackerNews,
				LatestScore:    150,
				LatestComments: 30,
				PublishedAt:    hoursAgo(2),
			},
			expected: models.LayerPromising,
		},
		{
			name: "hn trending by comment volume",
			input: PostClassification{
				Platform:       models.PlatformHackerNews,
				LatestScore:    180,
				LatestComments: 150,
				PublishedAt:    hoursAgo(30),
			},
			expected: models.LayerTrending,
		},
		{
			name: "hn missing publish time fails recency gate",
			input: PostClassification{
				Platform:       models.PlatformHackerNews,
				LatestScore:    150,
				LatestComments: 120,
			},
			expected: models.LayerTrending,
		},
		{
			name: "reddit hall of fame",
			input: PostClassification{
				Platform:      models.PlatformReddit,
				LatestUpvotes: 6000,
				PublishedAt:   hoursAgo(10),
			},
			expected: models.LayerHallOfFame,
		},
		{
			name: "reddit promising fast climber",
			input: PostClassification{
				Platform:      models.PlatformReddit,
				LatestUpvotes: 400,
				PublishedAt:   hoursAgo(2), // 200 upvotes/hour
			},
			expected: models.LayerPromising,
		},
		{
			name: "producthunt promising fresh launch",
			input: PostClassification{
				Platform:      models.PlatformProductHunt,
				LatestUpvotes: 100,
				PublishedAt:   hoursAgo(5),
			},
			expected: models.LayerPromising,
		},
		{
			name: "producthunt trending established launch",
			input: PostClassification{
				Platform:      models.PlatformProductHunt,
				LatestUpvotes: 400,
				PublishedAt:   hoursAgo(30),
			},
			expected: models.LayerTrending,
		},
		{
			name: "npm hall of fame by weekly downloads",
			input: PostClassification{
				Platform:        models.PlatformNpm,
				DownloadsWeekly: 2000000,
			},
			expected: models.LayerHallOfFame,
		},
		{
			name: "npm promising by growth",
			input: PostClassification{
				Platform:        models.PlatformNpm,
				DownloadsWeekly: 5000,
				DownloadGrowth:  0.8,
			},
			expected: models.LayerPromising,
		},
		{
			name: "blog defaults to trending",
			input: PostClassification{
				Platform: models.PlatformBlog,
			},
			expected: models.LayerTrending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer, _ := ClassifyPost(tt.input)
			if layer != tt.expected {
				t.Errorf("Expected layer %v, got %v", tt.expected, layer)
			}
		})
	}
}

func TestClassifyPostIsPure(t *testing.T) {
	input := PostClassification{
		Platform:       models.PlatformGitHub,
		LatestStars:    100,
		GitHubMomentum: 50,
	}

	firstLayer, firstVelocity := ClassifyPost(input)
	for i := 0; i < 5; i++ {
		layer, velocity := ClassifyPost(input)
		if layer != firstLayer || velocity != firstVelocity {
			t.Fatal("Expected identical output for identical input")
		}
	}
}

func TestClassifyAllRecentPostsPersistsLayers(t *testing.T) {
	db := setupTestDB(t)
	service := NewLayerService(db)

	post := models.Post{
		ID:             uuid.New(),
		Platform:       models.PlatformGitHub,
		Title:          "small fast repo",
		ExternalID:     "github-layer-1",
		GitHubMomentum: 50,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}
	addSnapshot(t, db, post.ID, models.MetricSnapshot{Stars: 100}, time.Now())

	classified, err := service.ClassifyAllRecentPosts(48)
	if err != nil {
		t.Fatalf("ClassifyAllRecentPosts failed: %v", err)
	}
	if classified != 1 {
		t.Errorf("Expected 1 classified post, got %d", classified)
	}

	var updated models.Post
	if err := db.First(&updated, "id = ?", post.ID).Error; err != nil {
		t.Fatalf("Failed to reload post: %v", err)
	}
	if updated.Layer == nil || *updated.Layer != models.LayerPromising {
		t.Errorf("Expected layer promising, got %v", updated.Layer)
	}
	if updated.Velocity != 0.5 {
		t.Errorf("Expected velocity 0.5, got %v", updated.Velocity)
	}
}

func TestClassifyAllRecentPostsReassignsOnNewMetrics(t *testing.T) {
	db := setupTestDB(t)
	service := NewLayerService(db)

	post := models.Post{
		ID:             uuid.New(),
		Platform:       models.PlatformGitHub,
		Title:          "repo that grows up",
		ExternalID:     "github-layer-2",
		GitHubMomentum: 50,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}
	addSnapshot(t, db, post.ID, models.MetricSnapshot{Stars: 100}, time.Now().Add(-time.Hour))

	if _, err := service.ClassifyAllRecentPosts(48); err != nil {
		t.Fatalf("ClassifyAllRecentPosts failed: %v", err)
	}

	// The repo crosses the hall of fame threshold; the next pass must move
	// it, not leave it stuck in its old layer.
	addSnapshot(t, db, post.ID, models.MetricSnapshot{Stars: 60000}, time.Now())

	if _, err := service.ClassifyAllRecentPosts(48); err != nil {
		t.Fatalf("ClassifyAllRecentPosts failed: %v", err)
	}

	var updated models.Post
	if err := db.First(&updated, "id = ?", post.ID).Error; err != nil {
		t.Fatalf("Failed to reload post: %v", err)
	}
	if updated.Layer == nil || *updated.Layer != models.LayerHallOfFame {
		t.Errorf("Expected layer hall_of_fame after growth, got %v", updated.Layer)
	}
}
