package collectors

import (
	"testing"
	"time"

	"builderpulse/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func TestSavePostCreatesPostAndSnapshot(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	post := models.Post{
		Platform:   models.PlatformGitHub,
		Title:      "cool/repo",
		URL:        "https://github.com/cool/repo",
		ExternalID: "github-123",
		Type:       models.PostTypeRepo,
	}
	if err := store.SavePost(&post, models.MetricSnapshot{Stars: 100, Forks: 10}); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}

	var count int64
	db.Model(&models.Post{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 post, got %d", count)
	}

	var snapshot models.MetricSnapshot
	if err := db.First(&snapshot).Error; err != nil {
		t.Fatalf("Expected a snapshot: %v", err)
	}
	if snapshot.Stars != 100 {
		t.Errorf("Expected snapshot stars 100, got %d", snapshot.Stars)
	}
	if snapshot.CollectedAt.IsZero() {
		t.Error("Expected collected_at to be set")
	}
}

func TestSavePostUpsertsByExternalID(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	first := models.Post{
		Platform:   models.PlatformGitHub,
		Title:      "cool/repo",
		ExternalID: "github-123",
	}
	if err := store.SavePost(&first, models.MetricSnapshot{Stars: 100}); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}

	// Re-collecting the same repo updates metadata and appends a snapshot
	// instead of creating a second post.
	second := models.Post{
		Platform:   models.PlatformGitHub,
		Title:      "cool/repo (renamed)",
		ExternalID: "github-123",
	}
	if err := store.SavePost(&second, models.MetricSnapshot{Stars: 130}); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}

	var postCount, snapCount int64
	db.Model(&models.Post{}).Count(&postCount)
	db.Model(&models.MetricSnapshot{}).Count(&snapCount)
	if postCount != 1 {
		t.Errorf("Expected 1 post after re-collection, got %d", postCount)
	}
	if snapCount != 2 {
		t.Errorf("Expected 2 snapshots, got %d", snapCount)
	}

	var saved models.Post
	db.First(&saved, "external_id = ?", "github-123")
	if saved.Title != "cool/repo (renamed)" {
		t.Errorf("Expected refreshed title, got %q", saved.Title)
	}

	// Both snapshots hang off the same post row.
	var snapshots []models.MetricSnapshot
	db.Where("post_id = ?", saved.ID).Order("collected_at ASC").Find(&snapshots)
	if len(snapshots) != 2 {
		t.Fatalf("Expected 2 snapshots for the post, got %d", len(snapshots))
	}
}

func TestSavePostDoesNotResetScores(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	post := models.Post{
		Platform:   models.PlatformGitHub,
		Title:      "cool/repo",
		ExternalID: "github-123",
	}
	if err := store.SavePost(&post, models.MetricSnapshot{Stars: 100}); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}

	// A scoring pass writes momentum between collections.
	db.Model(&models.Post{}).
		Where("external_id = ?", "github-123").
		Update("github_momentum", 293.5)

	again := models.Post{
		Platform:   models.PlatformGitHub,
		Title:      "cool/repo",
		ExternalID: "github-123",
	}
	if err := store.SavePost(&again, models.MetricSnapshot{Stars: 130}); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}

	var saved models.Post
	db.First(&saved, "external_id = ?", "github-123")
	if saved.GitHubMomentum != 293.5 {
		t.Errorf("Expected momentum preserved across collection, got %v", saved.GitHubMomentum)
	}
}

func TestLatestSnapshot(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	// Unknown package: nil, nil.
	snap, err := store.LatestSnapshot("npm:unknown")
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	if snap != nil {
		t.Error("Expected nil snapshot for unknown external id")
	}

	post := models.Post{
		Platform:   models.PlatformNpm,
		Title:      "fastpkg",
		ExternalID: "npm:fastpkg",
	}
	if err := store.SavePost(&post, models.MetricSnapshot{DownloadsWeekly: 1000}); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := store.SavePost(&post, models.MetricSnapshot{DownloadsWeekly: 1500}); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}

	snap, err = store.LatestSnapshot("npm:fastpkg")
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	if snap == nil {
		t.Fatal("Expected a snapshot")
	}
	if snap.DownloadsWeekly != 1500 {
		t.Errorf("Expected latest weekly downloads 1500, got %d", snap.DownloadsWeekly)
	}
}
