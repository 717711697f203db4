// Package collectors fetches signals from each platform's public API and
// persists them as posts with appended metric snapshots.
package collectors

import (
	"fmt"
	"time"

	"builderpulse/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists collected posts and their metric snapshots. Posts are
// upserted by external_id so re-collecting an item updates the existing row;
// snapshots are append-only, one per collection run.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new collector store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SavePost upserts the post by external_id and appends one snapshot for this
// run. Metadata fields refresh on conflict; scoring fields are untouched.
func (s *Store) SavePost(post *models.Post, snapshot models.MetricSnapshot) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "url", "author", "description", "published_at", "updated_at",
		}),
	}).Create(post).Error
	if err != nil {
		return fmt.Errorf("upsert post %s: %w", post.ExternalID, err)
	}

	// Re-read the id: on the conflict path the in-memory struct may keep a
	// freshly generated id instead of the stored row's.
	var saved models.Post
	if err := s.db.Select("id").Where("external_id = ?", post.ExternalID).First(&saved).Error; err != nil {
		return fmt.Errorf("find post %s after upsert: %w", post.ExternalID, err)
	}

	snapshot.PostID = saved.ID
	snapshot.CollectedAt = time.Now()
	if err := s.db.Create(&snapshot).Error; err != nil {
		return fmt.Errorf("append snapshot for %s: %w", post.ExternalID, err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot for a post identified by
// external_id, or nil when the post has never been seen.
func (s *Store) LatestSnapshot(externalID string) (*models.MetricSnapshot, error) {
	var post models.Post
	err := s.db.Select("id").Where("external_id = ?", externalID).First(&post).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snapshot models.MetricSnapshot
	err = s.db.Where("post_id = ?", post.ID).Order("collected_at DESC").First(&snapshot).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
