// Package scoring implements the momentum, classification, and ranking core
// of the builderpulse pipeline.
package scoring

import (
	"time"

	"builderpulse/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostMomentum is the blended momentum of a single post, used for topic
// ranking. The per-platform scorers in this package produce the platform
// momentum fields persisted on the Post; this blend is platform-agnostic.
type PostMomentum struct {
	PostID          uuid.UUID
	Platform        models.Platform
	StarVelocity    float64
	CommentVelocity float64
	UpvoteVelocity  float64
	MomentumScore   float64
	Label           models.MomentumLabel
}

// MomentumService computes momentum scores from metric snapshot history
type MomentumService struct {
	db *gorm.DB
}

// NewMomentumService creates a new momentum service
func NewMomentumService(db *gorm.DB) *MomentumService {
	return &MomentumService{db: db}
}

// computeVelocity returns the per-hour growth between two readings, floored
// at zero. Negative deltas (stars removed, posts un-upvoted) are not signal.
func computeVelocity(current, previous int, hoursDelta float64) float64 {
	if hoursDelta <= 0 {
		return 0
	}
	v := float64(current-previous) / hoursDelta
	if v < 0 {
		return 0
	}
	return v
}

// coldStartVelocity is the single-snapshot convention: treat the only
// reading as 24 hours of uniform accumulation.
func coldStartVelocity(latest int) float64 {
	return float64(latest) / 24
}

// MomentumLabelFor buckets a momentum score into new/rising/exploding.
func MomentumLabelFor(score float64) models.MomentumLabel {
	if score > 100 {
		return models.MomentumExploding
	}
	if score > 30 {
		return models.MomentumRising
	}
	return models.MomentumNew
}

// snapshotsByPost loads snapshot history for the given posts, newest first,
// grouped per post.
func (s *MomentumService) snapshotsByPost(postIDs []uuid.UUID) (map[uuid.UUID][]models.MetricSnapshot, error) {
	var snapshots []models.MetricSnapshot
	if err := s.db.
		Where("post_id IN ?", postIDs).
		Order("collected_at DESC").
		Find(&snapshots).Error; err != nil {
		return nil, err
	}

	byPost := make(map[uuid.UUID][]models.MetricSnapshot)
	for _, snap := range snapshots {
		byPost[snap.PostID] = append(byPost[snap.PostID], snap)
	}
	return byPost, nil
}

// ComputeMomentumForPosts computes the blended momentum score for each post
// with at least one snapshot. Posts with no snapshots are skipped, not an
// error.
func (s *MomentumService) ComputeMomentumForPosts(postIDs []uuid.UUID) ([]PostMomentum, error) {
	results := []PostMomentum{}
	if len(postIDs) == 0 {
		return results, nil
	}

	byPost, err := s.snapshotsByPost(postIDs)
	if err != nil {
		return nil, err
	}

	var posts []models.Post
	if err := s.db.Select("id", "platform").Where("id IN ?", postIDs).Find(&posts).Error; err != nil {
		return nil, err
	}
	platformByID := make(map[uuid.UUID]models.Platform, len(posts))
	for _, p := range posts {
		platformByID[p.ID] = p.Platform
	}

	for postID, snapshots := range byPost {
		if len(snapshots) == 0 {
			continue
		}

		latest := snapshots[0]

		var starVelocity, commentVelocity, upvoteVelocity float64
		if len(snapshots) > 1 {
			previous := snapshots[1]
			hoursDelta := latest.CollectedAt.Sub(previous.CollectedAt).Hours()

			starVelocity = computeVelocity(latest.Stars, previous.Stars, hoursDelta)
			commentVelocity = computeVelocity(latest.Comments, previous.Comments, hoursDelta)
			upvoteVelocity = computeVelocity(latest.Upvotes, previous.Upvotes, hoursDelta)
		} else {
			starVelocity = coldStartVelocity(latest.Stars)
			commentVelocity = coldStartVelocity(latest.Comments)
			upvoteVelocity = coldStartVelocity(latest.Upvotes)
		}

		momentumScore := starVelocity*0.5 + commentVelocity*0.3 + upvoteVelocity*0.2

		results = append(results, PostMomentum{
			PostID:          postID,
			Platform:        platformByID[postID],
			StarVelocity:    starVelocity,
			CommentVelocity: commentVelocity,
			UpvoteVelocity:  upvoteVelocity,
			MomentumScore:   momentumScore,
			Label:           MomentumLabelFor(momentumScore),
		})
	}

	return results, nil
}

// ComputeMomentumForAllRecentPosts computes blended momentum for every post
// collected within the trailing window.
func (s *MomentumService) ComputeMomentumForAllRecentPosts(hoursBack int) ([]PostMomentum, error) {
	since := time.Now().Add(-time.Duration(hoursBack) * time.Hour)

	var ids []uuid.UUID
	if err := s.db.Model(&models.Post{}).
		Where("created_at >= ?", since).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []PostMomentum{}, nil
	}

	return s.ComputeMomentumForPosts(ids)
}
