package scoring

import (
	"math"
	"time"

	"builderpulse/internal/models"

	"github.com/google/uuid"
)

// PHScore holds the Product Hunt momentum of one launch post.
type PHScore struct {
	PostID uuid.UUID
	Score  float64
}

// ComputePHMomentum scores Product Hunt launches from their latest snapshot
// plus a recency boost over the launch's first 48 hours. A missing publish
// time counts as 48 hours old, which zeroes the boost.
func (s *MomentumService) ComputePHMomentum(postIDs []uuid.UUID) ([]PHScore, error) {
	results := []PHScore{}
	if len(postIDs) == 0 {
		return results, nil
	}

	var posts []models.Post
	if err := s.db.Select("id", "published_at").Where("id IN ?", postIDs).Find(&posts).Error; err != nil {
		return nil, err
	}
	publishedByID := make(map[uuid.UUID]*time.Time, len(posts))
	for _, p := range posts {
		publishedByID[p.ID] = p.PublishedAt
	}

	byPost, err := s.snapshotsByPost(postIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for _, postID := range postIDs {
		snapshots := byPost[postID]
		if len(snapshots) == 0 {
			continue
		}
		latest := snapshots[0]

		ageHours := 48.0
		if published := publishedByID[postID]; published != nil {
			ageHours = now.Sub(*published).Hours()
		}
		recencyBoost := 48 - ageHours
		if recencyBoost < 0 {
			recencyBoost = 0
		}

		// ph_momentum = (upvotes * 2) + (comments * 3) + recency_boost
		score := float64(latest.Upvotes)*2 + float64(latest.Comments)*3 + recencyBoost

		results = append(results, PHScore{
			PostID: postID,
			Score:  math.Round(score*100) / 100,
		})
	}

	return results, nil
}
