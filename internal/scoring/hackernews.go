package scoring

import (
	"time"

	"builderpulse/internal/models"

	"github.com/google/uuid"
)

// HNHeatScore holds the Hacker News heat of one discussion post.
type HNHeatScore struct {
	PostID   uuid.UUID
	HNScore  int
	Comments int
	AgeHours float64
	Score    float64
}

// ComputeHNHeat scores Hacker News posts from their latest snapshot plus a
// recency boost that decays to zero over 24 hours.
func (s *MomentumService) ComputeHNHeat(postIDs []uuid.UUID) ([]HNHeatScore, error) {
	results := []HNHeatScore{}
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

		// Unknown publish time counts as brand new rather than stale here:
		// the boost only widens the score, it never gates it.
		ageHours := 0.0
		if published := publishedByID[postID]; published != nil {
			ageHours = now.Sub(*published).Hours()
		}
		recencyBoost := 24 - ageHours
		if recencyBoost < 0 {
			recencyBoost = 0
		}

		// hn_heat = (score * 2) + (comments * 3) + recency_boost
		score := float64(latest.Score)*2 + float64(latest.Comments)*3 + recencyBoost

		results = append(results, HNHeatScore{
			PostID:   postID,
			HNScore:  latest.Score,
			Comments: latest.Comments,
			AgeHours: ageHours,
			Score:    score,
		})
	}

	return results, nil
}
