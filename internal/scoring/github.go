package scoring

import (
	"github.com/google/uuid"
)

// GitHubScore holds the GitHub momentum of one repo post and the raw deltas
// it was derived from. TotalStars is carried so the breakout detector can
// relate velocity to repo size.
type GitHubScore struct {
	PostID     uuid.UUID
	Stars24h   float64
	Forks24h   float64
	TotalStars int
	Score      float64
}

// ComputeGitHubMomentum scores GitHub posts from their two most recent
// snapshots. A single snapshot falls back to the 24h cold-start convention.
func (s *MomentumService) ComputeGitHubMomentum(postIDs []uuid.UUID) ([]GitHubScore, error) {
	results := []GitHubScore{}
	if len(postIDs) == 0 {
		return results, nil
	}

	byPost, err := s.snapshotsByPost(postIDs)
	if err != nil {
		return nil, err
	}

	for postID, snapshots := range byPost {
		if len(snapshots) == 0 {
			continue
		}

		latest := snapshots[0]

		var stars24h, forks24h float64
		if len(snapshots) > 1 {
			previous := snapshots[1]
			stars24h = float64(max(0, latest.Stars-previous.Stars))
			forks24h = float64(max(0, latest.Forks-previous.Forks))
		} else {
			stars24h = coldStartVelocity(latest.Stars)
			forks24h = coldStartVelocity(latest.Forks)
		}

		// github_momentum = (stars_24h * 4) + (forks_24h * 3) + (stars_7d * 1.5)
		// Forks double as a contributor-count proxy since contributor counts
		// are not collected; stars_7d is a linear extrapolation until a real
		// 7-day series exists.
		stars7d := stars24h * 3.5
		score := (stars24h * 4) + (forks24h * 3) + (forks24h * 5) + (stars7d * 1.5)

		results = append(results, GitHubScore{
			PostID:     postID,
			Stars24h:   stars24h,
			Forks24h:   forks24h,
			TotalStars: latest.Stars,
			Score:      score,
		})
	}

	return results, nil
}
