package scoring

import (
	"builderpulse/internal/models"
)

const (
	breakoutVelocityThreshold = 0.2
	breakoutMaxStars          = 5000
)

// DetectBreakouts flags small GitHub repos whose 24h star velocity is large
// relative to their size. Repos above the star cap are exempt: the detector
// targets genuinely small, fast-moving repositories. Returns the number of
// breakouts marked.
func (s *MomentumService) DetectBreakouts(ghScores []GitHubScore) (int, error) {
	detected := 0

	for _, gh := range ghScores {
		if gh.TotalStars <= 0 || gh.TotalStars > breakoutMaxStars {
			continue
		}

		velocity := gh.Stars24h / float64(gh.TotalStars)
		if velocity <= breakoutVelocityThreshold {
			continue
		}

		// The breakout label overrides whatever the momentum pass assigned.
		err := s.db.Model(&models.Post{}).
			Where("id = ?", gh.PostID).
			Updates(map[string]interface{}{
				"is_early_breakout": true,
				"signal_label":      "Early Breakout",
			}).Error
		if err != nil {
			return detected, err
		}

		detected++
	}

	return detected, nil
}
