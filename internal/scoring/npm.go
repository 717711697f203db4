package scoring

import (
	"math"

	"github.com/google/uuid"
)

// NpmScore holds the traction of one npm package post.
type NpmScore struct {
	PostID uuid.UUID
	Score  float64
}

// ComputeNpmTraction scores npm packages from weekly downloads and
// week-over-week download growth. Growth is stored on the snapshot by the
// npm collector, which compares against the previous run's reading.
func (s *MomentumService) ComputeNpmTraction(postIDs []uuid.UUID) ([]NpmScore, error) {
	results := []NpmScore{}
	if len(postIDs) == 0 {
		return results, nil
	}

	byPost, err := s.snapshotsByPost(postIDs)
	if err != nil {
		return nil, err
	}

	for _, postID := range postIDs {
		snapshots := byPost[postID]
		if len(snapshots) == 0 {
			continue
		}
		latest := snapshots[0]

		// npm_traction = (downloads_weekly / 1000) + (download_growth * 50)
		score := float64(latest.DownloadsWeekly)/1000 + latest.DownloadGrowth*50

		results = append(results, NpmScore{
			PostID: postID,
			Score:  math.Round(score*100) / 100,
		})
	}

	return results, nil
}
