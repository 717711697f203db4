package scoring

import (
	"regexp"
	"strings"

	"builderpulse/internal/models"

	"github.com/google/uuid"
)

// RedditBuzzScore holds the Reddit buzz of one discussion post.
type RedditBuzzScore struct {
	PostID     uuid.UUID
	Upvotes    int
	Comments   int
	GrowthRate float64
	Subreddit  string
	Score      float64
}

// subredditMultipliers weights buzz by originating community. Unknown
// subreddits default to 1.0.
var subredditMultipliers = map[string]float64{
	"programming":     1.4,
	"machinelearning": 1.3,
	"startups":        1.2,
	"sideproject":     1.1,
	"webdev":          1.1,
	"devops":          1.1,
	"javascript":      1.0,
	"rust":            1.0,
	"golang":          1.0,
	"localllama":      1.2,
	"opensource":      1.1,
}

var subredditPattern = regexp.MustCompile(`reddit\.com/r/([^/]+)`)

// extractSubreddit pulls the subreddit name out of a post URL.
func extractSubreddit(url string) string {
	match := subredditPattern.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	return strings.ToLower(match[1])
}

// ComputeRedditBuzz scores Reddit posts from upvotes, comments, and the
// upvote growth rate between the two latest snapshots, weighted by a
// per-subreddit multiplier.
func (s *MomentumService) ComputeRedditBuzz(postIDs []uuid.UUID) ([]RedditBuzzScore, error) {
	results := []RedditBuzzScore{}
	if len(postIDs) == 0 {
		return results, nil
	}

	var posts []models.Post
	if err := s.db.Select("id", "url").Where("id IN ?", postIDs).Find(&posts).Error; err != nil {
		return nil, err
	}
	urlByID := make(map[uuid.UUID]string, len(posts))
	for _, p := range posts {
		urlByID[p.ID] = p.URL
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

		var growthRate float64
		if len(snapshots) > 1 {
			previous := snapshots[1]
			hoursDelta := latest.CollectedAt.Sub(previous.CollectedAt).Hours()
			growthRate = computeVelocity(latest.Upvotes, previous.Upvotes, hoursDelta)
		} else {
			growthRate = coldStartVelocity(latest.Upvotes)
		}

		subreddit := extractSubreddit(urlByID[postID])
		multiplier, ok := subredditMultipliers[subreddit]
		if !ok {
			multiplier = 1.0
		}

		// reddit_buzz = ((upvotes * 1.5) + (comments * 2) + (growth_rate * 3)) * subreddit_multiplier
		score := (float64(latest.Upvotes)*1.5 + float64(latest.Comments)*2 + growthRate*3) * multiplier

		results = append(results, RedditBuzzScore{
			PostID:     postID,
			Upvotes:    latest.Upvotes,
			Comments:   latest.Comments,
			GrowthRate: growthRate,
			Subreddit:  subreddit,
			Score:      score,
		})
	}

	return results, nil
}
