package scoring

import (
	"fmt"
	"log"
	"time"

	"builderpulse/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// signalPhrases maps momentum buckets to the human phrase shown on the
// dashboard, per platform. "new" keeps whatever label the post already has.
var signalPhrases = map[models.Platform]map[models.MomentumLabel]string{
	models.PlatformGitHub: {
		models.MomentumExploding: "Hot Repo",
		models.MomentumRising:    "Gaining Traction",
	},
	models.PlatformHackerNews: {
		models.MomentumExploding: "Hot Discussion",
		models.MomentumRising:    "Heating Up",
	},
	models.PlatformReddit: {
		models.MomentumExploding: "Community Buzz",
		models.MomentumRising:    "Gaining Traction",
	},
	models.PlatformProductHunt: {
		models.MomentumExploding: "Hot Launch",
		models.MomentumRising:    "Climbing the Board",
	},
	models.PlatformNpm: {
		models.MomentumExploding: "Exploding Package",
		models.MomentumRising:    "Growing Downloads",
	},
}

// momentumColumns maps each platform to its persisted momentum field.
var momentumColumns = map[models.Platform]string{
	models.PlatformGitHub:      "github_momentum",
	models.PlatformHackerNews:  "hn_heat",
	models.PlatformReddit:      "reddit_buzz",
	models.PlatformProductHunt: "ph_momentum",
	models.PlatformNpm:         "npm_traction",
}

// ScoringPassResult summarizes one scoring + classification pass.
type ScoringPassResult struct {
	Scored     int `json:"scored"`
	Breakouts  int `json:"breakouts"`
	Classified int `json:"classified"`
}

// PassService runs the scheduled scoring pass: platform momentum scorers,
// the breakout detector, then the layer classifier.
type PassService struct {
	db       *gorm.DB
	momentum *MomentumService
	layers   *LayerService
}

// NewPassService creates a new scoring pass service
func NewPassService(db *gorm.DB) *PassService {
	return &PassService{
		db:       db,
		momentum: NewMomentumService(db),
		layers:   NewLayerService(db),
	}
}

// recentPostIDs returns the ids of posts on one platform collected within
// the trailing window.
func (p *PassService) recentPostIDs(platform models.Platform, since time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.Model(&models.Post{}).
		Where("platform = ? AND created_at >= ?", platform, since).
		Pluck("id", &ids).Error
	return ids, err
}

// persistScore writes a platform momentum score and its derived signal
// label back onto the post. A "new" bucket leaves the existing label alone.
func (p *PassService) persistScore(platform models.Platform, postID uuid.UUID, score float64) error {
	updates := map[string]interface{}{
		momentumColumns[platform]: score,
	}
	if phrase, ok := signalPhrases[platform][MomentumLabelFor(score)]; ok {
		updates["signal_label"] = phrase
	}
	return p.db.Model(&models.Post{}).Where("id = ?", postID).Updates(updates).Error
}

// Run executes one full scoring pass over the trailing window. Each
// platform is scored independently: a failure on one platform is logged and
// the rest of the pass continues.
func (p *PassService) Run(hoursBack int) (*ScoringPassResult, error) {
	log.Println("🔄 Starting scoring pass...")
	since := time.Now().Add(-time.Duration(hoursBack) * time.Hour)
	result := &ScoringPassResult{}

	if n, err := p.scoreGitHub(since, result); err != nil {
		log.Printf("❌ GitHub scoring failed: %v", err)
	} else {
		log.Printf("📊 GitHub: scored %d posts, %d breakouts", n, result.Breakouts)
	}

	if err := p.scoreHackerNews(since, result); err != nil {
		log.Printf("❌ Hacker News scoring failed: %v", err)
	}
	if err := p.scoreReddit(since, result); err != nil {
		log.Printf("❌ Reddit scoring failed: %v", err)
	}
	if err := p.scoreProductHunt(since, result); err != nil {
		log.Printf("❌ Product Hunt scoring failed: %v", err)
	}
	if err := p.scoreNpm(since, result); err != nil {
		log.Printf("❌ npm scoring failed: %v", err)
	}

	classified, err := p.layers.ClassifyAllRecentPosts(hoursBack)
	if err != nil {
		return result, fmt.Errorf("layer classification failed: %w", err)
	}
	result.Classified = classified

	log.Printf("✅ Scoring pass completed: %d scored, %d breakouts, %d classified",
		result.Scored, result.Breakouts, result.Classified)
	return result, nil
}

func (p *PassService) scoreGitHub(since time.Time, result *ScoringPassResult) (int, error) {
	ids, err := p.recentPostIDs(models.PlatformGitHub, since)
	if err != nil {
		return 0, err
	}

	scores, err := p.momentum.ComputeGitHubMomentum(ids)
	if err != nil {
		return 0, err
	}
	for _, score := range scores {
		if err := p.persistScore(models.PlatformGitHub, score.PostID, score.Score); err != nil {
			return 0, err
		}
		result.Scored++
	}

	// Breakout detection runs after labels so "Early Breakout" overrides
	// the momentum-derived label.
	breakouts, err := p.momentum.DetectBreakouts(scores)
	if err != nil {
		return len(scores), err
	}
	result.Breakouts = breakouts
	return len(scores), nil
}

func (p *PassService) scoreHackerNews(since time.Time, result *ScoringPassResult) error {
	ids, err := p.recentPostIDs(models.PlatformHackerNews, since)
	if err != nil {
		return err
	}
	scores, err := p.momentum.ComputeHNHeat(ids)
	if err != nil {
		return err
	}
	for _, score := range scores {
		if err := p.persistScore(models.PlatformHackerNews, score.PostID, score.Score); err != nil {
			return err
		}
		result.Scored++
	}
	return nil
}

func (p *PassService) scoreReddit(since time.Time, result *ScoringPassResult) error {
	ids, err := p.recentPostIDs(models.PlatformReddit, since)
	if err != nil {
		return err
	}
	scores, err := p.momentum.ComputeRedditBuzz(ids)
	if err != nil {
		return err
	}
	for _, score := range scores {
		if err := p.persistScore(models.PlatformReddit, score.PostID, score.Score); err != nil {
			return err
		}
		result.Scored++
	}
	return nil
}

func (p *PassService) scoreProductHunt(since time.Time, result *ScoringPassResult) error {
	ids, err := p.recentPostIDs(models.PlatformProductHunt, since)
	if err != nil {
		return err
	}
	scores, err := p.momentum.ComputePHMomentum(ids)
	if err != nil {
		return err
	}
	for _, score := range scores {
		if err := p.persistScore(models.PlatformProductHunt, score.PostID, score.Score); err != nil {
			return err
		}
		result.Scored++
	}
	return nil
}

func (p *PassService) scoreNpm(since time.Time, result *ScoringPassResult) error {
	ids, err := p.recentPostIDs(models.PlatformNpm, since)
	if err != nil {
		return err
	}
	scores, err := p.momentum.ComputeNpmTraction(ids)
	if err != nil {
		return err
	}
	for _, score := range scores {
		if err := p.persistScore(models.PlatformNpm, score.PostID, score.Score); err != nil {
			return err
		}
		result.Scored++
	}
	return nil
}
