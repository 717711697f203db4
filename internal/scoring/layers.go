package scoring

import (
	"time"

	"builderpulse/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Tunable thresholds ──

var githubThresholds = struct {
	promisingMaxStars    int
	promisingMinVelocity float64
	trendingMinMomentum  float64
	trendingMaxStars     int
	hallOfFameMinStars   int
}{
	promisingMaxStars:    5000,
	promisingMinVelocity: 0.1,
	trendingMinMomentum:  50,
	trendingMaxStars:     50000,
	hallOfFameMinStars:   50000,
}

var hnThresholds = struct {
	promisingMaxScore    int
	promisingMinComments int
	promisingMaxAgeHours float64
	trendingMinScore     int
	trendingMinComments  int
	hallOfFameMinScore   int
}{
	promisingMaxScore:    200,
	promisingMinComments: 20,
	promisingMaxAgeHours: 12,
	trendingMinScore:     200,
	trendingMinComments:  100,
	hallOfFameMinScore:   500,
}

var redditThresholds = struct {
	promisingMaxUpvotes   int
	promisingMinGrowth    float64
	trendingMinUpvotes    int
	trendingMinComments   int
	hallOfFameMinUpvotes  int
}{
	promisingMaxUpvotes:  500,
	promisingMinGrowth:   10,
	trendingMinUpvotes:   500,
	trendingMinComments:  100,
	hallOfFameMinUpvotes: 5000,
}

var phThresholds = struct {
	promisingMaxUpvotes  int
	promisingMaxAgeHours float64
	trendingMinUpvotes   int
	hallOfFameMinUpvotes int
}{
	promisingMaxUpvotes:  200,
	promisingMaxAgeHours: 24,
	trendingMinUpvotes:   200,
	hallOfFameMinUpvotes: 1000,
}

var npmThresholds = struct {
	promisingMinGrowth  float64
	promisingMaxWeekly  int
	trendingMinWeekly   int
	hallOfFameMinWeekly int
}{
	promisingMinGrowth:  0.5,
	promisingMaxWeekly:  100000,
	trendingMinWeekly:   100000,
	hallOfFameMinWeekly: 1000000,
}

// staleAgeHours stands in for a missing published_at: effectively infinite,
// which fails every recency gate.
const staleAgeHours = 999

// PostClassification is the flattened per-post input the layer decision
// tables read. Absent metrics are zero-filled at the fetch boundary.
type PostClassification struct {
	ID              uuid.UUID
	Platform        models.Platform
	GitHubMomentum  float64
	HNHeat          float64
	RedditBuzz      float64
	PHMomentum      float64
	NpmTraction     float64
	PublishedAt     *time.Time
	LatestStars     int
	LatestUpvotes   int
	LatestComments  int
	LatestScore     int
	DownloadsWeekly int
	DownloadGrowth  float64
}

func ageInHours(publishedAt *time.Time) float64 {
	if publishedAt == nil {
		return staleAgeHours
	}
	return time.Since(*publishedAt).Hours()
}

func classifyGitHub(p PostClassification) (models.Layer, float64) {
	stars := p.LatestStars
	momentum := p.GitHubMomentum
	velocity := 0.0
	if stars > 0 {
		velocity = momentum / float64(stars)
	}

	if stars >= githubThresholds.hallOfFameMinStars {
		return models.LayerHallOfFame, velocity
	}
	if stars < githubThresholds.promisingMaxStars && velocity > githubThresholds.promisingMinVelocity {
		return models.LayerPromising, velocity
	}
	if momentum >= githubThresholds.trendingMinMomentum && stars < githubThresholds.trendingMaxStars {
		return models.LayerTrending, velocity
	}
	return models.LayerTrending, velocity
}

func classifyHN(p PostClassification) (models.Layer, float64) {
	score := p.LatestScore
	comments := p.LatestComments
	age := ageInHours(p.PublishedAt)
	velocity := 0.0
	if age > 0 {
		velocity = float64(score) / age
	}

	if score >= hnThresholds.hallOfFameMinScore {
		return models.LayerHallOfFame, velocity
	}
	if score < hnThresholds.promisingMaxScore && comments > hnThresholds.promisingMinComments && age < hnThresholds.promisingMaxAgeHours {
		return models.LayerPromising, velocity
	}
	if score >= hnThresholds.trendingMinScore || comments >= hnThresholds.trendingMinComments {
		return models.LayerTrending, velocity
	}
	return models.LayerPromising, velocity
}

func classifyReddit(p PostClassification) (models.Layer, float64) {
	upvotes := p.LatestUpvotes
	comments := p.LatestComments
	age := ageInHours(p.PublishedAt)
	velocity := 0.0
	if age > 0 {
		velocity = float64(upvotes) / age
	}

	if upvotes >= redditThresholds.hallOfFameMinUpvotes {
		return models.LayerHallOfFame, velocity
	}
	if upvotes < redditThresholds.promisingMaxUpvotes && velocity > redditThresholds.promisingMinGrowth {
		return models.LayerPromising, velocity
	}
	if upvotes >= redditThresholds.trendingMinUpvotes || comments >= redditThresholds.trendingMinComments {
		return models.LayerTrending, velocity
	}
	return models.LayerPromising, velocity
}

func classifyPH(p PostClassification) (models.Layer, float64) {
	upvotes := p.LatestUpvotes
	age := ageInHours(p.PublishedAt)
	velocity := 0.0
	if age > 0 {
		velocity = float64(upvotes) / age
	}

	if upvotes >= phThresholds.hallOfFameMinUpvotes {
		return models.LayerHallOfFame, velocity
	}
	if upvotes < phThresholds.promisingMaxUpvotes && age < phThresholds.promisingMaxAgeHours {
		return models.LayerPromising, velocity
	}
	if upvotes >= phThresholds.trendingMinUpvotes {
		return models.LayerTrending, velocity
	}
	return models.LayerPromising, velocity
}

func classifyNpm(p PostClassification) (models.Layer, float64) {
	weekly := p.DownloadsWeekly
	growth := p.DownloadGrowth
	velocity := growth

	if weekly >= npmThresholds.hallOfFameMinWeekly {
		return models.LayerHallOfFame, velocity
	}
	if growth > npmThresholds.promisingMinGrowth && weekly < npmThresholds.promisingMaxWeekly {
		return models.LayerPromising, velocity
	}
	if weekly >= npmThresholds.trendingMinWeekly {
		return models.LayerTrending, velocity
	}
	return models.LayerPromising, velocity
}

// ClassifyPost assigns a layer and a platform-specific velocity to one post.
// Pure: identical input always yields identical output, so posts move freely
// between layers as their metrics change from pass to pass.
func ClassifyPost(p PostClassification) (models.Layer, float64) {
	switch p.Platform {
	case models.PlatformGitHub:
		return classifyGitHub(p)
	case models.PlatformHackerNews:
		return classifyHN(p)
	case models.PlatformReddit:
		return classifyReddit(p)
	case models.PlatformProductHunt:
		return classifyPH(p)
	case models.PlatformNpm:
		return classifyNpm(p)
	default:
		return models.LayerTrending, 0
	}
}

// LayerService assigns display layers to recently collected posts
type LayerService struct {
	db *gorm.DB
}

// NewLayerService creates a new layer service
func NewLayerService(db *gorm.DB) *LayerService {
	return &LayerService{db: db}
}

// ClassifyAllRecentPosts reclassifies every post in the trailing window and
// persists layer and velocity. Returns how many posts were classified.
func (ls *LayerService) ClassifyAllRecentPosts(hoursBack int) (int, error) {
	since := time.Now().Add(-time.Duration(hoursBack) * time.Hour)

	var posts []models.Post
	if err := ls.db.Where("created_at >= ?", since).Find(&posts).Error; err != nil {
		return 0, err
	}
	if len(posts) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var snapshots []models.MetricSnapshot
	if err := ls.db.
		Where("post_id IN ?", ids).
		Order("collected_at DESC").
		Find(&snapshots).Error; err != nil {
		return 0, err
	}

	latestByPost := make(map[uuid.UUID]models.MetricSnapshot)
	for _, snap := range snapshots {
		if _, seen := latestByPost[snap.PostID]; !seen {
			latestByPost[snap.PostID] = snap
		}
	}

	classified := 0
	for _, post := range posts {
		latest := latestByPost[post.ID]

		layer, velocity := ClassifyPost(PostClassification{
			ID:              post.ID,
			Platform:        post.Platform,
			GitHubMomentum:  post.GitHubMomentum,
			HNHeat:          post.HNHeat,
			RedditBuzz:      post.RedditBuzz,
			PHMomentum:      post.PHMomentum,
			NpmTraction:     post.NpmTraction,
			PublishedAt:     post.PublishedAt,
			LatestStars:     latest.Stars,
			LatestUpvotes:   latest.Upvotes,
			LatestComments:  latest.Comments,
			LatestScore:     latest.Score,
			DownloadsWeekly: latest.DownloadsWeekly,
			DownloadGrowth:  latest.DownloadGrowth,
		})

		err := ls.db.Model(&models.Post{}).
			Where("id = ?", post.ID).
			Updates(map[string]interface{}{
				"layer":    layer,
				"velocity": velocity,
			}).Error
		if err != nil {
			return classified, err
		}
		classified++
	}

	return classified, nil
}
