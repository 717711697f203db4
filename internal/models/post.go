package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Platform identifies where a signal was collected from.
type Platform string

const (
	PlatformGitHub      Platform = "github"
	PlatformHackerNews  Platform = "hackernews"
	PlatformReddit      Platform = "reddit"
	PlatformProductHunt Platform = "producthunt"
	PlatformNpm         Platform = "npm"
	PlatformBlog        Platform = "blog"
)

// AllPlatforms returns every platform the pipeline scores.
func AllPlatforms() []Platform {
	return []Platform{
		PlatformGitHub,
		PlatformHackerNews,
		PlatformReddit,
		PlatformProductHunt,
		PlatformNpm,
		PlatformBlog,
	}
}

// PostType describes what kind of signal a post is.
type PostType string

const (
	PostTypeRepo       PostType = "repo"
	PostTypeDiscussion PostType = "discussion"
	PostTypeArticle    PostType = "article"
	PostTypeProduct    PostType = "product"
	PostTypePackage    PostType = "package"
)

// Layer is the display tier a post is currently classified into.
type Layer string

const (
	LayerPromising  Layer = "promising"
	LayerTrending   Layer = "trending"
	LayerHallOfFame Layer = "hall_of_fame"
)

// Post represents one collected signal (repo, discussion, launch, package)
// from a platform. Re-collection of the same external item updates the row
// in place, keyed by ExternalID.
type Post struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Platform    Platform   `json:"platform" gorm:"index;not null"`
	Title       string     `json:"title" gorm:"not null"`
	URL         string     `json:"url"`
	Author      string     `json:"author"`
	Description string     `json:"description"`
	PublishedAt *time.Time `json:"published_at"`
	Type        PostType   `json:"type"`
	ExternalID  string     `json:"external_id" gorm:"uniqueIndex;not null"`

	// Embedding stays nil until the clustering job processes the post.
	Embedding *pgvector.Vector `json:"-" gorm:"type:vector(1536)"`

	// Per-platform momentum scores, written by the scoring pass.
	GitHubMomentum float64 `json:"github_momentum" gorm:"column:github_momentum;default:0.0"`
	HNHeat         float64 `json:"hn_heat" gorm:"default:0.0"`
	RedditBuzz     float64 `json:"reddit_buzz" gorm:"default:0.0"`
	PHMomentum     float64 `json:"ph_momentum" gorm:"default:0.0"`
	NpmTraction    float64 `json:"npm_traction" gorm:"default:0.0"`

	IsEarlyBreakout bool   `json:"is_early_breakout" gorm:"default:false"`
	SignalLabel     string `json:"signal_label"`

	// Layer and velocity are recomputed from scratch every classification
	// pass; velocity units are platform-specific and not comparable across
	// platforms.
	Layer    *Layer  `json:"layer" gorm:"index"`
	Velocity float64 `json:"velocity" gorm:"default:0.0"`

	CreatedAt time.Time `json:"created_at" gorm:"index;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Snapshots []MetricSnapshot `json:"snapshots,omitempty" gorm:"foreignKey:PostID"`
}

// TableName sets the table name for the Post model
func (Post) TableName() string {
	return "posts"
}

// BeforeCreate assigns an ID when one was not provided
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// MomentumFor returns the persisted momentum score for the post's platform.
func (p *Post) MomentumFor() float64 {
	switch p.Platform {
	case PlatformGitHub:
		return p.GitHubMomentum
	case PlatformHackerNews:
		return p.HNHeat
	case PlatformReddit:
		return p.RedditBuzz
	case PlatformProductHunt:
		return p.PHMomentum
	case PlatformNpm:
		return p.NpmTraction
	default:
		return 0
	}
}
