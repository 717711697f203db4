package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MomentumLabel is a coarse bucket derived from momentum scores.
type MomentumLabel string

const (
	MomentumNew       MomentumLabel = "new"
	MomentumRising    MomentumLabel = "rising"
	MomentumExploding MomentumLabel = "exploding"
)

// Topic is a cluster of semantically related posts. Topics grow by
// accumulating posts; members are never removed during normal operation.
type Topic struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`

	TrendScore    float64       `json:"trend_score" gorm:"default:0.0"`
	MomentumLabel MomentumLabel `json:"momentum_label" gorm:"default:new"`
	PlatformCount int           `json:"platform_count" gorm:"default:0"`

	// Signals holds the distinct platform names present among member posts.
	Signals pq.StringArray `json:"signals" gorm:"type:text[]"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	TopicPosts []TopicPost `json:"topic_posts,omitempty" gorm:"foreignKey:TopicID"`
}

// TableName sets the table name for the Topic model
func (Topic) TableName() string {
	return "topics"
}

// BeforeCreate assigns an ID when one was not provided
func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TopicPost links a post to its topic. The unique index on post_id enforces
// that a post belongs to at most one topic; inserts use an on-conflict
// do-nothing clause so retried clustering runs stay idempotent.
type TopicPost struct {
	ID      uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	TopicID uuid.UUID `json:"topic_id" gorm:"index;not null"`
	PostID  uuid.UUID `json:"post_id" gorm:"uniqueIndex;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the TopicPost model
func (TopicPost) TableName() string {
	return "topic_posts"
}

// BeforeCreate assigns an ID when one was not provided
func (tp *TopicPost) BeforeCreate(tx *gorm.DB) error {
	if tp.ID == uuid.Nil {
		tp.ID = uuid.New()
	}
	return nil
}
