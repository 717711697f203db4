package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MetricSnapshot is one point-in-time measurement of a post's engagement.
// Snapshots are append-only: each collector run adds one row per post, and
// readers order by collected_at descending so index 0 is the latest.
type MetricSnapshot struct {
	ID     uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	PostID uuid.UUID `json:"post_id" gorm:"index;not null"`

	Stars           int     `json:"stars" gorm:"default:0"`
	Comments        int     `json:"comments" gorm:"default:0"`
	Upvotes         int     `json:"upvotes" gorm:"default:0"`
	Score           int     `json:"score" gorm:"default:0"`
	Forks           int     `json:"forks" gorm:"default:0"`
	DownloadsWeekly int     `json:"downloads_weekly" gorm:"default:0"`
	DownloadGrowth  float64 `json:"download_growth" gorm:"default:0.0"`

	CollectedAt time.Time `json:"collected_at" gorm:"index;autoCreateTime"`
}

// TableName sets the table name for the MetricSnapshot model
func (MetricSnapshot) TableName() string {
	return "metric_snapshots"
}

// BeforeCreate assigns an ID when one was not provided
func (m *MetricSnapshot) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
