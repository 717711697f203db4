package collectors

import (
	"context"
	"log"

	"builderpulse/internal/models"

	"gorm.io/gorm"
)

// Result summarizes one collector run.
type Result struct {
	Collected int      `json:"collected"`
	Errors    []string `json:"errors,omitempty"`
}

// Collector fetches recent signals from one platform and persists them.
type Collector interface {
	Platform() models.Platform
	Collect(ctx context.Context) (*Result, error)
}

// NewAll builds the full collector set against one database handle.
func NewAll(db *gorm.DB) []Collector {
	store := NewStore(db)
	return []Collector{
		NewGitHubCollector(store),
		NewHackerNewsCollector(store),
		NewRedditCollector(store),
		NewProductHuntCollector(store),
		NewNpmCollector(store),
		NewBlogCollector(store),
	}
}

// RunAll runs every collector, logging per-platform outcomes. A failing
// platform never stops the others.
func RunAll(ctx context.Context, collectors []Collector) map[models.Platform]*Result {
	results := make(map[models.Platform]*Result, len(collectors))
	for _, c := range collectors {
		result, err := c.Collect(ctx)
		if err != nil {
			log.Printf("❌ %s collector failed: %v", c.Platform(), err)
			if result == nil {
				result = &Result{Errors: []string{err.Error()}}
			}
		} else {
			log.Printf("📥 %s: collected %d posts (%d errors)", c.Platform(), result.Collected, len(result.Errors))
		}
		results[c.Platform()] = result
	}
	return results
}
