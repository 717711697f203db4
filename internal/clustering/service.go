// Package clustering groups semantically related posts into topics using
// vector embeddings and keeps topic trend scores fresh.
package clustering

import (
	"context"
	"fmt"
	"log"
	"time"

	"builderpulse/internal/models"
	"builderpulse/internal/openai"
	"builderpulse/internal/scoring"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	similarityThreshold = 0.3
	neighborLimit       = 10
	clusterBatchSize    = 100
	embedBatchSize      = 20
	externalCallTimeout = 30 * time.Second
	soloTitleLimit      = 100
	soloDescLimit       = 300
	fallbackTitleLimit  = 60
)

// Embedder turns text into fixed-length vectors, batched.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// Summarizer produces a short topic title from a list of post titles.
type Summarizer interface {
	SummarizeTitles(ctx context.Context, titles []string) (string, error)
}

// Neighbor is one nearest-neighbor candidate above the similarity threshold.
type Neighbor struct {
	ID         uuid.UUID
	Title      string
	Similarity float64
}

// NeighborSearcher finds embedded posts similar to a query vector.
type NeighborSearcher interface {
	FindSimilar(ctx context.Context, embedding []float32, threshold float64, excludeID uuid.UUID, limit int) ([]Neighbor, error)
}

// pgvectorSearcher runs nearest-neighbor queries against the posts table
// using the pgvector cosine distance operator.
type pgvectorSearcher struct {
	db *gorm.DB
}

func (s *pgvectorSearcher) FindSimilar(ctx context.Context, embedding []float32, threshold float64, excludeID uuid.UUID, limit int) ([]Neighbor, error) {
	var neighbors []Neighbor
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, title, 1 - (embedding <=> ?) AS similarity
		FROM posts
		WHERE embedding IS NOT NULL
		  AND id <> ?
		  AND 1 - (embedding <=> ?) >= ?
		ORDER BY embedding <=> ?
		LIMIT ?`,
		pgvector.NewVector(embedding),
		excludeID,
		pgvector.NewVector(embedding),
		threshold,
		pgvector.NewVector(embedding),
		limit,
	).Scan(&neighbors).Error
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return neighbors, nil
}

// Result summarizes one clustering run.
type Result struct {
	Processed     int `json:"processed"`
	TopicsCreated int `json:"topics_created"`
	TopicsUpdated int `json:"topics_updated"`
}

// Service is the topic clustering engine
type Service struct {
	db         *gorm.DB
	embedder   Embedder
	summarizer Summarizer
	searcher   NeighborSearcher
	momentum   *scoring.MomentumService
}

// NewService creates a new clustering service
func NewService(db *gorm.DB, embedder Embedder, summarizer Summarizer) *Service {
	return &Service{
		db:         db,
		embedder:   embedder,
		summarizer: summarizer,
		searcher:   &pgvectorSearcher{db: db},
		momentum:   scoring.NewMomentumService(db),
	}
}

// NewServiceFromEnv builds a clustering service backed by the OpenAI client
// configured through environment variables.
func NewServiceFromEnv(db *gorm.DB) *Service {
	client := openai.NewClientFromEnv()
	return NewService(db, client, client)
}

// RunClusteringJob embeds up to one batch of unembedded posts, assigns each
// to a new or existing topic, then recomputes every topic's trend score.
// Topic scores are refreshed even when there is nothing new to embed, since
// the underlying post momentum keeps moving.
func (s *Service) RunClusteringJob(ctx context.Context) (*Result, error) {
	result := &Result{}

	var unembedded []models.Post
	err := s.db.
		Select("id", "title", "description").
		Where("embedding IS NULL").
		Order("created_at DESC").
		Limit(clusterBatchSize).
		Find(&unembedded).Error
	if err != nil {
		return nil, fmt.Errorf("fetch unembedded posts: %w", err)
	}

	if len(unembedded) == 0 {
		if err := s.RecomputeAllTopicScores(); err != nil {
			return result, err
		}
		return result, nil
	}

	embedded := s.embedBatches(ctx, unembedded, result)

	for _, post := range embedded {
		if err := s.assignTopic(ctx, post, result); err != nil {
			// One bad item never aborts the run.
			log.Printf("❌ Failed to assign topic for post %s: %v", post.ID, err)
		}
	}

	if err := s.RecomputeAllTopicScores(); err != nil {
		return result, err
	}
	return result, nil
}

// embedBatches generates and persists embeddings in fixed-size batches. A
// failed batch is logged and skipped; later batches still run.
func (s *Service) embedBatches(ctx context.Context, posts []models.Post, result *Result) []models.Post {
	embedded := []models.Post{}

	for start := 0; start < len(posts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(posts))
		batch := posts[start:end]

		inputs := make([]string, len(batch))
		for i, post := range batch {
			inputs[i] = post.Title + " " + post.Description
		}

		callCtx, cancel := context.WithTimeout(ctx, externalCallTimeout)
		vectors, err := s.embedder.Embed(callCtx, inputs)
		cancel()
		if err != nil {
			log.Printf("❌ Embedding batch failed (%d posts): %v", len(batch), err)
			continue
		}

		for i := range batch {
			vec := pgvector.NewVector(vectors[i])
			if err := s.db.Model(&models.Post{}).
				Where("id = ?", batch[i].ID).
				Update("embedding", vec).Error; err != nil {
				log.Printf("❌ Failed to persist embedding for post %s: %v", batch[i].ID, err)
				continue
			}
			batch[i].Embedding = &vec
			embedded = append(embedded, batch[i])
			result.Processed++
		}
	}

	return embedded
}

// assignTopic links one newly embedded post to a topic: joining a
// neighbor's topic when one exists, creating a cluster topic when neighbors
// are unclustered, or a solo topic when there are no neighbors at all.
// Already-linked posts are skipped, so clustering a post twice is a no-op.
func (s *Service) assignTopic(ctx context.Context, post models.Post, result *Result) error {
	var existing int64
	if err := s.db.Model(&models.TopicPost{}).Where("post_id = ?", post.ID).Count(&existing).Error; err != nil {
		return fmt.Errorf("check existing link: %w", err)
	}
	if existing > 0 {
		return nil
	}

	neighbors, err := s.searcher.FindSimilar(ctx, post.Embedding.Slice(), similarityThreshold, post.ID, neighborLimit)
	if err != nil {
		return err
	}

	if len(neighbors) == 0 {
		return s.createSoloTopic(post, result)
	}

	topicID, found, err := s.resolveNeighborTopic(neighbors)
	if err != nil {
		return err
	}
	if found {
		if err := s.linkPosts(topicID, []uuid.UUID{post.ID}); err != nil {
			return err
		}
		result.TopicsUpdated++
		return nil
	}

	return s.createClusterTopic(ctx, post, neighbors, result)
}

// resolveNeighborTopic returns the topic an already-clustered neighbor
// belongs to. When neighbors span multiple topics the oldest topic wins
// (creation time, then id) so the choice is deterministic rather than
// query-order dependent.
func (s *Service) resolveNeighborTopic(neighbors []Neighbor) (uuid.UUID, bool, error) {
	ids := make([]uuid.UUID, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.ID
	}

	var topic models.Topic
	err := s.db.
		Joins("JOIN topic_posts ON topic_posts.topic_id = topics.id").
		Where("topic_posts.post_id IN ?", ids).
		Order("topics.created_at ASC, topics.id ASC").
		First(&topic).Error
	if err == gorm.ErrRecordNotFound {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("resolve neighbor topic: %w", err)
	}
	return topic.ID, true, nil
}

func (s *Service) createSoloTopic(post models.Post, result *Result) error {
	topic := models.Topic{
		Title:         truncate(post.Title, soloTitleLimit),
		Description:   truncate(post.Description, soloDescLimit),
		TrendScore:    0,
		MomentumLabel: models.MomentumNew,
		PlatformCount: 1,
		Signals:       []string{},
	}
	if err := s.db.Create(&topic).Error; err != nil {
		return fmt.Errorf("create solo topic: %w", err)
	}
	if err := s.linkPosts(topic.ID, []uuid.UUID{post.ID}); err != nil {
		return err
	}
	result.TopicsCreated++
	return nil
}

func (s *Service) createClusterTopic(ctx context.Context, post models.Post, neighbors []Neighbor, result *Result) error {
	titles := []string{post.Title}
	memberIDs := []uuid.UUID{post.ID}
	for _, n := range neighbors {
		titles = append(titles, n.Title)
		memberIDs = append(memberIDs, n.ID)
	}

	topic := models.Topic{
		Title:         s.topicTitle(ctx, titles),
		Description:   fmt.Sprintf("Cluster of related %s discussions", post.Title),
		TrendScore:    0,
		MomentumLabel: models.MomentumNew,
		PlatformCount: 1,
		Signals:       []string{},
	}
	if err := s.db.Create(&topic).Error; err != nil {
		return fmt.Errorf("create cluster topic: %w", err)
	}
	if err := s.linkPosts(topic.ID, memberIDs); err != nil {
		return err
	}
	result.TopicsCreated++
	return nil
}

// topicTitle asks the summarizer for a short title, falling back to the
// truncated seed title when the call fails or no summarizer is wired.
func (s *Service) topicTitle(ctx context.Context, titles []string) string {
	if s.summarizer != nil {
		callCtx, cancel := context.WithTimeout(ctx, externalCallTimeout)
		title, err := s.summarizer.SummarizeTitles(callCtx, titles)
		cancel()
		if err == nil {
			return title
		}
		log.Printf("⚠️  Topic title generation failed, falling back to seed title: %v", err)
	}
	return truncate(titles[0], fallbackTitleLimit)
}

// linkPosts upserts topic membership links. Duplicate links are ignored so
// partial retries and concurrent runs stay idempotent.
func (s *Service) linkPosts(topicID uuid.UUID, postIDs []uuid.UUID) error {
	links := make([]models.TopicPost, len(postIDs))
	for i, postID := range postIDs {
		links[i] = models.TopicPost{TopicID: topicID, PostID: postID}
	}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	if err != nil {
		return fmt.Errorf("link posts to topic %s: %w", topicID, err)
	}
	return nil
}

// RecomputeAllTopicScores refreshes trend score, momentum label, and
// platform signals for every topic from its members' current momentum.
func (s *Service) RecomputeAllTopicScores() error {
	var topics []models.Topic
	if err := s.db.Find(&topics).Error; err != nil {
		return fmt.Errorf("fetch topics: %w", err)
	}

	for _, topic := range topics {
		var postIDs []uuid.UUID
		if err := s.db.Model(&models.TopicPost{}).
			Where("topic_id = ?", topic.ID).
			Pluck("post_id", &postIDs).Error; err != nil {
			log.Printf("❌ Failed to list members for topic %s: %v", topic.ID, err)
			continue
		}

		momentums, err := s.momentum.ComputeMomentumForPosts(postIDs)
		if err != nil {
			log.Printf("❌ Failed to compute momentum for topic %s: %v", topic.ID, err)
			continue
		}

		score := scoring.ComputeTopicScore(scoring.TopicRankingInput{
			TopicID:       topic.ID,
			PostMomentums: momentums,
			CreatedAt:     topic.CreatedAt,
		})

		err = s.db.Model(&models.Topic{}).
			Where("id = ?", topic.ID).
			Updates(map[string]interface{}{
				"trend_score":    score.TrendScore,
				"momentum_label": score.MomentumLabel,
				"platform_count": score.PlatformCount,
				"signals":        pq.StringArray(score.Signals),
			}).Error
		if err != nil {
			log.Printf("❌ Failed to update scores for topic %s: %v", topic.ID, err)
		}
	}

	return nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
