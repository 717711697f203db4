package scoring

import (
	"time"

	"builderpulse/internal/models"

	"github.com/google/uuid"
)

// TopicRankingInput carries everything topic scoring needs: the member
// posts' blended momentum and the topic's creation time.
type TopicRankingInput struct {
	TopicID       uuid.UUID
	PostMomentums []PostMomentum
	CreatedAt     time.Time
}

// TopicScore is the aggregate trend standing of one topic.
type TopicScore struct {
	TopicID       uuid.UUID
	TrendScore    float64
	MomentumLabel models.MomentumLabel
	PlatformCount int
	Signals       []string
}

// ComputeTopicScore aggregates member momentum into a single trend score.
// Pure aggregation; the caller persists the result. A topic with no members
// degenerates to score 0 / label "new" / no signals.
func ComputeTopicScore(input TopicRankingInput) TopicScore {
	if len(input.PostMomentums) == 0 {
		return TopicScore{
			TopicID:       input.TopicID,
			TrendScore:    0,
			MomentumLabel: models.MomentumNew,
			PlatformCount: 0,
			Signals:       []string{},
		}
	}

	var totalMomentum float64
	var maxMomentum float64
	seen := make(map[models.Platform]bool)
	signals := []string{}
	for _, pm := range input.PostMomentums {
		totalMomentum += pm.MomentumScore
		if pm.MomentumScore > maxMomentum {
			maxMomentum = pm.MomentumScore
		}
		if pm.Platform != "" && !seen[pm.Platform] {
			seen[pm.Platform] = true
			signals = append(signals, string(pm.Platform))
		}
	}

	platformDiversityBonus := 1 + 0.2*float64(len(signals))

	ageHours := time.Since(input.CreatedAt).Hours()
	recencyFactor := 0.8
	switch {
	case ageHours < 6:
		recencyFactor = 1.5
	case ageHours < 24:
		recencyFactor = 1.2
	case ageHours < 72:
		recencyFactor = 1.0
	}

	trendScore := totalMomentum * platformDiversityBonus * recencyFactor

	// A topic is only as hot as its hottest member, not its average.
	return TopicScore{
		TopicID:       input.TopicID,
		TrendScore:    trendScore,
		MomentumLabel: MomentumLabelFor(maxMomentum),
		PlatformCount: len(signals),
		Signals:       signals,
	}
}
