package scoring

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"builderpulse/internal/models"

	"gorm.io/gorm"
)

// stopwords filters common English plus domain filler ("show hn", "via",
// "using") out of phrase extraction.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true,
	"of": true, "with": true, "by": true, "from": true, "is": true, "it": true,
	"its": true, "was": true, "are": true, "be": true,
	"has": true, "have": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true,
	"should": true, "may": true, "might": true, "can": true, "this": true,
	"that": true, "these": true, "those": true,
	"i": true, "you": true, "he": true, "she": true, "we": true, "they": true,
	"my": true, "your": true, "his": true, "her": true,
	"our": true, "their": true, "what": true, "which": true, "who": true,
	"whom": true, "how": true, "when": true, "where": true,
	"why": true, "not": true, "no": true, "if": true, "then": true, "else": true,
	"so": true, "as": true, "up": true, "out": true,
	"about": true, "into": true, "over": true, "after": true, "before": true,
	"between": true, "under": true, "above": true,
	"all": true, "each": true, "every": true, "both": true, "few": true,
	"more": true, "most": true, "other": true, "some": true,
	"such": true, "than": true, "too": true, "very": true, "just": true,
	"also": true, "now": true, "new": true, "like": true,
	"show": true, "hn": true, "ask": true, "tell": true, "via": true,
	"using": true, "use": true, "get": true, "got": true,
	"one": true, "two": true, "first": true, "way": true, "make": true,
	"made": true, "much": true, "many": true, "own": true,
	"here": true, "there": true, "only": true, "still": true, "even": true,
	"back": true, "any": true, "well": true,
	"already": true, "need": true, "want": true, "going": true, "been": true,
	"being": true, "vs": true, "yet": true,
}

var nonTokenChars = regexp.MustCompile(`[^a-z0-9\s+#.-]`)
var whitespace = regexp.MustCompile(`\s+`)

// tokenize lowercases a title, strips everything outside [a-z0-9+#.-], and
// drops single-character tokens and stopwords.
func tokenize(text string) []string {
	cleaned := nonTokenChars.ReplaceAllString(strings.ToLower(text), " ")
	words := whitespace.Split(strings.TrimSpace(cleaned), -1)

	tokens := []string{}
	for _, w := range words {
		if len(w) > 1 && !stopwords[w] {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// extractNgrams returns every contiguous n-token sequence.
func extractNgrams(tokens []string, n int) []string {
	ngrams := []string{}
	for i := 0; i+n <= len(tokens); i++ {
		ngrams = append(ngrams, strings.Join(tokens[i:i+n], " "))
	}
	return ngrams
}

// countPhrases counts 2-grams and 3-grams across titles. Each phrase counts
// at most once per title so a single repetitive title cannot dominate.
func countPhrases(titles []string) map[string]int {
	counts := make(map[string]int)
	for _, title := range titles {
		tokens := tokenize(title)
		seen := make(map[string]bool)
		for _, phrase := range append(extractNgrams(tokens, 2), extractNgrams(tokens, 3)...) {
			if seen[phrase] {
				continue
			}
			seen[phrase] = true
			counts[phrase]++
		}
	}
	return counts
}

func capitalize(phrase string) string {
	words := strings.Split(phrase, " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// PhraseService extracts human-readable topic phrases from recent post
// titles, independent of the embedding pipeline.
type PhraseService struct {
	db *gorm.DB
}

// NewPhraseService creates a new phrase service
func NewPhraseService(db *gorm.DB) *PhraseService {
	return &PhraseService{db: db}
}

func (ps *PhraseService) titlesBetween(from, to time.Time) ([]string, error) {
	query := ps.db.Model(&models.Post{}).Where("created_at >= ?", from).Limit(500)
	if !to.IsZero() {
		query = query.Where("created_at < ?", to)
	}

	var titles []string
	if err := query.Pluck("title", &titles).Error; err != nil {
		return nil, err
	}
	return titles, nil
}

// ExtractTrendingTopics returns the phrases appearing in at least three
// distinct titles within the trailing window, most frequent first.
func (ps *PhraseService) ExtractTrendingTopics(hoursBack, limit int) ([]string, error) {
	since := time.Now().Add(-time.Duration(hoursBack) * time.Hour)

	titles, err := ps.titlesBetween(since, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return []string{}, nil
	}

	counts := countPhrases(titles)

	type phraseCount struct {
		phrase string
		count  int
	}
	ranked := []phraseCount{}
	for phrase, count := range counts {
		if count >= 3 {
			ranked = append(ranked, phraseCount{phrase, count})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].phrase < ranked[j].phrase
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	trending := make([]string, len(ranked))
	for i, pc := range ranked {
		trending[i] = capitalize(pc.phrase)
	}
	return trending, nil
}

// phraseGrowth computes the growth of a phrase between windows. Brand-new
// phrases get a fixed 2x-count bonus instead of dividing by zero.
func phraseGrowth(recent, previous int) float64 {
	if previous == 0 {
		return float64(recent) * 2
	}
	return float64(recent-previous) / float64(previous)
}

// ExtractEmergingTopics compares the last 24h of titles against the 24h
// before and returns the fastest-growing phrases seen at least twice
// recently.
func (ps *PhraseService) ExtractEmergingTopics(limit int) ([]string, error) {
	now := time.Now()
	recentSince := now.Add(-24 * time.Hour)
	previousSince := now.Add(-48 * time.Hour)

	recentTitles, err := ps.titlesBetween(recentSince, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(recentTitles) == 0 {
		return []string{}, nil
	}

	previousTitles, err := ps.titlesBetween(previousSince, recentSince)
	if err != nil {
		return nil, err
	}

	recentCounts := countPhrases(recentTitles)
	previousCounts := countPhrases(previousTitles)

	type phraseGrowthEntry struct {
		phrase string
		growth float64
	}
	emerging := []phraseGrowthEntry{}
	for phrase, recentCount := range recentCounts {
		if recentCount < 2 {
			continue
		}
		growth := phraseGrowth(recentCount, previousCounts[phrase])
		if growth > 0 {
			emerging = append(emerging, phraseGrowthEntry{phrase, growth})
		}
	}

	sort.Slice(emerging, func(i, j int) bool {
		if emerging[i].growth != emerging[j].growth {
			return emerging[i].growth > emerging[j].growth
		}
		return emerging[i].phrase < emerging[j].phrase
	})

	if len(emerging) > limit {
		emerging = emerging[:limit]
	}
	phrases := make([]string, len(emerging))
	for i, e := range emerging {
		phrases[i] = capitalize(e.phrase)
	}
	return phrases, nil
}
