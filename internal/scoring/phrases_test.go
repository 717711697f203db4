package scoring

import (
	"testing"
	"time"

	"builderpulse/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected []string
	}{
		{
			name:     "strips stopwords and prefixes",
			title:    "Show HN: My new Rust CLI tool",
			expected: []string{"rust", "cli", "tool"},
		},
		{
			name:     "keeps tech tokens with symbols",
			title:    "C# and F# on .NET 9",
			expected: []string{"c#", "f#", ".net"},
		},
		{
			name:     "drops single characters",
			title:    "A b c database",
			expected: []string{"database"},
		},
		{
			name:     "empty title",
			title:    "",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.title)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected tokens %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Expected tokens %v, got %v", tt.expected, got)
					break
				}
			}
		})
	}
}

func TestExtractNgrams(t *testing.T) {
	tokens := []string{"rust", "cli", "tool"}

	bigrams := extractNgrams(tokens, 2)
	if len(bigrams) != 2 || bigrams[0] != "rust cli" || bigrams[1] != "cli tool" {
		t.Errorf("Expected [rust cli, cli tool], got %v", bigrams)
	}

	trigrams := extractNgrams(tokens, 3)
	if len(trigrams) != 1 || trigrams[0] != "rust cli tool" {
		t.Errorf("Expected [rust cli tool], got %v", trigrams)
	}

	if got := extractNgrams([]string{"solo"}, 2); len(got) != 0 {
		t.Errorf("Expected no bigrams from one token, got %v", got)
	}
}

func TestCountPhrasesOncePerTitle(t *testing.T) {
	// "vector database" appears twice inside one title but must count once.
	counts := countPhrases([]string{
		"Vector database versus vector database comparison",
		"Choosing a vector database",
	})

	if counts["vector database"] != 2 {
		t.Errorf("Expected 'vector database' count 2, got %d", counts["vector database"])
	}
}

func TestCapitalize(t *testing.T) {
	if got := capitalize("vector database"); got != "Vector Database" {
		t.Errorf("Expected 'Vector Database', got %q", got)
	}
}

func TestPhraseGrowth(t *testing.T) {
	if g := phraseGrowth(3, 0); g != 6 {
		t.Errorf("Expected brand-new phrase growth 6, got %v", g)
	}
	if g := phraseGrowth(6, 2); g != 2 {
		t.Errorf("Expected growth 2, got %v", g)
	}
	if g := phraseGrowth(1, 2); g != -0.5 {
		t.Errorf("Expected growth -0.5, got %v", g)
	}
}

func createTitledPost(t *testing.T, db *gorm.DB, title, externalID string, createdAt time.Time) {
	post := models.Post{
		ID:         uuid.New(),
		Platform:   models.PlatformHackerNews,
		Title:      title,
		ExternalID: externalID,
		CreatedAt:  createdAt,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}
}

func TestExtractTrendingTopics(t *testing.T) {
	db := setupTestDB(t)
	service := NewPhraseService(db)

	now := time.Now()
	titles := []string{
		"Why every team needs a vector database",
		"Vector database benchmarks for 2026",
		"Scaling your vector database to billions of rows",
		"Unrelated post about gardening",
	}
	for i, title := range titles {
		createTitledPost(t, db, title, uuid.NewString(), now.Add(-time.Duration(i)*time.Hour))
	}

	trending, err := service.ExtractTrendingTopics(48, 10)
	if err != nil {
		t.Fatalf("ExtractTrendingTopics failed: %v", err)
	}

	found := false
	for _, phrase := range trending {
		if phrase == "Vector Database" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected 'Vector Database' in trending topics, got %v", trending)
	}
}

func TestExtractTrendingTopicsRequiresThreeTitles(t *testing.T) {
	db := setupTestDB(t)
	service := NewPhraseService(db)

	now := time.Now()
	createTitledPost(t, db, "Edge runtime for the web", uuid.NewString(), now)
	createTitledPost(t, db, "Why an edge runtime matters", uuid.NewString(), now)

	trending, err := service.ExtractTrendingTopics(48, 10)
	if err != nil {
		t.Fatalf("ExtractTrendingTopics failed: %v", err)
	}
	if len(trending) != 0 {
		t.Errorf("Expected no trending phrases below three titles, got %v", trending)
	}
}

func TestExtractEmergingTopics(t *testing.T) {
	db := setupTestDB(t)
	service := NewPhraseService(db)

	now := time.Now()
	// Three fresh mentions, none in the previous window: growth 3×2 = 6.
	createTitledPost(t, db, "Local inference on consumer GPUs", uuid.NewString(), now.Add(-1*time.Hour))
	createTitledPost(t, db, "Local inference without the cloud", uuid.NewString(), now.Add(-2*time.Hour))
	createTitledPost(t, db, "Benchmarking local inference frameworks", uuid.NewString(), now.Add(-3*time.Hour))
	// A phrase that was already common yesterday should rank below it.
	createTitledPost(t, db, "Static typing debate continues", uuid.NewString(), now.Add(-2*time.Hour))
	createTitledPost(t, db, "Static typing for dynamic languages", uuid.NewString(), now.Add(-4*time.Hour))
	createTitledPost(t, db, "Static typing in practice", uuid.NewString(), now.Add(-30*time.Hour))
	createTitledPost(t, db, "More static typing arguments", uuid.NewString(), now.Add(-36*time.Hour))

	emerging, err := service.ExtractEmergingTopics(8)
	if err != nil {
		t.Fatalf("ExtractEmergingTopics failed: %v", err)
	}
	if len(emerging) == 0 {
		t.Fatal("Expected emerging phrases")
	}
	if emerging[0] != "Local Inference" {
		t.Errorf("Expected 'Local Inference' first, got %v", emerging)
	}
}
