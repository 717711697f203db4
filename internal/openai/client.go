// Package openai is a minimal client for the OpenAI embeddings and chat
// completions endpoints used by the clustering pipeline.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultTimeout   = 60 * time.Second
	EmbeddingModel   = "text-embedding-3-small"
	SummaryModel     = "gpt-4o-mini"
	maxEmbeddingText = 8000
)

// Client calls the OpenAI HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a client. An empty baseURL falls back to the public
// OpenAI endpoint; an empty apiKey is allowed so the pipeline can degrade
// gracefully when credentials are absent.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// NewClientFromEnv builds a client from OPENAI_API_KEY / OPENAI_BASE_URL.
func NewClientFromEnv() *Client {
	return NewClient(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_BASE_URL"), defaultTimeout)
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one embedding vector per input, in input order. Inputs are
// truncated to the model's practical character budget before sending.
func (c *Client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("embed: no inputs")
	}

	truncated := make([]string, len(inputs))
	for i, input := range inputs {
		if len(input) > maxEmbeddingText {
			input = input[:maxEmbeddingText]
		}
		truncated[i] = input
	}

	payload, err := json.Marshal(embeddingRequest{Model: EmbeddingModel, Input: truncated})
	if err != nil {
		return nil, fmt.Errorf("embed: marshal request: %w", err)
	}

	var parsed embeddingResponse
	if err := c.post(ctx, "/embeddings", payload, &parsed); err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(parsed.Data) != len(inputs) {
		return nil, fmt.Errorf("embed: expected %d vectors, got %d", len(inputs), len(parsed.Data))
	}

	vectors := make([][]float32, len(inputs))
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embed: vector index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const topicTitleSystemPrompt = "You generate concise topic titles (3-6 words) that describe what a group of developer content is about. Return only the title, no punctuation."

// SummarizeTitles asks the chat model for a short topic title describing a
// group of post titles. Only the first five titles are sent.
func (c *Client) SummarizeTitles(ctx context.Context, titles []string) (string, error) {
	if len(titles) == 0 {
		return "", fmt.Errorf("summarize: no titles")
	}
	if len(titles) > 5 {
		titles = titles[:5]
	}

	prompt := fmt.Sprintf(
		"These posts are all about the same topic:\n%s\n\nGenerate a short, clear topic title:",
		strings.Join(titles, "\n"),
	)

	payload, err := json.Marshal(chatRequest{
		Model: SummaryModel,
		Messages: []chatMessage{
			{Role: "system", Content: topicTitleSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   20,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("summarize: marshal request: %w", err)
	}

	var parsed chatResponse
	if err := c.post(ctx, "/chat/completions", payload, &parsed); err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("summarize: empty response")
	}

	title := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if title == "" {
		return "", fmt.Errorf("summarize: blank title")
	}
	return title, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
