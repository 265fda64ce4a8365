// Package gemini talks to the Gemini embedding endpoint.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/career-compass/internal/logger"
)

const (
	defaultModel    = "text-embedding-004"
	defaultTaskType = "SEMANTIC_SIMILARITY"

	breakerFailures = 5
	breakerTimeout  = 30 * time.Second
)

type embedContentAPI interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Client implements embedding.Client on top of the Google GenAI SDK.
type Client struct {
	models    embedContentAPI
	modelName string
	dimension int32
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// Config describes the Gemini embedding deployment.
type Config struct {
	APIKey string
	Model  string
	// Dimension truncates output vectors when positive.
	Dimension int
}

// NewClient creates a client for the Gemini API backend.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newClient(client.Models, cfg, log), nil
}

func newClient(models embedContentAPI, cfg Config, log *zap.Logger) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	log = logger.WithCommonFields(log, "gemini", model)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "gemini-embeddings",
		Timeout: breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("embedding circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		models:    models,
		modelName: model,
		dimension: int32(cfg.Dimension),
		breaker:   breaker,
		logger:    log,
	}
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.modelName
}

// EmbedTexts embeds every text in a single request, preserving order.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if c == nil || c.models == nil {
		return nil, errors.New("gemini embedding client is not initialized")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: text}},
		}
	}

	cfg := &genai.EmbedContentConfig{TaskType: defaultTaskType}
	if c.dimension > 0 {
		cfg.OutputDimensionality = genai.Ptr(c.dimension)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.models.EmbedContent(ctx, c.modelName, contents, cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	resp, ok := result.(*genai.EmbedContentResponse)
	if !ok || resp == nil {
		return nil, errors.New("gemini api returned empty embedding response")
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini api returned %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	out := make([][]float64, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini api returned empty embedding at position %d", i)
		}
		vector := make([]float64, len(emb.Values))
		for j, v := range emb.Values {
			vector[j] = float64(v)
		}
		out[i] = vector
	}

	c.logger.Debug("embedded texts", zap.Int("count", len(out)), zap.Int("dimension", len(out[0])))

	return out, nil
}
