package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeModels struct {
	mu      sync.Mutex
	calls   int
	configs []*genai.EmbedContentConfig
	texts   [][]string
	resp    *genai.EmbedContentResponse
	err     error
}

func (f *fakeModels) EmbedContent(_ context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.configs = append(f.configs, config)

	texts := make([]string, 0, len(contents))
	for _, c := range contents {
		texts = append(texts, c.Parts[0].Text)
	}
	f.texts = append(f.texts, texts)

	return f.resp, f.err
}

func TestClientEmbedTexts(t *testing.T) {
	models := &fakeModels{resp: &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{
			{Values: []float32{0.5, 0.25}},
			{Values: []float32{1, 0}},
		},
	}}

	c := newClient(models, Config{Dimension: 2}, zap.NewNop())

	vectors, err := c.EmbedTexts(context.Background(), []string{"python", "leadership"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vectors) != 2 || vectors[0][0] != 0.5 || vectors[0][1] != 0.25 || vectors[1][0] != 1 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}

	if c.Model() != defaultModel {
		t.Fatalf("expected default model, got %s", c.Model())
	}

	cfg := models.configs[0]
	if cfg.TaskType != defaultTaskType {
		t.Fatalf("unexpected task type %q", cfg.TaskType)
	}
	if cfg.OutputDimensionality == nil || *cfg.OutputDimensionality != 2 {
		t.Fatalf("expected output dimensionality to be set")
	}
	if strings.Join(models.texts[0], ",") != "python,leadership" {
		t.Fatalf("unexpected texts sent: %v", models.texts[0])
	}
}

func TestClientRejectsShortResponse(t *testing.T) {
	models := &fakeModels{resp: &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{1}}},
	}}
	c := newClient(models, Config{Model: "custom"}, zap.NewNop())

	if _, err := c.EmbedTexts(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error on embedding count mismatch")
	}
	if c.Model() != "custom" {
		t.Fatalf("expected custom model, got %s", c.Model())
	}
}

func TestClientCircuitBreakerOpens(t *testing.T) {
	apiErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	models := &fakeModels{err: apiErr}
	c := newClient(models, Config{}, zap.NewNop())

	for i := 0; i < breakerFailures; i++ {
		if _, err := c.EmbedTexts(context.Background(), []string{"a"}); err == nil {
			t.Fatal("expected error")
		}
	}

	_, err := c.EmbedTexts(context.Background(), []string{"a"})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if models.calls != breakerFailures {
		t.Fatalf("expected %d upstream calls, got %d", breakerFailures, models.calls)
	}
}

func TestClientNoTexts(t *testing.T) {
	models := &fakeModels{}
	c := newClient(models, Config{}, zap.NewNop())

	vectors, err := c.EmbedTexts(context.Background(), nil)
	if err != nil || vectors != nil {
		t.Fatalf("expected empty result, got %v %v", vectors, err)
	}
	if models.calls != 0 {
		t.Fatal("expected no upstream call")
	}
}
