package embedding

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/career-compass/internal/logger"
	"github.com/spigell/career-compass/internal/utils"
)

const (
	DefaultBatchSize   = 64
	DefaultMaxAttempts = 3
	DefaultBackoff     = 1500 * time.Millisecond
)

var waitFor = utils.WaitFor

// ProviderConfig tunes request shaping for a Provider.
type ProviderConfig struct {
	BatchSize   int
	MaxAttempts int
	// Backoff is multiplied by the attempt number between retries.
	Backoff time.Duration
	// RequestsPerSecond limits calls to the client. Zero means unlimited.
	RequestsPerSecond float64
	MaxLogLength      int
}

// Provider sends texts to a Client in bounded chunks and retries transient failures.
type Provider struct {
	client      Client
	batchSize   int
	maxAttempts int
	backoff     time.Duration
	limiter     *rate.Limiter
	logger      *zap.Logger
	maxLogLen   int
}

// NewProvider wraps client. Zero config values fall back to the defaults.
func NewProvider(client Client, cfg ProviderConfig, log *zap.Logger) *Provider {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = 120
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Provider{
		client:      client,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		limiter:     limiter,
		logger:      logger.WithFields(log, zap.String(logger.FieldModel, client.Model())),
		maxLogLen:   cfg.MaxLogLength,
	}
}

func (p *Provider) Model() string {
	return p.client.Model()
}

// Embed returns the vector for a single text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in chunks of the configured batch size, preserving order.
// A chunk that keeps failing aborts the call; vectors of earlier chunks are discarded.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += p.batchSize {
		end := min(start+p.batchSize, len(texts))

		vectors, err := p.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (p *Provider) embedChunk(ctx context.Context, chunk []string) ([][]float64, error) {
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		p.logger.Debug("embedding request",
			zap.Int("texts", len(chunk)),
			zap.Int("attempt", attempt),
			zap.Int("first_text_length", utf8.RuneCountInString(chunk[0])),
			zap.String("first_text_preview", utils.TruncateForLog(chunk[0], p.maxLogLen)),
		)

		vectors, err := p.client.EmbedTexts(ctx, chunk)
		if err == nil && len(vectors) != len(chunk) {
			err = fmt.Errorf("expected %d vectors, got %d", len(chunk), len(vectors))
		}
		if err == nil {
			return vectors, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		if attempt == p.maxAttempts {
			break
		}

		wait := utils.LinearBackoff(p.backoff, attempt)
		p.logger.Warn("embedding request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		if err := waitFor(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrProviderFailure, p.maxAttempts, lastErr)
}
