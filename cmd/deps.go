package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/career-compass/internal/ai"
	aigemini "github.com/spigell/career-compass/internal/ai/gemini"
	"github.com/spigell/career-compass/internal/catalog"
	"github.com/spigell/career-compass/internal/embedding"
	embedgemini "github.com/spigell/career-compass/internal/embedding/gemini"
	"github.com/spigell/career-compass/internal/logger"
	"github.com/spigell/career-compass/internal/profile"
	"github.com/spigell/career-compass/internal/profilecache"
	"github.com/spigell/career-compass/internal/secrets"
	"github.com/spigell/career-compass/internal/source"
)

const (
	providerGemini = "gemini"
	providerHash   = "hash"

	backendFile   = "file"
	backendSQLite = "sqlite"

	geminiKeyEnv = "GEMINI_API_KEY"
)

// runtime bundles what every command needs.
type runtime struct {
	config *Config
	logger *zap.Logger
}

func newRuntime() (*runtime, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is required")
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return &runtime{config: config, logger: log}, nil
}

// newEmbedder builds the configured provider. The returned embedder is used
// for profiles and catalogs; the matching engine gets it wrapped in a skill cache.
func (r *runtime) newEmbedder(ctx context.Context) (embedding.Embedder, error) {
	cfg := r.config.Embedding

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", providerHash:
		r.logger.Warn("using the deterministic hash embedder, similarities are not semantic",
			zap.Int("dimension", cfg.Dimension),
		)
		return embedding.NewHashEmbedder(cfg.Dimension), nil
	case providerGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: cfg.Gemini.APIKeyFile,
			Env:  geminiKeyEnv,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (or set embedding.gemini.api-key-file)", err)
		}

		client, err := embedgemini.NewClient(ctx, geminiEmbeddingConfig(cfg, apiKey), r.logger)
		if err != nil {
			return nil, err
		}

		return embedding.NewProvider(client, embedding.ProviderConfig{
			BatchSize:         cfg.BatchSize,
			MaxAttempts:       cfg.MaxRetries,
			Backoff:           cfg.Backoff,
			RequestsPerSecond: cfg.RequestsPerSecond,
			MaxLogLength:      cfg.Gemini.MaxLogLength,
		}, logger.WithCommonFields(r.logger, providerGemini, "")), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// openStore returns the profile cache store and a function releasing it.
func (r *runtime) openStore(ctx context.Context) (profilecache.Store, func(), error) {
	cfg := r.config.Cache
	path := strings.TrimSpace(cfg.Path)

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", backendFile:
		if path == "" {
			path = filepath.Join(r.config.DataDir, "profile_cache.json")
		}
		return profilecache.NewFileStore(path), func() {}, nil
	case backendSQLite:
		if path == "" {
			path = filepath.Join(r.config.DataDir, "profile_cache.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create cache directory: %w", err)
		}
		store, err := profilecache.OpenSQLiteStore(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				r.logger.Warn("closing profile cache database", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}

// loadProfiles reads the raw employee documents from a file or an HTTP API.
func (r *runtime) loadProfiles(ctx context.Context) ([]profile.Raw, error) {
	location := strings.TrimSpace(r.config.Employees)
	if location == "" {
		return nil, errors.New("employees source is not configured (set employees or --employees)")
	}

	var client *source.Client
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		token := ""
		if r.config.TokenFile != "" {
			var err error
			token, err = secrets.Load(secrets.Source{Name: "employees api token", File: r.config.TokenFile})
			if err != nil {
				return nil, err
			}
		}
		client = source.New(ctx, r.logger, token)
		if r.config.UserAgent != "" {
			client.UserAgent = r.config.UserAgent
		}
	}

	raws, err := source.Load(ctx, location, client)
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}

	r.logger.Info("employee profiles loaded", zap.Int("count", len(raws)), zap.String("source", location))
	return raws, nil
}

// ingest embeds the profiles through the profile cache.
func (r *runtime) ingest(ctx context.Context, emb embedding.Embedder) (profilecache.BatchResult, error) {
	raws, err := r.loadProfiles(ctx)
	if err != nil {
		return profilecache.BatchResult{}, err
	}

	store, release, err := r.openStore(ctx)
	if err != nil {
		return profilecache.BatchResult{}, err
	}
	defer release()

	cache, err := profilecache.New(ctx, store, emb, r.logger, r.config.Ingest.Workers)
	if err != nil {
		return profilecache.BatchResult{}, err
	}

	return cache.Ingest(ctx, raws)
}

// courseSeed reads the configured seed file, or returns the built-in seed.
func (r *runtime) courseSeed() ([]catalog.CourseSeed, error) {
	path := strings.TrimSpace(r.config.Courses)
	if path == "" {
		return catalog.DefaultCourseSeed(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open course seed: %w", err)
	}
	defer f.Close()

	return decodeCourseSeed(f)
}

func decodeCourseSeed(r io.Reader) ([]catalog.CourseSeed, error) {
	var docs []map[string]any
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode course seed: %w", err)
	}

	var seeds []catalog.CourseSeed
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &seeds,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create course seed decoder: %w", err)
	}
	if err := decoder.Decode(docs); err != nil {
		return nil, fmt.Errorf("decode course seed: %w", err)
	}
	return seeds, nil
}

// newSummarizer returns nil when summaries are disabled. A Gemini summarizer
// falls back to the template summary when the API fails.
func (r *runtime) newSummarizer(ctx context.Context) (ai.Summarizer, error) {
	cfg := r.config.Summary
	if !cfg.Enabled {
		return nil, nil
	}

	if strings.TrimSpace(cfg.Gemini.APIKeyFile) == "" && os.Getenv(geminiKeyEnv) == "" {
		r.logger.Info("gemini summary is not configured, using template summary")
		return ai.Template{}, nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  geminiKeyEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (or set summary.gemini.api-key-file)", err)
	}

	generator, err := aigemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	summarizer := aigemini.NewSummarizer(generator, r.logger, cfg.Gemini.MaxLogLength)
	return ai.WithFallback(summarizer, ai.Template{}, r.logger), nil
}

func geminiEmbeddingConfig(cfg EmbeddingConfig, apiKey string) embedgemini.Config {
	return embedgemini.Config{
		APIKey:    apiKey,
		Model:     cfg.Gemini.Model,
		Dimension: cfg.Dimension,
	}
}
