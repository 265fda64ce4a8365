package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const DefaultSkillCacheSize = 4096

// SkillCache memoizes vectors of short texts (skill names, job titles, role
// names) for the lifetime of the process. Keys are the exact text, so cached
// and uncached calls return identical vectors.
type SkillCache struct {
	next  Embedder
	cache *lru.Cache[string, []float64]
	group singleflight.Group
}

func NewSkillCache(next Embedder, size int) (*SkillCache, error) {
	if size <= 0 {
		size = DefaultSkillCacheSize
	}

	cache, err := lru.New[string, []float64](size)
	if err != nil {
		return nil, fmt.Errorf("create skill cache: %w", err)
	}

	return &SkillCache{next: next, cache: cache}, nil
}

func (c *SkillCache) Model() string {
	return c.next.Model()
}

// Embed returns the cached vector or embeds text once, even under concurrent misses.
func (c *SkillCache) Embed(ctx context.Context, text string) ([]float64, error) {
	if v, ok := c.cache.Get(text); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(text, func() (any, error) {
		vector, err := c.next.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		c.cache.Add(text, vector)
		return vector, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]float64), nil
}

// EmbedBatch serves hits from the cache and embeds the distinct misses in one batch.
func (c *SkillCache) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	pending := make(map[string][]int)
	var misses []string

	for i, text := range texts {
		if v, ok := c.cache.Get(text); ok {
			out[i] = v
			continue
		}
		if _, seen := pending[text]; !seen {
			misses = append(misses, text)
		}
		pending[text] = append(pending[text], i)
	}

	if len(misses) == 0 {
		return out, nil
	}

	vectors, err := c.next.EmbedBatch(ctx, misses)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(misses) {
		return nil, fmt.Errorf("expected %d vectors, got %d", len(misses), len(vectors))
	}

	for i, text := range misses {
		c.cache.Add(text, vectors[i])
		for _, idx := range pending[text] {
			out[idx] = vectors[i]
		}
	}

	return out, nil
}

// Len reports how many texts are currently cached.
func (c *SkillCache) Len() int {
	return c.cache.Len()
}
