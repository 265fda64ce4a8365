// Package profilecache memoizes employee embeddings by content hash so that
// unchanged profiles are never re-embedded across runs.
package profilecache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/career-compass/internal/embedding"
	"github.com/spigell/career-compass/internal/logger"
	"github.com/spigell/career-compass/internal/profile"
)

const defaultWorkers = 4

// Cache serves processed employees, embedding a profile only when its content
// hash or the active model differs from the persisted record.
type Cache struct {
	store    Store
	embedder embedding.Embedder
	logger   *zap.Logger
	workers  int
	now      func() time.Time

	mu      sync.RWMutex
	records map[string]Record

	// dirty maps an id to the generation of its latest unsaved write.
	dirty      map[string]uint64
	generation uint64

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// BatchResult reports an ingestion run. Employees keeps the input order of the
// profiles that succeeded.
type BatchResult struct {
	Employees []profile.Employee
	Failed    map[string]error
}

// New loads the persisted records from store.
func New(ctx context.Context, store Store, embedder embedding.Embedder, log *zap.Logger, workers int) (*Cache, error) {
	if store == nil {
		return nil, errors.New("profile cache store is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	records, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile cache: %w", err)
	}

	return &Cache{
		store:    store,
		embedder: embedder,
		logger:   logger.WithCommonFields(log, "", embedder.Model()),
		workers:  workers,
		now:      time.Now,
		records:  records,
		dirty:    make(map[string]uint64),
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

// GetOrEmbed returns the employee for raw, reusing the cached vector when the
// profile content and the model are unchanged. Concurrent calls for the same
// id are serialized so the profile is embedded at most once.
func (c *Cache) GetOrEmbed(ctx context.Context, raw profile.Raw) (profile.Employee, error) {
	hash, err := raw.Hash()
	if err != nil {
		return profile.Employee{}, err
	}

	lock := c.lockFor(raw.ID)
	lock.Lock()
	defer lock.Unlock()

	model := c.embedder.Model()
	log := c.logger.With(zap.String(logger.FieldEntity, raw.ID))

	c.mu.RLock()
	rec, ok := c.records[raw.ID]
	c.mu.RUnlock()

	if ok && rec.Hash == hash && rec.Model == model && len(rec.Vector) > 0 {
		log.Debug("profile unchanged, reusing cached vector")
		return profile.NewEmployee(raw, hash, rec.Vector), nil
	}

	switch {
	case !ok:
		log.Debug("profile not cached, embedding")
	case rec.Model != model:
		log.Info("cached vector was produced by another model, re-embedding", zap.String("cached_model", rec.Model))
	default:
		log.Info("profile content changed, re-embedding")
	}

	vector, err := c.embedder.Embed(ctx, raw.Record.Blob())
	if err != nil {
		return profile.Employee{}, fmt.Errorf("embed profile %s: %w", raw.ID, err)
	}

	c.mu.Lock()
	c.records[raw.ID] = Record{
		Hash:         hash,
		Vector:       vector,
		LastEmbedded: c.now().UTC().Format(time.RFC3339),
		Model:        model,
	}
	c.generation++
	c.dirty[raw.ID] = c.generation
	c.mu.Unlock()

	return profile.NewEmployee(raw, hash, vector), nil
}

// Ingest processes raws with a bounded worker pool and flushes the new
// records. A failing profile is reported in Failed and does not stop the rest.
func (c *Cache) Ingest(ctx context.Context, raws []profile.Raw) (BatchResult, error) {
	employees := make([]profile.Employee, len(raws))
	failures := make([]error, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, raw := range raws {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				failures[i] = err
				return nil
			}
			employee, err := c.GetOrEmbed(gctx, raw)
			if err != nil {
				c.logger.Warn("profile ingestion failed",
					zap.String(logger.FieldEntity, raw.ID),
					zap.Error(err),
				)
				failures[i] = err
				return nil
			}
			employees[i] = employee
			return nil
		})
	}
	// workers never return errors, failures are collected per profile
	_ = g.Wait()

	result := BatchResult{Failed: make(map[string]error)}
	for i, raw := range raws {
		if failures[i] != nil {
			result.Failed[raw.ID] = failures[i]
			continue
		}
		result.Employees = append(result.Employees, employees[i])
	}

	c.logger.Info("profiles ingested",
		zap.Int("total", len(raws)),
		zap.Int("succeeded", len(result.Employees)),
		zap.Int("failed", len(result.Failed)),
	)

	if err := c.Flush(ctx); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// Flush persists every record changed since the previous flush.
func (c *Cache) Flush(ctx context.Context) error {
	c.mu.Lock()
	pending := make(map[string]Record, len(c.dirty))
	generations := make(map[string]uint64, len(c.dirty))
	for id, gen := range c.dirty {
		pending[id] = c.records[id]
		generations[id] = gen
	}
	c.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	if err := c.store.Save(ctx, pending); err != nil {
		return fmt.Errorf("persist profile cache: %w", err)
	}

	c.mu.Lock()
	for id, gen := range generations {
		if c.dirty[id] == gen {
			delete(c.dirty, id)
		}
	}
	c.mu.Unlock()

	c.logger.Debug("profile cache flushed", zap.Int("records", len(pending)))
	return nil
}

// Get returns the cached record for id.
func (c *Cache) Get(id string) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[id]
	return rec, ok
}

// IDs lists every cached entity id.
func (c *Cache) IDs() []string {
	c.mu.RLock()
	ids := make([]string, 0, len(c.records))
	for id := range c.records {
		ids = append(ids, id)
	}
	c.mu.RUnlock()

	profile.SortIDs(ids)
	return ids
}

func (c *Cache) lockFor(id string) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()

	lock, ok := c.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[id] = lock
	}
	return lock
}
