package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

// FoodCache is an in-memory nutrition cache.
type FoodCache struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*domain.FoodRecord
	byExt   map[int64]uuid.UUID
}

// NewFoodCache creates an empty FoodCache.
func NewFoodCache() *FoodCache {
	return &FoodCache{
		records: make(map[uuid.UUID]*domain.FoodRecord),
		byExt:   make(map[int64]uuid.UUID),
	}
}

// Search mirrors the SQL stores: case-insensitive substring match ranked
// exact, prefix, other, then last_updated DESC and id.
func (c *FoodCache) Search(_ context.Context, query string, limit int) ([]domain.FoodRecord, error) {
	q := strings.ToLower(query)

	c.mu.RLock()
	matches := make([]domain.FoodRecord, 0)
	for _, rec := range c.records {
		if strings.Contains(strings.ToLower(rec.Name), q) {
			matches = append(matches, cloneRecord(rec))
		}
	}
	c.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		ri, rj := matchRank(matches[i].Name, q), matchRank(matches[j].Name, q)
		if ri != rj {
			return ri < rj
		}
		if !matches[i].LastUpdated.Equal(matches[j].LastUpdated) {
			return matches[i].LastUpdated.After(matches[j].LastUpdated)
		}
		return matches[i].ID.String() < matches[j].ID.String()
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// GetByExternalID returns the record carrying the provider id.
func (c *FoodCache) GetByExternalID(_ context.Context, externalID int64) (*domain.FoodRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.byExt[externalID]
	if !ok {
		return nil, fmt.Errorf("food_cache external_id=%d: %w", externalID, domain.ErrNotFound)
	}
	rec := cloneRecord(c.records[id])
	return &rec, nil
}

// Top returns the most frequently hit records, ties by name.
func (c *FoodCache) Top(_ context.Context, limit int) ([]domain.FoodRecord, error) {
	c.mu.RLock()
	out := make([]domain.FoodRecord, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, cloneRecord(rec))
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].HitCount != out[j].HitCount {
			return out[i].HitCount > out[j].HitCount
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Create stores rec unless its id or external id is taken.
func (c *FoodCache) Create(_ context.Context, rec *domain.FoodRecord) (*domain.FoodRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.records[rec.ID]; ok {
		return nil, fmt.Errorf("food_cache %s: %w", rec.ID, domain.ErrAlreadyExists)
	}
	if rec.ExternalID != nil {
		if _, ok := c.byExt[*rec.ExternalID]; ok {
			return nil, fmt.Errorf("food_cache external_id=%d: %w", *rec.ExternalID, domain.ErrAlreadyExists)
		}
		c.byExt[*rec.ExternalID] = rec.ID
	}

	stored := cloneRecord(rec)
	c.records[rec.ID] = &stored

	out := cloneRecord(&stored)
	return &out, nil
}

// IncrementHits adds one hit per occurrence of an id. Unknown ids are ignored.
func (c *FoodCache) IncrementHits(_ context.Context, ids []uuid.UUID, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		if rec, ok := c.records[id]; ok {
			rec.HitCount++
			rec.LastUpdated = at
		}
	}
	return nil
}

func matchRank(name, q string) int {
	n := strings.ToLower(name)
	switch {
	case n == q:
		return 0
	case strings.HasPrefix(n, q):
		return 1
	default:
		return 2
	}
}

func cloneRecord(rec *domain.FoodRecord) domain.FoodRecord {
	out := *rec
	if rec.ExternalID != nil {
		ext := *rec.ExternalID
		out.ExternalID = &ext
	}
	if rec.RawPayload != nil {
		out.RawPayload = append([]byte(nil), rec.RawPayload...)
	}
	return out
}
