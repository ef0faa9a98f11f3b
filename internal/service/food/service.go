// Package food resolves free-text food queries to per-100g nutrition through
// three tiers: the shared nutrition cache, the external provider, and a
// static fallback table.
package food

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/macrotrack-backend/internal/config"
	"github.com/heartmarshall/macrotrack-backend/internal/domain"
	"github.com/heartmarshall/macrotrack-backend/internal/provider"
)

type cacheStore interface {
	Search(ctx context.Context, query string, limit int) ([]domain.FoodRecord, error)
	GetByExternalID(ctx context.Context, externalID int64) (*domain.FoodRecord, error)
	Top(ctx context.Context, limit int) ([]domain.FoodRecord, error)
	Create(ctx context.Context, rec *domain.FoodRecord) (*domain.FoodRecord, error)
	IncrementHits(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type nutritionProvider interface {
	Search(ctx context.Context, query string, limit int) ([]provider.FoodCandidate, error)
	FetchNutrition(ctx context.Context, id int64) (*provider.NutritionResult, error)
}

// Service implements food resolution.
type Service struct {
	log      *slog.Logger
	cache    cacheStore
	tx       txManager
	provider nutritionProvider
	hits     *hitRecorder
	flight   singleflight.Group
	now      func() time.Time

	searchLimit         int
	providerSearchLimit int
	detailLimit         int
	providerTimeout     time.Duration
}

// NewService creates a food service. prov may be nil, in which case the
// provider tier is skipped.
func NewService(
	logger *slog.Logger,
	cache cacheStore,
	tx txManager,
	prov nutritionProvider,
	cacheCfg config.FoodCacheConfig,
	provCfg config.ProviderConfig,
) *Service {
	log := logger.With("service", "food")
	s := &Service{
		log:                 log,
		cache:               cache,
		tx:                  tx,
		provider:            prov,
		now:                 time.Now,
		searchLimit:         positiveOr(cacheCfg.SearchLimit, 10),
		providerSearchLimit: positiveOr(provCfg.SearchLimit, 10),
		detailLimit:         positiveOr(provCfg.DetailLimit, 5),
		providerTimeout:     provCfg.Timeout,
	}
	s.hits = newHitRecorder(log, cache, cacheCfg, func() time.Time { return s.now() })
	return s
}

// TopFoods returns the most frequently hit cache records.
func (s *Service) TopFoods(ctx context.Context, limit int) ([]domain.FoodRecord, error) {
	return s.cache.Top(ctx, positiveOr(limit, 20))
}

// Flush waits for pending hit increments to be written.
func (s *Service) Flush() {
	s.hits.Wait()
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
