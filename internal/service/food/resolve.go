package food

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
	"github.com/heartmarshall/macrotrack-backend/internal/provider"
)

// Resolve returns per-100g nutrition for a free-text query from exactly one
// tier: cache, then provider, then the fallback table. Provider failures
// are never returned; they fall through to the fallback table.
func (s *Service) Resolve(ctx context.Context, query string) (*domain.Resolution, error) {
	q := domain.NormalizeQuery(query)
	if q == "" {
		return nil, domain.NewValidationError("query", "required")
	}

	// 1. Shared cache.
	cached, err := s.cache.Search(ctx, q, s.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search food cache: %w", err)
	}
	if len(cached) > 0 {
		ids := make([]uuid.UUID, len(cached))
		for i := range cached {
			ids[i] = cached[i].ID
		}
		s.hits.Record(ctx, ids)

		return &domain.Resolution{Source: domain.FoodSourceCache, Results: cached}, nil
	}

	// 2. External provider.
	if s.provider != nil {
		records, err := s.resolveFromProvider(ctx, q)
		if err == nil {
			return &domain.Resolution{Source: domain.FoodSourceProvider, Results: records}, nil
		}
		s.log.WarnContext(ctx, "provider unavailable, using fallback table",
			slog.String("query", q),
			slog.String("error", err.Error()),
		)
	}

	// 3. Static table.
	return &domain.Resolution{Source: domain.FoodSourceFallback, Results: lookupFallback(q)}, nil
}

// resolveFromProvider collapses concurrent lookups of the same query into a
// single provider round trip. The shared call runs detached from any one
// caller and is bounded by the provider timeout.
func (s *Service) resolveFromProvider(ctx context.Context, q string) ([]domain.FoodRecord, error) {
	ch := s.flight.DoChan(q, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if s.providerTimeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, s.providerTimeout)
			defer cancel()
		}
		return s.fetchAndStore(fetchCtx, q)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		records := res.Val.([]domain.FoodRecord)
		out := make([]domain.FoodRecord, len(records))
		copy(out, records)
		return out, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("provider lookup: %w", ctx.Err())
	}
}

func (s *Service) fetchAndStore(ctx context.Context, q string) ([]domain.FoodRecord, error) {
	candidates, err := s.provider.Search(ctx, q, s.providerSearchLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) > s.detailLimit {
		candidates = candidates[:s.detailLimit]
	}

	details := make([]*provider.NutritionResult, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		g.Go(func() error {
			res, err := s.provider.FetchNutrition(gctx, c.ID)
			if err != nil {
				return fmt.Errorf("fetch nutrition %d: %w", c.ID, err)
			}
			details[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if !errors.Is(err, provider.ErrUnavailable) {
			err = fmt.Errorf("%w: %v", provider.ErrUnavailable, err)
		}
		return nil, err
	}

	now := s.now()
	records := make([]domain.FoodRecord, 0, len(details))
	for i, d := range details {
		if d == nil {
			continue
		}
		name := d.Name
		if name == "" {
			name = candidates[i].Name
		}
		ext := d.ID
		rec := domain.FoodRecord{
			ID:          uuid.New(),
			Name:        name,
			ExternalID:  &ext,
			Per100g:     d.Per100g,
			RawPayload:  d.Raw,
			HitCount:    1,
			LastUpdated: now,
			CreatedAt:   now,
		}
		records = append(records, s.store(ctx, rec))
	}

	s.log.InfoContext(ctx, "provider resolution stored",
		slog.String("query", q),
		slog.Int("candidates", len(candidates)),
		slog.Int("records", len(records)),
	)

	return records, nil
}

// store persists rec with create-or-ignore semantics. When another writer
// already holds the external id, the winner is returned. Any other failure
// is logged and the unsaved record is returned so the lookup still succeeds.
func (s *Service) store(ctx context.Context, rec domain.FoodRecord) domain.FoodRecord {
	var saved *domain.FoodRecord
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		saved, createErr = s.cache.Create(txCtx, &rec)
		return createErr
	})
	if err == nil {
		return *saved
	}

	if errors.Is(err, domain.ErrAlreadyExists) && rec.ExternalID != nil {
		winner, getErr := s.cache.GetByExternalID(ctx, *rec.ExternalID)
		if getErr == nil {
			return *winner
		}
		err = getErr
	}

	s.log.WarnContext(ctx, "food cache write skipped",
		slog.String("name", rec.Name),
		slog.String("error", err.Error()),
	)
	return rec
}
