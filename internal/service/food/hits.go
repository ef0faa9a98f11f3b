package food

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader/v7"

	"github.com/heartmarshall/macrotrack-backend/internal/config"
)

type hitStore interface {
	IncrementHits(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// hitRecorder coalesces cache hit increments from concurrent lookups into
// batched writes. Duplicate ids within a batch are kept so every lookup
// counts. Recording never blocks the caller.
type hitRecorder struct {
	log     *slog.Logger
	loader  *dataloader.Loader[uuid.UUID, struct{}]
	timeout time.Duration
	wg      sync.WaitGroup
}

func newHitRecorder(log *slog.Logger, store hitStore, cfg config.FoodCacheConfig, now func() time.Time) *hitRecorder {
	r := &hitRecorder{log: log, timeout: cfg.HitWriteTimeout}
	if r.timeout <= 0 {
		r.timeout = 5 * time.Second
	}

	wait := cfg.HitBatchWait
	if wait <= 0 {
		wait = 50 * time.Millisecond
	}

	r.loader = dataloader.NewBatchedLoader(
		newHitBatchFn(log, store, now),
		dataloader.WithWait[uuid.UUID, struct{}](wait),
		dataloader.WithBatchCapacity[uuid.UUID, struct{}](positiveOr(cfg.HitBatchSize, 100)),
		dataloader.WithCache[uuid.UUID, struct{}](&dataloader.NoCache[uuid.UUID, struct{}]{}),
	)
	return r
}

func newHitBatchFn(log *slog.Logger, store hitStore, now func() time.Time) dataloader.BatchFunc[uuid.UUID, struct{}] {
	return func(ctx context.Context, keys []uuid.UUID) []*dataloader.Result[struct{}] {
		err := store.IncrementHits(ctx, keys, now())
		if err != nil {
			log.WarnContext(ctx, "food cache hit increment failed",
				slog.Int("ids", len(keys)),
				slog.String("error", err.Error()),
			)
		}

		results := make([]*dataloader.Result[struct{}], len(keys))
		for i := range keys {
			results[i] = &dataloader.Result[struct{}]{Error: err}
		}
		return results
	}
}

// Record schedules one hit per id. The write outlives ctx's cancellation
// but is bounded by the configured write timeout.
func (r *hitRecorder) Record(ctx context.Context, ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	thunk := r.loader.LoadMany(writeCtx, ids)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		thunk()
	}()
}

// Wait blocks until every recorded hit has been written or failed.
func (r *hitRecorder) Wait() {
	r.wg.Wait()
}
