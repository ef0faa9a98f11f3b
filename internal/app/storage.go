package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/macrotrack-backend/internal/adapter/memory"
	"github.com/heartmarshall/macrotrack-backend/internal/adapter/payload"
	"github.com/heartmarshall/macrotrack-backend/internal/adapter/postgres"
	pgfoodcache "github.com/heartmarshall/macrotrack-backend/internal/adapter/postgres/foodcache"
	pggoal "github.com/heartmarshall/macrotrack-backend/internal/adapter/postgres/goal"
	pgmeal "github.com/heartmarshall/macrotrack-backend/internal/adapter/postgres/meal"
	pgprofile "github.com/heartmarshall/macrotrack-backend/internal/adapter/postgres/profile"
	sqlitefoodcache "github.com/heartmarshall/macrotrack-backend/internal/adapter/sqlite/foodcache"
	"github.com/heartmarshall/macrotrack-backend/internal/config"
	"github.com/heartmarshall/macrotrack-backend/internal/domain"
	"github.com/heartmarshall/macrotrack-backend/internal/transport/rest"
)

// MealStore persists meals.
type MealStore interface {
	GetByID(ctx context.Context, userID, mealID uuid.UUID) (*domain.Meal, error)
	List(ctx context.Context, userID uuid.UUID, filter domain.MealFilter) ([]domain.Meal, error)
	Create(ctx context.Context, m *domain.Meal) (*domain.Meal, error)
	Update(ctx context.Context, m *domain.Meal) (*domain.Meal, error)
	Delete(ctx context.Context, userID, mealID uuid.UUID) error
}

// GoalStore persists goals.
type GoalStore interface {
	GetByID(ctx context.Context, userID, goalID uuid.UUID) (*domain.Goal, error)
	GetActive(ctx context.Context, userID uuid.UUID) (*domain.Goal, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.Goal, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
	Create(ctx context.Context, g *domain.Goal) (*domain.Goal, error)
	Update(ctx context.Context, g *domain.Goal) (*domain.Goal, error)
	Activate(ctx context.Context, userID, goalID uuid.UUID, at time.Time) (*domain.Goal, error)
	Delete(ctx context.Context, userID, goalID uuid.UUID) error
	LockUser(ctx context.Context, userID uuid.UUID) error
}

// ProfileStore persists user profiles.
type ProfileStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	Upsert(ctx context.Context, userID uuid.UUID, patch domain.ProfilePatch, at time.Time) (*domain.Profile, error)
}

// FoodCache is the shared nutrition cache.
type FoodCache interface {
	Search(ctx context.Context, query string, limit int) ([]domain.FoodRecord, error)
	GetByExternalID(ctx context.Context, externalID int64) (*domain.FoodRecord, error)
	Top(ctx context.Context, limit int) ([]domain.FoodRecord, error)
	Create(ctx context.Context, rec *domain.FoodRecord) (*domain.FoodRecord, error)
	IncrementHits(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// TxManager runs fn in a transaction of the backing store.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Storage is the set of stores selected by configuration.
type Storage struct {
	Meals    MealStore
	Goals    GoalStore
	Profiles ProfileStore
	Foods    FoodCache

	// UserTx covers meals and goals; FoodTx covers the food cache.
	UserTx TxManager
	FoodTx TxManager

	// HealthChecks lists the components reported by the health endpoints.
	HealthChecks map[string]rest.Pinger

	closers []func()
}

// OpenStorage connects the configured backends. Close releases them.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	s := &Storage{HealthChecks: make(map[string]rest.Pinger)}

	var pool *pgxpool.Pool
	if cfg.NeedsPostgres() {
		var err error
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		s.HealthChecks["database"] = pool
		logger.Info("database connected", slog.Int("max_conns", int(cfg.Database.MaxConns)))
	}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		s.Meals = pgmeal.New(pool)
		s.Goals = pggoal.New(pool)
		s.Profiles = pgprofile.New(pool)
		s.UserTx = postgres.NewTxManager(pool)
	default:
		s.Meals = memory.NewMealStore()
		s.Goals = memory.NewGoalStore()
		s.Profiles = memory.NewProfileStore()
		s.UserTx = memory.NewTxManager()
	}

	codec := payload.NewCodec(cfg.FoodCache.CompressPayloads())
	switch cfg.FoodCache.Backend {
	case config.CacheBackendPostgres:
		s.Foods = pgfoodcache.New(pool, logger, codec)
		s.FoodTx = postgres.NewTxManager(pool)
	case config.CacheBackendSQLite:
		store, err := sqlitefoodcache.Open(cfg.FoodCache.SQLitePath, logger, codec)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("open food cache: %w", err)
		}
		s.closers = append(s.closers, func() { _ = store.Close() })
		s.Foods = store
		s.FoodTx = memory.NewTxManager()
		s.HealthChecks["food_cache"] = store
	default:
		s.Foods = memory.NewFoodCache()
		s.FoodTx = memory.NewTxManager()
	}

	logger.Info("storage ready",
		slog.String("driver", cfg.Storage.Driver),
		slog.String("food_cache", cfg.FoodCache.Backend),
	)
	return s, nil
}

// Close releases backends in reverse order of opening.
func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
