// Package app wires configuration, storage, services and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/macrotrack-backend/internal/adapter/provider/spoonacular"
	"github.com/heartmarshall/macrotrack-backend/internal/auth"
	"github.com/heartmarshall/macrotrack-backend/internal/config"
	"github.com/heartmarshall/macrotrack-backend/internal/service/food"
	"github.com/heartmarshall/macrotrack-backend/internal/service/goal"
	"github.com/heartmarshall/macrotrack-backend/internal/service/meal"
	"github.com/heartmarshall/macrotrack-backend/internal/service/profile"
	"github.com/heartmarshall/macrotrack-backend/internal/service/stats"
	"github.com/heartmarshall/macrotrack-backend/internal/transport/middleware"
	"github.com/heartmarshall/macrotrack-backend/internal/transport/rest"
)

// NewFoodService builds the food resolver over storage. The provider tier
// is enabled only when an API key is configured.
func NewFoodService(cfg *config.Config, st *Storage, logger *slog.Logger) *food.Service {
	if !cfg.Provider.Enabled() {
		logger.Warn("nutrition provider disabled, resolving from cache and fallback only")
		return food.NewService(logger, st.Foods, st.FoodTx, nil, cfg.FoodCache, cfg.Provider)
	}
	prov := spoonacular.NewProvider(cfg.Provider, logger)
	return food.NewService(logger, st.Foods, st.FoodTx, prov, cfg.FoodCache, cfg.Provider)
}

// NewHandler assembles services, routes and the middleware stack. The
// returned cleanup flushes pending cache writes and stops background work.
func NewHandler(cfg *config.Config, st *Storage, logger *slog.Logger) (http.Handler, func()) {
	foodSvc := NewFoodService(cfg, st, logger)
	mealSvc := meal.NewService(logger, st.Meals, st.UserTx, cfg.Stats.Location)
	goalSvc := goal.NewService(logger, st.Goals, st.UserTx)
	profileSvc := profile.NewService(logger, st.Profiles)
	statsSvc := stats.NewService(logger, st.Meals, st.Goals, cfg.Stats)

	limiter := middleware.NewRateLimiter(time.Minute)
	jwtManager := auth.NewJWTManager(cfg.Auth)

	mux := rest.NewRouter(rest.Handlers{
		Health:      rest.NewHealthHandler(st.HealthChecks, BuildVersion()),
		Food:        rest.NewFoodHandler(foodSvc, logger),
		Meal:        rest.NewMealHandler(mealSvc, statsSvc, statsSvc.Location(), logger),
		Goal:        rest.NewGoalHandler(goalSvc, logger),
		Profile:     rest.NewProfileHandler(profileSvc, logger),
		SearchLimit: limiter.Limit(cfg.Server.SearchRatePerMinute),
	})

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		middleware.Auth(jwtManager, logger),
	)(mux)

	cleanup := func() {
		limiter.Stop()
		foodSvc.Flush()
	}
	return handler, cleanup
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting macrotrack",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("stats_timezone", cfg.Stats.Location.String()),
	)

	st, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	handler, cleanup := NewHandler(cfg, st, logger)
	defer cleanup()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
