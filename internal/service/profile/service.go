// Package profile manages the body metrics a user shares for goal
// suggestions.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
	"github.com/heartmarshall/macrotrack-backend/internal/service/goal"
	"github.com/heartmarshall/macrotrack-backend/pkg/ctxutil"
)

type profileRepo interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	Upsert(ctx context.Context, userID uuid.UUID, patch domain.ProfilePatch, at time.Time) (*domain.Profile, error)
}

// Service provides profile operations.
type Service struct {
	log      *slog.Logger
	profiles profileRepo
	now      func() time.Time
}

// NewService creates a new profile service.
func NewService(logger *slog.Logger, profiles profileRepo) *Service {
	return &Service{
		log:      logger.With("service", "profile"),
		profiles: profiles,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetProfile returns the authenticated user's profile.
// Returns domain.ErrNotFound if the user never saved one.
func (s *Service) GetProfile(ctx context.Context) (*domain.Profile, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile.GetProfile: %w", err)
	}
	return p, nil
}

// UpdateProfile applies a partial update, creating the profile on first use.
func (s *Service) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.Profile, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	p, err := s.profiles.Upsert(ctx, userID, input.Patch(), s.now())
	if err != nil {
		return nil, fmt.Errorf("profile.UpdateProfile: %w", err)
	}

	s.log.InfoContext(ctx, "profile updated",
		slog.String("user_id", userID.String()),
		slog.Bool("has_metrics", p.HasMetrics()),
	)
	return p, nil
}

// SuggestGoal proposes daily targets for objective from the caller's
// profile. A missing profile is reported as missing metrics.
func (s *Service) SuggestGoal(ctx context.Context, objective string) (goal.Suggestion, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return goal.Suggestion{}, domain.ErrUnauthorized
	}

	p := domain.Profile{UserID: userID}
	stored, err := s.profiles.Get(ctx, userID)
	switch {
	case err == nil:
		p = *stored
	case !errors.Is(err, domain.ErrNotFound):
		return goal.Suggestion{}, fmt.Errorf("profile.SuggestGoal: %w", err)
	}

	return goal.Suggest(p, domain.Objective(objective))
}
