// Package stats builds read-only rollups of a user's meals.
package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/config"
	"github.com/heartmarshall/macrotrack-backend/internal/domain"
	"github.com/heartmarshall/macrotrack-backend/pkg/ctxutil"
)

type mealLister interface {
	List(ctx context.Context, userID uuid.UUID, filter domain.MealFilter) ([]domain.Meal, error)
}

type activeGoalGetter interface {
	GetActive(ctx context.Context, userID uuid.UUID) (*domain.Goal, error)
}

// Service computes meal rollups. Calendar days are taken in the configured
// location.
type Service struct {
	log          *slog.Logger
	meals        mealLister
	goals        activeGoalGetter
	loc          *time.Location
	maxRangeDays int
}

// NewService creates a stats service. A nil cfg.Location means the server's
// local zone.
func NewService(logger *slog.Logger, meals mealLister, goals activeGoalGetter, cfg config.StatsConfig) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	maxDays := cfg.MaxRangeDays
	if maxDays <= 0 {
		maxDays = 92
	}
	return &Service{
		log:          logger.With("service", "stats"),
		meals:        meals,
		goals:        goals,
		loc:          loc,
		maxRangeDays: maxDays,
	}
}

// Location returns the zone that defines calendar days.
func (s *Service) Location() *time.Location { return s.loc }

// DailyStats rolls up the user's meals dated within date's calendar day
// (00:00:00.000 to 23:59:59.999). When the user has an active goal the
// result carries progress against it.
func (s *Service) DailyStats(ctx context.Context, date time.Time) (*domain.DailyStats, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	from := domain.DayStart(date, s.loc)
	to := domain.NextDayStart(date, s.loc)

	meals, err := s.meals.List(ctx, userID, domain.MealFilter{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}

	var totals domain.Macros
	for _, m := range meals {
		totals = totals.Add(m.Totals)
	}

	out := &domain.DailyStats{
		Date:      from,
		Totals:    totals,
		MealCount: len(meals),
		Meals:     meals,
	}

	goal, err := s.goals.GetActive(ctx, userID)
	switch {
	case err == nil:
		p := domain.NewGoalProgress(*goal, totals)
		out.Progress = &p
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, fmt.Errorf("get active goal: %w", err)
	}

	return out, nil
}

// RangeSummaries returns one summary per calendar day from from to to,
// both inclusive, oldest first. Days without meals are included with zero
// totals.
func (s *Service) RangeSummaries(ctx context.Context, from, to time.Time) ([]domain.DaySummary, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	start := domain.DayStart(from, s.loc)
	end := domain.NextDayStart(to, s.loc)
	if !start.Before(end) {
		return nil, domain.NewValidationError("to", "must not be before from")
	}

	days := make([]domain.DaySummary, 0)
	index := make(map[string]int)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if len(days) == s.maxRangeDays {
			return nil, domain.NewValidationError("to", fmt.Sprintf("range exceeds %d days", s.maxRangeDays))
		}
		index[d.Format(domain.DayLayout)] = len(days)
		days = append(days, domain.DaySummary{Date: d})
	}

	meals, err := s.meals.List(ctx, userID, domain.MealFilter{From: &start, To: &end})
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}

	for _, m := range meals {
		i, ok := index[m.Date.In(s.loc).Format(domain.DayLayout)]
		if !ok {
			continue
		}
		days[i].Totals = days[i].Totals.Add(m.Totals)
		days[i].MealCount++
	}

	return days, nil
}
