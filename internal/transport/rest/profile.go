package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
	"github.com/heartmarshall/macrotrack-backend/internal/service/goal"
	"github.com/heartmarshall/macrotrack-backend/internal/service/profile"
)

const profileNotFound = "Profile not found"

type profileService interface {
	GetProfile(ctx context.Context) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, input profile.UpdateProfileInput) (*domain.Profile, error)
	SuggestGoal(ctx context.Context, objective string) (goal.Suggestion, error)
}

// ProfileHandler serves the profile and the goal suggestion built from it.
type ProfileHandler struct {
	svc profileService
	log *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(svc profileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, log: logger.With("handler", "profile")}
}

type profileRequest struct {
	Name   *string  `json:"name"`
	Age    *int     `json:"age"`
	Weight *float64 `json:"weight"`
	Height *float64 `json:"height"`
	Gender *string  `json:"gender"`
}

// Get handles GET /user/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProfile(r.Context())
	if err != nil {
		handleError(h.log, w, r, err, profileNotFound)
		return
	}
	writeData(w, http.StatusOK, toProfileResponse(*p))
}

// Update handles PUT /user/profile. Omitted fields keep their value.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(h.log, w, r, err, profileNotFound)
		return
	}

	p, err := h.svc.UpdateProfile(r.Context(), profile.UpdateProfileInput{
		Name:     req.Name,
		Age:      req.Age,
		WeightKg: req.Weight,
		HeightCm: req.Height,
		Gender:   req.Gender,
	})
	if err != nil {
		handleError(h.log, w, r, err, profileNotFound)
		return
	}
	writeData(w, http.StatusOK, toProfileResponse(*p))
}

// Suggestion handles GET /goals/suggestion?objective=cut|maintain|bulk.
// The objective defaults to maintain.
func (h *ProfileHandler) Suggestion(w http.ResponseWriter, r *http.Request) {
	objective := r.URL.Query().Get("objective")
	if objective == "" {
		objective = domain.ObjectiveMaintain.String()
	}

	s, err := h.svc.SuggestGoal(r.Context(), objective)
	if err != nil {
		handleError(h.log, w, r, err, profileNotFound)
		return
	}
	writeData(w, http.StatusOK, goalSuggestionResponse{
		Name:                s.Name,
		Objective:           s.Objective.String(),
		BMR:                 s.BMR,
		MaintenanceCalories: s.Maintenance,
		TargetCalories:      s.Targets.Calories,
		TargetProtein:       s.Targets.Protein,
		TargetCarbs:         s.Targets.Carbs,
		TargetFats:          s.Targets.Fats,
	})
}
