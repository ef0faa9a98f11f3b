package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
	"github.com/heartmarshall/macrotrack-backend/internal/service/goal"
)

const goalNotFound = "Goal not found"

type goalService interface {
	CreateGoal(ctx context.Context, input goal.CreateGoalInput) (*domain.Goal, error)
	ListGoals(ctx context.Context) ([]domain.Goal, error)
	GetActiveGoal(ctx context.Context) (*domain.Goal, error)
	UpdateGoal(ctx context.Context, input goal.UpdateGoalInput) (*domain.Goal, error)
	ActivateGoal(ctx context.Context, goalID uuid.UUID) (*domain.Goal, error)
	DeleteGoal(ctx context.Context, goalID uuid.UUID) error
}

// GoalHandler serves goal endpoints.
type GoalHandler struct {
	svc goalService
	log *slog.Logger
}

// NewGoalHandler creates a GoalHandler.
func NewGoalHandler(svc goalService, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{svc: svc, log: logger.With("handler", "goal")}
}

type goalRequest struct {
	Name           *string  `json:"name"`
	TargetCalories *float64 `json:"targetCalories"`
	TargetProtein  *float64 `json:"targetProtein"`
	TargetCarbs    *float64 `json:"targetCarbs"`
	TargetFats     *float64 `json:"targetFats"`
	IsActive       *bool    `json:"isActive"`
}

// List handles GET /goals.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.ListGoals(r.Context())
	if err != nil {
		handleError(h.log, w, r, err, goalNotFound)
		return
	}
	out := make([]goalResponse, len(goals))
	for i, g := range goals {
		out[i] = toGoalResponse(g)
	}
	writeData(w, http.StatusOK, out)
}

// Active handles GET /goals/active.
func (h *GoalHandler) Active(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GetActiveGoal(r.Context())
	if err != nil {
		handleError(h.log, w, r, err, goalNotFound)
		return
	}
	writeData(w, http.StatusOK, toGoalResponse(*g))
}

// Create handles POST /goals.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(h.log, w, r, err, goalNotFound)
		return
	}

	input := goal.CreateGoalInput{
		Calories: req.TargetCalories,
		Protein:  req.TargetProtein,
		Carbs:    req.TargetCarbs,
		Fats:     req.TargetFats,
	}
	if req.Name != nil {
		input.Name = *req.Name
	}
	if req.IsActive != nil {
		input.IsActive = *req.IsActive
	}

	g, err := h.svc.CreateGoal(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err, goalNotFound)
		return
	}
	writeData(w, http.StatusCreated, toGoalResponse(*g))
}

// Update handles PUT /goals/{id}.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err, goalNotFound)
		return
	}

	var req goalRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(h.log, w, r, err, goalNotFound)
		return
	}

	g, err := h.svc.UpdateGoal(r.Context(), goal.UpdateGoalInput{
		GoalID:   id,
		Name:     req.Name,
		Calories: req.TargetCalories,
		Protein:  req.TargetProtein,
		Carbs:    req.TargetCarbs,
		Fats:     req.TargetFats,
		IsActive: req.IsActive,
	})
	if err != nil {
		handleError(h.log, w, r, err, goalNotFound)
		return
	}
	writeData(w, http.StatusOK, toGoalResponse(*g))
}

// Activate handles POST /goals/{id}/activate.
func (h *GoalHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err, goalNotFound)
		return
	}
	g, err := h.svc.ActivateGoal(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err, goalNotFound)
		return
	}
	writeData(w, http.StatusOK, toGoalResponse(*g))
}

// Delete handles DELETE /goals/{id}.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err, goalNotFound)
		return
	}
	if err := h.svc.DeleteGoal(r.Context(), id); err != nil {
		handleError(h.log, w, r, err, goalNotFound)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Templates handles GET /goals/templates.
func (h *GoalHandler) Templates(w http.ResponseWriter, _ *http.Request) {
	tpls := domain.GoalTemplates()
	out := make([]goalTemplateResponse, len(tpls))
	for i, t := range tpls {
		out[i] = goalTemplateResponse{
			Key:            t.Key,
			Name:           t.Name,
			TargetCalories: t.Targets.Calories,
			TargetProtein:  t.Targets.Protein,
			TargetCarbs:    t.Targets.Carbs,
			TargetFats:     t.Targets.Fats,
		}
	}
	writeData(w, http.StatusOK, out)
}
