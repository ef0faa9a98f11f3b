package rest

import (
	"net/http"

	"github.com/heartmarshall/macrotrack-backend/internal/transport/middleware"
)

// Handlers groups everything the router mounts. SearchLimit wraps the food
// search endpoint and may be nil.
type Handlers struct {
	Health      *HealthHandler
	Food        *FoodHandler
	Meal        *MealHandler
	Goal        *GoalHandler
	Profile     *ProfileHandler
	SearchLimit middleware.Middleware
}

// NewRouter registers all routes on a new ServeMux.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	var search http.Handler = http.HandlerFunc(h.Food.Search)
	if h.SearchLimit != nil {
		search = h.SearchLimit(search)
	}
	mux.Handle("GET /foods/search", search)
	mux.HandleFunc("GET /foods/top", h.Food.Top)

	mux.HandleFunc("GET /meals", h.Meal.List)
	mux.HandleFunc("POST /meals", h.Meal.Create)
	mux.HandleFunc("GET /meals/stats", h.Meal.Stats)
	mux.HandleFunc("GET /meals/stats/range", h.Meal.StatsRange)
	mux.HandleFunc("GET /meals/{id}", h.Meal.Get)
	mux.HandleFunc("PUT /meals/{id}", h.Meal.Update)
	mux.HandleFunc("DELETE /meals/{id}", h.Meal.Delete)

	mux.HandleFunc("GET /goals", h.Goal.List)
	mux.HandleFunc("POST /goals", h.Goal.Create)
	mux.HandleFunc("GET /goals/active", h.Goal.Active)
	mux.HandleFunc("GET /goals/templates", h.Goal.Templates)
	mux.HandleFunc("GET /goals/suggestion", h.Profile.Suggestion)
	mux.HandleFunc("PUT /goals/{id}", h.Goal.Update)
	mux.HandleFunc("POST /goals/{id}/activate", h.Goal.Activate)
	mux.HandleFunc("DELETE /goals/{id}", h.Goal.Delete)

	mux.HandleFunc("GET /user/profile", h.Profile.Get)
	mux.HandleFunc("PUT /user/profile", h.Profile.Update)

	return mux
}
