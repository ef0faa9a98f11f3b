package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
	"github.com/heartmarshall/macrotrack-backend/internal/service/meal"
)

const mealNotFound = "Meal not found"

type mealService interface {
	CreateMeal(ctx context.Context, input meal.CreateMealInput) (*domain.Meal, error)
	ListMeals(ctx context.Context, input meal.ListMealsInput) ([]domain.Meal, error)
	GetMeal(ctx context.Context, mealID uuid.UUID) (*domain.Meal, error)
	UpdateMeal(ctx context.Context, input meal.UpdateMealInput) (*domain.Meal, error)
	DeleteMeal(ctx context.Context, mealID uuid.UUID) error
}

type statsService interface {
	DailyStats(ctx context.Context, date time.Time) (*domain.DailyStats, error)
	RangeSummaries(ctx context.Context, from, to time.Time) ([]domain.DaySummary, error)
}

// MealHandler serves meal and stats endpoints. Day parameters are read in
// loc.
type MealHandler struct {
	meals mealService
	stats statsService
	loc   *time.Location
	now   func() time.Time
	log   *slog.Logger
}

// NewMealHandler creates a MealHandler.
func NewMealHandler(meals mealService, stats statsService, loc *time.Location, logger *slog.Logger) *MealHandler {
	if loc == nil {
		loc = time.Local
	}
	return &MealHandler{
		meals: meals,
		stats: stats,
		loc:   loc,
		now:   time.Now,
		log:   logger.With("handler", "meal"),
	}
}

type foodItemRequest struct {
	FoodName        string  `json:"foodName"`
	Amount          float64 `json:"amount"`
	Unit            string  `json:"unit"`
	ExternalID      *int64  `json:"externalId"`
	CaloriesPer100g float64 `json:"caloriesPer100g"`
	ProteinPer100g  float64 `json:"proteinPer100g"`
	CarbsPer100g    float64 `json:"carbsPer100g"`
	FatsPer100g     float64 `json:"fatsPer100g"`
}

type createMealRequest struct {
	MealName  string            `json:"mealName"`
	MealType  string            `json:"mealType"`
	Date      *string           `json:"date"`
	FoodItems []foodItemRequest `json:"foodItems"`
}

type updateMealRequest struct {
	MealName  *string           `json:"mealName"`
	MealType  *string           `json:"mealType"`
	Date      *string           `json:"date"`
	FoodItems []foodItemRequest `json:"foodItems"`
}

func toItemInputs(in []foodItemRequest) []meal.FoodItemInput {
	if in == nil {
		return nil
	}
	out := make([]meal.FoodItemInput, len(in))
	for i, it := range in {
		out[i] = meal.FoodItemInput{
			FoodName:   it.FoodName,
			Amount:     it.Amount,
			Unit:       it.Unit,
			ExternalID: it.ExternalID,
			Per100g: domain.Macros{
				Calories: it.CaloriesPer100g,
				Protein:  it.ProteinPer100g,
				Carbs:    it.CarbsPer100g,
				Fats:     it.FatsPer100g,
			},
		}
	}
	return out
}

// parseTimestamp accepts an RFC 3339 timestamp or a bare YYYY-MM-DD day,
// which means the start of that day in loc.
func parseTimestamp(field, raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	if t, err := domain.ParseDay(raw, loc); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError(field, "must be YYYY-MM-DD or an RFC 3339 timestamp")
}

func (h *MealHandler) optionalTimestamp(field string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := parseTimestamp(field, *raw, h.loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// queryDay reads a day filter. Timestamps select the day they fall on in
// h.loc.
func (h *MealHandler) queryDay(r *http.Request, field string) (time.Time, bool, error) {
	raw := r.URL.Query().Get(field)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err := parseTimestamp(field, raw, h.loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return domain.DayStart(t, h.loc), true, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("id", "must be a valid id")
	}
	return id, nil
}

// List handles GET /meals?date=&mealType=.
func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	var input meal.ListMealsInput

	day, ok, err := h.queryDay(r, "date")
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}
	if ok {
		input.Date = &day
	}
	if mt := r.URL.Query().Get("mealType"); mt != "" {
		input.MealType = &mt
	}

	meals, err := h.meals.ListMeals(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}
	writeData(w, http.StatusOK, toMealResponses(meals))
}

// Create handles POST /meals.
func (h *MealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMealRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}

	date, err := h.optionalTimestamp("date", req.Date)
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}

	m, err := h.meals.CreateMeal(r.Context(), meal.CreateMealInput{
		MealName:  req.MealName,
		MealType:  req.MealType,
		Date:      date,
		FoodItems: toItemInputs(req.FoodItems),
	})
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}
	writeData(w, http.StatusCreated, toMealResponse(*m))
}

// Get handles GET /meals/{id}.
func (h *MealHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}
	m, err := h.meals.GetMeal(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}
	writeData(w, http.StatusOK, toMealResponse(*m))
}

// Update handles PUT /meals/{id}.
func (h *MealHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}

	var req updateMealRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}
	date, err := h.optionalTimestamp("date", req.Date)
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}

	m, err := h.meals.UpdateMeal(r.Context(), meal.UpdateMealInput{
		MealID:    id,
		MealName:  req.MealName,
		MealType:  req.MealType,
		Date:      date,
		FoodItems: toItemInputs(req.FoodItems),
	})
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}
	writeData(w, http.StatusOK, toMealResponse(*m))
}

// Delete handles DELETE /meals/{id}.
func (h *MealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}
	if err := h.meals.DeleteMeal(r.Context(), id); err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Stats handles GET /meals/stats?date=YYYY-MM-DD. The date defaults to
// today in the handler's location.
func (h *MealHandler) Stats(w http.ResponseWriter, r *http.Request) {
	day, ok, err := h.queryDay(r, "date")
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}
	if !ok {
		day = h.now().In(h.loc)
	}

	stats, err := h.stats.DailyStats(r.Context(), day)
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}
	writeData(w, http.StatusOK, toDailyStatsResponse(*stats))
}

// StatsRange handles GET /meals/stats/range?from=&to=. Both days are
// required and inclusive.
func (h *MealHandler) StatsRange(w http.ResponseWriter, r *http.Request) {
	from, okFrom, err := h.queryDay(r, "from")
	if err == nil && !okFrom {
		err = domain.NewValidationError("from", "required")
	}
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}
	to, okTo, err := h.queryDay(r, "to")
	if err == nil && !okTo {
		err = domain.NewValidationError("to", "required")
	}
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}

	days, err := h.stats.RangeSummaries(r.Context(), from, to)
	if err != nil {
		handleError(h.log, w, r, err, mealNotFound)
		return
	}
	writeData(w, http.StatusOK, toDaySummaryResponses(days))
}
