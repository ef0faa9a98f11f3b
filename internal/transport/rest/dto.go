package rest

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

type foodResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ExternalID      *int64  `json:"externalId,omitempty"`
	CaloriesPer100g float64 `json:"caloriesPer100g"`
	ProteinPer100g  float64 `json:"proteinPer100g"`
	CarbsPer100g    float64 `json:"carbsPer100g"`
	FatsPer100g     float64 `json:"fatsPer100g"`
	HitCount        int64   `json:"hitCount,omitempty"`
}

func toFoodResponse(rec domain.FoodRecord) foodResponse {
	id := domain.FallbackID(rec.Name)
	if rec.ID != uuid.Nil {
		id = rec.ID.String()
	}
	return foodResponse{
		ID:              id,
		Name:            rec.Name,
		ExternalID:      rec.ExternalID,
		CaloriesPer100g: rec.Per100g.Calories,
		ProteinPer100g:  rec.Per100g.Protein,
		CarbsPer100g:    rec.Per100g.Carbs,
		FatsPer100g:     rec.Per100g.Fats,
		HitCount:        rec.HitCount,
	}
}

func toFoodResponses(recs []domain.FoodRecord) []foodResponse {
	out := make([]foodResponse, len(recs))
	for i, r := range recs {
		out[i] = toFoodResponse(r)
	}
	return out
}

type foodItemResponse struct {
	FoodName   string  `json:"foodName"`
	Amount     float64 `json:"amount"`
	Unit       string  `json:"unit"`
	ExternalID *int64  `json:"externalId,omitempty"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fats       float64 `json:"fats"`
}

type mealResponse struct {
	ID            string             `json:"id"`
	MealName      string             `json:"mealName"`
	MealType      string             `json:"mealType"`
	Date          time.Time          `json:"date"`
	FoodItems     []foodItemResponse `json:"foodItems"`
	TotalCalories float64            `json:"totalCalories"`
	TotalProtein  float64            `json:"totalProtein"`
	TotalCarbs    float64            `json:"totalCarbs"`
	TotalFats     float64            `json:"totalFats"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

func toMealResponse(m domain.Meal) mealResponse {
	items := make([]foodItemResponse, len(m.FoodItems))
	for i, it := range m.FoodItems {
		items[i] = foodItemResponse{
			FoodName:   it.FoodName,
			Amount:     it.Amount,
			Unit:       it.Unit,
			ExternalID: it.ExternalID,
			Calories:   it.Macros.Calories,
			Protein:    it.Macros.Protein,
			Carbs:      it.Macros.Carbs,
			Fats:       it.Macros.Fats,
		}
	}
	return mealResponse{
		ID:            m.ID.String(),
		MealName:      m.MealName,
		MealType:      m.MealType.String(),
		Date:          m.Date,
		FoodItems:     items,
		TotalCalories: m.Totals.Calories,
		TotalProtein:  m.Totals.Protein,
		TotalCarbs:    m.Totals.Carbs,
		TotalFats:     m.Totals.Fats,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toMealResponses(meals []domain.Meal) []mealResponse {
	out := make([]mealResponse, len(meals))
	for i, m := range meals {
		out[i] = toMealResponse(m)
	}
	return out
}

type goalResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	TargetCalories float64   `json:"targetCalories"`
	TargetProtein  float64   `json:"targetProtein"`
	TargetCarbs    float64   `json:"targetCarbs"`
	TargetFats     float64   `json:"targetFats"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toGoalResponse(g domain.Goal) goalResponse {
	return goalResponse{
		ID:             g.ID.String(),
		Name:           g.Name,
		TargetCalories: g.Targets.Calories,
		TargetProtein:  g.Targets.Protein,
		TargetCarbs:    g.Targets.Carbs,
		TargetFats:     g.Targets.Fats,
		IsActive:       g.IsActive,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

type macrosResponse struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

func toMacrosResponse(m domain.Macros) macrosResponse {
	return macrosResponse{Calories: m.Calories, Protein: m.Protein, Carbs: m.Carbs, Fats: m.Fats}
}

type progressResponse struct {
	GoalID   string         `json:"goalId"`
	GoalName string         `json:"goalName"`
	Target   macrosResponse `json:"target"`
	Consumed macrosResponse `json:"consumed"`
	Percent  macrosResponse `json:"percent"`
}

type dailyStatsResponse struct {
	Date          string            `json:"date"`
	TotalCalories float64           `json:"totalCalories"`
	TotalProtein  float64           `json:"totalProtein"`
	TotalCarbs    float64           `json:"totalCarbs"`
	TotalFats     float64           `json:"totalFats"`
	MealCount     int               `json:"mealCount"`
	Meals         []mealResponse    `json:"meals"`
	Progress      *progressResponse `json:"progress,omitempty"`
}

func toDailyStatsResponse(s domain.DailyStats) dailyStatsResponse {
	out := dailyStatsResponse{
		Date:          s.Date.Format(domain.DayLayout),
		TotalCalories: s.Totals.Calories,
		TotalProtein:  s.Totals.Protein,
		TotalCarbs:    s.Totals.Carbs,
		TotalFats:     s.Totals.Fats,
		MealCount:     s.MealCount,
		Meals:         toMealResponses(s.Meals),
	}
	if p := s.Progress; p != nil {
		out.Progress = &progressResponse{
			GoalID:   p.GoalID.String(),
			GoalName: p.GoalName,
			Target:   toMacrosResponse(p.Target),
			Consumed: toMacrosResponse(p.Consumed),
			Percent:  toMacrosResponse(p.Percent),
		}
	}
	return out
}

type daySummaryResponse struct {
	Date          string  `json:"date"`
	TotalCalories float64 `json:"totalCalories"`
	TotalProtein  float64 `json:"totalProtein"`
	TotalCarbs    float64 `json:"totalCarbs"`
	TotalFats     float64 `json:"totalFats"`
	MealCount     int     `json:"mealCount"`
}

func toDaySummaryResponses(days []domain.DaySummary) []daySummaryResponse {
	out := make([]daySummaryResponse, len(days))
	for i, d := range days {
		out[i] = daySummaryResponse{
			Date:          d.Date.Format(domain.DayLayout),
			TotalCalories: d.Totals.Calories,
			TotalProtein:  d.Totals.Protein,
			TotalCarbs:    d.Totals.Carbs,
			TotalFats:     d.Totals.Fats,
			MealCount:     d.MealCount,
		}
	}
	return out
}

type profileResponse struct {
	Name      string    `json:"name,omitempty"`
	Age       int       `json:"age,omitempty"`
	Weight    float64   `json:"weight,omitempty"`
	Height    float64   `json:"height,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toProfileResponse(p domain.Profile) profileResponse {
	return profileResponse{
		Name:      p.Name,
		Age:       p.Age,
		Weight:    p.WeightKg,
		Height:    p.HeightCm,
		Gender:    p.Gender.String(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type goalTemplateResponse struct {
	Key            string  `json:"key"`
	Name           string  `json:"name"`
	TargetCalories float64 `json:"targetCalories"`
	TargetProtein  float64 `json:"targetProtein"`
	TargetCarbs    float64 `json:"targetCarbs"`
	TargetFats     float64 `json:"targetFats"`
}

type goalSuggestionResponse struct {
	Name                string  `json:"name"`
	Objective           string  `json:"objective"`
	BMR                 float64 `json:"bmr"`
	MaintenanceCalories float64 `json:"maintenanceCalories"`
	TargetCalories      float64 `json:"targetCalories"`
	TargetProtein       float64 `json:"targetProtein"`
	TargetCarbs         float64 `json:"targetCarbs"`
	TargetFats          float64 `json:"targetFats"`
}
