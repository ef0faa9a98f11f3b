package domain

import (
	"time"

	"github.com/google/uuid"
)

// DailyStats is the rollup of a user's meals over one local calendar day.
type DailyStats struct {
	Date      time.Time
	Totals    Macros
	MealCount int
	Meals     []Meal
	Progress  *GoalProgress
}

// DaySummary is a compact per-day rollup used for range queries.
type DaySummary struct {
	Date      time.Time
	Totals    Macros
	MealCount int
}

// GoalProgress compares consumed macros with the targets of a goal.
// Percent components are 0 when the matching target is 0.
type GoalProgress struct {
	GoalID   uuid.UUID
	GoalName string
	Target   Macros
	Consumed Macros
	Percent  Macros
}

// NewGoalProgress builds progress of consumed against g's targets.
func NewGoalProgress(g Goal, consumed Macros) GoalProgress {
	return GoalProgress{
		GoalID:   g.ID,
		GoalName: g.Name,
		Target:   g.Targets,
		Consumed: consumed,
		Percent: Macros{
			Calories: percent(consumed.Calories, g.Targets.Calories),
			Protein:  percent(consumed.Protein, g.Targets.Protein),
			Carbs:    percent(consumed.Carbs, g.Targets.Carbs),
			Fats:     percent(consumed.Fats, g.Targets.Fats),
		},
	}
}

func percent(v, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return v / target * 100
}
