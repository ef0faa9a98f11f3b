package domain

import "time"

// MealFilter narrows a meal listing. From is inclusive and To exclusive;
// nil fields do not filter.
type MealFilter struct {
	From     *time.Time
	To       *time.Time
	MealType *MealType
}
