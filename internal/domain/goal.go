package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxGoalNameLength bounds Goal.Name in characters.
const MaxGoalNameLength = 50

// Goal is a user's daily calorie and macro target. At most one goal per
// user is active at any committed state.
type Goal struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Targets   Macros
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
