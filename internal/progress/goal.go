package progress

import (
	"time"

	"github.com/starford/mimir/internal/models"
)

// GoalProgress reports how far the weekly mastery quota has come.
type GoalProgress struct {
	Current int `json:"current"`
	Target  int `json:"target"`
}

// GoalStatus evaluates the goal against the collection: items mastered
// within [startOfWeek, startOfWeek+7d) count toward the target. A nil or
// non-master goal yields a zero progress.
func GoalStatus(col models.Collection, goal *models.Goal) GoalProgress {
	if goal == nil || goal.Type != models.GoalTypeMaster {
		return GoalProgress{}
	}
	start, err := time.ParseInLocation(dayKey, goal.StartOfWeek, time.Local)
	if err != nil {
		return GoalProgress{Target: goal.Target}
	}
	end := start.AddDate(0, 0, 7)

	current := 0
	for _, it := range col {
		if it.CompletedAt == nil {
			continue
		}
		done := it.CompletedAt.Local()
		if !done.Before(start) && done.Before(end) {
			current++
		}
	}
	return GoalProgress{Current: current, Target: goal.Target}
}

// GoalOutdated reports whether the goal belongs to an earlier week (or is
// absent) and should be re-set before progress is shown.
func GoalOutdated(goal *models.Goal, now time.Time) bool {
	return goal == nil || goal.StartOfWeek != WeekKey(now)
}
