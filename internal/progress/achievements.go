package progress

import (
	"time"

	"github.com/starford/mimir/internal/models"
)

// Category selects which stat an achievement threshold applies to.
type Category string

const (
	CategoryStreak   Category = "streak"
	CategoryMastered Category = "mastered"
	CategoryReviews  Category = "reviews"
)

// Definition is one entry of the static achievement catalog.
type Definition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Threshold   int      `json:"threshold"`
}

// Catalog is the full achievement catalog. Order matters: Evaluate returns
// newly crossed thresholds in this order, and the first one is what callers
// surface as a notification.
var Catalog = []Definition{
	{ID: "streak_3", Name: "On a Roll", Description: "Maintain a 3-day study streak.", Category: CategoryStreak, Threshold: 3},
	{ID: "streak_7", Name: "Week Warrior", Description: "Maintain a 7-day study streak.", Category: CategoryStreak, Threshold: 7},
	{ID: "streak_14", Name: "Consistent Scholar", Description: "Maintain a 14-day study streak.", Category: CategoryStreak, Threshold: 14},
	{ID: "streak_30", Name: "Habitual Learner", Description: "Maintain a 30-day study streak.", Category: CategoryStreak, Threshold: 30},

	{ID: "mastered_1", Name: "First Steps", Description: "Master your first topic.", Category: CategoryMastered, Threshold: 1},
	{ID: "mastered_10", Name: "Knowledge Builder", Description: "Master 10 topics.", Category: CategoryMastered, Threshold: 10},
	{ID: "mastered_25", Name: "Subject Novice", Description: "Master 25 topics.", Category: CategoryMastered, Threshold: 25},
	{ID: "mastered_50", Name: "Domain Expert", Description: "Master 50 topics.", Category: CategoryMastered, Threshold: 50},

	{ID: "reviews_10", Name: "Getting Started", Description: "Complete 10 reviews.", Category: CategoryReviews, Threshold: 10},
	{ID: "reviews_50", Name: "Reviewer", Description: "Complete 50 reviews.", Category: CategoryReviews, Threshold: 50},
	{ID: "reviews_100", Name: "Diligent Student", Description: "Complete 100 reviews.", Category: CategoryReviews, Threshold: 100},
	{ID: "reviews_500", Name: "Memory Master", Description: "Complete 500 reviews.", Category: CategoryReviews, Threshold: 500},
}

// ByID looks an achievement definition up in the catalog.
func ByID(id string) (Definition, bool) {
	for _, d := range Catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Stats are the numeric inputs to achievement evaluation.
type Stats struct {
	Mastered     int `json:"mastered"`
	TotalReviews int `json:"totalReviews"`
	Streak       int `json:"streak"`
}

// ComputeStats derives the achievement inputs from the collection. Mastered
// counts every item with a mastery timestamp, archived or not.
func ComputeStats(col models.Collection, now time.Time) Stats {
	return Stats{
		Mastered:     col.MasteredCount(),
		TotalReviews: col.TotalReviews(),
		Streak:       Streak(col, now),
	}
}

func (s Stats) meets(d Definition) bool {
	switch d.Category {
	case CategoryStreak:
		return s.Streak >= d.Threshold
	case CategoryMastered:
		return s.Mastered >= d.Threshold
	case CategoryReviews:
		return s.TotalReviews >= d.Threshold
	}
	return false
}

// Evaluate returns the achievements newly crossed by the collection's
// current stats, in catalog order, excluding anything already present in
// unlocked. The caller records the unlock timestamps.
func Evaluate(col models.Collection, unlocked map[string]time.Time, now time.Time) []Definition {
	stats := ComputeStats(col, now)
	var out []Definition
	for _, d := range Catalog {
		if _, done := unlocked[d.ID]; done {
			continue
		}
		if stats.meets(d) {
			out = append(out, d)
		}
	}
	return out
}
