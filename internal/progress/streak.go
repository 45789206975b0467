// Package progress derives streaks, goal progress, and achievement unlocks
// from review history.
package progress

import (
	"sort"
	"time"

	"github.com/starford/mimir/internal/models"
)

const dayKey = "2006-01-02"

// Streak returns the number of consecutive local calendar days with at
// least one review, anchored at today or yesterday. A streak whose most
// recent review day is older than yesterday is broken and counts as 0.
func Streak(col models.Collection, now time.Time) int {
	seen := make(map[string]struct{})
	for _, it := range col {
		for _, h := range it.History {
			seen[h.RevisionDate.Local().Format(dayKey)] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return 0
	}

	days := make([]string, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Strings(days)

	last := days[len(days)-1]
	today := now.Local().Format(dayKey)
	yesterday := now.Local().AddDate(0, 0, -1).Format(dayKey)
	if last != today && last != yesterday {
		return 0
	}

	streak := 1
	for i := len(days) - 1; i > 0; i-- {
		if dayBefore(days[i]) != days[i-1] {
			break
		}
		streak++
	}
	return streak
}

func dayBefore(key string) string {
	t, err := time.Parse(dayKey, key)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(dayKey)
}

// StartOfWeek truncates t to Monday 00:00 in local time.
func StartOfWeek(t time.Time) time.Time {
	t = t.Local()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// WeekKey returns the YYYY-MM-DD key of the week containing t.
func WeekKey(t time.Time) string {
	return StartOfWeek(t).Format(dayKey)
}
