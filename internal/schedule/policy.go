// Package schedule implements the item lifecycle engine: level transitions,
// next-review dates, mastery, archive/restore/delete, and the retention
// sweep. All operations are pure functions over a collection snapshot; the
// caller persists the returned replacement.
package schedule

import "time"

// DefaultPolicy is the global fallback revision schedule: day offsets
// indexed by level. Items may carry their own schedule which takes
// precedence.
var DefaultPolicy = []int{1, 2, 4, 7, 14, 30, 60, 120}

// restoreFallbackDays is used when a restored item's level has outgrown its
// schedule. A deliberate policy, not an error.
const restoreFallbackDays = 30

// DefaultRetentionDays is how long archived items are kept before the sweep
// deletes them permanently.
const DefaultRetentionDays = 7

func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}
