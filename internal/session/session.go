// Package session builds ordered work queues from the item collection.
package session

import (
	"sort"
	"time"

	"github.com/starford/mimir/internal/depgraph"
	"github.com/starford/mimir/internal/models"
)

// DefaultProblemTopN bounds the problem-topics queue.
const DefaultProblemTopN = 5

// DueQueue returns active, unlocked items whose next review has passed,
// most overdue first. A positive limit truncates the queue; zero means
// unbounded.
func DueQueue(col models.Collection, now time.Time, limit int) models.Collection {
	byID := col.ByID()
	var due models.Collection
	for _, it := range col {
		if !it.Active() {
			continue
		}
		if depgraph.LockedIn(it, byID) {
			continue
		}
		if it.NextRevisionDate.After(now) {
			continue
		}
		due = append(due, it)
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextRevisionDate.Before(due[j].NextRevisionDate)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due
}

// CramQueue returns active, unlocked items carrying the tag. Cram sessions
// do not affect scheduling, so the order is insignificant and collection
// order is kept.
func CramQueue(col models.Collection, tag string) models.Collection {
	byID := col.ByID()
	var out models.Collection
	for _, it := range col {
		if it.Active() && it.HasTag(tag) && !depgraph.LockedIn(it, byID) {
			out = append(out, it)
		}
	}
	return out
}

// ProblemTopic is an item annotated with how often it was rated hard.
type ProblemTopic struct {
	models.Item
	HardReviewCount int `json:"hardReviewCount"`
}

// ProblemTopics returns the active items with at least one hard-rated
// review, most-struggled first, truncated to topN (default 5).
func ProblemTopics(col models.Collection, topN int) []ProblemTopic {
	if topN <= 0 {
		topN = DefaultProblemTopN
	}
	var out []ProblemTopic
	for _, it := range col {
		if !it.Active() {
			continue
		}
		if n := it.HardReviewCount(); n > 0 {
			out = append(out, ProblemTopic{Item: it, HardReviewCount: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].HardReviewCount > out[j].HardReviewCount
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

