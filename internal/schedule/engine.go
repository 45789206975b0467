package schedule

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/mimir/internal/apperr"
	"github.com/starford/mimir/internal/depgraph"
	"github.com/starford/mimir/internal/models"
)

// Engine computes lifecycle transitions against a configured default
// policy. It holds no mutable state and is safe to share.
type Engine struct {
	policy []int
}

// NewEngine creates an engine with the given default revision schedule.
// A nil or empty policy falls back to DefaultPolicy.
func NewEngine(policy []int) *Engine {
	if len(policy) == 0 {
		policy = DefaultPolicy
	}
	return &Engine{policy: append([]int(nil), policy...)}
}

// Policy returns a copy of the engine's default schedule.
func (e *Engine) Policy() []int {
	return append([]int(nil), e.policy...)
}

type newItemParams struct {
	Title     string
	Intervals []int
}

func (p newItemParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Intervals, validation.Required, validation.Each(validation.Min(1))),
	)
}

// NewItem builds a fresh active item at level 0 with the first review due
// after intervals[0] days. It returns a validation error for an empty
// title, an empty schedule, or non-positive interval values; no partial
// item is ever produced.
func (e *Engine) NewItem(title string, intervals []int, tags []string, parentID string, now time.Time) (models.Item, error) {
	title = strings.TrimSpace(title)
	if err := (newItemParams{Title: title, Intervals: intervals}).Validate(); err != nil {
		return models.Item{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	var cleanTags []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleanTags = append(cleanTags, t)
		}
	}

	return models.Item{
		ID:                uuid.NewString(),
		Title:             title,
		Level:             0,
		LastRevisionDate:  now,
		NextRevisionDate:  addDays(now, intervals[0]),
		CreatedAt:         now,
		RevisionIntervals: append([]int(nil), intervals...),
		Tags:              cleanTags,
		History:           []models.RevisionHistory{},
		ParentID:          parentID,
	}, nil
}

// ReviewOutcome reports what a CompleteRevision call did to the snapshot.
type ReviewOutcome struct {
	Found       bool
	Item        models.Item
	Mastered    bool     // the review fired a first-time mastery transition
	UnlockedIDs []string // dependents unlocked by that transition
}

// CompleteRevision applies one confidence-rated review to the item with the
// given id and returns the replacement snapshot.
//
// Level moves by -1 (hard, floored at 0), +1 (good) or +2 (easy). Reaching
// the end of the item's schedule masters it: completedAt is stamped on the
// first such transition only, and the next-review date collapses to now.
// Below the threshold the item stays active and any stale completedAt is
// cleared, so data edits that push a mastered item's level back down behave
// sensibly.
//
// When a mastery transition fires, dependents whose last prerequisite just
// completed are unlocked in the same snapshot: their clock restarts at now
// so stale due-dates accumulated while locked never flood the queue.
//
// An unknown id returns the snapshot unchanged with Found=false.
func (e *Engine) CompleteRevision(col models.Collection, id string, confidence models.Confidence, now time.Time) (models.Collection, ReviewOutcome) {
	idx := col.IndexOf(id)
	if idx < 0 {
		return col, ReviewOutcome{}
	}

	next := col.Clone()
	item := next[idx]
	intervals := item.Intervals(e.policy)

	item.History = append(item.History, models.RevisionHistory{
		RevisionDate:  now,
		PreviousLevel: item.Level,
		Confidence:    confidence,
	})

	newLevel := item.Level
	switch confidence {
	case models.Hard:
		newLevel = max(0, item.Level-1)
	case models.Easy:
		newLevel = item.Level + 2
	default:
		newLevel = item.Level + 1
	}

	outcome := ReviewOutcome{Found: true}

	if newLevel >= len(intervals) {
		if item.CompletedAt == nil {
			stamp := now
			item.CompletedAt = &stamp
			outcome.Mastered = true
		}
		item.Level = newLevel
		item.LastRevisionDate = now
		item.NextRevisionDate = now
	} else {
		item.Level = newLevel
		item.LastRevisionDate = now
		item.NextRevisionDate = addDays(now, intervals[newLevel])
		item.CompletedAt = nil
	}
	next[idx] = item

	if outcome.Mastered {
		outcome.UnlockedIDs = depgraph.NewlyUnlockedIDs(col, next)
		for _, unlockedID := range outcome.UnlockedIDs {
			i := next.IndexOf(unlockedID)
			dep := next[i]
			dep.LastRevisionDate = now
			dep.NextRevisionDate = addDays(now, dep.Intervals(e.policy)[0])
			next[i] = dep
		}
	}

	outcome.Item = next[idx]
	return next, outcome
}

// Archive stamps archivedAt on the item. Archiving an already-archived item
// keeps the original timestamp; an unknown id is a no-op. The second return
// reports whether the snapshot changed.
func (e *Engine) Archive(col models.Collection, id string, now time.Time) (models.Collection, bool) {
	idx := col.IndexOf(id)
	if idx < 0 || col[idx].Archived() {
		return col, false
	}
	next := col.Clone()
	stamp := now
	next[idx].ArchivedAt = &stamp
	return next, true
}

// Restore clears archivedAt and recomputes the next review from the last
// one: lastRevisionDate + schedule[level], falling back to 30 days when the
// level has outgrown the schedule. Restoring a non-archived item is a no-op.
func (e *Engine) Restore(col models.Collection, id string) (models.Collection, bool) {
	idx := col.IndexOf(id)
	if idx < 0 || !col[idx].Archived() {
		return col, false
	}
	next := col.Clone()
	item := next[idx]
	item.ArchivedAt = nil

	intervals := item.Intervals(e.policy)
	days := restoreFallbackDays
	if item.Level >= 0 && item.Level < len(intervals) {
		days = intervals[item.Level]
	}
	item.NextRevisionDate = addDays(item.LastRevisionDate, days)
	next[idx] = item
	return next, true
}

// Delete removes the item unconditionally. Children and dependents are not
// cascaded; their dangling references resolve as "not found" downstream.
func (e *Engine) Delete(col models.Collection, id string) (models.Collection, bool) {
	idx := col.IndexOf(id)
	if idx < 0 {
		return col, false
	}
	next := make(models.Collection, 0, len(col)-1)
	for i, it := range col {
		if i != idx {
			next = append(next, it.Clone())
		}
	}
	return next, true
}

// SweepArchived permanently deletes archived items whose retention window
// has elapsed. Returns the ids removed.
func (e *Engine) SweepArchived(col models.Collection, now time.Time, retentionDays int) (models.Collection, []string) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	var removed []string
	next := make(models.Collection, 0, len(col))
	for _, it := range col {
		if it.ArchivedAt != nil && !now.Before(addDays(*it.ArchivedAt, retentionDays)) {
			removed = append(removed, it.ID)
			continue
		}
		next = append(next, it.Clone())
	}
	if len(removed) == 0 {
		return col, nil
	}
	return next, removed
}

// UpdatePrerequisites replaces the item's prerequisite list. Edits that
// would introduce a self-dependency or a cycle are rejected with a
// validation error; an unknown id is a no-op.
func (e *Engine) UpdatePrerequisites(col models.Collection, id string, prereqIDs []string) (models.Collection, error) {
	idx := col.IndexOf(id)
	if idx < 0 {
		return col, nil
	}

	var clean []string
	seen := make(map[string]struct{}, len(prereqIDs))
	for _, p := range prereqIDs {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		clean = append(clean, p)
	}

	if depgraph.WouldCreateCycle(col, id, clean) {
		return col, fmt.Errorf("%w: prerequisites would form a cycle", apperr.ErrValidation)
	}

	next := col.Clone()
	next[idx].PrerequisiteIDs = clean
	return next, nil
}

// ItemUpdate carries optional field edits; nil fields are left untouched.
type ItemUpdate struct {
	Title     *string
	Notes     *string
	Tags      *[]string
	Intervals *[]int
	ParentID  *string
}

// UpdateItem applies the non-nil fields of upd to the item. A blank title
// or a schedule with non-positive entries is a validation error; an unknown
// id is a no-op.
func (e *Engine) UpdateItem(col models.Collection, id string, upd ItemUpdate) (models.Collection, error) {
	idx := col.IndexOf(id)
	if idx < 0 {
		return col, nil
	}
	next := col.Clone()
	item := next[idx]

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return col, fmt.Errorf("%w: title cannot be blank", apperr.ErrValidation)
		}
		item.Title = title
	}
	if upd.Notes != nil {
		item.Notes = *upd.Notes
	}
	if upd.Tags != nil {
		var tags []string
		for _, t := range *upd.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		item.Tags = tags
	}
	if upd.Intervals != nil {
		if len(*upd.Intervals) == 0 {
			return col, fmt.Errorf("%w: revision intervals cannot be empty", apperr.ErrValidation)
		}
		for _, d := range *upd.Intervals {
			if d < 1 {
				return col, fmt.Errorf("%w: revision intervals must be positive", apperr.ErrValidation)
			}
		}
		item.RevisionIntervals = append([]int(nil), *upd.Intervals...)
	}
	if upd.ParentID != nil {
		item.ParentID = *upd.ParentID
	}

	next[idx] = item
	return next, nil
}
