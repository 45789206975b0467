// Package models defines the domain types for Mimir.
package models

import "time"

// Confidence is the user's self-rating of a review outcome. It drives the
// magnitude of the level transition. Legacy history entries may carry an
// empty confidence, which downstream consumers treat as Good.
type Confidence string

const (
	Hard Confidence = "hard"
	Good Confidence = "good"
	Easy Confidence = "easy"
)

// IsValid reports whether c is one of the three known ratings.
func (c Confidence) IsValid() bool {
	return c == Hard || c == Good || c == Easy
}

// OrGood maps an absent confidence to Good.
func (c Confidence) OrGood() Confidence {
	if c == "" {
		return Good
	}
	return c
}

// RevisionHistory is an immutable record of one completed review.
// Entries are appended on every review and never mutated or removed.
type RevisionHistory struct {
	RevisionDate  time.Time  `json:"revisionDate"`
	PreviousLevel int        `json:"previousLevel"`
	Confidence    Confidence `json:"confidence,omitempty"`
}

// Item is one learnable topic with its scheduling state.
//
// JSON field names follow the interchange format of export files, so an
// exported collection can be re-imported byte-compatibly.
type Item struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Level             int               `json:"level"`
	LastRevisionDate  time.Time         `json:"lastRevisionDate"`
	NextRevisionDate  time.Time         `json:"nextRevisionDate"`
	CreatedAt         time.Time         `json:"createdAt"`
	RevisionIntervals []int             `json:"revisionIntervals,omitempty"`
	ArchivedAt        *time.Time        `json:"archivedAt,omitempty"`
	CompletedAt       *time.Time        `json:"completedAt,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	Tags              []string          `json:"tags,omitempty"`
	History           []RevisionHistory `json:"history,omitempty"`
	ParentID          string            `json:"parentId,omitempty"`
	PrerequisiteIDs   []string          `json:"prerequisiteIds,omitempty"`
}

// Archived reports whether the item is in the archived lifecycle state.
// ArchivedAt takes precedence over CompletedAt.
func (i Item) Archived() bool {
	return i.ArchivedAt != nil
}

// Mastered reports whether the item has a mastery timestamp.
func (i Item) Mastered() bool {
	return i.CompletedAt != nil
}

// Active reports whether the item is neither archived nor mastered.
func (i Item) Active() bool {
	return !i.Archived() && !i.Mastered()
}

// Intervals returns the item's own revision schedule, or fallback when the
// item carries none.
func (i Item) Intervals(fallback []int) []int {
	if len(i.RevisionIntervals) > 0 {
		return i.RevisionIntervals
	}
	return fallback
}

// HasTag reports whether the item carries the given tag.
func (i Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HardReviewCount returns the number of hard-rated entries in the history.
func (i Item) HardReviewCount() int {
	n := 0
	for _, h := range i.History {
		if h.Confidence == Hard {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the item. Slices and pointer fields are
// copied so that transforms over a snapshot never alias the original.
func (i Item) Clone() Item {
	out := i
	if i.RevisionIntervals != nil {
		out.RevisionIntervals = append([]int(nil), i.RevisionIntervals...)
	}
	if i.Tags != nil {
		out.Tags = append([]string(nil), i.Tags...)
	}
	if i.History != nil {
		out.History = append([]RevisionHistory(nil), i.History...)
	}
	if i.PrerequisiteIDs != nil {
		out.PrerequisiteIDs = append([]string(nil), i.PrerequisiteIDs...)
	}
	if i.ArchivedAt != nil {
		t := *i.ArchivedAt
		out.ArchivedAt = &t
	}
	if i.CompletedAt != nil {
		t := *i.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
