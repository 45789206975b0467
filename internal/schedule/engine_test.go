package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/mimir/internal/apperr"
	"github.com/starford/mimir/internal/models"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func mkItem(id string, level int, intervals []int) models.Item {
	return models.Item{
		ID:                id,
		Title:             "Topic " + id,
		Level:             level,
		LastRevisionDate:  testNow.AddDate(0, 0, -1),
		NextRevisionDate:  testNow,
		CreatedAt:         testNow.AddDate(0, 0, -10),
		RevisionIntervals: intervals,
		History:           []models.RevisionHistory{},
	}
}

func TestNewItemDefaults(t *testing.T) {
	e := NewEngine([]int{1, 2, 4})

	item, err := e.NewItem("  Binary search trees  ", []int{1, 2, 4}, []string{"cs", " ", "algorithms"}, "", testNow)
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	if item.ID == "" {
		t.Error("id should be assigned")
	}
	if item.Title != "Binary search trees" {
		t.Errorf("title = %q, want trimmed", item.Title)
	}
	if item.Level != 0 {
		t.Errorf("level = %d, want 0", item.Level)
	}
	if want := testNow.AddDate(0, 0, 1); !item.NextRevisionDate.Equal(want) {
		t.Errorf("next = %v, want %v", item.NextRevisionDate, want)
	}
	if len(item.Tags) != 2 {
		t.Errorf("tags = %v, want blank entries dropped", item.Tags)
	}
	if item.History == nil {
		t.Error("history should be initialised")
	}
}

func TestNewItemValidation(t *testing.T) {
	e := NewEngine(nil)

	cases := []struct {
		name      string
		title     string
		intervals []int
	}{
		{"blank title", "   ", []int{1, 2}},
		{"empty schedule", "Topic", nil},
		{"zero interval", "Topic", []int{1, 0, 4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.NewItem(tc.title, tc.intervals, nil, "", testNow)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestCompleteRevisionGood(t *testing.T) {
	e := NewEngine(nil)
	col := models.Collection{mkItem("a", 0, []int{1, 2, 4})}

	next, outcome := e.CompleteRevision(col, "a", models.Good, testNow)
	if !outcome.Found {
		t.Fatal("item should be found")
	}
	got := outcome.Item
	if got.Level != 1 {
		t.Errorf("level = %d, want 1", got.Level)
	}
	if want := testNow.AddDate(0, 0, 2); !got.NextRevisionDate.Equal(want) {
		t.Errorf("next = %v, want %v", got.NextRevisionDate, want)
	}
	if len(got.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(got.History))
	}
	if got.History[0].PreviousLevel != 0 || got.History[0].Confidence != models.Good {
		t.Errorf("history entry = %+v", got.History[0])
	}
	// The input snapshot is untouched.
	if col[0].Level != 0 || len(col[0].History) != 0 {
		t.Error("input snapshot was mutated")
	}
	if stored, _ := next.Find("a"); stored.Level != 1 {
		t.Error("replacement snapshot missing the transition")
	}
}

func TestCompleteRevisionHardFloorsAtZero(t *testing.T) {
	e := NewEngine(nil)
	col := models.Collection{mkItem("a", 0, []int{1, 2, 4})}

	_, outcome := e.CompleteRevision(col, "a", models.Hard, testNow)
	if outcome.Item.Level != 0 {
		t.Errorf("level = %d, want floor at 0", outcome.Item.Level)
	}
	if want := testNow.AddDate(0, 0, 1); !outcome.Item.NextRevisionDate.Equal(want) {
		t.Errorf("next = %v, want %v", outcome.Item.NextRevisionDate, want)
	}
}

func TestCompleteRevisionEasySkipsLevel(t *testing.T) {
	e := NewEngine(nil)
	col := models.Collection{mkItem("a", 0, []int{1, 2, 4, 7})}

	_, outcome := e.CompleteRevision(col, "a", models.Easy, testNow)
	if outcome.Item.Level != 2 {
		t.Errorf("level = %d, want 2", outcome.Item.Level)
	}
	if want := testNow.AddDate(0, 0, 4); !outcome.Item.NextRevisionDate.Equal(want) {
		t.Errorf("next = %v, want %v", outcome.Item.NextRevisionDate, want)
	}
}

func TestCompleteRevisionMastery(t *testing.T) {
	e := NewEngine(nil)
	col := models.Collection{mkItem("a", 1, []int{1, 2})}

	_, outcome := e.CompleteRevision(col, "a", models.Good, testNow)
	if !outcome.Mastered {
		t.Fatal("crossing the schedule end should master the item")
	}
	got := outcome.Item
	if got.CompletedAt == nil || !got.CompletedAt.Equal(testNow) {
		t.Errorf("completedAt = %v, want %v", got.CompletedAt, testNow)
	}
	if !got.NextRevisionDate.Equal(testNow) {
		t.Errorf("next = %v, want collapse to now", got.NextRevisionDate)
	}
	if !got.Mastered() {
		t.Error("item should report mastered")
	}
}

func TestCompleteRevisionMasteryNotRestamped(t *testing.T) {
	e := NewEngine(nil)
	first := testNow.AddDate(0, 0, -30)
	item := mkItem("a", 2, []int{1, 2})
	item.CompletedAt = &first
	col := models.Collection{item}

	_, outcome := e.CompleteRevision(col, "a", models.Good, testNow)
	if outcome.Mastered {
		t.Error("reviewing a mastered item should not fire mastery again")
	}
	if !outcome.Item.CompletedAt.Equal(first) {
		t.Errorf("completedAt = %v, want original %v", outcome.Item.CompletedAt, first)
	}
}

func TestCompleteRevisionHardClearsStaleCompletion(t *testing.T) {
	e := NewEngine(nil)
	first := testNow.AddDate(0, 0, -30)
	item := mkItem("a", 2, []int{1, 2, 4})
	item.CompletedAt = &first
	col := models.Collection{item}

	_, outcome := e.CompleteRevision(col, "a", models.Hard, testNow)
	if outcome.Item.Level != 1 {
		t.Errorf("level = %d, want 1", outcome.Item.Level)
	}
	if outcome.Item.CompletedAt != nil {
		t.Error("dropping below the schedule end should clear completedAt")
	}
}

func TestMasteryUnlocksDependents(t *testing.T) {
	e := NewEngine(nil)
	prereq := mkItem("a", 1, []int{1, 2})
	locked := mkItem("b", 0, []int{3, 5})
	locked.PrerequisiteIDs = []string{"a"}
	locked.NextRevisionDate = testNow.AddDate(0, 0, -20) // stale while locked
	col := models.Collection{prereq, locked}

	next, outcome := e.CompleteRevision(col, "a", models.Good, testNow)
	if len(outcome.UnlockedIDs) != 1 || outcome.UnlockedIDs[0] != "b" {
		t.Fatalf("unlocked = %v, want [b]", outcome.UnlockedIDs)
	}
	dep, _ := next.Find("b")
	if !dep.LastRevisionDate.Equal(testNow) {
		t.Errorf("unlocked last = %v, want clock reset", dep.LastRevisionDate)
	}
	if want := testNow.AddDate(0, 0, 3); !dep.NextRevisionDate.Equal(want) {
		t.Errorf("unlocked next = %v, want %v", dep.NextRevisionDate, want)
	}
}

func TestCompleteRevisionUnknownID(t *testing.T) {
	e := NewEngine(nil)
	col := models.Collection{mkItem("a", 0, []int{1})}

	next, outcome := e.CompleteRevision(col, "nope", models.Good, testNow)
	if outcome.Found {
		t.Error("unknown id should report not found")
	}
	if len(next) != 1 || next[0].Level != 0 {
		t.Error("snapshot should be unchanged")
	}
}

func TestArchiveIdempotent(t *testing.T) {
	e := NewEngine(nil)
	col := models.Collection{mkItem("a", 0, []int{1})}

	next, changed := e.Archive(col, "a", testNow)
	if !changed {
		t.Fatal("first archive should change the snapshot")
	}
	got, _ := next.Find("a")
	if got.ArchivedAt == nil || !got.ArchivedAt.Equal(testNow) {
		t.Fatalf("archivedAt = %v, want %v", got.ArchivedAt, testNow)
	}

	later := testNow.AddDate(0, 0, 3)
	again, changed := e.Archive(next, "a", later)
	if changed {
		t.Error("re-archiving should be a no-op")
	}
	got, _ = again.Find("a")
	if !got.ArchivedAt.Equal(testNow) {
		t.Errorf("archivedAt = %v, want original stamp kept", got.ArchivedAt)
	}
}

func TestRestoreRecomputesNextReview(t *testing.T) {
	e := NewEngine(nil)
	item := mkItem("a", 2, []int{1, 2, 4})
	last := testNow.AddDate(0, 0, -10)
	item.LastRevisionDate = last
	stamp := testNow.AddDate(0, 0, -5)
	item.ArchivedAt = &stamp
	col := models.Collection{item}

	next, changed := e.Restore(col, "a")
	if !changed {
		t.Fatal("restore should change the snapshot")
	}
	got, _ := next.Find("a")
	if got.ArchivedAt != nil {
		t.Error("archivedAt should be cleared")
	}
	if want := last.AddDate(0, 0, 4); !got.NextRevisionDate.Equal(want) {
		t.Errorf("next = %v, want %v", got.NextRevisionDate, want)
	}
}

func TestRestoreFallbackWhenLevelOutgrowsSchedule(t *testing.T) {
	e := NewEngine(nil)
	item := mkItem("a", 5, []int{1, 2})
	last := testNow.AddDate(0, 0, -10)
	item.LastRevisionDate = last
	stamp := testNow
	item.ArchivedAt = &stamp
	col := models.Collection{item}

	next, _ := e.Restore(col, "a")
	got, _ := next.Find("a")
	if want := last.AddDate(0, 0, 30); !got.NextRevisionDate.Equal(want) {
		t.Errorf("next = %v, want 30-day fallback %v", got.NextRevisionDate, want)
	}
}

func TestRestoreNonArchivedNoop(t *testing.T) {
	e := NewEngine(nil)
	col := models.Collection{mkItem("a", 0, []int{1})}
	if _, changed := e.Restore(col, "a"); changed {
		t.Error("restoring an active item should be a no-op")
	}
}

func TestSweepArchived(t *testing.T) {
	e := NewEngine(nil)
	expired := mkItem("old", 0, []int{1})
	oldStamp := testNow.AddDate(0, 0, -8)
	expired.ArchivedAt = &oldStamp
	fresh := mkItem("fresh", 0, []int{1})
	freshStamp := testNow.AddDate(0, 0, -6)
	fresh.ArchivedAt = &freshStamp
	active := mkItem("active", 0, []int{1})
	col := models.Collection{expired, fresh, active}

	next, removed := e.SweepArchived(col, testNow, 7)
	if len(removed) != 1 || removed[0] != "old" {
		t.Fatalf("removed = %v, want [old]", removed)
	}
	if len(next) != 2 {
		t.Errorf("snapshot length = %d, want 2", len(next))
	}
	if _, ok := next.Find("fresh"); !ok {
		t.Error("item inside the retention window should survive")
	}
}

func TestSweepArchivedNoneDue(t *testing.T) {
	e := NewEngine(nil)
	col := models.Collection{mkItem("a", 0, []int{1})}
	if _, removed := e.SweepArchived(col, testNow, 7); removed != nil {
		t.Errorf("removed = %v, want none", removed)
	}
}

func TestUpdatePrerequisitesRejectsCycle(t *testing.T) {
	e := NewEngine(nil)
	a := mkItem("a", 0, []int{1})
	b := mkItem("b", 0, []int{1})
	b.PrerequisiteIDs = []string{"a"}
	c := mkItem("c", 0, []int{1})
	c.PrerequisiteIDs = []string{"b"}
	col := models.Collection{a, b, c}

	// a -> c would close the loop a -> c -> b -> a.
	if _, err := e.UpdatePrerequisites(col, "a", []string{"c"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}

	// Self-dependency is the degenerate cycle.
	if _, err := e.UpdatePrerequisites(col, "a", []string{"a"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("self-dependency err = %v, want validation error", err)
	}
}

func TestUpdatePrerequisitesDeduplicates(t *testing.T) {
	e := NewEngine(nil)
	a := mkItem("a", 0, []int{1})
	b := mkItem("b", 0, []int{1})
	col := models.Collection{a, b}

	next, err := e.UpdatePrerequisites(col, "b", []string{"a", "a", ""})
	if err != nil {
		t.Fatalf("UpdatePrerequisites: %v", err)
	}
	got, _ := next.Find("b")
	if len(got.PrerequisiteIDs) != 1 || got.PrerequisiteIDs[0] != "a" {
		t.Errorf("prerequisites = %v, want [a]", got.PrerequisiteIDs)
	}
}

func TestUpdateItemPartial(t *testing.T) {
	e := NewEngine(nil)
	col := models.Collection{mkItem("a", 0, []int{1, 2})}

	notes := "See [[Other Topic]]."
	next, err := e.UpdateItem(col, "a", ItemUpdate{Notes: &notes})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	got, _ := next.Find("a")
	if got.Notes != notes {
		t.Errorf("notes = %q", got.Notes)
	}
	if got.Title != "Topic a" {
		t.Errorf("title = %q, should be untouched", got.Title)
	}

	blank := "   "
	if _, err := e.UpdateItem(col, "a", ItemUpdate{Title: &blank}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("blank title err = %v, want validation error", err)
	}

	bad := []int{1, 0}
	if _, err := e.UpdateItem(col, "a", ItemUpdate{Intervals: &bad}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad intervals err = %v, want validation error", err)
	}
}
