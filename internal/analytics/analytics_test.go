package analytics

import (
	"testing"
	"time"

	"github.com/starford/mimir/internal/models"
	"github.com/starford/mimir/internal/progress"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local) // Friday

func reviewed(id string, dates ...time.Time) models.Item {
	var history []models.RevisionHistory
	for _, d := range dates {
		history = append(history, models.RevisionHistory{RevisionDate: d, Confidence: models.Good})
	}
	return models.Item{ID: id, Title: "Topic " + id, History: history}
}

func TestWeeklyReviewsBuckets(t *testing.T) {
	thisWeek := now.AddDate(0, 0, -1)
	lastWeek := now.AddDate(0, 0, -7)
	ancient := now.AddDate(0, 0, -70)
	col := models.Collection{reviewed("a", thisWeek, thisWeek, lastWeek, ancient)}

	got := WeeklyReviews(col, now, 0)
	if len(got) != DefaultWeeks {
		t.Fatalf("weeks = %d, want %d", len(got), DefaultWeeks)
	}
	if got[len(got)-1].WeekStart != progress.WeekKey(now) {
		t.Errorf("last bucket = %s, want current week", got[len(got)-1].WeekStart)
	}
	if got[len(got)-1].Count != 2 {
		t.Errorf("current week count = %d, want 2", got[len(got)-1].Count)
	}
	if got[len(got)-2].Count != 1 {
		t.Errorf("previous week count = %d, want 1", got[len(got)-2].Count)
	}
	// Reviews outside the window are dropped, not misbucketed.
	total := 0
	for _, wc := range got {
		total += wc.Count
	}
	if total != 3 {
		t.Errorf("window total = %d, want 3", total)
	}
}

func TestWeeklyReviewsEmptyCollection(t *testing.T) {
	got := WeeklyReviews(models.Collection{}, now, 4)
	if len(got) != 4 {
		t.Fatalf("weeks = %d, want 4", len(got))
	}
	for _, wc := range got {
		if wc.Count != 0 {
			t.Errorf("bucket %s = %d, want 0", wc.WeekStart, wc.Count)
		}
	}
}

func TestTagDistribution(t *testing.T) {
	tagged := func(id string, tags ...string) models.Item {
		return models.Item{ID: id, Title: "Topic " + id, Tags: tags}
	}
	done := now
	archived := tagged("x", "go")
	archived.ArchivedAt = &done

	col := models.Collection{
		tagged("a", "go", "concurrency"),
		tagged("b", "go"),
		tagged("c", "sql"),
		tagged("d"),
		archived,
	}

	got := TagDistribution(col)
	if len(got) != 3 {
		t.Fatalf("tags = %d, want 3", len(got))
	}
	if got[0].Tag != "go" || got[0].Count != 2 {
		t.Errorf("top tag = %s (%d), want go (2)", got[0].Tag, got[0].Count)
	}
	if got[0].Percentage != 50 {
		t.Errorf("go share = %v, want 50 (2 of 4 active)", got[0].Percentage)
	}
	// Ties break alphabetically.
	if got[1].Tag != "concurrency" || got[2].Tag != "sql" {
		t.Errorf("tie order = [%s %s], want alphabetical", got[1].Tag, got[2].Tag)
	}
}

func TestTagDistributionUntagged(t *testing.T) {
	col := models.Collection{{ID: "a", Title: "Topic"}}
	if got := TagDistribution(col); got != nil {
		t.Errorf("distribution = %v, want nil", got)
	}
}

func TestTagDistributionTruncates(t *testing.T) {
	var col models.Collection
	tags := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	for _, tag := range tags {
		col = append(col, models.Item{ID: tag, Title: "T", Tags: []string{tag}})
	}
	if got := TagDistribution(col); len(got) != maxTagShares {
		t.Errorf("tags = %d, want cap at %d", len(got), maxTagShares)
	}
}

func TestConfidenceBreakdown(t *testing.T) {
	col := models.Collection{{ID: "a", Title: "T", History: []models.RevisionHistory{
		{RevisionDate: now, Confidence: models.Hard},
		{RevisionDate: now, Confidence: models.Good},
		{RevisionDate: now, Confidence: models.Easy},
		{RevisionDate: now}, // legacy entry counts as good
	}}}

	got := Confidence(col)
	if got.Total != 4 {
		t.Fatalf("total = %d, want 4", got.Total)
	}
	if got.Hard != 25 || got.Good != 50 || got.Easy != 25 {
		t.Errorf("split = %v/%v/%v, want 25/50/25", got.Hard, got.Good, got.Easy)
	}
}

func TestConfidenceBreakdownEmpty(t *testing.T) {
	if got := Confidence(models.Collection{}); got != (ConfidenceBreakdown{}) {
		t.Errorf("breakdown = %+v, want zero", got)
	}
}
