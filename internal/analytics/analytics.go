// Package analytics provides read-only reporting derivations over the item
// collection. Nothing here mutates; empty input yields zeroed results.
package analytics

import (
	"sort"
	"time"

	"github.com/starford/mimir/internal/models"
	"github.com/starford/mimir/internal/progress"
)

// DefaultWeeks is the default reporting window for WeeklyReviews.
const DefaultWeeks = 6

// WeekCount is the number of reviews performed in one calendar week.
type WeekCount struct {
	WeekStart string `json:"weekStart"`
	Count     int    `json:"count"`
}

// WeeklyReviews buckets history entries by start-of-week over the trailing
// window ending at now, oldest week first. Weeks without reviews appear
// with a zero count.
func WeeklyReviews(col models.Collection, now time.Time, weeks int) []WeekCount {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	counts := make(map[string]int, weeks)
	keys := make([]string, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		key := progress.WeekKey(now.AddDate(0, 0, -7*i))
		keys = append(keys, key)
		counts[key] = 0
	}

	for _, it := range col {
		for _, h := range it.History {
			key := progress.WeekKey(h.RevisionDate)
			if _, tracked := counts[key]; tracked {
				counts[key]++
			}
		}
	}

	out := make([]WeekCount, 0, len(keys))
	for _, key := range keys {
		out = append(out, WeekCount{WeekStart: key, Count: counts[key]})
	}
	return out
}

// TagShare is one tag's slice of the active collection.
type TagShare struct {
	Tag        string  `json:"tag"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// maxTagShares bounds the tag distribution to the most common tags.
const maxTagShares = 7

// TagDistribution returns the most common tags among active items, largest
// first, with each tag's share expressed as a percentage of the active item
// count. An untagged collection yields an empty result.
func TagDistribution(col models.Collection) []TagShare {
	active := col.Active()
	counts := make(map[string]int)
	for _, it := range active {
		for _, tag := range it.Tags {
			counts[tag]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	out := make([]TagShare, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagShare{
			Tag:        tag,
			Count:      n,
			Percentage: float64(n) / float64(len(active)) * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > maxTagShares {
		out = out[:maxTagShares]
	}
	return out
}

// ConfidenceBreakdown is the percentage split of review ratings across all
// history entries. Entries without an explicit confidence count as good.
type ConfidenceBreakdown struct {
	Hard  float64 `json:"hard"`
	Good  float64 `json:"good"`
	Easy  float64 `json:"easy"`
	Total int     `json:"total"`
}

// Confidence computes the rating breakdown over every item's history.
func Confidence(col models.Collection) ConfidenceBreakdown {
	var hard, good, easy, total int
	for _, it := range col {
		for _, h := range it.History {
			switch h.Confidence.OrGood() {
			case models.Hard:
				hard++
			case models.Easy:
				easy++
			default:
				good++
			}
			total++
		}
	}
	if total == 0 {
		return ConfidenceBreakdown{}
	}
	return ConfidenceBreakdown{
		Hard:  float64(hard) / float64(total) * 100,
		Good:  float64(good) / float64(total) * 100,
		Easy:  float64(easy) / float64(total) * 100,
		Total: total,
	}
}
