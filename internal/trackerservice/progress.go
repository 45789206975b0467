package trackerservice

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/mimir/internal/analytics"
	"github.com/starford/mimir/internal/apperr"
	"github.com/starford/mimir/internal/models"
	"github.com/starford/mimir/internal/progress"
)

// ProgressReport is the aggregate progress view for dashboards.
type ProgressReport struct {
	Stats        progress.Stats        `json:"stats"`
	ActiveItems  int                   `json:"activeItems"`
	Goal         *models.Goal          `json:"goal,omitempty"`
	GoalProgress progress.GoalProgress `json:"goalProgress"`
	GoalOutdated bool                  `json:"goalOutdated"`
}

// Progress computes streak, counts, and goal progress in one pass.
func (s *Service) Progress(_ context.Context) (*ProgressReport, error) {
	col, err := s.store.LoadItems()
	if err != nil {
		return nil, err
	}
	goal, err := s.store.Goal()
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &ProgressReport{
		Stats:        progress.ComputeStats(col, now),
		ActiveItems:  len(col.Active()),
		Goal:         goal,
		GoalProgress: progress.GoalStatus(col, goal),
		GoalOutdated: progress.GoalOutdated(goal, now),
	}, nil
}

// AchievementStatus pairs a catalog entry with its unlock time, if any.
type AchievementStatus struct {
	progress.Definition
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// Achievements returns the full catalog in order with unlock times.
func (s *Service) Achievements(_ context.Context) ([]AchievementStatus, error) {
	unlocked, err := s.store.Achievements()
	if err != nil {
		return nil, err
	}
	out := make([]AchievementStatus, 0, len(progress.Catalog))
	for _, d := range progress.Catalog {
		st := AchievementStatus{Definition: d}
		if at, ok := unlocked[d.ID]; ok {
			t := at
			st.UnlockedAt = &t
		}
		out = append(out, st)
	}
	return out, nil
}

// Goal returns the current weekly goal, or nil.
func (s *Service) Goal(_ context.Context) (*models.Goal, error) {
	return s.store.Goal()
}

// SetGoal replaces the weekly goal, anchored at the current week.
func (s *Service) SetGoal(_ context.Context, target int) (*models.Goal, error) {
	if target < 1 {
		return nil, fmt.Errorf("%w: goal target must be at least 1", apperr.ErrValidation)
	}
	goal := &models.Goal{
		Type:        models.GoalTypeMaster,
		Target:      target,
		StartOfWeek: progress.WeekKey(s.now()),
	}
	if err := s.store.SetGoal(goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// ClearGoal removes the weekly goal.
func (s *Service) ClearGoal(_ context.Context) error {
	return s.store.SetGoal(nil)
}

// WeeklyReviews returns review counts for the trailing weeks window.
func (s *Service) WeeklyReviews(_ context.Context, weeks int) ([]analytics.WeekCount, error) {
	col, err := s.store.LoadItems()
	if err != nil {
		return nil, err
	}
	return analytics.WeeklyReviews(col, s.now(), weeks), nil
}

// TagDistribution returns the top tags among active items.
func (s *Service) TagDistribution(_ context.Context) ([]analytics.TagShare, error) {
	col, err := s.store.LoadItems()
	if err != nil {
		return nil, err
	}
	return analytics.TagDistribution(col), nil
}

// ConfidenceBreakdown returns the rating split across all history.
func (s *Service) ConfidenceBreakdown(_ context.Context) (analytics.ConfidenceBreakdown, error) {
	col, err := s.store.LoadItems()
	if err != nil {
		return analytics.ConfidenceBreakdown{}, err
	}
	return analytics.Confidence(col), nil
}
