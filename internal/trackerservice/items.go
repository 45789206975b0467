package trackerservice

import (
	"context"
	"fmt"

	"github.com/starford/mimir/internal/apperr"
	"github.com/starford/mimir/internal/models"
	"github.com/starford/mimir/internal/progress"
	"github.com/starford/mimir/internal/schedule"
	"github.com/starford/mimir/internal/session"
)

// Items returns the full collection.
func (s *Service) Items(_ context.Context) (models.Collection, error) {
	return s.store.LoadItems()
}

// Item returns a single item by id.
func (s *Service) Item(_ context.Context, id string) (models.Item, error) {
	col, err := s.store.LoadItems()
	if err != nil {
		return models.Item{}, err
	}
	item, ok := col.Find(id)
	if !ok {
		return models.Item{}, apperr.ErrNotFound
	}
	return item, nil
}

// CreateItem registers a new topic. Nil intervals fall back to the default
// policy; an empty title or invalid schedule fails validation and nothing
// is stored.
func (s *Service) CreateItem(ctx context.Context, title string, intervals []int, tags []string, parentID string) (models.Item, error) {
	items, err := s.CreateItems(ctx, []string{title}, intervals, tags, parentID)
	if err != nil {
		return models.Item{}, err
	}
	return items[0], nil
}

// CreateItems registers several topics in one snapshot swap (bulk add and
// inbox promotion). All titles are validated before anything is stored.
func (s *Service) CreateItems(_ context.Context, titles []string, intervals []int, tags []string, parentID string) ([]models.Item, error) {
	if len(intervals) == 0 {
		intervals = s.engine.Policy()
	}
	col, err := s.store.LoadItems()
	if err != nil {
		return nil, err
	}

	now := s.now()
	next := col.Clone()
	created := make([]models.Item, 0, len(titles))
	for _, title := range titles {
		item, err := s.engine.NewItem(title, intervals, tags, parentID, now)
		if err != nil {
			return nil, err
		}
		created = append(created, item)
		next = append(next, item)
	}

	if err := s.store.ReplaceItems(next); err != nil {
		return nil, err
	}
	for _, item := range created {
		s.publishItem("created", item.ID)
	}
	return created, nil
}

// UpdateItem applies partial field edits to an item.
func (s *Service) UpdateItem(_ context.Context, id string, upd schedule.ItemUpdate) (models.Item, error) {
	col, err := s.store.LoadItems()
	if err != nil {
		return models.Item{}, err
	}
	if _, ok := col.Find(id); !ok {
		return models.Item{}, apperr.ErrNotFound
	}

	next, err := s.engine.UpdateItem(col, id, upd)
	if err != nil {
		return models.Item{}, err
	}
	if err := s.store.ReplaceItems(next); err != nil {
		return models.Item{}, err
	}
	s.publishItem("updated", id)
	item, _ := next.Find(id)
	return item, nil
}

// UpdatePrerequisites replaces an item's prerequisite list, rejecting
// self-dependencies and cycles.
func (s *Service) UpdatePrerequisites(_ context.Context, id string, prereqIDs []string) (models.Item, error) {
	col, err := s.store.LoadItems()
	if err != nil {
		return models.Item{}, err
	}
	if _, ok := col.Find(id); !ok {
		return models.Item{}, apperr.ErrNotFound
	}

	next, err := s.engine.UpdatePrerequisites(col, id, prereqIDs)
	if err != nil {
		return models.Item{}, err
	}
	if err := s.store.ReplaceItems(next); err != nil {
		return models.Item{}, err
	}
	s.publishItem("updated", id)
	item, _ := next.Find(id)
	return item, nil
}

// ReviewResult reports everything one completed review changed.
type ReviewResult struct {
	Item            models.Item           `json:"item"`
	Mastered        bool                  `json:"mastered"`
	UnlockedItemIDs []string              `json:"unlockedItemIds,omitempty"`
	NewAchievements []progress.Definition `json:"newAchievements,omitempty"`
	// Notify is the single achievement surfaced as a notification: the
	// first newly crossed one, by catalog order.
	Notify *progress.Definition `json:"notify,omitempty"`
}

// Review applies one confidence-rated review: level transition, history
// append, possible mastery with cascading unlocks, and achievement
// evaluation, all committed as one snapshot swap.
func (s *Service) Review(_ context.Context, id string, confidence models.Confidence) (*ReviewResult, error) {
	if !confidence.IsValid() {
		return nil, fmt.Errorf("%w: unknown confidence %q", apperr.ErrValidation, confidence)
	}
	col, err := s.store.LoadItems()
	if err != nil {
		return nil, err
	}

	now := s.now()
	next, outcome := s.engine.CompleteRevision(col, id, confidence, now)
	if !outcome.Found {
		return nil, apperr.ErrNotFound
	}
	if err := s.store.ReplaceItems(next); err != nil {
		return nil, err
	}

	result := &ReviewResult{
		Item:            outcome.Item,
		Mastered:        outcome.Mastered,
		UnlockedItemIDs: outcome.UnlockedIDs,
	}

	unlocked, err := s.store.Achievements()
	if err != nil {
		return nil, err
	}
	newDefs := progress.Evaluate(next, unlocked, now)
	if len(newDefs) > 0 {
		ids := make([]string, len(newDefs))
		for i, d := range newDefs {
			ids[i] = d.ID
		}
		if err := s.store.RecordAchievements(ids, now); err != nil {
			return nil, err
		}
		result.NewAchievements = newDefs
		result.Notify = &newDefs[0]
	}

	s.publishItem("reviewed", id)
	if outcome.Mastered {
		s.publishItem("mastered", id)
	}
	for _, unlockedID := range outcome.UnlockedIDs {
		s.publishItem("unlocked", unlockedID)
	}
	for _, d := range result.NewAchievements {
		s.publishAchievement(d.ID)
	}
	return result, nil
}

// ArchiveItem stamps the item archived. Re-archiving is an idempotent
// no-op keeping the original timestamp.
func (s *Service) ArchiveItem(_ context.Context, id string) (models.Item, error) {
	col, err := s.store.LoadItems()
	if err != nil {
		return models.Item{}, err
	}
	if _, ok := col.Find(id); !ok {
		return models.Item{}, apperr.ErrNotFound
	}

	next, changed := s.engine.Archive(col, id, s.now())
	if changed {
		if err := s.store.ReplaceItems(next); err != nil {
			return models.Item{}, err
		}
		s.publishItem("updated", id)
	}
	item, _ := next.Find(id)
	return item, nil
}

// RestoreItem returns an archived item to active with a freshly computed
// next-review date. Restoring a non-archived item is a no-op.
func (s *Service) RestoreItem(_ context.Context, id string) (models.Item, error) {
	col, err := s.store.LoadItems()
	if err != nil {
		return models.Item{}, err
	}
	if _, ok := col.Find(id); !ok {
		return models.Item{}, apperr.ErrNotFound
	}

	next, changed := s.engine.Restore(col, id)
	if changed {
		if err := s.store.ReplaceItems(next); err != nil {
			return models.Item{}, err
		}
		s.publishItem("updated", id)
	}
	item, _ := next.Find(id)
	return item, nil
}

// DeleteItem removes an item permanently. No cascading deletion: children
// and dependents keep their references, which resolve as not-found.
func (s *Service) DeleteItem(_ context.Context, id string) error {
	col, err := s.store.LoadItems()
	if err != nil {
		return err
	}
	next, changed := s.engine.Delete(col, id)
	if !changed {
		return apperr.ErrNotFound
	}
	if err := s.store.ReplaceItems(next); err != nil {
		return err
	}
	s.publishItem("deleted", id)
	return nil
}

// SweepArchived deletes archived items past the retention window. Run once
// at process start.
func (s *Service) SweepArchived(_ context.Context) ([]string, error) {
	col, err := s.store.LoadItems()
	if err != nil {
		return nil, err
	}
	next, removed := s.engine.SweepArchived(col, s.now(), s.retention)
	if len(removed) == 0 {
		return nil, nil
	}
	if err := s.store.ReplaceItems(next); err != nil {
		return nil, err
	}
	for _, id := range removed {
		s.publishItem("deleted", id)
	}
	return removed, nil
}

// DueQueue returns the ordered due-review queue.
func (s *Service) DueQueue(_ context.Context, limit int) (models.Collection, error) {
	col, err := s.store.LoadItems()
	if err != nil {
		return nil, err
	}
	return session.DueQueue(col, s.now(), limit), nil
}

// CramQueue returns the unordered cram queue for a tag.
func (s *Service) CramQueue(_ context.Context, tag string) (models.Collection, error) {
	col, err := s.store.LoadItems()
	if err != nil {
		return nil, err
	}
	return session.CramQueue(col, tag), nil
}

// ProblemTopics returns the items most often rated hard.
func (s *Service) ProblemTopics(_ context.Context, topN int) ([]session.ProblemTopic, error) {
	col, err := s.store.LoadItems()
	if err != nil {
		return nil, err
	}
	return session.ProblemTopics(col, topN), nil
}
