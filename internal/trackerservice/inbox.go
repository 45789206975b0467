package trackerservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/mimir/internal/apperr"
	"github.com/starford/mimir/internal/models"
)

// Inbox lists captured titles in capture order.
func (s *Service) Inbox(_ context.Context) ([]string, error) {
	return s.store.Inbox()
}

// AddInboxItem appends a title to the inbox.
func (s *Service) AddInboxItem(_ context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: inbox title cannot be blank", apperr.ErrValidation)
	}
	return s.store.AddInbox([]string{title})
}

// RemoveInboxItem deletes the entry at the given position.
func (s *Service) RemoveInboxItem(_ context.Context, index int) error {
	titles, err := s.store.Inbox()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(titles) {
		return apperr.ErrNotFound
	}
	titles = append(titles[:index], titles[index+1:]...)
	return s.store.ReplaceInbox(titles)
}

// PromoteInboxItem turns an inbox entry into a tracked item with the
// default interval schedule and removes it from the inbox.
func (s *Service) PromoteInboxItem(ctx context.Context, index int) (models.Item, error) {
	titles, err := s.store.Inbox()
	if err != nil {
		return models.Item{}, err
	}
	if index < 0 || index >= len(titles) {
		return models.Item{}, apperr.ErrNotFound
	}
	item, err := s.CreateItem(ctx, titles[index], nil, nil, "")
	if err != nil {
		return models.Item{}, err
	}
	titles = append(titles[:index], titles[index+1:]...)
	if err := s.store.ReplaceInbox(titles); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// PromoteAll drains the inbox into tracked items, in capture order.
func (s *Service) PromoteAll(ctx context.Context) ([]models.Item, error) {
	titles, err := s.store.Inbox()
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, nil
	}
	items, err := s.CreateItems(ctx, titles, nil, nil, "")
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceInbox(nil); err != nil {
		return nil, err
	}
	return items, nil
}

// CaptureInbox appends titles from an external capture source, skipping
// blanks and titles already present in the inbox or tracked. Returns the
// number of titles actually added.
func (s *Service) CaptureInbox(_ context.Context, titles []string) (int, error) {
	existing, err := s.store.Inbox()
	if err != nil {
		return 0, err
	}
	col, err := s.store.LoadItems()
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[strings.ToLower(strings.TrimSpace(t))] = true
	}
	var fresh []string
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] || col.HasTitle(t) {
			continue
		}
		seen[key] = true
		fresh = append(fresh, t)
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	if err := s.store.AddInbox(fresh); err != nil {
		return 0, err
	}
	return len(fresh), nil
}
