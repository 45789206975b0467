package trackerservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/mimir/internal/backup"
)

// Export assembles a full portable snapshot of the tracker state.
func (s *Service) Export(_ context.Context) ([]byte, error) {
	col, err := s.store.LoadItems()
	if err != nil {
		return nil, err
	}
	goal, err := s.store.Goal()
	if err != nil {
		return nil, err
	}
	inbox, err := s.store.Inbox()
	if err != nil {
		return nil, err
	}
	settings, err := s.store.Settings()
	if err != nil {
		return nil, err
	}
	unlocked, err := s.store.Achievements()
	if err != nil {
		return nil, err
	}
	return backup.Encode(backup.Payload{
		Items:                col,
		Goal:                 goal,
		InboxItems:           inbox,
		Settings:             settings,
		UnlockedAchievements: unlocked,
	})
}

// Import replaces state from an exported snapshot. Only the fields present
// in the payload are applied. The current state is archived first so an
// import can be undone.
func (s *Service) Import(ctx context.Context, data []byte) error {
	payload, err := backup.Decode(data)
	if err != nil {
		return err
	}
	if s.archive != nil {
		current, err := s.Export(ctx)
		if err != nil {
			return fmt.Errorf("archive before import: %w", err)
		}
		if _, err := s.archive.Write(current, s.now()); err != nil {
			return fmt.Errorf("archive before import: %w", err)
		}
		if err := s.archive.Prune(backup.DefaultKeep); err != nil {
			return fmt.Errorf("prune archive: %w", err)
		}
	}
	if payload.Items != nil {
		if err := s.store.ReplaceItems(payload.Items); err != nil {
			return err
		}
	}
	if payload.Goal != nil {
		if err := s.store.SetGoal(payload.Goal); err != nil {
			return err
		}
	}
	if payload.InboxItems != nil {
		if err := s.store.ReplaceInbox(payload.InboxItems); err != nil {
			return err
		}
	}
	if payload.Settings != nil {
		if err := s.store.SetSettings(payload.Settings); err != nil {
			return err
		}
	}
	if payload.UnlockedAchievements != nil {
		if err := s.store.ReplaceAchievements(payload.UnlockedAchievements); err != nil {
			return err
		}
	}
	return nil
}

// ErrSuggestUnavailable is returned when no suggestion backend is configured.
var ErrSuggestUnavailable = errors.New("topic suggestions are not configured")

// SuggestTopics asks the configured suggestion backend for topics to study
// next for the given subject.
func (s *Service) SuggestTopics(ctx context.Context, subject string) ([]string, error) {
	if s.suggester == nil {
		return nil, ErrSuggestUnavailable
	}
	return s.suggester.Topics(ctx, subject)
}
