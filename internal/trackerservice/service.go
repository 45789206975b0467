// Package trackerservice coordinates the pure scheduling core with the
// store and side channels (events, suggestions, backup archive). Every
// operation loads a snapshot, applies pure transitions, and persists the
// replacement; the service is the single writer.
package trackerservice

import (
	"context"
	"time"

	"github.com/starford/mimir/internal/backup"
	"github.com/starford/mimir/internal/schedule"
	"github.com/starford/mimir/internal/store"
)

// Publisher is the event fan-out the service notifies after mutations.
type Publisher interface {
	PublishItemEvent(kind, id string)
	PublishAchievement(id string)
}

// Suggester produces candidate topic titles for a subject.
type Suggester interface {
	Topics(ctx context.Context, subject string) ([]string, error)
}

// Service is the application service for the tracker.
type Service struct {
	store     store.Store
	engine    *schedule.Engine
	events    Publisher
	suggester Suggester
	archive   *backup.Archive
	retention int
	now       func() time.Time
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithEvents attaches an event publisher.
func WithEvents(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithSuggester attaches a topic suggester.
func WithSuggester(sg Suggester) Option {
	return func(s *Service) { s.suggester = sg }
}

// WithArchive attaches the pre-import snapshot archive.
func WithArchive(a *backup.Archive) Option {
	return func(s *Service) { s.archive = a }
}

// WithRetention overrides the archived-item retention window in days.
func WithRetention(days int) Option {
	return func(s *Service) { s.retention = days }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a tracker service over the given store and engine.
func NewService(st store.Store, engine *schedule.Engine, opts ...Option) *Service {
	s := &Service{
		store:     st,
		engine:    engine,
		retention: schedule.DefaultRetentionDays,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the default revision schedule new items fall back to.
func (s *Service) Policy() []int {
	return s.engine.Policy()
}

func (s *Service) publishItem(kind, id string) {
	if s.events != nil {
		s.events.PublishItemEvent(kind, id)
	}
}

func (s *Service) publishAchievement(id string) {
	if s.events != nil {
		s.events.PublishAchievement(id)
	}
}
