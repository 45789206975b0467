package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/mimir/internal/trackerservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *trackerservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Items CRUD and lifecycle.
	r.Get("/items", h.ListItems)
	r.Post("/items", h.CreateItem)
	r.Get("/items/{id}", h.GetItem)
	r.Patch("/items/{id}", h.UpdateItem)
	r.Delete("/items/{id}", h.DeleteItem)
	r.Post("/items/{id}/review", h.Review)
	r.Post("/items/{id}/archive", h.Archive)
	r.Post("/items/{id}/restore", h.Restore)
	r.Put("/items/{id}/prerequisites", h.SetPrerequisites)
	r.Get("/items/{id}/links", h.NoteLinks)

	// Review queues.
	r.Get("/queue/due", h.DueQueue)
	r.Get("/queue/cram", h.CramQueue)
	r.Get("/queue/problems", h.ProblemTopics)

	// Progress and analytics.
	r.Get("/progress", h.Progress)
	r.Get("/achievements", h.Achievements)
	r.Get("/analytics/weekly", h.WeeklyReviews)
	r.Get("/analytics/tags", h.TagDistribution)
	r.Get("/analytics/confidence", h.ConfidenceBreakdown)

	// Weekly goal.
	r.Get("/goal", h.GetGoal)
	r.Put("/goal", h.PutGoal)
	r.Delete("/goal", h.DeleteGoal)

	// Quick-capture inbox.
	r.Get("/inbox", h.ListInbox)
	r.Post("/inbox", h.AddInbox)
	r.Post("/inbox/promote", h.PromoteAllInbox)
	r.Delete("/inbox/{index}", h.RemoveInbox)
	r.Post("/inbox/{index}/promote", h.PromoteInbox)

	// Transfer and suggestions.
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)
	r.Post("/suggest", h.Suggest)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
