package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/mimir/internal/models"
	"github.com/starford/mimir/internal/notelink"
	"github.com/starford/mimir/internal/schedule"
	"github.com/starford/mimir/internal/trackerservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *trackerservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *trackerservice.Service) *Handler {
	return &Handler{svc: svc}
}

func itemID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// ListItems handles GET /api/items.
//
//	@Summary		List all tracked items
//	@Tags			items
//	@Produce		json
//	@Success		200	{object}	ItemListResponse
//	@Security		BearerAuth
//	@Router			/items [get]
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Items(r.Context())
	if err != nil {
		writeError(w, "list items", err)
		return
	}
	if items == nil {
		items = models.Collection{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

// CreateItem handles POST /api/items.
//
//	@Summary		Create a tracked item
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateItemRequest	true	"Item to create"
//	@Success		201		{object}	models.Item
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items [post]
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	item, err := h.svc.CreateItem(r.Context(), req.Title, req.Intervals, req.Tags, req.ParentID)
	if err != nil {
		writeError(w, "create item", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// GetItem handles GET /api/items/{id}.
//
//	@Summary		Get a single item by id
//	@Tags			items
//	@Produce		json
//	@Param			id	path		string	true	"Item id"
//	@Success		200	{object}	models.Item
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id} [get]
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Item(r.Context(), itemID(r))
	if err != nil {
		writeError(w, "get item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// UpdateItem handles PATCH /api/items/{id}.
//
//	@Summary		Apply partial field edits to an item
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Item id"
//	@Param			body	body		UpdateItemRequest	true	"Fields to change"
//	@Success		200		{object}	models.Item
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id} [patch]
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	item, err := h.svc.UpdateItem(r.Context(), itemID(r), schedule.ItemUpdate{
		Title:     req.Title,
		Notes:     req.Notes,
		Tags:      req.Tags,
		Intervals: req.Intervals,
		ParentID:  req.ParentID,
	})
	if err != nil {
		writeError(w, "update item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/items/{id}.
//
//	@Summary		Delete an item permanently
//	@Tags			items
//	@Param			id	path	string	true	"Item id"
//	@Success		204	"Item deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id} [delete]
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteItem(r.Context(), itemID(r)); err != nil {
		writeError(w, "delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Review handles POST /api/items/{id}/review.
//
//	@Summary		Complete a confidence-rated review
//	@Tags			review
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Item id"
//	@Param			body	body		ReviewRequest	true	"Confidence rating"
//	@Success		200		{object}	trackerservice.ReviewResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id}/review [post]
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	confidence := models.Confidence(strings.ToLower(strings.TrimSpace(req.Confidence)))
	result, err := h.svc.Review(r.Context(), itemID(r), confidence)
	if err != nil {
		writeError(w, "review item", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Archive handles POST /api/items/{id}/archive.
//
//	@Summary		Archive an item
//	@Tags			items
//	@Produce		json
//	@Param			id	path		string	true	"Item id"
//	@Success		200	{object}	models.Item
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id}/archive [post]
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.ArchiveItem(r.Context(), itemID(r))
	if err != nil {
		writeError(w, "archive item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Restore handles POST /api/items/{id}/restore.
//
//	@Summary		Restore an archived item to active
//	@Tags			items
//	@Produce		json
//	@Param			id	path		string	true	"Item id"
//	@Success		200	{object}	models.Item
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id}/restore [post]
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.RestoreItem(r.Context(), itemID(r))
	if err != nil {
		writeError(w, "restore item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// SetPrerequisites handles PUT /api/items/{id}/prerequisites.
//
//	@Summary		Replace an item's prerequisite list
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Item id"
//	@Param			body	body		PrerequisitesRequest	true	"New prerequisite ids"
//	@Success		200		{object}	models.Item
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id}/prerequisites [put]
func (h *Handler) SetPrerequisites(w http.ResponseWriter, r *http.Request) {
	var req PrerequisitesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	item, err := h.svc.UpdatePrerequisites(r.Context(), itemID(r), req.PrerequisiteIDs)
	if err != nil {
		writeError(w, "update prerequisites", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// NoteLinks handles GET /api/items/{id}/links.
//
//	@Summary		Parse an item's notes into segments and resolved links
//	@Tags			items
//	@Produce		json
//	@Param			id	path		string	true	"Item id"
//	@Success		200	{object}	NoteLinksResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id}/links [get]
func (h *Handler) NoteLinks(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Item(r.Context(), itemID(r))
	if err != nil {
		writeError(w, "parse note links", err)
		return
	}
	col, err := h.svc.Items(r.Context())
	if err != nil {
		writeError(w, "parse note links", err)
		return
	}

	byTitle := make(map[string]string, len(col))
	for _, it := range col {
		byTitle[strings.ToLower(it.Title)] = it.ID
	}

	segments := notelink.Parse(item.Notes)
	if segments == nil {
		segments = []notelink.Segment{}
	}
	links := []NoteLink{}
	for _, title := range notelink.Titles(item.Notes) {
		link := NoteLink{Title: title}
		if id, ok := byTitle[strings.ToLower(title)]; ok {
			link.ItemID = id
			link.Resolved = true
		}
		links = append(links, link)
	}
	writeJSON(w, http.StatusOK, NoteLinksResponse{Segments: segments, Links: links})
}

// DueQueue handles GET /api/queue/due.
//
//	@Summary		Ordered queue of unlocked items due for review
//	@Tags			queue
//	@Produce		json
//	@Param			limit	query		int	false	"Max items"
//	@Success		200		{object}	ItemListResponse
//	@Security		BearerAuth
//	@Router			/queue/due [get]
func (h *Handler) DueQueue(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.svc.DueQueue(r.Context(), limit)
	if err != nil {
		writeError(w, "due queue", err)
		return
	}
	if items == nil {
		items = models.Collection{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

// CramQueue handles GET /api/queue/cram.
//
//	@Summary		All unlocked active items carrying a tag
//	@Tags			queue
//	@Produce		json
//	@Param			tag	query		string	true	"Tag to cram"
//	@Success		200	{object}	ItemListResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/queue/cram [get]
func (h *Handler) CramQueue(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	if tag == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'tag' is required"))
		return
	}
	items, err := h.svc.CramQueue(r.Context(), tag)
	if err != nil {
		writeError(w, "cram queue", err)
		return
	}
	if items == nil {
		items = models.Collection{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

// ProblemTopics handles GET /api/queue/problems.
//
//	@Summary		Items most often rated hard
//	@Tags			queue
//	@Produce		json
//	@Param			top	query		int	false	"Max items"
//	@Success		200	{array}		session.ProblemTopic
//	@Security		BearerAuth
//	@Router			/queue/problems [get]
func (h *Handler) ProblemTopics(w http.ResponseWriter, r *http.Request) {
	top, _ := strconv.Atoi(r.URL.Query().Get("top"))
	topics, err := h.svc.ProblemTopics(r.Context(), top)
	if err != nil {
		writeError(w, "problem topics", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"topics": topics,
	})
}

// Progress handles GET /api/progress.
//
//	@Summary		Streak, mastery counts, and weekly goal progress
//	@Tags			progress
//	@Produce		json
//	@Success		200	{object}	trackerservice.ProgressReport
//	@Security		BearerAuth
//	@Router			/progress [get]
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Progress(r.Context())
	if err != nil {
		writeError(w, "progress", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Achievements handles GET /api/achievements.
//
//	@Summary		Achievement catalog with unlock times
//	@Tags			progress
//	@Produce		json
//	@Success		200	{array}	trackerservice.AchievementStatus
//	@Security		BearerAuth
//	@Router			/achievements [get]
func (h *Handler) Achievements(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Achievements(r.Context())
	if err != nil {
		writeError(w, "achievements", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"achievements": list,
	})
}

// WeeklyReviews handles GET /api/analytics/weekly.
func (h *Handler) WeeklyReviews(w http.ResponseWriter, r *http.Request) {
	weeks, _ := strconv.Atoi(r.URL.Query().Get("weeks"))
	counts, err := h.svc.WeeklyReviews(r.Context(), weeks)
	if err != nil {
		writeError(w, "weekly reviews", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"weeks": counts,
	})
}

// TagDistribution handles GET /api/analytics/tags.
func (h *Handler) TagDistribution(w http.ResponseWriter, r *http.Request) {
	shares, err := h.svc.TagDistribution(r.Context())
	if err != nil {
		writeError(w, "tag distribution", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tags": shares,
	})
}

// ConfidenceBreakdown handles GET /api/analytics/confidence.
func (h *Handler) ConfidenceBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.svc.ConfidenceBreakdown(r.Context())
	if err != nil {
		writeError(w, "confidence breakdown", err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

// GetGoal handles GET /api/goal.
func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := h.svc.Goal(r.Context())
	if err != nil {
		writeError(w, "get goal", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"goal": goal,
	})
}

// PutGoal handles PUT /api/goal.
//
//	@Summary		Set the weekly mastery goal
//	@Tags			progress
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GoalRequest	true	"Weekly target"
//	@Success		200		{object}	models.Goal
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/goal [put]
func (h *Handler) PutGoal(w http.ResponseWriter, r *http.Request) {
	var req GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	goal, err := h.svc.SetGoal(r.Context(), req.Target)
	if err != nil {
		writeError(w, "set goal", err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// DeleteGoal handles DELETE /api/goal.
func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearGoal(r.Context()); err != nil {
		writeError(w, "clear goal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListInbox handles GET /api/inbox.
func (h *Handler) ListInbox(w http.ResponseWriter, r *http.Request) {
	titles, err := h.svc.Inbox(r.Context())
	if err != nil {
		writeError(w, "list inbox", err)
		return
	}
	if titles == nil {
		titles = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": titles,
	})
}

// AddInbox handles POST /api/inbox.
func (h *Handler) AddInbox(w http.ResponseWriter, r *http.Request) {
	var req InboxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.AddInboxItem(r.Context(), req.Title); err != nil {
		writeError(w, "add inbox item", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func inboxIndex(r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	return idx, err == nil
}

// RemoveInbox handles DELETE /api/inbox/{index}.
func (h *Handler) RemoveInbox(w http.ResponseWriter, r *http.Request) {
	idx, ok := inboxIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be a number"))
		return
	}
	if err := h.svc.RemoveInboxItem(r.Context(), idx); err != nil {
		writeError(w, "remove inbox item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PromoteInbox handles POST /api/inbox/{index}/promote.
func (h *Handler) PromoteInbox(w http.ResponseWriter, r *http.Request) {
	idx, ok := inboxIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be a number"))
		return
	}
	item, err := h.svc.PromoteInboxItem(r.Context(), idx)
	if err != nil {
		writeError(w, "promote inbox item", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// PromoteAllInbox handles POST /api/inbox/promote.
func (h *Handler) PromoteAllInbox(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.PromoteAll(r.Context())
	if err != nil {
		writeError(w, "promote inbox", err)
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"items": items,
		"total": len(items),
	})
}

// Export handles GET /api/export.
//
//	@Summary		Download a full snapshot of tracker state
//	@Tags			transfer
//	@Produce		json
//	@Success		200	{object}	backup.Payload
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Export(r.Context())
	if err != nil {
		writeError(w, "export", err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="mimir-export.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("export write failed", slog.String("error", err.Error()))
	}
}

// Import handles POST /api/import.
//
//	@Summary		Replace tracker state from an exported snapshot
//	@Tags			transfer
//	@Accept			json
//	@Success		204	"State imported"
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	if err := h.svc.Import(r.Context(), data); err != nil {
		writeError(w, "import", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Suggest handles POST /api/suggest.
//
//	@Summary		Suggest topics to study for a subject
//	@Tags			transfer
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SuggestRequest	true	"Subject"
//	@Success		200		{object}	SuggestResponse
//	@Failure		400		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/suggest [post]
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Subject) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("subject is required"))
		return
	}
	topics, err := h.svc.SuggestTopics(r.Context(), req.Subject)
	if err != nil {
		if errors.Is(err, trackerservice.ErrSuggestUnavailable) {
			writeJSON(w, http.StatusServiceUnavailable, errorBody("suggestions are not configured"))
			return
		}
		writeError(w, "suggest topics", err)
		return
	}
	if topics == nil {
		topics = []string{}
	}
	writeJSON(w, http.StatusOK, SuggestResponse{Topics: topics})
}
