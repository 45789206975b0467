package api

import (
	"github.com/starford/mimir/internal/models"
	"github.com/starford/mimir/internal/notelink"
)

// CreateItemRequest is the request body for creating a tracked item.
type CreateItemRequest struct {
	Title     string   `json:"title" example:"Binary search trees" validate:"required"`
	Intervals []int    `json:"intervals,omitempty" example:"1,2,4,7"`
	Tags      []string `json:"tags,omitempty" example:"cs,algorithms"`
	ParentID  string   `json:"parentId,omitempty"`
}

// UpdateItemRequest carries partial field edits; absent fields are untouched.
type UpdateItemRequest struct {
	Title     *string   `json:"title,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
	Intervals *[]int    `json:"intervals,omitempty"`
	ParentID  *string   `json:"parentId,omitempty"`
}

// ReviewRequest is the request body for completing a review.
type ReviewRequest struct {
	Confidence string `json:"confidence" example:"good" validate:"required"`
}

// PrerequisitesRequest replaces an item's prerequisite list.
type PrerequisitesRequest struct {
	PrerequisiteIDs []string `json:"prerequisiteIds" validate:"required"`
}

// GoalRequest sets the weekly mastery goal.
type GoalRequest struct {
	Target int `json:"target" example:"3" validate:"required"`
}

// InboxRequest adds a quick-capture title.
type InboxRequest struct {
	Title string `json:"title" example:"Bloom filters" validate:"required"`
}

// SuggestRequest asks for topic suggestions on a subject.
type SuggestRequest struct {
	Subject string `json:"subject" example:"distributed systems" validate:"required"`
}

// ItemListResponse wraps item listings.
type ItemListResponse struct {
	Items []models.Item `json:"items" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// NoteLink is one resolved wiki-style link from an item's notes.
type NoteLink struct {
	Title    string `json:"title" validate:"required"`
	ItemID   string `json:"itemId,omitempty"`
	Resolved bool   `json:"resolved"`
}

// NoteLinksResponse wraps the parsed note segments and resolved links.
type NoteLinksResponse struct {
	Segments []notelink.Segment `json:"segments" validate:"required"`
	Links    []NoteLink         `json:"links" validate:"required"`
}

// SuggestResponse wraps suggested topic titles.
type SuggestResponse struct {
	Topics []string `json:"topics" validate:"required"`
}

// InboxResponse wraps the captured titles.
type InboxResponse struct {
	Items []string `json:"items" validate:"required"`
}
