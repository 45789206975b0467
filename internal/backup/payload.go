// Package backup implements the import/export payload codec and the
// on-disk snapshot archive written before destructive imports.
package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/mimir/internal/apperr"
	"github.com/starford/mimir/internal/models"
)

// Payload is the interchange format for full-state export and import.
// Field names match the export files of the original web app, so backups
// migrate in both directions.
type Payload struct {
	Items                []models.Item        `json:"items"`
	Goal                 *models.Goal         `json:"goal"`
	InboxItems           []string             `json:"inboxItems"`
	Settings             map[string]any       `json:"settings"`
	UnlockedAchievements map[string]time.Time `json:"unlockedAchievements"`
}

// Encode renders the payload as indented JSON. Nil collections are
// normalised to empty ones so the export is stable and round-trips.
func Encode(p Payload) ([]byte, error) {
	if p.Items == nil {
		p.Items = []models.Item{}
	}
	if p.InboxItems == nil {
		p.InboxItems = []string{}
	}
	if p.Settings == nil {
		p.Settings = map[string]any{}
	}
	if p.UnlockedAchievements == nil {
		p.UnlockedAchievements = map[string]time.Time{}
	}
	return json.MarshalIndent(p, "", "  ")
}

// Decode parses an import payload. A file that is not a JSON object is
// rejected wholesale with ErrMalformedImport and nothing is applied.
// Each top-level field is validated independently: well-formed fields are
// populated on the result, malformed or absent ones stay nil and the
// caller leaves the corresponding state untouched.
func Decode(data []byte) (*Payload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedImport, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: payload is not an object", apperr.ErrMalformedImport)
	}

	p := &Payload{}
	if r, ok := raw["items"]; ok {
		var items []models.Item
		if err := json.Unmarshal(r, &items); err == nil && items != nil {
			p.Items = items
		}
	}
	if r, ok := raw["goal"]; ok {
		var goal models.Goal
		if err := json.Unmarshal(r, &goal); err == nil && goal.Type != "" {
			p.Goal = &goal
		}
	}
	if r, ok := raw["inboxItems"]; ok {
		var inbox []string
		if err := json.Unmarshal(r, &inbox); err == nil && inbox != nil {
			p.InboxItems = inbox
		}
	}
	if r, ok := raw["settings"]; ok {
		var settings map[string]any
		if err := json.Unmarshal(r, &settings); err == nil && settings != nil {
			p.Settings = settings
		}
	}
	if r, ok := raw["unlockedAchievements"]; ok {
		var unlocked map[string]time.Time
		if err := json.Unmarshal(r, &unlocked); err == nil && unlocked != nil {
			p.UnlockedAchievements = unlocked
		}
	}
	return p, nil
}
