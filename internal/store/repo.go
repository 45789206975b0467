package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/mimir/internal/models"
)

const (
	metaGoal     = "goal"
	metaSettings = "settings"
)

// LoadItems returns the full collection in stored order.
func (db *DB) LoadItems() (models.Collection, error) {
	rows, err := db.conn.Query(`SELECT data FROM items ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("store: load items: %w", err)
	}
	defer rows.Close()

	var col models.Collection
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var item models.Item
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, fmt.Errorf("store: decode item: %w", err)
		}
		col = append(col, item)
	}
	return col, rows.Err()
}

// ReplaceItems swaps the stored collection for the given snapshot within a
// transaction. The snapshot's order is preserved.
func (db *DB) ReplaceItems(col models.Collection) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return fmt.Errorf("store: clear items: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO items (id, position, data, updated_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare item insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i, item := range col {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("store: encode item %s: %w", item.ID, err)
		}
		if _, err := stmt.Exec(item.ID, i, string(data), now); err != nil {
			return fmt.Errorf("store: insert item %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// Goal returns the weekly goal, or nil when none is set.
func (db *DB) Goal() (*models.Goal, error) {
	raw, ok, err := db.metaValue(metaGoal)
	if err != nil || !ok {
		return nil, err
	}
	var goal models.Goal
	if err := json.Unmarshal([]byte(raw), &goal); err != nil {
		return nil, fmt.Errorf("store: decode goal: %w", err)
	}
	return &goal, nil
}

// SetGoal stores the goal; nil clears it.
func (db *DB) SetGoal(goal *models.Goal) error {
	if goal == nil {
		_, err := db.conn.Exec(`DELETE FROM meta WHERE key = ?`, metaGoal)
		return err
	}
	data, err := json.Marshal(goal)
	if err != nil {
		return fmt.Errorf("store: encode goal: %w", err)
	}
	return db.setMeta(metaGoal, string(data))
}

// Settings returns the settings object; an empty map when unset.
func (db *DB) Settings() (map[string]any, error) {
	raw, ok, err := db.metaValue(metaSettings)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]any{}, nil
	}
	var settings map[string]any
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("store: decode settings: %w", err)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return settings, nil
}

// SetSettings stores the settings object.
func (db *DB) SetSettings(settings map[string]any) error {
	if settings == nil {
		settings = map[string]any{}
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("store: encode settings: %w", err)
	}
	return db.setMeta(metaSettings, string(data))
}

// Inbox returns captured topic titles in insertion order.
func (db *DB) Inbox() ([]string, error) {
	rows, err := db.conn.Query(`SELECT title FROM inbox ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("store: inbox: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AddInbox appends captured titles in order.
func (db *DB) AddInbox(titles []string) error {
	if len(titles) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, t := range titles {
		if _, err := tx.Exec(`INSERT INTO inbox (title) VALUES (?)`, t); err != nil {
			return fmt.Errorf("store: add inbox: %w", err)
		}
	}
	return tx.Commit()
}

// ReplaceInbox swaps the inbox contents for the given titles.
func (db *DB) ReplaceInbox(titles []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM inbox`); err != nil {
		return fmt.Errorf("store: clear inbox: %w", err)
	}
	for _, t := range titles {
		if _, err := tx.Exec(`INSERT INTO inbox (title) VALUES (?)`, t); err != nil {
			return fmt.Errorf("store: insert inbox: %w", err)
		}
	}
	return tx.Commit()
}

// Achievements returns unlocked achievement ids with their unlock times.
func (db *DB) Achievements() (map[string]time.Time, error) {
	rows, err := db.conn.Query(`SELECT id, unlocked_at FROM achievements`)
	if err != nil {
		return nil, fmt.Errorf("store: achievements: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		out[id] = at
	}
	return out, rows.Err()
}

// RecordAchievements stamps the given ids as unlocked at the given time.
// Already-recorded ids keep their original timestamp.
func (db *DB) RecordAchievements(ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO achievements (id, unlocked_at) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare achievement insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(id, at); err != nil {
			return fmt.Errorf("store: record achievement %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// ReplaceAchievements swaps the unlock records wholesale (used by import).
func (db *DB) ReplaceAchievements(unlocked map[string]time.Time) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM achievements`); err != nil {
		return fmt.Errorf("store: clear achievements: %w", err)
	}
	for id, at := range unlocked {
		if _, err := tx.Exec(`INSERT INTO achievements (id, unlocked_at) VALUES (?, ?)`, id, at); err != nil {
			return fmt.Errorf("store: insert achievement %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (db *DB) metaValue(key string) (string, bool, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: meta %s: %w", key, err)
	}
	return value, true, nil
}

func (db *DB) setMeta(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("store: set meta %s: %w", key, err)
	}
	return nil
}
