package models

import "strings"

// Collection is the full in-memory set of items. It is handled as a value:
// every lifecycle operation takes a snapshot and returns a replacement, and
// the caller provides single-writer discipline.
//
// Items form a tree via ParentID but are stored flat; the parent index is
// derived on demand rather than maintained incrementally, so it can never
// dangle after deletions.
type Collection []Item

// Find returns the item with the given id.
func (c Collection) Find(id string) (Item, bool) {
	for _, it := range c {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// IndexOf returns the position of the item with the given id, or -1.
func (c Collection) IndexOf(id string) int {
	for i, it := range c {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// ByID builds an id lookup map over the collection.
func (c Collection) ByID() map[string]Item {
	m := make(map[string]Item, len(c))
	for _, it := range c {
		m[it.ID] = it
	}
	return m
}

// ChildIndex builds the parent-to-children index. Keys are parent ids;
// children keep collection order. Orphaned parent references index under
// their (dangling) parent id and are simply never looked up.
func (c Collection) ChildIndex() map[string][]string {
	idx := make(map[string][]string)
	for _, it := range c {
		if it.ParentID != "" {
			idx[it.ParentID] = append(idx[it.ParentID], it.ID)
		}
	}
	return idx
}

// HasTitle reports whether any item's title matches the given title,
// case-insensitively. This is the validity predicate for [[Topic Title]]
// note links.
func (c Collection) HasTitle(title string) bool {
	for _, it := range c {
		if strings.EqualFold(it.Title, title) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, it := range c {
		out[i] = it.Clone()
	}
	return out
}

// Active returns the items that are neither archived nor mastered.
func (c Collection) Active() Collection {
	var out Collection
	for _, it := range c {
		if it.Active() {
			out = append(out, it)
		}
	}
	return out
}

// MasteredCount returns the number of items with a mastery timestamp,
// archived or not.
func (c Collection) MasteredCount() int {
	n := 0
	for _, it := range c {
		if it.Mastered() {
			n++
		}
	}
	return n
}

// TotalReviews returns the summed history length across all items.
func (c Collection) TotalReviews() int {
	n := 0
	for _, it := range c {
		n += len(it.History)
	}
	return n
}
