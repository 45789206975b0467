// Package depgraph resolves the prerequisite lock state of items.
//
// The lock check is a local, one-hop lookup: an item is locked while any of
// its prerequisites is missing from the collection or not yet mastered. A
// missing prerequisite locks the item (fail-safe default). The check does
// not traverse the graph, so a cyclic prerequisite chain keeps every item in
// the cycle locked; WouldCreateCycle exists to reject such edits before they
// enter the collection.
package depgraph

import "github.com/starford/mimir/internal/models"

// IsLocked reports whether the item's prerequisites block it from review.
// Items without prerequisites are never locked.
func IsLocked(item models.Item, col models.Collection) bool {
	if len(item.PrerequisiteIDs) == 0 {
		return false
	}
	return LockedIn(item, col.ByID())
}

// LockedIn is IsLocked against a prebuilt id index, for callers resolving
// many items over one snapshot.
func LockedIn(item models.Item, byID map[string]models.Item) bool {
	for _, id := range item.PrerequisiteIDs {
		prereq, ok := byID[id]
		if !ok || !prereq.Mastered() {
			return true
		}
	}
	return false
}

// NewlyUnlockedIDs returns the ids of items that were locked under before
// and are unlocked under after, in collection order. Items absent from
// either snapshot are ignored.
func NewlyUnlockedIDs(before, after models.Collection) []string {
	beforeByID := before.ByID()
	afterByID := after.ByID()

	var out []string
	for _, it := range after {
		old, ok := beforeByID[it.ID]
		if !ok {
			continue
		}
		if LockedIn(old, beforeByID) && !LockedIn(it, afterByID) {
			out = append(out, it.ID)
		}
	}
	return out
}

// DependsOn reports whether the item with the given id transitively depends
// on targetID through existing prerequisite edges. Unresolvable ids
// terminate the walk; a visited set guards against pre-existing cycles.
func DependsOn(col models.Collection, id, targetID string) bool {
	byID := col.ByID()
	visited := make(map[string]struct{})

	var walk func(cur string) bool
	walk = func(cur string) bool {
		if _, seen := visited[cur]; seen {
			return false
		}
		visited[cur] = struct{}{}
		it, ok := byID[cur]
		if !ok {
			return false
		}
		for _, p := range it.PrerequisiteIDs {
			if p == targetID || walk(p) {
				return true
			}
		}
		return false
	}

	return walk(id)
}

// WouldCreateCycle reports whether replacing the item's prerequisites with
// prereqIDs would introduce a self-dependency or a cycle. The walk follows
// the edges already present in the collection.
func WouldCreateCycle(col models.Collection, id string, prereqIDs []string) bool {
	for _, p := range prereqIDs {
		if p == id {
			return true
		}
		if DependsOn(col, p, id) {
			return true
		}
	}
	return false
}
