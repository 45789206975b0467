// Package notelink parses the [[Topic Title]] cross-reference micro-syntax
// embedded in item notes.
//
// Parsing only splits the text into segments; whether a reference resolves
// is decided by the caller against the collection (models.Collection's
// HasTitle predicate), so unresolved references can still render as inert
// text.
package notelink

import (
	"regexp"
	"strings"
)

var linkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)

// Segment is one run of note text: either plain text or a topic reference.
// For references, Text carries the referenced title without brackets.
type Segment struct {
	Text string `json:"text"`
	Link bool   `json:"link"`
}

// Parse splits notes into an ordered sequence of plain-text and reference
// segments. Empty plain-text runs between adjacent references are dropped.
func Parse(notes string) []Segment {
	var out []Segment
	last := 0
	for _, m := range linkRe.FindAllStringSubmatchIndex(notes, -1) {
		if notes[last:m[0]] != "" {
			out = append(out, Segment{Text: notes[last:m[0]]})
		}
		out = append(out, Segment{Text: notes[m[2]:m[3]], Link: true})
		last = m[1]
	}
	if notes[last:] != "" {
		out = append(out, Segment{Text: notes[last:]})
	}
	return out
}

// Titles returns the deduplicated referenced titles in order of first
// appearance. Blank references are skipped.
func Titles(notes string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, seg := range Parse(notes) {
		if !seg.Link {
			continue
		}
		title := strings.TrimSpace(seg.Text)
		if title == "" {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, title)
	}
	return out
}
