// Package routing classifies question text into a query mode without
// touching session state. The classification decides which evidence
// sources are consulted (retrieval is skipped entirely for json_only)
// and which prompt shape the generative step uses.
//
// The heuristics are explicit rule tables rather than control flow so
// they stay independently testable and extensible.
package routing

import (
	"regexp"
	"strings"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// Definition-style phrasing that selects doc_only (e.g. "What is a
// highway?", "Define principal elevation").
var definitionPrefixes = []string{
	"what is ",
	"define ",
	"definition of ",
	"meaning of ",
	"what does ",
	"what is considered a ",
	"what is considered an ",
	"how is ",
	"how are ",
}

var definitionPatterns = []string{
	" mean",
	" defined",
	" definition",
}

// Drawing-intent keywords veto doc_only even when a definition pattern
// matches ("What is a highway in my drawing?" is not doc_only).
// "elevation" is deliberately absent so "Define principal elevation"
// stays a regulatory definition question.
var drawingIntentKeywords = []string{
	"property", "plot", "boundary", "front", "fronts",
	"distance", "angle", "coordinates", "door", "window", "wall", "layer",
	"json", "drawing", "comply", "allowed", "extension",
}

// Counting/listing phrasing that selects json_only: these questions
// are answered from the session objects alone.
var countingPatterns = []string{
	"how many",
	"list the",
	"list all",
	"which layers",
	"what layers",
	"count the",
}

// "what is the width/height/area/... of X" asks about a session
// object's attribute, not a regulation.
var attributePattern = regexp.MustCompile(`what\s+is\s+the\s+(width|height|area|length|name)\s+of`)

// Generic presence questions about the drawing contents.
var presencePatterns = []string{
	"is there a",
	"is there an",
	"are there any",
	"does the drawing contain",
	"does the session contain",
}

var sessionWords = []string{"session", "drawing", "json", "layer", "object"}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func containsAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// Mode classifies the question into doc_only, json_only or hybrid.
// Hybrid is the default when neither specialised mode applies.
func Mode(question string) domain.QueryMode {
	q := normalize(question)
	if q == "" {
		return domain.ModeHybrid
	}
	if isDefinitionOnly(q) {
		return domain.ModeDocOnly
	}
	if isJSONOnly(q) {
		return domain.ModeJSONOnly
	}
	return domain.ModeHybrid
}

// isDefinitionOnly reports whether the question is purely a regulatory
// definition request. Checked first; drawing intent always vetoes.
func isDefinitionOnly(q string) bool {
	if containsAny(q, drawingIntentKeywords) {
		return false
	}
	for _, prefix := range definitionPrefixes {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}
	return containsAny(q, definitionPatterns)
}

// isJSONOnly reports whether the question counts, lists or probes the
// presence of session objects. Only consulted when not doc_only.
func isJSONOnly(q string) bool {
	if containsAny(q, countingPatterns) {
		return true
	}
	if attributePattern.MatchString(q) {
		return true
	}
	if containsAny(q, presencePatterns) && containsAny(q, sessionWords) {
		return true
	}
	return false
}
