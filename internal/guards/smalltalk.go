package guards

import (
	"strings"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// SmallTalkResponse is the fixed deterministic answer for greetings.
const SmallTalkResponse = "Hi! I can help with planning regulations and your current drawing JSON. " +
	"What would you like to check?"

// smallTalkMaxWords is the word-count ceiling for a greeting.
const smallTalkMaxWords = 4

// Domain keywords: if any appears the message is never small talk.
var domainKeywords = []string{
	"property", "highway", "plot", "boundary", "elevation",
	"planning", "development", "wall", "window", "door",
	"json", "layer",
}

// Known greeting/pleasantry phrases, matched after normalisation.
var smallTalkPhrases = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "hey there": {}, "hi there": {},
	"good morning": {}, "good afternoon": {}, "good evening": {},
	"morning": {}, "afternoon": {}, "evening": {}, "good day": {},
	"thanks": {}, "thank you": {}, "thx": {},
	"how are you": {}, "how are you doing": {}, "how's it going": {},
	"how do you do": {}, "greetings": {}, "howdy": {},
}

// SmallTalk short-circuits greetings and pleasantries so they never
// reach retrieval or generation.
type SmallTalk struct{}

// Name implements Guard.
func (SmallTalk) Name() string { return "smalltalk" }

// Evaluate implements Guard.
func (SmallTalk) Evaluate(question string, _ []domain.DrawingObject) *domain.GuardResult {
	if !IsSmallTalk(question) {
		return nil
	}
	return &domain.GuardResult{Type: domain.GuardSmallTalk}
}

// IsSmallTalk reports whether the message is a short greeting or
// pleasantry containing no domain keyword.
func IsSmallTalk(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	if normalized == "" {
		return false
	}
	if len(strings.Fields(normalized)) > smallTalkMaxWords {
		return false
	}
	for _, kw := range domainKeywords {
		if strings.Contains(normalized, kw) {
			return false
		}
	}
	phrase := strings.TrimSpace(strings.TrimRight(normalized, ".,!?;:"))
	_, ok := smallTalkPhrases[phrase]
	return ok
}
