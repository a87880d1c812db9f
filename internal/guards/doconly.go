package guards

import (
	"regexp"
	"strings"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// DocOnlyNotFoundMessage is substituted for generation when the asked
// term does not appear in any retrieved excerpt. It keeps the model
// from inventing definitions the documents do not contain.
const DocOnlyNotFoundMessage = "No explicit definition was found in the retrieved documents."

// maxTermLength caps extracted terms; anything longer is noise.
const maxTermLength = 80

// Term extraction pattern families, tried in order. Submatch 1 is the
// candidate term.
var termPatterns = []*regexp.Regexp{
	// "what is meant by 'X'" / "what is meant by \"X\"".
	regexp.MustCompile(`(?i)what\s+is\s+meant\s+by\s+['"]([^'"]+)['"]`),
	// "what is meant by X" up to ? or ,
	regexp.MustCompile(`(?i)what\s+is\s+meant\s+by\s+([^?,]+?)\s*(?:[?,]|$)`),
	// "what is the definition/meaning of a X?".
	regexp.MustCompile(`(?i)what\s+is\s+the\s+(?:definition|meaning)\s+of\s+(?:a|an|the)\s+([^?]+?)\s*\??\s*$`),
	// "what is the definition/meaning of X?".
	regexp.MustCompile(`(?i)what\s+is\s+the\s+(?:definition|meaning)\s+of\s+([^?]+?)\s*\??\s*$`),
	// "what is a/an/the X?".
	regexp.MustCompile(`(?i)what\s+is\s+(?:a|an|the)\s+([^?]+?)\s*\??\s*$`),
}

// Prefix families for "define X" style questions.
var termPrefixes = []string{"define ", "definition of ", "meaning of "}

// normalizeTerm lowercases, folds hyphens to spaces and collapses
// whitespace, so "side-elevation" and "Side Elevation" compare equal.
func normalizeTerm(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	t = strings.ReplaceAll(t, "-", " ")
	return strings.Join(strings.Fields(t), " ")
}

// ExtractDefinitionTerm extracts the term the user wants defined, or
// "" when no clear definition-style term is found (the guard is then
// not applied, so vague questions are not blocked).
func ExtractDefinitionTerm(question string) string {
	q := strings.TrimSpace(question)
	if q == "" {
		return ""
	}
	normalized := strings.ToLower(q)

	for _, pat := range termPatterns {
		if m := pat.FindStringSubmatch(normalized); m != nil {
			term := strings.TrimSpace(m[1])
			if term != "" && len(term) < maxTermLength {
				return term
			}
		}
	}

	for _, prefix := range termPrefixes {
		if !strings.HasPrefix(normalized, prefix) {
			continue
		}
		rest := strings.TrimSpace(normalized[len(prefix):])
		if rest == "" {
			continue
		}
		parts := strings.FieldsFunc(rest, func(r rune) bool {
			return r == '?' || r == ','
		})
		if len(parts) == 0 {
			continue
		}
		term := strings.TrimSpace(parts[0])
		if term != "" && len(term) < maxTermLength {
			return term
		}
	}
	return ""
}

// TermInChunks reports whether the term appears, case- and
// hyphen-insensitively, in at least one chunk's text.
func TermInChunks(term string, chunks []domain.Chunk) bool {
	needle := normalizeTerm(term)
	if needle == "" || len(chunks) == 0 {
		return false
	}
	for _, c := range chunks {
		if strings.Contains(normalizeTerm(c.Text), needle) {
			return true
		}
	}
	return false
}

// ShouldUseRetrievedForDocOnly decides whether doc_only generation may
// proceed: only when the asked-for term appears in the retrieved
// context. No extractable term allows generation; no chunks at all
// block it.
func ShouldUseRetrievedForDocOnly(question string, chunks []domain.Chunk) bool {
	if len(chunks) == 0 {
		return false
	}
	term := ExtractDefinitionTerm(question)
	if term == "" {
		return true
	}
	return TermInChunks(term, chunks)
}
