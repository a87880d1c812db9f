// Package prompts is the single source of truth for the prompt shapes
// sent to the generative model: a doc-only shape that omits all
// session-object context, and a hybrid shape that combines retrieved
// excerpts with the drawing objects and their computed summary.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// EmptyExcerptsPlaceholder stands in when retrieval produced nothing.
const EmptyExcerptsPlaceholder = "No relevant excerpts found."

// System is the instruction block shared by both prompt shapes.
const System = `You are a careful assistant that answers user questions by combining:
(1) retrieved excerpts from planning/regulatory documents (persistent knowledge) and
(2) the current session's drawing object list in JSON (ephemeral state).

Rules:

1. Treat the retrieved document excerpts as authoritative. If a relevant rule is missing, say so.

2. Treat the JSON object list as the current ground truth for the drawing. Always use the latest JSON provided.

3. Do NOT invent objects, measurements, or rules.

4. Always analyze what CAN be determined from available geometry FIRST, even if some information is missing.

5. Provide general rules and information that apply, even when specific details are missing. Be helpful and actionable.

6. If the question requires geometric computation and the JSON is insufficient, explain what CAN be determined, then what cannot, and what additional data is needed.

7. When you cite regulations, quote short phrases (not long passages). Do NOT include inline document references in your answer.

8. Return ONLY your direct answer. No "Evidence:" section, no inline document excerpts.

9. If the user's JSON is malformed or inconsistent, request a corrected JSON and explain what is wrong.

10. If required geometric data is missing (geometry is null / no coordinates), say it cannot be determined and do not infer spatial relationships. If geometry EXISTS, use it.`

// FormatChunk renders one retrieved excerpt for the prompt.
func FormatChunk(c domain.Chunk) string {
	page := "p?"
	if c.Page != nil {
		page = "p" + *c.Page
	}
	section := ""
	if c.Section != nil && *c.Section != "" {
		section = " | " + *c.Section
	}
	return fmt.Sprintf("[DOC: %s | %s | chunk: %s%s]\n%s", c.Source, page, c.ID, section, c.Text)
}

// FormatChunks renders all retrieved excerpts, or the placeholder when
// there are none.
func FormatChunks(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return EmptyExcerptsPlaceholder
	}
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, FormatChunk(c))
	}
	return strings.Join(parts, "\n\n")
}

// DocOnly builds the definition-question prompt: excerpts only, no
// drawing or session state.
func DocOnly(question string, chunks []domain.Chunk) string {
	human := fmt.Sprintf(`User question:
%s

Retrieved regulatory excerpts (persistent knowledge):
%s

Task:
Answer the question using ONLY the retrieved excerpts above. Do not refer to any drawing or session state unless the user explicitly asks about it.
- Quote short phrases from the excerpts where relevant.
- Do NOT include inline document references.
Return ONLY your direct answer (no Evidence section, no preamble).`, question, FormatChunks(chunks))

	return System + "\n\n" + human
}

// Hybrid builds the combined prompt: question, session objects,
// computed summary and retrieved excerpts.
func Hybrid(question string, objects []domain.DrawingObject, summary *domain.SessionSummary, chunks []domain.Chunk) string {
	objectsJSON, err := json.MarshalIndent(objects, "", "  ")
	if err != nil {
		objectsJSON = []byte("[]")
	}

	layerCounts := map[string]int{}
	plotBoundary, highways := false, false
	limitations := []string{}
	if summary != nil {
		layerCounts = summary.LayerCounts
		plotBoundary = summary.PlotBoundaryPresent
		highways = summary.HighwaysPresent
		limitations = summary.Limitations
	}

	human := fmt.Sprintf(`User question:
%s

Session drawing objects (current JSON):
%s

Derived session summary (computed by the system):
- Layer counts: %v
- Plot boundary present: %t
- Highways present: %t
- Known limitations: %s

Retrieved regulatory excerpts (persistent knowledge):
%s

Task:
1. FIRST: Analyze what CAN be determined from the available geometry and spatial relationships.
2. SECOND: Answer the user question using BOTH the retrieved excerpts and the current JSON.
3. THIRD: If the answer depends on geometry (e.g., "fronts a highway"), explain your reasoning steps briefly.
4. FOURTH: If the rule depends on terms (e.g., "principal elevation", "highway"), prefer definitions in the retrieved excerpts.
5. Even if some information is missing, provide general rules and explain what CAN be determined from available data.

Return ONLY your direct answer:
- Start with what CAN be determined from available geometry.
- Then provide general rules from the documents that apply.
- Finally, if information is missing, be specific about what's needed.
- One or two paragraphs: your direct answer (short, direct).
- Do NOT include any inline document references.
- If uncertain, state uncertainty and what additional data would resolve it.`,
		question, objectsJSON, layerCounts, plotBoundary, highways,
		strings.Join(limitations, "; "), FormatChunks(chunks))

	return System + "\n\n" + human
}
