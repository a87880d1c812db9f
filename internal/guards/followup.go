package guards

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// Follow-up phrases asking what input is needed, English and Turkish.
var needsInputPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)what\s+it\s+needs`),
	regexp.MustCompile(`(?i)what\s+do\s+you\s+need`),
	regexp.MustCompile(`(?i)what\s+is\s+needed`),
	regexp.MustCompile(`(?i)what'?s\s+missing`),
	regexp.MustCompile(`(?i)what\s+do\s+i\s+need`),
	regexp.MustCompile(`(?i)ne\s+laz[ıi]m`),
	regexp.MustCompile(`(?i)ne\s+gerekiyor`),
	regexp.MustCompile(`(?i)ne\s+eksik`),
	regexp.MustCompile(`(?i)neye\s+ihtiya[çc]`),
}

// NeedsInput answers "what do you need?" follow-ups after a geometry
// refusal with a deterministic checklist. The required layer set is
// recomputed from the current objects rather than remembered from the
// earlier refusal: the guard is stateless across requests.
type NeedsInput struct{}

// Name implements Guard.
func (NeedsInput) Name() string { return "needs_input" }

// Evaluate implements Guard.
func (NeedsInput) Evaluate(question string, objects []domain.DrawingObject) *domain.GuardResult {
	if !IsNeedsInputFollowup(question) {
		return nil
	}
	missing := MissingLayersForFollowup(objects)
	if len(missing) == 0 {
		return nil
	}
	return &domain.GuardResult{Type: domain.GuardNeedsInput, MissingLayers: missing}
}

// IsNeedsInputFollowup reports whether the question asks what input or
// geometry is needed.
func IsNeedsInputFollowup(question string) bool {
	text := strings.TrimSpace(question)
	if text == "" {
		return false
	}
	for _, pat := range needsInputPatterns {
		if pat.MatchString(text) {
			return true
		}
	}
	return false
}

// MissingLayersForFollowup computes which layers currently lack
// geometry, always considering the two canonical layers on top of
// whatever layers are present. Sorted for stable output.
func MissingLayersForFollowup(objects []domain.DrawingObject) []string {
	if len(objects) == 0 {
		return nil
	}
	required := map[string]struct{}{
		LayerHighway:      {},
		LayerPlotBoundary: {},
	}
	for _, obj := range objects {
		if name := obj.LayerName(); name != "" {
			required[name] = struct{}{}
		}
	}
	missing := MissingGeometryLayers(objects, required)
	sort.Strings(missing)
	return missing
}

// NeedsInputMessage renders the checklist of layers needing geometry.
func NeedsInputMessage(missing []string) string {
	if len(missing) == 0 {
		return "All required layers have valid geometry. " +
			"Geometry means non-null geometry with coordinates."
	}
	return fmt.Sprintf(
		"**Layers needing geometry:** %s\n\n"+
			"**Geometry requirement:** Non-null geometry with coordinates "+
			"(e.g. points, lines, polygons with coordinate arrays). "+
			"Add or correct geometry in the drawing for these layers to answer spatial questions.",
		strings.Join(missing, ", "),
	)
}
