package guards

import (
	"fmt"
	"sort"
	"strings"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// Canonical layer names used when computing required layers.
const (
	LayerHighway      = "Highway"
	LayerPlotBoundary = "Plot Boundary"
	LayerWalls        = "Walls"
	LayerDoors        = "Doors"
)

// Phrases indicating a general-rule / explanatory question. These
// never trigger the geometry guard.
var generalRulePhrases = []string{
	"what is meant by",
	"what is ",
	"would ",
	"normally be permitted",
	"does the presence of",
	"restrict ",
	"according to the regulations",
	"according to the regulation",
	"generally",
}

// Phrases indicating the question is about THIS specific drawing.
// Required for the guard to trigger.
var thisDrawingPhrases = []string{
	"does this property",
	"is this plot",
	"in the current drawing",
	"given this drawing",
	"this drawing",
	"this property",
	"this plot",
}

// Keywords indicating a spatial/geometric question.
var spatialKeywords = []string{
	"front", "fronts", "fronting",
	"adjacent", "adjacency",
	"distance", "far", "near", "proximity",
	"angle", "degrees",
	"coordinates", "geometry",
	"intersects", "intersection", "touch", "overlap",
	"align", "parallel", "perpendicular",
	"orientation", "position", "located", "relative",
	"elevation",
}

// Fronting-style questions require at minimum these layers.
var frontingRequiredLayers = []string{LayerHighway, LayerPlotBoundary}

// Keywords implying the fronting layer pair even without "front".
var impliedFrontingKeywords = []string{
	"highway", "boundary", "plot", "adjacent", "distance",
	"intersect", "touch", "overlap", "align", "position",
	"orientation", "coordinates", "geometry",
}

// Question keywords that add further layers to the requirement.
var extraLayerKeywords = map[string][]string{
	"elevation": {LayerWalls, LayerDoors},
	"wall":      {LayerWalls},
	"walls":     {LayerWalls},
	"door":      {LayerDoors},
	"doors":     {LayerDoors},
}

// Geometry fires when a spatial question about this specific drawing
// cannot be answered because every object on a required layer lacks
// usable coordinates. It prevents the generative step from inventing
// spatial relationships.
type Geometry struct{}

// Name implements Guard.
func (Geometry) Name() string { return "geometry" }

// Evaluate implements Guard.
func (Geometry) Evaluate(question string, objects []domain.DrawingObject) *domain.GuardResult {
	if !ShouldTriggerGeometryGuard(question) {
		return nil
	}
	missing := MissingGeometryLayers(objects, RequiredLayers(question))
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &domain.GuardResult{Type: domain.GuardMissingGeometry, MissingLayers: missing}
}

// ShouldTriggerGeometryGuard applies one clear rule: trigger only when
// the question is spatial AND about this specific drawing AND not a
// general-rule question.
func ShouldTriggerGeometryGuard(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return false
	}
	for _, phrase := range generalRulePhrases {
		if strings.Contains(q, phrase) {
			return false
		}
	}
	drawing := false
	for _, phrase := range thisDrawingPhrases {
		if strings.Contains(q, phrase) {
			drawing = true
			break
		}
	}
	if !drawing {
		return false
	}
	for _, kw := range spatialKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// RequiredLayers returns the layers that must have valid geometry for
// the question. Fronting-style questions need at least Highway and
// Plot Boundary; mentions of elevation/wall/door add more.
func RequiredLayers(question string) map[string]struct{} {
	q := strings.ToLower(strings.TrimSpace(question))
	required := make(map[string]struct{})

	if strings.Contains(q, "front") {
		for _, l := range frontingRequiredLayers {
			required[l] = struct{}{}
		}
	}
	for _, kw := range impliedFrontingKeywords {
		if strings.Contains(q, kw) {
			for _, l := range frontingRequiredLayers {
				required[l] = struct{}{}
			}
			break
		}
	}
	for kw, layers := range extraLayerKeywords {
		if strings.Contains(q, kw) {
			for _, l := range layers {
				required[l] = struct{}{}
			}
		}
	}
	return required
}

// layerMatches reports whether an object's layer matches a required
// layer, case-insensitively and allowing partial containment either
// way ("Plot boundary" matches "Plot Boundary").
func layerMatches(layer, required string) bool {
	l := strings.ToLower(layer)
	r := strings.ToLower(required)
	return l == r || strings.Contains(l, r) || strings.Contains(r, l)
}

// MissingGeometryLayers returns each required layer that has at least
// one object but where every such object lacks usable geometry. Layers
// with zero objects never appear: absence is a different condition
// than missing geometry.
func MissingGeometryLayers(objects []domain.DrawingObject, required map[string]struct{}) []string {
	if len(required) == 0 || len(objects) == 0 {
		return nil
	}

	// Deterministic matching order: an object joins the first required
	// layer (alphabetically) that its own layer name matches.
	reqOrdered := make([]string, 0, len(required))
	for req := range required {
		reqOrdered = append(reqOrdered, req)
	}
	sort.Strings(reqOrdered)

	byLayer := make(map[string][]domain.DrawingObject)
	for _, obj := range objects {
		name := obj.LayerName()
		if name == "" {
			continue
		}
		for _, req := range reqOrdered {
			if layerMatches(name, req) {
				byLayer[req] = append(byLayer[req], obj)
				break
			}
		}
	}

	var missing []string
	for layer, objs := range byLayer {
		all := true
		for _, o := range objs {
			if o.HasGeometry() {
				all = false
				break
			}
		}
		if all {
			missing = append(missing, layer)
		}
	}
	return missing
}

// MissingGeometryMessage is the deterministic refusal for a fired
// geometry guard.
func MissingGeometryMessage(missing []string) string {
	sorted := append([]string(nil), missing...)
	sort.Strings(sorted)
	return fmt.Sprintf(
		"Cannot determine because the current drawing does not provide geometric information "+
			"(coordinates/angles/distances) for: %s.",
		strings.Join(sorted, ", "),
	)
}
