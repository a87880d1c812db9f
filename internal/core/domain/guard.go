package domain

// GuardType identifies which deterministic guard fired.
type GuardType string

// Guard types.
const (
	GuardSmallTalk       GuardType = "smalltalk"
	GuardMissingGeometry GuardType = "missing_geometry"
	GuardNeedsInput      GuardType = "needs_input"
)

// GuardResult is the outcome of a guard that short-circuited the
// answer pipeline. Produced fresh per request, never persisted.
type GuardResult struct {
	Type GuardType

	// MissingLayers lists the layers whose objects all lack usable
	// geometry. Set for missing_geometry and needs_input.
	MissingLayers []string
}
