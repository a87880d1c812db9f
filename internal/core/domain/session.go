package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Geometry is the coordinate container of a drawing object.
// Coordinates may hold a flat pair ([x, y]) or nested arrays
// ([[x, y], ...]); elements stay raw so malformed input degrades
// to "no geometry" instead of failing the request.
type Geometry struct {
	Type        string            `json:"type,omitempty"`
	Coordinates []json.RawMessage `json:"coordinates"`
}

// HasCoordinates reports whether the geometry carries a usable,
// non-empty coordinate sequence.
func (g *Geometry) HasCoordinates() bool {
	if g == nil {
		return false
	}
	return rawCoordinatesUsable(g.Coordinates)
}

// DrawingObject is one geometric object from the client session.
// The core only reads it; ownership stays with the caller.
type DrawingObject struct {
	// Layer is the layer name, e.g. "Highway" or "Plot Boundary".
	Layer string `json:"layer"`

	// Type is the object type, free-form.
	Type string `json:"type,omitempty"`

	// Geometry is the coordinate container, nil when absent.
	Geometry *Geometry `json:"geometry,omitempty"`

	// Coordinates is a top-level coordinate fallback some clients
	// send instead of a geometry container.
	Coordinates []json.RawMessage `json:"coordinates,omitempty"`

	// Properties holds free-form object attributes.
	Properties map[string]any `json:"properties,omitempty"`
}

// LayerName returns the trimmed layer name, empty when unset.
func (o DrawingObject) LayerName() string {
	return strings.TrimSpace(o.Layer)
}

// HasGeometry reports whether the object carries usable coordinate
// data, either top-level or inside its geometry container.
func (o DrawingObject) HasGeometry() bool {
	if rawCoordinatesUsable(o.Coordinates) {
		return true
	}
	return o.Geometry.HasCoordinates()
}

// rawCoordinatesUsable checks a raw coordinate sequence: it must be
// non-empty, and when the first element is itself an array that array
// must be non-empty too.
func rawCoordinatesUsable(coords []json.RawMessage) bool {
	if len(coords) == 0 {
		return false
	}
	first := bytes.TrimSpace(coords[0])
	if len(first) == 0 {
		return false
	}
	if first[0] == '[' {
		var nested []json.RawMessage
		if err := json.Unmarshal(first, &nested); err != nil {
			return false
		}
		return len(nested) > 0
	}
	return true
}

// SessionSummary is the computed overview of the session objects
// supplied to the generative step and returned with every answer.
type SessionSummary struct {
	LayerCounts         map[string]int `json:"layer_counts"`
	PlotBoundaryPresent bool           `json:"plot_boundary_present"`
	HighwaysPresent     bool           `json:"highways_present"`
	TotalObjects        int            `json:"total_objects"`
	Limitations         []string       `json:"limitations"`
}
