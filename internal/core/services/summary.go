package services

import (
	"strings"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// Limitation texts surfaced with the session summary.
const (
	limitNoObjects     = "No session objects provided"
	limitNoBoundary    = "No plot boundary defined"
	limitNoMeasurement = "No measurement data found in objects"
	limitNoGeometry    = "No coordinate/geometry data found"
)

// measurementKeys are the object properties that count as measurement
// data.
var measurementKeys = []string{"width", "height", "area", "length"}

// summarizeSession computes the session overview handed to the
// generative step and returned with every answer.
func summarizeSession(objects []domain.DrawingObject) *domain.SessionSummary {
	summary := &domain.SessionSummary{
		LayerCounts:  make(map[string]int),
		TotalObjects: len(objects),
		Limitations:  []string{},
	}

	if len(objects) == 0 {
		summary.Limitations = append(summary.Limitations, limitNoObjects)
		return summary
	}

	var anyMeasurement, anyGeometry bool
	for _, obj := range objects {
		layer := obj.LayerName()
		if layer != "" {
			summary.LayerCounts[layer]++
		}

		lowered := strings.ToLower(layer)
		if strings.Contains(lowered, "plot") || strings.Contains(lowered, "boundary") {
			summary.PlotBoundaryPresent = true
		}
		if strings.Contains(lowered, "highway") || strings.Contains(lowered, "road") {
			summary.HighwaysPresent = true
		}

		if hasMeasurement(obj) {
			anyMeasurement = true
		}
		if obj.HasGeometry() {
			anyGeometry = true
		}
	}

	if !summary.PlotBoundaryPresent {
		summary.Limitations = append(summary.Limitations, limitNoBoundary)
	}
	if !anyMeasurement {
		summary.Limitations = append(summary.Limitations, limitNoMeasurement)
	}
	if !anyGeometry {
		summary.Limitations = append(summary.Limitations, limitNoGeometry)
	}

	return summary
}

func hasMeasurement(obj domain.DrawingObject) bool {
	for _, key := range measurementKeys {
		if v, ok := obj.Properties[key]; ok && v != nil {
			return true
		}
	}
	return false
}
