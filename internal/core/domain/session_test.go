package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawingObject_HasGeometry(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{
			name: "nil geometry",
			raw:  `{"layer": "Highway", "geometry": null}`,
			want: false,
		},
		{
			name: "no geometry key",
			raw:  `{"layer": "Highway"}`,
			want: false,
		},
		{
			name: "empty coordinates",
			raw:  `{"layer": "Highway", "geometry": {"coordinates": []}}`,
			want: false,
		},
		{
			name: "nested coordinates",
			raw:  `{"layer": "Plot Boundary", "geometry": {"coordinates": [[0, 0], [1, 0]]}}`,
			want: true,
		},
		{
			name: "flat point coordinates",
			raw:  `{"layer": "Doors", "geometry": {"coordinates": [4.5, 2.1]}}`,
			want: true,
		},
		{
			name: "empty nested first element",
			raw:  `{"layer": "Walls", "geometry": {"coordinates": [[]]}}`,
			want: false,
		},
		{
			name: "top-level coordinates fallback",
			raw:  `{"layer": "Walls", "coordinates": [[0, 0], [2, 0]]}`,
			want: true,
		},
		{
			name: "top-level coordinates empty",
			raw:  `{"layer": "Walls", "coordinates": []}`,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var obj DrawingObject
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &obj))
			assert.Equal(t, tt.want, obj.HasGeometry())
		})
	}
}

func TestDrawingObject_LayerName(t *testing.T) {
	// JSON field names match case-insensitively, so clients sending
	// "Layer" still populate the same field.
	var obj DrawingObject
	require.NoError(t, json.Unmarshal([]byte(`{"Layer": "  Highway  "}`), &obj))
	assert.Equal(t, "Highway", obj.LayerName())

	assert.Empty(t, DrawingObject{}.LayerName())
}

func TestSyncOutcome_HasChanges(t *testing.T) {
	assert.False(t, (&SyncOutcome{UnchangedDocuments: 5}).HasChanges())
	assert.True(t, (&SyncOutcome{NewDocuments: 1}).HasChanges())
	assert.True(t, (&SyncOutcome{UpdatedDocuments: 1}).HasChanges())
	assert.True(t, (&SyncOutcome{DeletedDocuments: 1}).HasChanges())
}

func TestChunk_DistanceOrInf(t *testing.T) {
	d := 0.25
	assert.Equal(t, 0.25, Chunk{Distance: &d}.DistanceOrInf())
	assert.True(t, Chunk{}.DistanceOrInf() > 1e300)
}
