package guards

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

func TestIsSmallTalk(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"hi", true},
		{"Hello!", true},
		{"Hey there", true},
		{"good morning", true},
		{"Thanks!", true},
		{"thank you.", true},
		{"How are you?", true},
		{"howdy", true},

		// Domain keywords block small talk.
		{"hi, what about my property?", false},
		{"hello highway", false},

		// Too long.
		{"hi there how are you doing today my friend", false},

		// Not a known phrase.
		{"what time is it", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSmallTalk(tt.message))
		})
	}
}

func TestSmallTalk_FiresRegardlessOfGeometry(t *testing.T) {
	// "hi" with any session objects fires the guard.
	objects := []domain.DrawingObject{
		{Layer: "Highway"},
		{Layer: "Plot Boundary"},
	}

	res := SmallTalk{}.Evaluate("hi", objects)
	assert.NotNil(t, res)
	assert.Equal(t, domain.GuardSmallTalk, res.Type)
}

func TestSmallTalk_AbstainsOnQuestions(t *testing.T) {
	assert.Nil(t, SmallTalk{}.Evaluate("Does this property front a highway?", nil))
}
