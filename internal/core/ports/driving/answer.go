package driving

import (
	"context"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// AnswerService answers natural-language questions about the indexed
// documents combined with the caller's drawing objects.
type AnswerService interface {
	// Answer runs the pipeline end to end and returns the final answer.
	Answer(ctx context.Context, question string, objects []domain.DrawingObject) (*domain.Answer, error)

	// AnswerStream runs the same pipeline but delivers the generated
	// text as ordered increments followed by exactly one terminal
	// done or error event. The channel is closed after the terminal
	// event.
	AnswerStream(ctx context.Context, question string, objects []domain.DrawingObject) <-chan domain.StreamEvent
}
