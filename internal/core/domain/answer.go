package domain

// QueryMode classifies which evidence sources a question needs.
type QueryMode string

// Query modes.
const (
	// ModeDocOnly answers from retrieved document excerpts alone.
	ModeDocOnly QueryMode = "doc_only"

	// ModeJSONOnly answers from the session objects alone; retrieval
	// is skipped entirely.
	ModeJSONOnly QueryMode = "json_only"

	// ModeHybrid combines retrieved excerpts with the session objects.
	ModeHybrid QueryMode = "hybrid"
)

// Answer is the final result of the answer pipeline.
type Answer struct {
	// Text is the user-visible answer.
	Text string

	// Mode is the query mode the router selected. Empty when a guard
	// short-circuited before routing.
	Mode QueryMode

	// Summary is the computed session summary.
	Summary *SessionSummary
}

// StreamEventType tags an event on the streaming answer path.
type StreamEventType string

// Stream event types.
const (
	// StreamChunk carries one text increment.
	StreamChunk StreamEventType = "chunk"

	// StreamDone terminates the stream and carries the full answer.
	StreamDone StreamEventType = "done"

	// StreamError terminates the stream with a failure message.
	StreamError StreamEventType = "error"
)

// StreamEvent is one record on the streaming answer path. The contract
// is zero or more chunk events followed by exactly one done or error.
type StreamEvent struct {
	Type StreamEventType

	// Text is the increment for chunk events.
	Text string

	// Answer is set on the done event.
	Answer *Answer

	// Message is set on the error event.
	Message string
}
