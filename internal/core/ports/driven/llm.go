package driven

import "context"

// Generator is the external generative model. It is invoked with two
// prompt shapes (doc-only and hybrid) built by the answer pipeline;
// the adapter does not know which is which.
//
// Implementations may include:
//   - OpenAI (chat completions)
//   - Any OpenAI-compatible inference server
type Generator interface {
	// Complete produces the full answer text for a prompt.
	Complete(ctx context.Context, prompt string) (string, error)

	// Stream produces the answer as text increments. The text channel
	// is closed when generation finishes; at most one error is sent on
	// the error channel and both channels are closed afterwards.
	Stream(ctx context.Context, prompt string) (<-chan string, <-chan error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// EmbeddingService generates vector embeddings from text. Used by
// index adapters that store vectors locally; remote indexes that embed
// server-side do not need it.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
