package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
	"github.com/veldt-labs/planora-cli/internal/core/ports/driven"
	"github.com/veldt-labs/planora-cli/internal/core/ports/driving"
	"github.com/veldt-labs/planora-cli/internal/guards"
	"github.com/veldt-labs/planora-cli/internal/logger"
	"github.com/veldt-labs/planora-cli/internal/prompts"
	"github.com/veldt-labs/planora-cli/internal/retrieval"
	"github.com/veldt-labs/planora-cli/internal/routing"
)

// Ensure AnswerOrchestrator implements the interface.
var _ driving.AnswerService = (*AnswerOrchestrator)(nil)

// DefaultTopK is the default number of excerpts requested per query.
const DefaultTopK = 5

// streamEventBuffer bounds the event channel on the streaming path.
const streamEventBuffer = 16

// AnswerOrchestrator runs the answer pipeline: deterministic guards
// first, then routing, retrieval and generation. Guards and routing
// are pure, so two identical requests take identical paths.
type AnswerOrchestrator struct {
	index     driven.ExternalIndex
	generator driven.Generator
	chain     *guards.Chain

	topK        int
	maxDistance float64
	perPageCap  int
}

// AnswerOption configures the orchestrator.
type AnswerOption func(*AnswerOrchestrator)

// WithTopK sets the number of excerpts requested from the index.
func WithTopK(k int) AnswerOption {
	return func(o *AnswerOrchestrator) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithMaxDistance drops excerpts above the given distance. Zero
// disables the filter.
func WithMaxDistance(d float64) AnswerOption {
	return func(o *AnswerOrchestrator) {
		o.maxDistance = d
	}
}

// WithPerPageCap limits excerpts kept per document page.
func WithPerPageCap(n int) AnswerOption {
	return func(o *AnswerOrchestrator) {
		if n > 0 {
			o.perPageCap = n
		}
	}
}

// WithGuardChain replaces the default guard chain.
func WithGuardChain(chain *guards.Chain) AnswerOption {
	return func(o *AnswerOrchestrator) {
		o.chain = chain
	}
}

// NewAnswerOrchestrator creates a new answer orchestrator.
func NewAnswerOrchestrator(index driven.ExternalIndex, generator driven.Generator, opts ...AnswerOption) *AnswerOrchestrator {
	o := &AnswerOrchestrator{
		index:      index,
		generator:  generator,
		chain:      guards.DefaultChain(),
		topK:       DefaultTopK,
		perPageCap: retrieval.DefaultPerPageCap,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// answerState carries the pipeline state between nodes. One instance
// per request, mutated in pipeline order only.
type answerState struct {
	question string
	objects  []domain.DrawingObject

	guard   *domain.GuardResult
	summary *domain.SessionSummary
	mode    domain.QueryMode
	chunks  []domain.Chunk

	// answerText is set when a guard or the doc-only term check
	// finished the request before generation.
	answerText string
	done       bool
}

// Answer runs the pipeline end to end.
func (o *AnswerOrchestrator) Answer(ctx context.Context, question string, objects []domain.DrawingObject) (*domain.Answer, error) {
	st, err := o.runUntilRetrieve(ctx, question, objects)
	if err != nil {
		return nil, err
	}

	if st.done {
		return o.finalize(st), nil
	}

	text, err := o.generator.Complete(ctx, o.buildPrompt(st))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	st.answerText = strings.TrimSpace(text)
	return o.finalize(st), nil
}

// AnswerStream runs the same pipeline, delivering generated text as
// ordered increments. Zero or more chunk events are followed by
// exactly one done or error event, then the channel closes.
func (o *AnswerOrchestrator) AnswerStream(ctx context.Context, question string, objects []domain.DrawingObject) <-chan domain.StreamEvent {
	events := make(chan domain.StreamEvent, streamEventBuffer)

	go func() {
		defer close(events)

		st, err := o.runUntilRetrieve(ctx, question, objects)
		if err != nil {
			o.emit(ctx, events, domain.StreamEvent{Type: domain.StreamError, Message: err.Error()})
			return
		}

		if st.done {
			o.emit(ctx, events, domain.StreamEvent{Type: domain.StreamDone, Answer: o.finalize(st)})
			return
		}

		textCh, errCh := o.generator.Stream(ctx, o.buildPrompt(st))

		var full strings.Builder
		for chunk := range textCh {
			full.WriteString(chunk)
			if !o.emit(ctx, events, domain.StreamEvent{Type: domain.StreamChunk, Text: chunk}) {
				// Consumer is gone; drain the generator and stop.
				for range textCh {
				}
				<-errCh
				return
			}
		}
		if err := <-errCh; err != nil {
			o.emit(ctx, events, domain.StreamEvent{Type: domain.StreamError, Message: fmt.Sprintf("generate answer: %v", err)})
			return
		}

		st.answerText = strings.TrimSpace(full.String())
		o.emit(ctx, events, domain.StreamEvent{Type: domain.StreamDone, Answer: o.finalize(st)})
	}()

	return events
}

// runUntilRetrieve executes validate, guards, summarize, route and
// retrieve. Both delivery modes share it so their behaviour up to
// generation is identical.
func (o *AnswerOrchestrator) runUntilRetrieve(ctx context.Context, question string, objects []domain.DrawingObject) (*answerState, error) {
	st := &answerState{
		question: strings.TrimSpace(question),
		objects:  objects,
	}

	// validate
	if st.question == "" {
		return nil, fmt.Errorf("question is empty: %w", domain.ErrInvalidInput)
	}
	warnMalformedObjects(objects)

	// guards
	if result := o.chain.Evaluate(st.question, objects); result != nil {
		logger.Debug("Guard fired: %s", result.Type)
		st.guard = result
		st.answerText = guardAnswer(result)
		st.done = true
		return st, nil
	}

	// summarize
	st.summary = summarizeSession(objects)

	// route
	st.mode = routing.Mode(st.question)
	logger.Debug("Query mode: %s", st.mode)

	// retrieve (skipped entirely for json_only)
	if st.mode == domain.ModeJSONOnly {
		return st, nil
	}

	chunks, err := o.index.Query(ctx, st.question, o.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve excerpts: %w", err)
	}

	opts := []retrieval.Option{retrieval.WithPerPageCap(o.perPageCap)}
	if o.maxDistance > 0 {
		opts = append(opts, retrieval.WithMaxDistance(o.maxDistance))
	}
	st.chunks = retrieval.Postprocess(chunks, opts...)
	logger.Debug("Retrieved %d excerpts (%d after postprocessing)", len(chunks), len(st.chunks))

	if st.mode == domain.ModeDocOnly && !guards.ShouldUseRetrievedForDocOnly(st.question, st.chunks) {
		st.answerText = guards.DocOnlyNotFoundMessage
		st.done = true
	}

	return st, nil
}

func (o *AnswerOrchestrator) buildPrompt(st *answerState) string {
	if st.mode == domain.ModeDocOnly {
		return prompts.DocOnly(st.question, st.chunks)
	}
	return prompts.Hybrid(st.question, st.objects, st.summary, st.chunks)
}

// finalize assembles the answer, recomputing the summary for guard
// paths that never reached the summarize node.
func (o *AnswerOrchestrator) finalize(st *answerState) *domain.Answer {
	if st.summary == nil {
		st.summary = summarizeSession(st.objects)
	}
	return &domain.Answer{
		Text:    st.answerText,
		Mode:    st.mode,
		Summary: st.summary,
	}
}

// emit delivers one event, giving up when the context ends.
func (o *AnswerOrchestrator) emit(ctx context.Context, events chan<- domain.StreamEvent, ev domain.StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// guardAnswer maps a guard result to its fixed answer text.
func guardAnswer(result *domain.GuardResult) string {
	switch result.Type {
	case domain.GuardSmallTalk:
		return guards.SmallTalkResponse
	case domain.GuardMissingGeometry:
		return guards.MissingGeometryMessage(result.MissingLayers)
	case domain.GuardNeedsInput:
		return guards.NeedsInputMessage(result.MissingLayers)
	default:
		return ""
	}
}

// warnMalformedObjects logs session irregularities without failing
// the request.
func warnMalformedObjects(objects []domain.DrawingObject) {
	for i, obj := range objects {
		if obj.LayerName() == "" {
			logger.Warn("Session object %d has an empty layer name", i)
		}
		if obj.Geometry != nil && !obj.Geometry.HasCoordinates() {
			logger.Warn("Session object %d (%s) has geometry without usable coordinates", i, obj.LayerName())
		}
	}
}
