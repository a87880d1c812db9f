package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gen, err := NewGenerator(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return gen
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	_, err := NewGenerator(Config{})
	require.Error(t, err)
}

func TestComplete(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		fmt.Fprint(w, `{"choices":[{"message":{"content":"  The answer.  "}}]}`)
	})

	answer, err := gen.Complete(context.Background(), "What is a highway?")
	require.NoError(t, err)
	assert.Equal(t, "The answer.", answer)
}

func TestCompleteAPIError(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited","type":"rate_limit"}}`)
	})

	_, err := gen.Complete(context.Background(), "question")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCompleteNoChoices(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	})

	_, err := gen.Complete(context.Background(), "question")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestStream(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"The \"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"answer.\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	textCh, errCh := gen.Stream(context.Background(), "question")

	var got string
	for chunk := range textCh {
		got += chunk
	}
	assert.Equal(t, "The answer.", got)
	assert.NoError(t, <-errCh)
}

func TestStreamServerError(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "boom")
	})

	textCh, errCh := gen.Stream(context.Background(), "question")

	for range textCh {
		t.Fatal("no chunks expected")
	}
	err := <-errCh
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}
