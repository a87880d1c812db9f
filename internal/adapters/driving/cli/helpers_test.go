package cli

import (
	"bytes"
	"context"
	"time"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

// mockSyncService returns canned outcomes.
type mockSyncService struct {
	outcome    *domain.SyncOutcome
	report     *domain.SyncStatusReport
	err        error
	syncCalls  int
	reingested []string
}

func (m *mockSyncService) Sync(context.Context, bool) (*domain.SyncOutcome, error) {
	m.syncCalls++
	return m.outcome, m.err
}

func (m *mockSyncService) ForceReingest(_ context.Context, sourceID string) (*domain.SyncOutcome, error) {
	m.reingested = append(m.reingested, sourceID)
	return m.outcome, m.err
}

func (m *mockSyncService) Status(context.Context) (*domain.SyncStatusReport, error) {
	return m.report, m.err
}

// mockAnswerService returns a canned answer.
type mockAnswerService struct {
	answer    *domain.Answer
	err       error
	questions []string
	objects   []domain.DrawingObject
}

func (m *mockAnswerService) Answer(_ context.Context, question string, objects []domain.DrawingObject) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	m.objects = objects
	return m.answer, m.err
}

func (m *mockAnswerService) AnswerStream(ctx context.Context, question string, objects []domain.DrawingObject) <-chan domain.StreamEvent {
	events := make(chan domain.StreamEvent, 4)
	answer, err := m.Answer(ctx, question, objects)
	if err != nil {
		events <- domain.StreamEvent{Type: domain.StreamError, Message: err.Error()}
	} else {
		for _, word := range []string{answer.Text} {
			events <- domain.StreamEvent{Type: domain.StreamChunk, Text: word}
		}
		events <- domain.StreamEvent{Type: domain.StreamDone, Answer: answer}
	}
	close(events)
	return events
}

// setupTestServices injects mocks and returns a cleanup func.
func setupTestServices(syncMock *mockSyncService, answerMock *mockAnswerService) func() {
	prevSync, prevAnswer, prevGen := syncService, answerService, hasGenerator
	if syncMock != nil {
		syncService = syncMock
	} else {
		syncService = &mockSyncService{outcome: &domain.SyncOutcome{}}
	}
	if answerMock != nil {
		answerService = answerMock
	} else {
		answerService = &mockAnswerService{answer: &domain.Answer{Text: "ok"}}
	}
	hasGenerator = true
	return func() {
		syncService, answerService, hasGenerator = prevSync, prevAnswer, prevGen
	}
}

// execute runs the root command with args and captures output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func sampleReport() *domain.SyncStatusReport {
	return &domain.SyncStatusReport{
		RegisteredDocuments: 2,
		TotalEntries:        5,
		IndexCount:          5,
		Documents: []domain.DocumentDetail{
			{
				SourceID:     "order.txt",
				Version:      3,
				EntryCount:   3,
				PageCount:    2,
				LastSyncedAt: time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
				ContentHash:  "abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789",
			},
			{
				SourceID:   "guidance.md",
				Version:    1,
				EntryCount: 2,
				PageCount:  1,
			},
		},
	}
}
