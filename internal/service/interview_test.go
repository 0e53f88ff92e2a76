package service

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/interviewlab/coach/internal/adapter/llm"
	"github.com/interviewlab/coach/internal/config"
	"github.com/interviewlab/coach/internal/domain"
	"github.com/interviewlab/coach/internal/questionbank"
	"github.com/interviewlab/coach/internal/store"
	"github.com/interviewlab/coach/policy"
	"github.com/interviewlab/coach/tests/helpers"
)

// scriptedLLM returns canned responses in order, repeating the last one, and
// counts every call. Setting err makes every call fail.
type scriptedLLM struct {
	responses []string
	calls     int
	err       error
}

func (s *scriptedLLM) CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.calls++
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return &llm.ChatCompletionResponse{
		Choices: []llm.Choice{
			{Message: &llm.ChatMessage{Role: "assistant", Content: s.responses[idx]}},
		},
	}, nil
}

func (s *scriptedLLM) ListModels(ctx context.Context) ([]llm.Model, error) {
	return []llm.Model{{ID: "scripted"}}, nil
}

const testBankYAML = `questions:
  - topic: Go
    company: Acme
    year: "2024"
    question: Explain how a Go map grows when it runs out of buckets.
  - topic: Go
    company: Initech
    year: "2023"
    question: What happens when you close a channel that still has buffered values?
`

func newTestBank(t *testing.T) *questionbank.Bank {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.yaml")
	if err := os.WriteFile(path, []byte(testBankYAML), 0o644); err != nil {
		t.Fatalf("failed to write bank file: %v", err)
	}
	bank, err := questionbank.Load(path)
	if err != nil {
		t.Fatalf("failed to load bank: %v", err)
	}
	return bank
}

func newTestService(t *testing.T, client llm.LLMClient, bankWeight float64) *Service {
	t.Helper()

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to build policy engine: %v", err)
	}

	cfg := &config.Config{
		LLMModel:           "test-model",
		QuestionBankWeight: bankWeight,
		HistoryWindow:      4,
	}

	svc := New(helpers.NewTestSQLiteStore(t), client, newTestBank(t), cfg, engine)
	svc.rng = rand.New(rand.NewSource(1))
	svc.now = func() time.Time { return time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateSessionOpeningReferencesTopic(t *testing.T) {
	stub := &scriptedLLM{responses: []string{"What is a goroutine and how is it scheduled?"}}
	svc := newTestService(t, stub, 0)

	session, opening, err := svc.CreateSession(context.Background(), "u1", domain.CreateSessionRequest{Topic: "Go"})
	require.NoError(t, err)

	require.Equal(t, domain.SessionStateAwaitingCandidate, session.State)
	require.Contains(t, opening.Content, "Go")
	require.Contains(t, opening.Content, "What is a goroutine")
	require.Equal(t, domain.SpeakerInterviewer, opening.Speaker)
	require.Equal(t, 1, stub.calls)

	turns, err := svc.store.GetTurns(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.Len(t, turns, 1)
}

func TestRecordAnswerFollowUp(t *testing.T) {
	stub := &scriptedLLM{responses: []string{
		"What is a goroutine?",
		`{"score": 45, "feedback": "Too shallow.", "reference": "Mention the scheduler.", "follow_up": "Why three, not two?"}`,
	}}
	svc := newTestService(t, stub, 0)

	session, _, err := svc.CreateSession(context.Background(), "u1", domain.CreateSessionRequest{Topic: "Go"})
	require.NoError(t, err)

	resp, err := svc.RecordAnswer(context.Background(), "u1", session.SessionID, domain.AnswerRequest{Content: "It is a thread, I think there are three kinds."})
	require.NoError(t, err)
	require.False(t, resp.Transient)
	require.Contains(t, resp.Utterance, "Too shallow.")
	require.Contains(t, resp.Utterance, TurnSeparator)
	require.Contains(t, resp.Utterance, "Why three, not two?")

	turns, err := svc.store.GetTurns(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.Len(t, turns, 3)

	refreshed, err := svc.store.GetSession(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.Equal(t, domain.SessionStateAwaitingCandidate, refreshed.State)
}

func TestRecordAnswerDrawsBankQuestion(t *testing.T) {
	// Weight 1 forces every draw to come from the bank, so the only
	// generator call is the evaluation itself.
	stub := &scriptedLLM{responses: []string{
		`{"score": 80, "feedback": "Solid answer.", "reference": "", "follow_up": null}`,
	}}
	svc := newTestService(t, stub, 1)

	session, opening, err := svc.CreateSession(context.Background(), "u1", domain.CreateSessionRequest{Topic: "Go"})
	require.NoError(t, err)
	require.Equal(t, 0, stub.calls)
	require.Contains(t, opening.Content, "[")

	resp, err := svc.RecordAnswer(context.Background(), "u1", session.SessionID, domain.AnswerRequest{Content: "Maps double their bucket count and migrate incrementally."})
	require.NoError(t, err)
	require.Equal(t, 1, stub.calls)
	require.Contains(t, resp.Utterance, "Solid answer.")
	require.Contains(t, resp.Utterance, TurnSeparator)

	// The opening consumed one bank question; the reply must carry the
	// other one, not a repeat.
	firstBracket := opening.Content[strings.Index(opening.Content, "["):]
	require.NotContains(t, resp.Utterance, firstBracket)
	require.Contains(t, resp.Utterance, "[")
}

func TestRecordAnswerGeneratesQuestionWhenWeightZero(t *testing.T) {
	stub := &scriptedLLM{responses: []string{
		"What is a goroutine?",
		`{"score": 70, "feedback": "Decent.", "reference": "", "follow_up": null}`,
		"Describe how select behaves with two ready channels.",
	}}
	svc := newTestService(t, stub, 0)

	session, _, err := svc.CreateSession(context.Background(), "u1", domain.CreateSessionRequest{Topic: "Go"})
	require.NoError(t, err)

	resp, err := svc.RecordAnswer(context.Background(), "u1", session.SessionID, domain.AnswerRequest{Content: "A lightweight thread."})
	require.NoError(t, err)
	require.Equal(t, 3, stub.calls)
	require.Contains(t, resp.Utterance, "Decent.")
	require.Contains(t, resp.Utterance, "select behaves")
}

func TestRecordAnswerMalformedEvaluation(t *testing.T) {
	stub := &scriptedLLM{responses: []string{
		"What is a goroutine?",
		"The candidate seems fine to me, no JSON today.",
	}}
	svc := newTestService(t, stub, 0)

	session, _, err := svc.CreateSession(context.Background(), "u1", domain.CreateSessionRequest{Topic: "Go"})
	require.NoError(t, err)

	resp, err := svc.RecordAnswer(context.Background(), "u1", session.SessionID, domain.AnswerRequest{Content: "A lightweight thread."})
	require.NoError(t, err)
	require.False(t, resp.Transient)
	require.Equal(t, continueUtterance, resp.Utterance)

	// Both the answer and the generic continuation are on the transcript.
	turns, err := svc.store.GetTurns(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.Len(t, turns, 3)
}

func TestRecordAnswerGeneratorOutageLeavesTranscriptUntouched(t *testing.T) {
	stub := &scriptedLLM{responses: []string{"What is a goroutine?"}}
	svc := newTestService(t, stub, 0)

	session, _, err := svc.CreateSession(context.Background(), "u1", domain.CreateSessionRequest{Topic: "Go"})
	require.NoError(t, err)

	stub.err = errors.New("connection timed out")
	resp, err := svc.RecordAnswer(context.Background(), "u1", session.SessionID, domain.AnswerRequest{Content: "A lightweight thread."})
	require.NoError(t, err)
	require.True(t, resp.Transient)
	require.Nil(t, resp.Turn)

	turns, err := svc.store.GetTurns(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.Len(t, turns, 1)

	refreshed, err := svc.store.GetSession(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.Equal(t, domain.SessionStateAwaitingCandidate, refreshed.State)

	// The session stays usable: the same answer goes through on retry.
	stub.err = nil
	stub.responses = append(stub.responses, `{"score": 60, "feedback": "Okay.", "reference": "", "follow_up": "Go on."}`)
	resp, err = svc.RecordAnswer(context.Background(), "u1", session.SessionID, domain.AnswerRequest{Content: "A lightweight thread."})
	require.NoError(t, err)
	require.False(t, resp.Transient)
}

func TestFinishInterviewIdempotent(t *testing.T) {
	stub := &scriptedLLM{responses: []string{
		"What is a goroutine?",
		`{"total_score": 72, "summary": "Knows the surface, misses the depths.", "strengths": ["clear speech"], "weaknesses": ["scheduler internals"], "suggestions": ["read the runtime source"]}`,
	}}
	svc := newTestService(t, stub, 0)

	session, _, err := svc.CreateSession(context.Background(), "u1", domain.CreateSessionRequest{Topic: "Go"})
	require.NoError(t, err)

	report, err := svc.FinishInterview(context.Background(), "u1", session.SessionID)
	require.NoError(t, err)
	require.Equal(t, 72, report.TotalScore)
	require.Equal(t, []string{"scheduler internals"}, report.Weaknesses)
	callsAfterFirst := stub.calls

	again, err := svc.FinishInterview(context.Background(), "u1", session.SessionID)
	require.NoError(t, err)
	require.Equal(t, report.TotalScore, again.TotalScore)
	require.Equal(t, report.Summary, again.Summary)
	require.Equal(t, callsAfterFirst, stub.calls, "second report request must not touch the generator")

	refreshed, err := svc.store.GetSession(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.Equal(t, domain.SessionStateConcluded, refreshed.State)

	// Concluded sessions accept no more answers.
	_, err = svc.RecordAnswer(context.Background(), "u1", session.SessionID, domain.AnswerRequest{Content: "One more thing."})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestFinishInterviewPlaceholderIsNotStored(t *testing.T) {
	stub := &scriptedLLM{responses: []string{
		"What is a goroutine?",
		"Sorry, I cannot produce a report right now.",
	}}
	svc := newTestService(t, stub, 0)

	session, _, err := svc.CreateSession(context.Background(), "u1", domain.CreateSessionRequest{Topic: "Go"})
	require.NoError(t, err)

	report, err := svc.FinishInterview(context.Background(), "u1", session.SessionID)
	require.NoError(t, err)
	require.Contains(t, report.Summary, "transcript is safe")

	// Nothing was pinned: a later request can still generate the real one.
	_, err = svc.store.GetReport(context.Background(), session.SessionID)
	require.ErrorIs(t, err, store.ErrNotFound)

	refreshed, err := svc.store.GetSession(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.NotEqual(t, domain.SessionStateConcluded, refreshed.State)
}

func TestSessionAccessBlockedForOtherUsers(t *testing.T) {
	stub := &scriptedLLM{responses: []string{"What is a goroutine?"}}
	svc := newTestService(t, stub, 0)

	session, _, err := svc.CreateSession(context.Background(), "u1", domain.CreateSessionRequest{Topic: "Go"})
	require.NoError(t, err)

	_, _, err = svc.GetSession(context.Background(), "u2", session.SessionID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.RecordAnswer(context.Background(), "u2", session.SessionID, domain.AnswerRequest{Content: "Hello."})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreateSessionValidation(t *testing.T) {
	svc := newTestService(t, &scriptedLLM{responses: []string{"q"}}, 0)

	_, _, err := svc.CreateSession(context.Background(), "u1", domain.CreateSessionRequest{})
	require.Error(t, err)

	_, _, err = svc.CreateSession(context.Background(), "u1", domain.CreateSessionRequest{Mode: domain.ModeJobDescription})
	require.Error(t, err)

	_, _, err = svc.CreateSession(context.Background(), "", domain.CreateSessionRequest{Topic: "Go"})
	require.Error(t, err)
}

func TestScoreClamping(t *testing.T) {
	stub := &scriptedLLM{responses: []string{
		"What is a goroutine?",
		`{"score": 150, "feedback": "Suspiciously good.", "reference": "", "follow_up": "Prove it."}`,
	}}
	svc := newTestService(t, stub, 0)

	session, _, err := svc.CreateSession(context.Background(), "u1", domain.CreateSessionRequest{Topic: "Go"})
	require.NoError(t, err)

	// The out-of-range score must not break the turn; the reply still lands.
	resp, err := svc.RecordAnswer(context.Background(), "u1", session.SessionID, domain.AnswerRequest{Content: "Everything."})
	require.NoError(t, err)
	require.Contains(t, resp.Utterance, "Suspiciously good.")

	require.Equal(t, 100, clampScore(150))
	require.Equal(t, 0, clampScore(-3))
	require.Equal(t, 88, clampScore(88))
}
