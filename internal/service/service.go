// Package service holds the business logic of the coach: running interview
// sessions, writing study plans and roadmaps, assessing progress, and reading
// job postings.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/interviewlab/coach/internal/adapter/llm"
	"github.com/interviewlab/coach/internal/config"
	"github.com/interviewlab/coach/internal/domain"
	"github.com/interviewlab/coach/internal/extract"
	"github.com/interviewlab/coach/internal/questionbank"
	"github.com/interviewlab/coach/internal/store"
	"github.com/interviewlab/coach/policy"
)

// ErrForbidden is returned when the session policy blocks an action.
var ErrForbidden = errors.New("forbidden by policy")

// ErrInvalidState is returned when a session is not in the state an
// operation requires.
var ErrInvalidState = errors.New("invalid session state")

// ErrCuratedDoc is returned when a delete targets a doc that ships with the
// service.
var ErrCuratedDoc = errors.New("curated docs cannot be deleted")

type Service struct {
	store        store.Store
	llmClient    llm.LLMClient
	bank         *questionbank.Bank
	config       *config.Config
	policyEngine *policy.Engine

	rng *rand.Rand
	now func() time.Time

	// Researched library notes live in memory only, per user. They are
	// scratch reading material, not records worth a table.
	libMu      sync.Mutex
	researched map[string][]domain.LibraryDoc
}

func New(store store.Store, llmClient llm.LLMClient, bank *questionbank.Bank, cfg *config.Config, policyEngine *policy.Engine) *Service {
	return &Service{
		store:        store,
		llmClient:    llmClient,
		bank:         bank,
		config:       cfg,
		policyEngine: policyEngine,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
		researched:   make(map[string][]domain.LibraryDoc),
	}
}

// generate runs one chat completion and returns the raw text of the first
// choice. Temperature and frequency penalty are fixed: warm enough to vary
// phrasing, penalized enough to stop the interviewer repeating itself.
func (s *Service) generate(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	temperature := 0.7
	frequencyPenalty := 0.5

	resp, err := s.llmClient.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model:            s.config.LLMModel,
		Messages:         messages,
		Temperature:      &temperature,
		FrequencyPenalty: &frequencyPenalty,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// authorize evaluates the session policy for an action against a session.
func (s *Service) authorize(ctx context.Context, action, userID, ownerID, sessionState string) error {
	if s.policyEngine == nil {
		return nil
	}
	decision, reason, err := s.policyEngine.Evaluate(ctx, map[string]interface{}{
		"action":        action,
		"user_id":       userID,
		"owner_id":      ownerID,
		"session_state": sessionState,
	})
	if err != nil {
		return fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if decision == "block" {
		if reason != "" {
			return fmt.Errorf("%w: %s (%s)", ErrForbidden, action, reason)
		}
		return fmt.Errorf("%w: %s", ErrForbidden, action)
	}
	return nil
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// Payload schemas for every structured generator call. The extractor handles
// prose and fences around the JSON; anything it cannot validate degrades at
// the call site.
var evaluationSchema = extract.Schema{
	Name: "evaluation",
	Fields: []extract.Field{
		{Name: "score", Kind: extract.KindNumber, Required: true},
		{Name: "feedback", Kind: extract.KindString, Required: true},
		{Name: "reference", Kind: extract.KindString, Default: ""},
		{Name: "follow_up", Kind: extract.KindString, Default: ""},
	},
}

var reportSchema = extract.Schema{
	Name: "final_report",
	Fields: []extract.Field{
		{Name: "total_score", Kind: extract.KindNumber, Required: true},
		{Name: "summary", Kind: extract.KindString, Required: true},
		{Name: "strengths", Kind: extract.KindStringList, Required: true},
		{Name: "weaknesses", Kind: extract.KindStringList, Required: true},
		{Name: "suggestions", Kind: extract.KindStringList, Required: true},
	},
}

var planSchema = extract.Schema{
	Name: "daily_plan",
	Fields: []extract.Field{
		{Name: "encouragement", Kind: extract.KindString, Required: true},
		{Name: "tasks", Kind: extract.KindList, Required: true},
	},
}

var roadmapSchema = extract.Schema{
	Name: "roadmap",
	Fields: []extract.Field{
		{Name: "phases", Kind: extract.KindList, Required: true},
	},
}

var progressSchema = extract.Schema{
	Name: "progress",
	Fields: []extract.Field{
		{Name: "radar", Kind: extract.KindObject, Required: true},
		{Name: "trend_analysis", Kind: extract.KindString, Required: true},
		{Name: "key_suggestion", Kind: extract.KindString, Required: true},
	},
}

var jdAnalysisSchema = extract.Schema{
	Name: "jd_analysis",
	Fields: []extract.Field{
		{Name: "estimated_salary", Kind: extract.KindString, Required: true},
		{Name: "tech_stack_keywords", Kind: extract.KindStringList, Required: true},
		{Name: "red_flags", Kind: extract.KindStringList, Default: []string{}},
		{Name: "resume_tips", Kind: extract.KindStringList, Default: []string{}},
		{Name: "difficulty_score", Kind: extract.KindNumber, Required: true},
		{Name: "insider_comment", Kind: extract.KindString, Default: ""},
	},
}
