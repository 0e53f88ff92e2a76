package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MockClient is a mock implementation of LLMClient for local runs without an
// API key. Responses are keyed off the request text so every flow stays
// exercisable end to end.
type MockClient struct{}

// NewMockClient creates a new mock LLM client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements LLMClient interface.
var _ LLMClient = (*MockClient)(nil)

// CreateChatCompletion returns a canned response matching the request shape.
func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	responseContent := m.generateMockResponse(req)

	return &ChatCompletionResponse{
		ID:      fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []Choice{
			{
				Index: 0,
				Message: &ChatMessage{
					Role:    "assistant",
					Content: responseContent,
				},
				FinishReason: "stop",
			},
		},
		Usage: &Usage{
			PromptTokens:     m.estimateTokens(req),
			CompletionTokens: len(responseContent) / 4,
			TotalTokens:      m.estimateTokens(req) + len(responseContent)/4,
		},
		SystemFingerprint: "mock-fp",
	}, nil
}

// ListModels returns a single mock model.
func (m *MockClient) ListModels(ctx context.Context) ([]Model, error) {
	return []Model{
		{ID: "mock-model", Object: "model", Created: time.Now().Unix(), OwnedBy: "mock"},
	}, nil
}

func (m *MockClient) generateMockResponse(req *ChatCompletionRequest) string {
	var all strings.Builder
	for _, msg := range req.Messages {
		all.WriteString(msg.Content)
		all.WriteString("\n")
	}
	text := all.String()

	switch {
	case strings.Contains(text, "Evaluate the candidate's last answer"):
		return `{"score": 65, "feedback": "Covers the basics but skips the failure modes.", "reference": "Name the states involved and what breaks without them.", "follow_up": "What happens if the final acknowledgement is lost?"}`
	case strings.Contains(text, "Write the report."):
		return `{"total_score": 68, "summary": "Solid fundamentals, needs more depth under pressure.", "strengths": ["clear structure", "honest about unknowns"], "weaknesses": ["thin on edge cases"], "suggestions": ["rehearse whiteboard walkthroughs"]}`
	case strings.Contains(text, "Generate today's plan."):
		return `{"encouragement": "Today we close the gap on edge cases.", "tasks": [{"topic": "Computer Networks", "description": "Redo the handshake question, covering loss scenarios.", "estimated_time": "45min"}, {"topic": "System Design", "description": "Sketch a rate limiter from memory.", "estimated_time": "30min"}]}`
	case strings.Contains(text, "Generate the roadmap."):
		return `{"phases": [{"phase_name": "Foundations", "duration": "7 days", "goals": ["refresh CS basics"], "key_topics": ["networks", "OS"]}, {"phase_name": "Mock interviews", "duration": "7 days", "goals": ["daily practice"], "key_topics": ["system design"]}]}`
	case strings.Contains(text, "Assess the student."):
		return `{"radar": {"fundamentals": 70, "algorithms": 60, "engineering": 65, "communication": 72, "role_fit": 64}, "trend_analysis": "Scores trend upward across recent sessions.", "key_suggestion": "Drill algorithm questions under a timer."}`
	case strings.Contains(text, "Write a deep technical note on:"):
		topic := strings.TrimSpace(text[strings.Index(text, "Write a deep technical note on:")+len("Write a deep technical note on:"):])
		if i := strings.IndexByte(topic, '\n'); i >= 0 {
			topic = topic[:i]
		}
		return fmt.Sprintf("# %s\n\n## Core Concept\nA mock summary of %s.\n\n## Mechanics\nStep by step walkthrough.\n\n## Pros and Cons\n- fast\n- operationally heavy\n\n## Interview Q&A\nQ: When would you reach for this?\nA: When the constraints demand it.", topic, topic)
	case strings.Contains(text, "Analyze this job description"):
		return `{"estimated_salary": "30k-55k/month", "tech_stack_keywords": ["Go", "MySQL", "Redis"], "red_flags": [], "resume_tips": ["lead with scale numbers", "name the stack explicitly", "show ownership"], "difficulty_score": 62, "insider_comment": "Core team, worth a serious attempt."}`
	default:
		return "How would you design a health-check protocol for a fleet of stateless services?"
	}
}

func (m *MockClient) estimateTokens(req *ChatCompletionRequest) int {
	total := 0
	for _, msg := range req.Messages {
		total += len(msg.Content) / 4
	}
	return total
}
