package llm

import (
	"log"
	"os"
	"time"
)

const (
	// EnvCoachMode is the environment variable name for mode selection.
	EnvCoachMode = "COACH_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewLLMClient creates an LLM client based on the COACH_MODE environment
// variable. If COACH_MODE=MOCK, returns a MockClient; otherwise returns a
// real Client.
func NewLLMClient(baseURL, apiKey string, timeout time.Duration) LLMClient {
	mode := os.Getenv(EnvCoachMode)

	if mode == ModeMock {
		log.Println("COACH_MODE=MOCK detected, using mock LLM client")
		return NewMockClient()
	}

	return NewClient(baseURL, apiKey, timeout)
}
