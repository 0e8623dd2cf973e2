package genai

import (
	"context"
	"fmt"
	"time"

	"graminhealth/pkg"
)

// ProviderConfig selects and parametrizes a backend provider.
type ProviderConfig struct {
	Provider string // "gemini", "openai" or "mock"
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New builds the Client named by cfg.Provider.
func New(cfg ProviderConfig) (Client, error) {
	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiClient(cfg.APIKey,
			WithGeminiModel(cfg.Model),
			WithGeminiBaseURL(cfg.BaseURL),
			WithGeminiTimeout(cfg.Timeout))
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model)
	case "mock":
		return NewMockClient("GraminHealth"), nil
	default:
		return nil, fmt.Errorf("genai: unsupported provider %q", cfg.Provider)
	}
}

// Unavailable is a Client whose every operation fails with the recorded
// cause. It stands in when no real provider could be constructed, so the
// orchestrators degrade to their error states instead of dereferencing a
// nil client.
type Unavailable struct {
	Reason error
}

func (u Unavailable) CreateConversation(PersonaConfig) (Conversation, error) {
	return nil, &RemoteError{Op: "create conversation", Err: u.Reason}
}

func (u Unavailable) GroundedQuery(context.Context, string, pkg.Coordinate) (GroundedResult, error) {
	return GroundedResult{}, &RemoteError{Op: "grounded query", Err: u.Reason}
}
