package genai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"graminhealth/pkg"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient backs conversations with the OpenAI chat completion API.
// It has no location-grounding capability, so GroundedQuery always fails;
// deployments that need the locator must run the Gemini provider.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient constructs an OpenAI-backed client. The API key is
// required, the model falls back to a modern small default.
func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("genai: missing OpenAI API key")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{client: openai.NewClient(apiKey), model: model}, nil
}

// CreateConversation returns a handle that replays the persona as a system
// message plus the accumulated history on every exchange.
func (c *OpenAIClient) CreateConversation(persona PersonaConfig) (Conversation, error) {
	conv := &openaiConversation{client: c, persona: persona}
	if persona.Instruction != "" {
		conv.history = append(conv.history, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: persona.Instruction,
		})
	}
	return conv, nil
}

// GroundedQuery is unsupported on this provider.
func (c *OpenAIClient) GroundedQuery(ctx context.Context, intent string, coord pkg.Coordinate) (GroundedResult, error) {
	return GroundedResult{}, &RemoteError{Op: "grounded query", Err: errors.New("openai provider cannot ground on location")}
}

type openaiConversation struct {
	client  *OpenAIClient
	persona PersonaConfig
	history []openai.ChatCompletionMessage
}

func (o *openaiConversation) Send(ctx context.Context, text string) (string, error) {
	messages := append(append([]openai.ChatCompletionMessage(nil), o.history...),
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text})
	resp, err := o.client.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.client.model,
		Messages:    messages,
		Temperature: o.persona.Temperature,
	})
	if err != nil {
		return "", &RemoteError{Op: "send message", Err: err}
	}
	var reply string
	if len(resp.Choices) > 0 {
		reply = resp.Choices[0].Message.Content
	}
	o.history = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: reply,
	})
	return reply, nil
}
