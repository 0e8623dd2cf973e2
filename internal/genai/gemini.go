package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"graminhealth/pkg"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient talks to the Generative Language REST API. Conversations
// keep their history client-side; every Send replays the accumulated
// contents together with the persona's system instruction.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// GeminiOption tweaks a GeminiClient at construction time.
type GeminiOption func(*GeminiClient)

// WithGeminiModel overrides the default model name.
func WithGeminiModel(model string) GeminiOption {
	return func(c *GeminiClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithGeminiBaseURL points the client at a different endpoint, mainly for
// tests against httptest servers.
func WithGeminiBaseURL(url string) GeminiOption {
	return func(c *GeminiClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithGeminiTimeout bounds each request. A timeout surfaces as an ordinary
// RemoteError, not a distinct cancellation path.
func WithGeminiTimeout(d time.Duration) GeminiOption {
	return func(c *GeminiClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// NewGeminiClient constructs a Gemini-backed client. The API key is
// required; construction fails without one so callers can degrade to a
// disconnected state instead of issuing doomed requests.
func NewGeminiClient(apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("genai: missing Gemini API key")
	}
	c := &GeminiClient{
		apiKey:  apiKey,
		model:   defaultGeminiModel,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateConversation returns a handle whose persona is fixed for its
// lifetime. No network call happens until the first Send.
func (c *GeminiClient) CreateConversation(persona PersonaConfig) (Conversation, error) {
	return &geminiConversation{client: c, persona: persona}, nil
}

// GroundedQuery runs one generateContent call with the Google Maps
// grounding tool enabled and the coordinate as retrieval hint.
func (c *GeminiClient) GroundedQuery(ctx context.Context, intent string, coord pkg.Coordinate) (GroundedResult, error) {
	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: intent}}}},
		Tools:    []geminiTool{{GoogleMaps: &struct{}{}}},
		ToolConfig: &geminiToolConfig{
			RetrievalConfig: geminiRetrievalConfig{
				LatLng: geminiLatLng{Latitude: coord.Latitude, Longitude: coord.Longitude},
			},
		},
	}
	resp, err := c.generate(ctx, req)
	if err != nil {
		return GroundedResult{}, &RemoteError{Op: "grounded query", Err: err}
	}
	return GroundedResult{
		Text:   resp.text(),
		Chunks: resp.groundingChunks(),
	}, nil
}

func (c *GeminiClient) generate(ctx context.Context, reqBody geminiRequest) (*geminiResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	return &out, nil
}

// geminiConversation accumulates alternating user/model contents. The chat
// manager serializes sends, so no locking is needed here.
type geminiConversation struct {
	client  *GeminiClient
	persona PersonaConfig
	history []geminiContent
}

func (g *geminiConversation) Send(ctx context.Context, text string) (string, error) {
	contents := append(append([]geminiContent(nil), g.history...),
		geminiContent{Role: "user", Parts: []geminiPart{{Text: text}}})
	req := geminiRequest{
		Contents: contents,
		GenerationConfig: &geminiGenerationConfig{
			Temperature: g.persona.Temperature,
		},
	}
	if g.persona.Instruction != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: g.persona.Instruction}}}
	}
	resp, err := g.client.generate(ctx, req)
	if err != nil {
		return "", &RemoteError{Op: "send message", Err: err}
	}
	reply := resp.text()
	// Only commit the exchange to history once it succeeded, so a failed
	// turn is not replayed on the next send.
	g.history = append(contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: reply}}})
	return reply, nil
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"system_instruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	ToolConfig        *geminiToolConfig       `json:"toolConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature float32 `json:"temperature"`
}

type geminiTool struct {
	GoogleMaps *struct{} `json:"googleMaps,omitempty"`
}

type geminiToolConfig struct {
	RetrievalConfig geminiRetrievalConfig `json:"retrievalConfig"`
}

type geminiRetrievalConfig struct {
	LatLng geminiLatLng `json:"latLng"`
}

type geminiLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []EvidenceChunk `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

// text joins the parts of the first candidate. An empty or absent
// candidate yields "", which callers substitute with their own fallback.
func (r *geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range r.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}

func (r *geminiResponse) groundingChunks() []EvidenceChunk {
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	return r.Candidates[0].GroundingMetadata.GroundingChunks
}
