package genai

import (
	"context"
	"fmt"

	"graminhealth/pkg"
)

// MockClient is a canned-answer client for local development and tests.
// It never touches the network.
type MockClient struct {
	Prefix string
}

// NewMockClient constructs a MockClient; replies are tagged with prefix.
func NewMockClient(prefix string) *MockClient {
	return &MockClient{Prefix: prefix}
}

func (m *MockClient) CreateConversation(persona PersonaConfig) (Conversation, error) {
	return &mockConversation{prefix: m.Prefix}, nil
}

func (m *MockClient) GroundedQuery(ctx context.Context, intent string, coord pkg.Coordinate) (GroundedResult, error) {
	return GroundedResult{
		Text: fmt.Sprintf("[%s] Sample facilities near %.4f, %.4f.", m.Prefix, coord.Latitude, coord.Longitude),
		Chunks: []EvidenceChunk{
			{Maps: &MapsEvidence{Title: "District Hospital", URI: "https://maps.example/district-hospital"}},
			{Maps: &MapsEvidence{Title: "Primary Health Centre", URI: "https://maps.example/phc"}},
		},
	}, nil
}

type mockConversation struct {
	prefix string
	turns  int
}

func (m *mockConversation) Send(ctx context.Context, text string) (string, error) {
	m.turns++
	return fmt.Sprintf("[%s] Reply %d to: %s", m.prefix, m.turns, text), nil
}
