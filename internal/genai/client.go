package genai

import (
	"context"
	"fmt"

	"graminhealth/pkg"
)

// PersonaConfig fixes the behaviour of a conversation for its whole
// lifetime. There is no mid-conversation persona change.
type PersonaConfig struct {
	Instruction string
	Temperature float32
}

// Conversation is an opaque handle to one remote conversational session.
// Send performs a single request/response exchange; it is never retried
// at this layer.
type Conversation interface {
	Send(ctx context.Context, text string) (string, error)
}

// Client is the sole point of contact with the generative-AI backend.
// Both orchestrators depend on it and it depends on nothing above it.
type Client interface {
	// CreateConversation returns a handle bound to the given persona.
	CreateConversation(persona PersonaConfig) (Conversation, error)
	// GroundedQuery runs one location-grounded search. One shot: a single
	// completed result or a single failure, no streaming.
	GroundedQuery(ctx context.Context, intent string, coord pkg.Coordinate) (GroundedResult, error)
}

// GroundedResult is the raw outcome of a grounded query before any
// normalization: narrative text plus loosely-typed evidence chunks.
type GroundedResult struct {
	Text   string
	Chunks []EvidenceChunk
}

// RemoteError wraps any failure from the backend: transport errors, bad
// HTTP statuses and malformed response bodies all surface as this one type.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("genai: %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
