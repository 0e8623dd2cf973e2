package chat

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"graminhealth/internal/genai"
	"graminhealth/pkg"
)

// State is the lifecycle phase of a session.
type State string

const (
	// StateUninitialized: Start has not been called yet.
	StateUninitialized State = "uninitialized"
	// StateReady: a remote handle is live and no send is in flight.
	StateReady State = "ready"
	// StateSending: exactly one send is in flight; further sends are
	// rejected, not queued.
	StateSending State = "sending"
	// StateDisconnected: the remote handle could not be created. Sends
	// yield the connection-trouble error turn without a network call.
	StateDisconnected State = "disconnected"
)

// welcomeTurnID is fixed so the welcome turn is recognizable in any
// transcript dump.
const welcomeTurnID = "welcome"

// Session owns one ordered transcript and routes user input through a live
// remote conversational session. The transcript is append-only; turns are
// immutable once appended.
type Session struct {
	mu         sync.Mutex
	client     genai.Client
	conv       genai.Conversation
	state      State
	transcript []pkg.ConversationTurn
	userTurns  int
	messageCap int
	logger     *log.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithMessageCap limits how many user turns the backend will be asked to
// answer. Zero disables the cap.
func WithMessageCap(n int) Option {
	return func(s *Session) { s.messageCap = n }
}

// WithLogger replaces the default diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession constructs a session bound to the given backend client. The
// session is unusable until Start is called.
func NewSession(client genai.Client, opts ...Option) *Session {
	s := &Session{
		client: client,
		state:  StateUninitialized,
		logger: log.New(log.Writer(), "[CHAT] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start requests a new remote conversation configured with the fixed
// persona and synthesizes the welcome turn as transcript[0]. Called exactly
// once per session; repeated calls are no-ops. A client that cannot be
// constructed leaves the session disconnected rather than failing: the
// trouble surfaces as an error turn on the first send.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUninitialized {
		return
	}
	s.transcript = append(s.transcript, pkg.ConversationTurn{
		ID:   welcomeTurnID,
		Role: pkg.RoleAssistant,
		Text: WelcomeMessage,
	})
	if s.client == nil {
		s.state = StateDisconnected
		s.logger.Printf("session start without backend client, entering disconnected state")
		return
	}
	conv, err := s.client.CreateConversation(genai.PersonaConfig{
		Instruction: PersonaInstruction,
		Temperature: PersonaTemperature,
	})
	if err != nil {
		s.state = StateDisconnected
		s.logger.Printf("create conversation failed: %v", err)
		return
	}
	s.conv = conv
	s.state = StateReady
}

// Send routes one user message through the session. It is a no-op — nil
// return, zero turns appended — when the text is empty or whitespace-only,
// when Start has not run, or while another send is in flight. Otherwise it
// appends the user turn verbatim, performs the exchange, appends exactly
// one assistant turn (success, fallback or error-flagged) and returns the
// turns appended by this call.
func (s *Session) Send(ctx context.Context, text string) []pkg.ConversationTurn {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	s.mu.Lock()
	switch s.state {
	case StateUninitialized, StateSending:
		s.mu.Unlock()
		return nil
	case StateDisconnected:
		// No handle: record the question and answer with the fixed error
		// turn, skipping the network entirely.
		appended := s.appendExchangeLocked(text, pkg.ConversationTurn{
			ID:      uuid.NewString(),
			Role:    pkg.RoleAssistant,
			Text:    ConnectionTroubleMessage,
			IsError: true,
		})
		s.mu.Unlock()
		return appended
	}

	if s.messageCap > 0 && s.userTurns >= s.messageCap {
		capTurn := pkg.ConversationTurn{
			ID:   uuid.NewString(),
			Role: pkg.RoleAssistant,
			Text: CapMessage,
		}
		s.transcript = append(s.transcript, capTurn)
		s.mu.Unlock()
		return []pkg.ConversationTurn{capTurn}
	}

	userTurn := pkg.ConversationTurn{
		ID:   uuid.NewString(),
		Role: pkg.RoleUser,
		Text: text,
	}
	s.transcript = append(s.transcript, userTurn)
	s.userTurns++
	s.state = StateSending
	conv := s.conv
	s.mu.Unlock()

	reply, err := conv.Send(ctx, text)

	assistantTurn := pkg.ConversationTurn{
		ID:   uuid.NewString(),
		Role: pkg.RoleAssistant,
	}
	if err != nil {
		s.logger.Printf("send failed: %v", err)
		assistantTurn.Text = ConnectionTroubleMessage
		assistantTurn.IsError = true
	} else if reply == "" {
		assistantTurn.Text = FallbackMessage
	} else {
		assistantTurn.Text = reply
	}

	s.mu.Lock()
	s.transcript = append(s.transcript, assistantTurn)
	// Latch release is unconditional: the session returns to ready on
	// success and failure alike.
	s.state = StateReady
	s.mu.Unlock()

	return []pkg.ConversationTurn{userTurn, assistantTurn}
}

// appendExchangeLocked appends a user turn plus the given assistant turn.
// Caller must hold mu.
func (s *Session) appendExchangeLocked(text string, assistant pkg.ConversationTurn) []pkg.ConversationTurn {
	userTurn := pkg.ConversationTurn{
		ID:   uuid.NewString(),
		Role: pkg.RoleUser,
		Text: text,
	}
	s.transcript = append(s.transcript, userTurn, assistant)
	s.userTurns++
	return []pkg.ConversationTurn{userTurn, assistant}
}

// Transcript returns a copy of the ordered transcript.
func (s *Session) Transcript() []pkg.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]pkg.ConversationTurn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// State reports the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
