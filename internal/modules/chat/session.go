// README: A chat session owns one provider-side conversation and serialises its turns.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"roamly/internal/ai"
	"roamly/internal/types"
)

// Session is an explicitly owned conversation handle. All methods are safe
// for concurrent use; turns on one session never overlap.
type Session struct {
	id       string
	owner    string
	provider ai.ChatProvider
	log      zerolog.Logger
	now      func() time.Time

	mu    sync.Mutex
	state State
	chat  ai.ChatSession
	bias  *types.Coordinates
}

// NewSession returns an Uninitialized session. The first Send initializes it
// without location bias unless Initialize ran first.
func NewSession(id, owner string, provider ai.ChatProvider, log zerolog.Logger) *Session {
	return &Session{
		id:       id,
		owner:    owner,
		provider: provider,
		log:      log.With().Str("session_id", id).Logger(),
		now:      time.Now,
		state:    StateUninitialized,
	}
}

func (s *Session) ID() string    { return s.id }
func (s *Session) Owner() string { return s.owner }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Bias returns a copy of the coordinates the active chat was created with,
// or nil for an unbiased or uninitialized session.
func (s *Session) Bias() *types.Coordinates {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bias == nil {
		return nil
	}
	c := *s.bias
	return &c
}

// Initialize creates a fresh provider chat, discarding any previous one and
// its history. coords == nil yields an unbiased session.
func (s *Session) Initialize(ctx context.Context, coords *types.Coordinates) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked(ctx, coords)
}

func (s *Session) initLocked(ctx context.Context, coords *types.Coordinates) error {
	var bias *types.Coordinates
	if coords != nil {
		if !coords.Valid() {
			return &SessionError{Op: "initialize", Err: ErrInvalidCoords}
		}
		c := *coords
		bias = &c
	}

	// The old chat is gone either way; a failed start leaves the session
	// Uninitialized so the next Send retries lazily.
	s.chat, s.bias, s.state = nil, nil, StateUninitialized

	chat, err := s.provider.StartChat(ctx, ai.ChatOptions{LatLng: bias})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to start chat")
		return &SessionError{Op: "initialize", Err: err}
	}
	s.chat, s.bias, s.state = chat, bias, StateReady

	s.log.Debug().Bool("grounded", bias != nil).Msg("chat session initialized")
	return nil
}

// Send delivers one user turn and returns the model's reply. An Uninitialized
// session is first initialized without bias.
func (s *Session) Send(ctx context.Context, message string) (*ChatMessage, error) {
	if strings.TrimSpace(message) == "" {
		return nil, &SessionError{Op: "send", Err: ErrEmptyMessage}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateUninitialized {
		if err := s.initLocked(ctx, nil); err != nil {
			return nil, err
		}
	}

	start := s.now()
	reply, err := s.chat.SendMessage(ctx, message)
	if err != nil {
		s.log.Error().Err(err).Msg("chat turn failed")
		return nil, &SessionError{Op: "send", Err: err}
	}

	msg := &ChatMessage{
		ID:        newMessageID(),
		Role:      RoleModel,
		Text:      FallbackText,
		CreatedAt: s.now(),
	}
	if reply != nil {
		if text := strings.TrimSpace(reply.Text); text != "" {
			msg.Text = text
		}
		msg.GroundingLinks = GroundingLinks(reply.GroundingChunks)
	}

	s.log.Debug().
		Int("links", len(msg.GroundingLinks)).
		Dur("elapsed", msg.CreatedAt.Sub(start)).
		Msg("chat turn completed")
	return msg, nil
}

// newMessageID returns a time-ordered identifier.
func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
