// README: Manager is the registry of live chat sessions, scoped per caller with idle expiry.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"roamly/internal/ai"
	"roamly/internal/types"
)

// DefaultIdleTTL is how long an untouched session survives.
const DefaultIdleTTL = 30 * time.Minute

type Manager struct {
	provider ai.ChatProvider
	sessions *cache.Cache
	log      zerolog.Logger
}

// NewManager creates a Manager. idleTTL <= 0 selects DefaultIdleTTL.
func NewManager(provider ai.ChatProvider, idleTTL time.Duration, log zerolog.Logger) *Manager {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	cleanup := idleTTL / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &Manager{
		provider: provider,
		sessions: cache.New(idleTTL, cleanup),
		log:      log.With().Str("module", "chat").Logger(),
	}
}

// Open creates and initializes a new session for owner.
func (m *Manager) Open(ctx context.Context, owner string, coords *types.Coordinates) (*Session, error) {
	s := m.newSession(owner)
	if err := s.Initialize(ctx, coords); err != nil {
		return nil, err
	}
	m.sessions.SetDefault(s.ID(), s)
	return s, nil
}

// Get returns owner's live session and refreshes its idle timer.
func (m *Manager) Get(owner, id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := v.(*Session)
	if s.Owner() != owner {
		return nil, ErrSessionForbidden
	}
	m.sessions.SetDefault(id, s)
	return s, nil
}

// Reinitialize replaces the session's chat with a fresh one using coords.
func (m *Manager) Reinitialize(ctx context.Context, owner, id string, coords *types.Coordinates) (*Session, error) {
	s, err := m.Get(owner, id)
	if err != nil {
		return nil, err
	}
	if err := s.Initialize(ctx, coords); err != nil {
		return nil, err
	}
	return s, nil
}

// Send routes message to session id. An empty, unknown or expired id starts
// a new lazily initialized session; the id actually used is returned.
func (m *Manager) Send(ctx context.Context, owner, id, message string) (string, *ChatMessage, error) {
	if strings.TrimSpace(message) == "" {
		return id, nil, &SessionError{Op: "send", Err: ErrEmptyMessage}
	}

	s, err := m.Get(owner, id)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		s = m.newSession(owner)
		m.sessions.SetDefault(s.ID(), s)
		if id != "" {
			m.log.Info().Str("stale_session_id", id).Str("session_id", s.ID()).Msg("replacing unknown chat session")
		}
	case err != nil:
		return id, nil, err
	}

	msg, err := s.Send(ctx, message)
	return s.ID(), msg, err
}

// Close drops owner's session.
func (m *Manager) Close(owner, id string) error {
	if _, err := m.Get(owner, id); err != nil {
		return err
	}
	m.sessions.Delete(id)
	return nil
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	return m.sessions.ItemCount()
}

func (m *Manager) newSession(owner string) *Session {
	return NewSession(uuid.NewString(), owner, m.provider, m.log)
}
