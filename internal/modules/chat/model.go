package chat

import (
	"errors"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// SourceGoogleMaps is the only citation source the assistant emits.
const SourceGoogleMaps = "Google Maps"

// FallbackText replaces an empty model reply.
const FallbackText = "I found some info but couldn't summarize it."

// defaultLinkTitle is used for Maps citations that carry no title.
const defaultLinkTitle = "Map Location"

// State is the lifecycle state of a Session.
type State int

const (
	StateUninitialized State = iota
	StateReady
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrSessionNotFound  = errors.New("chat session not found")
	ErrSessionForbidden = errors.New("chat session belongs to another caller")
	ErrInvalidCoords    = errors.New("coordinates out of range")
)

type GroundingLink struct {
	Title  string `json:"title"`
	URI    string `json:"uri"`
	Source string `json:"source"`
}

type ChatMessage struct {
	ID             string          `json:"id"`
	Role           Role            `json:"role"`
	Text           string          `json:"text"`
	GroundingLinks []GroundingLink `json:"groundingLinks,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// SessionError wraps every failure of a chat turn or initialization. The
// session stays usable after it.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return "chat " + e.Op + ": " + e.Err.Error()
}

func (e *SessionError) Unwrap() error { return e.Err }
