package ai

import (
	"context"

	"roamly/internal/types"
)

// ItineraryProvider performs one-shot structured generation of a trip itinerary.
// The returned text is the provider's JSON payload, unparsed.
type ItineraryProvider interface {
	GenerateItinerary(ctx context.Context, prompt string) (string, error)
}

// ChatProvider opens provider-side conversational sessions with Maps grounding enabled.
// The provider keeps the turn history; callers hold only the ChatSession handle.
type ChatProvider interface {
	StartChat(ctx context.Context, opts ChatOptions) (ChatSession, error)
}

// ChatSession is a single provider-side conversation. Implementations are not
// required to be safe for concurrent use.
type ChatSession interface {
	SendMessage(ctx context.Context, message string) (*ChatReply, error)
}

// ChatOptions configures a new chat. A nil LatLng yields an unbiased session.
type ChatOptions struct {
	LatLng *types.Coordinates
}
