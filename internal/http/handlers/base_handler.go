// README: Base handler utilities (JSON helpers, service interfaces, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"roamly/internal/modules/chat"
	"roamly/internal/modules/itinerary"
	"roamly/internal/modules/quota"
	"roamly/internal/types"
)

// User-facing messages for provider failures.
const (
	MsgGenerationFailed = "Failed to generate itinerary. Please try again with a different prompt."
	MsgChatUnavailable  = "Sorry, I'm having trouble connecting to the map right now. Please try again."
)

type ItineraryService interface {
	GenerateFor(ctx context.Context, owner, prompt string) (*itinerary.TripItinerary, error)
	Current(ctx context.Context, owner string) (*itinerary.TripItinerary, error)
	Discard(ctx context.Context, owner string) error
}

type ChatService interface {
	Open(ctx context.Context, owner string, coords *types.Coordinates) (*chat.Session, error)
	Reinitialize(ctx context.Context, owner, id string, coords *types.Coordinates) (*chat.Session, error)
	Send(ctx context.Context, owner, id, message string) (string, *chat.ChatMessage, error)
	Close(owner, id string) error
}

// QuotaGuard charges one model request to a caller.
type QuotaGuard interface {
	UseToken(ctx context.Context, uid string) error
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Coordinates, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// chargeQuota returns false after writing the response when the caller may not proceed.
func chargeQuota(c *gin.Context, q QuotaGuard, uid string) bool {
	if q == nil {
		return true
	}
	if err := q.UseToken(c.Request.Context(), uid); err != nil {
		_ = c.Error(err)
		if errors.Is(err, quota.ErrInsufficientTokens) {
			writeError(c, http.StatusTooManyRequests, "monthly request quota exhausted")
			return false
		}
		writeError(c, http.StatusInternalServerError, "internal error")
		return false
	}
	return true
}

func writeItineraryError(c *gin.Context, err error) {
	_ = c.Error(err)
	var genErr *itinerary.GenerationError
	switch {
	case errors.Is(err, itinerary.ErrEmptyPrompt):
		writeError(c, http.StatusBadRequest, "prompt is required")
	case errors.Is(err, itinerary.ErrNotFound):
		writeError(c, http.StatusNotFound, "no current itinerary")
	case errors.As(err, &genErr):
		writeError(c, http.StatusBadGateway, MsgGenerationFailed)
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeChatError(c *gin.Context, err error) {
	_ = c.Error(err)
	var sessErr *chat.SessionError
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(c, http.StatusBadRequest, "message is required")
	case errors.Is(err, chat.ErrInvalidCoords):
		writeError(c, http.StatusBadRequest, "invalid coordinates")
	case errors.Is(err, chat.ErrSessionForbidden):
		writeError(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, chat.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, "chat session not found")
	case errors.As(err, &sessErr):
		writeError(c, http.StatusBadGateway, MsgChatUnavailable)
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
