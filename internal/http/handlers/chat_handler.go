// README: Chat handlers (session open/reinitialize/close and message send).
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"roamly/internal/http/middleware"
	"roamly/internal/modules/chat"
	"roamly/internal/types"
)

type ChatHandler struct {
	chats    ChatService
	quota    QuotaGuard
	geocoder Geocoder
	timeout  time.Duration
	log      zerolog.Logger
}

// NewChatHandler builds the handler. quota and geocoder may be nil.
func NewChatHandler(chats ChatService, quota QuotaGuard, geocoder Geocoder, timeout time.Duration, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{chats: chats, quota: quota, geocoder: geocoder, timeout: timeout, log: log}
}

type sessionReq struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
}

type sessionResp struct {
	SessionID string `json:"session_id"`
	Grounded  bool   `json:"grounded"`
}

type sendReq struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type sendResp struct {
	SessionID string            `json:"session_id"`
	Message   *chat.ChatMessage `json:"message"`
}

// OpenSession handles POST /api/chat/sessions.
func (h *ChatHandler) OpenSession(c *gin.Context) {
	coords, ok := h.bindBias(c)
	if !ok {
		return
	}
	s, err := h.chats.Open(c.Request.Context(), middleware.CallerUID(c), coords)
	if err != nil {
		writeChatError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, sessionResp{SessionID: s.ID(), Grounded: s.Bias() != nil})
}

// ReinitializeSession handles PUT /api/chat/sessions/:id.
func (h *ChatHandler) ReinitializeSession(c *gin.Context) {
	coords, ok := h.bindBias(c)
	if !ok {
		return
	}
	s, err := h.chats.Reinitialize(c.Request.Context(), middleware.CallerUID(c), c.Param("id"), coords)
	if err != nil {
		writeChatError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sessionResp{SessionID: s.ID(), Grounded: s.Bias() != nil})
}

// CloseSession handles DELETE /api/chat/sessions/:id.
func (h *ChatHandler) CloseSession(c *gin.Context) {
	if err := h.chats.Close(middleware.CallerUID(c), c.Param("id")); err != nil {
		writeChatError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Send handles POST /api/chat/messages.
func (h *ChatHandler) Send(c *gin.Context) {
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(c, http.StatusBadRequest, "message is required")
		return
	}

	uid := middleware.CallerUID(c)
	if !chargeQuota(c, h.quota, uid) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	id, msg, err := h.chats.Send(ctx, uid, strings.TrimSpace(req.SessionID), req.Message)
	if err != nil {
		writeChatError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sendResp{SessionID: id, Message: msg})
}

// bindBias reads the optional session bias. An empty body means no bias.
func (h *ChatHandler) bindBias(c *gin.Context) (*types.Coordinates, bool) {
	var req sessionReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "invalid json")
		return nil, false
	}

	switch {
	case req.Latitude != nil && req.Longitude != nil:
		coords := &types.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
		if !coords.Valid() {
			writeError(c, http.StatusBadRequest, "invalid coordinates")
			return nil, false
		}
		return coords, true
	case req.Latitude != nil || req.Longitude != nil:
		writeError(c, http.StatusBadRequest, "latitude and longitude must be sent together")
		return nil, false
	}

	address := strings.TrimSpace(req.Address)
	if address == "" || h.geocoder == nil {
		return nil, true
	}
	coords, err := h.geocoder.Geocode(c.Request.Context(), address)
	if err != nil {
		h.log.Warn().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("geocoding failed; opening unbiased session")
		return nil, true
	}
	return &coords, true
}
