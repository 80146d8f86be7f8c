// README: Itinerary handlers (generate, current trip, New Trip).
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"roamly/internal/http/middleware"
)

type ItineraryHandler struct {
	svc     ItineraryService
	quota   QuotaGuard
	timeout time.Duration
}

// NewItineraryHandler builds the handler. quota may be nil to disable metering.
func NewItineraryHandler(svc ItineraryService, quota QuotaGuard, timeout time.Duration) *ItineraryHandler {
	return &ItineraryHandler{svc: svc, quota: quota, timeout: timeout}
}

type generateReq struct {
	Prompt string `json:"prompt"`
}

// Generate handles POST /api/itineraries.
func (h *ItineraryHandler) Generate(c *gin.Context) {
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(c, http.StatusBadRequest, "prompt is required")
		return
	}

	uid := middleware.CallerUID(c)
	if !chargeQuota(c, h.quota, uid) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	it, err := h.svc.GenerateFor(ctx, uid, req.Prompt)
	if err != nil {
		writeItineraryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, it)
}

// Current handles GET /api/itineraries/current.
func (h *ItineraryHandler) Current(c *gin.Context) {
	it, err := h.svc.Current(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeItineraryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, it)
}

// Discard handles DELETE /api/itineraries/current.
func (h *ItineraryHandler) Discard(c *gin.Context) {
	if err := h.svc.Discard(c.Request.Context(), middleware.CallerUID(c)); err != nil {
		writeItineraryError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
