package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health. sessions may be nil.
func Health(version string, sessions func() int) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok", "version": version}
		if sessions != nil {
			body["chat_sessions"] = sessions()
		}
		writeJSON(c, http.StatusOK, body)
	}
}
