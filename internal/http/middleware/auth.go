// README: Auth middleware; Firebase ID tokens when a verifier is configured, client IDs otherwise.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"roamly/internal/infra"
)

const (
	callerUIDKey = "caller_uid"

	// ClientIDHeader identifies an anonymous browser install when auth is disabled.
	ClientIDHeader = "X-Client-Id"

	// AnonymousUID is the caller used when no client ID is sent.
	AnonymousUID = "anonymous"

	maxClientIDLen = 64
)

// Auth resolves the caller. With a verifier every request must carry a valid
// "Bearer <Firebase ID token>"; with a nil verifier the X-Client-Id header is trusted.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	if verifier == nil {
		return clientIDAuth
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil || token == nil || token.UID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(callerUIDKey, token.UID)
		c.Next()
	}
}

func clientIDAuth(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader(ClientIDHeader))
	if id == "" {
		id = AnonymousUID
	}
	if !isValidClientID(id) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}
	c.Set(callerUIDKey, id)
	c.Next()
}

// CallerUID returns the caller resolved by Auth, or "" when Auth did not run.
func CallerUID(c *gin.Context) string {
	return c.GetString(callerUIDKey)
}

// isValidClientID accepts [A-Za-z0-9_-] up to maxClientIDLen characters.
func isValidClientID(v string) bool {
	if len(v) > maxClientIDLen {
		return false
	}
	for _, r := range v {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '-' || r == '_' {
			continue
		}
		return false
	}
	return true
}
