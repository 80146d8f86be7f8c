// README: HTTP router registration.
package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"roamly/internal/http/handlers"
	"roamly/internal/http/middleware"
	"roamly/internal/infra"
)

type RouterDeps struct {
	Itineraries handlers.ItineraryService
	Chats       handlers.ChatService
	Quota       handlers.QuotaGuard
	Geocoder    handlers.Geocoder
	Verifier    infra.TokenVerifier

	// SessionCount feeds /health; optional.
	SessionCount func() int

	AllowedOrigins []string
	AIRequestTTL   time.Duration
	Version        string
	Logger         zerolog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(deps.Logger), middleware.Recovery(deps.Logger))
	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	r.GET("/health", handlers.Health(deps.Version, deps.SessionCount))

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	itineraryHandler := handlers.NewItineraryHandler(deps.Itineraries, deps.Quota, deps.AIRequestTTL)
	api.POST("/itineraries", itineraryHandler.Generate)
	api.GET("/itineraries/current", itineraryHandler.Current)
	api.DELETE("/itineraries/current", itineraryHandler.Discard)

	chatHandler := handlers.NewChatHandler(deps.Chats, deps.Quota, deps.Geocoder, deps.AIRequestTTL, deps.Logger)
	api.POST("/chat/sessions", chatHandler.OpenSession)
	api.PUT("/chat/sessions/:id", chatHandler.ReinitializeSession)
	api.DELETE("/chat/sessions/:id", chatHandler.CloseSession)
	api.POST("/chat/messages", chatHandler.Send)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.ClientIDHeader, middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
