// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"roamly/internal/ai"
	"roamly/internal/config"
	httptransport "roamly/internal/http"
	"roamly/internal/infra"
	"roamly/internal/maps"
	"roamly/internal/modules/chat"
	"roamly/internal/modules/itinerary"
	"roamly/internal/modules/quota"
	"roamly/migrations"
)

var Version = "dev"

const serviceName = "roamly-api"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(lvl)
	}
	if !cfg.IsProduction() {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tripProvider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey, cfg.AI.Model, itinerary.Vocabulary())
	if err != nil {
		log.Fatal().Err(err).Msg("gemini itinerary provider")
	}
	defer tripProvider.Close()

	chatProvider, err := ai.NewGeminiChatProvider(ctx, cfg.AI.GeminiKey, cfg.AI.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("gemini chat provider")
	}

	deps := httptransport.RouterDeps{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AIRequestTTL:   cfg.AI.RequestTimeout,
		Version:        Version,
		Logger:         log,
	}

	var tripStore itinerary.CurrentStore
	if cfg.Redis.Addr != "" {
		rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("redis")
		}
		defer rdb.Close()
		tripStore = itinerary.NewStore(rdb, cfg.Redis.ItineraryTTL)
	} else {
		log.Warn().Msg("ROAMLY_REDIS_ADDR not set; current itineraries are not kept")
	}

	if cfg.DB.DSN != "" {
		if err := infra.RunMigrations(cfg.DB.DSN, migrations.FS, log); err != nil {
			log.Fatal().Err(err).Msg("migrations")
		}
		pool, err := infra.NewDB(ctx, cfg.DB.DSN, cfg.DB.MaxConns)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		deps.Quota = quota.NewService(quota.NewStore(pool), cfg.AI.MonthlyQuota)
	} else {
		log.Warn().Msg("ROAMLY_DB_DSN not set; request quota disabled")
	}

	if cfg.Maps.APIKey != "" {
		geo, err := maps.NewGeocodeService(cfg.Maps.APIKey, cfg.Maps.Language)
		if err != nil {
			log.Fatal().Err(err).Msg("maps geocoding")
		}
		deps.Geocoder = geo
	}

	if cfg.Firebase.ProjectID != "" {
		verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("firebase init")
		}
		deps.Verifier = verifier
	} else {
		log.Warn().Str("header", "X-Client-Id").Msg("firebase auth disabled; trusting client ids")
	}

	chats := chat.NewManager(chatProvider, cfg.AI.SessionIdleTTL, log)
	deps.Itineraries = itinerary.NewService(tripProvider, tripStore, log)
	deps.Chats = chats
	deps.SessionCount = chats.Len

	server := httptransport.NewServer(cfg.HTTP.Addr, httptransport.NewRouter(deps), cfg.HTTP.ShutdownTimeout, log)
	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("http server")
	}
	log.Info().Msg("stopped")
}
