package router

import (
	"context"
	"net/http"

	"syllabye/internal/api/v1/handler"
	"syllabye/internal/auth"
	"syllabye/internal/config"
	"syllabye/internal/middleware"
	"syllabye/internal/nickname"
	"syllabye/internal/pubsub"
	"syllabye/internal/query"
	"syllabye/internal/service"
	"syllabye/internal/upload"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Deps are the outside resources the router wires in. Zero fields are built
// from config.
type Deps struct {
	Backend    service.BackendClient
	NewSecrets func(context.Context, *config.Config) (service.SecretManagerService, error)
	Publisher  pubsub.Publisher
}

// New builds the web tier's handler. The returned cleanup closes clients
// opened here.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, deps Deps) (http.Handler, func(), error) {
	logger.Info().Msg("Router initialized")
	logger.Info().Str("environment", cfg.Environment).Str("api_url", cfg.APIURL).Msg("App environment loaded")

	cleanup := func() {}

	// 1. Validator with the nickname rule
	validate := nickname.NewValidate()

	// 2. Backend client
	backend := deps.Backend
	if backend == nil {
		backend = service.NewBackendClient(cfg.APIURL, cfg.UpstreamTimeout(), logger)
	}

	// 3. Login state secret
	newSecrets := deps.NewSecrets
	if newSecrets == nil {
		newSecrets = service.NewSecretManagerService
	}
	secret, err := service.ResolveStateSecret(ctx, cfg, newSecrets)
	if err != nil {
		return nil, cleanup, err
	}
	login, err := auth.NewLogin(cfg.GoogleClientID, cfg.GoogleRedirectURL, secret, cfg.StateIssuer)
	if err != nil {
		return nil, cleanup, err
	}

	// 4. Optional upload events
	var notifier upload.Notifier
	if cfg.UploadEventsTopic != "" {
		publisher := deps.Publisher
		if publisher == nil {
			p, err := pubsub.NewPublisher(ctx, cfg)
			if err != nil {
				return nil, cleanup, err
			}
			publisher = p
			cleanup = func() {
				if err := p.Close(); err != nil {
					logger.Warn().Err(err).Msg("Failed to close Pub/Sub client")
				}
			}
		}
		notifier = pubsub.NewUploadNotifier(publisher, cfg.UploadEventsTopic)
		logger.Info().Str("topic", cfg.UploadEventsTopic).Msg("Upload events enabled")
	}

	// 5. Services
	store := query.NewStore(cfg.CacheTTL(), cfg.CacheCleanup(), cfg.UpstreamTimeout(), logger)
	hydrator := auth.NewHydrator(backend, logger)
	courseSvc := service.NewCourseService(backend, store)
	programSvc := service.NewProgramService(backend, store)
	syllabusSvc := service.NewSyllabusService(backend, store)
	uploader := upload.NewUploader(backend, cfg.StorageTimeout(), validate, notifier, logger)
	nicknames := nickname.NewRegistry(cfg.NicknameDebounce(), validate, backend)

	// 6. Handlers
	userHandler := handler.NewUserHandler(backend, hydrator, nicknames, validate, logger)
	authHandler := handler.NewAuthHandler(login, hydrator, store, cfg.SessionCookieName, !cfg.IsDevelopment(), logger)
	courseHandler := handler.NewCourseHandler(backend, logger)
	syllabusHandler := handler.NewSyllabusHandler(backend, validate, logger)
	pageHandler := handler.NewPageHandler(courseSvc, programSvc, syllabusSvc, uploader, validate, cfg.SessionCookieName, cfg.MaxUploadBytes(), logger)

	// 7. Create ServeMux router
	mux := http.NewServeMux()
	userHandler.RegisterRoutes(mux)
	authHandler.RegisterRoutes(mux)
	courseHandler.RegisterRoutes(mux)
	syllabusHandler.RegisterRoutes(mux)
	pageHandler.RegisterRoutes(mux, middleware.RequireSession)

	// 8. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.SiteURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{service.HeaderPresignedURL},
		AllowCredentials: true,
		Debug:            false,
	})

	sessions := middleware.SessionMiddleware(hydrator)
	return middleware.LoggerMiddleware(logger)(c.Handler(sessions(mux))), cleanup, nil
}
