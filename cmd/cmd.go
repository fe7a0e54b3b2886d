package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"couply-backend/internal/config"
	"couply-backend/internal/database"
	"couply-backend/internal/handlers"
	"couply-backend/internal/middleware"
	"couply-backend/internal/moderation"
	"couply-backend/internal/push"
	"couply-backend/internal/relationship"
	"couply-backend/internal/repository"
	"couply-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database and run migrations
	db, err := database.Connect(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	coupleRepo := repository.NewCoupleRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Initialize push delivery
	pushService, err := push.NewService(cfg.APNs, userRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push service")
	}

	// Initialize the moderation gate
	moderationClient := moderation.NewClient(cfg.Moderation.URL, cfg.Moderation.APIKey,
		moderation.WithHTTPClient(&http.Client{Timeout: cfg.Moderation.Timeout()}))
	gate := moderation.NewGate(moderationClient, cfg.Moderation.FailOpen)

	// Initialize the snapshot store and services
	store := relationship.NewStore()
	profileService := services.NewProfileService(profileRepo, userRepo)
	stateService := services.NewStateService(profileService, coupleRepo, store)
	authService := services.NewAuthService(userRepo, store, cfg.JWT.Secret)
	coupleService := services.NewCoupleService(coupleRepo, invitationRepo, userRepo, profileService, stateService, pushService)
	wsHub := services.NewWSHub()
	messageService := services.NewMessageService(messageRepo, gate, wsHub, pushService)
	postService := services.NewPostService(postRepo, profileService, gate, pushService)
	groupService := services.NewGroupService(groupRepo, gate)
	challengeService := services.NewChallengeService(challengeRepo, gate)
	eventService := services.NewEventService(eventRepo)
	mediaService, err := services.NewMediaService(cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create media service")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService, stateService)
	coupleHandler := handlers.NewCoupleHandler(coupleService, stateService, wsHub)
	messageHandler := handlers.NewMessageHandler(messageService, stateService)
	postHandler := handlers.NewPostHandler(postService, stateService)
	groupHandler := handlers.NewGroupHandler(groupService, stateService)
	challengeHandler := handlers.NewChallengeHandler(challengeService, stateService)
	eventHandler := handlers.NewEventHandler(eventService, stateService)
	mediaHandler := handlers.NewMediaHandler(mediaService, stateService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, authService, stateService, messageService, store)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", authHandler.SignUp)
		r.Post("/auth/signin", authHandler.SignIn)
		r.Post("/auth/verify", authHandler.VerifyEmail)
		r.Post("/auth/resend", authHandler.ResendVerification)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(authService))

			r.Post("/auth/signout", authHandler.SignOut)
			r.Post("/devices", authHandler.RegisterDevice)

			r.Get("/state", profileHandler.GetState)
			r.Get("/profile", profileHandler.GetProfile)
			r.Patch("/profile", profileHandler.UpdateProfile)

			r.Get("/couple", coupleHandler.GetCouple)
			r.Patch("/couple", coupleHandler.UpdateCouple)
			r.Delete("/couple", coupleHandler.Unlink)
			r.Post("/couple/invite", coupleHandler.Invite)
			r.Get("/couple/invite", coupleHandler.GetInvitation)
			r.Post("/couple/accept", coupleHandler.Accept)

			r.Get("/messages", messageHandler.List)
			r.Post("/messages", messageHandler.Send)
			r.Post("/messages/{message_id}/read", messageHandler.MarkRead)

			r.Get("/posts", postHandler.Feed)
			r.Post("/posts", postHandler.Create)
			r.Get("/posts/{post_id}/comments", postHandler.Comments)
			r.Post("/posts/{post_id}/comments", postHandler.Comment)
			r.Post("/posts/{post_id}/like", postHandler.ToggleLike)

			r.Get("/groups", groupHandler.Discover)
			r.Get("/groups/mine", groupHandler.Memberships)
			r.Post("/groups/{group_id}/join", groupHandler.Join)
			r.Delete("/groups/{group_id}/join", groupHandler.Leave)
			r.Get("/groups/{group_id}/posts", groupHandler.Posts)
			r.Post("/groups/{group_id}/posts", groupHandler.Post)

			r.Get("/challenges", challengeHandler.List)
			r.Get("/challenges/{challenge_id}/submissions", challengeHandler.Submissions)
			r.Post("/challenges/{challenge_id}/submissions", challengeHandler.Submit)

			r.Get("/events", eventHandler.List)
			r.Post("/events", eventHandler.Create)
			r.Put("/events/{event_id}", eventHandler.Update)
			r.Delete("/events/{event_id}", eventHandler.Delete)

			r.Post("/media/upload-url", mediaHandler.GetUploadURL)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
