package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/echomind/echomind-backend/internal/config"
	"github.com/echomind/echomind-backend/internal/database"
	"github.com/echomind/echomind-backend/internal/handlers"
	applog "github.com/echomind/echomind-backend/internal/log"
	"github.com/echomind/echomind-backend/internal/middleware"
	"github.com/echomind/echomind-backend/internal/routes"
	"github.com/echomind/echomind-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	applog.Init(cfg.Environment)

	log.Info().Msg("connecting to MongoDB")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer database.Disconnect()

	if err := database.EnsureIndexes(context.Background()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure MongoDB indexes")
	} else {
		log.Info().Msg("MongoDB indexes ensured")
	}

	userStore := services.NewUserStore(database.DB)
	chatStore := services.NewChatStore(database.DB)
	mailer := services.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)
	gemini := services.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiSystemInstruction)

	var uploads *services.CloudinaryService
	if cfg.HasCloudinary() {
		uploads, err = services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize Cloudinary; avatar uploads disabled")
			uploads = nil
		} else {
			log.Info().Msg("Cloudinary service initialized")
		}
	} else {
		log.Info().Msg("Cloudinary credentials not set; avatar uploads disabled")
	}

	authService := services.NewAuthService(userStore, mailer, []byte(cfg.JWTSecret))
	chatService := services.NewChatService(chatStore, gemini)

	authHandler := handlers.NewAuthHandler(authService, userStore, uploads)
	chatHandler := handlers.NewChatHandler(chatService)
	requireAuth := middleware.RequireAuth([]byte(cfg.JWTSecret), userStore)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, authHandler, chatHandler, requireAuth)

	log.Info().Str("port", cfg.Port).Msg("EchoMind backend running")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
