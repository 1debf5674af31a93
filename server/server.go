package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"voxfolio/config"
	"voxfolio/core/auth"
	"voxfolio/db"
	"voxfolio/logger"
	"voxfolio/model"
	"voxfolio/repository"
	"voxfolio/storage"
)

// Start initializes every backing service and runs the HTTP server until
// an interrupt arrives.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	auth.SetSecret(cfg.JWTSecret)

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("failed to initialize MinIO", logger.ErrorField(err))
	}

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		logger.Fatal("failed to initialize database schema", logger.ErrorField(err))
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("failed to connect GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(
		&model.Video{},
		&model.GearItem{},
		&model.ClientLogo{},
		&model.Review{},
		&model.ContactMessage{},
		&model.SiteSettings{},
	); err != nil {
		logger.Fatal("failed to migrate models", logger.ErrorField(err))
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	demoRepo := repository.NewMySQLDemoRepository()
	artistRepo := repository.NewMySQLArtistRepository()
	portfolioRepo := repository.NewGormPortfolioRepository(db.GormDB)
	messageRepo := repository.NewGormMessageRepository(db.GormDB)
	settingsRepo := repository.NewGormSettingsRepository(db.GormDB)

	apiHandler := NewAPIHandler(demoRepo, artistRepo, portfolioRepo, messageRepo, settingsRepo, cfg)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// Auth
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)

	// Public portfolio surface
	router.HandleFunc("/api/artists/{username}/profile", apiHandler.GetProfileHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/artists/{username}/contact", apiHandler.ContactHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/demos/{demo_id}/clips", apiHandler.GetDemoClipsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/demos/{demo_id}/waveform", apiHandler.GetWaveformHandler).Methods(http.MethodGet)
	router.HandleFunc("/ws/preview/{demo_id}", apiHandler.PreviewSessionHandler)

	// Demo management
	router.HandleFunc("/api/demos", apiHandler.AuthMiddleware(apiHandler.GetDemosHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/demos", apiHandler.AuthMiddleware(apiHandler.CreateDemoHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/demos/positions", apiHandler.AuthMiddleware(apiHandler.UpdateDemoPositionsHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/demos/{demo_id}", apiHandler.AuthMiddleware(apiHandler.DeleteDemoHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/demos/{demo_id}/segments", apiHandler.AuthMiddleware(apiHandler.UpdateSegmentsHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/demos/{demo_id}/waveform", apiHandler.AuthMiddleware(apiHandler.UploadWaveformHandler)).Methods(http.MethodPut)

	// Portfolio sections
	router.HandleFunc("/api/videos", apiHandler.AuthMiddleware(apiHandler.ListVideosHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/videos", apiHandler.AuthMiddleware(apiHandler.SaveVideoHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/videos/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteVideoHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/gear", apiHandler.AuthMiddleware(apiHandler.ListGearHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/gear", apiHandler.AuthMiddleware(apiHandler.SaveGearHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/gear/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteGearHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/clients", apiHandler.AuthMiddleware(apiHandler.ListClientsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/clients", apiHandler.AuthMiddleware(apiHandler.SaveClientHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/clients/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteClientHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/reviews", apiHandler.AuthMiddleware(apiHandler.ListReviewsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/reviews", apiHandler.AuthMiddleware(apiHandler.SaveReviewHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/reviews/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteReviewHandler)).Methods(http.MethodDelete)

	// Profile, inbox and settings
	router.HandleFunc("/api/profile", apiHandler.AuthMiddleware(apiHandler.UpdateProfileHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/messages", apiHandler.AuthMiddleware(apiHandler.ListMessagesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/messages/{id}/read", apiHandler.AuthMiddleware(apiHandler.MarkMessageReadHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/settings", apiHandler.AuthMiddleware(apiHandler.GetSettingsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/settings", apiHandler.AuthMiddleware(apiHandler.UpdateSettingsHandler)).Methods(http.MethodPut)

	// Audio and waveform objects served straight from MinIO.
	router.PathPrefix("/audio/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveMinioObject(w, r, cfg, audioObjectKey(r.URL.Path))
	})

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// audioObjectKey recovers the stored object key from a proxy request path.
// The inverse of publicAudioURL: /audio/<uuid>.mp3 names the audio/<uuid>.mp3
// object.
func audioObjectKey(path string) string {
	return strings.TrimPrefix(path, "/")
}

// serveMinioObject streams one stored object with a long cache lifetime.
// Audio objects are immutable once uploaded.
func serveMinioObject(w http.ResponseWriter, r *http.Request, cfg *config.Config, objectPath string) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	object, err := storage.GetObject(ctx, cfg, objectPath)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer object.Close()

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(objectPath, ".mp3"):
		contentType = "audio/mpeg"
	case strings.HasSuffix(objectPath, ".wav"):
		contentType = "audio/wav"
	case strings.HasSuffix(objectPath, ".ogg"):
		contentType = "audio/ogg"
	case strings.HasSuffix(objectPath, ".m4a"):
		contentType = "audio/mp4"
	case strings.HasSuffix(objectPath, ".json"):
		contentType = "application/json"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000")

	if _, err := io.Copy(w, object); err != nil {
		logger.Warn("failed to stream object", logger.String("object", objectPath), logger.ErrorField(err))
	}
}
