package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"voxfolio/config"
	"voxfolio/core/auth"
	"voxfolio/logger"
	"voxfolio/repository"
)

type contextKey string

const (
	ctxArtistID contextKey = "artistID"
	ctxUsername contextKey = "username"
)

// APIHandler handles all API requests.
type APIHandler struct {
	demoRepo      repository.DemoRepository
	artistRepo    repository.ArtistRepository
	portfolioRepo repository.PortfolioRepository
	messageRepo   repository.MessageRepository
	settingsRepo  repository.SettingsRepository
	cfg           *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	demoRepo repository.DemoRepository,
	artistRepo repository.ArtistRepository,
	portfolioRepo repository.PortfolioRepository,
	messageRepo repository.MessageRepository,
	settingsRepo repository.SettingsRepository,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		demoRepo:      demoRepo,
		artistRepo:    artistRepo,
		portfolioRepo: portfolioRepo,
		messageRepo:   messageRepo,
		settingsRepo:  settingsRepo,
		cfg:           cfg,
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

// respondError writes a JSON error payload.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// AuthMiddleware validates the bearer token and injects the artist identity
// into the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxArtistID, claims.ArtistID)
		ctx = context.WithValue(ctx, ctxUsername, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetArtistIDFromContext extracts the authenticated artist ID from the
// request context.
func GetArtistIDFromContext(ctx context.Context) (int64, error) {
	artistID, ok := ctx.Value(ctxArtistID).(int64)
	if !ok {
		return 0, fmt.Errorf("artist ID not found in context")
	}
	return artistID, nil
}

// GetUsernameFromContext extracts the authenticated username from the
// request context.
func GetUsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value(ctxUsername).(string)
	if !ok {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}
