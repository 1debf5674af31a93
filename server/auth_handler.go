package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"voxfolio/core/auth"
	"voxfolio/logger"
	"voxfolio/model"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// LoginHandler handles artist login requests. The username field accepts a
// username or an email.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("[Login] failed to decode request body", logger.ErrorField(err))
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username/email and password are required")
		return
	}

	var artist *model.Artist
	var err error
	if strings.Contains(req.Username, "@") {
		artist, err = h.artistRepo.GetArtistByEmail(req.Username)
	} else {
		artist, err = h.artistRepo.GetArtistByUsername(req.Username)
	}
	if err != nil {
		logger.Error("[Login] artist lookup failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if artist == nil {
		logger.Warn("[Login] unknown artist", logger.String("username", req.Username))
		respondError(w, http.StatusUnauthorized, "Invalid username/email or password")
		return
	}

	if !auth.VerifyPassword(req.Password, artist.PasswordHash) {
		logger.Warn("[Login] password verification failed", logger.String("username", req.Username))
		respondError(w, http.StatusUnauthorized, "Invalid username/email or password")
		return
	}

	token, err := auth.GenerateToken(artist.ID, artist.Username)
	if err != nil {
		logger.Error("[Login] failed to generate token", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.Info("[Login] login successful", logger.String("username", artist.Username))

	respondJSON(w, http.StatusOK, struct {
		Token  string       `json:"token"`
		Artist model.Artist `json:"artist"`
	}{
		Token:  token,
		Artist: *artist,
	})
}

// RegisterHandler handles artist registration requests.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "Username, password and email are required")
		return
	}

	if existing, err := h.artistRepo.GetArtistByUsername(req.Username); err != nil {
		logger.Error("[Register] username lookup failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	} else if existing != nil {
		respondError(w, http.StatusConflict, "Username already taken")
		return
	}

	if existing, err := h.artistRepo.GetArtistByEmail(req.Email); err != nil {
		logger.Error("[Register] email lookup failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	} else if existing != nil {
		respondError(w, http.StatusConflict, "Email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("[Register] failed to hash password", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	artist := &model.Artist{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	artistID, err := h.artistRepo.CreateArtist(artist)
	if err != nil {
		logger.Error("[Register] failed to create artist", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := auth.GenerateToken(artistID, req.Username)
	if err != nil {
		logger.Error("[Register] failed to generate token", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	artist.ID = artistID
	logger.Info("[Register] artist registered", logger.String("username", req.Username))

	respondJSON(w, http.StatusCreated, struct {
		Token  string       `json:"token"`
		Artist model.Artist `json:"artist"`
	}{
		Token:  token,
		Artist: *artist,
	})
}

// UpdateProfileHandler updates the authenticated artist's display name and
// bio.
func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req struct {
		DisplayName string `json:"displayName"`
		Bio         string `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DisplayName == "" {
		respondError(w, http.StatusBadRequest, "Display name is required")
		return
	}

	if err := h.artistRepo.UpdateProfile(artistID, req.DisplayName, req.Bio); err != nil {
		logger.Error("failed to update profile", logger.Int64("artistId", artistID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	h.invalidateOwnProfile(r)
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
