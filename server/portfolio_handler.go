package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"voxfolio/cache"
	"voxfolio/core/clips"
	"voxfolio/core/utils"
	"voxfolio/logger"
	"voxfolio/model"
)

// profileDemo is the public-site shape of a demo: audio plus its playable
// clips, ready for the clip player.
type profileDemo struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	AudioURL string       `json:"audioUrl"`
	Duration float64      `json:"duration"`
	Clips    []clips.Clip `json:"clips"`
}

// GetProfileHandler renders the full public portfolio payload for an
// artist, cached in Redis between admin edits.
func (h *APIHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if payload, hit := cache.GetProfile(r.Context(), username); hit {
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
		return
	}

	artist, err := h.artistRepo.GetArtistByUsername(username)
	if err != nil {
		logger.Error("artist lookup failed", logger.String("username", username), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if artist == nil {
		respondError(w, http.StatusNotFound, "Artist not found")
		return
	}

	demos, err := h.demoRepo.GetPublishedDemosByArtistID(artist.ID)
	if err != nil {
		logger.Error("failed to load demos", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	profileDemos := make([]profileDemo, 0, len(demos))
	for _, d := range demos {
		clipList := clips.NormalizeClips(d.Segments)
		if len(clipList) == 0 {
			clipList = []clips.Clip{clips.WholeTrackClip(d.Title)}
		}
		profileDemos = append(profileDemos, profileDemo{
			ID:       d.ID,
			Title:    d.Title,
			AudioURL: utils.NormalizeAudioURL(d.AudioURL),
			Duration: d.Duration,
			Clips:    clipList,
		})
	}

	videos, err := h.portfolioRepo.ListVideos(artist.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	gear, err := h.portfolioRepo.ListGear(artist.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	clients, err := h.portfolioRepo.ListClients(artist.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	reviews, err := h.portfolioRepo.ListReviews(artist.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	settings, err := h.settingsRepo.GetSettings(artist.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if settings != nil {
		if !settings.ShowGear {
			gear = nil
		}
		if !settings.ShowReviews {
			reviews = nil
		}
	}

	payload := map[string]interface{}{
		"artist": map[string]interface{}{
			"username":    artist.Username,
			"displayName": artist.DisplayName,
			"bio":         artist.Bio,
		},
		"demos":    profileDemos,
		"videos":   videos,
		"gear":     gear,
		"clients":  clients,
		"reviews":  reviews,
		"settings": settings,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := cache.SetProfile(r.Context(), username, data); err != nil {
		logger.Warn("failed to cache profile", logger.ErrorField(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// invalidateOwnProfile drops the artist's cached public profile after an
// admin edit.
func (h *APIHandler) invalidateOwnProfile(r *http.Request) {
	if username, err := GetUsernameFromContext(r.Context()); err == nil {
		cache.InvalidateProfile(r.Context(), username)
	}
}

func idFromRequest(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	return uint(id), err
}

// --- Videos ---

func (h *APIHandler) ListVideosHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	videos, err := h.portfolioRepo.ListVideos(artistID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list videos")
		return
	}
	respondJSON(w, http.StatusOK, videos)
}

func (h *APIHandler) SaveVideoHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var video model.Video
	if err := json.NewDecoder(r.Body).Decode(&video); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid video payload")
		return
	}
	video.ArtistID = artistID
	if err := h.portfolioRepo.SaveVideo(&video); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save video")
		return
	}
	h.invalidateOwnProfile(r)
	respondJSON(w, http.StatusOK, video)
}

func (h *APIHandler) DeleteVideoHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, err := idFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if err := h.portfolioRepo.DeleteVideo(artistID, id); err != nil {
		respondError(w, http.StatusNotFound, "Video not found")
		return
	}
	h.invalidateOwnProfile(r)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Gear ---

func (h *APIHandler) ListGearHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	gear, err := h.portfolioRepo.ListGear(artistID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list gear")
		return
	}
	respondJSON(w, http.StatusOK, gear)
}

func (h *APIHandler) SaveGearHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var item model.GearItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid gear payload")
		return
	}
	item.ArtistID = artistID
	if err := h.portfolioRepo.SaveGear(&item); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save gear item")
		return
	}
	h.invalidateOwnProfile(r)
	respondJSON(w, http.StatusOK, item)
}

func (h *APIHandler) DeleteGearHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, err := idFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if err := h.portfolioRepo.DeleteGear(artistID, id); err != nil {
		respondError(w, http.StatusNotFound, "Gear item not found")
		return
	}
	h.invalidateOwnProfile(r)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Client logos ---

func (h *APIHandler) ListClientsHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	clientLogos, err := h.portfolioRepo.ListClients(artistID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list client logos")
		return
	}
	respondJSON(w, http.StatusOK, clientLogos)
}

func (h *APIHandler) SaveClientHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var client model.ClientLogo
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid client payload")
		return
	}
	client.ArtistID = artistID
	if err := h.portfolioRepo.SaveClient(&client); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save client logo")
		return
	}
	h.invalidateOwnProfile(r)
	respondJSON(w, http.StatusOK, client)
}

func (h *APIHandler) DeleteClientHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, err := idFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if err := h.portfolioRepo.DeleteClient(artistID, id); err != nil {
		respondError(w, http.StatusNotFound, "Client logo not found")
		return
	}
	h.invalidateOwnProfile(r)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Reviews ---

func (h *APIHandler) ListReviewsHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	reviews, err := h.portfolioRepo.ListReviews(artistID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list reviews")
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

func (h *APIHandler) SaveReviewHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var review model.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid review payload")
		return
	}
	review.ArtistID = artistID
	if err := h.portfolioRepo.SaveReview(&review); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save review")
		return
	}
	h.invalidateOwnProfile(r)
	respondJSON(w, http.StatusOK, review)
}

func (h *APIHandler) DeleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, err := idFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if err := h.portfolioRepo.DeleteReview(artistID, id); err != nil {
		respondError(w, http.StatusNotFound, "Review not found")
		return
	}
	h.invalidateOwnProfile(r)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Contact messages ---

// ContactHandler accepts an inquiry from a public portfolio's contact form.
func (h *APIHandler) ContactHandler(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	artist, err := h.artistRepo.GetArtistByUsername(username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if artist == nil {
		respondError(w, http.StatusNotFound, "Artist not found")
		return
	}

	var msg model.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid message payload")
		return
	}
	if msg.SenderName == "" || msg.Email == "" || msg.Body == "" {
		respondError(w, http.StatusBadRequest, "Name, email and message are required")
		return
	}
	msg.ArtistID = artist.ID
	msg.Read = false

	if err := h.messageRepo.CreateMessage(&msg); err != nil {
		logger.Error("failed to store contact message", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "sent"})
}

// ListMessagesHandler lists the artist's inbox.
func (h *APIHandler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	messages, err := h.messageRepo.ListMessages(artistID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

// MarkMessageReadHandler marks an inbox message as read.
func (h *APIHandler) MarkMessageReadHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, err := idFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if err := h.messageRepo.MarkRead(artistID, id); err != nil {
		respondError(w, http.StatusNotFound, "Message not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Site settings ---

func (h *APIHandler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	settings, err := h.settingsRepo.GetSettings(artistID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	if settings == nil {
		settings = &model.SiteSettings{ArtistID: artistID, ShowGear: true, ShowReviews: true}
	}
	respondJSON(w, http.StatusOK, settings)
}

func (h *APIHandler) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var settings model.SiteSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid settings payload")
		return
	}
	settings.ArtistID = artistID
	if err := h.settingsRepo.UpsertSettings(&settings); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	h.invalidateOwnProfile(r)
	respondJSON(w, http.StatusOK, settings)
}
