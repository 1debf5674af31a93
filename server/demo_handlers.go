package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"voxfolio/cache"
	"voxfolio/core/clips"
	"voxfolio/core/utils"
	"voxfolio/core/waveform"
	"voxfolio/logger"
	"voxfolio/model"
	"voxfolio/repository"
	"voxfolio/storage"
)

// maxUploadSize bounds a demo audio upload (60 MB).
const maxUploadSize = 60 << 20

// waveformBuckets is the resolution of stored waveform peaks.
const waveformBuckets = 800

// publicAudioURL builds the URL the audio proxy serves a stored object at.
// Object keys already carry their bucket prefix (audio/...), so the key
// maps one to one onto the URL path; the proxy recovers it by stripping
// the leading slash.
func publicAudioURL(publicURL, objectName string) string {
	return publicURL + "/" + objectName
}

func demoIDFromRequest(r *http.Request) (int64, error) {
	idStr := mux.Vars(r)["demo_id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid demo id %q", idStr)
	}
	return id, nil
}

// requireOwnedDemo loads the demo and verifies the authenticated artist owns
// it. Writes the error response itself and reports ok=false on failure.
func (h *APIHandler) requireOwnedDemo(w http.ResponseWriter, r *http.Request) (*model.Demo, int64, bool) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, 0, false
	}
	demoID, err := demoIDFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, 0, false
	}
	demo, err := h.demoRepo.GetDemoByID(demoID)
	if err != nil {
		logger.Error("demo lookup failed", logger.Int64("demoId", demoID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return nil, 0, false
	}
	if demo == nil || demo.ArtistID != artistID {
		respondError(w, http.StatusNotFound, "Demo not found")
		return nil, 0, false
	}
	return demo, artistID, true
}

// GetDemosHandler lists the authenticated artist's demos.
func (h *APIHandler) GetDemosHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	demos, err := h.demoRepo.GetDemosByArtistID(artistID)
	if err != nil {
		logger.Error("failed to list demos", logger.Int64("artistId", artistID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, demos)
}

// CreateDemoHandler accepts a multipart upload with a title and an audio
// file, stores the audio, and creates the demo row.
func (h *APIHandler) CreateDemoHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	title := r.FormValue("title")
	if title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Audio file is required")
		return
	}
	defer file.Close()

	objectName, err := storage.UploadAudio(r.Context(), h.cfg, header.Filename, file, header.Size,
		header.Header.Get("Content-Type"))
	if err != nil {
		logger.Error("audio upload failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to store audio")
		return
	}

	demo := &model.Demo{
		ArtistID:  artistID,
		Title:     title,
		AudioPath: objectName,
		AudioURL:  publicAudioURL(h.cfg.PublicURL, objectName),
		Published: true,
	}
	demoID, err := h.demoRepo.CreateDemo(demo)
	if err != nil {
		logger.Error("failed to create demo", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create demo")
		return
	}
	demo.ID = demoID

	if username, err := GetUsernameFromContext(r.Context()); err == nil {
		cache.InvalidateProfile(r.Context(), username)
	}
	respondJSON(w, http.StatusCreated, demo)
}

// GetDemoClipsHandler serves a demo's normalized clip list for the public
// player. Results are cached in Redis until the segments change. A demo
// without stored segments yields the single synthetic whole-track clip, so
// there is always something playable.
func (h *APIHandler) GetDemoClipsHandler(w http.ResponseWriter, r *http.Request) {
	demoID, err := demoIDFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	demo, err := h.demoRepo.GetDemoByID(demoID)
	if err != nil {
		logger.Error("demo lookup failed", logger.Int64("demoId", demoID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if demo == nil || !demo.Published {
		respondError(w, http.StatusNotFound, "Demo not found")
		return
	}

	clipList, hit := cache.GetDemoClips(r.Context(), demoID)
	if !hit {
		clipList = clips.NormalizeClips(demo.Segments)
		if len(clipList) == 0 {
			clipList = []clips.Clip{clips.WholeTrackClip(demo.Title)}
		}
		if err := cache.SetDemoClips(r.Context(), demoID, clipList); err != nil {
			logger.Warn("failed to cache clips", logger.Int64("demoId", demoID), logger.ErrorField(err))
		}
	}

	respondJSON(w, http.StatusOK, struct {
		DemoID   int64        `json:"demoId"`
		Title    string       `json:"title"`
		AudioURL string       `json:"audioUrl"`
		Duration float64      `json:"duration"`
		Clips    []clips.Clip `json:"clips"`
	}{
		DemoID:   demo.ID,
		Title:    demo.Title,
		AudioURL: utils.NormalizeAudioURL(demo.AudioURL),
		Duration: demo.Duration,
		Clips:    clipList,
	})
}

// UpdateSegmentsHandler persists an edited segment list. Only label and
// startTime pairs are accepted; derived clip ends are never stored. The
// incoming list is sorted defensively so the store never holds an unsorted
// draft, then the clip cache is invalidated.
func (h *APIHandler) UpdateSegmentsHandler(w http.ResponseWriter, r *http.Request) {
	demo, artistID, ok := h.requireOwnedDemo(w, r)
	if !ok {
		return
	}

	var segments []clips.Segment
	if err := json.NewDecoder(r.Body).Decode(&segments); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid segment list")
		return
	}
	for i, seg := range segments {
		if seg.StartTime < 0 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("segment %d has a negative start time", i))
			return
		}
	}
	clips.SortSegments(segments)

	store := repository.NewDemoSegmentStore(h.demoRepo, artistID)
	if err := store.SaveSegments(r.Context(), demo.ID, segments); err != nil {
		logger.Error("failed to save segments", logger.Int64("demoId", demo.ID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to save segments")
		return
	}

	if err := cache.InvalidateDemoClips(r.Context(), demo.ID); err != nil {
		logger.Warn("clip cache invalidation failed", logger.Int64("demoId", demo.ID), logger.ErrorField(err))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"demoId": demo.ID, "segments": segments})
}

// UpdateDemoPositionsHandler rewrites the display order of the artist's
// demos.
func (h *APIHandler) UpdateDemoPositionsHandler(w http.ResponseWriter, r *http.Request) {
	artistID, err := GetArtistIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req struct {
		Order []int64 `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Order) == 0 {
		respondError(w, http.StatusBadRequest, "Invalid order payload")
		return
	}

	if err := h.demoRepo.UpdatePositions(artistID, req.Order); err != nil {
		logger.Error("failed to update demo positions", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update positions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteDemoHandler removes a demo and its stored objects.
func (h *APIHandler) DeleteDemoHandler(w http.ResponseWriter, r *http.Request) {
	demo, artistID, ok := h.requireOwnedDemo(w, r)
	if !ok {
		return
	}

	if err := h.demoRepo.DeleteDemo(demo.ID, artistID); err != nil {
		logger.Error("failed to delete demo", logger.Int64("demoId", demo.ID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete demo")
		return
	}

	// Stored objects are best-effort cleanup; the row is already gone.
	if err := storage.RemoveObject(r.Context(), h.cfg, demo.AudioPath); err != nil {
		logger.Warn("failed to remove audio object", logger.ErrorField(err))
	}
	if err := storage.RemoveObject(r.Context(), h.cfg, demo.WaveformPath); err != nil {
		logger.Warn("failed to remove waveform object", logger.ErrorField(err))
	}
	if err := cache.InvalidateDemoClips(r.Context(), demo.ID); err != nil {
		logger.Warn("clip cache invalidation failed", logger.ErrorField(err))
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UploadWaveformHandler accepts decoded sample data from the editor, folds
// it into peak buckets, and stores the result for timeline rendering. The
// client also reports the decoded duration, which fills in demos uploaded
// before their length was known.
func (h *APIHandler) UploadWaveformHandler(w http.ResponseWriter, r *http.Request) {
	demo, _, ok := h.requireOwnedDemo(w, r)
	if !ok {
		return
	}

	var req struct {
		Samples  []float32 `json:"samples"`
		Duration float64   `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid waveform payload")
		return
	}

	peaks := waveform.Peaks(req.Samples, waveformBuckets)
	if peaks == nil {
		respondError(w, http.StatusBadRequest, "No samples to render")
		return
	}

	data, err := json.Marshal(peaks)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to encode peaks")
		return
	}

	objectName, err := storage.UploadWaveform(r.Context(), h.cfg, demo.ID, data)
	if err != nil {
		logger.Error("waveform upload failed", logger.Int64("demoId", demo.ID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to store waveform")
		return
	}
	if err := h.demoRepo.UpdateWaveformPath(demo.ID, objectName); err != nil {
		logger.Error("failed to record waveform path", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to record waveform")
		return
	}

	if req.Duration > 0 && req.Duration != demo.Duration {
		if err := h.demoRepo.UpdateAudio(demo.ID, demo.AudioPath, demo.AudioURL, req.Duration); err != nil {
			logger.Warn("failed to update demo duration", logger.ErrorField(err))
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"demoId": demo.ID, "buckets": len(peaks)})
}

// GetWaveformHandler streams a demo's stored waveform peaks. The editor
// treats a missing waveform as a visible "could not load waveform" state,
// so this reports 404 rather than an empty payload.
func (h *APIHandler) GetWaveformHandler(w http.ResponseWriter, r *http.Request) {
	demoID, err := demoIDFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	demo, err := h.demoRepo.GetDemoByID(demoID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if demo == nil || demo.WaveformPath == "" {
		respondError(w, http.StatusNotFound, "Waveform not available")
		return
	}

	object, err := storage.GetObject(r.Context(), h.cfg, demo.WaveformPath)
	if err != nil {
		respondError(w, http.StatusNotFound, "Waveform not available")
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", "application/json")
	if _, err := io.Copy(w, object); err != nil {
		logger.Error("error streaming waveform", logger.ErrorField(err))
	}
}
