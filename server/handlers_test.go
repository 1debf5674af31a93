package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxfolio/config"
	"voxfolio/core/auth"
	"voxfolio/core/clips"
	"voxfolio/model"
)

type fakeDemoRepo struct {
	demos map[int64]*model.Demo
}

func (r *fakeDemoRepo) CreateDemo(demo *model.Demo) (int64, error) {
	id := int64(len(r.demos) + 1)
	demo.ID = id
	r.demos[id] = demo
	return id, nil
}

func (r *fakeDemoRepo) GetDemoByID(id int64) (*model.Demo, error) {
	return r.demos[id], nil
}

func (r *fakeDemoRepo) GetDemosByArtistID(artistID int64) ([]*model.Demo, error) {
	var out []*model.Demo
	for _, d := range r.demos {
		if d.ArtistID == artistID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDemoRepo) GetPublishedDemosByArtistID(artistID int64) ([]*model.Demo, error) {
	var out []*model.Demo
	for _, d := range r.demos {
		if d.ArtistID == artistID && d.Published {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDemoRepo) UpdateSegments(demoID, artistID int64, segmentsJSON string) error {
	d, ok := r.demos[demoID]
	if !ok || d.ArtistID != artistID {
		return fmt.Errorf("demo not found")
	}
	d.Segments = segmentsJSON
	return nil
}

func (r *fakeDemoRepo) UpdateAudio(demoID int64, audioPath, audioURL string, duration float64) error {
	return nil
}

func (r *fakeDemoRepo) UpdateWaveformPath(demoID int64, waveformPath string) error {
	return nil
}

func (r *fakeDemoRepo) UpdatePositions(artistID int64, orderedIDs []int64) error {
	return nil
}

func (r *fakeDemoRepo) DeleteDemo(demoID, artistID int64) error {
	delete(r.demos, demoID)
	return nil
}

type fakeArtistRepo struct {
	artists map[string]*model.Artist
}

func (r *fakeArtistRepo) CreateArtist(artist *model.Artist) (int64, error) {
	artist.ID = int64(len(r.artists) + 1)
	r.artists[artist.Username] = artist
	return artist.ID, nil
}

func (r *fakeArtistRepo) GetArtistByID(id int64) (*model.Artist, error) {
	for _, a := range r.artists {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeArtistRepo) GetArtistByUsername(username string) (*model.Artist, error) {
	return r.artists[username], nil
}

func (r *fakeArtistRepo) GetArtistByEmail(email string) (*model.Artist, error) {
	for _, a := range r.artists {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeArtistRepo) UpdateProfile(artistID int64, displayName, bio string) error {
	return nil
}

type fakeMessageRepo struct {
	messages []model.ContactMessage
}

func (r *fakeMessageRepo) CreateMessage(msg *model.ContactMessage) error {
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeMessageRepo) ListMessages(artistID int64) ([]model.ContactMessage, error) {
	return r.messages, nil
}

func (r *fakeMessageRepo) MarkRead(artistID int64, id uint) error {
	return nil
}

func newTestHandler() (*APIHandler, *fakeDemoRepo, *fakeArtistRepo, *fakeMessageRepo) {
	demoRepo := &fakeDemoRepo{demos: map[int64]*model.Demo{}}
	artistRepo := &fakeArtistRepo{artists: map[string]*model.Artist{}}
	messageRepo := &fakeMessageRepo{}
	cfg := &config.Config{PublicURL: "http://localhost:8080"}
	h := NewAPIHandler(demoRepo, artistRepo, nil, messageRepo, nil, cfg)
	return h, demoRepo, artistRepo, messageRepo
}

func TestAuthMiddleware(t *testing.T) {
	auth.SetSecret("test-secret")
	h, _, _, _ := newTestHandler()

	var gotArtistID int64
	protected := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetArtistIDFromContext(r.Context())
		require.NoError(t, err)
		gotArtistID = id
		w.WriteHeader(http.StatusOK)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected(rec, httptest.NewRequest(http.MethodGet, "/api/demos", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/demos", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		protected(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/demos", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		protected(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token carries the artist identity", func(t *testing.T) {
		token, err := auth.GenerateToken(42, "vera")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/demos", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(42), gotArtistID)
	})
}

func TestGetDemoClipsHandler(t *testing.T) {
	h, demoRepo, _, _ := newTestHandler()

	demoRepo.demos[1] = &model.Demo{
		ID:        1,
		ArtistID:  7,
		Title:     "Commercial Reel",
		AudioURL:  "https://www.dropbox.com/s/abc/reel.mp3?dl=0",
		Duration:  60,
		Segments:  `[{"label":"Upbeat","startTime":10},{"label":"Warm","startTime":0}]`,
		Published: true,
	}
	demoRepo.demos[2] = &model.Demo{ID: 2, ArtistID: 7, Title: "Hidden", Published: false}

	router := mux.NewRouter()
	router.HandleFunc("/api/demos/{demo_id}/clips", h.GetDemoClipsHandler).Methods(http.MethodGet)

	t.Run("serves sorted normalized clips", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/demos/1/clips", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			DemoID   int64        `json:"demoId"`
			AudioURL string       `json:"audioUrl"`
			Clips    []clips.Clip `json:"clips"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		assert.Equal(t, int64(1), resp.DemoID)
		assert.Contains(t, resp.AudioURL, "dl=1")
		require.Len(t, resp.Clips, 2)
		assert.Equal(t, "Warm", resp.Clips[0].Name)
		assert.Equal(t, 10.0, resp.Clips[0].End)
		assert.Equal(t, clips.ClipEndInfinite, resp.Clips[1].End)
	})

	t.Run("demo without segments yields whole-track clip", func(t *testing.T) {
		demoRepo.demos[3] = &model.Demo{ID: 3, ArtistID: 7, Title: "Raw Take", Published: true}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/demos/3/clips", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Clips []clips.Clip `json:"clips"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Clips, 1)
		assert.Equal(t, "Raw Take", resp.Clips[0].Name)
		assert.Equal(t, 0.0, resp.Clips[0].Start)
		assert.Equal(t, clips.ClipEndInfinite, resp.Clips[0].End)
	})

	t.Run("unpublished demo is not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/demos/2/clips", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown demo is not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/demos/99/clips", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPublicAudioURLRoundTrip(t *testing.T) {
	// The key UploadAudio returns already starts with audio/, so the URL
	// path and the object key must line up exactly or the proxy asks the
	// bucket for a key that was never written.
	objectName := "audio/5f0c9c2e.mp3"

	rawURL := publicAudioURL("http://localhost:8080", objectName)
	assert.Equal(t, "http://localhost:8080/audio/5f0c9c2e.mp3", rawURL)

	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	assert.Equal(t, objectName, audioObjectKey(u.Path))
}

func TestContactHandler(t *testing.T) {
	h, _, artistRepo, messageRepo := newTestHandler()
	artistRepo.artists["vera"] = &model.Artist{ID: 7, Username: "vera"}

	router := mux.NewRouter()
	router.HandleFunc("/api/artists/{username}/contact", h.ContactHandler).Methods(http.MethodPost)

	t.Run("stores a valid inquiry", func(t *testing.T) {
		body := `{"senderName":"Pat","email":"pat@example.com","subject":"Booking","body":"Hi!"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/artists/vera/contact", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, messageRepo.messages, 1)
		assert.Equal(t, int64(7), messageRepo.messages[0].ArtistID)
		assert.Equal(t, "Pat", messageRepo.messages[0].SenderName)
		assert.False(t, messageRepo.messages[0].Read)
	})

	t.Run("rejects a message with missing fields", func(t *testing.T) {
		body := `{"senderName":"","email":"","body":""}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/artists/vera/contact", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Len(t, messageRepo.messages, 1)
	})

	t.Run("unknown artist is not found", func(t *testing.T) {
		body := `{"senderName":"Pat","email":"pat@example.com","body":"Hi"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/artists/nobody/contact", strings.NewReader(body)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
