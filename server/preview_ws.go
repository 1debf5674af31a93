package server

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"voxfolio/core/clips"
	"voxfolio/core/utils"
	"voxfolio/logger"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// previewCommand is a playback instruction pushed to the browser's audio
// element.
type previewCommand struct {
	Cmd    string  `json:"cmd"`
	URL    string  `json:"url,omitempty"`
	Time   float64 `json:"time,omitempty"`
	Volume float64 `json:"volume,omitempty"`
}

// previewEvent is a message the browser sends back: playback controls plus
// periodic position reports that drive clip boundary advancement.
type previewEvent struct {
	Type     string  `json:"type"`
	Index    int     `json:"index,omitempty"`
	Time     float64 `json:"time,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Ended    bool    `json:"ended,omitempty"`
}

// previewState is the controller snapshot sent after every event so the
// client UI stays in sync with the server-side state machine.
type previewState struct {
	Event    string  `json:"event"`
	State    string  `json:"state"`
	Clip     int     `json:"clip"`
	Position float64 `json:"position"`
}

// wsSink bridges the playback controller to a browser audio element over a
// websocket. Commands go out as JSON; CurrentTime, Duration and Ended come
// from the client's position reports.
type wsSink struct {
	conn *websocket.Conn
	mu   sync.Mutex

	position float64
	duration float64
	ended    bool
}

func (s *wsSink) send(cmd previewCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(cmd)
}

func (s *wsSink) SetSource(url string) {
	s.mu.Lock()
	s.position = 0
	s.duration = 0
	s.ended = false
	s.mu.Unlock()
	if err := s.send(previewCommand{Cmd: "src", URL: url}); err != nil {
		logger.Warn("preview src push failed", logger.ErrorField(err))
	}
}

func (s *wsSink) Play() error {
	return s.send(previewCommand{Cmd: "play"})
}

func (s *wsSink) Pause() {
	if err := s.send(previewCommand{Cmd: "pause"}); err != nil {
		logger.Warn("preview pause push failed", logger.ErrorField(err))
	}
}

func (s *wsSink) Seek(seconds float64) {
	s.mu.Lock()
	s.position = seconds
	s.ended = false
	s.mu.Unlock()
	if err := s.send(previewCommand{Cmd: "seek", Time: seconds}); err != nil {
		logger.Warn("preview seek push failed", logger.ErrorField(err))
	}
}

func (s *wsSink) SetVolume(v float64) {
	if err := s.send(previewCommand{Cmd: "volume", Volume: v}); err != nil {
		logger.Warn("preview volume push failed", logger.ErrorField(err))
	}
}

func (s *wsSink) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *wsSink) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

func (s *wsSink) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// report stores a client position update.
func (s *wsSink) report(ev previewEvent) {
	s.mu.Lock()
	s.position = ev.Time
	if ev.Duration > 0 {
		s.duration = ev.Duration
	}
	s.ended = ev.Ended
	s.mu.Unlock()
}

// sessionSnapshot captures the controller state for the client UI. Clip is
// -1 while no clip is selected so an idle session can't highlight entry 0.
func sessionSnapshot(ctrl *clips.Controller) previewState {
	clip, active := ctrl.CurrentClip()
	if !active {
		clip = -1
	}
	return previewState{
		Event:    "state",
		State:    ctrl.State().String(),
		Clip:     clip,
		Position: ctrl.Position(),
	}
}

// PreviewSessionHandler hosts a server-side clip playback session for one
// demo. The browser supplies the audio element; the controller decides what
// it does.
func (h *APIHandler) PreviewSessionHandler(w http.ResponseWriter, r *http.Request) {
	demoID, err := demoIDFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid demo id")
		return
	}
	demo, err := h.demoRepo.GetDemoByID(demoID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if demo == nil {
		respondError(w, http.StatusNotFound, "Demo not found")
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("preview websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	sink := &wsSink{conn: conn}
	ticker := &clips.ManualTicker{}
	ctrl := clips.NewController(sink, ticker)

	ctrl.LoadTrack(clips.Track{
		ID:    strconv.FormatInt(demo.ID, 10),
		Name:  demo.Title,
		URL:   utils.NormalizeAudioURL(demo.AudioURL),
		Clips: clips.NormalizeClips(demo.Segments),
	}, false)

	logger.Info("preview session opened",
		logger.Int64("demoID", demoID),
		logger.String("remote", r.RemoteAddr))

	for {
		var ev previewEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("preview session read failed", logger.ErrorField(err))
			}
			break
		}

		switch ev.Type {
		case "position":
			sink.report(ev)
			ticker.Fire()
		case "select":
			ctrl.SelectClip(ev.Index)
		case "toggle":
			ctrl.TogglePlayPause()
		case "next":
			ctrl.Next()
		case "prev":
			ctrl.Prev()
		case "replay":
			ctrl.Replay()
		default:
			logger.Warn("preview session unknown event", logger.String("type", ev.Type))
			continue
		}

		snapshot := sessionSnapshot(ctrl)
		sink.mu.Lock()
		err = conn.WriteJSON(snapshot)
		sink.mu.Unlock()
		if err != nil {
			logger.Warn("preview state push failed", logger.ErrorField(err))
			break
		}
	}

	logger.Info("preview session closed", logger.Int64("demoID", demoID))
}
