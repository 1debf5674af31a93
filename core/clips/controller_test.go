package clips

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSink is an in-memory AudioSink for driving the controller in tests.
type fakeSink struct {
	src      string
	playing  bool
	time     float64
	duration float64
	ended    bool
	volume   float64
	playErr  error
	seeks    []float64
}

func (s *fakeSink) SetSource(url string) {
	s.src = url
	s.time = 0
	s.ended = false
}

func (s *fakeSink) Play() error {
	if s.playErr != nil {
		return s.playErr
	}
	s.playing = true
	return nil
}

func (s *fakeSink) Pause() { s.playing = false }

func (s *fakeSink) Seek(t float64) {
	s.time = t
	s.seeks = append(s.seeks, t)
}

func (s *fakeSink) CurrentTime() float64 { return s.time }

func (s *fakeSink) Duration() float64 { return s.duration }

func (s *fakeSink) Ended() bool { return s.ended }

func (s *fakeSink) SetVolume(v float64) { s.volume = v }

func newTestController(clipList []Clip) (*Controller, *fakeSink, *ManualTicker) {
	sink := &fakeSink{}
	ticker := &ManualTicker{}
	ctrl := NewController(sink, ticker)
	ctrl.LoadTrack(Track{ID: "demo-1", Name: "Demo Reel", URL: "http://audio/demo.mp3", Clips: clipList}, false)
	return ctrl, sink, ticker
}

func threeClips() []Clip {
	return []Clip{
		{Name: "Commercial", Start: 0, End: 10},
		{Name: "Narration", Start: 10, End: 20},
		{Name: "Promo", Start: 20, End: ClipEndInfinite},
	}
}

func TestControllerSelectClip(t *testing.T) {
	t.Run("selecting a clip seeks, restores volume and plays", func(t *testing.T) {
		ctrl, sink, _ := newTestController(threeClips())

		ctrl.SelectClip(1)

		idx, ok := ctrl.CurrentClip()
		require.True(t, ok)
		assert.Equal(t, 1, idx)
		assert.Equal(t, StatePlaying, ctrl.State())
		assert.True(t, sink.playing)
		assert.Equal(t, 10.0, sink.time)
		assert.Equal(t, 1.0, sink.volume)
	})

	t.Run("re-selecting the active playing clip pauses", func(t *testing.T) {
		ctrl, sink, _ := newTestController(threeClips())
		ctrl.SelectClip(1)

		ctrl.SelectClip(1)

		assert.Equal(t, StatePaused, ctrl.State())
		assert.False(t, sink.playing)
		idx, ok := ctrl.CurrentClip()
		require.True(t, ok)
		assert.Equal(t, 1, idx, "pause must not clear the selection")
	})

	t.Run("rejected play stays paused with index unchanged", func(t *testing.T) {
		ctrl, sink, _ := newTestController(threeClips())
		sink.playErr = errors.New("autoplay blocked")

		ctrl.SelectClip(2)

		assert.Equal(t, StatePaused, ctrl.State())
		_, ok := ctrl.CurrentClip()
		assert.False(t, ok)
	})

	t.Run("out of range selection is a no-op", func(t *testing.T) {
		ctrl, _, _ := newTestController(threeClips())
		ctrl.SelectClip(99)
		ctrl.SelectClip(-1)
		assert.Equal(t, StateIdle, ctrl.State())
	})
}

func TestControllerBoundaryAdvancement(t *testing.T) {
	t.Run("crossing end minus epsilon advances seamlessly", func(t *testing.T) {
		ctrl, sink, ticker := newTestController(threeClips())
		ctrl.SelectClip(1)

		sink.time = 19.85 // >= 20 - 0.2
		ticker.Fire()

		idx, ok := ctrl.CurrentClip()
		require.True(t, ok)
		assert.Equal(t, 2, idx)
		assert.Equal(t, 20.0, sink.time, "must seek to the next clip start")
		assert.Equal(t, StatePlaying, ctrl.State(), "advance must not stop playback")
		assert.True(t, sink.playing)
	})

	t.Run("below the epsilon window nothing happens", func(t *testing.T) {
		ctrl, sink, ticker := newTestController(threeClips())
		ctrl.SelectClip(1)

		sink.time = 19.7
		ticker.Fire()

		idx, _ := ctrl.CurrentClip()
		assert.Equal(t, 1, idx)
		assert.Equal(t, StatePlaying, ctrl.State())
	})

	t.Run("sentinel end resolves to sink duration", func(t *testing.T) {
		ctrl, sink, ticker := newTestController([]Clip{{Name: "Solo", Start: 5, End: ClipEndInfinite}})
		sink.duration = 42
		ctrl.SelectClip(0)

		sink.time = 41.85
		ticker.Fire()

		assert.Equal(t, StateIdle, ctrl.State())
		_, ok := ctrl.CurrentClip()
		assert.False(t, ok, "finishing the last clip clears the selection")
		assert.False(t, sink.playing)
	})

	t.Run("native ended signal advances too", func(t *testing.T) {
		ctrl, sink, ticker := newTestController(threeClips())
		ctrl.SelectClip(2)

		sink.ended = true
		ticker.Fire()

		assert.Equal(t, StateIdle, ctrl.State())
	})

	t.Run("ticks after pause are ignored", func(t *testing.T) {
		ctrl, sink, ticker := newTestController(threeClips())
		ctrl.SelectClip(1)
		ctrl.TogglePlayPause()

		sink.time = 25
		ticker.Fire()

		idx, ok := ctrl.CurrentClip()
		require.True(t, ok)
		assert.Equal(t, 1, idx, "a cancelled loop must not advance clips")
	})

	t.Run("tick mirrors position for progress rendering", func(t *testing.T) {
		ctrl, sink, ticker := newTestController(threeClips())
		ctrl.SelectClip(0)
		sink.time = 4.5
		ticker.Fire()
		assert.Equal(t, 4.5, ctrl.Position())
	})
}

func TestControllerNavigation(t *testing.T) {
	t.Run("toggle with no selection starts clip zero", func(t *testing.T) {
		ctrl, sink, _ := newTestController(threeClips())

		ctrl.TogglePlayPause()

		idx, ok := ctrl.CurrentClip()
		require.True(t, ok)
		assert.Equal(t, 0, idx)
		assert.True(t, sink.playing)
	})

	t.Run("toggle resumes without changing the clip", func(t *testing.T) {
		ctrl, _, _ := newTestController(threeClips())
		ctrl.SelectClip(1)
		ctrl.TogglePlayPause()
		ctrl.TogglePlayPause()

		idx, _ := ctrl.CurrentClip()
		assert.Equal(t, 1, idx)
		assert.Equal(t, StatePlaying, ctrl.State())
	})

	t.Run("next and prev respect the edges", func(t *testing.T) {
		ctrl, _, _ := newTestController(threeClips())

		ctrl.Next() // nothing selected yet
		_, ok := ctrl.CurrentClip()
		assert.False(t, ok)

		ctrl.SelectClip(0)
		ctrl.Prev() // already first
		idx, _ := ctrl.CurrentClip()
		assert.Equal(t, 0, idx)

		ctrl.Next()
		ctrl.Next()
		ctrl.Next() // already last
		idx, _ = ctrl.CurrentClip()
		assert.Equal(t, 2, idx)
	})

	t.Run("replay rewinds to the active clip start", func(t *testing.T) {
		ctrl, sink, _ := newTestController(threeClips())
		ctrl.SelectClip(1)
		sink.time = 17

		ctrl.Replay()

		assert.Equal(t, 10.0, sink.time)
	})
}

func TestControllerLoadTrack(t *testing.T) {
	t.Run("loading resets playback state", func(t *testing.T) {
		ctrl, sink, _ := newTestController(threeClips())
		ctrl.SelectClip(2)

		ctrl.LoadTrack(Track{ID: "demo-2", Name: "Other", URL: "http://audio/other.mp3"}, false)

		assert.Equal(t, StateIdle, ctrl.State())
		_, ok := ctrl.CurrentClip()
		assert.False(t, ok)
		assert.Equal(t, 0.0, ctrl.Position())
		assert.Equal(t, "http://audio/other.mp3", sink.src)
		assert.False(t, sink.playing, "first load never autoplays")
	})

	t.Run("user-initiated switch autoplays clip zero", func(t *testing.T) {
		ctrl, sink, _ := newTestController(threeClips())

		ctrl.LoadTrack(Track{ID: "demo-2", Name: "Other", URL: "http://audio/other.mp3", Clips: threeClips()}, true)

		idx, ok := ctrl.CurrentClip()
		require.True(t, ok)
		assert.Equal(t, 0, idx)
		assert.True(t, sink.playing)
	})

	t.Run("track without segments gets the synthetic whole-track clip", func(t *testing.T) {
		ctrl, _, _ := newTestController(nil)

		list := ctrl.Clips()
		require.Len(t, list, 1)
		assert.Equal(t, "Demo Reel", list[0].Name)
		assert.Equal(t, 0.0, list[0].Start)
		assert.Equal(t, float64(ClipEndInfinite), list[0].End)
	})

	t.Run("a stale tick cannot advance the new track", func(t *testing.T) {
		ctrl, sink, ticker := newTestController(threeClips())
		ctrl.SelectClip(1)

		ctrl.LoadTrack(Track{ID: "demo-2", Name: "Other", URL: "http://audio/other.mp3", Clips: threeClips()}, false)
		sink.time = 999
		ticker.Fire() // ticker was stopped on load; must be inert

		assert.Equal(t, StateIdle, ctrl.State())
		_, ok := ctrl.CurrentClip()
		assert.False(t, ok)
	})
}
