package clips

import (
	"sync"
	"time"

	"voxfolio/logger"
)

// BoundaryEpsilon is the tolerance, in seconds, applied when deciding that
// playback has crossed the active clip's end. It absorbs floating-point and
// position-update granularity drift.
const BoundaryEpsilon = 0.2

// AudioSink is the single audio output a controller drives. Implementations
// range from a real browser element bridged over a websocket to an in-memory
// fake in tests.
type AudioSink interface {
	SetSource(url string)
	Play() error
	Pause()
	Seek(seconds float64)
	CurrentTime() float64
	// Duration reports the total media length in seconds, or 0 while unknown.
	Duration() float64
	Ended() bool
	SetVolume(v float64)
}

// Ticker schedules the controller's boundary-advancement polling. The
// controller owns its lifecycle: Start on entering Playing, Stop whenever
// playback stops. Tests single-step the controller instead of running one.
type Ticker interface {
	Start(fn func())
	Stop()
}

// Track is the unit a controller loads: one audio source plus its ordered
// clip list.
type Track struct {
	ID    string
	Name  string
	URL   string
	Clips []Clip
}

// State is the controller's playback state. Reaching the end of the last
// clip folds back into StateIdle; there is no distinct ended state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Controller drives a single AudioSink through a track's clip sequence:
// selecting a clip seeks and plays, and a per-tick poll advances across clip
// boundaries or stops after the last one.
type Controller struct {
	mu     sync.Mutex
	sink   AudioSink
	ticker Ticker

	track    Track
	clips    []Clip
	current  int // -1 when no clip is selected
	state    State
	position float64
}

// NewController creates a controller over the given sink and ticker.
func NewController(sink AudioSink, ticker Ticker) *Controller {
	return &Controller{
		sink:    sink,
		ticker:  ticker,
		current: -1,
		state:   StateIdle,
	}
}

// LoadTrack points the controller at a new track and resets playback state.
// Autoplay is an explicit caller decision: false on the first load of a
// player instance, true when the user picked a different track.
func (c *Controller) LoadTrack(track Track, autoplay bool) {
	c.mu.Lock()
	c.ticker.Stop()
	c.track = track
	c.clips = track.Clips
	if len(c.clips) == 0 {
		c.clips = []Clip{WholeTrackClip(track.Name)}
	}
	c.current = -1
	c.state = StateIdle
	c.position = 0
	c.sink.Pause()
	c.sink.SetSource(track.URL)
	c.mu.Unlock()

	if autoplay {
		c.SelectClip(0)
	}
}

// SelectClip seeks to clip i and starts playback. Re-selecting the clip that
// is already playing pauses instead (toggle semantics). A rejected play
// request (autoplay policy, media error) leaves the controller paused with
// the clip index unchanged; it is logged, not surfaced.
func (c *Controller) SelectClip(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.clips) {
		return
	}
	if i == c.current && c.state == StatePlaying {
		c.pauseLocked()
		return
	}

	c.sink.Seek(c.clips[i].Start)
	// Guards against a sink left muted by a prior session.
	c.sink.SetVolume(1.0)
	if err := c.sink.Play(); err != nil {
		logger.Warn("clip playback start rejected",
			logger.String("track", c.track.ID),
			logger.Int("clip", i),
			logger.ErrorField(err))
		c.state = StatePaused
		c.ticker.Stop()
		return
	}
	c.current = i
	c.position = c.clips[i].Start
	c.state = StatePlaying
	c.ticker.Start(c.Tick)
}

// TogglePlayPause flips between playing and paused without changing the
// active clip. With no clip ever selected it starts from clip 0.
func (c *Controller) TogglePlayPause() {
	c.mu.Lock()
	if c.state == StatePlaying {
		c.pauseLocked()
		c.mu.Unlock()
		return
	}
	if c.current >= 0 {
		if err := c.sink.Play(); err != nil {
			logger.Warn("resume rejected", logger.ErrorField(err))
			c.mu.Unlock()
			return
		}
		c.state = StatePlaying
		c.ticker.Start(c.Tick)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.SelectClip(0)
}

// Next advances to the following clip. No-op when nothing is selected or the
// active clip is the last one.
func (c *Controller) Next() {
	c.mu.Lock()
	i := c.current
	n := len(c.clips)
	c.mu.Unlock()
	if i < 0 || i+1 >= n {
		return
	}
	c.SelectClip(i + 1)
}

// Prev moves back to the preceding clip. No-op without a selected clip or a
// clip before it.
func (c *Controller) Prev() {
	c.mu.Lock()
	i := c.current
	c.mu.Unlock()
	if i <= 0 {
		return
	}
	c.SelectClip(i - 1)
}

// Replay restarts the active clip from its beginning.
func (c *Controller) Replay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current < 0 || c.current >= len(c.clips) {
		return
	}
	c.sink.Seek(c.clips[c.current].Start)
	c.position = c.clips[c.current].Start
}

// Tick samples the sink position, mirrors it for progress rendering, and
// applies the boundary-advancement rule. The scheduled ticker calls it every
// frame while playing; tests call it directly.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying {
		return
	}
	c.position = c.sink.CurrentTime()
	if c.current < 0 || c.current >= len(c.clips) {
		return
	}

	end := c.clips[c.current].End
	if end >= ClipEndInfinite {
		// A sentinel end means "play to the natural end"; once the sink
		// knows its real duration, use that so the boundary is detectable.
		if d := c.sink.Duration(); d > 0 {
			end = d
		}
	}

	if !c.sink.Ended() && c.position < end-BoundaryEpsilon {
		return
	}

	if c.current+1 < len(c.clips) {
		// Seamless advance: seek only, no pause/replay glitch.
		c.current++
		c.sink.Seek(c.clips[c.current].Start)
		c.position = c.clips[c.current].Start
		return
	}

	// Past the last clip: stop and fold back to idle.
	c.sink.Pause()
	c.current = -1
	c.state = StateIdle
	c.ticker.Stop()
}

func (c *Controller) pauseLocked() {
	c.sink.Pause()
	c.state = StatePaused
	c.ticker.Stop()
}

// CurrentClip reports the active clip index, or false when none is selected.
func (c *Controller) CurrentClip() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current < 0 {
		return 0, false
	}
	return c.current, true
}

// State reports the playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Position reports the last sampled playback position in seconds.
func (c *Controller) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Clips returns the loaded clip list (including the synthetic whole-track
// clip when the track had none).
func (c *Controller) Clips() []Clip {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Clip, len(c.clips))
	copy(out, c.clips)
	return out
}

// ManualTicker is a Ticker that never fires on its own; the owner invokes
// Fire to single-step the registered callback. Used by tests and by
// transports that tick on client-reported position updates.
type ManualTicker struct {
	mu sync.Mutex
	fn func()
}

func (t *ManualTicker) Start(fn func()) {
	t.mu.Lock()
	t.fn = fn
	t.mu.Unlock()
}

func (t *ManualTicker) Stop() {
	t.mu.Lock()
	t.fn = nil
	t.mu.Unlock()
}

// Fire invokes the registered callback, if any.
func (t *ManualTicker) Fire() {
	t.mu.Lock()
	fn := t.fn
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// IntervalTicker runs the callback at a fixed wall-clock interval on its own
// goroutine. Stop is safe to call from within the callback.
type IntervalTicker struct {
	Interval time.Duration

	mu     sync.Mutex
	cancel chan struct{}
}

func (t *IntervalTicker) Start(fn func()) {
	t.Stop()
	interval := t.Interval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}

	t.mu.Lock()
	ch := make(chan struct{})
	t.cancel = ch
	t.mu.Unlock()

	go func() {
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-ch:
				return
			case <-tick.C:
				fn()
			}
		}
	}()
}

func (t *IntervalTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		close(t.cancel)
		t.cancel = nil
	}
}
