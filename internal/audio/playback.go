package audio

import "sync"

// Voice selectors for synthesized speech.
const (
	VoiceMale   = "male"
	VoiceFemale = "female"
)

// PlaybackEvent is an observable playback lifecycle transition.
type PlaybackEvent string

const (
	PlaybackStarted PlaybackEvent = "started"
	PlaybackEnded   PlaybackEvent = "ended"
	PlaybackErrored PlaybackEvent = "errored"
)

// PlaybackListener receives playback events. reason is set for errored events.
type PlaybackListener func(ev PlaybackEvent, utteranceID uint64, reason string)

// State is a snapshot of the playback half of the audio bridge.
type State struct {
	UtteranceID  uint64  `json:"utteranceId,omitempty"`
	AudioDataURI string  `json:"audioDataUri,omitempty"`
	IsPlaying    bool    `json:"isPlaying"`
	Volume       float64 `json:"volume"`
	PlaybackRate float64 `json:"playbackRate"`
	Voice        string  `json:"selectedVoice"`
	Relaxation   bool    `json:"relaxationPlaying"`
}

// utterance is the single live AI audio payload.
type utterance struct {
	id      uint64
	dataURI string
	mime    string
	voice   string
}

// PlaybackController owns the AI-voice playback state. At most one utterance
// is ever live: Play stops and releases the prior payload before starting the
// new one, and a released payload can never emit another event because its id
// is no longer current. Volume, rate and voice are shared settings; changing
// the voice or toggling the relaxation exercise mid-utterance applies the same
// unconditional stop rule as new user input.
type PlaybackController struct {
	mu         sync.Mutex
	current    *utterance
	playing    bool
	volume     float64
	rate       float64
	voice      string
	relaxation bool
	nextID     uint64
	listener   PlaybackListener
}

// NewPlaybackController returns a controller with the product defaults:
// female voice, half volume, normal rate.
func NewPlaybackController() *PlaybackController {
	return &PlaybackController{
		volume: 0.5,
		rate:   1.0,
		voice:  VoiceFemale,
	}
}

// SetListener installs the event listener. The listener is invoked without the
// controller lock held and must not call back into the controller.
func (c *PlaybackController) SetListener(l PlaybackListener) {
	c.mu.Lock()
	c.listener = l
	c.mu.Unlock()
}

// Play stops and releases any live utterance, then makes payload the single
// live one and emits started. It returns the new utterance id; events carrying
// any other id are stale and will be dropped.
func (c *PlaybackController) Play(dataURI, mimeType, voice string) uint64 {
	c.mu.Lock()
	c.stopLocked()
	c.nextID++
	u := &utterance{id: c.nextID, dataURI: dataURI, mime: mimeType, voice: voice}
	c.current = u
	c.playing = true
	l := c.listener
	c.mu.Unlock()

	if l != nil {
		l(PlaybackStarted, u.id, "")
	}
	return u.id
}

// Stop releases the live utterance, if any. The released payload emits no
// further events.
func (c *PlaybackController) Stop() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
}

func (c *PlaybackController) stopLocked() {
	c.current = nil
	c.playing = false
}

// NotifyEnded records the natural end of an utterance's playback and emits
// ended. Stale ids are ignored.
func (c *PlaybackController) NotifyEnded(utteranceID uint64) {
	c.finish(utteranceID, PlaybackEnded, "")
}

// NotifyErrored records a playback failure and emits errored. Stale ids are
// ignored.
func (c *PlaybackController) NotifyErrored(utteranceID uint64, reason string) {
	c.finish(utteranceID, PlaybackErrored, reason)
}

func (c *PlaybackController) finish(utteranceID uint64, ev PlaybackEvent, reason string) {
	c.mu.Lock()
	if c.current == nil || c.current.id != utteranceID || !c.playing {
		c.mu.Unlock()
		return
	}
	c.stopLocked()
	l := c.listener
	c.mu.Unlock()

	if l != nil {
		l(ev, utteranceID, reason)
	}
}

// IsPlaying reports whether an utterance is live.
func (c *PlaybackController) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Voice returns the selected voice.
func (c *PlaybackController) Voice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voice
}

// SetVoice changes the voice preference; a live utterance is stopped first.
func (c *PlaybackController) SetVoice(voice string) {
	if voice != VoiceMale && voice != VoiceFemale {
		return
	}
	c.mu.Lock()
	c.stopLocked()
	c.voice = voice
	c.mu.Unlock()
}

// SetVolume clamps to [0,1].
func (c *PlaybackController) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	c.mu.Lock()
	c.volume = v
	c.mu.Unlock()
}

// SetRate clamps to [0.5,2.0].
func (c *PlaybackController) SetRate(r float64) {
	if r < 0.5 {
		r = 0.5
	} else if r > 2.0 {
		r = 2.0
	}
	c.mu.Lock()
	c.rate = r
	c.mu.Unlock()
}

// ToggleRelaxation flips the relaxation-exercise audio; turning it on stops
// any live AI utterance. It returns the new relaxation state.
func (c *PlaybackController) ToggleRelaxation() bool {
	c.mu.Lock()
	c.relaxation = !c.relaxation
	if c.relaxation {
		c.stopLocked()
	}
	on := c.relaxation
	c.mu.Unlock()
	return on
}

// Snapshot returns the current playback state.
func (c *PlaybackController) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := State{
		IsPlaying:    c.playing,
		Volume:       c.volume,
		PlaybackRate: c.rate,
		Voice:        c.voice,
		Relaxation:   c.relaxation,
	}
	if c.current != nil {
		st.UtteranceID = c.current.id
		st.AudioDataURI = c.current.dataURI
	}
	return st
}
