package audio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// Rejections of StartListening. These are precondition failures, not capture
// errors: nothing was acquired.
var (
	ErrRecognitionUnsupported = errors.New("capture: speech recognition not supported")
	ErrAITurnActive           = errors.New("capture: cannot listen while an AI turn is active")
	ErrAlreadyListening       = errors.New("capture: already listening")
)

// CaptureErrorClass is the fixed failure taxonomy surfaced to the user. Every
// class resolves the same way internally: full teardown, return to idle.
type CaptureErrorClass string

const (
	CaptureNoSpeech          CaptureErrorClass = "no-speech"
	CaptureDeviceUnavailable CaptureErrorClass = "capture-device-unavailable"
	CapturePermissionDenied  CaptureErrorClass = "permission-denied"
	CaptureNetworkError      CaptureErrorClass = "network-error"
)

// UserMessage maps a class to its user-facing text.
func (c CaptureErrorClass) UserMessage() string {
	switch c {
	case CaptureNoSpeech:
		return "No speech was detected. Please try again."
	case CaptureDeviceUnavailable:
		return "Audio capture failed. Ensure microphone is connected and permission is granted."
	case CapturePermissionDenied:
		return "Microphone access denied. Please allow microphone access in browser settings."
	case CaptureNetworkError:
		return "Network error during speech recognition. Please check your connection."
	}
	return "An unknown speech error occurred."
}

// Recognizer converts one finalized utterance into a transcript.
type Recognizer interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// CaptureEvents are the capture bridge's outbound callbacks. They are invoked
// without the controller lock held.
type CaptureEvents struct {
	// OnTranscript forwards a final transcript as if it were typed input.
	OnTranscript func(text string)
	// OnBars delivers one visualizer frame of band magnitudes.
	OnBars func(bars []float64)
	// OnError reports a capture failure after teardown completed.
	OnError func(class CaptureErrorClass)
	// OnStateChanged reports listening on/off transitions.
	OnStateChanged func(listening bool)
}

// micResources are the per-utterance capture resources. They are acquired and
// released as one unit: if listening is off, none of them is alive.
type micResources struct {
	buf      []byte
	mime     string
	analyser *Analyser
}

// CaptureController is the capture half of the audio bridge: a single-owner
// handle over the microphone stream, the recognizer and the analyser tap.
// Recognition is single-utterance; a finalize (client pause detection or
// explicit stop) transcribes the buffered audio, forwards the transcript and
// releases everything, whatever the outcome.
type CaptureController struct {
	mu        sync.Mutex
	listening bool
	res       *micResources
	lastBars  time.Time

	recognizer  Recognizer
	aiTurnGate  func() bool
	events      CaptureEvents
	barInterval time.Duration
}

// NewCaptureController wires the capture bridge. aiTurnGate reports whether an
// AI turn is active; a nil recognizer means the platform lacks recognition
// support and StartListening is always rejected.
func NewCaptureController(recognizer Recognizer, aiTurnGate func() bool, events CaptureEvents) *CaptureController {
	return &CaptureController{
		recognizer:  recognizer,
		aiTurnGate:  aiTurnGate,
		events:      events,
		barInterval: 16 * time.Millisecond, // ~display repaint cadence
	}
}

// StartListening acquires the capture resources. It is rejected when
// recognition is unsupported, when an AI turn is active (mutual exclusion with
// generation/speech), or when already listening.
func (c *CaptureController) StartListening(mimeType string) error {
	if c.recognizer == nil {
		return ErrRecognitionUnsupported
	}
	if c.aiTurnGate != nil && c.aiTurnGate() {
		return ErrAITurnActive
	}

	c.mu.Lock()
	if c.listening {
		c.mu.Unlock()
		return ErrAlreadyListening
	}
	c.listening = true
	c.res = &micResources{mime: mimeType, analyser: NewAnalyser()}
	c.lastBars = time.Time{}
	c.mu.Unlock()

	if c.events.OnStateChanged != nil {
		c.events.OnStateChanged(true)
	}
	return nil
}

// Feed appends live microphone audio and drives the visualizer at the repaint
// cadence. Audio arriving while not listening is dropped.
func (c *CaptureController) Feed(pcm []byte) {
	c.mu.Lock()
	if !c.listening || c.res == nil {
		c.mu.Unlock()
		return
	}
	c.res.buf = append(c.res.buf, pcm...)
	c.res.analyser.Feed(pcm)
	emit := time.Since(c.lastBars) >= c.barInterval
	var bars []float64
	if emit {
		c.lastBars = time.Now()
		bars = c.res.analyser.Bars()
	}
	c.mu.Unlock()

	if emit && c.events.OnBars != nil {
		c.events.OnBars(bars)
	}
}

// StopListening finalizes the current utterance: teardown first, then
// transcription of whatever was buffered. It is the single path for pause
// detection, explicit user stop and error recovery alike.
func (c *CaptureController) StopListening(ctx context.Context) {
	c.mu.Lock()
	if !c.listening {
		c.mu.Unlock()
		return
	}
	res := c.res
	c.listening = false
	c.res = nil
	c.mu.Unlock()

	if c.events.OnStateChanged != nil {
		c.events.OnStateChanged(false)
	}

	if len(res.buf) == 0 {
		c.fail(CaptureNoSpeech)
		return
	}

	text, err := c.recognizer.Transcribe(ctx, res.buf, res.mime)
	if err != nil {
		logx.WithContext(ctx).Errorf("capture: transcription failed: %v", err)
		c.fail(classifyRecognitionError(err))
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		c.fail(CaptureNoSpeech)
		return
	}
	if c.events.OnTranscript != nil {
		c.events.OnTranscript(text)
	}
}

// Abort releases the capture resources without transcription, e.g. when the
// transport goes away mid-utterance.
func (c *CaptureController) Abort() {
	c.mu.Lock()
	if !c.listening {
		c.mu.Unlock()
		return
	}
	c.listening = false
	c.res = nil
	c.mu.Unlock()

	if c.events.OnStateChanged != nil {
		c.events.OnStateChanged(false)
	}
}

// IsListening reports whether the capture resources are held.
func (c *CaptureController) IsListening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

func (c *CaptureController) fail(class CaptureErrorClass) {
	if c.events.OnError != nil {
		c.events.OnError(class)
	}
}

// classifyRecognitionError maps recognizer failures onto the user-facing
// taxonomy. Recognition runs over the network, so unclassified failures
// surface as network errors.
func classifyRecognitionError(err error) CaptureErrorClass {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(msg, "permission"):
		return CapturePermissionDenied
	case strings.Contains(msg, "unsupported") || strings.Contains(msg, "format") || strings.Contains(msg, "decode"):
		return CaptureDeviceUnavailable
	default:
		return CaptureNetworkError
	}
}
