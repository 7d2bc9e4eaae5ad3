package audio

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeRecognizer struct {
	text string
	err  error

	mu    sync.Mutex
	audio []byte
	mime  string
}

func (f *fakeRecognizer) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	f.mu.Lock()
	f.audio = append([]byte(nil), audio...)
	f.mime = mimeType
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type captureRecorder struct {
	mu          sync.Mutex
	transcripts []string
	errors      []CaptureErrorClass
	states      []bool
	barFrames   int
}

func (r *captureRecorder) events() CaptureEvents {
	return CaptureEvents{
		OnTranscript: func(text string) {
			r.mu.Lock()
			r.transcripts = append(r.transcripts, text)
			r.mu.Unlock()
		},
		OnBars: func([]float64) {
			r.mu.Lock()
			r.barFrames++
			r.mu.Unlock()
		},
		OnError: func(class CaptureErrorClass) {
			r.mu.Lock()
			r.errors = append(r.errors, class)
			r.mu.Unlock()
		},
		OnStateChanged: func(listening bool) {
			r.mu.Lock()
			r.states = append(r.states, listening)
			r.mu.Unlock()
		},
	}
}

func pcmChunk(n int) []byte {
	b := make([]byte, n*2)
	for i := 0; i < n; i++ {
		b[i*2] = byte(i)
		b[i*2+1] = byte(i >> 6)
	}
	return b
}

func TestStartListeningRejections(t *testing.T) {
	rec := &captureRecorder{}

	unsupported := NewCaptureController(nil, nil, rec.events())
	if err := unsupported.StartListening("audio/wav"); !errors.Is(err, ErrRecognitionUnsupported) {
		t.Fatalf("err = %v, want ErrRecognitionUnsupported", err)
	}

	aiActive := NewCaptureController(&fakeRecognizer{}, func() bool { return true }, rec.events())
	if err := aiActive.StartListening("audio/wav"); !errors.Is(err, ErrAITurnActive) {
		t.Fatalf("err = %v, want ErrAITurnActive", err)
	}

	c := NewCaptureController(&fakeRecognizer{}, func() bool { return false }, rec.events())
	if err := c.StartListening("audio/wav"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := c.StartListening("audio/wav"); !errors.Is(err, ErrAlreadyListening) {
		t.Fatalf("err = %v, want ErrAlreadyListening", err)
	}
}

func TestStopWithTranscriptForwardsAsInput(t *testing.T) {
	recognizer := &fakeRecognizer{text: "  I feel better today  "}
	rec := &captureRecorder{}
	c := NewCaptureController(recognizer, func() bool { return false }, rec.events())

	if err := c.StartListening("audio/webm"); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Feed(pcmChunk(512))
	c.StopListening(context.Background())

	if c.IsListening() {
		t.Fatal("resources must be released after stop")
	}
	if len(rec.transcripts) != 1 || rec.transcripts[0] != "I feel better today" {
		t.Fatalf("transcripts = %v", rec.transcripts)
	}
	if recognizer.mime != "audio/webm" {
		t.Errorf("mime = %q", recognizer.mime)
	}
	if len(rec.errors) != 0 {
		t.Errorf("unexpected errors: %v", rec.errors)
	}
	// one on, one off
	if len(rec.states) != 2 || !rec.states[0] || rec.states[1] {
		t.Errorf("states = %v", rec.states)
	}
}

func TestStopWithoutAudioReportsNoSpeech(t *testing.T) {
	rec := &captureRecorder{}
	c := NewCaptureController(&fakeRecognizer{text: "ignored"}, func() bool { return false }, rec.events())

	if err := c.StartListening("audio/wav"); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.StopListening(context.Background())

	if len(rec.errors) != 1 || rec.errors[0] != CaptureNoSpeech {
		t.Fatalf("errors = %v, want [no-speech]", rec.errors)
	}
	if len(rec.transcripts) != 0 {
		t.Errorf("no transcript expected, got %v", rec.transcripts)
	}
}

func TestEmptyTranscriptReportsNoSpeech(t *testing.T) {
	rec := &captureRecorder{}
	c := NewCaptureController(&fakeRecognizer{text: "   "}, func() bool { return false }, rec.events())

	if err := c.StartListening("audio/wav"); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Feed(pcmChunk(64))
	c.StopListening(context.Background())

	if len(rec.errors) != 1 || rec.errors[0] != CaptureNoSpeech {
		t.Fatalf("errors = %v, want [no-speech]", rec.errors)
	}
}

func TestRecognitionErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want CaptureErrorClass
	}{
		{"auth", errors.New("status 401 unauthorized"), CapturePermissionDenied},
		{"permission", errors.New("permission denied by policy"), CapturePermissionDenied},
		{"format", errors.New("unsupported audio format"), CaptureDeviceUnavailable},
		{"network", errors.New("connection reset by peer"), CaptureNetworkError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &captureRecorder{}
			c := NewCaptureController(&fakeRecognizer{err: tc.err}, func() bool { return false }, rec.events())
			if err := c.StartListening("audio/wav"); err != nil {
				t.Fatalf("start: %v", err)
			}
			c.Feed(pcmChunk(64))
			c.StopListening(context.Background())

			if c.IsListening() {
				t.Fatal("teardown must complete on every failure class")
			}
			if len(rec.errors) != 1 || rec.errors[0] != tc.want {
				t.Fatalf("errors = %v, want [%s]", rec.errors, tc.want)
			}
		})
	}
}

func TestAbortReleasesWithoutTranscription(t *testing.T) {
	recognizer := &fakeRecognizer{text: "should not appear"}
	rec := &captureRecorder{}
	c := NewCaptureController(recognizer, func() bool { return false }, rec.events())

	if err := c.StartListening("audio/wav"); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Feed(pcmChunk(64))
	c.Abort()

	if c.IsListening() {
		t.Fatal("abort must release resources")
	}
	if len(rec.transcripts) != 0 || len(rec.errors) != 0 {
		t.Fatalf("abort must be silent, got transcripts=%v errors=%v", rec.transcripts, rec.errors)
	}

	// audio arriving after release is dropped
	c.Feed(pcmChunk(64))
	c.StopListening(context.Background())
	if len(rec.transcripts) != 0 {
		t.Errorf("stale feed must not produce a transcript")
	}
}

func TestUserMessagesAreDistinct(t *testing.T) {
	classes := []CaptureErrorClass{CaptureNoSpeech, CaptureDeviceUnavailable, CapturePermissionDenied, CaptureNetworkError}
	seen := map[string]CaptureErrorClass{}
	for _, c := range classes {
		msg := c.UserMessage()
		if msg == "" {
			t.Fatalf("%s has no user message", c)
		}
		if prev, dup := seen[msg]; dup {
			t.Fatalf("%s and %s share a message", prev, c)
		}
		seen[msg] = c
	}
}
