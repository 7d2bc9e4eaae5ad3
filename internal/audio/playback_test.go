package audio

import (
	"sync"
	"testing"
)

type eventRecord struct {
	ev     PlaybackEvent
	id     uint64
	reason string
}

type eventRecorder struct {
	mu     sync.Mutex
	events []eventRecord
}

func (r *eventRecorder) listener(ev PlaybackEvent, id uint64, reason string) {
	r.mu.Lock()
	r.events = append(r.events, eventRecord{ev, id, reason})
	r.mu.Unlock()
}

func (r *eventRecorder) all() []eventRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]eventRecord, len(r.events))
	copy(out, r.events)
	return out
}

func TestPlayStopsPreviousUtterance(t *testing.T) {
	c := NewPlaybackController()
	rec := &eventRecorder{}
	c.SetListener(rec.listener)

	first := c.Play("data:audio/mpeg;base64,AA==", "audio/mpeg", VoiceFemale)
	second := c.Play("data:audio/mpeg;base64,BB==", "audio/mpeg", VoiceFemale)

	if first == second {
		t.Fatalf("utterance ids must be unique")
	}
	if !c.IsPlaying() {
		t.Fatal("second utterance should be live")
	}

	// the first utterance was released; its end event must be dropped
	c.NotifyEnded(first)
	if !c.IsPlaying() {
		t.Fatal("stale ended event must not stop the live utterance")
	}

	c.NotifyEnded(second)
	if c.IsPlaying() {
		t.Fatal("live utterance should have ended")
	}

	events := rec.all()
	if len(events) != 3 {
		t.Fatalf("expected 3 events (2 started, 1 ended), got %d: %v", len(events), events)
	}
	last := events[len(events)-1]
	if last.ev != PlaybackEnded || last.id != second {
		t.Errorf("unexpected final event %+v", last)
	}
}

func TestNotifyErroredFencesStaleIDs(t *testing.T) {
	c := NewPlaybackController()
	rec := &eventRecorder{}
	c.SetListener(rec.listener)

	id := c.Play("data:audio/mpeg;base64,AA==", "audio/mpeg", VoiceMale)
	c.NotifyErrored(id+5, "decode error")
	if !c.IsPlaying() {
		t.Fatal("stale errored event must be ignored")
	}

	c.NotifyErrored(id, "decode error")
	if c.IsPlaying() {
		t.Fatal("errored utterance should be released")
	}

	events := rec.all()
	last := events[len(events)-1]
	if last.ev != PlaybackErrored || last.reason != "decode error" {
		t.Errorf("unexpected final event %+v", last)
	}
}

func TestStopEmitsNoEvents(t *testing.T) {
	c := NewPlaybackController()
	rec := &eventRecorder{}
	c.SetListener(rec.listener)

	id := c.Play("data:audio/mpeg;base64,AA==", "audio/mpeg", VoiceFemale)
	c.Stop()

	if c.IsPlaying() {
		t.Fatal("stop should release the utterance")
	}
	c.NotifyEnded(id)

	for _, e := range rec.all() {
		if e.ev != PlaybackStarted {
			t.Errorf("unexpected event after stop: %+v", e)
		}
	}
}

func TestSetVoiceStopsPlaybackAndRejectsUnknown(t *testing.T) {
	c := NewPlaybackController()
	if c.Voice() != VoiceFemale {
		t.Fatalf("default voice = %q, want female", c.Voice())
	}

	c.Play("data:audio/mpeg;base64,AA==", "audio/mpeg", VoiceFemale)
	c.SetVoice(VoiceMale)
	if c.IsPlaying() {
		t.Error("voice change must stop the live utterance")
	}
	if c.Voice() != VoiceMale {
		t.Errorf("voice = %q, want male", c.Voice())
	}

	c.SetVoice("robot")
	if c.Voice() != VoiceMale {
		t.Errorf("invalid voice must be rejected, got %q", c.Voice())
	}
}

func TestVolumeAndRateClamped(t *testing.T) {
	c := NewPlaybackController()

	c.SetVolume(1.7)
	c.SetRate(9)
	st := c.Snapshot()
	if st.Volume != 1 {
		t.Errorf("volume = %v, want 1", st.Volume)
	}
	if st.PlaybackRate != 2.0 {
		t.Errorf("rate = %v, want 2.0", st.PlaybackRate)
	}

	c.SetVolume(-0.2)
	c.SetRate(0.1)
	st = c.Snapshot()
	if st.Volume != 0 {
		t.Errorf("volume = %v, want 0", st.Volume)
	}
	if st.PlaybackRate != 0.5 {
		t.Errorf("rate = %v, want 0.5", st.PlaybackRate)
	}
}

func TestToggleRelaxationStopsPlayback(t *testing.T) {
	c := NewPlaybackController()
	c.Play("data:audio/mpeg;base64,AA==", "audio/mpeg", VoiceFemale)

	if on := c.ToggleRelaxation(); !on {
		t.Fatal("first toggle should turn relaxation on")
	}
	if c.IsPlaying() {
		t.Error("relaxation start must stop the live utterance")
	}
	if on := c.ToggleRelaxation(); on {
		t.Fatal("second toggle should turn relaxation off")
	}
}
