package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func sinePCM(samples int, cycles float64, amplitude float64) []byte {
	b := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := amplitude * math.Sin(2*math.Pi*cycles*float64(i)/float64(samples))
		binary.LittleEndian.PutUint16(b[i*2:], uint16(int16(v*32767)))
	}
	return b
}

func TestBarsEmptyWindow(t *testing.T) {
	a := NewAnalyser()
	bars := a.Bars()
	if len(bars) != analyserBars {
		t.Fatalf("bars length = %d, want %d", len(bars), analyserBars)
	}
	for i, v := range bars {
		if v != 0 {
			t.Fatalf("bar %d = %v, want 0 for empty window", i, v)
		}
	}
}

func TestBarsDetectToneInLowBand(t *testing.T) {
	a := NewAnalyser()
	// 8 cycles over a 256-sample window lands in bin 8; bands cover bins
	// 1-4, 5-8, 9-12, ... so the tone belongs to band 1.
	a.Feed(sinePCM(analyserWindow, 8, 0.9))

	bars := a.Bars()
	peak := 0
	for i, v := range bars {
		if v > bars[peak] {
			peak = i
		}
		if v < 0 || v > 1 {
			t.Fatalf("bar %d = %v out of [0,1]", i, v)
		}
	}
	if peak != 1 {
		t.Errorf("peak band = %d, want 1", peak)
	}
	if bars[peak] == 0 {
		t.Error("tone should produce non-zero energy")
	}
}

func TestFeedKeepsLatestWindow(t *testing.T) {
	a := NewAnalyser()
	// silence, then a full window of tone; only the tone should remain
	a.Feed(make([]byte, analyserWindow*2))
	a.Feed(sinePCM(analyserWindow, 8, 0.9))

	bars := a.Bars()
	var total float64
	for _, v := range bars {
		total += v
	}
	if total == 0 {
		t.Fatal("tone window displaced by earlier silence")
	}

	a.Reset()
	bars = a.Bars()
	for i, v := range bars {
		if v != 0 {
			t.Fatalf("bar %d = %v after reset, want 0", i, v)
		}
	}
}
