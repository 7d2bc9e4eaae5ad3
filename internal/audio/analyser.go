package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

const (
	analyserWindow = 256 // samples per analysis window
	analyserBars   = 32  // frequency bands rendered by the visualizer
)

// Analyser taps the live capture stream and computes frequency-domain energy
// for the bar visualizer. It keeps a sliding window of the latest PCM16LE
// samples; Bars collapses the window's spectrum into analyserBars normalized
// magnitudes.
type Analyser struct {
	mu     sync.Mutex
	window []float64
}

// NewAnalyser returns an analyser with an empty window.
func NewAnalyser() *Analyser {
	return &Analyser{window: make([]float64, 0, analyserWindow)}
}

// Feed appends PCM16LE mono samples, keeping only the latest window.
func (a *Analyser) Feed(pcm []byte) {
	n := len(pcm) / 2
	if n == 0 {
		return
	}
	a.mu.Lock()
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		a.window = append(a.window, float64(s)/32768.0)
	}
	if len(a.window) > analyserWindow {
		a.window = a.window[len(a.window)-analyserWindow:]
	}
	a.mu.Unlock()
}

// Bars returns the current band magnitudes in [0,1]. It evaluates a direct DFT
// over the window; at 256 points per repaint tick that is cheap enough not to
// warrant an FFT dependency.
func (a *Analyser) Bars() []float64 {
	a.mu.Lock()
	window := make([]float64, len(a.window))
	copy(window, a.window)
	a.mu.Unlock()

	bars := make([]float64, analyserBars)
	n := len(window)
	if n == 0 {
		return bars
	}

	// Magnitudes for bins 1..analyserWindow/2, grouped into bands.
	half := analyserWindow / 2
	binsPerBar := half / analyserBars
	for bar := 0; bar < analyserBars; bar++ {
		var sum float64
		for b := 0; b < binsPerBar; b++ {
			k := bar*binsPerBar + b + 1
			var re, im float64
			for i, s := range window {
				angle := 2 * math.Pi * float64(k) * float64(i) / float64(analyserWindow)
				re += s * math.Cos(angle)
				im -= s * math.Sin(angle)
			}
			sum += math.Sqrt(re*re+im*im) / float64(n)
		}
		v := sum / float64(binsPerBar) * 4 // scale small magnitudes into view
		if v > 1 {
			v = 1
		}
		bars[bar] = v
	}
	return bars
}

// Reset drops the window.
func (a *Analyser) Reset() {
	a.mu.Lock()
	a.window = a.window[:0]
	a.mu.Unlock()
}
