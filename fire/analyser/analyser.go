// Package analyser computes byte frequency data over the most recent block
// of a mono PCM stream, the same way a browser AnalyserNode does: Blackman
// window, FFT, temporal smoothing, then a linear map of decibels onto 0..255.
package analyser

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ktye/fft"
)

const (
	DefaultFFTSize     = 128
	DefaultSmoothing   = 0.8
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0
)

var ErrFFTSize = errors.New("analyser: fft size must be a power of two >= 32")

// Analyser is written by the audio goroutine and read by the frame loop.
// Write may be called concurrently with the readers; the readers themselves
// must stay on one goroutine.
type Analyser struct {
	// Smoothing blends each frame's magnitudes with the previous ones.
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64

	mu      sync.Mutex
	samples []float32
	pos     int
	written uint64

	size     int
	fft      fft.FFT
	window   []float64
	buf      []complex128
	smoothed []float64
}

// New returns an Analyser with the given FFT size and default smoothing
// and decibel range.
func New(fftSize int) (*Analyser, error) {
	if fftSize < 32 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrFFTSize, fftSize)
	}
	f, err := fft.New(fftSize)
	if err != nil {
		return nil, fmt.Errorf("analyser: %w", err)
	}
	return &Analyser{
		Smoothing:   DefaultSmoothing,
		MinDecibels: DefaultMinDecibels,
		MaxDecibels: DefaultMaxDecibels,
		samples:     make([]float32, fftSize),
		size:        fftSize,
		fft:         f,
		window:      blackman(fftSize),
		buf:         make([]complex128, fftSize),
		smoothed:    make([]float64, fftSize/2),
	}, nil
}

func blackman(n int) []float64 {
	const alpha = 0.16
	a0, a1, a2 := (1-alpha)/2, 0.5, alpha/2
	w := make([]float64, n)
	for i := range w {
		x := float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(2*math.Pi*x) + a2*math.Cos(4*math.Pi*x)
	}
	return w
}

// Write appends mono samples in [-1,1]. Only the last FFTSize are kept.
func (a *Analyser) Write(mono []float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.written += uint64(len(mono))
	if len(mono) > a.size {
		mono = mono[len(mono)-a.size:]
	}
	for _, v := range mono {
		a.samples[a.pos] = v
		a.pos = (a.pos + 1) % a.size
	}
}

// Written reports how many samples have been written in total.
func (a *Analyser) Written() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.written
}

func (a *Analyser) FFTSize() int { return a.size }

// FrequencyBinCount is half the FFT size.
func (a *Analyser) FrequencyBinCount() int { return a.size / 2 }

// FloatFrequencyData fills dst with smoothed magnitudes in decibels.
func (a *Analyser) FloatFrequencyData(dst []float32) {
	a.analyse()
	for i := 0; i < len(dst) && i < len(a.smoothed); i++ {
		dst[i] = float32(decibels(a.smoothed[i]))
	}
}

// ByteFrequencyData fills dst with smoothed magnitudes mapped from
// [MinDecibels, MaxDecibels] onto [0, 255].
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.analyse()
	span := a.MaxDecibels - a.MinDecibels
	for i := 0; i < len(dst) && i < len(a.smoothed); i++ {
		db := decibels(a.smoothed[i])
		v := math.Floor(255 / span * (db - a.MinDecibels))
		switch {
		case math.IsNaN(v) || v < 0:
			dst[i] = 0
		case v > 255:
			dst[i] = 255
		default:
			dst[i] = byte(v)
		}
	}
}

// Reset forgets the stream and the smoothing history.
func (a *Analyser) Reset() {
	a.mu.Lock()
	clear(a.samples)
	a.pos = 0
	a.mu.Unlock()
	clear(a.smoothed)
}

func (a *Analyser) analyse() {
	a.mu.Lock()
	for i := 0; i < a.size; i++ {
		s := a.samples[(a.pos+i)%a.size]
		a.buf[i] = complex(float64(s)*a.window[i], 0)
	}
	a.mu.Unlock()

	a.buf = a.fft.Transform(a.buf)

	k := a.Smoothing
	if k < 0 || k > 1 {
		k = DefaultSmoothing
	}
	scale := 1 / float64(a.size)
	for i := range a.smoothed {
		re, im := real(a.buf[i]), imag(a.buf[i])
		mag := math.Hypot(re, im) * scale
		s := k*a.smoothed[i] + (1-k)*mag
		if math.IsNaN(s) || math.IsInf(s, 0) {
			s = 0
		}
		a.smoothed[i] = s
	}
}

func decibels(mag float64) float64 {
	if mag <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(mag)
}
