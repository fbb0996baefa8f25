// Package spectrum turns analyser frequency bins into two temporally
// smoothed control signals: a slow bass band and a faster treble band.
package spectrum

import (
	"errors"
	"fmt"
)

// ErrTooFewBins reports an analyser that cannot serve the band bin indices.
var ErrTooFewBins = errors.New("spectrum: analyser exposes too few frequency bins")

// Source is a frequency analyser read once per frame. ByteFrequencyData
// copies the latest analysis into dst and never blocks.
type Source interface {
	FrequencyBinCount() int
	ByteFrequencyData(dst []byte)
}

// BandID selects one of the smoother's bands.
type BandID int

const (
	Low BandID = iota
	High

	numBands
)

func (b BandID) String() string {
	switch b {
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return fmt.Sprintf("band(%d)", int(b))
	}
}

// Band is a fixed slice of analyser bins averaged into one raw sample, and
// the length of the history window smoothing it.
type Band struct {
	Bins   []int
	Window int
}

// DefaultBands are the bass and treble slices.
var DefaultBands = [numBands]Band{
	Low:  {Bins: []int{0, 1, 2}, Window: 12},
	High: {Bins: []int{30, 35, 40}, Window: 8},
}

// Smoother owns one history ring per band.
type Smoother struct {
	bands [numBands]Band
	rings [numBands]*Ring
	means [numBands]float64
	buf   []byte
}

// NewSmoother returns a Smoother over DefaultBands.
func NewSmoother() *Smoother {
	return NewSmootherWith(DefaultBands[Low], DefaultBands[High])
}

// NewSmootherWith returns a Smoother over custom low and high bands.
func NewSmootherWith(low, high Band) *Smoother {
	s := &Smoother{bands: [numBands]Band{Low: low, High: high}}
	for i, b := range s.bands {
		s.rings[i] = NewRing(b.Window)
	}
	return s
}

// RequiredBins is the bin count a Source must expose.
func (s *Smoother) RequiredBins() int {
	need := 0
	for _, b := range s.bands {
		for _, i := range b.Bins {
			if i+1 > need {
				need = i + 1
			}
		}
	}
	return need
}

// Validate fails with ErrTooFewBins when src cannot serve every band.
func (s *Smoother) Validate(src Source) error {
	if src == nil {
		return fmt.Errorf("%w: no analyser", ErrTooFewBins)
	}
	need, have := s.RequiredBins(), src.FrequencyBinCount()
	if have < need {
		return fmt.Errorf("%w: need %d, have %d", ErrTooFewBins, need, have)
	}
	return nil
}

// PushSample appends raw to the band's history and returns the new mean.
func (s *Smoother) PushSample(band BandID, raw float64) float64 {
	r := s.rings[band]
	r.Push(raw)
	s.means[band] = r.Mean()
	return s.means[band]
}

// Sample reads src once, pushes one raw sample per band and returns the
// smoothed low and high values. It panics with ErrTooFewBins if src fails
// Validate; that is a setup error, checked before the loop starts.
func (s *Smoother) Sample(src Source) (low, high float64) {
	if err := s.Validate(src); err != nil {
		panic(err)
	}
	n := src.FrequencyBinCount()
	if cap(s.buf) < n {
		s.buf = make([]byte, n)
	}
	s.buf = s.buf[:n]
	src.ByteFrequencyData(s.buf)

	low = s.PushSample(Low, s.raw(Low))
	high = s.PushSample(High, s.raw(High))
	return low, high
}

// Mean returns the band's current smoothed value without pushing.
func (s *Smoother) Mean(band BandID) float64 { return s.means[band] }

// History returns the band's samples in insertion order.
func (s *Smoother) History(band BandID) []float64 { return s.rings[band].Slice() }

// Reset clears every history.
func (s *Smoother) Reset() {
	for i, r := range s.rings {
		r.Reset()
		s.means[i] = 0
	}
}

func (s *Smoother) raw(band BandID) float64 {
	bins := s.bands[band].Bins
	if len(bins) == 0 {
		return 0
	}
	var sum float64
	for _, i := range bins {
		sum += float64(s.buf[i])
	}
	return sum / float64(len(bins))
}
