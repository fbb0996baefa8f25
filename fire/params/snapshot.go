// Package params holds the user-adjustable fire parameters: the value-type
// Snapshot compared each frame, the live Controls that input mutates, and
// YAML presets with hot reload.
package params

import (
	"fmt"
	"strings"
)

// RGB is a color with 0..255 channels. Channels are floats because the
// defaults sit between integer steps.
type RGB [3]float64

// Snapshot is every adjustable parameter at one instant. It is a plain
// value: arrays compare by content, so == is a deep comparison.
type Snapshot struct {
	SmokeInner  RGB `yaml:"smokeInner"`
	SmokeMiddle RGB `yaml:"smokeMiddle"`
	SmokeOuter  RGB `yaml:"smokeOuter"`
	FireInner   RGB `yaml:"fireInner"`
	FireMiddle  RGB `yaml:"fireMiddle"`
	FireOuter   RGB `yaml:"fireOuter"`

	BurnSpeed   float64 `yaml:"burnSpeed"`
	FireDensity float64 `yaml:"fireDensity"`

	Tessellation int `yaml:"tessellation"`

	// AudioPlaying is playback state, not part of a preset.
	AudioPlaying bool `yaml:"-"`
}

// Defaults returns the startup parameters.
func Defaults() Snapshot {
	return Snapshot{
		SmokeInner:  RGB{103, 20, 255},
		SmokeMiddle: RGB{50, 0, 229},
		SmokeOuter:  RGB{0, 0.15, 255},
		FireInner:   RGB{255, 102, 0},
		FireMiddle:  RGB{229.5, 25.5, 0},
		FireOuter:   RGB{25.5, 0, 76.5},

		BurnSpeed:    1.5,
		FireDensity:  1.0,
		Tessellation: 5,
	}
}

// Range bounds a numeric control.
type Range struct {
	Min, Max, Step float64
}

func (r Range) Clamp(v float64) float64 {
	return max(r.Min, min(r.Max, v))
}

var (
	TessellationRange = Range{Min: 0, Max: 8, Step: 1}
	BurnSpeedRange    = Range{Min: 0.5, Max: 3, Step: 0.1}
	FireDensityRange  = Range{Min: 0.8, Max: 1.2, Step: 0.01}
	ChannelRange      = Range{Min: 0, Max: 255, Step: 1}
)

// Clamp forces every field into its control range.
func (s Snapshot) Clamp() Snapshot {
	for _, f := range ColorFields {
		c := s.Color(f)
		for i := range c {
			c[i] = ChannelRange.Clamp(c[i])
		}
	}
	s.BurnSpeed = BurnSpeedRange.Clamp(s.BurnSpeed)
	s.FireDensity = FireDensityRange.Clamp(s.FireDensity)
	s.Tessellation = int(TessellationRange.Clamp(float64(s.Tessellation)))
	return s
}

// Color returns a pointer to the color field f, or nil when f is not a
// color.
func (s *Snapshot) Color(f Field) *RGB {
	switch f {
	case SmokeInner:
		return &s.SmokeInner
	case SmokeMiddle:
		return &s.SmokeMiddle
	case SmokeOuter:
		return &s.SmokeOuter
	case FireInner:
		return &s.FireInner
	case FireMiddle:
		return &s.FireMiddle
	case FireOuter:
		return &s.FireOuter
	}
	return nil
}

// Field names one Snapshot field.
type Field uint8

const (
	SmokeInner Field = iota
	SmokeMiddle
	SmokeOuter
	FireInner
	FireMiddle
	FireOuter
	BurnSpeed
	FireDensity
	Tessellation
	AudioPlaying

	NumFields
)

// ColorFields lists the color fields in declaration order.
var ColorFields = [...]Field{SmokeInner, SmokeMiddle, SmokeOuter, FireInner, FireMiddle, FireOuter}

var fieldNames = [NumFields]string{
	SmokeInner:   "smokeInner",
	SmokeMiddle:  "smokeMiddle",
	SmokeOuter:   "smokeOuter",
	FireInner:    "fireInner",
	FireMiddle:   "fireMiddle",
	FireOuter:    "fireOuter",
	BurnSpeed:    "burnSpeed",
	FireDensity:  "fireDensity",
	Tessellation: "tessellation",
	AudioPlaying: "audioPlaying",
}

func (f Field) String() string {
	if f < NumFields {
		return fieldNames[f]
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

// FieldByName resolves the yaml/script name of a field.
func FieldByName(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

// FieldSet is a bit set of fields.
type FieldSet uint16

func (s FieldSet) Has(f Field) bool          { return s&(1<<f) != 0 }
func (s FieldSet) With(f Field) FieldSet     { return s | 1<<f }
func (s FieldSet) Empty() bool               { return s == 0 }
func (s FieldSet) Union(o FieldSet) FieldSet { return s | o }

// AllFields has every field set.
const AllFields FieldSet = 1<<NumFields - 1

func (s FieldSet) String() string {
	if s == 0 {
		return "none"
	}
	var names []string
	for f := Field(0); f < NumFields; f++ {
		if s.Has(f) {
			names = append(names, f.String())
		}
	}
	return strings.Join(names, ",")
}
