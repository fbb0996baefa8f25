package hal

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"go.uber.org/zap"
)

const trackVolume = 0.5

// hostAudio plays a looping track through ebiten's audio context. In
// stepped mode no device is opened; the headless runner advances the
// stream by a fixed number of frames per tick.
type hostAudio struct {
	mu  sync.Mutex
	log *zap.Logger

	sampleRate int
	stepped    bool

	src     *tapReader
	ctx     *audio.Context
	player  *audio.Player
	playing bool

	tap     func(mono []float32)
	scratch []byte
}

func newHostAudio(sampleRate int, log *zap.Logger) *hostAudio {
	return &hostAudio{sampleRate: sampleRate, log: log}
}

func (a *hostAudio) SampleRate() int { return a.sampleRate }

func (a *hostAudio) Load(name string, r io.ReadSeeker) error {
	var (
		s interface {
			io.ReadSeeker
			Length() int64
		}
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		s, err = mp3.DecodeWithSampleRate(a.sampleRate, r)
	case ".wav":
		s, err = wav.DecodeWithSampleRate(a.sampleRate, r)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.closePlayerLocked()
	a.src = &tapReader{a: a, src: audio.NewInfiniteLoop(s, s.Length())}
	a.log.Info("track loaded", zap.String("name", name), zap.Int64("bytes", s.Length()))
	return nil
}

func (a *hostAudio) Loaded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.src != nil
}

func (a *hostAudio) Play() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.src == nil {
		return ErrNoTrack
	}
	a.playing = true
	if a.stepped {
		return nil
	}
	if a.player == nil {
		if a.ctx == nil {
			if a.ctx = audio.CurrentContext(); a.ctx == nil {
				a.ctx = audio.NewContext(a.sampleRate)
			}
		}
		p, err := a.ctx.NewPlayer(a.src)
		if err != nil {
			a.playing = false
			return fmt.Errorf("audio player: %w", err)
		}
		p.SetBufferSize(100 * time.Millisecond)
		p.SetVolume(trackVolume)
		a.player = p
	}
	a.player.Play()
	return nil
}

func (a *hostAudio) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playing = false
	if a.player != nil {
		a.player.Pause()
	}
}

func (a *hostAudio) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.player != nil {
		return a.player.IsPlaying()
	}
	return a.playing
}

func (a *hostAudio) SetTap(fn func(mono []float32)) {
	a.mu.Lock()
	a.tap = fn
	a.mu.Unlock()
}

// advance reads frames stereo frames in stepped mode.
func (a *hostAudio) advance(frames int) error {
	a.mu.Lock()
	src := a.src
	on := a.stepped && a.playing
	if cap(a.scratch) < frames*4 {
		a.scratch = make([]byte, frames*4)
	}
	buf := a.scratch[:frames*4]
	a.mu.Unlock()

	if !on || src == nil || frames <= 0 {
		return nil
	}
	if _, err := io.ReadFull(src, buf); err != nil {
		return fmt.Errorf("advance audio: %w", err)
	}
	return nil
}

func (a *hostAudio) closePlayerLocked() {
	if a.player == nil {
		return
	}
	if err := a.player.Close(); err != nil {
		a.log.Warn("close player", zap.Error(err))
	}
	a.player = nil
}

// tapReader forwards every block read by the player to the tap as mono
// float samples. Ebiten streams are 16-bit little-endian stereo.
type tapReader struct {
	a    *hostAudio
	src  io.Reader
	mono []float32
}

func (r *tapReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	frames := n / 4
	if frames == 0 {
		return n, err
	}

	r.a.mu.Lock()
	tap := r.a.tap
	r.a.mu.Unlock()
	if tap == nil {
		return n, err
	}

	if cap(r.mono) < frames {
		r.mono = make([]float32, frames)
	}
	r.mono = r.mono[:frames]
	for i := range frames {
		l := int16(uint16(p[i*4]) | uint16(p[i*4+1])<<8)
		rr := int16(uint16(p[i*4+2]) | uint16(p[i*4+3])<<8)
		r.mono[i] = (float32(l) + float32(rr)) / 2 / 32768
	}
	tap(r.mono)
	return n, err
}
