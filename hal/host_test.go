package hal

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestFramebufferClearAndResize(t *testing.T) {
	fb := newHostFramebuffer(4, 2)
	assert.Equal(t, 8, fb.StrideBytes())
	assert.Len(t, fb.Buffer(), 16)

	fb.ClearRGB(0xFF, 0xFF, 0xFF)
	dst := make([]byte, 4*2*4)
	toRGBA(dst, fb.Buffer(), false)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, dst[:4])

	fb.resize(6, 3)
	assert.Equal(t, 6, fb.Width())
	assert.Equal(t, 3, fb.Height())
	assert.Len(t, fb.Buffer(), 36)
}

func TestToRGBAKeysBlack(t *testing.T) {
	src := []byte{0, 0, 0x00, 0xF8}
	dst := make([]byte, 8)
	toRGBA(dst, src, true)
	assert.Equal(t, []byte{0, 0, 0, 0}, dst[:4])
	assert.Equal(t, []byte{0xFF, 0, 0, 0xFF}, dst[4:])
}

func TestResizeKeepsLatest(t *testing.T) {
	d := &hostDisplay{resize: make(chan Size, 1)}
	d.notify(Size{100, 50})
	d.notify(Size{100, 50})
	d.notify(Size{200, 80})

	assert.Equal(t, Size{200, 80}, <-d.Resize())
	select {
	case s := <-d.Resize():
		t.Fatalf("unexpected size %v", s)
	default:
	}
}

func TestPointerDrag(t *testing.T) {
	p := newHostPointer()
	p.drag(true, 10, 10)
	p.drag(true, 14, 7)
	p.drag(true, 14, 7)
	p.drag(false, 30, 30)
	p.drag(true, 50, 50)

	require.Len(t, p.ch, 1)
	assert.Equal(t, PointerEvent{DX: 4, DY: -3}, <-p.Events())
}

func TestReadKeys(t *testing.T) {
	kbd := newHostKeyboard()
	in := strings.NewReader("r\x1b[A\x1b[D \r\x7f")
	err := readKeys(context.Background(), in, kbd)
	require.Error(t, err)

	var got []KeyEvent
	for len(kbd.ch) > 0 {
		got = append(got, <-kbd.ch)
	}
	assert.Equal(t, []KeyEvent{
		{Press: true, Rune: 'r'},
		{Code: KeyUp, Press: true},
		{Code: KeyLeft, Press: true},
		{Press: true, Rune: ' '},
		{Code: KeyEnter, Press: true},
		{Code: KeyBackspace, Press: true},
	}, got)
}

// stereoWAV builds a 16-bit stereo PCM file.
func stereoWAV(rate int, frames [][2]int16) []byte {
	var data bytes.Buffer
	for _, f := range frames {
		_ = binary.Write(&data, binary.LittleEndian, f)
	}
	var b bytes.Buffer
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36+data.Len()))
	b.WriteString("WAVEfmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1))
	_ = binary.Write(&b, binary.LittleEndian, uint16(2))
	_ = binary.Write(&b, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&b, binary.LittleEndian, uint32(rate*4))
	_ = binary.Write(&b, binary.LittleEndian, uint16(4))
	_ = binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(data.Len()))
	b.Write(data.Bytes())
	return b.Bytes()
}

func TestSteppedAudioTapsLoopedTrack(t *testing.T) {
	a := newHostAudio(8000, zaptest.NewLogger(t))
	a.stepped = true

	assert.ErrorIs(t, a.Play(), ErrNoTrack)
	assert.ErrorIs(t, a.Load("track.ogg", bytes.NewReader(nil)), ErrUnsupported)

	frames := make([][2]int16, 100)
	for i := range frames {
		frames[i] = [2]int16{16384, 16384}
	}
	require.NoError(t, a.Load("track.WAV", bytes.NewReader(stereoWAV(8000, frames))))
	require.True(t, a.Loaded())

	var got []float32
	a.SetTap(func(mono []float32) { got = append(got, mono...) })

	require.NoError(t, a.advance(50))
	assert.Empty(t, got, "paused track is not advanced")

	require.NoError(t, a.Play())
	assert.True(t, a.Playing())
	require.NoError(t, a.advance(150))
	require.Len(t, got, 150, "loop wraps past the end of the track")
	for _, v := range got {
		assert.InDelta(t, 0.5, v, 1e-3)
	}

	a.Pause()
	assert.False(t, a.Playing())
}

func TestRunHeadlessStopsAfterTicks(t *testing.T) {
	var steps int
	var seen Size
	err := RunHeadless(context.Background(), HeadlessConfig{
		Config: Config{Width: 64, Height: 32},
		Hz:     60,
		Ticks:  5,
	}, zap.NewNop(), func(h HAL) (func() error, error) {
		assert.Nil(t, h.Display().Screen())
		assert.Equal(t, 64, h.Display().Framebuffer().Width())
		seen = <-h.Display().Resize()
		return func() error { steps++; return nil }, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, steps)
	assert.Equal(t, Size{64, 32}, seen)
}

func TestRunHeadlessQuitAndErrors(t *testing.T) {
	cfg := HeadlessConfig{Hz: 60}

	err := RunHeadless(context.Background(), cfg, zap.NewNop(), func(HAL) (func() error, error) {
		n := 0
		return func() error {
			n++
			if n == 3 {
				return ErrQuit
			}
			return nil
		}, nil
	})
	assert.NoError(t, err)

	boom := errors.New("boom")
	err = RunHeadless(context.Background(), cfg, zap.NewNop(), func(HAL) (func() error, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = RunHeadless(ctx, cfg, zap.NewNop(), func(HAL) (func() error, error) {
		return func() error { return nil }, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
