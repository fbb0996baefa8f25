// Package raster is a software render target for headless runs. It accepts
// the same uniforms as the GPU program and draws a flat-shaded preview of
// the fire mesh into an RGB565 framebuffer.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"blaze/fire/geometry"
	"blaze/fire/uniform"
)

var ErrNoSurface = errors.New("raster: no framebuffer")

// Surface is an RGB565 pixel buffer.
type Surface interface {
	Width() int
	Height() int
	StrideBytes() int
	Buffer() []byte
}

// ClearColor is the 0.2 gray background.
var ClearColor = RGB{51, 51, 51}

// RGB is an 8-bit color.
type RGB struct{ R, G, B uint8 }

// Target implements uniform.Sink and draws into a Surface.
type Target struct {
	surface Surface

	values map[uniform.Name]any
	depth  []float32

	draws     int
	triangles int
}

// New returns a target drawing into s. A nil surface is allowed; the
// target then reports not ready.
func New(s Surface) *Target {
	return &Target{surface: s, values: make(map[uniform.Name]any)}
}

// Ready reports whether a framebuffer is attached.
func (t *Target) Ready() error {
	if t.surface == nil || t.surface.Width() <= 0 || t.surface.Height() <= 0 {
		return ErrNoSurface
	}
	return nil
}

func (t *Target) SetFloat(name uniform.Name, v float32)   { t.values[name] = v }
func (t *Target) SetInt(name uniform.Name, v int64)       { t.values[name] = v }
func (t *Target) SetVec3(name uniform.Name, v mgl32.Vec3) { t.values[name] = v }
func (t *Target) SetVec4(name uniform.Name, v mgl32.Vec4) { t.values[name] = v }
func (t *Target) SetMat4(name uniform.Name, v mgl32.Mat4) { t.values[name] = v }

// Value returns the last value pushed for name.
func (t *Target) Value(name uniform.Name) (any, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Draws and Triangles count draw calls and rasterized triangles.
func (t *Target) Draws() int     { return t.draws }
func (t *Target) Triangles() int { return t.triangles }

func (t *Target) float(name uniform.Name) float32 {
	v, _ := t.values[name].(float32)
	return v
}

func (t *Target) vec4(name uniform.Name) mgl32.Vec4 {
	v, _ := t.values[name].(mgl32.Vec4)
	return v
}

func (t *Target) mat4(name uniform.Name) mgl32.Mat4 {
	v, ok := t.values[name].(mgl32.Mat4)
	if !ok {
		return mgl32.Ident4()
	}
	return v
}

// Draw clears the surface and rasterizes meshes with the current uniforms.
func (t *Target) Draw(meshes []*geometry.Mesh) error {
	if err := t.Ready(); err != nil {
		return err
	}
	w, h := t.surface.Width(), t.surface.Height()
	t.clear(ClearColor)
	if cap(t.depth) < w*h {
		t.depth = make([]float32, w*h)
	}
	t.depth = t.depth[:w*h]
	for i := range t.depth {
		t.depth[i] = math.MaxFloat32
	}

	mvp := t.mat4(uniform.ViewProj).Mul4(t.mat4(uniform.Model))
	eye, _ := t.values[uniform.CameraPos].(mgl32.Vec3)
	inner := t.vec4(uniform.FireInnerColor)
	outer := t.vec4(uniform.FireOuterColor)
	glow := 1 + t.float(uniform.AudioLowFreq)/255*0.5

	for _, m := range meshes {
		if m == nil {
			continue
		}
		for i := 0; i+2 < len(m.Indices); i += 3 {
			a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
			if int(max(a, b, c)) >= len(m.Positions) {
				continue
			}
			p0, p1, p2 := m.Positions[a], m.Positions[b], m.Positions[c]

			s0, ok0 := project(mvp, p0, w, h)
			s1, ok1 := project(mvp, p1, w, h)
			s2, ok2 := project(mvp, p2, w, h)
			if !ok0 || !ok1 || !ok2 {
				continue
			}
			// Counter-clockwise faces come out positive once y is flipped.
			if edge(s0, s1, s2.x, s2.y) <= 0 {
				continue
			}

			n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
			center := p0.Add(p1).Add(p2).Mul(1.0 / 3)
			view := eye.Sub(center).Normalize()
			light := 0.3 + 0.7*max(0, n.Dot(view))

			k := 0.5 + 0.5*n.Y()
			col := outer.Mul(1 - k).Add(inner.Mul(k)).Mul(light * glow)
			t.fill(w, h, s0, s1, s2, toRGB(col))
			t.triangles++
		}
	}
	t.draws++
	return nil
}

type screenPoint struct {
	x, y int
	z    float32
}

func project(mvp mgl32.Mat4, p mgl32.Vec3, w, h int) (screenPoint, bool) {
	c := mvp.Mul4x1(p.Vec4(1))
	if c.W() <= 0 {
		return screenPoint{}, false
	}
	inv := 1 / c.W()
	nx, ny, nz := c.X()*inv, c.Y()*inv, c.Z()*inv
	sx := (nx*0.5 + 0.5) * float32(w-1)
	sy := (1 - (ny*0.5 + 0.5)) * float32(h-1)
	return screenPoint{x: int(sx + 0.5), y: int(sy + 0.5), z: nz}, true
}

func edge(a, b screenPoint, x, y int) int {
	return (x-a.x)*(b.y-a.y) - (y-a.y)*(b.x-a.x)
}

func (t *Target) fill(w, h int, p0, p1, p2 screenPoint, c RGB) {
	minX := max(0, min(p0.x, p1.x, p2.x))
	maxX := min(w-1, max(p0.x, p1.x, p2.x))
	minY := max(0, min(p0.y, p1.y, p2.y))
	maxY := min(h-1, max(p0.y, p1.y, p2.y))
	if minX > maxX || minY > maxY {
		return
	}
	area := edge(p0, p1, p2.x, p2.y)
	if area == 0 {
		return
	}
	inv := 1 / float32(area)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := edge(p1, p2, x, y)
			w1 := edge(p2, p0, x, y)
			w2 := edge(p0, p1, x, y)
			// Same sign as area means inside.
			if area < 0 && (w0 > 0 || w1 > 0 || w2 > 0) {
				continue
			}
			if area > 0 && (w0 < 0 || w1 < 0 || w2 < 0) {
				continue
			}
			z := (float32(w0)*p0.z + float32(w1)*p1.z + float32(w2)*p2.z) * inv
			idx := y*w + x
			if z >= t.depth[idx] {
				continue
			}
			t.depth[idx] = z
			t.setPixel(x, y, c)
		}
	}
}

func toRGB(v mgl32.Vec4) RGB {
	ch := func(f float32) uint8 {
		return uint8(max(0, min(255, f*255)))
	}
	return RGB{ch(v.X()), ch(v.Y()), ch(v.Z())}
}

func (t *Target) clear(c RGB) {
	p := rgb565(c)
	buf, stride := t.surface.Buffer(), t.surface.StrideBytes()
	for y := 0; y < t.surface.Height(); y++ {
		row := y * stride
		for x := 0; x < t.surface.Width(); x++ {
			off := row + x*2
			if off+1 >= len(buf) {
				return
			}
			buf[off] = byte(p)
			buf[off+1] = byte(p >> 8)
		}
	}
}

func (t *Target) setPixel(x, y int, c RGB) {
	buf := t.surface.Buffer()
	off := y*t.surface.StrideBytes() + x*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	p := rgb565(c)
	buf[off] = byte(p)
	buf[off+1] = byte(p >> 8)
}

func rgb565(c RGB) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

// At decodes the pixel at (x, y).
func (t *Target) At(x, y int) RGB {
	if t.surface == nil {
		return RGB{}
	}
	buf := t.surface.Buffer()
	off := y*t.surface.StrideBytes() + x*2
	if off < 0 || off+1 >= len(buf) {
		return RGB{}
	}
	p := uint16(buf[off]) | uint16(buf[off+1])<<8
	r := uint8(p>>11) & 0x1F
	g := uint8(p>>5) & 0x3F
	b := uint8(p) & 0x1F
	return RGB{r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2}
}

// WritePNG encodes the surface.
func (t *Target) WritePNG(w io.Writer) error {
	if err := t.Ready(); err != nil {
		return err
	}
	img := image.NewRGBA(image.Rect(0, 0, t.surface.Width(), t.surface.Height()))
	for y := 0; y < t.surface.Height(); y++ {
		for x := 0; x < t.surface.Width(); x++ {
			c := t.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
		}
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
