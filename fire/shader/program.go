// Package shader runs the fire as an ebiten Kage program. The icosphere is
// projected on the CPU to cover the screen region of the volume and the
// fragment program raymarches inside it.
package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"blaze/fire/geometry"
	"blaze/fire/uniform"
)

//go:embed fire.kage
var Source []byte

var (
	ErrNotCompiled = errors.New("shader: program not compiled")
	ErrNoScreen    = errors.New("shader: no screen")
)

// Extra uniforms the fragment program needs beyond the shared set.
const (
	InvViewProj = "InvViewProj"
	Resolution  = "Resolution"
)

var clearColor = color.RGBA{R: 51, G: 51, B: 51, A: 0xFF}

// Program is a frame.Target backed by the Kage fire program.
type Program struct {
	log *zap.Logger

	shader   *ebiten.Shader
	compErr  error
	screen   *ebiten.Image
	uniforms map[string]any

	model    mgl32.Mat4
	viewProj mgl32.Mat4

	batches []Batch
}

func New(log *zap.Logger) *Program {
	return &Program{
		log:      log.Named("shader"),
		uniforms: make(map[string]any),
		model:    mgl32.Ident4(),
		viewProj: mgl32.Ident4(),
	}
}

// Compile builds the Kage program. It must run on the ebiten goroutine.
func (p *Program) Compile() error {
	if p.shader != nil {
		return nil
	}
	s, err := ebiten.NewShader(Source)
	if err != nil {
		p.compErr = fmt.Errorf("compile fire shader: %w", err)
		return p.compErr
	}
	p.shader = s
	p.compErr = nil
	p.log.Info("shader compiled", zap.Int("bytes", len(Source)))
	return nil
}

// SetScreen sets the image the next Draw renders into.
func (p *Program) SetScreen(img *ebiten.Image) { p.screen = img }

func (p *Program) Ready() error {
	switch {
	case p.compErr != nil:
		return p.compErr
	case p.shader == nil:
		return ErrNotCompiled
	case p.screen == nil:
		return ErrNoScreen
	}
	return nil
}

// Key maps a uniform name to the Kage variable name.
func Key(name uniform.Name) string {
	return strings.TrimPrefix(string(name), "u_")
}

func (p *Program) SetFloat(name uniform.Name, v float32) { p.uniforms[Key(name)] = v }

// SetInt narrows v to a Kage int, which is 32-bit. Values wrap into
// [0, MaxInt32], so the frame counter restarts from 0 after about 414 days
// at 60 fps instead of going negative. The host counter keeps counting.
func (p *Program) SetInt(name uniform.Name, v int64) {
	p.uniforms[Key(name)] = int32(v & math.MaxInt32)
}

func (p *Program) SetVec3(name uniform.Name, v mgl32.Vec3) {
	p.uniforms[Key(name)] = []float32{v[0], v[1], v[2]}
}

func (p *Program) SetVec4(name uniform.Name, v mgl32.Vec4) {
	p.uniforms[Key(name)] = []float32{v[0], v[1], v[2], v[3]}
}

func (p *Program) SetMat4(name uniform.Name, v mgl32.Mat4) {
	switch name {
	case uniform.Model:
		p.model = v
	case uniform.ViewProj:
		p.viewProj = v
		inv := v.Inv()
		p.uniforms[InvViewProj] = inv[:]
	}
	p.uniforms[Key(name)] = v[:]
}

// Uniform returns the value that will be sent for a Kage variable.
func (p *Program) Uniform(key string) (any, bool) {
	v, ok := p.uniforms[key]
	return v, ok
}

// Draw clears the screen and runs the fire program over the projected
// meshes.
func (p *Program) Draw(meshes []*geometry.Mesh) error {
	if err := p.Ready(); err != nil {
		return err
	}
	b := p.screen.Bounds()
	w, h := b.Dx(), b.Dy()
	p.uniforms[Resolution] = []float32{float32(w), float32(h)}

	p.screen.Fill(clearColor)

	p.batches = AppendBatches(p.batches[:0], p.viewProj.Mul4(p.model), meshes, w, h)
	op := &ebiten.DrawTrianglesShaderOptions{Uniforms: p.uniforms}
	for _, bt := range p.batches {
		p.screen.DrawTrianglesShader(bt.Vertices, bt.Indices, p.shader, op)
	}
	return nil
}

// Dispose releases the compiled program.
func (p *Program) Dispose() {
	if p.shader != nil {
		p.shader.Deallocate()
		p.shader = nil
	}
}
