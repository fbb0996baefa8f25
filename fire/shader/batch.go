package shader

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"

	"blaze/fire/geometry"
)

// MaxBatchVertices is the most vertices one uint16-indexed draw can address.
const MaxBatchVertices = math.MaxUint16

// Batch is one DrawTrianglesShader call.
type Batch struct {
	Vertices []ebiten.Vertex
	Indices  []uint16
}

// AppendBatches projects the front-facing triangles of meshes into screen
// space and appends them to dst, splitting whenever a batch would exceed
// MaxBatchVertices. Triangles with a vertex behind the eye are dropped.
func AppendBatches(dst []Batch, mvp mgl32.Mat4, meshes []*geometry.Mesh, w, h int) []Batch {
	var (
		cur   *Batch
		local map[uint32]uint16
	)
	start := func() {
		dst = append(dst, Batch{})
		cur = &dst[len(dst)-1]
		local = make(map[uint32]uint16)
	}

	for _, m := range meshes {
		if m == nil {
			continue
		}
		screen := make([]mgl32.Vec2, len(m.Positions))
		visible := make([]bool, len(m.Positions))
		for i, pos := range m.Positions {
			screen[i], visible[i] = toScreen(mvp, pos, w, h)
		}
		local = nil

		for i := 0; i+2 < len(m.Indices); i += 3 {
			tri := [3]uint32{m.Indices[i], m.Indices[i+1], m.Indices[i+2]}
			if int(max(tri[0], tri[1], tri[2])) >= len(m.Positions) {
				continue
			}
			if !visible[tri[0]] || !visible[tri[1]] || !visible[tri[2]] {
				continue
			}
			if !frontFacing(screen[tri[0]], screen[tri[1]], screen[tri[2]]) {
				continue
			}

			if local == nil {
				start()
			}
			added := 0
			for _, v := range tri {
				if _, ok := local[v]; !ok {
					added++
				}
			}
			if len(cur.Vertices)+added > MaxBatchVertices {
				start()
			}

			for _, v := range tri {
				idx, ok := local[v]
				if !ok {
					idx = uint16(len(cur.Vertices))
					local[v] = idx
					s := screen[v]
					cur.Vertices = append(cur.Vertices, ebiten.Vertex{
						DstX: s[0], DstY: s[1],
						ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
					})
				}
				cur.Indices = append(cur.Indices, idx)
			}
		}
	}
	return dst
}

func toScreen(mvp mgl32.Mat4, p mgl32.Vec3, w, h int) (mgl32.Vec2, bool) {
	c := mvp.Mul4x1(p.Vec4(1))
	if c.W() <= 0 {
		return mgl32.Vec2{}, false
	}
	x := (c.X()/c.W()*0.5 + 0.5) * float32(w)
	y := (1 - (c.Y()/c.W()*0.5 + 0.5)) * float32(h)
	return mgl32.Vec2{x, y}, true
}

// Screen y points down, so counter-clockwise faces have a negative
// signed area here.
func frontFacing(a, b, c mgl32.Vec2) bool {
	area := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
	return area < 0
}
