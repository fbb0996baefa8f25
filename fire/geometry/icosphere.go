// Package geometry provides the mesh the fire is drawn on: a subdivided
// icosahedron whose level follows the tessellation control.
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinLevel = 0
	MaxLevel = 8
)

// Mesh is an indexed triangle list.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// Triangles returns the triangle count.
func (m *Mesh) Triangles() int { return len(m.Indices) / 3 }

// Icosphere is a sphere built by repeatedly splitting the faces of an
// icosahedron and pushing the new vertices onto the sphere.
type Icosphere struct {
	Center mgl32.Vec3
	Radius float32

	level       int
	mesh        *Mesh
	generations int
}

// NewIcosphere builds the mesh at level.
func NewIcosphere(center mgl32.Vec3, radius float32, level int) *Icosphere {
	s := &Icosphere{Center: center, Radius: radius}
	s.Regenerate(level)
	return s
}

// Regenerate rebuilds the mesh at level, clamped to [MinLevel, MaxLevel].
func (s *Icosphere) Regenerate(level int) {
	level = max(MinLevel, min(MaxLevel, level))
	s.level = level
	s.mesh = buildIcosphere(s.Center, s.Radius, level)
	s.generations++
}

func (s *Icosphere) Level() int { return s.level }

// Generations counts how many times the mesh has been built.
func (s *Icosphere) Generations() int { return s.generations }

// Meshes returns the drawable set.
func (s *Icosphere) Meshes() []*Mesh { return []*Mesh{s.mesh} }

// VertexCount and FaceCount give the mesh size for a level.
func VertexCount(level int) int { return 10*pow4(level) + 2 }
func FaceCount(level int) int   { return 20 * pow4(level) }

func pow4(n int) int { return 1 << (2 * n) }

func buildIcosphere(center mgl32.Vec3, radius float32, level int) *Mesh {
	t := float32((1 + math.Sqrt(5)) / 2)
	unit := []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range unit {
		unit[i] = unit[i].Normalize()
	}
	faces := []uint32{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}

	verts := make([]mgl32.Vec3, 0, VertexCount(level))
	verts = append(verts, unit...)

	for l := 0; l < level; l++ {
		mid := make(map[[2]uint32]uint32, len(faces)/2)
		midpoint := func(a, b uint32) uint32 {
			key := [2]uint32{min(a, b), max(a, b)}
			if i, ok := mid[key]; ok {
				return i
			}
			p := verts[a].Add(verts[b]).Normalize()
			verts = append(verts, p)
			i := uint32(len(verts) - 1)
			mid[key] = i
			return i
		}

		next := make([]uint32, 0, len(faces)*4)
		for f := 0; f+2 < len(faces); f += 3 {
			a, b, c := faces[f], faces[f+1], faces[f+2]
			ab, bc, ca := midpoint(a, b), midpoint(b, c), midpoint(c, a)
			next = append(next,
				a, ab, ca,
				b, bc, ab,
				c, ca, bc,
				ab, bc, ca,
			)
		}
		faces = next
	}

	m := &Mesh{
		Positions: make([]mgl32.Vec3, len(verts)),
		Normals:   verts,
		Indices:   faces,
	}
	for i, n := range verts {
		m.Positions[i] = center.Add(n.Mul(radius))
	}
	return m
}
