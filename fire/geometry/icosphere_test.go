package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIcosphereCounts(t *testing.T) {
	for _, tc := range []struct {
		level, verts, faces int
	}{
		{0, 12, 20},
		{1, 42, 80},
		{2, 162, 320},
		{5, 10242, 20480},
	} {
		s := NewIcosphere(mgl32.Vec3{}, 1, tc.level)
		m := s.Meshes()[0]
		assert.Len(t, m.Positions, tc.verts, "level %d", tc.level)
		assert.Len(t, m.Normals, tc.verts, "level %d", tc.level)
		assert.Equal(t, tc.faces, m.Triangles(), "level %d", tc.level)
		assert.Equal(t, tc.verts, VertexCount(tc.level))
		assert.Equal(t, tc.faces, FaceCount(tc.level))
	}
}

func TestIcosphereOnSphere(t *testing.T) {
	center := mgl32.Vec3{1, 2, 3}
	s := NewIcosphere(center, 2.5, 2)
	m := s.Meshes()[0]
	for i, p := range m.Positions {
		assert.InDelta(t, 2.5, p.Sub(center).Len(), 1e-5, "vertex %d", i)
	}
	for _, idx := range m.Indices {
		require.Less(t, int(idx), len(m.Positions))
	}
}

func TestRegenerateClampsAndCounts(t *testing.T) {
	s := NewIcosphere(mgl32.Vec3{}, 1, 1)
	assert.Equal(t, 1, s.Generations())

	s.Regenerate(-3)
	assert.Equal(t, MinLevel, s.Level())

	s.Regenerate(2)
	assert.Equal(t, 2, s.Level())
	assert.Equal(t, 3, s.Generations())
	assert.Len(t, s.Meshes(), 1)
}
