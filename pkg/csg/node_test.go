package csg

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxPolygons(t *testing.T, size float64) []*Polygon {
	t.Helper()
	s, err := FromGeometry(BoxGeometry(size, size, size))
	require.NoError(t, err)
	return s.Polygons()
}

// tetrahedron returns the outward-facing faces of the corner simplex
// spanned by the origin and the three unit axes.
func tetrahedron() []*Polygon {
	o := mgl64.Vec3{0, 0, 0}
	x, y, z := mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}
	return []*Polygon{
		poly(o, y, x),
		poly(o, x, z),
		poly(o, z, y),
		poly(x, y, z),
	}
}

func TestNewNodeEmpty(t *testing.T) {
	n := NewNode(nil)
	assert.Nil(t, n.Divider)
	assert.Empty(t, n.AllPolygons())
	assert.Equal(t, 1, n.Count())
	assert.Equal(t, 1, n.Depth())
}

func TestNewNodeBox(t *testing.T) {
	n := NewNode(boxPolygons(t, 1))

	require.NotNil(t, n.Divider)
	assert.Len(t, n.AllPolygons(), 12)
	// One node per face plane, each behind the one before.
	assert.Equal(t, 6, n.Count())
	assert.Equal(t, 6, n.Depth())
	assert.Len(t, n.Polygons, 2)
	assert.InDeltaSlice(t, []float64{1, 0, 0}, xs(n.Divider.Normal), 1e-12)
}

func TestBuildDividerIsACopy(t *testing.T) {
	polygons := tetrahedron()
	n := NewNode(polygons)
	assert.NotSame(t, polygons[0], n.Divider)
	polygons[0].Flip()
	assert.InDeltaSlice(t, []float64{0, 0, -1}, xs(n.Divider.Normal), 1e-12)
}

func TestAllPolygonsPreOrder(t *testing.T) {
	polygons := boxPolygons(t, 1)
	n := NewNode(polygons)
	got := n.AllPolygons()
	require.Len(t, got, len(polygons))
	for i := range polygons {
		assert.Same(t, polygons[i], got[i], "polygon %d", i)
	}
}

func TestNodeCloneIsDeep(t *testing.T) {
	n := NewNode(boxPolygons(t, 1))
	c := n.Clone()
	c.Invert()

	assert.Equal(t, n.Count(), c.Count())
	assert.InDeltaSlice(t, []float64{1, 0, 0}, xs(n.Divider.Normal), 1e-12)
	assert.InDeltaSlice(t, []float64{-1, 0, 0}, xs(c.Divider.Normal), 1e-12)
	for i, p := range c.AllPolygons() {
		assert.NotSame(t, n.AllPolygons()[i], p)
	}
}

func TestInvertTwiceRestoresTree(t *testing.T) {
	n := NewNode(boxPolygons(t, 2))
	before := n.AllPolygons()
	normals := make([]mgl64.Vec3, len(before))
	for i, p := range before {
		normals[i] = p.Normal
	}

	n.Invert()
	assert.Nil(t, n.Back, "inverted box tree should hang off the front")
	n.Invert()

	after := n.AllPolygons()
	require.Len(t, after, len(before))
	for i, p := range after {
		assert.InDeltaSlice(t, xs(normals[i]), xs(p.Normal), 1e-12)
	}
}

func TestClipPolygonsEmptyTreeKeepsInput(t *testing.T) {
	input := tetrahedron()
	out := NewNode(nil).ClipPolygons(input)
	require.Len(t, out, len(input))
	for i := range input {
		assert.Same(t, input[i], out[i])
	}
	out[0] = nil
	assert.NotNil(t, input[0], "result must not alias the input slice")
}

func TestClipPolygonsAgainstBox(t *testing.T) {
	box := NewNode(boxPolygons(t, 1))

	inside := poly(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.1, 0, 0}, mgl64.Vec3{0, 0.1, 0})
	outside := poly(mgl64.Vec3{5, 0, 0}, mgl64.Vec3{5.1, 0, 0}, mgl64.Vec3{5, 0.1, 0})
	straddling := poly(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 0.2, 0})

	assert.Empty(t, box.ClipPolygons([]*Polygon{inside}))

	out := box.ClipPolygons([]*Polygon{outside})
	require.Len(t, out, 1)
	assert.Same(t, outside, out[0])

	out = box.ClipPolygons([]*Polygon{straddling})
	require.Len(t, out, 1)
	for _, v := range out[0].Vertices {
		assert.GreaterOrEqual(t, v.X, 0.5-Epsilon)
	}
}

func TestClipToRemovesEnclosedSurface(t *testing.T) {
	big := NewNode(boxPolygons(t, 2))
	small := NewNode(boxPolygons(t, 1))

	small.ClipTo(big)
	assert.Empty(t, small.AllPolygons())

	// The outer shell is split on the inner dividers but keeps all of its
	// area.
	big2 := NewNode(boxPolygons(t, 2))
	big2.ClipTo(NewNode(boxPolygons(t, 1)))
	total := 0.0
	for _, p := range big2.AllPolygons() {
		total += area(p)
	}
	assert.InDelta(t, 24.0, total, 1e-9)
}

func TestIsConvex(t *testing.T) {
	assert.True(t, IsConvex(tetrahedron()))
	assert.True(t, IsConvex(nil))

	dented := tetrahedron()
	dented[3].Flip()
	assert.False(t, IsConvex(dented))

	// Two triangles of the same face are coplanar, not behind each other.
	assert.False(t, IsConvex(boxPolygons(t, 1)))
}

func TestBuildAddsToExistingTree(t *testing.T) {
	n := NewNode(boxPolygons(t, 1))
	far := poly(mgl64.Vec3{5, 0, 0}, mgl64.Vec3{5, 1, 0}, mgl64.Vec3{5, 0, 1})
	n.Build([]*Polygon{far})

	assert.Len(t, n.AllPolygons(), 13)
	require.NotNil(t, n.Front)
	assert.Same(t, far, n.Front.Polygons[0])
}

func TestDeepChain(t *testing.T) {
	// Parallel planes, each behind the previous, form a single chain.
	var polygons []*Polygon
	const levels = 5000
	for i := 0; i < levels; i++ {
		x := float64(levels - i)
		polygons = append(polygons, poly(mgl64.Vec3{x, 0, 0}, mgl64.Vec3{x, 1, 0}, mgl64.Vec3{x, 0, 1}))
	}
	n := NewNode(polygons)
	assert.Equal(t, levels, n.Depth())
	assert.Len(t, n.Clone().Invert().AllPolygons(), levels)
	assert.Empty(t, n.ClipPolygons([]*Polygon{poly(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{-1, 1, 0}, mgl64.Vec3{-1, 0, 1})}))
}
