package csg

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// geometryBuilder appends unshared triangles to a Geometry.
type geometryBuilder struct {
	g Geometry
}

func (b *geometryBuilder) vertex(p mgl64.Vec3) int {
	b.g.Vertices = append(b.g.Vertices, p)
	return len(b.g.Vertices) - 1
}

func (b *geometryBuilder) triangle(p [3]mgl64.Vec3, normals [3]mgl64.Vec3, uvs [3]mgl64.Vec2) {
	f := Face{
		A:             b.vertex(p[0]),
		B:             b.vertex(p[1]),
		C:             b.vertex(p[2]),
		Normal:        faceNormal(p[0], p[1], p[2]),
		VertexNormals: normals,
		UVs:           uvs,
	}
	b.g.Faces = append(b.g.Faces, f)
}

// quad adds the counter-clockwise quad p00, p10, p11, p01 as two
// triangles sharing the p00-p11 diagonal.
func (b *geometryBuilder) quad(p00, p10, p11, p01 mgl64.Vec3, n [4]mgl64.Vec3) {
	uv00, uv10, uv11, uv01 := mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, mgl64.Vec2{1, 1}, mgl64.Vec2{0, 1}
	b.triangle([3]mgl64.Vec3{p00, p10, p11}, [3]mgl64.Vec3{n[0], n[1], n[2]}, [3]mgl64.Vec2{uv00, uv10, uv11})
	b.triangle([3]mgl64.Vec3{p00, p11, p01}, [3]mgl64.Vec3{n[0], n[2], n[3]}, [3]mgl64.Vec2{uv00, uv11, uv01})
}

// BoxGeometry returns an axis-aligned box of the given width (X), height
// (Y) and depth (Z) centred on the origin: six faces of two triangles
// each, wound counter-clockwise seen from outside.
func BoxGeometry(width, height, depth float64) *Geometry {
	hw, hh, hd := width/2, height/2, depth/2
	faces := []struct {
		n, u, v mgl64.Vec3
	}{
		{mgl64.Vec3{hw, 0, 0}, mgl64.Vec3{0, 0, -hd}, mgl64.Vec3{0, hh, 0}},
		{mgl64.Vec3{-hw, 0, 0}, mgl64.Vec3{0, 0, hd}, mgl64.Vec3{0, hh, 0}},
		{mgl64.Vec3{0, hh, 0}, mgl64.Vec3{hw, 0, 0}, mgl64.Vec3{0, 0, -hd}},
		{mgl64.Vec3{0, -hh, 0}, mgl64.Vec3{hw, 0, 0}, mgl64.Vec3{0, 0, hd}},
		{mgl64.Vec3{0, 0, hd}, mgl64.Vec3{hw, 0, 0}, mgl64.Vec3{0, hh, 0}},
		{mgl64.Vec3{0, 0, -hd}, mgl64.Vec3{-hw, 0, 0}, mgl64.Vec3{0, hh, 0}},
	}

	var b geometryBuilder
	for _, f := range faces {
		n := f.n.Normalize()
		normals := [4]mgl64.Vec3{n, n, n, n}
		b.quad(
			f.n.Sub(f.u).Sub(f.v),
			f.n.Add(f.u).Sub(f.v),
			f.n.Add(f.u).Add(f.v),
			f.n.Sub(f.u).Add(f.v),
			normals,
		)
	}
	return &b.g
}

// CylinderGeometry returns a closed cylinder of the given radius and
// height centred on the origin with its axis along Y. The curved side
// is approximated by segments flat quads. Fewer than three segments are
// raised to three.
func CylinderGeometry(radius, height float64, segments int) *Geometry {
	if segments < 3 {
		segments = 3
	}
	hh := height / 2
	ring := func(i int, y float64) (mgl64.Vec3, mgl64.Vec3) {
		theta := 2 * math.Pi * float64(i%segments) / float64(segments)
		s, c := math.Sincos(theta)
		return mgl64.Vec3{radius * s, y, radius * c}, mgl64.Vec3{s, 0, c}
	}

	var b geometryBuilder
	up, down := mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -1, 0}
	top, bottom := mgl64.Vec3{0, hh, 0}, mgl64.Vec3{0, -hh, 0}
	for i := 0; i < segments; i++ {
		b0, n0 := ring(i, -hh)
		b1, n1 := ring(i+1, -hh)
		t0, _ := ring(i, hh)
		t1, _ := ring(i+1, hh)

		b.quad(b0, b1, t1, t0, [4]mgl64.Vec3{n0, n1, n1, n0})

		center := mgl64.Vec2{0.5, 0.5}
		uv0 := mgl64.Vec2{0.5 + 0.5*n0[0], 0.5 + 0.5*n0[2]}
		uv1 := mgl64.Vec2{0.5 + 0.5*n1[0], 0.5 + 0.5*n1[2]}
		b.triangle([3]mgl64.Vec3{top, t0, t1}, [3]mgl64.Vec3{up, up, up}, [3]mgl64.Vec2{center, uv0, uv1})
		b.triangle([3]mgl64.Vec3{bottom, b1, b0}, [3]mgl64.Vec3{down, down, down}, [3]mgl64.Vec2{center, uv1, uv0})
	}
	return &b.g
}
