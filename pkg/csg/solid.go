package csg

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Solid is a BSP tree together with the affine transform of the mesh it
// was built from. Polygons in the tree are in world space; ToGeometry
// maps them back into the mesh's local space.
type Solid struct {
	tree   *Node
	matrix mgl64.Mat4
}

// FromGeometry builds a Solid from g with the identity transform.
func FromGeometry(g *Geometry) (*Solid, error) {
	return FromMesh(g, mgl64.Ident4())
}

// FromMesh builds a Solid from g placed in the world by m. Vertices are
// transformed into world space and m is kept for ToGeometry. Zero-area
// triangles are skipped.
func FromMesh(g *Geometry, m mgl64.Mat4) (*Solid, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil geometry", ErrUnsupportedGeometry)
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	if err := checkAffine(m); err != nil {
		return nil, err
	}

	normals := normalMatrix(m)
	mirror := m.Det() < 0
	polygons := make([]*Polygon, 0, len(g.Faces))
	skipped := 0
	for _, f := range g.Faces {
		vertices := make([]*Vertex, 3)
		for k, idx := range [3]int{f.A, f.B, f.C} {
			p := g.Vertices[idx]
			v := NewVertex(p[0], p[1], p[2], f.VertexNormals[k], f.UVs[k]).ApplyMatrix4(m)
			v.applyNormalMatrix(normals)
			vertices[k] = v
		}
		if mirror {
			vertices[0], vertices[2] = vertices[2], vertices[0]
		}
		poly := NewPolygon(vertices)
		if poly.IsDegenerate() {
			skipped++
			continue
		}
		polygons = append(polygons, poly)
	}
	if skipped > 0 {
		slog.Debug("csg: skipped degenerate triangles", "skipped", skipped, "kept", len(polygons))
	}
	return &Solid{tree: NewNode(polygons), matrix: m}, nil
}

// FromTree wraps an existing tree. The tree is owned by the Solid from
// then on.
func FromTree(tree *Node, m mgl64.Mat4) (*Solid, error) {
	if tree == nil {
		tree = &Node{}
	}
	if err := checkAffine(m); err != nil {
		return nil, err
	}
	return &Solid{tree: tree, matrix: m}, nil
}

// Tree returns the solid's BSP tree. It is shared, not copied.
func (s *Solid) Tree() *Node {
	return s.tree
}

// Matrix returns the transform carried by the solid.
func (s *Solid) Matrix() mgl64.Mat4 {
	return s.matrix
}

// Clone returns a deep copy of s.
func (s *Solid) Clone() *Solid {
	return &Solid{tree: s.tree.Clone(), matrix: s.matrix}
}

// Polygons returns every polygon of the solid in world space. The
// polygons are owned by the solid.
func (s *Solid) Polygons() []*Polygon {
	return s.tree.AllPolygons()
}

// IsEmpty reports whether the solid has no surface.
func (s *Solid) IsEmpty() bool {
	empty := true
	s.tree.walk(func(n *Node) {
		if len(n.Polygons) > 0 {
			empty = false
		}
	})
	return empty
}

// empty returns a solid with no surface carrying s's transform.
func (s *Solid) empty() *Solid {
	return &Solid{tree: &Node{}, matrix: s.matrix}
}

// ---------------------------------------------------------------------------
// Boolean operations
// ---------------------------------------------------------------------------
//
// Each operation clones both trees and applies a fixed sequence of
// invert, clip and build steps to the clones. The order of the steps is
// significant. The result carries the receiver's transform.
//
// A solid without polygons may still hold dividers that would carve
// space as a clipper, so empty operands are resolved up front.

// Subtract returns s minus other.
func (s *Solid) Subtract(other *Solid) *Solid {
	switch {
	case s.IsEmpty():
		return s.empty()
	case other.IsEmpty():
		return s.Clone()
	}
	a, b := s.tree.Clone(), other.tree.Clone()
	a.Invert()
	a.ClipTo(b)
	b.ClipTo(a)
	b.Invert()
	b.ClipTo(a)
	b.Invert()
	a.Build(b.AllPolygons())
	a.Invert()
	return &Solid{tree: a, matrix: s.matrix}
}

// Union returns the union of s and other.
func (s *Solid) Union(other *Solid) *Solid {
	switch {
	case other.IsEmpty():
		return s.Clone()
	case s.IsEmpty():
		return &Solid{tree: other.tree.Clone(), matrix: s.matrix}
	}
	a, b := s.tree.Clone(), other.tree.Clone()
	a.ClipTo(b)
	b.ClipTo(a)
	b.Invert()
	b.ClipTo(a)
	b.Invert()
	a.Build(b.AllPolygons())
	return &Solid{tree: a, matrix: s.matrix}
}

// Intersect returns the intersection of s and other.
func (s *Solid) Intersect(other *Solid) *Solid {
	if s.IsEmpty() || other.IsEmpty() {
		return s.empty()
	}
	a, b := s.tree.Clone(), other.tree.Clone()
	a.Invert()
	b.ClipTo(a)
	b.Invert()
	a.ClipTo(b)
	b.ClipTo(a)
	a.Build(b.AllPolygons())
	a.Invert()
	return &Solid{tree: a, matrix: s.matrix}
}

// Transform returns a copy of s with m baked into every polygon and
// divider. The carried transform is unchanged. Mirroring transforms
// reverse the winding so normals keep pointing outward.
func (s *Solid) Transform(m mgl64.Mat4) (*Solid, error) {
	if err := checkAffine(m); err != nil {
		return nil, err
	}
	normals := normalMatrix(m)
	mirror := m.Det() < 0
	c := s.Clone()
	c.tree.walk(func(n *Node) {
		if n.Divider != nil {
			n.Divider.transform(m, normals, mirror)
		}
		for _, p := range n.Polygons {
			p.transform(m, normals, mirror)
		}
	})
	return c, nil
}

// ---------------------------------------------------------------------------
// Output
// ---------------------------------------------------------------------------

// ToGeometry triangulates the solid into local space. Each polygon is
// fanned from its first vertex. Vertices with identical coordinates are
// shared between faces. The tree is not modified.
func (s *Solid) ToGeometry() *Geometry {
	inv := s.matrix.Inv()
	normals := normalMatrix(inv)
	mirror := s.matrix.Det() < 0

	g := &Geometry{}
	index := make(map[mgl64.Vec3]int)
	lookup := func(v *Vertex) int {
		p := v.Vec3()
		if i, ok := index[p]; ok {
			return i
		}
		i := len(g.Vertices)
		g.Vertices = append(g.Vertices, p)
		index[p] = i
		return i
	}

	for _, poly := range s.tree.AllPolygons() {
		vertices := make([]*Vertex, len(poly.Vertices))
		for i, v := range poly.Vertices {
			c := v.Clone().ApplyMatrix4(inv)
			c.applyNormalMatrix(normals)
			vertices[i] = c
		}
		if mirror {
			for i, j := 0, len(vertices)-1; i < j; i, j = i+1, j-1 {
				vertices[i], vertices[j] = vertices[j], vertices[i]
			}
		}
		normal := normals.Mul3x1(poly.Normal)
		if l := normal.Len(); l > 0 {
			normal = normal.Mul(1 / l)
		}

		a := vertices[0]
		for j := 2; j < len(vertices); j++ {
			b, c := vertices[j-1], vertices[j]
			g.Faces = append(g.Faces, Face{
				A:             lookup(a),
				B:             lookup(b),
				C:             lookup(c),
				Normal:        normal,
				VertexNormals: [3]mgl64.Vec3{a.Normal, b.Normal, c.Normal},
				UVs:           [3]mgl64.Vec2{a.UV, b.UV, c.UV},
			})
		}
	}
	return g
}

// ---------------------------------------------------------------------------
// Measurement
// ---------------------------------------------------------------------------

// Volume returns the enclosed volume in world space, computed with the
// divergence theorem. It is only meaningful for closed surfaces.
func (s *Solid) Volume() float64 {
	var sum float64
	for _, p := range s.tree.AllPolygons() {
		a := p.Vertices[0].Vec3()
		for j := 2; j < len(p.Vertices); j++ {
			b, c := p.Vertices[j-1].Vec3(), p.Vertices[j].Vec3()
			sum += a.Dot(b.Cross(c))
		}
	}
	return sum / 6
}

// BoundingBox returns the world-space axis-aligned bounds. An empty
// solid returns zero vectors.
func (s *Solid) BoundingBox() (min, max mgl64.Vec3) {
	polygons := s.tree.AllPolygons()
	if len(polygons) == 0 {
		return min, max
	}
	min = mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range polygons {
		for _, v := range p.Vertices {
			pos := v.Vec3()
			for i := 0; i < 3; i++ {
				min[i] = math.Min(min[i], pos[i])
				max[i] = math.Max(max[i], pos[i])
			}
		}
	}
	return min, max
}

// normalMatrix returns the inverse transpose of m's linear part, which
// maps normals consistently with m.
func normalMatrix(m mgl64.Mat4) mgl64.Mat3 {
	return m.Mat3().Inv().Transpose()
}
