package csg

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Polygon is a planar convex polygon. Vertex order defines the winding
// and therefore the direction of Normal. A point p lies on the plane
// when Normal·p - W == 0.
type Polygon struct {
	Vertices []*Vertex
	Normal   mgl64.Vec3
	W        float64
}

// NewPolygon returns a polygon over vertices, computing its plane when
// vertices is non-empty. The slice is retained, not copied.
func NewPolygon(vertices []*Vertex) *Polygon {
	p := &Polygon{Vertices: vertices}
	if len(vertices) > 0 {
		p.CalculateProperties()
	}
	return p
}

// CalculateProperties recomputes the plane from vertices 0, 1 and 2.
// It must be called after any structural change to Vertices. Collinear
// leading vertices produce a NaN normal.
func (p *Polygon) CalculateProperties() *Polygon {
	a, b, c := p.Vertices[0], p.Vertices[1], p.Vertices[2]
	n := b.Clone().Subtract(a).Cross(c.Clone().Subtract(a)).Normalize()
	p.Normal = mgl64.Vec3{n.X, n.Y, n.Z}
	p.W = a.dotVec(p.Normal)
	return p
}

// Clone returns a deep copy of p with freshly computed properties.
func (p *Polygon) Clone() *Polygon {
	vertices := make([]*Vertex, len(p.Vertices))
	for i, v := range p.Vertices {
		vertices[i] = v.Clone()
	}
	return NewPolygon(vertices)
}

// Flip reverses the winding of p and negates its plane.
func (p *Polygon) Flip() *Polygon {
	p.Normal = p.Normal.Mul(-1)
	p.W = -p.W
	n := len(p.Vertices)
	vertices := make([]*Vertex, n)
	for i, v := range p.Vertices {
		vertices[n-1-i] = v
	}
	p.Vertices = vertices
	return p
}

// IsDegenerate reports whether p has too few vertices or a plane that
// could not be computed (zero-area leading triangle).
func (p *Polygon) IsDegenerate() bool {
	if len(p.Vertices) < 3 {
		return true
	}
	for _, c := range p.Normal {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return true
		}
	}
	return p.Normal == (mgl64.Vec3{})
}

// ClassifyVertex reports which side of p's plane v lies on.
func (p *Polygon) ClassifyVertex(v *Vertex) Side {
	d := v.dotVec(p.Normal) - p.W
	switch {
	case d < -Epsilon:
		return Back
	case d > Epsilon:
		return Front
	default:
		return Coplanar
	}
}

// ClassifySide reports where other lies relative to p's plane.
func (p *Polygon) ClassifySide(other *Polygon) Side {
	var front, back int
	for _, v := range other.Vertices {
		switch p.ClassifyVertex(v) {
		case Front:
			front++
		case Back:
			back++
		}
	}
	switch {
	case front == 0 && back == 0:
		return Coplanar
	case back == 0:
		return Front
	case front == 0:
		return Back
	default:
		return Spanning
	}
}

// SplitPolygon sorts other into one of the four lists by its position
// relative to p's plane. Coplanar polygons go to coplanarFront when they
// face the same way as p and to coplanarBack otherwise. Spanning
// polygons are cut in two along the plane; a piece with fewer than three
// vertices is dropped.
//
// Callers may pass the same list for several destinations.
func (p *Polygon) SplitPolygon(other *Polygon, coplanarFront, coplanarBack, front, back *[]*Polygon) {
	switch p.ClassifySide(other) {
	case Coplanar:
		if p.Normal.Dot(other.Normal) > 0 {
			*coplanarFront = append(*coplanarFront, other)
		} else {
			*coplanarBack = append(*coplanarBack, other)
		}
	case Front:
		*front = append(*front, other)
	case Back:
		*back = append(*back, other)
	default:
		f, b := p.cut(other)
		if len(f) >= 3 {
			*front = append(*front, NewPolygon(f))
		}
		if len(b) >= 3 {
			*back = append(*back, NewPolygon(b))
		}
	}
}

// cut walks the edges of a spanning polygon and returns the vertex lists
// of its front and back pieces. Coplanar vertices land in both lists.
func (p *Polygon) cut(other *Polygon) (f, b []*Vertex) {
	n := len(other.Vertices)
	f = make([]*Vertex, 0, n+1)
	b = make([]*Vertex, 0, n+1)
	for i := 0; i < n; i++ {
		vi := other.Vertices[i]
		vj := other.Vertices[(i+1)%n]
		ti := p.ClassifyVertex(vi)
		tj := p.ClassifyVertex(vj)

		if ti != Back {
			f = append(f, vi)
		}
		if ti != Front {
			b = append(b, vi)
		}
		if ti|tj == Spanning {
			t := (p.W - vi.dotVec(p.Normal)) / vj.Clone().Subtract(vi).dotVec(p.Normal)
			v := vi.Interpolate(vj, t)
			f = append(f, v)
			b = append(b, v)
		}
	}
	return f, b
}

// transform applies m to every vertex of p and recomputes its plane.
// Vertices are replaced, never mutated, so shared vertices are safe.
func (p *Polygon) transform(m mgl64.Mat4, normals mgl64.Mat3, mirror bool) {
	vertices := make([]*Vertex, len(p.Vertices))
	for i, v := range p.Vertices {
		c := v.Clone().ApplyMatrix4(m)
		c.applyNormalMatrix(normals)
		vertices[i] = c
	}
	if mirror {
		for i, j := 0, len(vertices)-1; i < j; i, j = i+1, j-1 {
			vertices[i], vertices[j] = vertices[j], vertices[i]
		}
	}
	p.Vertices = vertices
	p.CalculateProperties()
}
