package projection

import (
	"log/slog"
	"math"

	"github.com/chazu/orthoview/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// DefaultCreaseAngle is the dihedral angle, in degrees, above which an
// edge is drawn in every view. Faceted cylinders stay below it, so only
// their silhouettes are drawn.
const DefaultCreaseAngle = 30.0

// rayEps is how far along the sight line a face must be to occlude.
const rayEps = 10 * Quantum

// Options tunes projection.
type Options struct {
	// CreaseAngle in degrees; zero selects DefaultCreaseAngle.
	CreaseAngle float64
}

func (o Options) creaseAngle() float64 {
	if o.CreaseAngle <= 0 {
		return DefaultCreaseAngle
	}
	return o.CreaseAngle
}

// Drawing is one view of a solid as merged segments.
type Drawing struct {
	View     View
	Segments []Segment
}

// Visible returns the solid segments.
func (d Drawing) Visible() []Segment {
	return lo.Filter(d.Segments, func(s Segment, _ int) bool { return s.Style == Visible })
}

// Hidden returns the dashed segments.
func (d Drawing) Hidden() []Segment {
	return lo.Filter(d.Segments, func(s Segment, _ int) bool { return s.Style == Hidden })
}

// Length sums the segment lengths drawn in style.
func (d Drawing) Length(style LineStyle) float64 {
	return lo.SumBy(d.Segments, func(s Segment) float64 {
		if s.Style != style {
			return 0
		}
		return s.Len()
	})
}

// Bounds returns the sheet extent of the drawing. An empty drawing has
// zero bounds.
func (d Drawing) Bounds() (min, max mgl64.Vec2) {
	if len(d.Segments) == 0 {
		return min, max
	}
	min = mgl64.Vec2{math.Inf(1), math.Inf(1)}
	max = mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for _, s := range d.Segments {
		for _, p := range [2]mgl64.Vec2{s.A, s.B} {
			min = mgl64.Vec2{math.Min(min[0], p[0]), math.Min(min[1], p[1])}
			max = mgl64.Vec2{math.Max(max[0], p[0]), math.Max(max[1], p[1])}
		}
	}
	return min, max
}

// Normalize returns d translated so its bounds start at the origin.
func (d Drawing) Normalize() Drawing {
	min, _ := d.Bounds()
	out := Drawing{View: d.View, Segments: make([]Segment, 0, len(d.Segments))}
	for _, s := range d.Segments {
		out.Segments = append(out.Segments, Segment{A: s.A.Sub(min), B: s.B.Sub(min), Style: s.Style})
	}
	out.Segments = Merge(out.Segments)
	return out
}

// Project draws m as seen from v.
func Project(m *kernel.Mesh, v View, opts Options) Drawing {
	return project(newOccluder(m), FeatureEdges(m, opts.creaseAngle()), v)
}

// ProjectAll draws m in every principal view, in Views order.
func ProjectAll(m *kernel.Mesh, opts Options) []Drawing {
	occ := newOccluder(m)
	edges := FeatureEdges(m, opts.creaseAngle())
	return lo.Map(Views(), func(v View, _ int) Drawing {
		return project(occ, edges, v)
	})
}

// piece is a projected edge, keeping its world endpoints for ray tests.
type piece struct {
	a, b   mgl64.Vec2
	a3, b3 mgl64.Vec3
}

func project(occ *occluder, edges []Edge, v View) Drawing {
	var pieces []piece
	for _, e := range edges {
		if !e.Drawn(v) {
			continue
		}
		a, _ := v.Project(e.A)
		b, _ := v.Project(e.B)
		if b.Sub(a).Len() < Quantum {
			continue // seen end-on
		}
		pieces = append(pieces, piece{a: a, b: b, a3: e.A, b3: e.B})
	}

	var segs []Segment
	for i, p := range pieces {
		cuts := cutsAlong(p, pieces, i)
		for j := 0; j+1 < len(cuts); j++ {
			t0, t1 := cuts[j], cuts[j+1]
			a := lerp2(p.a, p.b, t0)
			b := lerp2(p.a, p.b, t1)
			if b.Sub(a).Len() < Quantum {
				continue
			}
			mid := p.a3.Add(p.b3.Sub(p.a3).Mul((t0 + t1) / 2))
			style := Visible
			if occ.blocked(mid, v.Toward()) {
				style = Hidden
			}
			segs = append(segs, Segment{A: a, B: b, Style: style})
		}
	}

	d := Drawing{View: v, Segments: Merge(segs)}
	slog.Debug("projection: view drawn",
		"view", v.Name,
		"edges", len(pieces),
		"visible", len(d.Visible()),
		"hidden", len(d.Hidden()))
	return d
}

func lerp2(a, b mgl64.Vec2, t float64) mgl64.Vec2 {
	return a.Add(b.Sub(a).Mul(t))
}

func cross2(a, b mgl64.Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// cutsAlong returns the sorted parameters in [0, 1] where other pieces
// cross, touch or overlap p. Visibility can only change at these points.
func cutsAlong(p piece, pieces []piece, self int) []float64 {
	r := p.b.Sub(p.a)
	rr := r.Dot(r)
	tol := Quantum / math.Sqrt(rr)
	cuts := []float64{0, 1}
	add := func(t float64) {
		if t > tol && t < 1-tol {
			cuts = append(cuts, t)
		}
	}

	for j, q := range pieces {
		if j == self {
			continue
		}
		s := q.b.Sub(q.a)
		qp := q.a.Sub(p.a)
		denom := cross2(r, s)
		if math.Abs(denom) > 1e-12*math.Sqrt(rr*s.Dot(s)) {
			t := cross2(qp, s) / denom
			u := cross2(qp, r) / denom
			if tolQ := Quantum / s.Len(); u >= -tolQ && u <= 1+tolQ {
				add(t)
			}
			continue
		}
		// Parallel: only collinear pieces cut p, at their endpoints.
		if math.Abs(cross2(qp, r))/math.Sqrt(rr) > Quantum {
			continue
		}
		add(qp.Dot(r) / rr)
		add(q.b.Sub(p.a).Dot(r) / rr)
	}

	return compactCuts(cuts, tol)
}

// occluder answers ray queries against the mesh triangles.
type occluder struct {
	tris [][3]mgl64.Vec3
}

func newOccluder(m *kernel.Mesh) *occluder {
	occ := &occluder{tris: make([][3]mgl64.Vec3, 0, m.TriangleCount())}
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		occ.tris = append(occ.tris, [3]mgl64.Vec3{t[0], t[1], t[2]})
	}
	return occ
}

// blocked reports whether any triangle crosses the ray from p along dir
// further than rayEps. Hits on triangle borders count, so a ray cannot
// leak between the two triangles of a face.
func (o *occluder) blocked(p, dir mgl64.Vec3) bool {
	const baryEps = 1e-9
	for _, t := range o.tris {
		e1 := t[1].Sub(t[0])
		e2 := t[2].Sub(t[0])
		h := dir.Cross(e2)
		det := e1.Dot(h)
		if math.Abs(det) < 1e-6*e1.Cross(e2).Len() {
			continue // ray parallel to the triangle plane
		}
		inv := 1 / det
		s := p.Sub(t[0])
		u := s.Dot(h) * inv
		if u < -baryEps || u > 1+baryEps {
			continue
		}
		q := s.Cross(e1)
		w := dir.Dot(q) * inv
		if w < -baryEps || u+w > 1+baryEps {
			continue
		}
		if e2.Dot(q)*inv > rayEps {
			return true
		}
	}
	return false
}
