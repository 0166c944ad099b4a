package projection

import (
	"math"
	"slices"

	"github.com/chazu/orthoview/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// Quantum is the distance below which two mesh coordinates are treated
// as the same point. Meshes carry float32 positions, so anything tighter
// would split edges that are geometrically shared.
const Quantum = 1e-4

// flatCos is the cosine above which two face normals count as the same
// plane.
const flatCos = 1 - 1e-6

// EdgeKind classifies a mesh edge by the faces that meet along it.
type EdgeKind uint8

const (
	// Flat edges lie inside a planar face and are never drawn.
	Flat EdgeKind = iota
	// Smooth edges join faces at less than the crease angle. They are
	// drawn only where they form a silhouette.
	Smooth
	// Crease edges join faces at more than the crease angle.
	Crease
	// Boundary edges have a face on one side only.
	Boundary
)

func (k EdgeKind) String() string {
	switch k {
	case Flat:
		return "flat"
	case Smooth:
		return "smooth"
	case Crease:
		return "crease"
	case Boundary:
		return "boundary"
	}
	return "unknown"
}

// Edge is a straight piece of the mesh surface's edge network together
// with the normals of the faces that share it.
type Edge struct {
	A, B    mgl64.Vec3
	Normals []mgl64.Vec3
	Kind    EdgeKind
}

// Silhouette reports whether the faces along e turn from facing toward
// the viewer to facing away.
func (e Edge) Silhouette(v View) bool {
	toward := v.Toward()
	front, back := false, false
	for _, n := range e.Normals {
		d := n.Dot(toward)
		front = front || d > 1e-9
		back = back || d < -1e-9
	}
	return front && back
}

// Drawn reports whether e appears in view v.
func (e Edge) Drawn(v View) bool {
	switch e.Kind {
	case Crease, Boundary:
		return true
	case Smooth:
		return e.Silhouette(v)
	}
	return false
}

// span is one triangle side on a supporting line, as a parameter
// interval along the line direction.
type span struct {
	s0, s1 float64
	normal mgl64.Vec3
}

// line groups the triangle sides lying on one supporting line.
type line struct {
	origin, dir mgl64.Vec3
	spans       []span
}

type lineKey [6]int64

func quantize(x float64) int64 {
	return int64(math.Round(x / Quantum))
}

// canonicalDir flips d so its first significant component is positive.
func canonicalDir(d mgl64.Vec3) mgl64.Vec3 {
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) > 1e-9 {
			if d[i] < 0 {
				return d.Mul(-1)
			}
			return d
		}
	}
	return d
}

// FeatureEdges returns every non-flat edge of m. Triangle sides are
// regrouped along their supporting lines and cut at every vertex on the
// line, so T-junctions left by boolean operations are classified by the
// faces that really meet there. creaseDeg is the dihedral angle, in
// degrees, above which an edge is a crease.
func FeatureEdges(m *kernel.Mesh, creaseDeg float64) []Edge {
	lines := make(map[lineKey]*line)
	var order []lineKey

	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		p := [3]mgl64.Vec3{tri[0], tri[1], tri[2]}
		n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
		if n.Len() < Quantum*Quantum {
			continue
		}
		n = n.Normalize()

		for i := 0; i < 3; i++ {
			a, b := p[i], p[(i+1)%3]
			if a.Sub(b).Len() < Quantum {
				continue
			}
			dir := canonicalDir(b.Sub(a).Normalize())
			origin := a.Sub(dir.Mul(a.Dot(dir)))
			key := lineKey{
				quantize(dir[0]), quantize(dir[1]), quantize(dir[2]),
				quantize(origin[0]), quantize(origin[1]), quantize(origin[2]),
			}
			l, ok := lines[key]
			if !ok {
				l = &line{origin: origin, dir: dir}
				lines[key] = l
				order = append(order, key)
			}
			s0, s1 := a.Dot(l.dir), b.Dot(l.dir)
			if s0 > s1 {
				s0, s1 = s1, s0
			}
			l.spans = append(l.spans, span{s0: s0, s1: s1, normal: n})
		}
	}

	creaseCos := math.Cos(mgl64.DegToRad(creaseDeg))
	var edges []Edge
	for _, key := range order {
		edges = append(edges, lines[key].edges(creaseCos)...)
	}
	return edges
}

// edges cuts the line at every span endpoint and classifies each piece.
func (l *line) edges(creaseCos float64) []Edge {
	cuts := make([]float64, 0, 2*len(l.spans))
	for _, s := range l.spans {
		cuts = append(cuts, s.s0, s.s1)
	}
	cuts = compactCuts(cuts, Quantum)

	var edges []Edge
	for i := 0; i+1 < len(cuts); i++ {
		lo0, hi0 := cuts[i], cuts[i+1]
		normals := lo.FilterMap(l.spans, func(s span, _ int) (mgl64.Vec3, bool) {
			return s.normal, s.s0 <= lo0+Quantum && s.s1 >= hi0-Quantum
		})
		kind := classify(normals, creaseCos)
		if kind == Flat {
			continue
		}
		edges = append(edges, Edge{
			A:       l.origin.Add(l.dir.Mul(lo0)),
			B:       l.origin.Add(l.dir.Mul(hi0)),
			Normals: normals,
			Kind:    kind,
		})
	}
	return edges
}

// compactCuts sorts cuts and folds runs of values closer than tol into
// their first value.
func compactCuts(cuts []float64, tol float64) []float64 {
	slices.Sort(cuts)
	return slices.CompactFunc(cuts, func(a, b float64) bool { return math.Abs(b-a) < tol })
}

func classify(normals []mgl64.Vec3, creaseCos float64) EdgeKind {
	switch len(normals) {
	case 0:
		return Flat
	case 1:
		return Boundary
	}
	kind := Flat
	for i := range normals {
		for j := i + 1; j < len(normals); j++ {
			d := normals[i].Dot(normals[j])
			if d < creaseCos {
				return Crease
			}
			if d < flatCos {
				kind = Smooth
			}
		}
	}
	return kind
}
