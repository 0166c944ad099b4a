package projection

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// LineStyle is how a segment is drawn.
type LineStyle uint8

const (
	// Visible lines are drawn solid.
	Visible LineStyle = iota
	// Hidden lines are drawn dashed.
	Hidden
)

func (s LineStyle) String() string {
	switch s {
	case Visible:
		return "solid"
	case Hidden:
		return "dashed"
	}
	return fmt.Sprintf("LineStyle(%d)", uint8(s))
}

// ParseLineStyle accepts solid/visible and dashed/hidden.
func ParseLineStyle(s string) (LineStyle, error) {
	switch strings.ToLower(s) {
	case "solid", "visible":
		return Visible, nil
	case "dashed", "hidden":
		return Hidden, nil
	}
	return 0, fmt.Errorf("projection: unknown line style %q", s)
}

// Segment is a straight line on a drawing sheet.
type Segment struct {
	A, B  mgl64.Vec2
	Style LineStyle
}

// Len returns the segment length.
func (s Segment) Len() float64 {
	return s.B.Sub(s.A).Len()
}

func (s Segment) String() string {
	return fmt.Sprintf("%s (%g, %g)-(%g, %g)", s.Style, s.A[0], s.A[1], s.B[0], s.B[1])
}

const perQuantum = 1 / Quantum

func snap(x float64) float64 {
	v := math.Round(x*perQuantum) / perQuantum
	if v == 0 {
		return 0 // no negative zero
	}
	return v
}

func snapPoint(p mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{snap(p[0]), snap(p[1])}
}

func lessPoint(a, b mgl64.Vec2) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

// canonical snaps s to the quantum grid and orients it from its smaller
// endpoint. ok is false for segments that collapse to a point.
func canonical(s Segment) (Segment, bool) {
	s.A, s.B = snapPoint(s.A), snapPoint(s.B)
	if s.A == s.B {
		return s, false
	}
	if lessPoint(s.B, s.A) {
		s.A, s.B = s.B, s.A
	}
	return s, true
}

// support is the infinite line through a canonical segment: unit
// direction, and offset along the left normal.
type support struct {
	dir    mgl64.Vec2
	offset float64
}

func supportOf(s Segment) support {
	d := s.B.Sub(s.A).Normalize()
	n := mgl64.Vec2{-d[1], d[0]}
	return support{dir: d, offset: n.Dot(s.A)}
}

func (l support) key() [3]int64 {
	return [3]int64{quantize(l.dir[0]), quantize(l.dir[1]), quantize(l.offset)}
}

// at returns the point at parameter t along the line.
func (l support) at(t float64) mgl64.Vec2 {
	n := mgl64.Vec2{-l.dir[1], l.dir[0]}
	return n.Mul(l.offset).Add(l.dir.Mul(t))
}

type interval struct{ lo, hi float64 }

// union merges overlapping or touching intervals.
func union(in []interval) []interval {
	if len(in) == 0 {
		return nil
	}
	in = slices.Clone(in)
	slices.SortFunc(in, func(a, b interval) int { return cmp.Compare(a.lo, b.lo) })
	out := []interval{in[0]}
	for _, iv := range in[1:] {
		last := &out[len(out)-1]
		if iv.lo <= last.hi+Quantum {
			last.hi = math.Max(last.hi, iv.hi)
			continue
		}
		out = append(out, iv)
	}
	return out
}

// subtract removes every interval of cut from in. Both must be unions.
func subtract(in, cut []interval) []interval {
	var out []interval
	for _, iv := range in {
		pieces := []interval{iv}
		for _, c := range cut {
			var next []interval
			for _, p := range pieces {
				if c.hi <= p.lo || c.lo >= p.hi {
					next = append(next, p)
					continue
				}
				if c.lo > p.lo {
					next = append(next, interval{p.lo, c.lo})
				}
				if c.hi < p.hi {
					next = append(next, interval{c.hi, p.hi})
				}
			}
			pieces = next
		}
		out = append(out, pieces...)
	}
	return lo.Filter(out, func(iv interval, _ int) bool { return iv.hi-iv.lo >= Quantum })
}

func length(ivs []interval) float64 {
	return lo.SumBy(ivs, func(iv interval) float64 { return iv.hi - iv.lo })
}

// Merge canonicalises segs: endpoints are snapped to the quantum grid,
// point segments are dropped, collinear overlapping segments of one style
// are joined, and hidden pieces covered by a visible segment are removed.
// The result is sorted, so equal drawings merge to equal slices.
func Merge(segs []Segment) []Segment {
	type group struct {
		line            support
		visible, hidden []interval
	}
	groups := make(map[[3]int64]*group)
	var order [][3]int64

	for _, s := range segs {
		c, ok := canonical(s)
		if !ok {
			continue
		}
		l := supportOf(c)
		k := l.key()
		gr, ok := groups[k]
		if !ok {
			gr = &group{line: l}
			groups[k] = gr
			order = append(order, k)
		}
		iv := interval{gr.line.dir.Dot(c.A), gr.line.dir.Dot(c.B)}
		if iv.lo > iv.hi {
			iv.lo, iv.hi = iv.hi, iv.lo
		}
		if c.Style == Hidden {
			gr.hidden = append(gr.hidden, iv)
		} else {
			gr.visible = append(gr.visible, iv)
		}
	}

	var out []Segment
	emit := func(l support, ivs []interval, style LineStyle) {
		for _, iv := range ivs {
			if s, ok := canonical(Segment{A: l.at(iv.lo), B: l.at(iv.hi), Style: style}); ok {
				out = append(out, s)
			}
		}
	}
	for _, k := range order {
		gr := groups[k]
		vis := union(gr.visible)
		emit(gr.line, vis, Visible)
		emit(gr.line, subtract(union(gr.hidden), vis), Hidden)
	}

	slices.SortFunc(out, compareSegments)
	return out
}

func compareSegments(a, b Segment) int {
	return cmp.Or(
		cmp.Compare(a.Style, b.Style),
		cmp.Compare(a.A[0], b.A[0]),
		cmp.Compare(a.A[1], b.A[1]),
		cmp.Compare(a.B[0], b.B[0]),
		cmp.Compare(a.B[1], b.B[1]),
	)
}
