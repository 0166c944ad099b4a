package projection

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// DefaultTolerance is the grading distance, in sheet units, within which
// a drawn line counts as lying on a reference line.
const DefaultTolerance = 0.05

// Score compares a drawn view against its reference. Lengths are in
// sheet units.
type Score struct {
	View View
	// Matched is reference length drawn in the right style.
	Matched float64
	// WrongStyle is reference length drawn only in the other style.
	WrongStyle float64
	// Missing is reference length not drawn at all.
	Missing float64
	// Extra is drawn length with no reference line under it.
	Extra float64

	MissingSegments    []Segment
	WrongStyleSegments []Segment
	ExtraSegments      []Segment
}

// Reference returns the total reference length.
func (s Score) Reference() float64 {
	return s.Matched + s.WrongStyle + s.Missing
}

// Percent is matched length over reference plus extra length. A view
// with nothing to draw and nothing drawn scores 100.
func (s Score) Percent() float64 {
	total := s.Reference() + s.Extra
	if total < Quantum {
		return 100
	}
	return 100 * s.Matched / total
}

// Perfect reports whether the drawing matches its reference exactly.
func (s Score) Perfect() bool {
	return s.WrongStyle < Quantum && s.Missing < Quantum && s.Extra < Quantum
}

// Grade scores drawn against reference. Both drawings are normalised
// first, so the student's sheet origin does not matter. A non-positive
// tol selects DefaultTolerance.
func Grade(reference, drawn Drawing, tol float64) Score {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	ref := reference.Normalize().Segments
	got := drawn.Normalize().Segments

	score := Score{View: reference.View}
	for _, r := range ref {
		same := coverage(r, got, tol, func(s LineStyle) bool { return s == r.Style })
		other := coverage(r, got, tol, func(s LineStyle) bool { return s != r.Style })
		full := []interval{{0, r.Len()}}

		wrong := subtract(other, same)
		missing := subtract(subtract(full, same), other)

		score.Matched += length(same)
		score.WrongStyle += length(wrong)
		score.Missing += length(missing)
		score.WrongStyleSegments = append(score.WrongStyleSegments, piecesOf(r, wrong)...)
		score.MissingSegments = append(score.MissingSegments, piecesOf(r, missing)...)
	}
	for _, d := range got {
		covered := coverage(d, ref, tol, func(LineStyle) bool { return true })
		extra := subtract([]interval{{0, d.Len()}}, covered)
		score.Extra += length(extra)
		score.ExtraSegments = append(score.ExtraSegments, piecesOf(d, extra)...)
	}
	return score
}

// GradeAll pairs drawings by view name. A reference view with no drawn
// counterpart scores as entirely missing.
func GradeAll(reference, drawn []Drawing, tol float64) []Score {
	byName := lo.KeyBy(drawn, func(d Drawing) string { return d.View.Name })
	return lo.Map(reference, func(r Drawing, _ int) Score {
		d, ok := byName[r.View.Name]
		if !ok {
			d = Drawing{View: r.View}
		}
		return Grade(r, d, tol)
	})
}

// coverage returns the union of the parts of target lying under the
// segments of others whose style passes keep.
func coverage(target Segment, others []Segment, tol float64, keep func(LineStyle) bool) []interval {
	n := target.Len()
	dir := target.B.Sub(target.A).Mul(1 / n)
	var ivs []interval
	for _, o := range others {
		if !keep(o.Style) {
			continue
		}
		if distToLine(o.A, target.A, dir) > tol || distToLine(o.B, target.A, dir) > tol {
			continue
		}
		t0 := o.A.Sub(target.A).Dot(dir)
		t1 := o.B.Sub(target.A).Dot(dir)
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		t0, t1 = math.Max(t0, 0), math.Min(t1, n)
		if t1-t0 > Quantum {
			ivs = append(ivs, interval{t0, t1})
		}
	}
	return union(ivs)
}

func distToLine(p, origin, dir mgl64.Vec2) float64 {
	return math.Abs(cross2(dir, p.Sub(origin)))
}

func piecesOf(s Segment, ivs []interval) []Segment {
	dir := s.B.Sub(s.A).Normalize()
	return lo.Map(ivs, func(iv interval, _ int) Segment {
		return Segment{A: s.A.Add(dir.Mul(iv.lo)), B: s.A.Add(dir.Mul(iv.hi)), Style: s.Style}
	})
}
