package csg

// Epsilon is the plane thickness used when classifying points. A point
// closer than Epsilon to a plane is considered to lie on it.
const Epsilon = 1e-5

// Side classifies a vertex or polygon relative to a plane.
//
// The values are bit flags: Spanning is Front|Back, so OR-ing the sides
// of an edge's two endpoints yields Spanning exactly when the edge
// crosses the plane.
type Side uint8

const (
	Coplanar Side = 0
	Front    Side = 1 << 0
	Back     Side = 1 << 1
	Spanning      = Front | Back
)

func (s Side) String() string {
	switch s {
	case Coplanar:
		return "coplanar"
	case Front:
		return "front"
	case Back:
		return "back"
	case Spanning:
		return "spanning"
	default:
		return "unknown"
	}
}
