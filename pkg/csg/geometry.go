package csg

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrUnsupportedGeometry is returned when a Solid is constructed from
	// geometry that cannot be read as a triangle mesh.
	ErrUnsupportedGeometry = errors.New("csg: unsupported geometry")

	// ErrNonAffine is returned for transforms with a projective row.
	ErrNonAffine = errors.New("csg: transform is not affine")

	// ErrSingularMatrix is returned for transforms that cannot be
	// inverted, which ToGeometry would need.
	ErrSingularMatrix = errors.New("csg: transform is singular")
)

// Face is a triangle of a Geometry, indexing into Geometry.Vertices.
// Normal is the face normal; VertexNormals and UVs are per corner.
type Face struct {
	A, B, C       int
	Normal        mgl64.Vec3
	VertexNormals [3]mgl64.Vec3
	UVs           [3]mgl64.Vec2
}

// Geometry is an indexed triangle mesh, used both as the input of
// FromGeometry and FromMesh and as the output of Solid.ToGeometry.
type Geometry struct {
	Vertices []mgl64.Vec3
	Faces    []Face
}

// TriangleCount returns the number of faces.
func (g *Geometry) TriangleCount() int {
	return len(g.Faces)
}

// NewBufferGeometry builds a Geometry from flat position buffers. With
// indices, every three indices form a triangle. Without, every nine
// positions form a triangle.
func NewBufferGeometry(positions []float64, indices []uint32) (*Geometry, error) {
	if len(positions)%3 != 0 {
		return nil, fmt.Errorf("%w: %d position components is not a multiple of 3", ErrUnsupportedGeometry, len(positions))
	}
	g := &Geometry{Vertices: make([]mgl64.Vec3, len(positions)/3)}
	for i := range g.Vertices {
		g.Vertices[i] = mgl64.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
	}

	if indices == nil {
		if len(g.Vertices)%3 != 0 {
			return nil, fmt.Errorf("%w: %d unindexed vertices is not a multiple of 3", ErrUnsupportedGeometry, len(g.Vertices))
		}
		for i := 0; i < len(g.Vertices); i += 3 {
			g.Faces = append(g.Faces, newFace(g.Vertices, i, i+1, i+2))
		}
		return g, nil
	}

	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not a multiple of 3", ErrUnsupportedGeometry, len(indices))
	}
	for i := 0; i < len(indices); i += 3 {
		a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		g.Faces = append(g.Faces, newFace(g.Vertices, a, b, c))
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// newFace returns a face over a, b, c with its geometric normal. Indices
// out of range are left for validate to report.
func newFace(vertices []mgl64.Vec3, a, b, c int) Face {
	f := Face{A: a, B: b, C: c}
	if a < len(vertices) && b < len(vertices) && c < len(vertices) && a >= 0 && b >= 0 && c >= 0 {
		f.Normal = faceNormal(vertices[a], vertices[b], vertices[c])
	}
	return f
}

func faceNormal(a, b, c mgl64.Vec3) mgl64.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if l := n.Len(); l > 0 {
		return n.Mul(1 / l)
	}
	return mgl64.Vec3{}
}

// validate checks that every face indexes existing vertices.
func (g *Geometry) validate() error {
	n := len(g.Vertices)
	for i, f := range g.Faces {
		for _, idx := range [3]int{f.A, f.B, f.C} {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: face %d references vertex %d of %d", ErrUnsupportedGeometry, i, idx, n)
			}
		}
	}
	return nil
}

// checkAffine verifies that m has no projective part and is invertible.
func checkAffine(m mgl64.Mat4) error {
	if m[3] != 0 || m[7] != 0 || m[11] != 0 || m[15] != 1 {
		return ErrNonAffine
	}
	if det := m.Det(); det == 0 || math.IsNaN(det) {
		return ErrSingularMatrix
	}
	return nil
}
