// Package bsp implements the kernel.Kernel interface on the exact
// polyhedral CSG engine in pkg/csg.
package bsp

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/chazu/orthoview/pkg/csg"
	"github.com/chazu/orthoview/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

func init() {
	kernel.Register(kernel.BSP, func(kernel.Options) kernel.Kernel { return New() })
}

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// DefaultSegments is used for cylinders requested with fewer than three
// segments.
const DefaultSegments = 32

// bspSolid wraps a csg.Solid to implement kernel.Solid.
type bspSolid struct {
	s *csg.Solid
}

// BoundingBox returns the axis-aligned bounding box.
func (s *bspSolid) BoundingBox() (min, max [3]float64) {
	low, high := s.s.BoundingBox()
	return [3]float64(low), [3]float64(high)
}

// Kernel implements kernel.Kernel using BSP trees.
type Kernel struct{}

// New returns a new Kernel.
func New() *Kernel {
	return &Kernel{}
}

func unwrap(s kernel.Solid) *csg.Solid {
	return s.(*bspSolid).s
}

func wrap(s *csg.Solid) kernel.Solid {
	return &bspSolid{s: s}
}

// transform bakes m into s. The transforms this kernel builds are
// rigid, so a failure here is a programming error.
func transform(s *csg.Solid, m mgl64.Mat4) *csg.Solid {
	out, err := s.Transform(m)
	if err != nil {
		panic(fmt.Sprintf("bsp.Transform: %v", err))
	}
	return out
}

func fromGeometry(g *csg.Geometry) *csg.Solid {
	s, err := csg.FromGeometry(g)
	if err != nil {
		panic(fmt.Sprintf("bsp.FromGeometry: %v", err))
	}
	return s
}

// Box creates a box with the given dimensions centred on the origin.
func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	return wrap(fromGeometry(csg.BoxGeometry(x, y, z)))
}

// Cylinder creates a cylinder of the given height and radius along Z.
// The curved side is approximated by segments faces.
func (k *Kernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	if segments < 3 {
		segments = DefaultSegments
	}
	s := fromGeometry(csg.CylinderGeometry(radius, height, segments))
	// CylinderGeometry runs along Y; a quarter turn about X lays it on Z.
	return wrap(transform(s, mgl64.HomogRotate3DX(math.Pi/2)))
}

// Union returns the union of two solids.
func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(unwrap(a).Union(unwrap(b)))
}

// Difference returns the difference a - b.
func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(unwrap(a).Subtract(unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(unwrap(a).Intersect(unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return wrap(transform(unwrap(s), mgl64.Translate3D(x, y, z)))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := mgl64.HomogRotate3DZ(mgl64.DegToRad(z)).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(y))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(x)))
	return wrap(transform(unwrap(s), m))
}

// ToMesh converts a solid to flat-shaded triangles. Every triangle gets
// its own three vertices carrying the face normal.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	solid := unwrap(s)
	slog.Debug("bsp: meshing", "nodes", solid.Tree().Count(), "depth", solid.Tree().Depth())

	g := solid.ToGeometry()
	m := solid.Matrix()

	numVerts := len(g.Faces) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	// ToGeometry yields local coordinates; the mesh is in world space.
	normalMatrix := m.Mat3().Inv().Transpose()
	for i, f := range g.Faces {
		n := normalMatrix.Mul3x1(f.Normal)
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		corners := [3]int{f.A, f.B, f.C}
		if m.Det() < 0 {
			corners[0], corners[2] = corners[2], corners[0]
		}
		for j, idx := range corners {
			p := mgl64.TransformCoordinate(g.Vertices[idx], m)
			vertices = append(vertices, float32(p[0]), float32(p[1]), float32(p[2]))
			normals = append(normals, float32(n[0]), float32(n[1]), float32(n[2]))
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
