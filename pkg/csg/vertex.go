package csg

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vertex is a point carrying the surface attributes that must survive
// polygon splitting: a normal and a texture coordinate.
//
// Arithmetic methods mutate the receiver and return it for chaining.
// Clone before mutating a vertex that is shared with another polygon.
type Vertex struct {
	X, Y, Z float64
	Normal  mgl64.Vec3
	UV      mgl64.Vec2
}

// NewVertex returns a vertex at (x, y, z) with the given attributes.
func NewVertex(x, y, z float64, normal mgl64.Vec3, uv mgl64.Vec2) *Vertex {
	return &Vertex{X: x, Y: y, Z: z, Normal: normal, UV: uv}
}

// vertexAt returns a vertex at p with zero attributes.
func vertexAt(p mgl64.Vec3) *Vertex {
	return &Vertex{X: p[0], Y: p[1], Z: p[2]}
}

// Vec3 returns the position of v.
func (v *Vertex) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Clone returns a deep copy of v.
func (v *Vertex) Clone() *Vertex {
	c := *v
	return &c
}

// Add adds o's position to v.
func (v *Vertex) Add(o *Vertex) *Vertex {
	v.X += o.X
	v.Y += o.Y
	v.Z += o.Z
	return v
}

// Subtract subtracts o's position from v.
func (v *Vertex) Subtract(o *Vertex) *Vertex {
	v.X -= o.X
	v.Y -= o.Y
	v.Z -= o.Z
	return v
}

// MultiplyScalar scales v's position by s.
func (v *Vertex) MultiplyScalar(s float64) *Vertex {
	v.X *= s
	v.Y *= s
	v.Z *= s
	return v
}

// Cross replaces v's position with v × o.
func (v *Vertex) Cross(o *Vertex) *Vertex {
	x, y, z := v.X, v.Y, v.Z
	v.X = y*o.Z - z*o.Y
	v.Y = z*o.X - x*o.Z
	v.Z = x*o.Y - y*o.X
	return v
}

// Normalize scales v's position to unit length. A zero-length vertex
// becomes NaN in every component.
func (v *Vertex) Normalize() *Vertex {
	length := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	v.X /= length
	v.Y /= length
	v.Z /= length
	return v
}

// Dot returns the dot product of the positions of v and o.
func (v *Vertex) Dot(o *Vertex) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// dotVec is Dot against a plain vector.
func (v *Vertex) dotVec(n mgl64.Vec3) float64 {
	return v.X*n[0] + v.Y*n[1] + v.Z*n[2]
}

// Lerp moves v toward o by fraction t, blending position, normal and
// texture coordinate alike.
func (v *Vertex) Lerp(o *Vertex, t float64) *Vertex {
	v.Add(o.Clone().Subtract(v).MultiplyScalar(t))
	v.Normal = v.Normal.Add(o.Normal.Sub(v.Normal).Mul(t))
	v.UV = v.UV.Add(o.UV.Sub(v.UV).Mul(t))
	return v
}

// Interpolate returns a new vertex a fraction t of the way from v to o.
func (v *Vertex) Interpolate(o *Vertex, t float64) *Vertex {
	return v.Clone().Lerp(o, t)
}

// ApplyMatrix4 transforms v's position by the affine part of m. The
// bottom (projective) row of m is ignored.
func (v *Vertex) ApplyMatrix4(m mgl64.Mat4) *Vertex {
	x, y, z := v.X, v.Y, v.Z
	v.X = m[0]*x + m[4]*y + m[8]*z + m[12]
	v.Y = m[1]*x + m[5]*y + m[9]*z + m[13]
	v.Z = m[2]*x + m[6]*y + m[10]*z + m[14]
	return v
}

// applyNormalMatrix rotates v's normal by the linear part of m and
// renormalizes it. Zero normals stay zero.
func (v *Vertex) applyNormalMatrix(m mgl64.Mat3) {
	if v.Normal == (mgl64.Vec3{}) {
		return
	}
	n := m.Mul3x1(v.Normal)
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	v.Normal = n
}
