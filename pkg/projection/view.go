// Package projection derives orthographic drawings from triangle meshes.
//
// A drawing is the set of feature edges of a solid seen along one of the
// three principal directions, each piece marked visible (drawn solid) or
// hidden (drawn dashed). Drawings are merged into canonical segments so
// that two drawings of the same view can be compared line by line, which
// is what Grade does with a student's sheet.
package projection

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// View is a principal viewing direction. Sheet coordinates are (U, V)
// with U to the right and V up; depth grows toward the viewer.
type View struct {
	Name string
	// Dir is the direction the viewer looks in.
	Dir mgl64.Vec3
	// Up is the world direction drawn upward on the sheet.
	Up mgl64.Vec3
}

var (
	// Alzado is the front elevation: looking along -Z, X right, Y up.
	Alzado = View{Name: "alzado", Dir: mgl64.Vec3{0, 0, -1}, Up: mgl64.Vec3{0, 1, 0}}
	// Planta is the plan: looking down along -Y, X right, front (+Z)
	// toward the bottom of the sheet.
	Planta = View{Name: "planta", Dir: mgl64.Vec3{0, -1, 0}, Up: mgl64.Vec3{0, 0, -1}}
	// Perfil is the side elevation: looking along +X, Z right, Y up.
	Perfil = View{Name: "perfil", Dir: mgl64.Vec3{1, 0, 0}, Up: mgl64.Vec3{0, 1, 0}}
)

// Views returns the three principal views in sheet order.
func Views() []View {
	return []View{Alzado, Planta, Perfil}
}

// ParseView looks a view up by name, case-insensitively. The English
// names front, top and side are accepted as well.
func ParseView(s string) (View, error) {
	switch strings.ToLower(s) {
	case "alzado", "front":
		return Alzado, nil
	case "planta", "top":
		return Planta, nil
	case "perfil", "side":
		return Perfil, nil
	}
	return View{}, fmt.Errorf("projection: unknown view %q", s)
}

// Right returns the world direction drawn to the right on the sheet.
func (v View) Right() mgl64.Vec3 {
	return v.Dir.Cross(v.Up)
}

// Toward returns the direction from the model toward the viewer.
func (v View) Toward() mgl64.Vec3 {
	return v.Dir.Mul(-1)
}

// Project maps a world point to sheet coordinates and depth.
func (v View) Project(p mgl64.Vec3) (uv mgl64.Vec2, depth float64) {
	return mgl64.Vec2{p.Dot(v.Right()), p.Dot(v.Up)}, p.Dot(v.Toward())
}

func (v View) String() string {
	return v.Name
}
