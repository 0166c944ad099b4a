// Package export writes tessellated models and projected drawings to
// files: STL and 3MF for meshes, SVG and DXF for drawing sheets.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/orthoview/pkg/projection"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrNoMeshes is returned by the mesh writers when there is nothing
	// to write.
	ErrNoMeshes = errors.New("export: no meshes")
	// ErrNoDrawings is returned by the sheet writers when there is
	// nothing to draw.
	ErrNoDrawings = errors.New("export: no drawings")
)

// Format is an output file format.
type Format string

const (
	STL     Format = "stl"
	ThreeMF Format = "3mf"
	SVG     Format = "svg"
	DXF     Format = "dxf"
	Sheet   Format = "toml"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{STL, ThreeMF, SVG, DXF, Sheet}
}

// ParseFormat accepts a format name, ignoring case and a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

// Ext returns the file extension for f, with the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// SheetOptions lays out drawing sheets. All lengths except Scale are in
// model units.
type SheetOptions struct {
	// Title is printed above the panels.
	Title string
	// Scale is SVG pixels per model unit.
	Scale float64
	// Cell is the grid spacing; zero disables the grid.
	Cell float64
	// Margin surrounds and separates the view panels.
	Margin float64
}

// DefaultSheetOptions returns a 1 mm grid at 20 px/mm with 2 mm margins.
func DefaultSheetOptions() SheetOptions {
	return SheetOptions{Scale: 20, Cell: 1, Margin: 2}
}

func (o SheetOptions) withDefaults() SheetOptions {
	def := DefaultSheetOptions()
	if o.Scale <= 0 {
		o.Scale = def.Scale
	}
	if o.Cell < 0 {
		o.Cell = 0
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	return o
}

// panel is one view placed on a sheet. Origin is the lower left corner
// of the panel's drawing area in sheet units, y up.
type panel struct {
	drawing projection.Drawing
	origin  mgl64.Vec2
	size    mgl64.Vec2
}

// layout places normalised drawings left to right in the given order.
// Every panel is at least one cell in each direction so empty views keep
// their slot.
func layout(drawings []projection.Drawing, o SheetOptions) (panels []panel, size mgl64.Vec2) {
	minSide := o.Cell
	if minSide <= 0 {
		minSide = 1
	}
	x := o.Margin
	var height float64
	for _, d := range drawings {
		n := d.Normalize()
		_, max := n.Bounds()
		s := mgl64.Vec2{maxf(max[0], minSide), maxf(max[1], minSide)}
		panels = append(panels, panel{drawing: n, origin: mgl64.Vec2{x, o.Margin}, size: s})
		x += s[0] + o.Margin
		height = maxf(height, s[1])
	}
	return panels, mgl64.Vec2{x, height + 2*o.Margin}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
