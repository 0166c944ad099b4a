package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/chazu/orthoview/pkg/projection"
)

const (
	gridStyle    = "stroke:#d0d0d0;stroke-width:1"
	frameStyle   = "fill:none;stroke:#808080;stroke-width:1"
	visibleStyle = "stroke:#000000;stroke-width:2;stroke-linecap:round"
	hiddenStyle  = "stroke:#000000;stroke-width:1;stroke-dasharray:6,4"
	labelStyle   = "font-family:sans-serif;font-size:14px;fill:#404040"
	titleStyle   = "font-family:sans-serif;font-size:18px;fill:#000000"
)

// titleBand is the height in pixels reserved above the panels.
const titleBand = 40

// errWriter keeps the first write error, since svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, nil
}

// WriteSVG draws the views side by side on one SVG sheet, each panel on
// its own grid with the view name above it. Visible lines are solid and
// hidden lines dashed.
func WriteSVG(w io.Writer, drawings []projection.Drawing, opts SheetOptions) error {
	if len(drawings) == 0 {
		return ErrNoDrawings
	}
	o := opts.withDefaults()
	panels, size := layout(drawings, o)

	px := func(v float64) int { return int(math.Round(v * o.Scale)) }
	width, height := px(size[0]), px(size[1])+titleBand

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(width, height)
	if o.Title != "" {
		canvas.Title(o.Title)
		canvas.Text(px(o.Margin), titleBand-12, o.Title, titleStyle)
	}

	for _, p := range panels {
		// Sheet y grows up; SVG y grows down from the panel top.
		top := titleBand + px(size[1]-o.Margin-p.size[1])
		x := func(u float64) int { return px(p.origin[0] + u) }
		y := func(v float64) int { return top + px(p.size[1]-v) }

		canvas.Gid(strings.ToLower(p.drawing.View.Name))
		canvas.Text(x(0), top-6, p.drawing.View.Name, labelStyle)
		if o.Cell > 0 {
			canvas.Gstyle(gridStyle)
			for u := 0.0; u <= p.size[0]+1e-9; u += o.Cell {
				canvas.Line(x(u), y(0), x(u), y(p.size[1]))
			}
			for v := 0.0; v <= p.size[1]+1e-9; v += o.Cell {
				canvas.Line(x(0), y(v), x(p.size[0]), y(v))
			}
			canvas.Gend()
		}
		canvas.Rect(x(0), top, px(p.size[0]), px(p.size[1]), frameStyle)

		// Hidden first so solid lines paint over dash ends.
		for _, s := range p.drawing.Hidden() {
			canvas.Line(x(s.A[0]), y(s.A[1]), x(s.B[0]), y(s.B[1]), hiddenStyle)
		}
		for _, s := range p.drawing.Visible() {
			canvas.Line(x(s.A[0]), y(s.A[1]), x(s.B[0]), y(s.B[1]), visibleStyle)
		}
		canvas.Gend()
	}
	canvas.End()

	if ew.err != nil {
		return fmt.Errorf("export: svg: %w", ew.err)
	}
	return nil
}
