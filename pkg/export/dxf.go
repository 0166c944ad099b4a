package export

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/chazu/orthoview/pkg/projection"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/table"
)

// LayerName returns the DXF layer holding one view's lines of a style,
// e.g. ALZADO_VISIBLE or PERFIL_HIDDEN.
func LayerName(view projection.View, style projection.LineStyle) string {
	suffix := "VISIBLE"
	if style == projection.Hidden {
		suffix = "HIDDEN"
	}
	return strings.ToUpper(view.Name) + "_" + suffix
}

// WriteDXF writes the views side by side, in model units, to a DXF file.
// Each view gets a continuous layer for visible lines and a HIDDEN
// linetype layer for hidden lines.
func WriteDXF(path string, drawings []projection.Drawing, opts SheetOptions) error {
	if len(drawings) == 0 {
		return ErrNoDrawings
	}
	o := opts.withDefaults()
	panels, _ := layout(drawings, o)

	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	lines := 0
	for _, p := range panels {
		for _, style := range []projection.LineStyle{projection.Visible, projection.Hidden} {
			lt, cl := dxf.DefaultLineType, color.White
			if style == projection.Hidden {
				lt, cl = table.LT_HIDDEN, color.Cyan
			}
			d.AddLayer(LayerName(p.drawing.View, style), cl, lt, true)

			for _, s := range p.drawing.Segments {
				if s.Style != style {
					continue
				}
				a, b := p.origin.Add(s.A), p.origin.Add(s.B)
				if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
					return fmt.Errorf("export: dxf %s: %w", path, err)
				}
				lines++
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("export: dxf %s: %w", path, err)
	}
	slog.Debug("export: wrote dxf", "path", path, "views", len(panels), "lines", lines)
	return nil
}
