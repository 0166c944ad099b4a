package projection

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml/v2"
)

// Sheet is a set of drawings of one model, as stored in a TOML sheet file:
//
//	model = "pieza1"
//
//	[[view]]
//	name = "alzado"
//
//	[[view.line]]
//	from = [0.0, 0.0]
//	to = [6.0, 0.0]
//	style = "solid"
type Sheet struct {
	Model    string
	Drawings []Drawing
}

type sheetFile struct {
	Model string      `toml:"model,omitempty"`
	Views []sheetView `toml:"view"`
}

type sheetView struct {
	Name  string      `toml:"name"`
	Lines []sheetLine `toml:"line"`
}

type sheetLine struct {
	From  [2]float64 `toml:"from"`
	To    [2]float64 `toml:"to"`
	Style string     `toml:"style"`
}

// EncodeSheet writes s as TOML.
func EncodeSheet(w io.Writer, s Sheet) error {
	f := sheetFile{Model: s.Model}
	for _, d := range s.Drawings {
		v := sheetView{Name: d.View.Name}
		for _, seg := range d.Segments {
			v.Lines = append(v.Lines, sheetLine{
				From:  [2]float64(seg.A),
				To:    [2]float64(seg.B),
				Style: seg.Style.String(),
			})
		}
		f.Views = append(f.Views, v)
	}
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("projection: encode sheet: %w", err)
	}
	return nil
}

// DecodeSheet reads a TOML sheet. Unknown keys, views and styles are
// errors. Segments are merged on the way in.
func DecodeSheet(r io.Reader) (Sheet, error) {
	var f sheetFile
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&f); err != nil {
		return Sheet{}, fmt.Errorf("projection: decode sheet: %w", err)
	}

	s := Sheet{Model: f.Model}
	for i, sv := range f.Views {
		view, err := ParseView(sv.Name)
		if err != nil {
			return Sheet{}, fmt.Errorf("projection: decode sheet: view %d: %w", i+1, err)
		}
		d := Drawing{View: view}
		for j, l := range sv.Lines {
			style, err := ParseLineStyle(l.Style)
			if err != nil {
				return Sheet{}, fmt.Errorf("projection: decode sheet: %s line %d: %w", view.Name, j+1, err)
			}
			d.Segments = append(d.Segments, Segment{A: mgl64.Vec2(l.From), B: mgl64.Vec2(l.To), Style: style})
		}
		d.Segments = Merge(d.Segments)
		s.Drawings = append(s.Drawings, d)
	}
	return s, nil
}
