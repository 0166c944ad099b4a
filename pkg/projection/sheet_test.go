package projection

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetRoundTrip(t *testing.T) {
	in := Sheet{
		Model: "pieza1",
		Drawings: []Drawing{
			referenceSquare(),
			{View: Perfil, Segments: Merge([]Segment{seg(0, 0, 1.5, 0, Visible), seg(0.25, 0.5, 1, 0.5, Hidden)})},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeSheet(&buf, in))
	assert.Contains(t, buf.String(), "pieza1")
	assert.Contains(t, buf.String(), "[[view.line]]")

	out, err := DecodeSheet(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeSheet(t *testing.T) {
	src := `
model = "caja"

[[view]]
name = "front"

[[view.line]]
from = [0.0, 0.0]
to = [1.0, 0.0]
style = "solid"

[[view.line]]
from = [1.0, 0.0]
to = [3.0, 0.0]
style = "visible"

[[view]]
name = "planta"
`
	s, err := DecodeSheet(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "caja", s.Model)
	require.Len(t, s.Drawings, 2)
	assert.Equal(t, Alzado, s.Drawings[0].View)
	assert.Equal(t, []Segment{seg(0, 0, 3, 0, Visible)}, s.Drawings[0].Segments, "collinear lines merge")
	assert.Equal(t, Planta, s.Drawings[1].View)
	assert.Empty(t, s.Drawings[1].Segments)
}

func TestDecodeSheetErrors(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{"syntax", "model = ", "decode sheet"},
		{"unknown key", "colour = \"red\"\n", "decode sheet"},
		{"unknown view", "[[view]]\nname = \"iso\"\n", "unknown view"},
		{
			"bad style",
			"[[view]]\nname = \"alzado\"\n[[view.line]]\nfrom = [0.0, 0.0]\nto = [1.0, 0.0]\nstyle = \"dotted\"\n",
			"alzado line 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSheet(strings.NewReader(tt.src))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
