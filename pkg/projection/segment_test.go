package projection

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(ax, ay, bx, by float64, style LineStyle) Segment {
	return Segment{A: mgl64.Vec2{ax, ay}, B: mgl64.Vec2{bx, by}, Style: style}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		in   []Segment
		want []Segment
	}{
		{
			name: "overlapping collinear",
			in:   []Segment{seg(0, 0, 2, 0, Visible), seg(1, 0, 3, 0, Visible)},
			want: []Segment{seg(0, 0, 3, 0, Visible)},
		},
		{
			name: "touching joined",
			in:   []Segment{seg(0, 0, 1, 1, Visible), seg(1, 1, 2, 2, Visible)},
			want: []Segment{seg(0, 0, 2, 2, Visible)},
		},
		{
			name: "reversed orientation",
			in:   []Segment{seg(3, 0, 0, 0, Visible), seg(0, 0, 1, 0, Visible)},
			want: []Segment{seg(0, 0, 3, 0, Visible)},
		},
		{
			name: "gap kept",
			in:   []Segment{seg(0, 0, 1, 0, Visible), seg(2, 0, 3, 0, Visible)},
			want: []Segment{seg(0, 0, 1, 0, Visible), seg(2, 0, 3, 0, Visible)},
		},
		{
			name: "hidden under visible",
			in:   []Segment{seg(0, 0, 4, 0, Hidden), seg(1, 0, 2, 0, Visible)},
			want: []Segment{
				seg(1, 0, 2, 0, Visible),
				seg(0, 0, 1, 0, Hidden),
				seg(2, 0, 4, 0, Hidden),
			},
		},
		{
			name: "hidden fully covered",
			in:   []Segment{seg(0, 1, 0, 3, Hidden), seg(0, 0, 0, 4, Visible)},
			want: []Segment{seg(0, 0, 0, 4, Visible)},
		},
		{
			name: "point dropped",
			in:   []Segment{seg(1, 1, 1, 1+Quantum/4, Visible)},
			want: nil,
		},
		{
			name: "parallel lines stay apart",
			in:   []Segment{seg(0, 0, 1, 0, Visible), seg(0, 1, 1, 1, Visible)},
			want: []Segment{seg(0, 0, 1, 0, Visible), seg(0, 1, 1, 1, Visible)},
		},
		{
			name: "snapped to the grid",
			in:   []Segment{seg(0, 1e-6, 1+1e-6, 0, Visible)},
			want: []Segment{seg(0, 0, 1, 0, Visible)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.in))
		})
	}
}

func TestMergeNoNegativeZero(t *testing.T) {
	out := Merge([]Segment{seg(math.Copysign(0, -1), -1e-7, 1, 0, Visible)})
	require.Len(t, out, 1)
	assert.False(t, math.Signbit(out[0].A[0]))
	assert.False(t, math.Signbit(out[0].A[1]))
}

func TestMergeIsOrderIndependent(t *testing.T) {
	a := []Segment{
		seg(0, 0, 2, 0, Visible),
		seg(0, 0, 0, 2, Hidden),
		seg(2, 2, 0, 2, Visible),
		seg(1, 0, 3, 0, Visible),
	}
	b := []Segment{a[3], a[2], a[1], a[0]}
	assert.Equal(t, Merge(a), Merge(b))
}

func TestLineStyle(t *testing.T) {
	assert.Equal(t, "solid", Visible.String())
	assert.Equal(t, "dashed", Hidden.String())

	for in, want := range map[string]LineStyle{
		"solid": Visible, "visible": Visible,
		"Dashed": Hidden, "hidden": Hidden,
	} {
		got, err := ParseLineStyle(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLineStyle("dotted")
	assert.ErrorContains(t, err, "unknown line style")
}
