package projection

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewProject(t *testing.T) {
	p := mgl64.Vec3{1, 2, 3}
	tests := []struct {
		view  View
		uv    mgl64.Vec2
		depth float64
	}{
		{Alzado, mgl64.Vec2{1, 2}, 3},
		{Planta, mgl64.Vec2{1, -3}, 2},
		{Perfil, mgl64.Vec2{3, 2}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.view.Name, func(t *testing.T) {
			uv, depth := tt.view.Project(p)
			assert.InDelta(t, tt.uv[0], uv[0], 1e-12)
			assert.InDelta(t, tt.uv[1], uv[1], 1e-12)
			assert.InDelta(t, tt.depth, depth, 1e-12)
		})
	}
}

func TestViewBasisIsOrthonormal(t *testing.T) {
	for _, v := range Views() {
		r := v.Right()
		assert.InDelta(t, 1, r.Len(), 1e-12, v.Name)
		assert.InDelta(t, 0, r.Dot(v.Up), 1e-12, v.Name)
		assert.InDelta(t, 0, r.Dot(v.Dir), 1e-12, v.Name)
		assert.InDelta(t, 0, v.Up.Dot(v.Dir), 1e-12, v.Name)
	}
}

func TestParseView(t *testing.T) {
	for name, want := range map[string]View{
		"alzado": Alzado, "Front": Alzado,
		"planta": Planta, "top": Planta,
		"PERFIL": Perfil, "side": Perfil,
	} {
		got, err := ParseView(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseView("isometric")
	assert.ErrorContains(t, err, "unknown view")
}
