package orthoview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/orthoview/pkg/config"
	"github.com/chazu/orthoview/pkg/export"
	"github.com/chazu/orthoview/pkg/projection"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp builds an App writing into a temporary directory.
func newTestApp(t *testing.T, edit func(*config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	if edit != nil {
		edit(&cfg)
	}
	app, err := NewApp(cfg)
	require.NoError(t, err)
	return app
}

func evalFile(t *testing.T, app *App, path string) Result {
	t.Helper()
	source, err := os.ReadFile(path)
	require.NoError(t, err)
	result := app.Evaluate(string(source))
	for _, e := range result.Errors {
		t.Errorf("eval error: %s", e)
	}
	if !result.OK() {
		t.FailNow()
	}
	return result
}

// TestE2EPiezasExample exercises the full pipeline on the bundled
// exercises: source, engine, graph, tessellation and projection.
func TestE2EPiezasExample(t *testing.T) {
	app := newTestApp(t, nil)
	result := evalFile(t, app, "examples/piezas.ovw")

	assert.Empty(t, result.Warnings)
	names := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		names = append(names, m.Name)
		assert.False(t, m.Mesh.IsEmpty(), "%s: empty mesh", m.Name)
		assert.Equal(t, m.Name, m.Mesh.PartName)
		assert.NotEmpty(t, m.Title, m.Name)
		require.Len(t, m.Drawings, 3, m.Name)
		for _, d := range m.Drawings {
			assert.NotEmpty(t, d.Visible(), "%s %s: nothing visible", m.Name, d.View.Name)
		}
	}
	assert.Equal(t, []string{"pieza1", "pieza2", "pieza3", "pieza4", "pieza5", "pieza6", "soporte"}, names)

	p1, err := result.Model("pieza1")
	require.NoError(t, err)
	assert.Equal(t, "Escalera", p1.Title)
	assert.Equal(t, 1, p1.Difficulty)
	min, max := p1.Mesh.Bounds()
	assert.InDelta(t, -3, min[0], 1e-4)
	assert.InDelta(t, 3, max[0], 1e-4)
	assert.InDelta(t, -3, min[1], 1e-4)
	assert.InDelta(t, 0, max[1], 1e-4)

	// From the front the staircase is all outline and step edges.
	front := p1.Drawings[0]
	assert.Equal(t, projection.Alzado, front.View)
	assert.InDelta(t, 20, front.Length(projection.Visible), 1e-3)
	assert.Empty(t, front.Hidden())
}

func TestE2EBoredPlateHasHiddenLines(t *testing.T) {
	app := newTestApp(t, nil)
	result := evalFile(t, app, "examples/piezas.ovw")

	m, err := result.Model("soporte")
	require.NoError(t, err)
	for _, d := range m.Drawings {
		switch d.View {
		case projection.Planta:
			// Seen from above the bores are open, so their rims are drawn.
			assert.Greater(t, d.Length(projection.Visible), 28.0)
		default:
			// The bores run vertically inside the plate.
			assert.NotEmpty(t, d.Hidden(), d.View.Name)
		}
	}
}

func TestE2EModelNotFound(t *testing.T) {
	app := newTestApp(t, nil)
	result := app.Evaluate(`(model "a" :title "A" (block 1 1 1))`)
	require.True(t, result.OK(), "%v", result.Errors)

	_, err := result.Model("b")
	assert.ErrorIs(t, err, ErrNoModel)
	assert.ErrorContains(t, err, "[a]")
}

func TestExportAllFormats(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) {
		c.SetFormats("stl,3mf,svg,dxf,toml")
	})
	result := app.Evaluate(`
(model "cubo" :title "Cubo" (block 2 2 2))
(model "barra" :title "Barra" (block 4 1 1))
`)
	require.True(t, result.OK(), "%v", result.Errors)

	paths, err := app.Export(result, "piezas")
	require.NoError(t, err)

	dir := app.Config().Output.Dir
	want := []string{"piezas.stl", "piezas.3mf"}
	for _, ext := range []string{".svg", ".dxf", ".toml"} {
		want = append(want, "cubo"+ext, "barra"+ext)
	}
	var got []string
	for _, p := range paths {
		assert.Equal(t, dir, filepath.Dir(p))
		got = append(got, filepath.Base(p))
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), p)
	}
	assert.ElementsMatch(t, want, got)
}

func TestExportRefusesFailedResult(t *testing.T) {
	app := newTestApp(t, nil)
	result := app.Evaluate(`(model "x"`)
	require.False(t, result.OK())
	_, err := app.Export(result, "x")
	assert.ErrorContains(t, err, "errors")
}

func TestExportNoModels(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.SetFormats("stl") })
	_, err := app.Export(app.Evaluate(""), "empty")
	assert.ErrorIs(t, err, export.ErrNoMeshes)
}

// TestGradeExportedSheet grades a sheet written by the exporter, then a
// student copy with one line dashed.
func TestGradeExportedSheet(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.SetFormats("toml") })
	result := evalFile(t, app, "examples/piezas.ovw")

	paths, err := app.Export(result, "piezas")
	require.NoError(t, err)
	sheetPath := filepath.Join(app.Config().Output.Dir, "pieza2.toml")
	require.Contains(t, paths, sheetPath)

	scores, err := app.GradeFile(result, "", sheetPath)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	for _, s := range scores {
		assert.True(t, s.Perfect(), "%s: %+v", s.View.Name, s)
		assert.InDelta(t, 100, s.Percent(), 1e-6)
	}

	f, err := os.Open(sheetPath)
	require.NoError(t, err)
	sheet, err := projection.DecodeSheet(f)
	f.Close()
	require.NoError(t, err)

	// Shift the student's alzado across the sheet and dash one of its
	// outline lines.
	alzado := &sheet.Drawings[0]
	require.Equal(t, projection.Alzado, alzado.View)
	require.GreaterOrEqual(t, len(alzado.Segments), 2)
	for i := range alzado.Segments {
		s := &alzado.Segments[i]
		s.A, s.B = s.A.Add(mgl64.Vec2{40, 12}), s.B.Add(mgl64.Vec2{40, 12})
	}
	alzado.Segments[1].Style = projection.Hidden

	scores, err = app.Grade(result, "pieza2", sheet)
	require.NoError(t, err)
	assert.False(t, scores[0].Perfect())
	assert.Greater(t, scores[0].WrongStyle, 0.0)
	assert.Less(t, scores[0].Percent(), 100.0)
	assert.True(t, scores[1].Perfect())
	assert.True(t, scores[2].Perfect())
}

func TestGradeFileErrors(t *testing.T) {
	app := newTestApp(t, nil)
	result := app.Evaluate(`(model "a" :title "A" (block 1 1 1))`)

	_, err := app.GradeFile(result, "a", filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[[view]]\nname = \"iso\"\n"), 0o644))
	_, err = app.GradeFile(result, "a", bad)
	assert.ErrorContains(t, err, "unknown view")

	_, err = app.Grade(result, "", projection.Sheet{Model: "zzz"})
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestNewAppRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Kernel = "manifold"
	_, err := NewApp(cfg)
	assert.ErrorContains(t, err, "unknown kernel")
}

func TestE2ESDFXKernel(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) {
		c.Kernel = "sdfx"
		c.MeshCells = 16
	})
	result := app.Evaluate(`(model "cubo" :title "Cubo" (block 2 2 2))`)
	require.True(t, result.OK(), "%v", result.Errors)
	require.Len(t, result.Models, 1)
	assert.False(t, result.Models[0].Mesh.IsEmpty())
	assert.Equal(t, "cubo", result.Models[0].Name)
}
