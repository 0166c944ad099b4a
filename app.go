// Package orthoview turns model source into solids and their three
// orthographic views, writes them out, and grades hand drawn sheets
// against them.
package orthoview

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chazu/orthoview/pkg/config"
	"github.com/chazu/orthoview/pkg/engine"
	"github.com/chazu/orthoview/pkg/export"
	"github.com/chazu/orthoview/pkg/graph"
	"github.com/chazu/orthoview/pkg/kernel"
	_ "github.com/chazu/orthoview/pkg/kernel/bsp"
	_ "github.com/chazu/orthoview/pkg/kernel/sdfx"
	"github.com/chazu/orthoview/pkg/projection"
	"github.com/chazu/orthoview/pkg/tessellate"
	"github.com/samber/lo"
)

// ErrNoModel is returned when a named model is not in a result.
var ErrNoModel = errors.New("orthoview: no such model")

// App runs the pipeline: source, design graph, one solid per model, and
// the drawings of each solid.
type App struct {
	cfg    config.Config
	engine *engine.Engine
	kernel kernel.Kernel
}

// Diagnostic is an evaluation or validation finding.
type Diagnostic struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Node    string `json:"node,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	switch {
	case d.Line > 0:
		return fmt.Sprintf("line %d: %s", d.Line, d.Message)
	case d.Node != "":
		return fmt.Sprintf("%s: %s", d.Node, d.Message)
	}
	return d.Message
}

// Model is one evaluated model root with its solid and drawings.
type Model struct {
	Name       string               `json:"name"`
	Title      string               `json:"title"`
	Difficulty int                  `json:"difficulty"`
	Mesh       *kernel.Mesh         `json:"mesh"`
	Drawings   []projection.Drawing `json:"-"`
}

// Result is the full output of one evaluation. Slices are never nil.
type Result struct {
	Models   []Model      `json:"models"`
	Errors   []Diagnostic `json:"errors"`
	Warnings []Diagnostic `json:"warnings"`
}

// OK reports whether evaluation produced no errors.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// Model returns the named model.
func (r Result) Model(name string) (Model, error) {
	m, ok := lo.Find(r.Models, func(m Model) bool { return m.Name == name })
	if !ok {
		return Model{}, fmt.Errorf("%w %q (have %v)", ErrNoModel, name,
			lo.Map(r.Models, func(m Model, _ int) string { return m.Name }))
	}
	return m, nil
}

// Meshes returns the model meshes in model order.
func (r Result) Meshes() []*kernel.Mesh {
	return lo.Map(r.Models, func(m Model, _ int) *kernel.Mesh { return m.Mesh })
}

// NewApp creates an App for cfg. Both kernel backends are linked in.
func NewApp(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("orthoview: %w", err)
	}
	k, err := cfg.NewKernel()
	if err != nil {
		return nil, fmt.Errorf("orthoview: %w", err)
	}
	timeout, _ := cfg.EvalTimeout()
	eng := engine.NewEngine()
	eng.SetDefaults(cfg.Defaults())
	eng.SetTimeout(timeout)
	return &App{cfg: cfg, engine: eng, kernel: k}, nil
}

// Config returns the settings the App was built with.
func (a *App) Config() config.Config {
	return a.cfg
}

// Evaluate is EvaluateContext with a background context.
func (a *App) Evaluate(source string) Result {
	return a.EvaluateContext(context.Background(), source)
}

// EvaluateContext evaluates source, validates the graph, then meshes and
// draws every model. Any error stops the pipeline; warnings are kept.
func (a *App) EvaluateContext(ctx context.Context, source string) Result {
	result := Result{
		Models:   []Model{},
		Errors:   []Diagnostic{},
		Warnings: []Diagnostic{},
	}

	// Step 1: Evaluate the source into a design graph.
	g, evalErrs, err := a.engine.EvaluateContext(ctx, source)
	if err != nil {
		slog.Error("orthoview: evaluate failed", "err", err)
		result.Errors = append(result.Errors, Diagnostic{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, Diagnostic{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	// Step 2: Validate. Warnings never block.
	v := graph.ValidateAll(g)
	for _, w := range v.Warnings {
		result.Warnings = append(result.Warnings, Diagnostic{Node: nodeLabel(g, w.NodeID), Message: w.Message})
	}
	if !v.OK() {
		for _, e := range v.Errors {
			result.Errors = append(result.Errors, Diagnostic{Node: nodeLabel(g, e.NodeID), Message: e.Message})
		}
		return result
	}

	// Step 3: Mesh and draw each model.
	opts := a.cfg.ProjectionOptions()
	for _, n := range g.Models() {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, Diagnostic{Message: err.Error()})
			return result
		}
		mesh, err := tessellate.TessellateModel(g, a.kernel, n)
		if err != nil {
			slog.Error("orthoview: tessellate failed", "model", n.Name, "err", err)
			result.Errors = append(result.Errors, Diagnostic{
				Node:    n.Name,
				Message: "tessellation failed: " + err.Error(),
			})
			return result
		}
		md, _ := n.Data.(graph.ModelData)
		result.Models = append(result.Models, Model{
			Name:       n.Name,
			Title:      md.Title,
			Difficulty: md.Difficulty,
			Mesh:       mesh,
			Drawings:   projection.ProjectAll(mesh, opts),
		})
	}
	return result
}

// nodeLabel names a node for diagnostics by its name, falling back to its
// short ID.
func nodeLabel(g *graph.DesignGraph, id graph.NodeID) string {
	if id.IsZero() {
		return ""
	}
	if n := g.Get(id); n != nil && n.Name != "" {
		return n.Name
	}
	return id.Short()
}

// Export writes r in every configured format under the configured output
// directory, creating it if needed. Mesh formats hold all models in one
// file named base; sheet formats get one file per model. It returns the
// paths written.
func (a *App) Export(r Result, base string) ([]string, error) {
	if !r.OK() {
		return nil, fmt.Errorf("orthoview: export: result has %d errors", len(r.Errors))
	}
	formats, err := a.cfg.Formats()
	if err != nil {
		return nil, fmt.Errorf("orthoview: export: %w", err)
	}
	dir := a.cfg.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("orthoview: export: %w", err)
	}

	var paths []string
	for _, f := range formats {
		switch f {
		case export.STL, export.ThreeMF:
			path := filepath.Join(dir, base+f.Ext())
			write := export.WriteSTL
			if f == export.ThreeMF {
				write = export.Write3MF
			}
			if err := write(path, r.Meshes()); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		default:
			for _, m := range r.Models {
				path := filepath.Join(dir, m.Name+f.Ext())
				if err := a.writeSheet(f, path, m); err != nil {
					return paths, err
				}
				paths = append(paths, path)
			}
		}
	}
	slog.Info("orthoview: exported", "files", len(paths), "dir", dir)
	return paths, nil
}

func (a *App) writeSheet(f export.Format, path string, m Model) error {
	opts := a.cfg.SheetOptions(cmp.Or(m.Title, m.Name))
	if f == export.DXF {
		return export.WriteDXF(path, m.Drawings, opts)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("orthoview: export: %w", err)
	}
	switch f {
	case export.SVG:
		err = export.WriteSVG(out, m.Drawings, opts)
	case export.Sheet:
		err = projection.EncodeSheet(out, projection.Sheet{Model: m.Name, Drawings: normalized(m.Drawings)})
	default:
		err = fmt.Errorf("orthoview: export: no sheet writer for %s", f)
	}
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("orthoview: export: %w", cerr)
	}
	return err
}

func normalized(ds []projection.Drawing) []projection.Drawing {
	return lo.Map(ds, func(d projection.Drawing, _ int) projection.Drawing { return d.Normalize() })
}

// Grade scores sheet against the drawings of the named model. When name
// is empty the sheet's own model name is used.
func (a *App) Grade(r Result, name string, sheet projection.Sheet) ([]projection.Score, error) {
	if name == "" {
		name = sheet.Model
	}
	m, err := r.Model(name)
	if err != nil {
		return nil, err
	}
	return projection.GradeAll(m.Drawings, sheet.Drawings, a.cfg.Grading.Tolerance), nil
}

// GradeFile decodes the TOML sheet at path and grades it.
func (a *App) GradeFile(r Result, name, path string) ([]projection.Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("orthoview: grade: %w", err)
	}
	defer f.Close()
	sheet, err := projection.DecodeSheet(f)
	if err != nil {
		return nil, fmt.Errorf("orthoview: grade %s: %w", path, err)
	}
	return a.Grade(r, name, sheet)
}
