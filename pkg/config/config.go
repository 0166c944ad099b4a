// Package config loads orthoview settings from a TOML file layered over
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/chazu/orthoview/pkg/engine"
	"github.com/chazu/orthoview/pkg/export"
	"github.com/chazu/orthoview/pkg/graph"
	"github.com/chazu/orthoview/pkg/kernel"
	"github.com/chazu/orthoview/pkg/projection"
	"github.com/pelletier/go-toml/v2"
)

// Config is the complete set of pipeline settings. A file only needs
// the keys it changes:
//
//	kernel = "sdfx"
//	mesh_cells = 300
//
//	[output]
//	dir = "out"
//	formats = ["stl", "svg"]
type Config struct {
	// Kernel selects the geometry backend: "bsp" or "sdfx".
	Kernel string `toml:"kernel"`
	// MeshCells is the sdfx marching cubes resolution.
	MeshCells int `toml:"mesh_cells"`
	// Segments is the cylinder side count for models that do not set
	// (defaults :segments).
	Segments int `toml:"segments"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
	// Timeout bounds one evaluation, as a Go duration such as "5s".
	Timeout string `toml:"timeout"`

	Output     Output     `toml:"output"`
	Sheet      Sheet      `toml:"sheet"`
	Projection Projection `toml:"projection"`
	Grading    Grading    `toml:"grading"`
}

// Output selects what is written and where.
type Output struct {
	Dir     string   `toml:"dir"`
	Formats []string `toml:"formats"`
}

// Sheet lays out SVG and DXF drawing sheets.
type Sheet struct {
	Scale  float64 `toml:"scale"`
	Cell   float64 `toml:"cell"`
	Margin float64 `toml:"margin"`
}

// Projection tunes hidden line drawing.
type Projection struct {
	CreaseAngle float64 `toml:"crease_angle"`
}

// Grading tunes sheet comparison.
type Grading struct {
	Tolerance float64 `toml:"tolerance"`
}

// Default returns the built-in settings.
func Default() Config {
	sheet := export.DefaultSheetOptions()
	return Config{
		Kernel:    string(kernel.BSP),
		MeshCells: 200,
		Segments:  graph.DefaultSegments,
		LogLevel:  "warn",
		Timeout:   engine.EvalTimeout.String(),
		Output: Output{
			Dir:     ".",
			Formats: []string{string(export.STL), string(export.SVG)},
		},
		Sheet:      Sheet{Scale: sheet.Scale, Cell: sheet.Cell, Margin: sheet.Margin},
		Projection: Projection{CreaseAngle: projection.DefaultCreaseAngle},
		Grading:    Grading{Tolerance: projection.DefaultTolerance},
	}
}

// Load reads path over Default and validates the result. Unknown keys
// are errors.
func Load(path string) (Config, error) {
	c := Default()
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&c); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if !slices.Contains([]kernel.Name{kernel.BSP, kernel.SDFX}, kernel.Name(c.Kernel)) {
		errs = append(errs, fmt.Errorf("%w %q", kernel.ErrUnknownKernel, c.Kernel))
	}
	if c.MeshCells < 8 {
		errs = append(errs, fmt.Errorf("mesh_cells %d below 8", c.MeshCells))
	}
	if c.Segments < 3 || c.Segments > graph.MaxSegments {
		errs = append(errs, fmt.Errorf("segments %d out of range [3, %d]", c.Segments, graph.MaxSegments))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Formats(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.EvalTimeout(); err != nil {
		errs = append(errs, err)
	}
	if c.Sheet.Scale <= 0 {
		errs = append(errs, fmt.Errorf("sheet.scale %g must be positive", c.Sheet.Scale))
	}
	if c.Sheet.Cell < 0 || c.Sheet.Margin < 0 {
		errs = append(errs, errors.New("sheet.cell and sheet.margin must not be negative"))
	}
	if c.Projection.CreaseAngle <= 0 || c.Projection.CreaseAngle >= 180 {
		errs = append(errs, fmt.Errorf("projection.crease_angle %g outside (0, 180)", c.Projection.CreaseAngle))
	}
	if c.Grading.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("grading.tolerance %g must be positive", c.Grading.Tolerance))
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// EvalTimeout parses Timeout.
func (c Config) EvalTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout %s must be positive", d)
	}
	return d, nil
}

// Formats parses Output.Formats, dropping duplicates.
func (c Config) Formats() ([]export.Format, error) {
	var out []export.Format
	for _, s := range c.Output.Formats {
		f, err := export.ParseFormat(s)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// SetFormats replaces Output.Formats from a comma separated list.
func (c *Config) SetFormats(list string) {
	c.Output.Formats = nil
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			c.Output.Formats = append(c.Output.Formats, s)
		}
	}
}

// NewKernel constructs the configured backend. The backend package must
// be linked in, usually by a blank import in main.
func (c Config) NewKernel() (kernel.Kernel, error) {
	k, err := kernel.New(kernel.Name(c.Kernel), kernel.Options{MeshCells: c.MeshCells})
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return k, nil
}

// Defaults returns the graph defaults evaluation starts from.
func (c Config) Defaults() graph.GlobalDefaults {
	return graph.GlobalDefaults{Segments: c.Segments}
}

// SheetOptions returns the sheet layout with the given title.
func (c Config) SheetOptions(title string) export.SheetOptions {
	return export.SheetOptions{Title: title, Scale: c.Sheet.Scale, Cell: c.Sheet.Cell, Margin: c.Sheet.Margin}
}

// ProjectionOptions returns the drawing options.
func (c Config) ProjectionOptions() projection.Options {
	return projection.Options{CreaseAngle: c.Projection.CreaseAngle}
}
