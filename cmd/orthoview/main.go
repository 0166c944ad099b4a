// Command orthoview builds the solids described in a model file, writes
// them and their alzado, planta and perfil drawings, and grades drawing
// sheets against them.
//
// Usage:
//
//	orthoview [-config file] [-kernel bsp|sdfx] [-out dir] [-format list] [-v] model.ovw
//	orthoview -grade sheet.toml [-model name] model.ovw
//	orthoview -list model.ovw
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chazu/orthoview"
	"github.com/chazu/orthoview/pkg/config"
	"github.com/chazu/orthoview/pkg/projection"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// errUsage marks command line mistakes.
var errUsage = errors.New("usage")

type options struct {
	configPath string
	kernel     string
	out        string
	formats    string
	grade      string
	model      string
	timeout    string
	list       bool
	verbose    bool
	debug      bool
	quiet      bool
	source     string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("orthoview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "TOML settings `file`")
	fs.StringVar(&o.kernel, "kernel", "", "geometry kernel: bsp or sdfx")
	fs.StringVar(&o.out, "out", "", "output `dir`ectory")
	fs.StringVar(&o.formats, "format", "", "comma separated output formats: stl,3mf,svg,dxf,toml")
	fs.StringVar(&o.grade, "grade", "", "grade the TOML drawing `sheet` instead of exporting")
	fs.StringVar(&o.model, "model", "", "model to grade against (default: the sheet's model)")
	fs.StringVar(&o.timeout, "timeout", "", "evaluation time limit, e.g. 10s")
	fs.BoolVar(&o.list, "list", false, "list the models and exit")
	fs.BoolVar(&o.verbose, "v", false, "log progress")
	fs.BoolVar(&o.debug, "vv", false, "log debug detail")
	fs.BoolVar(&o.quiet, "q", false, "log errors only")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: orthoview [flags] model.ovw")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return o, errUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, errUsage
	}
	o.source = fs.Arg(0)
	return o, nil
}

// loadConfig layers flags over the config file over defaults.
func loadConfig(o options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}
	if o.kernel != "" {
		cfg.Kernel = o.kernel
	}
	if o.out != "" {
		cfg.Output.Dir = o.out
	}
	if o.timeout != "" {
		cfg.Timeout = o.timeout
	}
	if o.formats != "" {
		cfg.SetFormats(o.formats)
	}
	switch {
	case o.debug:
		cfg.LogLevel = "debug"
	case o.verbose:
		cfg.LogLevel = "info"
	case o.quiet:
		cfg.LogLevel = "error"
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(stderr, "orthoview: %v\n", err)
		return 2
	}
	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	app, err := orthoview.NewApp(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}

	source, err := os.ReadFile(o.source)
	if err != nil {
		fmt.Fprintf(stderr, "orthoview: %v\n", err)
		return 1
	}
	result := app.EvaluateContext(ctx, string(source))
	for _, w := range result.Warnings {
		fmt.Fprintf(stderr, "%s: warning: %s\n", o.source, w)
	}
	if !result.OK() {
		for _, e := range result.Errors {
			fmt.Fprintf(stderr, "%s: %s\n", o.source, e)
		}
		return 1
	}

	switch {
	case o.list:
		for _, m := range result.Models {
			fmt.Fprintf(stdout, "%-12s %d  %s\n", m.Name, m.Difficulty, m.Title)
		}
		return 0
	case o.grade != "":
		scores, err := app.GradeFile(result, o.model, o.grade)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
		printScores(stdout, scores)
		return 0
	}

	base := strings.TrimSuffix(filepath.Base(o.source), filepath.Ext(o.source))
	paths, err := app.Export(result, base)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	for _, p := range paths {
		fmt.Fprintln(stdout, p)
	}
	return 0
}

func printScores(w io.Writer, scores []projection.Score) {
	var matched, total float64
	for _, s := range scores {
		fmt.Fprintf(w, "%-8s %6.1f%%  matched %.2f  wrong style %.2f  missing %.2f  extra %.2f\n",
			s.View.Name, s.Percent(), s.Matched, s.WrongStyle, s.Missing, s.Extra)
		for _, seg := range s.MissingSegments {
			fmt.Fprintf(w, "    missing %s\n", seg)
		}
		for _, seg := range s.WrongStyleSegments {
			fmt.Fprintf(w, "    should be %s\n", seg)
		}
		for _, seg := range s.ExtraSegments {
			fmt.Fprintf(w, "    extra   %s\n", seg)
		}
		matched += s.Matched
		total += s.Reference() + s.Extra
	}
	overall := 100.0
	if total > 0 {
		overall = 100 * matched / total
	}
	fmt.Fprintf(w, "%-8s %6.1f%%\n", "total", overall)
}
