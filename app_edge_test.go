package orthoview

import (
	"strings"
	"testing"
)

func hasDiagnostic(ds []Diagnostic, substr string) bool {
	for _, d := range ds {
		if strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 models, 0 errors, non-nil slices.
// ---------------------------------------------------------------------------

func TestE2EEmptySource(t *testing.T) {
	app := newTestApp(t, nil)
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %v", result.Errors)
	}
	if len(result.Models) != 0 {
		t.Errorf("expected 0 models for empty source, got %d", len(result.Models))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %v", result.Warnings)
	}
	if result.Models == nil || result.Errors == nil || result.Warnings == nil {
		t.Error("result slices should be non-nil")
	}
}

func TestE2ECommentsOnly(t *testing.T) {
	app := newTestApp(t, nil)
	result := app.Evaluate(";; pieza sin geometria\n; nothing here\n")
	if !result.OK() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Models) != 0 {
		t.Errorf("expected 0 models, got %d", len(result.Models))
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax errors: reported as diagnostics, never fatal.
// ---------------------------------------------------------------------------

func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp(t, nil)

	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	result := app.Evaluate("(+ 1 2)\n(model \"test\"")
	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Models) != 0 {
		t.Errorf("expected 0 models on syntax error, got %d", len(result.Models))
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

// ---------------------------------------------------------------------------
// 3. Undefined references.
// ---------------------------------------------------------------------------

func TestE2EUndefinedPartReference(t *testing.T) {
	app := newTestApp(t, nil)
	result := app.Evaluate(`
(defpart "base" (block 6 1 4))

(model "m" :title "m"
  (place (part "nonexistent") :at (vec3 0 0 0)))
`)
	if !hasDiagnostic(result.Errors, "nonexistent") {
		t.Errorf("expected error mentioning 'nonexistent', got: %v", result.Errors)
	}
	if len(result.Models) != 0 {
		t.Errorf("expected 0 models on error, got %d", len(result.Models))
	}
}

func TestE2EModelAsOperand(t *testing.T) {
	app := newTestApp(t, nil)
	result := app.Evaluate(`
(model "a" :title "a" (block 1 1 1))
(model "b" :title "b" (union (part "a") (block 1 1 1)))
`)
	if !hasDiagnostic(result.Errors, "cannot be used as geometry") {
		t.Errorf("expected model-as-geometry error, got %v", result.Errors)
	}
}

// ---------------------------------------------------------------------------
// 4. Degenerate dimensions are validation errors naming the node.
// ---------------------------------------------------------------------------

func TestE2EDegenerateDimensions(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"zero block", `(model "m" :title "m" (block 0 1 1))`, "must be positive"},
		{"negative block", `(model "m" :title "m" (block 1 -2 1))`, "must be positive"},
		{"zero radius", `(model "m" :title "m" (cylinder :radius 0 :height 2))`, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, nil)
			result := app.Evaluate(tt.source)
			if !hasDiagnostic(result.Errors, tt.want) {
				t.Fatalf("expected %q error, got %v", tt.want, result.Errors)
			}
			if result.Errors[0].Node == "" {
				t.Error("validation error should name its node")
			}
			if len(result.Models) != 0 {
				t.Errorf("expected 0 models, got %d", len(result.Models))
			}
		})
	}
}

// ---------------------------------------------------------------------------
// 5. Warnings never block the pipeline.
// ---------------------------------------------------------------------------

func TestE2EWarningsKept(t *testing.T) {
	app := newTestApp(t, nil)
	result := app.Evaluate(`
(defpart "spare" (block 1 1 1))
(model "untitled" (block 2 2 2))
`)
	if !result.OK() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Models) != 1 {
		t.Fatalf("expected 1 model, got %d", len(result.Models))
	}
	if !hasDiagnostic(result.Warnings, "no title") {
		t.Errorf("expected missing title warning, got %v", result.Warnings)
	}
	if !hasDiagnostic(result.Warnings, "orphan") {
		t.Errorf("expected orphan warning, got %v", result.Warnings)
	}
}

// ---------------------------------------------------------------------------
// 6. Rapid evaluation: no panics between error and success states.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Sequential on purpose: zygomys sandbox creation is not safe to run
	// concurrently, and the engine serialises calls anyway.
	app := newTestApp(t, nil)

	sources := []string{
		`(model "ok" :title "ok" (block 1 1 1))`,
		`(model "broken"`,
		``,
		`(part "missing")`,
		`(model "also-ok" :title "x" (subtract (block 2 2 2) (cylinder :radius 0.5 :height 3)))`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(undefined-func 1 2 3)`,
		`(model "last" :title "y" (group (block 1 1 1) (place (block 1 1 1) :at (vec3 1 0 0))))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}

	result := app.Evaluate(sources[0])
	if !result.OK() || len(result.Models) != 1 {
		t.Errorf("engine did not recover: %v", result.Errors)
	}
}

// ---------------------------------------------------------------------------
// 7. Large dimensions: valid meshes and drawings without crash.
// ---------------------------------------------------------------------------

func TestE2ELargeDimensions(t *testing.T) {
	app := newTestApp(t, nil)
	result := app.Evaluate(`(model "huge" :title "huge" (block 10000 10000 19))`)
	if !result.OK() {
		t.Fatalf("unexpected errors for large block: %v", result.Errors)
	}
	if len(result.Models) != 1 {
		t.Fatalf("expected 1 model, got %d", len(result.Models))
	}
	m := result.Models[0]
	if m.Mesh.TriangleCount() != 12 {
		t.Errorf("expected 12 triangles, got %d", m.Mesh.TriangleCount())
	}
	for _, d := range m.Drawings {
		if len(d.Visible()) != 4 {
			t.Errorf("%s: expected 4 outline segments, got %v", d.View.Name, d.Segments)
		}
	}
}

// ---------------------------------------------------------------------------
// 8. Several models sharing parts.
// ---------------------------------------------------------------------------

func TestE2EMultipleModelsWithSharedParts(t *testing.T) {
	app := newTestApp(t, nil)
	result := app.Evaluate(`
(defpart "panel" (block 3 2 1))
(defpart "rail" (block 3 1 1))

(model "frame-a" :title "A"
  (place (part "panel") :at (vec3 0 0 0))
  (place (part "rail") :at (vec3 0 1.5 0)))

(model "frame-b" :title "B"
  (place (part "panel") :at (vec3 5 0 0))
  (place (part "rail") :at (vec3 5 -1.5 0)))
`)
	if !result.OK() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(result.Models))
	}
	for _, m := range result.Models {
		min, max := m.Mesh.Bounds()
		if h := max[1] - min[1]; h < 2.999 || h > 3.001 {
			t.Errorf("%s: height %f, want 3", m.Name, h)
		}
	}
	if result.Models[0].Name != "frame-a" || result.Models[1].Name != "frame-b" {
		t.Errorf("models out of source order: %s, %s", result.Models[0].Name, result.Models[1].Name)
	}
}

// ---------------------------------------------------------------------------
// 9. Diagnostics format.
// ---------------------------------------------------------------------------

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		d    Diagnostic
		want string
	}{
		{Diagnostic{Line: 3, Message: "boom"}, "line 3: boom"},
		{Diagnostic{Node: "base", Message: "bad"}, "base: bad"},
		{Diagnostic{Message: "plain"}, "plain"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
