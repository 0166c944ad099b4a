package graph

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// buildBracket creates a valid model: a block with a cylindrical hole
// placed through it, all reachable from the model root.
func buildBracket() *DesignGraph {
	g := New()

	baseID := NewNodeID("defpart/base")
	holeID := NewNodeID("defpart/hole")
	placeID := NewNodeID("place/hole")
	cutID := NewNodeID("subtract/bracket")
	modelID := NewNodeID("model/bracket")

	g.AddNode(&Node{
		ID: baseID, Kind: NodePrimitive, Name: "base",
		Data: BlockData{PrimKind: PrimBlock, Dimensions: Vec3{60, 10, 40}},
	})
	g.AddNode(&Node{
		ID: holeID, Kind: NodePrimitive, Name: "hole",
		Data: CylinderData{PrimKind: PrimCylinder, Radius: 5, Height: 20, Axis: AxisY},
	})
	g.AddNode(&Node{
		ID: placeID, Kind: NodeTransform,
		Children: []NodeID{holeID},
		Data:     TransformData{Translation: &Vec3{15, 0, 0}},
	})
	g.AddNode(&Node{
		ID: cutID, Kind: NodeBoolean,
		Children: []NodeID{baseID, placeID},
		Data:     BooleanData{Op: OpSubtract},
	})
	g.AddNode(&Node{
		ID: modelID, Kind: NodeModel, Name: "bracket",
		Children: []NodeID{cutID},
		Data:     ModelData{Title: "Drilled bracket", Difficulty: 2},
	})
	g.AddRoot(modelID)

	return g
}

// hasError returns true if errs contains at least one error-severity finding
// whose message contains substr.
func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// hasWarning returns true if errs contains at least one warning-severity
// finding whose message contains substr.
func hasWarning(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityWarning && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// errorCount returns the number of error-severity findings.
func errorCount(errs []ValidationError) int {
	n := 0
	for _, e := range errs {
		if e.Severity == SeverityError {
			n++
		}
	}
	return n
}

func logAll(t *testing.T, errs []ValidationError) {
	t.Helper()
	for _, e := range errs {
		t.Logf("  %s", e)
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestValidate_ValidGraph(t *testing.T) {
	g := buildBracket()
	errs := Validate(g)
	if len(errs) != 0 {
		for _, e := range errs {
			t.Errorf("unexpected validation error: %s", e)
		}
	}
}

func TestValidate_EmptyGraph(t *testing.T) {
	g := New()
	errs := Validate(g)
	if len(errs) != 0 {
		for _, e := range errs {
			t.Errorf("unexpected validation error on empty graph: %s", e)
		}
	}
}

func TestValidate_CycleDetection(t *testing.T) {
	g := New()

	aID := NewNodeID("a")
	bID := NewNodeID("b")
	cID := NewNodeID("c")

	// Create a cycle: a -> b -> c -> a
	g.AddNode(&Node{
		ID: aID, Kind: NodeModel, Name: "a",
		Children: []NodeID{bID},
		Data:     ModelData{Title: "a"},
	})
	g.AddNode(&Node{
		ID: bID, Kind: NodeGroup, Name: "b",
		Children: []NodeID{cID},
		Data:     GroupData{},
	})
	g.AddNode(&Node{
		ID: cID, Kind: NodeGroup, Name: "c",
		Children: []NodeID{bID},
		Data:     GroupData{},
	})
	g.AddRoot(aID)

	errs := Validate(g)
	if !hasError(errs, "cycle") {
		t.Error("expected cycle detection error, got none")
		logAll(t, errs)
	}
}

func TestValidate_DanglingReference(t *testing.T) {
	g := New()

	parentID := NewNodeID("parent")
	missingID := NewNodeID("missing-child")

	g.AddNode(&Node{
		ID: parentID, Kind: NodeModel, Name: "parent",
		Children: []NodeID{missingID},
		Data:     ModelData{Title: "parent"},
	})
	g.AddRoot(parentID)

	errs := Validate(g)
	if !hasError(errs, "does not exist") {
		t.Error("expected dangling reference error, got none")
		logAll(t, errs)
	}
}

func TestValidate_DanglingRoot(t *testing.T) {
	g := buildBracket()
	g.AddRoot(NewNodeID("nowhere"))

	errs := Validate(g)
	if !hasError(errs, "root reference") {
		t.Error("expected dangling root error")
		logAll(t, errs)
	}
}

func TestValidate_DuplicateNames(t *testing.T) {
	g := buildBracket()
	g.AddNode(&Node{
		ID: NewNodeID("defpart/base-2"), Kind: NodePrimitive, Name: "base",
		Data: BlockData{PrimKind: PrimBlock, Dimensions: Vec3{1, 1, 1}},
	})

	errs := Validate(g)
	if !hasError(errs, `duplicate name "base"`) {
		t.Error("expected duplicate name error")
		logAll(t, errs)
	}
}

func TestValidate_NameIndexDangling(t *testing.T) {
	g := buildBracket()
	g.NameIndex["ghost"] = NewNodeID("ghost")

	errs := Validate(g)
	if !hasError(errs, "non-existent node") {
		t.Error("expected name index error")
		logAll(t, errs)
	}
}

func TestValidate_OrphanWarning(t *testing.T) {
	g := buildBracket()
	g.AddNode(&Node{
		ID: NewNodeID("defpart/spare"), Kind: NodePrimitive, Name: "spare",
		Data: BlockData{PrimKind: PrimBlock, Dimensions: Vec3{1, 1, 1}},
	})

	errs := Validate(g)
	if errorCount(errs) != 0 {
		t.Errorf("orphans should not be errors")
		logAll(t, errs)
	}
	if !hasWarning(errs, `"spare" is not reachable`) {
		t.Error("expected orphan warning")
		logAll(t, errs)
	}
}

func TestValidate_NestedModel(t *testing.T) {
	g := buildBracket()
	outer := NewNodeID("group/outer")
	g.AddNode(&Node{
		ID: outer, Kind: NodeGroup, Name: "outer",
		Children: []NodeID{NewNodeID("model/bracket")},
		Data:     GroupData{},
	})
	g.Roots = []NodeID{outer}

	errs := Validate(g)
	if !hasError(errs, "models must be roots") {
		t.Error("expected nested model error")
		logAll(t, errs)
	}
	if !hasWarning(errs, "not a model") {
		t.Error("expected non-model root warning")
		logAll(t, errs)
	}
}

func TestValidationErrorString(t *testing.T) {
	id := NewNodeID("x")
	e := ValidationError{NodeID: id, Message: "boom", Severity: SeverityError}
	want := "[error] node " + id.Short() + ": boom"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}

	e = ValidationError{Message: "graph-level", Severity: SeverityWarning}
	if e.Error() != "[warning] graph-level" {
		t.Errorf("Error() = %q", e.Error())
	}
}

func TestValidateAll_SeparatesSeverities(t *testing.T) {
	g := buildBracket()
	g.AddNode(&Node{
		ID: NewNodeID("defpart/spare"), Kind: NodePrimitive, Name: "spare",
		Data: BlockData{PrimKind: PrimBlock, Dimensions: Vec3{0, 1, 1}},
	})

	res := ValidateAll(g)
	if res.OK() {
		t.Fatal("zero dimension should block")
	}
	if len(res.Errors) != 1 {
		t.Errorf("errors = %v, want only the dimension error", res.Errors)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w.Message, "orphan") {
			found = true
		}
	}
	if !found {
		t.Errorf("orphan finding should land in warnings: %v", res.Warnings)
	}
}

func TestValidateAll_ValidGraph(t *testing.T) {
	res := ValidateAll(buildBracket())
	if !res.OK() || len(res.Warnings) != 0 {
		t.Errorf("valid graph: errors=%v warnings=%v", res.Errors, res.Warnings)
	}
}

func TestValidate_StableOrder(t *testing.T) {
	g := buildBracket()
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		g.AddNode(&Node{
			ID: NewNodeID("defpart/" + name), Kind: NodePrimitive, Name: name,
			Data: BlockData{PrimKind: PrimBlock, Dimensions: Vec3{1, 1, 1}},
		})
	}

	messages := func() string {
		var b strings.Builder
		for _, e := range Validate(g) {
			b.WriteString(e.Message)
			b.WriteByte('\n')
		}
		return b.String()
	}
	first := messages()
	if strings.Count(first, "orphan") != 6 {
		t.Fatalf("expected 6 orphan warnings, got:\n%s", first)
	}
	for i := 0; i < 20; i++ {
		if got := messages(); got != first {
			t.Fatalf("run %d order differs:\n%s\nvs\n%s", i, got, first)
		}
	}
}

func TestValidate_SharedPartIsNotCycle(t *testing.T) {
	g := buildBracket()
	// A second placement of the same hole primitive is a diamond, not a cycle.
	again := NewNodeID("place/hole-2")
	g.AddNode(&Node{
		ID: again, Kind: NodeTransform,
		Children: []NodeID{NewNodeID("defpart/hole")},
		Data:     TransformData{Translation: &Vec3{-15, 0, 0}},
	})
	cut := g.Get(NewNodeID("subtract/bracket"))
	cut.Children = append(cut.Children, again)

	if errs := Validate(g); hasError(errs, "cycle") {
		t.Error("shared part reported as cycle")
		logAll(t, errs)
	}
}
