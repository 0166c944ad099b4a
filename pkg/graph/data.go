package graph

import "fmt"

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// PrimitiveKind distinguishes between primitive shapes.
type PrimitiveKind int

const (
	PrimBlock    PrimitiveKind = iota // rectangular solid
	PrimCylinder                      // cylindrical solid
)

// BlockData represents a rectangular solid centred on its origin.
type BlockData struct {
	PrimKind   PrimitiveKind `json:"prim_kind"`
	Dimensions Vec3          `json:"dimensions"` // width x height x depth in mm
}

func (BlockData) nodeData() {}

// CylinderData represents a cylinder centred on its origin.
type CylinderData struct {
	PrimKind PrimitiveKind `json:"prim_kind"`
	Radius   float64       `json:"radius"` // mm
	Height   float64       `json:"height"` // mm, along Axis
	Axis     Axis          `json:"axis"`
	Segments int           `json:"segments,omitempty"` // 0 = graph default
}

func (CylinderData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a child node.
// Created by the (place ...) form. Rotation is applied before translation.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping whose children are unioned.
// Created by the (group ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// BoolOp enumerates boolean operations.
type BoolOp int

const (
	OpUnion BoolOp = iota
	OpSubtract
	OpIntersect
)

func (o BoolOp) String() string {
	switch o {
	case OpUnion:
		return "union"
	case OpSubtract:
		return "subtract"
	case OpIntersect:
		return "intersect"
	default:
		return "unknown"
	}
}

// ParseBoolOp parses the name of a boolean form.
func ParseBoolOp(s string) (BoolOp, error) {
	switch s {
	case "union":
		return OpUnion, nil
	case "subtract":
		return OpSubtract, nil
	case "intersect":
		return OpIntersect, nil
	default:
		return 0, fmt.Errorf("graph: unknown boolean op %q", s)
	}
}

// BooleanData folds the node's children left to right with Op: the first
// child is the base and each following child is combined into it.
type BooleanData struct {
	Op BoolOp `json:"op"`
}

func (BooleanData) nodeData() {}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// Difficulty bounds for catalog entries.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// ModelData marks a root that is drawn as one exercise. Its children
// are unioned into a single solid.
type ModelData struct {
	Title       string `json:"title"`
	Difficulty  int    `json:"difficulty,omitempty"`
	Description string `json:"description,omitempty"`
}

func (ModelData) nodeData() {}
