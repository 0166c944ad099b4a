package graph

import (
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Geometry: shapes the kernels can build
// ---------------------------------------------------------------------------

// MaxSegments bounds cylinder tessellation.
const MaxSegments = 512

// validateGeometry rejects shapes no kernel can mesh and warns about
// rotations that leave faces off the drawing axes.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validatePositiveDimensions(g)...)
	errs = append(errs, validateSegments(g)...)
	errs = append(errs, validateArity(g)...)

	warnings = append(warnings, validateAxisAlignedRotation(g)...)

	return errs, warnings
}

func positive(node *Node, what string, v float64) []ValidationError {
	if v > 0 && !math.IsInf(v, 0) {
		return nil
	}
	return []ValidationError{{
		NodeID:   node.ID,
		Message:  fmt.Sprintf("%s is %.4f, must be positive", what, v),
		Severity: SeverityError,
	}}
}

// validatePositiveDimensions checks that every block has positive X, Y, Z
// and every cylinder a positive radius and height.
func validatePositiveDimensions(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case BlockData:
			errs = append(errs, positive(node, "block dimension X", d.Dimensions.X)...)
			errs = append(errs, positive(node, "block dimension Y", d.Dimensions.Y)...)
			errs = append(errs, positive(node, "block dimension Z", d.Dimensions.Z)...)
		case CylinderData:
			errs = append(errs, positive(node, "cylinder radius", d.Radius)...)
			errs = append(errs, positive(node, "cylinder height", d.Height)...)
		}
	}

	return errs
}

// validateSegments checks explicit cylinder segment counts. Zero means the
// graph default.
func validateSegments(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		cd, ok := node.Data.(CylinderData)
		if !ok || cd.Segments == 0 {
			continue
		}
		if cd.Segments < 3 || cd.Segments > MaxSegments {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("cylinder segments %d out of range [3, %d]", cd.Segments, MaxSegments),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateArity checks child counts: primitives have none, transforms
// exactly one, booleans at least two, groups and models at least one.
func validateArity(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		n := len(node.Children)
		var msg string
		switch node.Kind {
		case NodePrimitive:
			if n != 0 {
				msg = fmt.Sprintf("primitive has %d children, want none", n)
			}
		case NodeTransform:
			if n != 1 {
				msg = fmt.Sprintf("transform has %d children, want exactly one", n)
			}
		case NodeBoolean:
			if n < 2 {
				op := "boolean"
				if bd, ok := node.Data.(BooleanData); ok {
					op = bd.Op.String()
				}
				msg = fmt.Sprintf("%s has %d operands, want at least two", op, n)
			}
		case NodeGroup, NodeModel:
			if n == 0 {
				msg = fmt.Sprintf("%s %q has no geometry", node.Kind, node.Name)
			}
		}
		if msg != "" {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  msg,
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateAxisAlignedRotation warns about rotations that are not a multiple
// of 90 degrees. Such parts show foreshortened faces in every view.
func validateAxisAlignedRotation(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		td, ok := node.Data.(TransformData)
		if !ok || td.Rotation == nil {
			continue
		}
		for _, a := range [3]float64{td.Rotation.X, td.Rotation.Y, td.Rotation.Z} {
			if r := math.Mod(a, 90); math.Abs(r) > 1e-9 && math.Abs(math.Abs(r)-90) > 1e-9 {
				warnings = append(warnings, ValidationWarning{
					NodeID:  node.ID,
					Message: fmt.Sprintf("rotation %.1f° is not a multiple of 90°; views will show foreshortened faces", a),
				})
				break
			}
		}
	}

	return warnings
}

// ---------------------------------------------------------------------------
// Catalog: exercise metadata
// ---------------------------------------------------------------------------

// validateCatalog checks the title and difficulty shown for each model.
func validateCatalog(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Models() {
		md, ok := node.Data.(ModelData)
		if !ok {
			continue
		}
		if md.Title == "" {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("model %q has no title", node.Name),
			})
		}
		if md.Difficulty != 0 && (md.Difficulty < MinDifficulty || md.Difficulty > MaxDifficulty) {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("model %q difficulty %d outside [%d, %d]", node.Name, md.Difficulty, MinDifficulty, MaxDifficulty),
			})
		}
	}

	return warnings
}
