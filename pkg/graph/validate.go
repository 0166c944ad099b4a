package graph

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult splits findings into blocking errors and advisory
// warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Validate checks that g is a well formed model graph: acyclic, every
// reference resolved, names unique, and models only at the roots. Findings
// come out in a stable order so repeated runs print the same diagnostics.
// The graph is not modified.
func Validate(g *DesignGraph) []ValidationError {
	ids := sortedIDs(g)
	var errs []ValidationError
	errs = append(errs, validateDAG(g, ids)...)
	errs = append(errs, validateReferences(g, ids)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateOrphans(g, ids)...)
	errs = append(errs, validateModelPlacement(g, ids)...)
	return errs
}

// ValidateAll runs the structural checks of Validate, then the geometry
// and catalog checks. Structural warnings join the advisory list.
func ValidateAll(g *DesignGraph) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{NodeID: e.NodeID, Message: e.Message})
			continue
		}
		result.Errors = append(result.Errors, e)
	}

	geomErrs, geomWarnings := validateGeometry(g)
	result.Errors = append(result.Errors, geomErrs...)
	result.Warnings = append(result.Warnings, geomWarnings...)
	result.Warnings = append(result.Warnings, validateCatalog(g)...)
	return result
}

// OK reports whether the result has no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// sortedIDs returns the node IDs of g in byte order.
func sortedIDs(g *DesignGraph) []NodeID {
	ids := lo.Keys(g.Nodes)
	slices.SortFunc(ids, func(a, b NodeID) int { return bytes.Compare(a[:], b[:]) })
	return ids
}

// label names a node for messages.
func label(n *Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

// validateDAG reports the first cycle found. A part reused by several
// placements is fine; only a node reaching itself through Children is not.
func validateDAG(g *DesignGraph, ids []NodeID) []ValidationError {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[NodeID]int, len(g.Nodes))

	// Iterative DFS: each frame is a node and the index of the next child.
	type frame struct {
		id   NodeID
		next int
	}
	for _, start := range ids {
		if state[start] != unvisited {
			continue
		}
		stack := []frame{{id: start}}
		state[start] = onPath
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			node := g.Nodes[top.id]
			if node == nil || top.next == len(node.Children) {
				state[top.id] = done
				stack = stack[:len(stack)-1]
				continue
			}
			child := node.Children[top.next]
			top.next++
			switch state[child] {
			case onPath:
				return []ValidationError{{
					NodeID:   child,
					Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", child.Short()),
					Severity: SeverityError,
				}}
			case unvisited:
				if _, ok := g.Nodes[child]; ok {
					state[child] = onPath
					stack = append(stack, frame{id: child})
				}
			}
		}
	}
	return nil
}

// validateReferences checks child and root references.
func validateReferences(g *DesignGraph, ids []NodeID) []ValidationError {
	var errs []ValidationError
	for _, id := range ids {
		for _, childID := range g.Nodes[id].Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateNames checks that each name index entry resolves and that no two
// nodes carry the same name, since (part "name") must be unambiguous.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	names := lo.Keys(g.NameIndex)
	slices.Sort(names)
	for _, name := range names {
		if id := g.NameIndex[name]; g.Nodes[id] == nil {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	named := lo.Filter(lo.Values(g.Nodes), func(n *Node, _ int) bool { return n.Name != "" })
	counts := lo.CountValuesBy(named, func(n *Node) string { return n.Name })
	dups := lo.Keys(lo.PickBy(counts, func(_ string, c int) bool { return c > 1 }))
	slices.Sort(dups)
	for _, name := range dups {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, counts[name]),
			Severity: SeverityError,
		})
	}
	return errs
}

// validateOrphans warns about nodes no model root reaches. They are never
// meshed or drawn.
func validateOrphans(g *DesignGraph, ids []NodeID) []ValidationError {
	reachable := make(map[NodeID]bool, len(g.Nodes))
	queue := lo.Filter(g.Roots, func(id NodeID, _ int) bool { return g.Nodes[id] != nil })
	for _, id := range queue {
		reachable[id] = true
	}
	for len(queue) > 0 {
		node := g.Nodes[queue[0]]
		queue = queue[1:]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	var errs []ValidationError
	for _, id := range ids {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", label(g.Nodes[id])),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateModelPlacement rejects models nested inside other nodes and
// warns about roots that are not models, since only models are drawn.
func validateModelPlacement(g *DesignGraph, ids []NodeID) []ValidationError {
	var errs []ValidationError
	for _, id := range ids {
		node := g.Nodes[id]
		for _, childID := range node.Children {
			if child := g.Nodes[childID]; child != nil && child.Kind == NodeModel {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("model %q nested inside %s; models must be roots", child.Name, node.Kind),
					Severity: SeverityError,
				})
			}
		}
	}
	for _, rid := range g.Roots {
		if node := g.Nodes[rid]; node != nil && node.Kind != NodeModel {
			errs = append(errs, ValidationError{
				NodeID:   rid,
				Message:  fmt.Sprintf("root %q is a %s, not a model, and will not be drawn", label(node), node.Kind),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
