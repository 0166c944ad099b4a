package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/orthoview/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms model source code before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: base-plate -> base_plate
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
//  3. Line comments: ; and ;; become //, which is what zygomys reads.
//
// All transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only when the hyphen sits between identifier characters; a
		// minus operator or negative literal is left alone.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpShape wraps primitive data that has not been added to the graph yet.
// defpart names it; any other builtin taking an operand adds it as an
// anonymous primitive.
type sexpShape struct {
	data graph.NodeData
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	switch d := s.data.(type) {
	case graph.BlockData:
		return fmt.Sprintf("(block %g %g %g)", d.Dimensions.X, d.Dimensions.Y, d.Dimensions.Z)
	case graph.CylinderData:
		return fmt.Sprintf("(cylinder :radius %g :height %g :axis :%s)", d.Radius, d.Height, d.Axis)
	}
	return "(shape)"
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value; treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a whole number. Floats are accepted when integral.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toAxis converts a keyword or string to a graph.Axis.
func toAxis(s zygo.Sexp) (graph.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	return graph.ParseAxis(name)
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return graph.NodeID{}, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Graph builder
// ---------------------------------------------------------------------------

// builder holds the graph under construction for one evaluation. Anonymous
// nodes are numbered in evaluation order, so the same source always yields
// the same node IDs.
type builder struct {
	g     *graph.DesignGraph
	count map[string]int
}

func newBuilder(g *graph.DesignGraph) *builder {
	return &builder{g: g, count: make(map[string]int)}
}

// path returns the next deterministic ID path under prefix.
func (b *builder) path(prefix string) string {
	b.count[prefix]++
	return fmt.Sprintf("%s/%d", prefix, b.count[prefix])
}

// operand resolves a builtin argument to a node in the graph. Unnamed
// shapes become anonymous primitives.
func (b *builder) operand(s zygo.Sexp) (graph.NodeID, error) {
	switch v := s.(type) {
	case *sexpNodeRef:
		if n := b.g.Get(v.id); n != nil && n.Kind == graph.NodeModel {
			return graph.NodeID{}, fmt.Errorf("model %q cannot be used as geometry", n.Name)
		}
		return v.id, nil
	case *sexpShape:
		id := graph.NewNodeID(b.path("shape"))
		b.g.AddNode(&graph.Node{ID: id, Kind: graph.NodePrimitive, Data: v.data})
		return id, nil
	}
	return graph.NodeID{}, fmt.Errorf("expected shape or node reference, got %T (%s)", s, s.SexpString(nil))
}

// operands resolves every argument, flattening lists so generated
// children can be spliced in with (list ...).
func (b *builder) operands(args []zygo.Sexp) ([]graph.NodeID, error) {
	var ids []graph.NodeID
	for i, arg := range args {
		switch arg.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(arg)
			if err != nil {
				return nil, fmt.Errorf("operand %d: %w", i+1, err)
			}
			nested, err := b.operands(items)
			if err != nil {
				return nil, fmt.Errorf("operand %d: %w", i+1, err)
			}
			ids = append(ids, nested...)
		default:
			id, err := b.operand(arg)
			if err != nil {
				return nil, fmt.Errorf("operand %d: %w", i+1, err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// claimName fails if name is already bound to a node.
func (b *builder) claimName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if b.g.Lookup(name) != nil {
		return fmt.Errorf("name %q already defined", name)
	}
	return nil
}

// boolean returns the builtin for one boolean operator.
func (b *builder) boolean(op graph.BoolOp) zygo.ZlispUserFunction {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		children, err := b.operands(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
		}
		if len(children) == 0 {
			return zygo.SexpNull, fmt.Errorf("%s requires at least one operand", op)
		}
		id := graph.NewNodeID(b.path(op.String()))
		b.g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeBoolean,
			Children: children,
			Data:     graph.BooleanData{Op: op},
		})
		return &sexpNodeRef{id: id}, nil
	}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all model DSL builtins into a zygomys environment.
// The builtins operate on the provided DesignGraph, populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.DesignGraph) {
	b := newBuilder(g)

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: graph.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (block 6 1 4) or (block :size (vec3 6 1 4))
	// -----------------------------------------------------------------------
	env.AddFunction("block", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		bd := graph.BlockData{PrimKind: graph.PrimBlock}

		if v, ok := pa.kw["size"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("block: size: %w", err)
			}
			bd.Dimensions = vec
		} else {
			if len(pa.positional) != 3 {
				return zygo.SexpNull, fmt.Errorf("block requires 3 dimensions or :size, got %d arguments", len(pa.positional))
			}
			var dims [3]float64
			for i, arg := range pa.positional {
				f, err := toFloat64(arg)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("block: dimension %d: %w", i+1, err)
				}
				dims[i] = f
			}
			bd.Dimensions = graph.Vec3{X: dims[0], Y: dims[1], Z: dims[2]}
		}

		return &sexpShape{data: bd}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :radius 1 :height 2 :axis :y :segments 24)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		cd := graph.CylinderData{PrimKind: graph.PrimCylinder, Axis: graph.AxisY}

		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
			}
			cd.Radius = f
		}
		if v, ok := pa.kw["height"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
			}
			cd.Height = f
		}
		if v, ok := pa.kw["axis"]; ok {
			a, err := toAxis(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: axis: %w", err)
			}
			cd.Axis = a
		}
		if v, ok := pa.kw["segments"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
			cd.Segments = n
		}

		return &sexpShape{data: cd}, nil
	})

	// -----------------------------------------------------------------------
	// (defpart "name" (block ...))
	// (defpart "name" (subtract ...))
	// -----------------------------------------------------------------------
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a body expression")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}
		if err := b.claimName(partName); err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: %w", err)
		}

		id := graph.NewNodeID("defpart/" + partName)
		node := &graph.Node{ID: id, Name: partName}
		switch body := args[1].(type) {
		case *sexpShape:
			node.Kind = graph.NodePrimitive
			node.Data = body.data
		case *sexpNodeRef:
			// Composite parts are a one-child group so the name has a node
			// of its own.
			child, err := b.operand(body)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defpart: %w", err)
			}
			node.Kind = graph.NodeGroup
			node.Children = []graph.NodeID{child}
			node.Data = graph.GroupData{}
		default:
			return zygo.SexpNull, fmt.Errorf("defpart: expected shape expression, got %T", args[1])
		}
		g.AddNode(node)

		return &sexpNodeRef{id: id, name: partName}, nil
	})

	// -----------------------------------------------------------------------
	// (part "name")
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}

		n := g.Lookup(partName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}

		return &sexpNodeRef{id: n.ID, name: partName}, nil
	})

	// -----------------------------------------------------------------------
	// (place (part "top") :at (vec3 0 2.5 0) :rotate (vec3 0 90 0))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("place requires exactly one shape or part, got %d", len(pa.positional))
		}

		childID, err := b.operand(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		td := graph.TransformData{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			td.Translation = &vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			td.Rotation = &vec
		}

		prefix := "place"
		if childNode := g.Get(childID); childNode != nil && childNode.Name != "" {
			prefix = "place/" + childNode.Name
		}
		id := graph.NewNodeID(b.path(prefix))

		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeTransform,
			Children: []graph.NodeID{childID},
			Data:     td,
		})

		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...) (subtract a b ...) (intersect a b ...)
	// -----------------------------------------------------------------------
	env.AddFunction("union", b.boolean(graph.OpUnion))
	env.AddFunction("subtract", b.boolean(graph.OpSubtract))
	env.AddFunction("intersect", b.boolean(graph.OpIntersect))

	// -----------------------------------------------------------------------
	// (group "name" :description "..." (place ...) (place ...))
	// The name is optional.
	// -----------------------------------------------------------------------
	env.AddFunction("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		gd := graph.GroupData{}

		if v, ok := pa.kw["description"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("group: description: %w", err)
			}
			gd.Description = s
		}

		var groupName string
		rest := pa.positional
		if len(rest) > 0 {
			if s, ok := rest[0].(*zygo.SexpStr); ok {
				groupName = s.S
				rest = rest[1:]
				if err := b.claimName(groupName); err != nil {
					return zygo.SexpNull, fmt.Errorf("group: %w", err)
				}
			}
		}

		children, err := b.operands(rest)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("group: %w", err)
		}

		var id graph.NodeID
		if groupName != "" {
			id = graph.NewNodeID("group/" + groupName)
		} else {
			id = graph.NewNodeID(b.path("group"))
		}
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeGroup,
			Name:     groupName,
			Children: children,
			Data:     gd,
		})

		return &sexpNodeRef{id: id, name: groupName}, nil
	})

	// -----------------------------------------------------------------------
	// (model "pieza1" :title "Escalera" :difficulty 1 (place ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("model", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("model requires a name argument")
		}

		modelName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("model: name: %w", err)
		}
		if err := b.claimName(modelName); err != nil {
			return zygo.SexpNull, fmt.Errorf("model: %w", err)
		}

		md := graph.ModelData{}
		if v, ok := pa.kw["title"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("model: title: %w", err)
			}
			md.Title = s
		}
		if v, ok := pa.kw["difficulty"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("model: difficulty: %w", err)
			}
			md.Difficulty = n
		}
		if v, ok := pa.kw["description"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("model: description: %w", err)
			}
			md.Description = s
		}

		children, err := b.operands(pa.positional[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("model %q: %w", modelName, err)
		}

		id := graph.NewNodeID("model/" + modelName)
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeModel,
			Name:     modelName,
			Children: children,
			Data:     md,
		})
		g.AddRoot(id)

		return &sexpNodeRef{id: id, name: modelName}, nil
	})

	// -----------------------------------------------------------------------
	// (defaults :segments 48)
	// -----------------------------------------------------------------------
	env.AddFunction("defaults", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if v, ok := pa.kw["segments"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defaults: segments: %w", err)
			}
			if n < 3 || n > graph.MaxSegments {
				return zygo.SexpNull, fmt.Errorf("defaults: segments %d out of range [3, %d]", n, graph.MaxSegments)
			}
			g.Defaults.Segments = n
		}
		return zygo.SexpNull, nil
	})
}
