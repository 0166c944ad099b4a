// Package tessellate walks a design graph and produces triangle meshes
// using a geometry kernel. One mesh is produced per model: every subtree
// under a model root is folded into a single solid first, so the mesh
// describes the combined shape and not the overlapping pieces.
package tessellate

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/chazu/orthoview/pkg/graph"
	"github.com/chazu/orthoview/pkg/kernel"
)

// Tessellate produces one triangle mesh per model root, in root order,
// using the provided geometry kernel. Roots that are not models are
// skipped. The tessellator is read-only and never mutates the graph.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, model := range g.Models() {
		mesh, err := TessellateModel(g, k, model)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, mesh)
	}

	return meshes, nil
}

// TessellateModel folds one node into a solid and meshes it. The mesh is
// named after the node. Kernel panics are returned as errors.
func TessellateModel(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node) (mesh *kernel.Mesh, err error) {
	name := n.Name
	if name == "" {
		name = n.ID.Short()
	}

	defer func() {
		if r := recover(); r != nil {
			mesh = nil
			err = fmt.Errorf("tessellate: model %q: kernel panic: %v", name, r)
		}
	}()

	start := time.Now()
	solid, err := newFolder(g, k).fold(n)
	if err != nil {
		return nil, fmt.Errorf("tessellate: model %q: %w", name, err)
	}

	mesh, err = k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for model %q: %w", name, err)
	}
	mesh.PartName = name

	slog.Debug("tessellate: model meshed",
		"model", name,
		"triangles", mesh.TriangleCount(),
		"elapsed", time.Since(start))
	return mesh, nil
}

// folder turns subtrees into kernel solids. Solids are immutable, so a
// node reached twice is folded once.
type folder struct {
	g      *graph.DesignGraph
	k      kernel.Kernel
	cache  map[graph.NodeID]kernel.Solid
	active map[graph.NodeID]bool
}

func newFolder(g *graph.DesignGraph, k kernel.Kernel) *folder {
	return &folder{
		g:      g,
		k:      k,
		cache:  make(map[graph.NodeID]kernel.Solid),
		active: make(map[graph.NodeID]bool),
	}
}

func (f *folder) fold(n *graph.Node) (kernel.Solid, error) {
	if s, ok := f.cache[n.ID]; ok {
		return s, nil
	}
	if f.active[n.ID] {
		return nil, fmt.Errorf("cycle through node %s", n.ID.Short())
	}
	f.active[n.ID] = true
	defer delete(f.active, n.ID)

	var (
		s   kernel.Solid
		err error
	)
	switch n.Kind {
	case graph.NodePrimitive:
		s, err = f.primitive(n)
	case graph.NodeTransform:
		s, err = f.transform(n)
	case graph.NodeGroup, graph.NodeModel:
		s, err = f.combine(n, graph.OpUnion)
	case graph.NodeBoolean:
		bd, ok := n.Data.(graph.BooleanData)
		if !ok {
			return nil, fmt.Errorf("boolean node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		s, err = f.combine(n, bd.Op)
	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
	if err != nil {
		return nil, err
	}

	f.cache[n.ID] = s
	return s, nil
}

// primitive creates geometry for a primitive node. Kernel cylinders run
// along Z and are turned onto the requested axis.
func (f *folder) primitive(n *graph.Node) (kernel.Solid, error) {
	switch data := n.Data.(type) {
	case graph.BlockData:
		return f.k.Box(data.Dimensions.X, data.Dimensions.Y, data.Dimensions.Z), nil
	case graph.CylinderData:
		s := f.k.Cylinder(data.Height, data.Radius, f.g.Segments(data))
		switch data.Axis {
		case graph.AxisX:
			s = f.k.Rotate(s, 0, 90, 0)
		case graph.AxisY:
			s = f.k.Rotate(s, -90, 0, 0)
		}
		return s, nil
	}
	return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
}

// transform places its only child: rotation first, then translation.
func (f *folder) transform(n *graph.Node) (kernel.Solid, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	if len(n.Children) != 1 {
		return nil, fmt.Errorf("transform node %s has %d children, want one", n.ID.Short(), len(n.Children))
	}
	child, err := f.child(n, n.Children[0])
	if err != nil {
		return nil, err
	}

	s, err := f.fold(child)
	if err != nil {
		return nil, err
	}
	if r := td.Rotation; r != nil && !r.IsZero() {
		s = f.k.Rotate(s, r.X, r.Y, r.Z)
	}
	if t := td.Translation; t != nil && !t.IsZero() {
		s = f.k.Translate(s, t.X, t.Y, t.Z)
	}
	return s, nil
}

// combine left-folds the children with op.
func (f *folder) combine(n *graph.Node, op graph.BoolOp) (kernel.Solid, error) {
	if len(n.Children) == 0 {
		return nil, fmt.Errorf("%s %s has no children", n.Kind, n.ID.Short())
	}

	var acc kernel.Solid
	for _, cid := range n.Children {
		child, err := f.child(n, cid)
		if err != nil {
			return nil, err
		}
		s, err := f.fold(child)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = s
			continue
		}
		switch op {
		case graph.OpUnion:
			acc = f.k.Union(acc, s)
		case graph.OpSubtract:
			acc = f.k.Difference(acc, s)
		case graph.OpIntersect:
			acc = f.k.Intersection(acc, s)
		default:
			return nil, fmt.Errorf("boolean node %s has unknown op %v", n.ID.Short(), op)
		}
	}
	return acc, nil
}

func (f *folder) child(parent *graph.Node, id graph.NodeID) (*graph.Node, error) {
	c := f.g.Get(id)
	if c == nil {
		return nil, fmt.Errorf("node %s references missing child %s", parent.ID.Short(), id.Short())
	}
	return c, nil
}
