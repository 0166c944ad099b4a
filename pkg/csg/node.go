package csg

// Node is a node of a BSP tree. Divider defines the partitioning plane,
// Polygons holds the polygons lying on that plane, and Front and Back
// hold the subtrees on either side. An empty tree is a Node with a nil
// Divider.
//
// Ownership is strictly tree shaped: no polygon or node is reachable from
// two places, and Clone copies the whole subtree.
//
// Every traversal runs over an explicit work stack rather than the call
// stack, so degenerate inputs that produce very deep trees cost heap
// memory instead of overflowing the goroutine stack. Results are in the
// same order as the natural recursive definitions.
type Node struct {
	Divider  *Polygon
	Polygons []*Polygon
	Front    *Node
	Back     *Node
}

// NewNode returns a BSP tree built from polygons. The polygons are
// retained by the tree; clone them first if the caller still needs them.
func NewNode(polygons []*Polygon) *Node {
	n := &Node{}
	n.Build(polygons)
	return n
}

type polygonJob struct {
	node     *Node
	polygons []*Polygon
}

// Build inserts polygons into the tree, splitting them on existing
// dividers and creating child nodes as needed. A node without a divider
// adopts a clone of the first polygon it receives.
func (n *Node) Build(polygons []*Polygon) {
	if len(polygons) == 0 {
		return
	}
	stack := []polygonJob{{node: n, polygons: polygons}}
	for len(stack) > 0 {
		job := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := job.node
		if node.Divider == nil {
			node.Divider = job.polygons[0].Clone()
		}
		var front, back []*Polygon
		for _, p := range job.polygons {
			node.Divider.SplitPolygon(p, &node.Polygons, &node.Polygons, &front, &back)
		}
		if len(front) > 0 {
			if node.Front == nil {
				node.Front = &Node{}
			}
			stack = append(stack, polygonJob{node: node.Front, polygons: front})
		}
		if len(back) > 0 {
			if node.Back == nil {
				node.Back = &Node{}
			}
			stack = append(stack, polygonJob{node: node.Back, polygons: back})
		}
	}
}

// walk visits every node in pre-order: a node, then its front subtree,
// then its back subtree.
func (n *Node) walk(visit func(*Node)) {
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(node)
		if node.Back != nil {
			stack = append(stack, node.Back)
		}
		if node.Front != nil {
			stack = append(stack, node.Front)
		}
	}
}

// AllPolygons returns the polygons of the whole tree in pre-order. The
// returned polygons are owned by the tree.
func (n *Node) AllPolygons() []*Polygon {
	var polygons []*Polygon
	n.walk(func(node *Node) {
		polygons = append(polygons, node.Polygons...)
	})
	return polygons
}

// Clone returns a deep copy of the tree.
func (n *Node) Clone() *Node {
	root := &Node{}
	type pair struct{ src, dst *Node }
	stack := []pair{{n, root}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.src.Divider != nil {
			p.dst.Divider = p.src.Divider.Clone()
		}
		p.dst.Polygons = make([]*Polygon, len(p.src.Polygons))
		for i, poly := range p.src.Polygons {
			p.dst.Polygons[i] = poly.Clone()
		}
		if p.src.Front != nil {
			p.dst.Front = &Node{}
			stack = append(stack, pair{p.src.Front, p.dst.Front})
		}
		if p.src.Back != nil {
			p.dst.Back = &Node{}
			stack = append(stack, pair{p.src.Back, p.dst.Back})
		}
	}
	return root
}

// Invert turns the solid represented by the tree inside out: every
// polygon and divider is flipped and front and back are exchanged.
func (n *Node) Invert() *Node {
	n.walk(func(node *Node) {
		for _, p := range node.Polygons {
			p.Flip()
		}
		if node.Divider != nil {
			node.Divider.Flip()
		}
		node.Front, node.Back = node.Back, node.Front
	})
	return n
}

// ClipPolygons removes the parts of polygons that lie inside the solid
// represented by the tree and returns what remains. Pieces that reach a
// missing back child are inside and are discarded. An empty tree returns
// a copy of the input slice.
func (n *Node) ClipPolygons(polygons []*Polygon) []*Polygon {
	if n.Divider == nil {
		return append([]*Polygon(nil), polygons...)
	}
	var out []*Polygon
	stack := []polygonJob{{node: n, polygons: polygons}}
	for len(stack) > 0 {
		job := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := job.node
		if node.Divider == nil {
			out = append(out, job.polygons...)
			continue
		}
		var front, back []*Polygon
		for _, p := range job.polygons {
			node.Divider.SplitPolygon(p, &front, &back, &front, &back)
		}
		// The back job is pushed first so the front subtree's output
		// precedes it.
		if node.Back != nil && len(back) > 0 {
			stack = append(stack, polygonJob{node: node.Back, polygons: back})
		}
		if node.Front != nil {
			if len(front) > 0 {
				stack = append(stack, polygonJob{node: node.Front, polygons: front})
			}
		} else {
			// Nothing is pushed above this node's back job, so front
			// output emitted now still precedes it.
			out = append(out, front...)
		}
	}
	return out
}

// ClipTo replaces the polygons of every node with the result of clipping
// them against other.
func (n *Node) ClipTo(other *Node) {
	n.walk(func(node *Node) {
		node.Polygons = other.ClipPolygons(node.Polygons)
	})
}

// IsConvex reports whether every polygon lies behind every other one,
// which holds for the faces of a convex solid.
func IsConvex(polygons []*Polygon) bool {
	for i, a := range polygons {
		for j, b := range polygons {
			if i != j && a.ClassifySide(b) != Back {
				return false
			}
		}
	}
	return true
}

// Count returns the number of nodes in the tree.
func (n *Node) Count() int {
	count := 0
	n.walk(func(*Node) { count++ })
	return count
}

// Depth returns the number of nodes on the longest root-to-leaf path.
func (n *Node) Depth() int {
	type level struct {
		node  *Node
		depth int
	}
	deepest := 0
	stack := []level{{n, 1}}
	for len(stack) > 0 {
		l := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if l.depth > deepest {
			deepest = l.depth
		}
		if l.node.Front != nil {
			stack = append(stack, level{l.node.Front, l.depth + 1})
		}
		if l.node.Back != nil {
			stack = append(stack, level{l.node.Back, l.depth + 1})
		}
	}
	return deepest
}
