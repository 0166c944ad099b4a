// Package kernel defines the abstract geometry kernel interface.
// Implementations (bsp, sdfx) provide solid modeling and boolean
// operations behind this interface. The kernel abstraction allows
// swapping backends without changing the rest of the system.
package kernel

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
//
// Boxes are centred on the origin. Cylinders are centred on the origin
// with their axis along Z.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees, applied X then Y then Z

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Name identifies a kernel backend.
type Name string

const (
	// BSP is the exact polyhedral kernel.
	BSP Name = "bsp"
	// SDFX is the signed-distance kernel.
	SDFX Name = "sdfx"
)

// ErrUnknownKernel is returned by New for a name no backend registered.
var ErrUnknownKernel = errors.New("kernel: unknown kernel")

// Options configures a backend. Backends ignore fields they do not use.
type Options struct {
	// MeshCells is the marching cubes resolution along the longest axis.
	MeshCells int
}

// Factory constructs a configured kernel.
type Factory func(Options) Kernel

var (
	registryMu sync.RWMutex
	registry   = map[Name]Factory{}
)

// Register makes a backend available to New. Backends call it from init.
// Registering the same name twice panics.
func Register(name Name, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("kernel: Register called twice for %q", name))
	}
	registry[name] = f
}

// New returns the backend registered under name.
func New(name Name, opts Options) (Kernel, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownKernel, name, Names())
	}
	return f(opts), nil
}

// Names returns the registered backend names in sorted order.
func Names() []Name {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := lo.Keys(registry)
	slices.Sort(names)
	return names
}
