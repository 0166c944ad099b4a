package export

import (
	"fmt"
	"log/slog"

	"github.com/chazu/orthoview/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/hpinc/go3mf"
)

// WriteSTL writes every mesh into one binary STL file.
func WriteSTL(path string, meshes []*kernel.Mesh) error {
	if countTriangles(meshes) == 0 {
		return ErrNoMeshes
	}
	var tris []*sdf.Triangle3
	for _, m := range meshes {
		for i := 0; i < m.TriangleCount(); i++ {
			t := m.Triangle(i)
			tris = append(tris, &sdf.Triangle3{toVec(t[0]), toVec(t[1]), toVec(t[2])})
		}
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("export: stl %s: %w", path, err)
	}
	slog.Debug("export: wrote stl", "path", path, "triangles", len(tris))
	return nil
}

func toVec(p [3]float64) v3.Vec {
	return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
}

func countTriangles(meshes []*kernel.Mesh) int {
	n := 0
	for _, m := range meshes {
		if m != nil {
			n += m.TriangleCount()
		}
	}
	return n
}

// Write3MF writes a 3MF package with one object per non-empty mesh,
// named after the mesh's part. Coincident vertices are welded, since
// 3MF meshes index a shared vertex list.
func Write3MF(path string, meshes []*kernel.Mesh) error {
	if countTriangles(meshes) == 0 {
		return ErrNoMeshes
	}
	model := &go3mf.Model{Units: go3mf.UnitMillimeter}
	var id uint32
	for _, m := range meshes {
		if m == nil || m.TriangleCount() == 0 {
			continue
		}
		id++
		model.Resources.Objects = append(model.Resources.Objects, &go3mf.Object{
			ID:   id,
			Name: m.PartName,
			Mesh: weld(m),
		})
		model.Build.Items = append(model.Build.Items, &go3mf.Item{ObjectID: id})
	}

	w, err := go3mf.CreateWriter(path)
	if err != nil {
		return fmt.Errorf("export: 3mf %s: %w", path, err)
	}
	if err := w.Encode(model); err != nil {
		w.Close()
		return fmt.Errorf("export: 3mf %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("export: 3mf %s: %w", path, err)
	}
	slog.Debug("export: wrote 3mf", "path", path, "objects", id)
	return nil
}

func weld(m *kernel.Mesh) *go3mf.Mesh {
	out := &go3mf.Mesh{}
	index := make(map[go3mf.Point3D]uint32)
	vertex := func(i uint32) uint32 {
		p := go3mf.Point3D{m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]}
		if v, ok := index[p]; ok {
			return v
		}
		v := uint32(len(out.Vertices.Vertex))
		out.Vertices.Vertex = append(out.Vertices.Vertex, p)
		index[p] = v
		return v
	}
	for t := 0; t < m.TriangleCount(); t++ {
		a := vertex(m.Indices[t*3])
		b := vertex(m.Indices[t*3+1])
		c := vertex(m.Indices[t*3+2])
		if a == b || b == c || a == c {
			continue
		}
		out.Triangles.Triangle = append(out.Triangles.Triangle, go3mf.Triangle{V1: a, V2: b, V3: c})
	}
	return out
}
