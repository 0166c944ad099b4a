// Package csg implements constructive solid geometry on polygon meshes
// using binary space partitioning (BSP) trees.
//
// A mesh is converted into convex polygons, the polygons are arranged in
// a BSP tree by recursively splitting them on each other's planes, and
// boolean operations (union, subtraction, intersection) are expressed as
// a fixed sequence of clip, invert and build steps over two trees. The
// surviving polygons are re-triangulated into an output Geometry.
//
// Operations on a Solid never mutate their operands: both trees are
// cloned first, so one Solid may be reused as input to any number of
// independent operations.
package csg
