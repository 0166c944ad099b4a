// Package graph defines the design graph types for orthoview.
// The design graph is an immutable DAG of primitives, transforms,
// groups, booleans and models that describes the solids a drawing
// exercise is built from.
package graph
