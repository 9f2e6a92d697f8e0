// Package lumengeo is the computational-geometry kernel for lighting-design
// pipelines. It repairs and diagnoses raw triangle meshes, validates and
// offsets 2D polygon/curve data, merges coplanar surfaces topologically, and
// evaluates extrusion-based CSG trees behind a repair gate.
//
// The kernel is synchronous and side-effect-free: every operation takes input
// by value and returns fresh values. Results are deterministic for identical
// input order, which makes mesh content hashes usable as cache keys.
//
// Subpackages:
//
//   - pkg/geom: scalar/vector primitives shared by every component
//   - pkg/tol: the tolerance policy (named epsilons, profile loading)
//   - pkg/mesh: triangle mesh type and cleaning primitives
//   - pkg/doctor: mesh health diagnosis and the repair pipeline
//   - pkg/heal: provenance-tracked healing with audit reports
//   - pkg/curve: arcs, segments, polycurves and their intersections
//   - pkg/poly: polygon validity, repair, offsetting and boolean backend
//   - pkg/surface: scene surface cleanup and coplanar merging
//   - pkg/csg: boolean expression trees over extrusion solids
//   - pkg/kernel: solid-to-mesh backends (exact extrusion, SDF preview)
package lumengeo
