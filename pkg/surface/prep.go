package surface

import (
	"fmt"
	"math"

	lumengeo "github.com/lumenworks/lumengeo"
	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// ScenePrepReport summarizes what the cleaning pipeline did to a scene.
type ScenePrepReport struct {
	InputSurfaces    int      `json:"input_surfaces"`
	OutputSurfaces   int      `json:"output_surfaces"`
	FixedNormals     int      `json:"fixed_normals"`
	MergedSurfaces   int      `json:"merged_surfaces"`
	SnappedVertices  int      `json:"snapped_vertices"`
	NonManifoldEdges int      `json:"non_manifold_edges"`
	Warnings         []string `json:"warnings,omitempty"`
}

// NonManifoldEdge is a surface edge shared by more than two faces.
type NonManifoldEdge struct {
	A, B    geom.Point3
	Valence int
}

type quant3 [3]int64

func quantVertex(p geom.Point3, eps float64) quant3 {
	inv := 1.0 / math.Max(eps, tol.EpsPos)
	return quant3{
		int64(math.Round(p.X * inv)),
		int64(math.Round(p.Y * inv)),
		int64(math.Round(p.Z * inv)),
	}
}

// DetectNonManifoldEdges returns the surface boundary edges used by more
// than two faces, with the valence observed. Vertices are matched on the
// weld grid.
func DetectNonManifoldEdges(surfaces []SurfaceSpec, tolerance float64) []NonManifoldEdge {
	rep := make(map[quant3]geom.Point3)
	counts := make(map[[2]quant3]int)
	var order [][2]quant3
	for _, s := range surfaces {
		verts := s.Vertices
		if len(verts) < 2 {
			continue
		}
		for i := range verts {
			a := quantVertex(verts[i], tolerance)
			b := quantVertex(verts[(i+1)%len(verts)], tolerance)
			if _, ok := rep[a]; !ok {
				rep[a] = verts[i]
			}
			if _, ok := rep[b]; !ok {
				rep[b] = verts[(i+1)%len(verts)]
			}
			und := [2]quant3{a, b}
			if lessQuant3(b, a) {
				und = [2]quant3{b, a}
			}
			if _, ok := counts[und]; !ok {
				order = append(order, und)
			}
			counts[und]++
		}
	}
	var out []NonManifoldEdge
	for _, und := range order {
		if c := counts[und]; c > 2 {
			out = append(out, NonManifoldEdge{A: rep[und[0]], B: rep[und[1]], Valence: c})
		}
	}
	return out
}

func lessQuant3(a, b quant3) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// CleanOptions configures CleanSceneSurfaces.
type CleanOptions struct {
	SnapTolerance float64
	MergeCoplanar bool
	// Coplanar-merge bucketing; zero values take the defaults.
	MergeAngleTolDeg float64
	MergeDistTol     float64
}

// DefaultCleanOptions snaps at the snap tolerance and merges coplanar
// surfaces with a one-degree angular bucket.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		SnapTolerance:    tol.EpsSnap,
		MergeCoplanar:    true,
		MergeAngleTolDeg: 1.0,
		MergeDistTol:     tol.EpsSnap,
	}
}

// CleanSceneSurfaces runs the full prep pipeline: validate preconditions,
// fix normals, snap tiny gaps closed, optionally merge coplanar surfaces,
// validate again, and report. Invalid input surfaces fail fast rather than
// being silently repaired.
func CleanSceneSurfaces(surfaces []SurfaceSpec, opts CleanOptions) ([]SurfaceSpec, ScenePrepReport, error) {
	if opts.MergeAngleTolDeg == 0 {
		opts.MergeAngleTolDeg = 1.0
	}
	if opts.MergeDistTol == 0 {
		opts.MergeDistTol = tol.EpsSnap
	}
	for _, s := range surfaces {
		if err := AssertSurface(s); err != nil {
			return nil, ScenePrepReport{}, fmt.Errorf("clean scene: %w", err)
		}
	}
	before := len(surfaces)
	fixed := FixSurfaceNormals(append([]SurfaceSpec(nil), surfaces...))
	preVertices := countVertices(fixed)
	snapped := CloseTinyGaps(fixed, opts.SnapTolerance)
	postVertices := countVertices(snapped)
	out := snapped
	if opts.MergeCoplanar {
		out = MergeCoplanarSurfaces(snapped, opts.MergeAngleTolDeg, opts.MergeDistTol)
	}
	for _, s := range out {
		if err := AssertSurface(s); err != nil {
			return nil, ScenePrepReport{}, fmt.Errorf("clean scene produced invalid surface: %w", err)
		}
	}
	nonManifold := DetectNonManifoldEdges(out, tol.EpsWeld)
	var warnings []string
	if len(nonManifold) > 0 {
		warnings = append(warnings, fmt.Sprintf("detected %d non-manifold edge(s) (edge valence > 2)", len(nonManifold)))
		lumengeo.Logger().Warn("scene prep found non-manifold edges", "count", len(nonManifold))
	}
	report := ScenePrepReport{
		InputSurfaces:    before,
		OutputSurfaces:   len(out),
		FixedNormals:     before,
		MergedSurfaces:   max(0, before-len(out)),
		SnappedVertices:  max(0, preVertices-postVertices),
		NonManifoldEdges: len(nonManifold),
		Warnings:         warnings,
	}
	return out, report, nil
}

func countVertices(surfaces []SurfaceSpec) int {
	n := 0
	for _, s := range surfaces {
		n += len(s.Vertices)
	}
	return n
}

// RoomSpec is an axis-aligned room box recovered from a tagged surface set.
type RoomSpec struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Width  float64     `json:"width"`
	Length float64     `json:"length"`
	Height float64     `json:"height"`
	Origin geom.Point3 `json:"origin"`
}

// DetectRoomVolumes groups surfaces by room tag and fits an axis-aligned
// box around each group. Groups flat in any axis are skipped. Rooms come
// back in first-appearance order.
func DetectRoomVolumes(surfaces []SurfaceSpec) []RoomSpec {
	byRoom := make(map[string][]SurfaceSpec)
	var order []string
	for _, s := range surfaces {
		if s.RoomID == "" {
			continue
		}
		if _, ok := byRoom[s.RoomID]; !ok {
			order = append(order, s.RoomID)
		}
		byRoom[s.RoomID] = append(byRoom[s.RoomID], s)
	}

	var rooms []RoomSpec
	for _, roomID := range order {
		grp := byRoom[roomID]
		mn := geom.Point3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
		mx := geom.Point3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
		seen := false
		for _, s := range grp {
			for _, p := range s.Vertices {
				seen = true
				mn.X = math.Min(mn.X, p.X)
				mn.Y = math.Min(mn.Y, p.Y)
				mn.Z = math.Min(mn.Z, p.Z)
				mx.X = math.Max(mx.X, p.X)
				mx.Y = math.Max(mx.Y, p.Y)
				mx.Z = math.Max(mx.Z, p.Z)
			}
		}
		if !seen {
			continue
		}
		w, l, h := mx.X-mn.X, mx.Y-mn.Y, mx.Z-mn.Z
		if w <= tol.EpsPlane || l <= tol.EpsPlane || h <= tol.EpsPlane {
			continue
		}
		rooms = append(rooms, RoomSpec{
			ID:     roomID,
			Name:   roomID,
			Width:  w,
			Length: l,
			Height: h,
			Origin: mn,
		})
	}
	return rooms
}
