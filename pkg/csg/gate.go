package csg

import (
	"fmt"

	lumengeo "github.com/lumenworks/lumengeo"
	"github.com/lumenworks/lumengeo/pkg/doctor"
	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/kernel"
	"github.com/lumenworks/lumengeo/pkg/kernel/extrude"
	"github.com/lumenworks/lumengeo/pkg/mesh"
)

// MeshBooleanResult is the gated meshing outcome: the repaired merged mesh,
// its per-triangle normals, and the health report that cleared the gate.
type MeshBooleanResult struct {
	Mesh    *mesh.Mesh
	Normals []geom.Vector3
	Report  doctor.HealthReport
}

// MeshBoolean evaluates a CSG expression, meshes every resulting solid,
// merges them, and runs the result through mesh repair. Any error-severity
// finding in the repaired mesh fails the whole boolean: a silently broken
// mesh is worse than no mesh. A nil mesher takes the exact capped-prism
// backend.
func MeshBoolean(expr Expr, mesher kernel.Mesher) (MeshBooleanResult, error) {
	if mesher == nil {
		mesher = extrude.Mesher{}
	}
	solids, err := Eval(expr)
	if err != nil {
		return MeshBooleanResult{}, err
	}

	var merged *mesh.Mesh
	for _, s := range solids {
		ext, err := solidToExtrusion(s)
		if err != nil {
			return MeshBooleanResult{}, err
		}
		if len(ext.Profile) < 3 || ext.Z1-ext.Z0 <= 0 {
			return MeshBooleanResult{}, csgError(CodeInvalid, "invalid extrusion solid: %d profile points, height %g", len(ext.Profile), ext.Z1-ext.Z0)
		}
		m, err := mesher.MeshExtrusion(ext.Profile, ext.Z0, ext.Z1)
		if err != nil {
			return MeshBooleanResult{}, fmt.Errorf("mesh extrusion: %w", err)
		}
		if merged == nil {
			merged = m
		} else {
			merged.Merge(m)
		}
	}
	if err := merged.Validate(); err != nil {
		return MeshBooleanResult{}, fmt.Errorf("merged mesh: %w", err)
	}

	repaired := doctor.Repair(merged, doctor.DefaultRepairOptions())
	if repaired.Report.HasErrors() {
		lumengeo.Logger().Warn("mesh boolean repair gate failed",
			"errors", len(repaired.Report.Errors), "solids", len(solids))
		return MeshBooleanResult{}, csgError(CodeInvalid, "repair gate failed: %v", repaired.Report.Errors)
	}
	return MeshBooleanResult{Mesh: repaired.Mesh, Normals: repaired.Normals, Report: *repaired.Report}, nil
}
