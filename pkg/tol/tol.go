// Package tol defines the kernel-wide tolerance policy: a fixed set of named
// epsilons shared by every geometric component. Components accept these as
// defaults and never hardcode literal epsilons, keeping cross-component
// numerical behavior consistent and testable from a single tuning point.
package tol

// Named epsilons. Every other package in the kernel takes these as defaults.
const (
	// EpsPos is the positional epsilon for near-zero scalar comparisons.
	EpsPos = 1e-12
	// EpsAng is the angular epsilon for direction and basis comparisons.
	EpsAng = 1e-9
	// EpsArea is the area threshold below which a triangle is degenerate.
	EpsArea = 1e-12
	// EpsPlane is the maximum out-of-plane distance for planar surfaces.
	EpsPlane = 1e-6
	// EpsWeld is the vertex welding distance.
	EpsWeld = 1e-6
	// EpsSnap is the scene-level vertex snapping distance.
	EpsSnap = 1e-3
	// EpsRayOrigin is the ray origin offset used by intersection queries.
	EpsRayOrigin = 1e-5
	// EpsSliverRatio is the shortest-to-longest edge ratio below which a
	// triangle counts as a sliver.
	EpsSliverRatio = 1e-3
)

// Tolerances is an immutable bundle of the named epsilons, threaded
// explicitly through calls that allow per-job overrides. The zero value is
// not useful; construct with Default and override individual fields.
type Tolerances struct {
	Pos         float64 `yaml:"pos" json:"pos"`
	Ang         float64 `yaml:"ang" json:"ang"`
	Area        float64 `yaml:"area" json:"area"`
	Plane       float64 `yaml:"plane" json:"plane"`
	Weld        float64 `yaml:"weld" json:"weld"`
	Snap        float64 `yaml:"snap" json:"snap"`
	RayOrigin   float64 `yaml:"ray_origin" json:"ray_origin"`
	SliverRatio float64 `yaml:"sliver_ratio" json:"sliver_ratio"`
}

// Default returns the standard tolerance policy.
func Default() Tolerances {
	return Tolerances{
		Pos:         EpsPos,
		Ang:         EpsAng,
		Area:        EpsArea,
		Plane:       EpsPlane,
		Weld:        EpsWeld,
		Snap:        EpsSnap,
		RayOrigin:   EpsRayOrigin,
		SliverRatio: EpsSliverRatio,
	}
}
