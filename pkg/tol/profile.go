package tol

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is a named tolerance override set loaded from a profile file.
// Profiles let import pipelines relax or tighten individual epsilons per
// data source (e.g. a looser weld distance for a sloppy IFC exporter)
// without touching the compiled defaults.
type Profile struct {
	Name       string             `yaml:"name"`
	Tolerances map[string]float64 `yaml:"tolerances"`
}

// profileFile is the on-disk layout: a default override map plus
// named profiles layered on top of it.
type profileFile struct {
	Default  map[string]float64 `yaml:"default"`
	Profiles []Profile          `yaml:"profiles"`
}

// LoadProfile reads a tolerance profile file (YAML; JSON is accepted as a
// YAML subset) and resolves the named profile against the compiled defaults.
// An empty name resolves just the file's default overrides. Unknown keys in
// the file are rejected so typos do not silently fall back to defaults.
func LoadProfile(path, name string) (Tolerances, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tolerances{}, fmt.Errorf("tol: reading profile file: %w", err)
	}

	var pf profileFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return Tolerances{}, fmt.Errorf("tol: parsing profile file %s: %w", path, err)
	}

	t := Default()
	if err := applyOverrides(&t, pf.Default); err != nil {
		return Tolerances{}, fmt.Errorf("tol: %s default section: %w", path, err)
	}
	if name == "" {
		return t, nil
	}
	for _, p := range pf.Profiles {
		if p.Name != name {
			continue
		}
		if err := applyOverrides(&t, p.Tolerances); err != nil {
			return Tolerances{}, fmt.Errorf("tol: %s profile %q: %w", path, name, err)
		}
		return t, nil
	}
	return Tolerances{}, fmt.Errorf("tol: profile %q not found in %s", name, path)
}

func applyOverrides(t *Tolerances, overrides map[string]float64) error {
	for key, val := range overrides {
		if val <= 0 {
			return fmt.Errorf("tolerance %q must be positive, got %g", key, val)
		}
		switch key {
		case "pos":
			t.Pos = val
		case "ang":
			t.Ang = val
		case "area":
			t.Area = val
		case "plane":
			t.Plane = val
		case "weld":
			t.Weld = val
		case "snap":
			t.Snap = val
		case "ray_origin":
			t.RayOrigin = val
		case "sliver_ratio":
			t.SliverRatio = val
		default:
			return fmt.Errorf("unknown tolerance %q", key)
		}
	}
	return nil
}
