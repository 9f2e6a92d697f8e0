package tol

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	d := Default()
	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"pos", d.Pos, 1e-12},
		{"ang", d.Ang, 1e-9},
		{"area", d.Area, 1e-12},
		{"plane", d.Plane, 1e-6},
		{"weld", d.Weld, 1e-6},
		{"snap", d.Snap, 1e-3},
		{"ray_origin", d.RayOrigin, 1e-5},
		{"sliver_ratio", d.SliverRatio, 1e-3},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s = %g, want %g", c.name, c.got, c.want)
		}
	}
}

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tolerances.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfileDefaultSection(t *testing.T) {
	path := writeProfile(t, `
default:
  weld: 1.0e-5
  snap: 2.0e-3
`)
	got, err := LoadProfile(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if got.Weld != 1e-5 {
		t.Errorf("weld = %g, want 1e-5", got.Weld)
	}
	if got.Snap != 2e-3 {
		t.Errorf("snap = %g, want 2e-3", got.Snap)
	}
	if got.Pos != EpsPos {
		t.Errorf("pos = %g, want compiled default %g", got.Pos, EpsPos)
	}
}

func TestLoadProfileNamed(t *testing.T) {
	path := writeProfile(t, `
default:
  weld: 1.0e-5
profiles:
  - name: sketchy-importer
    tolerances:
      weld: 1.0e-4
      plane: 1.0e-5
`)
	got, err := LoadProfile(path, "sketchy-importer")
	if err != nil {
		t.Fatal(err)
	}
	if got.Weld != 1e-4 {
		t.Errorf("weld = %g, want profile override 1e-4", got.Weld)
	}
	if got.Plane != 1e-5 {
		t.Errorf("plane = %g, want 1e-5", got.Plane)
	}
}

func TestLoadProfileJSONSubset(t *testing.T) {
	path := writeProfile(t, `{"default": {"weld": 0.001}}`)
	got, err := LoadProfile(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if got.Weld != 1e-3 {
		t.Errorf("weld = %g, want 1e-3", got.Weld)
	}
}

func TestLoadProfileErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		profile string
		wantSub string
	}{
		{
			name:    "unknown key",
			content: "default:\n  wled: 1.0e-5\n",
			wantSub: "unknown tolerance",
		},
		{
			name:    "non-positive value",
			content: "default:\n  weld: 0\n",
			wantSub: "must be positive",
		},
		{
			name:    "missing profile",
			content: "default:\n  weld: 1.0e-5\n",
			profile: "nope",
			wantSub: "not found",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeProfile(t, c.content)
			_, err := LoadProfile(path, c.profile)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), c.wantSub) {
				t.Errorf("error %q does not contain %q", err, c.wantSub)
			}
		})
	}
}
