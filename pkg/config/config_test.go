package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/transitdraw/transitmap/pkg/loom"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
}

func TestNewAppliesOptions(t *testing.T) {
	c, err := New(WithMode(ModeOrthoradial), WithCellSize(50), WithSeed(7))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Mode != ModeOrthoradial || c.CellSize != 50 || c.Seed != 7 {
		t.Fatalf("New did not apply options: %+v", c)
	}
}

func TestValidateRejectsBadBendPenalties(t *testing.T) {
	c := Default()
	c.P45 = 0 // violates p_0 < p_135 < p_90 < p_45
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for invalid bend penalty ordering")
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	c := Default()
	c.Mode = "diagonal"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestValidateRejectsUnknownSolver(t *testing.T) {
	c := Default()
	c.Solver = "scip"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for unknown solver")
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c != Default() {
		t.Fatalf("Load with missing file = %+v, want Default()", c)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transitmap.toml")
	contents := `
mode = "orthoradial"
cell_size = 75.0
solver = "heuristic"
seed = 42
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Mode != ModeOrthoradial {
		t.Errorf("Mode = %q, want orthoradial", c.Mode)
	}
	if c.CellSize != 75.0 {
		t.Errorf("CellSize = %v, want 75.0", c.CellSize)
	}
	if c.Seed != 42 {
		t.Errorf("Seed = %v, want 42", c.Seed)
	}
}

func TestLoadOptionsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transitmap.toml")
	if err := os.WriteFile(path, []byte(`cell_size = 75.0`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := Load(path, WithCellSize(10))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.CellSize != 10 {
		t.Errorf("CellSize = %v, want 10 (option should win over file)", c.CellSize)
	}
}

func TestQualityResolvesFromSolver(t *testing.T) {
	tests := []struct {
		solver Backend
		want   loom.Quality
	}{
		{BackendHeuristic, loom.QualityFast},
		{BackendGLPK, loom.QualityOptimal},
		{BackendCBC, loom.QualityOptimal},
		{BackendGurobi, loom.QualityOptimal},
	}
	for _, tt := range tests {
		c := Default()
		c.Solver = tt.solver
		if got := c.Quality(); got != tt.want {
			t.Errorf("solver %q: Quality() = %v, want %v", tt.solver, got, tt.want)
		}
	}
}

func TestSchematizeUsesOrthoradialTopologyForMode(t *testing.T) {
	c := Default()
	c.Mode = ModeOrthoradial
	opts := c.Schematize()
	if opts.Topology == nil {
		t.Fatal("expected non-nil Topology factory")
	}
	topo := opts.Topology(4, 4)
	if topo == nil {
		t.Fatal("Topology factory returned nil")
	}
}
