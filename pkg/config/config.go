// Package config loads and validates pipeline configuration from
// built-in defaults, a transitmap.toml file, and CLI flags or
// programmatic Options, applied in that order so flags and Options win
// over the file and the file wins over the defaults.
//
// Recognised options mirror §6 of the pipeline specification: grid
// mode and resolution, bend penalties, aggregation tolerance, solver
// back-end selection, per-stage time budgets, and a PRNG seed. The seed
// is copied into topo.Options.Seed only; no stage reads it, and neither
// the heuristic orderer nor grid placement uses a seed.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/transitdraw/transitmap/pkg/loom"
	"github.com/transitdraw/transitmap/pkg/octi"
	"github.com/transitdraw/transitmap/pkg/octi/gridgraph"
	"github.com/transitdraw/transitmap/pkg/pipeline"
	"github.com/transitdraw/transitmap/pkg/pipelineerr"
	"github.com/transitdraw/transitmap/pkg/topo"
)

// Mode selects the base grid kind used by the schematization stage.
type Mode string

const (
	ModeGeographic  Mode = "geographic"
	ModeOctilinear  Mode = "octilinear"
	ModeOrthoradial Mode = "orthoradial"
)

// Backend selects the line-ordering solver.
type Backend string

const (
	BackendGLPK      Backend = "glpk"
	BackendCBC       Backend = "cbc"
	BackendGurobi    Backend = "gurobi"
	BackendHeuristic Backend = "heuristic"
)

// Config is an immutable snapshot of pipeline configuration. Build one
// with Load or New, never by composite-literal, so defaults and file
// overlays always apply consistently.
type Config struct {
	Mode     Mode
	CellSize float64

	MaxStationDis float64

	P0, P45, P90, P135 float64

	VerticalPen, HorizontalPen, DiagonalPen float64

	MaxAggrDist float64
	Smooth      float64

	Solver     Backend
	TimeBudget int64 // milliseconds, per-component ceiling
	Seed       int64
	Prune      bool
}

// fileConfig mirrors Config's field set in the transitmap.toml wire
// shape (lowercase keys, as in the options table).
type fileConfig struct {
	Mode     string  `toml:"mode"`
	CellSize float64 `toml:"cell_size"`

	MaxStationDis float64 `toml:"max_station_dis"`

	P0   float64 `toml:"p_0"`
	P45  float64 `toml:"p_45"`
	P90  float64 `toml:"p_90"`
	P135 float64 `toml:"p_135"`

	VerticalPen   float64 `toml:"vertical_pen"`
	HorizontalPen float64 `toml:"horizontal_pen"`
	DiagonalPen   float64 `toml:"diagonal_pen"`

	MaxAggrDist float64 `toml:"max_aggr_dist"`
	Smooth      float64 `toml:"smooth"`

	Solver       string `toml:"solver"`
	TimeBudgetMS int64  `toml:"time_budget_ms"`
	Seed         int64  `toml:"seed"`
	Prune        *bool  `toml:"prune"`
}

// Option customizes a Config built by New or Load.
type Option func(*Config)

// WithMode overrides the grid kind.
func WithMode(m Mode) Option { return func(c *Config) { c.Mode = m } }

// WithCellSize overrides the grid resolution in map units.
func WithCellSize(size float64) Option { return func(c *Config) { c.CellSize = size } }

// WithSolver overrides the D back-end.
func WithSolver(b Backend) Option { return func(c *Config) { c.Solver = b } }

// WithSeed overrides the PRNG seed.
func WithSeed(seed int64) Option { return func(c *Config) { c.Seed = seed } }

// WithTimeBudget overrides the per-component ceiling, in milliseconds.
func WithTimeBudget(ms int64) Option { return func(c *Config) { c.TimeBudget = ms } }

// WithPrune sets Prune. Prune is stored in the Config and printed by
// String; no pipeline stage reads it, so single-line OptEdges are never
// dropped before D runs.
func WithPrune(prune bool) Option { return func(c *Config) { c.Prune = prune } }

// Default returns the built-in defaults. MaxAggrDist and Smooth match
// pkg/topo's DefaultOptions; MaxStationDis, the bend penalties, and the
// direction penalties are this package's own values and differ from
// pkg/octi's DefaultOptions (MaxDis 6, gridgraph.DefaultCostModel).
func Default() Config {
	return Config{
		Mode:          ModeOctilinear,
		CellSize:      pipeline.DefaultCellSize,
		MaxStationDis: 3,
		P0:            0,
		P45:           300,
		P90:           200,
		P135:          100,
		VerticalPen:   1,
		HorizontalPen: 1,
		DiagonalPen:   1.4,
		MaxAggrDist:   pipeline.DefaultAggrTolerance,
		Smooth:        20,
		Solver:        BackendHeuristic,
		TimeBudget:    60000,
		Seed:          0,
		Prune:         true,
	}
}

// New builds a Config from the defaults plus opts.
func New(opts ...Option) (Config, error) {
	c := Default()
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads a transitmap.toml file, overlays opts on top of it, and
// validates the result. A missing file is not an error: Load falls
// back to Default and applies opts on top of it, since every field is
// optional per the options table.
func Load(path string, opts ...Option) (Config, error) {
	c := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			var fc fileConfig
			if _, err := toml.DecodeFile(path, &fc); err != nil {
				return Config{}, pipelineerr.Wrap(pipelineerr.CodeInvalidConfig, err, "parse config file %s", path)
			}
			c.overlayFile(fc)
		} else if !os.IsNotExist(err) {
			return Config{}, pipelineerr.Wrap(pipelineerr.CodeInvalidConfig, err, "stat config file %s", path)
		}
	}

	for _, opt := range opts {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// overlayFile applies every non-zero field of fc onto c, leaving
// fields the file doesn't mention at their prior (default) values.
func (c *Config) overlayFile(fc fileConfig) {
	if fc.Mode != "" {
		c.Mode = Mode(fc.Mode)
	}
	if fc.CellSize != 0 {
		c.CellSize = fc.CellSize
	}
	if fc.MaxStationDis != 0 {
		c.MaxStationDis = fc.MaxStationDis
	}
	if fc.P0 != 0 || fc.P45 != 0 || fc.P90 != 0 || fc.P135 != 0 {
		c.P0, c.P45, c.P90, c.P135 = fc.P0, fc.P45, fc.P90, fc.P135
	}
	if fc.VerticalPen != 0 {
		c.VerticalPen = fc.VerticalPen
	}
	if fc.HorizontalPen != 0 {
		c.HorizontalPen = fc.HorizontalPen
	}
	if fc.DiagonalPen != 0 {
		c.DiagonalPen = fc.DiagonalPen
	}
	if fc.MaxAggrDist != 0 {
		c.MaxAggrDist = fc.MaxAggrDist
	}
	if fc.Smooth != 0 {
		c.Smooth = fc.Smooth
	}
	if fc.Solver != "" {
		c.Solver = Backend(fc.Solver)
	}
	if fc.TimeBudgetMS != 0 {
		c.TimeBudget = fc.TimeBudgetMS
	}
	if fc.Seed != 0 {
		c.Seed = fc.Seed
	}
	if fc.Prune != nil {
		c.Prune = *fc.Prune
	}
}

// Validate checks the invariants named by the options table, chiefly
// the bend-penalty ordering p_0 < p_135 < p_90 < p_45.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeGeographic, ModeOctilinear, ModeOrthoradial:
	default:
		return pipelineerr.New(pipelineerr.CodeInvalidConfig, "unknown mode %q", c.Mode)
	}
	if c.CellSize <= 0 {
		return pipelineerr.New(pipelineerr.CodeInvalidConfig, "cell_size must be positive, got %v", c.CellSize)
	}
	if !(c.P0 < c.P135 && c.P135 < c.P90 && c.P90 < c.P45) {
		return pipelineerr.New(pipelineerr.CodeInvalidConfig,
			"bend penalties must satisfy p_0 < p_135 < p_90 < p_45, got %v < %v < %v < %v", c.P0, c.P135, c.P90, c.P45)
	}
	switch c.Solver {
	case BackendGLPK, BackendCBC, BackendGurobi, BackendHeuristic:
	default:
		return pipelineerr.New(pipelineerr.CodeInvalidConfig, "unknown solver %q", c.Solver)
	}
	return nil
}

// Topology converts the config into topo.Options for §B.
func (c Config) Topology() topo.Options {
	o := topo.DefaultOptions()
	o.MaxAggrDist = c.MaxAggrDist
	o.Smooth = c.Smooth
	o.Seed = uint64(c.Seed)
	return o
}

// Schematize converts the config into octi.Options for §E, resolving
// Mode into the matching gridgraph.Topology implementation.
func (c Config) Schematize() octi.Options {
	o := octi.DefaultOptions()
	o.CellSize = c.CellSize
	o.MaxDis = int(c.MaxStationDis)
	o.Costs = gridgraph.CostModel{
		Bend: gridgraph.BendCost{P0: c.P0, P45: c.P45, P90: c.P90, P135: c.P135},
		Dir:  gridgraph.DirectionCost{Vertical: c.VerticalPen, Horizontal: c.HorizontalPen, Diagonal: c.DiagonalPen},
	}
	if c.Mode == ModeOrthoradial {
		o.Topology = func(w, h int) gridgraph.Topology { return gridgraph.NewOrthoradial(w, h) }
	}
	return o
}

// Quality resolves the solver backend into a loom.Quality preset. Only
// BackendHeuristic maps to the fast local-search orderer; every ILP
// backend name maps to the exact branch-and-bound orderer since no ILP
// library exists in the corpus (see DESIGN.md) — solver selection is
// therefore a quality knob today, not a true back-end choice.
func (c Config) Quality() loom.Quality {
	if c.Solver == BackendHeuristic {
		return loom.QualityFast
	}
	return loom.QualityOptimal
}

// String implements fmt.Stringer for debug printing.
func (c Config) String() string {
	return fmt.Sprintf("mode=%s cell_size=%v solver=%s seed=%d prune=%v", c.Mode, c.CellSize, c.Solver, c.Seed, c.Prune)
}
