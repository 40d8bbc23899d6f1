package topo

// Options controls the four operations of §4.B. The zero value is not
// valid; use DefaultOptions and override fields as needed.
type Options struct {
	// MaxAggrDist is the distance tolerance (in map units) within which two
	// edge geometries are considered aggregation candidates. Default 150,
	// matching §4.B.
	MaxAggrDist float64

	// OverlapFraction is the minimum shared-length fraction (0..1) two
	// geometries must maintain within MaxAggrDist to be merged outright
	// rather than split first. Default 0.8 ("substantial majority").
	OverlapFraction float64

	// Smooth is the Chaikin smoothing weight; higher values cut more
	// aggressively. Default 20, matching §4.B.
	Smooth float64

	// ClusterTolerance is the distance within which station-bound nodes
	// collapse into one (§4.B operation 4).
	ClusterTolerance float64

	// Seed is carried with the options but no operation reads it: the
	// fallback order for ambiguous aggregation candidates is fixed by
	// descending overlap fraction, then ascending edge IDs, whatever the
	// Seed.
	Seed uint64
}

// DefaultOptions returns the §4.B default parameters.
func DefaultOptions() Options {
	return Options{
		MaxAggrDist:      150,
		OverlapFraction:  0.8,
		Smooth:           20,
		ClusterTolerance: 1e-3,
		Seed:             1,
	}
}
