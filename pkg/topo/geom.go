package topo

import (
	"math"

	"github.com/paulmach/orb"
)

func dist(a, b orb.Point) float64 {
	return math.Hypot(a[0]-b[0], a[1]-b[1])
}

// arcLength returns the total length of a polyline.
func arcLength(ls orb.LineString) float64 {
	total := 0.0
	for i := 1; i < len(ls); i++ {
		total += dist(ls[i-1], ls[i])
	}
	return total
}

// resample returns n equally arc-length-spaced points along ls, including
// both endpoints. n must be >= 2.
func resample(ls orb.LineString, n int) []orb.Point {
	if len(ls) == 0 {
		return nil
	}
	if len(ls) == 1 || n <= 1 {
		out := make([]orb.Point, n)
		for i := range out {
			out[i] = ls[0]
		}
		return out
	}

	total := arcLength(ls)
	out := make([]orb.Point, n)
	out[0] = ls[0]
	out[n-1] = ls[len(ls)-1]
	if total == 0 {
		for i := range out {
			out[i] = ls[0]
		}
		return out
	}

	for i := 1; i < n-1; i++ {
		target := total * float64(i) / float64(n-1)
		out[i] = pointAtArcLength(ls, target)
	}
	return out
}

func pointAtArcLength(ls orb.LineString, target float64) orb.Point {
	acc := 0.0
	for i := 1; i < len(ls); i++ {
		seg := dist(ls[i-1], ls[i])
		if acc+seg >= target || i == len(ls)-1 {
			if seg == 0 {
				return ls[i]
			}
			t := (target - acc) / seg
			if t < 0 {
				t = 0
			}
			if t > 1 {
				t = 1
			}
			return orb.Point{
				ls[i-1][0] + t*(ls[i][0]-ls[i-1][0]),
				ls[i-1][1] + t*(ls[i][1]-ls[i-1][1]),
			}
		}
		acc += seg
	}
	return ls[len(ls)-1]
}

// sharedFraction returns, over n samples taken at equal arc-length
// fractions along both polylines, the fraction of sample pairs whose
// distance is within tol. This approximates the "shared length fraction"
// test of §4.B without requiring a full Fréchet-distance implementation.
func sharedFraction(a, b orb.LineString, tol float64) float64 {
	const n = 16
	pa := resample(a, n)
	pb := resample(b, n)
	within := 0
	for i := range pa {
		if dist(pa[i], pb[i]) <= tol {
			within++
		}
	}
	return float64(within) / float64(n)
}

// frechetMedian returns the straight-segment average of two polylines
// after arc-length reparameterization: at each of n sample fractions, the
// midpoint of the two curves' points at that fraction (§4.B operation 1).
func frechetMedian(a, b orb.LineString, n int) orb.LineString {
	pa := resample(a, n)
	pb := resample(b, n)
	out := make(orb.LineString, n)
	for i := range pa {
		out[i] = orb.Point{
			(pa[i][0] + pb[i][0]) / 2,
			(pa[i][1] + pb[i][1]) / 2,
		}
	}
	return out
}

// chaikin applies one round of Chaikin corner-cutting to ls, preserving
// the first and last point exactly so edge endpoints stay pinned to their
// node positions. weight in (0, 0.5) controls how aggressively corners are
// cut; §4.B's `smooth` parameter is mapped to a cut ratio via smoothToCut.
func chaikin(ls orb.LineString, cut float64) orb.LineString {
	if len(ls) < 3 {
		return append(orb.LineString{}, ls...)
	}
	out := make(orb.LineString, 0, 2*(len(ls)-1))
	out = append(out, ls[0])
	for i := 0; i < len(ls)-1; i++ {
		p, q := ls[i], ls[i+1]
		q1 := orb.Point{p[0] + cut*(q[0]-p[0]), p[1] + cut*(q[1]-p[1])}
		q2 := orb.Point{p[0] + (1-cut)*(q[0]-p[0]), p[1] + (1-cut)*(q[1]-p[1])}
		out = append(out, q1, q2)
	}
	out = append(out, ls[len(ls)-1])
	return out
}

// smoothToCut maps the §4.B `smooth` weight (default 20, unbounded) to a
// Chaikin cut ratio in [0, 0.25] (0 for smooth <= 0). Higher smooth values approach the
// classical 0.25 corner-cut; small values leave the polyline nearly
// unchanged.
func smoothToCut(smooth float64) float64 {
	cut := smooth / 100
	if cut > 0.25 {
		cut = 0.25
	}
	if cut < 0 {
		cut = 0
	}
	return cut
}
