package similarity

import (
	"math"

	"github.com/lintang-b-s/curvematch/pkg/geo"
)

const (
	// HausdorffScaleMeters. hausdorff distance that maps to a similarity of 0.5.
	// recorded routes of a few km that follow the same roads stay within a few hundred meters of each other,
	// an unscaled 1/(1+d) would push every real pair towards 0.
	HausdorffScaleMeters = 500.0
)

// directedHausdorff. max over a of the distance to the nearest point of b, meters.
func directedHausdorff(a, b []geo.Point) float64 {
	maxDist := 0.0
	for _, p := range a {
		minDist := math.Inf(1)
		for _, q := range b {
			d := geo.HaversineDistance(p, q)
			if d < minDist {
				minDist = d
				if minDist <= maxDist {
					// p cannot raise the running max anymore
					break
				}
			}
		}
		if minDist > maxDist {
			maxDist = minDist
		}
	}
	return maxDist
}

// HausdorffDistance. symmetric hausdorff distance between two point sets, meters.
// +Inf if either set is empty.
func HausdorffDistance(a, b []geo.Point) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}
	return math.Max(directedHausdorff(a, b), directedHausdorff(b, a))
}

// HausdorffSimilarity. 1/(1 + hausdorff/HausdorffScaleMeters), in [0,1]. 0 if either route is empty.
// O(|a|*|b|) haversine evaluations.
func HausdorffSimilarity(a, b []geo.Point) float64 {
	d := HausdorffDistance(a, b)
	if math.IsInf(d, 1) {
		return 0
	}
	return 1.0 / (1.0 + d/HausdorffScaleMeters)
}

// FrechetSimilarity. currently the hausdorff approximation, not a discrete fréchet distance.
// TODO: replace with discrete fréchet (dp over point pair distances) if ordering-sensitive shape matching is needed.
func FrechetSimilarity(a, b []geo.Point) float64 {
	return HausdorffSimilarity(a, b)
}

// TurnCountSimilarity. 1 - min(1, |ta-tb| / max(ta,tb)), 1 when both routes have no turns.
func TurnCountSimilarity(turnsA, turnsB int) float64 {
	if turnsA == 0 && turnsB == 0 {
		return 1.0
	}
	diff := math.Abs(float64(turnsA - turnsB))
	maxTurns := math.Max(float64(turnsA), float64(turnsB))
	return 1.0 - math.Min(1.0, diff/maxTurns)
}

// TurnSequenceSimilarity. compares the number of >30° turns of both routes.
func TurnSequenceSimilarity(a, b []geo.Point) float64 {
	return TurnCountSimilarity(geo.CountTurns(a, geo.DefaultTurnThresholdDeg),
		geo.CountTurns(b, geo.DefaultTurnThresholdDeg))
}
