package similarity

import (
	"math"

	"github.com/lintang-b-s/curvematch/pkg/util"
)

const (
	// varianceEps. variances below this are treated as zero (flat series, singular regression).
	varianceEps = 1e-12
	// distanceEps. two samples closer than this (meters) have no usable slope between them.
	distanceEps = 1e-9
)

/*
RollingGradients. local grade (percent) of the elevation profile at every sample.

for sample i every (distance, elevation) pair within [d_i - windowMeters/2, d_i + windowMeters/2] is collected:

  - 3 or more pairs: ordinary least squares slope of elevation against distance.
  - exactly 2 pairs: slope of the line through both.
  - only sample i itself: slope to its nearest neighbour in the profile, the following one on a tie.

a window whose distance variance is ~0 (all samples at the same distance) yields 0.
only the first min(len(elevations), len(distances)) samples are used.
*/
func RollingGradients(elevations, distances []float64, windowMeters float64) []float64 {
	n := min(len(elevations), len(distances))
	if n == 0 {
		return []float64{}
	}
	gradients := make([]float64, n)
	if n == 1 {
		return gradients
	}

	half := math.Max(windowMeters, 0) / 2.0
	lo, hi := 0, 0
	for i := 0; i < n; i++ {
		for lo < i && distances[lo] < distances[i]-half {
			lo++
		}
		if hi < i {
			hi = i
		}
		for hi+1 < n && distances[hi+1] <= distances[i]+half {
			hi++
		}

		switch count := hi - lo + 1; {
		case count >= 3:
			gradients[i] = olsSlope(distances[lo:hi+1], elevations[lo:hi+1]) * 100.0
		case count == 2:
			gradients[i] = twoPointSlope(distances[lo], elevations[lo], distances[hi], elevations[hi]) * 100.0
		default:
			j := i + 1
			if j >= n || (i > 0 && distances[i]-distances[i-1] < distances[i+1]-distances[i]) {
				j = i - 1
			}
			gradients[i] = twoPointSlope(distances[i], elevations[i], distances[j], elevations[j]) * 100.0
		}
	}
	return gradients
}

// olsSlope. least squares slope of y against x, 0 when x has ~zero variance.
func olsSlope(x, y []float64) float64 {
	meanX := util.MeanG(x)
	meanY := util.MeanG(y)
	sxx, sxy := 0.0, 0.0
	for k := range x {
		dx := x[k] - meanX
		sxx += dx * dx
		sxy += dx * (y[k] - meanY)
	}
	if sxx/float64(len(x)) < varianceEps {
		return 0
	}
	return sxy / sxx
}

func twoPointSlope(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	if math.Abs(dx) < distanceEps {
		return 0
	}
	return (y2 - y1) / dx
}

// Resample. linear interpolation of series onto targetLength uniformly spaced indices.
// returns an exact copy when the lengths already match, targetLength zeros for an empty series.
func Resample(series []float64, targetLength int) []float64 {
	if targetLength <= 0 {
		return []float64{}
	}
	n := len(series)
	out := make([]float64, targetLength)
	switch {
	case n == targetLength:
		copy(out, series)
		return out
	case n == 0:
		return out
	case n == 1 || targetLength == 1:
		for i := range out {
			out[i] = series[0]
		}
		return out
	}

	step := float64(n-1) / float64(targetLength-1)
	for i := range out {
		pos := float64(i) * step
		j := int(math.Floor(pos))
		if j >= n-1 {
			out[i] = series[n-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = series[j] + (series[j+1]-series[j])*frac
	}
	return out
}

func variance(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	mean := util.MeanG(series)
	v := 0.0
	for _, s := range series {
		v += (s - mean) * (s - mean)
	}
	return v / float64(len(series))
}

// PearsonCorrelation. correlation coefficient of the first min(len(x), len(y)) samples, in [-1,1].
// 0 when fewer than 2 samples or either series has ~zero variance.
func PearsonCorrelation(x, y []float64) float64 {
	n := min(len(x), len(y))
	if n < 2 {
		return 0
	}
	x, y = x[:n], y[:n]
	meanX := util.MeanG(x)
	meanY := util.MeanG(y)

	sxx, syy, sxy := 0.0, 0.0, 0.0
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx/float64(n) < varianceEps || syy/float64(n) < varianceEps {
		return 0
	}
	r := sxy / math.Sqrt(sxx*syy)
	return math.Max(-1, math.Min(1, r))
}

/*
GradientProfileSimilarity. resamples both gradient profiles to the longer length and maps their pearson
correlation r to (r+1)/2.

degenerate profiles:
  - both empty: 0.5
  - both flat (no variance, e.g. constant grade): 1/(1 + |meanA - meanB|), correlation is undefined there
    but two equally steady grades are still alike.
*/
func GradientProfileSimilarity(gradA, gradB []float64) float64 {
	n := max(len(gradA), len(gradB))
	if n == 0 {
		return 0.5
	}
	a := Resample(gradA, n)
	b := Resample(gradB, n)

	if variance(a) < varianceEps && variance(b) < varianceEps {
		return 1.0 / (1.0 + math.Abs(util.MeanG(a)-util.MeanG(b)))
	}
	r := PearsonCorrelation(a, b)
	return (r + 1.0) / 2.0
}

// RollingGradientElevationSimilarity. primary elevation metric: similarity of the rolling gradient
// profiles computed with a granularityMeters window.
func RollingGradientElevationSimilarity(profileA, profileB, distancesA, distancesB []float64,
	granularityMeters float64) float64 {
	gradA := RollingGradients(profileA, distancesA, granularityMeters)
	gradB := RollingGradients(profileB, distancesB, granularityMeters)
	return GradientProfileSimilarity(gradA, gradB)
}
