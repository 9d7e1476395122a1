package similarity

import (
	"math"

	"github.com/lintang-b-s/curvematch/pkg/util"
)

// DTWDistance. banded dynamic time warping distance over |a_i - b_j|.
// the band is windowSize cells on each side of the diagonal, widened to |len(a)-len(b)| so the
// last cell stays reachable. +Inf if either profile is empty.
// O(len(a) * band) time, O(len(b)) memory.
func DTWDistance(a, b []float64, windowSize int) float64 {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}
	w := max(windowSize, util.AbsG(n-m))

	prev := make([]float64, m+1)
	curr := make([]float64, m+1)
	for j := range prev {
		prev[j] = math.Inf(1)
	}
	prev[0] = 0

	for i := 1; i <= n; i++ {
		for j := range curr {
			curr[j] = math.Inf(1)
		}
		jStart := max(1, i-w)
		jEnd := min(m, i+w)
		for j := jStart; j <= jEnd; j++ {
			cost := math.Abs(a[i-1] - b[j-1])
			curr[j] = cost + min(prev[j], curr[j-1], prev[j-1])
		}
		prev, curr = curr, prev
	}

	return prev[m]
}

// DTWSimilarity. 1/(1 + (dtw/(lenA+lenB))/10), in [0,1]. 0 if either profile is empty.
func DTWSimilarity(profileA, profileB []float64, windowSize int) float64 {
	d := DTWDistance(profileA, profileB, windowSize)
	if math.IsInf(d, 1) {
		return 0
	}
	normalized := d / float64(len(profileA)+len(profileB))
	return 1.0 / (1.0 + normalized/10.0)
}
