package matching

import (
	"fmt"
	"math"
	"testing"

	lru "github.com/hashicorp/golang-lru/v2"
	da "github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/lintang-b-s/curvematch/pkg/geo"
	"github.com/lintang-b-s/curvematch/pkg/spatialindex"
	"github.com/lintang-b-s/curvematch/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type leg struct {
	bearing float64
	meters  float64
}

// walk. samples a path every stepMeters starting at (lon, lat).
func walk(lon, lat float64, legs []leg, stepMeters float64) []geo.Point {
	geometry := []geo.Point{geo.NewPoint(lon, lat)}
	for _, l := range legs {
		steps := int(math.Round(l.meters / stepMeters))
		for i := 0; i < steps; i++ {
			lat, lon = geo.GetDestinationPoint(lat, lon, l.bearing, stepMeters)
			geometry = append(geometry, geo.NewPoint(lon, lat))
		}
	}
	return geometry
}

func hills(n int, phase float64) []float64 {
	profile := make([]float64, n)
	for i := range profile {
		profile[i] = 120 + 35*math.Sin(float64(i)/6.0+phase) + 0.5*float64(i)
	}
	return profile
}

func candidateFrom(id string, geometry []geo.Point, profile []float64) *da.CandidateRoute {
	return da.NewCandidateRoute(id, "route "+id, geo.RouteDistance(geometry), geo.ElevationGain(profile),
		geometry, profile)
}

func newEngine(t *testing.T, candidates []*da.CandidateRoute, workers int) *MatchingEngine {
	t.Helper()
	rt := spatialindex.NewRtree()
	rt.Build(candidates, zap.NewNop())
	cache, err := lru.New[GradientCacheKey, []float64](128)
	require.NoError(t, err)
	return NewMatchingEngine(rt, zap.NewNop(), cache, workers)
}

var (
	bandungLegs = []leg{{90, 1200}, {0, 800}, {45, 600}, {270, 700}}
	bandungArea = da.NewBoundingBox(107.55, -6.95, 107.70, -6.85)
)

func ids(results []*da.MatchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.GetID())
	}
	return out
}

func TestFindMatchesIdenticalRoute(t *testing.T) {
	geometry := walk(107.60, -6.92, bandungLegs, 50)
	profile := hills(len(geometry), 0)

	for _, metric := range []ElevationMetric{ElevationMetricRollingGradient, ElevationMetricDTW} {
		t.Run(string(metric), func(t *testing.T) {
			me := newEngine(t, []*da.CandidateRoute{candidateFrom("same", geometry, profile)}, 1)
			cfg := DefaultMatchingConfig()
			cfg.ElevationMetric = metric

			results, err := me.FindMatches(da.NewInputRoute("ride", geometry, profile), bandungArea, cfg)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.InDelta(t, 100.0, results[0].GetMatchPercentage(), 1e-6)
			assert.InDelta(t, 1.0, results[0].GetCurveScore(), 1e-8)
			assert.Equal(t, "same", results[0].GetID())
		})
	}
}

func TestFindMatchesDistanceWindow(t *testing.T) {
	input := walk(107.60, -6.92, []leg{{90, 500}}, 50)
	long := walk(107.60, -6.92, []leg{{90, 1000}}, 50)
	near := walk(107.60, -6.92, []leg{{90, 400}, {0, 140}}, 20)

	me := newEngine(t, []*da.CandidateRoute{
		candidateFrom("long", long, nil),
		candidateFrom("close", near, nil),
	}, 1)

	cfg := DefaultMatchingConfig()
	cfg.MinMatchPercentage = 0

	low, high := cfg.DistanceWindow(geo.RouteDistance(input))
	assert.InDelta(t, 450.0, low, 1.0)
	assert.InDelta(t, 550.0, high, 1.0)

	results, err := me.FindMatches(da.NewInputRoute("", input, nil), bandungArea, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"close"}, ids(results))
}

func TestFindMatchesOutsideSearchArea(t *testing.T) {
	geometry := walk(107.60, -6.92, bandungLegs, 50)
	profile := hills(len(geometry), 0)
	// same shape and profile, but in jakarta
	far := walk(106.82, -6.20, bandungLegs, 50)

	me := newEngine(t, []*da.CandidateRoute{
		candidateFrom("jakarta", far, profile),
		candidateFrom("bandung", geometry, profile),
	}, 1)

	cfg := DefaultMatchingConfig()
	cfg.MinMatchPercentage = 0
	results, err := me.FindMatches(da.NewInputRoute("", geometry, profile), bandungArea, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"bandung"}, ids(results))
}

func TestFindMatchesThresholdBoundary(t *testing.T) {
	geometry := walk(107.60, -6.92, bandungLegs, 50)
	me := newEngine(t, []*da.CandidateRoute{candidateFrom("a", geometry, nil)}, 1)

	// no active metric gives the neutral 0.5 score, i.e. exactly 50%
	cfg := DefaultMatchingConfig()
	cfg.ShapeImportance, cfg.TurnsImportance, cfg.ElevationImportance = 0, 0, 0

	testCases := []struct {
		name     string
		minMatch float64
		want     int
	}{
		{name: "exactly at threshold", minMatch: 50, want: 1},
		{name: "one unit above score", minMatch: 51, want: 0},
		{name: "below score", minMatch: 49, want: 1},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			c.MinMatchPercentage = tt.minMatch
			results, err := me.FindMatches(da.NewInputRoute("", geometry, nil), bandungArea, c)
			require.NoError(t, err)
			require.Len(t, results, tt.want)
			if tt.want > 0 {
				assert.Equal(t, 50.0, results[0].GetMatchPercentage())
			}
		})
	}
}

func TestFindMatchesMissingElevation(t *testing.T) {
	geometry := walk(107.60, -6.92, bandungLegs, 50)
	profile := hills(len(geometry), 0)
	me := newEngine(t, []*da.CandidateRoute{candidateFrom("flat-file", geometry, nil)}, 1)

	t.Run("elevation term dropped", func(t *testing.T) {
		cfg := DefaultMatchingConfig()
		results, err := me.FindMatches(da.NewInputRoute("", geometry, profile), bandungArea, cfg)
		require.NoError(t, err)
		require.Len(t, results, 1)
		// shape and turns are identical
		assert.InDelta(t, 100.0, results[0].GetMatchPercentage(), 1e-6)
	})

	t.Run("elevation only falls back to neutral", func(t *testing.T) {
		cfg := DefaultMatchingConfig()
		cfg.ShapeImportance, cfg.TurnsImportance = 0, 0
		cfg.MinMatchPercentage = 0
		results, err := me.FindMatches(da.NewInputRoute("", geometry, profile), bandungArea, cfg)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 50.0, results[0].GetMatchPercentage())
	})
}

func TestFindMatchesRankingAndDeterminism(t *testing.T) {
	input := walk(107.60, -6.92, bandungLegs, 50)
	profile := hills(len(input), 0)

	candidates := make([]*da.CandidateRoute, 0, 40)
	for i := 0; i < 40; i++ {
		// shift every candidate further north, identical ones share the same offset
		lat, lon := geo.GetDestinationPoint(-6.92, 107.60, 0, float64(i/2)*40)
		g := walk(lon, lat, bandungLegs, 50)
		candidates = append(candidates, candidateFrom(fmt.Sprintf("c%02d", i), g, hills(len(g), float64(i)*0.05)))
	}

	cfg := DefaultMatchingConfig()
	cfg.MinMatchPercentage = 0

	sequential, err := newEngine(t, candidates, 1).FindMatches(da.NewInputRoute("", input, profile), bandungArea, cfg)
	require.NoError(t, err)
	parallel, err := newEngine(t, candidates, 8).FindMatches(da.NewInputRoute("", input, profile), bandungArea, cfg)
	require.NoError(t, err)

	require.Len(t, sequential, 40)
	assert.Equal(t, ids(sequential), ids(parallel))
	assert.Equal(t, "c00", sequential[0].GetID())
	for i := 1; i < len(sequential); i++ {
		assert.GreaterOrEqual(t, sequential[i-1].GetMatchPercentage(), sequential[i].GetMatchPercentage())
	}
}

func TestFindMatchesStableTies(t *testing.T) {
	geometry := walk(107.60, -6.92, bandungLegs, 50)
	profile := hills(len(geometry), 0)
	me := newEngine(t, []*da.CandidateRoute{
		candidateFrom("second-upload", geometry, profile),
		candidateFrom("first-upload", geometry, profile),
	}, 1)

	results, err := me.FindMatches(da.NewInputRoute("", geometry, profile), bandungArea, DefaultMatchingConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"second-upload", "first-upload"}, ids(results))
}

func TestFindMatchesGradientCache(t *testing.T) {
	geometry := walk(107.60, -6.92, bandungLegs, 50)
	profile := hills(len(geometry), 0)
	rt := spatialindex.NewRtree()
	rt.Build([]*da.CandidateRoute{candidateFrom("a", geometry, profile)}, zap.NewNop())
	cache, err := lru.New[GradientCacheKey, []float64](16)
	require.NoError(t, err)
	me := NewMatchingEngine(rt, zap.NewNop(), cache, 1)

	cfg := DefaultMatchingConfig()
	for i := 0; i < 2; i++ {
		_, err := me.FindMatches(da.NewInputRoute("", geometry, profile), bandungArea, cfg)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, cache.Len())
	assert.True(t, cache.Contains(GradientCacheKey{RouteID: "a", GranularityMeters: cfg.GranularityMeters}))

	cfg.GranularityMeters = 500
	_, err = me.FindMatches(da.NewInputRoute("", geometry, profile), bandungArea, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())
}

func TestFindMatchesRejectsInvalidInput(t *testing.T) {
	me := newEngine(t, nil, 1)

	_, err := me.FindMatches(da.NewInputRoute("", []geo.Point{geo.NewPoint(107.6, -6.9)}, nil),
		bandungArea, DefaultMatchingConfig())
	require.Error(t, err)
	assert.ErrorIs(t, util.ErrorCode(err), util.ErrBadParamInput)

	geometry := walk(107.60, -6.92, bandungLegs, 50)
	cfg := DefaultMatchingConfig()
	cfg.ShapeImportance = -1
	_, err = me.FindMatches(da.NewInputRoute("", geometry, nil), bandungArea, cfg)
	assert.ErrorIs(t, util.ErrorCode(err), util.ErrBadParamInput)

	_, err = me.FindMatches(da.NewInputRoute("", geometry, nil), da.NewBoundingBox(108, -6, 107, -7), DefaultMatchingConfig())
	assert.ErrorIs(t, util.ErrorCode(err), util.ErrBadParamInput)
}

func TestCombineScores(t *testing.T) {
	c := da.NewCandidateRoute("x", "x", 0, 0, nil, nil)
	fixed := func(s float64, ok bool) scoreFunc {
		return func(*da.CandidateRoute) (float64, bool) { return s, ok }
	}

	testCases := []struct {
		name    string
		metrics []weightedMetric
		want    float64
	}{
		{
			name: "weighted mean",
			metrics: []weightedMetric{
				{name: "a", importance: 1, score: fixed(1.0, true)},
				{name: "b", importance: 3, score: fixed(0.0, true)},
			},
			want: 0.25,
		},
		{
			name: "zero importance skipped",
			metrics: []weightedMetric{
				{name: "a", importance: 0, score: fixed(0.0, true)},
				{name: "b", importance: 2, score: fixed(0.8, true)},
			},
			want: 0.8,
		},
		{
			name: "inapplicable metric skipped",
			metrics: []weightedMetric{
				{name: "a", importance: 5, score: fixed(0.0, false)},
				{name: "b", importance: 1, score: fixed(0.6, true)},
			},
			want: 0.6,
		},
		{
			name:    "no metric is neutral",
			metrics: nil,
			want:    NEUTRAL_SCORE,
		},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, combineScores(tt.metrics, c), 1e-12)
		})
	}
}

func TestMatchingConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultMatchingConfig().Validate())

	zero := DefaultMatchingConfig()
	zero.ShapeImportance, zero.TurnsImportance, zero.ElevationImportance = 0, 0, 0
	assert.NoError(t, zero.Validate())

	bad := []func(c *MatchingConfig){
		func(c *MatchingConfig) { c.DistanceFlexibilityPct = -1 },
		func(c *MatchingConfig) { c.ElevationImportance = math.NaN() },
		func(c *MatchingConfig) { c.GranularityMeters = 0 },
		func(c *MatchingConfig) { c.DTWWindow = -3 },
		func(c *MatchingConfig) { c.ElevationMetric = "slope" },
		func(c *MatchingConfig) { c.ShapeMetric = "area" },
	}
	for i, mutate := range bad {
		c := DefaultMatchingConfig()
		mutate(&c)
		assert.Error(t, c.Validate(), "case %d", i)
	}
}
