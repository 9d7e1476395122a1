package matching

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/curvematch/pkg/concurrent"
	da "github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/lintang-b-s/curvematch/pkg/geo"
	"github.com/lintang-b-s/curvematch/pkg/similarity"
	"github.com/lintang-b-s/curvematch/pkg/util"
	"go.uber.org/zap"
)

// GradientCacheKey. rolling gradients of a stored route only depend on the route and the window size.
type GradientCacheKey struct {
	RouteID           string
	GranularityMeters float64
}

// MatchingEngine. holds no per request state, FindMatches may be called concurrently.
type MatchingEngine struct {
	index         SpatialIndex
	logger        *zap.Logger
	gradientCache *lru.Cache[GradientCacheKey, []float64]
	workers       int
}

// NewMatchingEngine. gradientCache may be nil. the cache must not outlive the index it was filled from.
func NewMatchingEngine(index SpatialIndex, logger *zap.Logger,
	gradientCache *lru.Cache[GradientCacheKey, []float64], workers int) *MatchingEngine {
	if workers < 1 {
		workers = 1
	}
	return &MatchingEngine{
		index:         index,
		logger:        logger,
		gradientCache: gradientCache,
		workers:       workers,
	}
}

type inputFeatures struct {
	route         *da.InputRoute
	distance      float64
	elevationGain float64
	turns         int
	distances     []float64
	gradients     []float64
}

func computeInputFeatures(input *da.InputRoute, cfg MatchingConfig) *inputFeatures {
	geometry := input.GetGeometry()
	f := &inputFeatures{
		route:         input,
		distance:      geo.RouteDistance(geometry),
		elevationGain: geo.ElevationGain(input.GetElevationProfile()),
		turns:         geo.CountTurns(geometry, geo.DefaultTurnThresholdDeg),
		distances:     geo.DistanceArray(geometry),
	}
	if hasElevation(input.GetElevationProfile()) {
		f.gradients = similarity.RollingGradients(alignProfile(input.GetElevationProfile(), len(f.distances)),
			f.distances, cfg.GranularityMeters)
	}
	return f
}

// hasElevation. a profile with less than 2 samples carries no grade information.
func hasElevation(profile []float64) bool {
	return len(profile) >= 2
}

// alignProfile. profiles may be shorter than their geometry (points without elevation, stored data).
func alignProfile(profile []float64, n int) []float64 {
	if len(profile) == n {
		return profile
	}
	return similarity.Resample(profile, n)
}

// scoreFunc. second return value false means the metric does not apply to this candidate and
// contributes neither score nor weight.
type scoreFunc func(c *da.CandidateRoute) (float64, bool)

type weightedMetric struct {
	name       string
	importance float64
	score      scoreFunc
}

func (me *MatchingEngine) metricTable(in *inputFeatures, cfg MatchingConfig) []weightedMetric {
	return []weightedMetric{
		{name: "elevation", importance: cfg.ElevationImportance, score: me.elevationScore(in, cfg)},
		{name: "shape", importance: cfg.ShapeImportance, score: shapeScore(in, cfg)},
		{name: "turns", importance: cfg.TurnsImportance, score: turnsScore(in)},
	}
}

// combineScores. weighted mean over the metrics with positive importance that apply to c,
// NEUTRAL_SCORE when nothing contributed.
func combineScores(metrics []weightedMetric, c *da.CandidateRoute) float64 {
	total, weight := 0.0, 0.0
	for _, m := range metrics {
		if m.importance <= 0 {
			continue
		}
		s, ok := m.score(c)
		if !ok {
			continue
		}
		total += s * m.importance
		weight += m.importance
	}
	if weight <= 0 {
		return NEUTRAL_SCORE
	}
	return total / weight
}

func (me *MatchingEngine) elevationScore(in *inputFeatures, cfg MatchingConfig) scoreFunc {
	inputProfile := in.route.GetElevationProfile()
	return func(c *da.CandidateRoute) (float64, bool) {
		if !hasElevation(inputProfile) || !hasElevation(c.GetElevationProfile()) {
			return 0, false
		}
		switch cfg.ElevationMetric {
		case ElevationMetricDTW:
			return similarity.DTWSimilarity(inputProfile, c.GetElevationProfile(), cfg.DTWWindow), true
		default:
			return similarity.GradientProfileSimilarity(in.gradients, me.candidateGradients(c, cfg.GranularityMeters)), true
		}
	}
}

func (me *MatchingEngine) candidateGradients(c *da.CandidateRoute, granularity float64) []float64 {
	key := GradientCacheKey{RouteID: c.GetID(), GranularityMeters: granularity}
	if me.gradientCache != nil {
		if grads, ok := me.gradientCache.Get(key); ok {
			return grads
		}
	}
	distances := geo.DistanceArray(c.GetGeometry())
	grads := similarity.RollingGradients(alignProfile(c.GetElevationProfile(), len(distances)), distances, granularity)
	if me.gradientCache != nil {
		me.gradientCache.Add(key, grads)
	}
	return grads
}

func shapeScore(in *inputFeatures, cfg MatchingConfig) scoreFunc {
	geometry := in.route.GetGeometry()
	return func(c *da.CandidateRoute) (float64, bool) {
		if cfg.ShapeMetric == ShapeMetricFrechet {
			return similarity.FrechetSimilarity(geometry, c.GetGeometry()), true
		}
		return similarity.HausdorffSimilarity(geometry, c.GetGeometry()), true
	}
}

func turnsScore(in *inputFeatures) scoreFunc {
	return func(c *da.CandidateRoute) (float64, bool) {
		return similarity.TurnCountSimilarity(in.turns,
			geo.CountTurns(c.GetGeometry(), geo.DefaultTurnThresholdDeg)), true
	}
}

type scoredCandidate struct {
	candidate *da.CandidateRoute
	score     float64
}

/*
FindMatches. ranks the stored routes whose bounding box intersects bounds against input.

 1. input features (distance, elevation gain, turns, cumulative distances)
 2. candidates from the spatial index, rejected when their distance is outside the flexibility window
 3. weighted score per candidate over the metric table
 4. candidates below cfg.MinMatchPercentage are dropped
 5. sorted by match percentage descending, ties keep index order

a candidate without elevation data is scored on the remaining metrics only.
*/
func (me *MatchingEngine) FindMatches(input *da.InputRoute, bounds da.BoundingBox,
	cfg MatchingConfig) ([]*da.MatchResult, error) {
	if input == nil || len(input.GetGeometry()) < 2 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "input route must have at least 2 points")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !bounds.IsValid() {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "search area is empty or inverted")
	}

	in := computeInputFeatures(input, cfg)
	minDist, maxDist := cfg.DistanceWindow(in.distance)

	queried := me.index.Query(bounds.GetMinLon(), bounds.GetMinLat(), bounds.GetMaxLon(), bounds.GetMaxLat())
	candidates := make([]*da.CandidateRoute, 0, len(queried))
	for _, c := range queried {
		if c.GetDistance() < minDist || c.GetDistance() > maxDist {
			continue
		}
		candidates = append(candidates, c)
	}

	metrics := me.metricTable(in, cfg)
	scoreCandidate := func(c *da.CandidateRoute) scoredCandidate {
		return scoredCandidate{candidate: c, score: combineScores(metrics, c)}
	}

	var scored []scoredCandidate
	if me.workers > 1 && len(candidates) >= MIN_PARALLEL_CANDIDATES {
		scored = concurrent.RunJobs(me.workers, candidates, scoreCandidate)
		sort.Slice(scored, func(i, j int) bool {
			return scored[i].candidate.GetSeq() < scored[j].candidate.GetSeq()
		})
	} else {
		scored = make([]scoredCandidate, 0, len(candidates))
		for _, c := range candidates {
			scored = append(scored, scoreCandidate(c))
		}
	}

	results := make([]*da.MatchResult, 0, len(scored))
	for _, s := range scored {
		res := da.NewMatchResult(s.candidate, s.score)
		if res.GetMatchPercentage() < cfg.MinMatchPercentage {
			continue
		}
		results = append(results, res)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].GetMatchPercentage() > results[j].GetMatchPercentage()
	})

	me.logger.Debug("matched input route",
		zap.String("name", input.GetName()),
		zap.Float64("input_distance_m", in.distance),
		zap.Float64("input_elevation_gain_m", in.elevationGain),
		zap.Int("input_turns", in.turns),
		zap.Int("queried", len(queried)),
		zap.Int("within_distance", len(candidates)),
		zap.Int("matches", len(results)),
		zap.Stringer("config", cfg),
	)
	return results, nil
}
