package engine

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/lintang-b-s/curvematch/pkg/engine/matching"
	"github.com/lintang-b-s/curvematch/pkg/spatialindex"
	"github.com/lintang-b-s/curvematch/pkg/store"
	"github.com/lintang-b-s/curvematch/pkg/util"
	"go.uber.org/zap"
)

type RouteSource interface {
	AllRoutes(ctx context.Context) ([]store.RouteRecord, uint64, error)
}

// Engine. immutable snapshot of the route library: spatial index plus the matching engine over it.
type Engine struct {
	matchingEngine *matching.MatchingEngine
	version        uint64
	size           int
}

func (e *Engine) GetMatchingEngine() *matching.MatchingEngine {
	return e.matchingEngine
}

// Version. store version the snapshot was loaded at.
func (e *Engine) Version() uint64 {
	return e.version
}

func (e *Engine) Len() int {
	return e.size
}

func NewEngine(ctx context.Context, source RouteSource, logger *zap.Logger, workers, cacheSize int) (*Engine, error) {
	logger.Info("Loading route library...")
	recs, version, err := source.AllRoutes(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]*datastructure.CandidateRoute, 0, len(recs))
	for i := range recs {
		c, err := recs[i].ToCandidate()
		if err != nil {
			logger.Warn("skipping stored route", zap.String("id", recs[i].ID), zap.Error(err))
			continue
		}
		candidates = append(candidates, c)
	}

	logger.Info("Building spatial index...", zap.Int("routes", len(candidates)))
	rt := spatialindex.NewRtree()
	rt.Build(candidates, logger)

	var gradientCache *lru.Cache[matching.GradientCacheKey, []float64]
	if cacheSize > 0 {
		gradientCache, err = lru.New[matching.GradientCacheKey, []float64](cacheSize)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInternalServerError, "gradient cache")
		}
	}

	logger.Sugar().Infof("Matching engine ready: %d indexed routes, store version %d", rt.Len(), version)
	return &Engine{
		matchingEngine: matching.NewMatchingEngine(rt, logger, gradientCache, workers),
		version:        version,
		size:           rt.Len(),
	}, nil
}
