package usecases

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/lintang-b-s/curvematch/pkg/engine"
	"github.com/lintang-b-s/curvematch/pkg/engine/matching"
	"github.com/lintang-b-s/curvematch/pkg/gpxparser"
	"go.uber.org/zap"
)

// MatchingService. serves match requests from the latest engine snapshot, rebuilt lazily whenever the
// route store has changed since the snapshot was loaded.
type MatchingService struct {
	log       *zap.Logger
	store     RouteStore
	workers   int
	cacheSize int

	snapshot  atomic.Pointer[engine.Engine]
	rebuildMu sync.Mutex
}

func NewMatchingService(log *zap.Logger, store RouteStore, workers, cacheSize int) *MatchingService {
	return &MatchingService{
		log:       log,
		store:     store,
		workers:   workers,
		cacheSize: cacheSize,
	}
}

// Snapshot. current engine, rebuilding it first when stale. concurrent callers share one rebuild.
func (ms *MatchingService) Snapshot(ctx context.Context) (*engine.Engine, error) {
	if cur := ms.snapshot.Load(); cur != nil && cur.Version() == ms.store.Version() {
		return cur, nil
	}

	ms.rebuildMu.Lock()
	defer ms.rebuildMu.Unlock()
	if cur := ms.snapshot.Load(); cur != nil && cur.Version() == ms.store.Version() {
		return cur, nil
	}

	e, err := engine.NewEngine(ctx, ms.store, ms.log, ms.workers, ms.cacheSize)
	if err != nil {
		return nil, err
	}
	ms.snapshot.Store(e)
	return e, nil
}

// Match. decodes the uploaded gpx and ranks the stored routes inside area against it.
func (ms *MatchingService) Match(ctx context.Context, gpxFile io.Reader, area datastructure.BoundingBox,
	cfg matching.MatchingConfig) (*datastructure.InputRoute, []*datastructure.MatchResult, error) {
	input, err := gpxparser.Parse(gpxFile)
	if err != nil {
		return nil, nil, err
	}

	e, err := ms.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	matches, err := e.GetMatchingEngine().FindMatches(input, area, cfg)
	if err != nil {
		return nil, nil, err
	}
	ms.log.Info("route matched",
		zap.String("name", input.GetName()),
		zap.Int("points", len(input.GetGeometry())),
		zap.Int("indexed_routes", e.Len()),
		zap.Int("matches", len(matches)),
	)
	return input, matches, nil
}
