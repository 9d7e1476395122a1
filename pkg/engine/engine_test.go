package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	da "github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/lintang-b-s/curvematch/pkg/engine/matching"
	"github.com/lintang-b-s/curvematch/pkg/geo"
	"github.com/lintang-b-s/curvematch/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSource struct {
	recs    []store.RouteRecord
	version uint64
	err     error
}

func (f *fakeSource) AllRoutes(ctx context.Context) ([]store.RouteRecord, uint64, error) {
	return f.recs, f.version, f.err
}

func loop(lon, lat float64) []geo.Point {
	geometry := []geo.Point{geo.NewPoint(lon, lat)}
	for i, bearing := range []float64{90, 0, 270} {
		for j := 0; j < 8; j++ {
			lat, lon = geo.GetDestinationPoint(lat, lon, bearing+float64(i), 60)
			geometry = append(geometry, geo.NewPoint(lon, lat))
		}
	}
	return geometry
}

func TestNewEngineSkipsBrokenRecords(t *testing.T) {
	geometry := loop(110.36, -7.80)
	profile := make([]float64, len(geometry))
	for i := range profile {
		profile[i] = 100 + 20*math.Sin(float64(i)/3)
	}
	good, err := store.NewRouteRecord(da.NewInputRoute("kraton", geometry, profile), "", nil, nil)
	require.NoError(t, err)

	src := &fakeSource{
		recs: []store.RouteRecord{
			*good,
			{ID: "bad-wkt", GeomWKT: "POINT(1 2)"},
			{ID: "bad-ele", GeomWKT: "LINESTRING(110.36 -7.8,110.37 -7.81)", ElevationProfileJSON: "{"},
		},
		version: 7,
	}

	core, logs := observer.New(zap.WarnLevel)
	e, err := NewEngine(context.Background(), src, zap.New(core), 2, 64)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Len())
	assert.Equal(t, uint64(7), e.Version())
	assert.Equal(t, 2, logs.FilterMessage("skipping stored route").Len())

	results, err := e.GetMatchingEngine().FindMatches(da.NewInputRoute("", geometry, profile),
		da.NewBoundingBox(110.3, -7.9, 110.5, -7.7), matching.DefaultMatchingConfig())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, good.ID, results[0].GetID())
	assert.InDelta(t, 100.0, results[0].GetMatchPercentage(), 1e-6)
}

func TestNewEngineSourceError(t *testing.T) {
	_, err := NewEngine(context.Background(), &fakeSource{err: errors.New("disk gone")}, zap.NewNop(), 1, 0)
	assert.Error(t, err)
}
