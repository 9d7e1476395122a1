package spatialindex

import (
	"fmt"
	"math"
	"testing"

	"github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/lintang-b-s/curvematch/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func segment(id string, lon, lat, size float64) *datastructure.CandidateRoute {
	geometry := []geo.Point{geo.NewPoint(lon, lat), geo.NewPoint(lon+size, lat+size)}
	return datastructure.NewCandidateRoute(id, "route "+id, geo.RouteDistance(geometry), 0, geometry, nil)
}

func TestRtreeQueryIntersection(t *testing.T) {
	candidates := []*datastructure.CandidateRoute{
		segment("berlin-loop", 13.4050, 52.5200, 0.01),
		segment("tiergarten", 13.3500, 52.5100, 0.02),
		segment("potsdam", 13.0600, 52.3900, 0.02),
	}

	rt := NewRtree()
	rt.Build(candidates, zap.NewNop())
	require.Equal(t, 3, rt.Len())

	testCases := []struct {
		name                     string
		west, south, east, north float64
		want                     []string
	}{
		{
			name: "central berlin contains two routes",
			west: 13.30, south: 52.50, east: 13.45, north: 52.55,
			want: []string{"berlin-loop", "tiergarten"},
		},
		{
			name: "partial overlap still returned",
			west: 13.41, south: 52.525, east: 13.50, north: 52.60,
			want: []string{"berlin-loop"},
		},
		{
			name: "empty area",
			west: 14.0, south: 53.0, east: 14.1, north: 53.1,
			want: []string{},
		},
		{
			name: "everything",
			west: -180, south: -90, east: 180, north: 90,
			want: []string{"berlin-loop", "tiergarten", "potsdam"},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := rt.Query(tt.west, tt.south, tt.east, tt.north)
			ids := make([]string, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.GetID())
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestRtreeSkipsMalformedCandidates(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	candidates := []*datastructure.CandidateRoute{
		segment("ok", 13.4, 52.5, 0.01),
		datastructure.NewCandidateRoute("single-point", "x", 0, 0, []geo.Point{geo.NewPoint(13.4, 52.5)}, nil),
		datastructure.NewCandidateRoute("nan", "x", 0, 0, []geo.Point{geo.NewPoint(math.NaN(), 52.5),
			geo.NewPoint(13.4, 52.5)}, nil),
		datastructure.NewCandidateRoute("out-of-range", "x", 0, 0, []geo.Point{geo.NewPoint(13.4, 95),
			geo.NewPoint(13.4, 52.5)}, nil),
		nil,
	}

	rt := NewRtree()
	rt.Build(candidates, log)

	assert.Equal(t, 1, rt.Len())
	assert.Equal(t, 4, logs.Len())

	got := rt.Query(-180, -90, 180, 90)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].GetID())
	assert.Equal(t, 0, got[0].GetSeq())
}

func TestRtreeBulkLoadManyCandidates(t *testing.T) {
	candidates := make([]*datastructure.CandidateRoute, 0, 1000)
	for i := 0; i < 40; i++ {
		for j := 0; j < 25; j++ {
			candidates = append(candidates, segment(fmt.Sprintf("%d-%d", i, j), 100+float64(i)*0.1,
				-8+float64(j)*0.1, 0.05))
		}
	}

	rt := NewRtree()
	rt.Build(candidates, zap.NewNop())
	require.Equal(t, len(candidates), rt.Len())

	got := rt.Query(100.0, -8.0, 100.06, -7.94)
	ids := make([]string, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.GetID())
	}
	assert.Equal(t, []string{"0-0"}, ids)

	// results come back in load order regardless of the tiling
	all := rt.Query(-180, -90, 180, 90)
	require.Len(t, all, len(candidates))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].GetSeq(), all[i].GetSeq())
	}

	// a query box strictly inside a candidate box still intersects it
	inner := rt.QueryBoundingBox(datastructure.NewBoundingBox(100.01, -7.99, 100.02, -7.98))
	require.Len(t, inner, 1)
	assert.Equal(t, "0-0", inner[0].GetID())
}
