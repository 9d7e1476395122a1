package usecases

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/lintang-b-s/curvematch/pkg/engine/matching"
	"github.com/lintang-b-s/curvematch/pkg/geo"
	"github.com/lintang-b-s/curvematch/pkg/store"
	"github.com/lintang-b-s/curvematch/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func gpxDocument(name string, lon, lat float64) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1"><trk>`)
	fmt.Fprintf(&sb, "<name>%s</name><trkseg>", name)
	i := 0
	for _, bearing := range []float64{90, 0, 300} {
		for j := 0; j < 10; j++ {
			ele := 200 + 25*math.Sin(float64(i)/4)
			fmt.Fprintf(&sb, `<trkpt lat="%.7f" lon="%.7f"><ele>%.2f</ele></trkpt>`, lat, lon, ele)
			lat, lon = geo.GetDestinationPoint(lat, lon, bearing, 80)
			i++
		}
	}
	sb.WriteString("</trkseg></trk></gpx>")
	return []byte(sb.String())
}

func newServices(t *testing.T) (*LibraryService, *MatchingService) {
	t.Helper()
	s, err := store.NewRouteStore(filepath.Join(t.TempDir(), "routes.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewLibraryService(zap.NewNop(), s), NewMatchingService(zap.NewNop(), s, 2, 32)
}

var yogyaArea = datastructure.NewBoundingBox(110.30, -7.85, 110.45, -7.70)

func TestMatchFollowsLibraryChanges(t *testing.T) {
	ctx := context.Background()
	library, matcher := newServices(t)
	doc := gpxDocument("malioboro", 110.365, -7.79)

	_, matches, err := matcher.Match(ctx, bytes.NewReader(doc), yogyaArea, matching.DefaultMatchingConfig())
	require.NoError(t, err)
	assert.Empty(t, matches)

	rec, err := library.SaveRoute(ctx, doc, "", "ride", nil)
	require.NoError(t, err)
	assert.Equal(t, "malioboro", rec.Name)

	input, matches, err := matcher.Match(ctx, bytes.NewReader(doc), yogyaArea, matching.DefaultMatchingConfig())
	require.NoError(t, err)
	assert.Equal(t, "malioboro", input.GetName())
	require.Len(t, matches, 1)
	assert.Equal(t, rec.ID, matches[0].GetID())
	assert.InDelta(t, 100.0, matches[0].GetMatchPercentage(), 1e-6)

	first, err := matcher.Snapshot(ctx)
	require.NoError(t, err)
	again, err := matcher.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again)

	require.NoError(t, library.DeleteRoute(ctx, rec.ID))
	_, matches, err = matcher.Match(ctx, bytes.NewReader(doc), yogyaArea, matching.DefaultMatchingConfig())
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestLibraryServiceNames(t *testing.T) {
	ctx := context.Background()
	library, _ := newServices(t)

	rec, err := library.SaveRoute(ctx, gpxDocument("", 110.365, -7.79), "  tugu loop ", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "tugu loop", rec.Name)

	rec, err = library.SaveRoute(ctx, gpxDocument("", 110.365, -7.79), "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, unnamedRoute, rec.Name)

	_, err = library.RenameRoute(ctx, rec.ID, "   ")
	assert.ErrorIs(t, util.ErrorCode(err), util.ErrBadParamInput)

	renamed, err := library.RenameRoute(ctx, rec.ID, "prambanan")
	require.NoError(t, err)
	assert.Equal(t, "prambanan", renamed.Name)

	_, err = library.SaveRoute(ctx, []byte("<gpx"), "", "", nil)
	assert.ErrorIs(t, util.ErrorCode(err), util.ErrBadParamInput)
}
