package main

import (
	"context"
	"encoding/xml"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	da "github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/lintang-b-s/curvematch/pkg/geo"
	"github.com/lintang-b-s/curvematch/pkg/logger"
	"github.com/lintang-b-s/curvematch/pkg/store"
	"github.com/twpayne/go-gpx"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

var (
	dbPath    = flag.String("db", "./data/curvematch.db", "sqlite route library to seed")
	numRoutes = flag.Int("n", 200, "number of synthetic routes")
	seed      = flag.Uint64("seed", 42, "random seed")
	centerLat = flag.Float64("lat", -6.9147, "latitude routes start around")
	centerLon = flag.Float64("lon", 107.6098, "longitude routes start around")
	spreadKm  = flag.Float64("spread_km", 15, "max distance of a route start from the center")
	gpxOut    = flag.String("gpx_out", "", "also write the first route as gpx to this path (.bz2 suffix compresses)")
)

// randomRoute. correlated random walk with a smooth random elevation profile.
func randomRoute(rng *rand.Rand, name string) *da.InputRoute {
	lat, lon := geo.GetDestinationPoint(*centerLat, *centerLon, rng.Float64()*360, rng.Float64()*(*spreadKm)*1000)
	bearing := rng.Float64() * 360
	step := 25 + rng.Float64()*50
	n := 40 + rng.Intn(200)

	ele := 200 + rng.Float64()*800
	slope := 0.0
	geometry := make([]geo.Point, 0, n)
	profile := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		geometry = append(geometry, geo.NewPoint(lon, lat))
		profile = append(profile, math.Round(ele*10)/10)

		if rng.Float64() < 0.08 {
			bearing += (rng.Float64() - 0.5) * 180
		} else {
			bearing += (rng.Float64() - 0.5) * 20
		}
		bearing = math.Mod(bearing+360, 360)
		lat, lon = geo.GetDestinationPoint(lat, lon, bearing, step)

		slope = 0.9*slope + (rng.Float64()-0.5)*0.04
		ele = math.Max(0, ele+slope*step)
	}
	return da.NewInputRoute(name, geometry, profile)
}

func writeGPX(path string, route *da.InputRoute) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	if strings.HasSuffix(path, ".bz2") {
		bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
		if err != nil {
			return err
		}
		defer bz.Close()
		w = bz
	}

	seg := &gpx.TrkSegType{}
	profile := route.GetElevationProfile()
	for i, p := range route.GetGeometry() {
		seg.TrkPt = append(seg.TrkPt, &gpx.WptType{Lat: p.Lat, Lon: p.Lon, Ele: profile[i]})
	}
	g := &gpx.GPX{
		Version: "1.1",
		Creator: "curvematch generator",
		Trk: []*gpx.TrkType{{
			Name:   route.GetName(),
			TrkSeg: []*gpx.TrkSegType{seg},
		}},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return g.WriteIndent(w, "", "  ")
}

func main() {
	flag.Parse()
	logger, err := logger.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	routeStore, err := store.NewRouteStore(*dbPath, logger)
	if err != nil {
		logger.Fatal("open route store", zap.Error(err))
	}
	defer routeStore.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(*seed))
	for i := 0; i < *numRoutes; i++ {
		route := randomRoute(rng, fmt.Sprintf("synthetic route %d", i+1))
		rec, err := store.NewRouteRecord(route, "synthetic", nil, nil)
		if err != nil {
			logger.Fatal("build route record", zap.Error(err))
		}
		if err := routeStore.SaveRoute(ctx, rec); err != nil {
			logger.Fatal("save route", zap.Error(err))
		}
		if i == 0 && *gpxOut != "" {
			if err := writeGPX(*gpxOut, route); err != nil {
				logger.Fatal("write gpx", zap.Error(err))
			}
			logger.Sugar().Infof("wrote %s", *gpxOut)
		}
	}
	logger.Sugar().Infof("seeded %d routes into %s", *numRoutes, *dbPath)
}
