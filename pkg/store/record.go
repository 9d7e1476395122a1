package store

import (
	"encoding/json"
	"time"

	da "github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/lintang-b-s/curvematch/pkg/geo"
	"github.com/lintang-b-s/curvematch/pkg/util"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// RouteRecord. one saved route of the library.
type RouteRecord struct {
	ID                   string    `gorm:"primaryKey;type:text" json:"id"`
	Name                 string    `gorm:"index" json:"name"`
	Tag                  string    `gorm:"index" json:"tag"`
	SavedAt              time.Time `gorm:"index" json:"saved_at"`
	DistanceM            float64   `json:"distance_m"`
	ElevationGainM       float64   `json:"elevation_gain_m"`
	ElevationLossM       float64   `json:"elevation_loss_m"`
	GainPerKm            float64   `json:"gain_per_km"`
	GeomWKT              string    `gorm:"type:text" json:"-"`
	ElevationProfileJSON string    `gorm:"type:text" json:"-"`
	SearchAreaJSON       string    `gorm:"type:text" json:"-"`
	GPXData              []byte    `json:"-"`
}

func (RouteRecord) TableName() string {
	return "routes"
}

// SearchArea. bounding box the route was uploaded with.
type SearchArea struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

func (s SearchArea) BoundingBox() da.BoundingBox {
	return da.NewBoundingBox(s.West, s.South, s.East, s.North)
}

func geometryToWKT(geometry []geo.Point) string {
	ls := make(orb.LineString, 0, len(geometry))
	for _, p := range geometry {
		ls = append(ls, orb.Point{p.Lon, p.Lat})
	}
	return wkt.MarshalString(ls)
}

func geometryFromWKT(s string) ([]geo.Point, error) {
	ls, err := wkt.UnmarshalLineString(s)
	if err != nil {
		return nil, err
	}
	geometry := make([]geo.Point, 0, len(ls))
	for _, p := range ls {
		geometry = append(geometry, geo.NewPoint(p.Lon(), p.Lat()))
	}
	return geometry, nil
}

// Geometry. decoded lon/lat path of the record.
func (r *RouteRecord) Geometry() ([]geo.Point, error) {
	geometry, err := geometryFromWKT(r.GeomWKT)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "route %s: invalid geometry", r.ID)
	}
	return geometry, nil
}

// ElevationProfile. nil when the route was saved without elevation data.
func (r *RouteRecord) ElevationProfile() ([]float64, error) {
	if r.ElevationProfileJSON == "" {
		return nil, nil
	}
	var profile []float64
	if err := json.Unmarshal([]byte(r.ElevationProfileJSON), &profile); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "route %s: invalid elevation profile", r.ID)
	}
	return profile, nil
}

func (r *RouteRecord) SearchArea() (*SearchArea, error) {
	if r.SearchAreaJSON == "" {
		return nil, nil
	}
	var area SearchArea
	if err := json.Unmarshal([]byte(r.SearchAreaJSON), &area); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "route %s: invalid search area", r.ID)
	}
	return &area, nil
}

// ToCandidate. immutable candidate snapshot of the record for the spatial index.
func (r *RouteRecord) ToCandidate() (*da.CandidateRoute, error) {
	geometry, err := r.Geometry()
	if err != nil {
		return nil, err
	}
	profile, err := r.ElevationProfile()
	if err != nil {
		return nil, err
	}
	return da.NewCandidateRoute(r.ID, r.Name, r.DistanceM, r.ElevationGainM, geometry, profile), nil
}
