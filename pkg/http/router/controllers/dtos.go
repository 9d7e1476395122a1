package controllers

import (
	"time"

	"github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/lintang-b-s/curvematch/pkg/geo"
	"github.com/lintang-b-s/curvematch/pkg/store"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type searchAreaRequest struct {
	West  float64 `json:"west" validate:"min=-180,max=180"`
	South float64 `json:"south" validate:"min=-90,max=90"`
	East  float64 `json:"east" validate:"min=-180,max=180,gtefield=West"`
	North float64 `json:"north" validate:"min=-90,max=90,gtefield=South"`
}

func (s searchAreaRequest) toSearchArea() *store.SearchArea {
	return &store.SearchArea{West: s.West, South: s.South, East: s.East, North: s.North}
}

type renameRouteRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type listRoutesRequest struct {
	Tag    string `validate:"max=100"`
	Limit  int    `validate:"min=0,max=500"`
	Offset int    `validate:"min=0"`
}

func lineString(geometry []geo.Point) *geojson.Geometry {
	ls := make(orb.LineString, 0, len(geometry))
	for _, p := range geometry {
		ls = append(ls, orb.Point{p.Lon, p.Lat})
	}
	return geojson.NewGeometry(ls)
}

type matchResultResponse struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Distance         float64           `json:"distance"`
	ElevationGain    float64           `json:"elevation_gain"`
	GainPerKm        float64           `json:"gain_per_km"`
	MatchPercentage  float64           `json:"match_percentage"`
	CurveScore       float64           `json:"curve_score"`
	Geometry         *geojson.Geometry `json:"geometry"`
	Polyline         string            `json:"polyline"`
	ElevationProfile []float64         `json:"elevation_profile"`
}

func newMatchResultResponse(m *datastructure.MatchResult) matchResultResponse {
	return matchResultResponse{
		ID:               m.GetID(),
		Name:             m.GetName(),
		Distance:         m.GetDistance(),
		ElevationGain:    m.GetElevationGain(),
		GainPerKm:        m.GetGainPerKm(),
		MatchPercentage:  m.GetMatchPercentage(),
		CurveScore:       m.GetCurveScore(),
		Geometry:         lineString(m.GetGeometry()),
		Polyline:         geo.PolylineFromGeometry(m.GetGeometry()),
		ElevationProfile: m.GetElevationProfile(),
	}
}

type inputRouteResponse struct {
	Name             string            `json:"name"`
	Distance         float64           `json:"distance"`
	ElevationGain    float64           `json:"elevation_gain"`
	ElevationLoss    float64           `json:"elevation_loss"`
	Turns            int               `json:"turns"`
	Geometry         *geojson.Geometry `json:"geometry"`
	Polyline         string            `json:"polyline"`
	ElevationProfile []float64         `json:"elevation_profile"`
}

func newInputRouteResponse(r *datastructure.InputRoute) inputRouteResponse {
	stats := geo.CalculateElevationStats(r.GetElevationProfile())
	return inputRouteResponse{
		Name:             r.GetName(),
		Distance:         geo.RouteDistance(r.GetGeometry()),
		ElevationGain:    stats.TotalGain,
		ElevationLoss:    stats.TotalLoss,
		Turns:            geo.CountTurns(r.GetGeometry(), geo.DefaultTurnThresholdDeg),
		Geometry:         lineString(r.GetGeometry()),
		Polyline:         geo.PolylineFromGeometry(r.GetGeometry()),
		ElevationProfile: r.GetElevationProfile(),
	}
}

type matchResponse struct {
	Matches      []matchResultResponse `json:"matches"`
	TotalMatches int                   `json:"total_matches"`
	InputRoute   inputRouteResponse    `json:"inputRoute"`
}

// NewMatchResponse. matches beyond maxResults are counted but not serialized.
func NewMatchResponse(input *datastructure.InputRoute, matches []*datastructure.MatchResult,
	maxResults int) matchResponse {
	shown := matches
	if maxResults > 0 && len(shown) > maxResults {
		shown = shown[:maxResults]
	}
	resp := matchResponse{
		Matches:      make([]matchResultResponse, 0, len(shown)),
		TotalMatches: len(matches),
		InputRoute:   newInputRouteResponse(input),
	}
	for _, m := range shown {
		resp.Matches = append(resp.Matches, newMatchResultResponse(m))
	}
	return resp
}

type routeResponse struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Tag              string            `json:"tag"`
	SavedAt          time.Time         `json:"saved_at"`
	Distance         float64           `json:"distance"`
	ElevationGain    float64           `json:"elevation_gain"`
	ElevationLoss    float64           `json:"elevation_loss"`
	GainPerKm        float64           `json:"gain_per_km"`
	Geometry         *geojson.Geometry `json:"geometry,omitempty"`
	Polyline         string            `json:"polyline,omitempty"`
	ElevationProfile []float64         `json:"elevation_profile,omitempty"`
	SearchArea       *store.SearchArea `json:"search_area,omitempty"`
}

// NewRouteResponse. withGeometry false gives the compact listing form.
func NewRouteResponse(rec *store.RouteRecord, withGeometry bool) (routeResponse, error) {
	resp := routeResponse{
		ID:            rec.ID,
		Name:          rec.Name,
		Tag:           rec.Tag,
		SavedAt:       rec.SavedAt,
		Distance:      rec.DistanceM,
		ElevationGain: rec.ElevationGainM,
		ElevationLoss: rec.ElevationLossM,
		GainPerKm:     rec.GainPerKm,
	}
	area, err := rec.SearchArea()
	if err != nil {
		return resp, err
	}
	resp.SearchArea = area
	if !withGeometry {
		return resp, nil
	}

	geometry, err := rec.Geometry()
	if err != nil {
		return resp, err
	}
	profile, err := rec.ElevationProfile()
	if err != nil {
		return resp, err
	}
	resp.Geometry = lineString(geometry)
	resp.Polyline = geo.PolylineFromGeometry(geometry)
	resp.ElevationProfile = profile
	return resp, nil
}

type errorResponse struct {
	Error string `json:"error"`
}
