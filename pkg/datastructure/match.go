package datastructure

import (
	"github.com/lintang-b-s/curvematch/pkg/geo"
)

// MatchResult. read-only result of matching one candidate, never persisted by the engine.
type MatchResult struct {
	id               string
	name             string
	distance         float64
	elevationGain    float64
	gainPerKm        float64
	matchPercentage  float64
	curveScore       float64
	geometry         []geo.Point
	elevationProfile []float64
}

// NewMatchResult. matchPercentage is always curveScore*100.
func NewMatchResult(candidate *CandidateRoute, curveScore float64) *MatchResult {
	gainPerKm := 0.0
	if candidate.GetDistance() > 0 {
		gainPerKm = candidate.GetElevationGain() / (candidate.GetDistance() / 1000.0)
	}
	return &MatchResult{
		id:               candidate.GetID(),
		name:             candidate.GetName(),
		distance:         candidate.GetDistance(),
		elevationGain:    candidate.GetElevationGain(),
		gainPerKm:        gainPerKm,
		matchPercentage:  curveScore * 100.0,
		curveScore:       curveScore,
		geometry:         candidate.GetGeometry(),
		elevationProfile: candidate.GetElevationProfile(),
	}
}

func (m *MatchResult) GetID() string {
	return m.id
}

func (m *MatchResult) GetName() string {
	return m.name
}

func (m *MatchResult) GetDistance() float64 {
	return m.distance
}

func (m *MatchResult) GetElevationGain() float64 {
	return m.elevationGain
}

func (m *MatchResult) GetGainPerKm() float64 {
	return m.gainPerKm
}

func (m *MatchResult) GetMatchPercentage() float64 {
	return m.matchPercentage
}

func (m *MatchResult) GetCurveScore() float64 {
	return m.curveScore
}

func (m *MatchResult) GetGeometry() []geo.Point {
	return m.geometry
}

func (m *MatchResult) GetElevationProfile() []float64 {
	return m.elevationProfile
}
