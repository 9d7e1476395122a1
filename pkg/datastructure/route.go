package datastructure

import (
	"github.com/lintang-b-s/curvematch/pkg/geo"
)

// CandidateRoute. immutable snapshot of a stored route, owned by the spatial index once loaded.
type CandidateRoute struct {
	id               string
	name             string
	distance         float64 // meters
	elevationGain    float64 // meters
	geometry         []geo.Point
	elevationProfile []float64
	bbox             BoundingBox
	seq              int // load order inside the spatial index
}

func NewCandidateRoute(id, name string, distance, elevationGain float64, geometry []geo.Point,
	elevationProfile []float64) *CandidateRoute {
	bbox, _ := NewBoundingBoxFromGeometry(geometry)
	return &CandidateRoute{
		id:               id,
		name:             name,
		distance:         distance,
		elevationGain:    elevationGain,
		geometry:         geometry,
		elevationProfile: elevationProfile,
		bbox:             bbox,
		seq:              -1,
	}
}

func (c *CandidateRoute) GetID() string {
	return c.id
}

func (c *CandidateRoute) GetName() string {
	return c.name
}

func (c *CandidateRoute) GetDistance() float64 {
	return c.distance
}

func (c *CandidateRoute) GetElevationGain() float64 {
	return c.elevationGain
}

func (c *CandidateRoute) GetGeometry() []geo.Point {
	return c.geometry
}

func (c *CandidateRoute) GetElevationProfile() []float64 {
	return c.elevationProfile
}

func (c *CandidateRoute) GetBoundingBox() BoundingBox {
	return c.bbox
}

func (c *CandidateRoute) GetSeq() int {
	return c.seq
}

// WithSeq. copy of the candidate carrying load sequence number seq.
func (c *CandidateRoute) WithSeq(seq int) *CandidateRoute {
	cp := *c
	cp.seq = seq
	return &cp
}

// InputRoute. a freshly uploaded route to be matched against the candidates.
type InputRoute struct {
	name             string
	geometry         []geo.Point
	elevationProfile []float64
}

func NewInputRoute(name string, geometry []geo.Point, elevationProfile []float64) *InputRoute {
	return &InputRoute{
		name:             name,
		geometry:         geometry,
		elevationProfile: elevationProfile,
	}
}

func (r *InputRoute) GetName() string {
	return r.name
}

func (r *InputRoute) SetName(name string) {
	r.name = name
}

func (r *InputRoute) GetGeometry() []geo.Point {
	return r.geometry
}

func (r *InputRoute) GetElevationProfile() []float64 {
	return r.elevationProfile
}
