package matching

import "github.com/lintang-b-s/curvematch/pkg/datastructure"

type SpatialIndex interface {
	Query(west, south, east, north float64) []*datastructure.CandidateRoute
	Len() int
}
