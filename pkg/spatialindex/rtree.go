package spatialindex

import (
	"errors"
	"math"
	"sort"

	"github.com/lintang-b-s/curvematch/pkg/datastructure"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

const (
	// strNodeCapacity. leaf fan-out assumed when tiling the candidates for bulk loading
	strNodeCapacity = 32
)

var (
	errTooFewPoints    = errors.New("geometry has less than 2 points")
	errInvalidPoint    = errors.New("geometry has a non finite or out of range coordinate")
	errInvalidBoundary = errors.New("bounding box is empty or inverted")
)

// Rtree. immutable once built, safe for concurrent Query calls. rebuild a new one to reflect store changes.
type Rtree struct {
	tr   *rtree.RTreeG[*datastructure.CandidateRoute]
	size int
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[*datastructure.CandidateRoute]
	return &Rtree{
		tr: &tr,
	}
}

func validateCandidate(c *datastructure.CandidateRoute) error {
	geometry := c.GetGeometry()
	if len(geometry) < 2 {
		return errTooFewPoints
	}
	for _, p := range geometry {
		if !p.IsValid() {
			return errInvalidPoint
		}
	}
	if !c.GetBoundingBox().IsValid() {
		return errInvalidBoundary
	}
	return nil
}

/*
Build. bulk load every candidate bounding box.

malformed candidates (less than 2 points, invalid coordinates) are logged and skipped, they never fail the build.
the survivors get their load sequence number (position in candidates) and are inserted in
Sort-Tile-Recursive order: sorted by center longitude, cut into ceil(sqrt(n/capacity)) vertical slices, each slice
sorted by center latitude. neighbouring boxes therefore land in the same leaves, which keeps the tree
as tight as a packed one.
*/
func (rt *Rtree) Build(candidates []*datastructure.CandidateRoute, log *zap.Logger) {
	log.Info("Building R-tree spatial index...", zap.Int("candidates", len(candidates)))

	valid := make([]*datastructure.CandidateRoute, 0, len(candidates))
	for i, c := range candidates {
		if c == nil {
			log.Warn("skipping nil candidate route", zap.Int("position", i))
			continue
		}
		if err := validateCandidate(c); err != nil {
			log.Warn("skipping malformed candidate route", zap.String("id", c.GetID()),
				zap.String("name", c.GetName()), zap.Error(err))
			continue
		}
		valid = append(valid, c.WithSeq(i))
	}

	for _, c := range strOrder(valid) {
		bb := c.GetBoundingBox()
		rt.tr.Insert([2]float64{bb.GetMinLon(), bb.GetMinLat()}, [2]float64{bb.GetMaxLon(), bb.GetMaxLat()}, c)
	}
	rt.size = len(valid)

	log.Info("R-tree spatial index built.", zap.Int("indexed", rt.size),
		zap.Int("skipped", len(candidates)-rt.size))
}

func center(c *datastructure.CandidateRoute) (float64, float64) {
	bb := c.GetBoundingBox()
	return (bb.GetMinLon() + bb.GetMaxLon()) / 2, (bb.GetMinLat() + bb.GetMaxLat()) / 2
}

// strOrder. Sort-Tile-Recursive insertion order of the candidates.
func strOrder(candidates []*datastructure.CandidateRoute) []*datastructure.CandidateRoute {
	ordered := make([]*datastructure.CandidateRoute, len(candidates))
	copy(ordered, candidates)
	n := len(ordered)
	if n <= strNodeCapacity {
		return ordered
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		lonI, _ := center(ordered[i])
		lonJ, _ := center(ordered[j])
		return lonI < lonJ
	})

	numLeaves := int(math.Ceil(float64(n) / strNodeCapacity))
	numSlices := int(math.Ceil(math.Sqrt(float64(numLeaves))))
	sliceSize := numSlices * strNodeCapacity

	for start := 0; start < n; start += sliceSize {
		end := min(start+sliceSize, n)
		slice := ordered[start:end]
		sort.SliceStable(slice, func(i, j int) bool {
			_, latI := center(slice[i])
			_, latJ := center(slice[j])
			return latI < latJ
		})
	}
	return ordered
}

// Query. every candidate whose bounding box intersects (not only is contained in) the query rectangle,
// ordered by load sequence.
func (rt *Rtree) Query(west, south, east, north float64) []*datastructure.CandidateRoute {
	results := make([]*datastructure.CandidateRoute, 0, 16)
	rt.tr.Search([2]float64{west, south}, [2]float64{east, north},
		func(min, max [2]float64, data *datastructure.CandidateRoute) bool {
			results = append(results, data)
			return true
		})

	sort.Slice(results, func(i, j int) bool {
		return results[i].GetSeq() < results[j].GetSeq()
	})
	return results
}

// QueryBoundingBox. Query with a bounding box.
func (rt *Rtree) QueryBoundingBox(bb datastructure.BoundingBox) []*datastructure.CandidateRoute {
	return rt.Query(bb.GetMinLon(), bb.GetMinLat(), bb.GetMaxLon(), bb.GetMaxLat())
}

func (rt *Rtree) Len() int {
	return rt.size
}
