package geo

import (
	"github.com/golang/geo/s2"
)

// BoundingBoxOf. axis aligned lon/lat rectangle enclosing the geometry, as (minLon, minLat, maxLon, maxLat).
// ok is false for an empty geometry.
func BoundingBoxOf(geometry []Point) (minLon, minLat, maxLon, maxLat float64, ok bool) {
	rect := s2.EmptyRect()
	for _, p := range geometry {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lon))
	}
	if rect.IsEmpty() {
		return 0, 0, 0, 0, false
	}

	lo, hi := rect.Lo(), rect.Hi()
	minLon, maxLon = lo.Lng.Degrees(), hi.Lng.Degrees()
	if rect.Lng.IsInverted() {
		// route crosses the antimeridian, index it over the full longitude range
		minLon, maxLon = -180, 180
	}
	return minLon, lo.Lat.Degrees(), maxLon, hi.Lat.Degrees(), true
}
