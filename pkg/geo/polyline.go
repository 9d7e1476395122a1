package geo

import (
	"github.com/twpayne/go-polyline"
)

// PolylineFromGeometry. google encoded polyline (precision 5) of the geometry.
func PolylineFromGeometry(geometry []Point) string {
	coords := make([][]float64, 0, len(geometry))
	for _, p := range geometry {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}

// GeometryFromPolyline. inverse of PolylineFromGeometry.
func GeometryFromPolyline(encoded string) ([]Point, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	geometry := make([]Point, 0, len(coords))
	for _, c := range coords {
		geometry = append(geometry, NewPoint(c[1], c[0]))
	}
	return geometry, nil
}
