package geo

import (
	"math"

	"github.com/lintang-b-s/curvematch/pkg/util"
)

const (
	// DefaultTurnThresholdDeg. vertices bending more than this count as a turn.
	DefaultTurnThresholdDeg = 30.0
)

/*
BearingTo. initial bearing (degrees, [0,360)) of segment (p1,p2).
https://www.movable-type.co.uk/scripts/latlong.html
*/
func BearingTo(p1Lat, p1Lon, p2Lat, p2Lon float64) float64 {

	dLon := util.DegreeToRadians(p2Lon - p1Lon)

	lat1 := util.DegreeToRadians(p1Lat)
	lat2 := util.DegreeToRadians(p2Lat)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brng := math.Mod(util.RadiansToDegree(math.Atan2(y, x))+360, 360.0)

	return brng
}

/*
TurnAngle. absolute change of heading at p2 when travelling p1 -> p2 -> p3, in radians [0, pi].

the bearing difference is normalized into (-180°, 180°] before taking the absolute value, e.g.

	bearing(p1,p2) = 350°, bearing(p2,p3) = 10°  => 20°, not 340°
*/
func TurnAngle(p1, p2, p3 Point) float64 {
	b1 := BearingTo(p1.Lat, p1.Lon, p2.Lat, p2.Lon)
	b2 := BearingTo(p2.Lat, p2.Lon, p3.Lat, p3.Lon)

	diff := math.Mod(b2-b1, 360.0)
	if diff > 180 {
		diff -= 360
	} else if diff <= -180 {
		diff += 360
	}
	return util.DegreeToRadians(math.Abs(diff))
}

// CountTurns. number of interior vertices whose turn angle exceeds thresholdDegrees. 0 for less than 3 points.
func CountTurns(geometry []Point, thresholdDegrees float64) int {
	if len(geometry) < 3 {
		return 0
	}
	threshold := util.DegreeToRadians(thresholdDegrees)
	turns := 0
	for i := 1; i < len(geometry)-1; i++ {
		if TurnAngle(geometry[i-1], geometry[i], geometry[i+1]) > threshold {
			turns++
		}
	}
	return turns
}

// TotalCurvature. sum of every turn angle along the route, radians.
func TotalCurvature(geometry []Point) float64 {
	curvature := 0.0
	for i := 1; i < len(geometry)-1; i++ {
		curvature += TurnAngle(geometry[i-1], geometry[i], geometry[i+1])
	}
	return curvature
}
