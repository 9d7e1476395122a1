package geo

import (
	"math"

	"github.com/lintang-b-s/curvematch/pkg/util"
)

// Point. wgs84 position in degrees, (lon, lat) order like geojson.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

func NewPoint(lon, lat float64) Point {
	return Point{
		Lon: lon,
		Lat: lat,
	}
}

// IsValid. finite and inside [-180,180] x [-90,90]
func (p Point) IsValid() bool {
	return util.IsFinite(p.Lon) && util.IsFinite(p.Lat) &&
		p.Lon >= -180 && p.Lon <= 180 && p.Lat >= -90 && p.Lat <= 90
}

const (
	earthRadiusM = 6371000.0
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

// CalculateHaversineDistance. calculate haversine distance in meters
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = util.DegreeToRadians(latOne)
	longOne = util.DegreeToRadians(longOne)
	latTwo = util.DegreeToRadians(latTwo)
	longTwo = util.DegreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(math.Min(1, a)))
	return earthRadiusM * c
}

// HaversineDistance. great-circle distance between p1 and p2 in meters.
func HaversineDistance(p1, p2 Point) float64 {
	return CalculateHaversineDistance(p1.Lat, p1.Lon, p2.Lat, p2.Lon)
}

// RouteDistance. sum of consecutive haversine distances in meters, 0 for less than 2 points.
func RouteDistance(geometry []Point) float64 {
	if len(geometry) < 2 {
		return 0
	}
	dist := 0.0
	for i := 1; i < len(geometry); i++ {
		dist += HaversineDistance(geometry[i-1], geometry[i])
	}
	return dist
}

// DistanceArray. cumulative distance (meters) from the route start for every point.
// returns an empty slice for less than 2 points.
func DistanceArray(geometry []Point) []float64 {
	if len(geometry) < 2 {
		return []float64{}
	}
	distances := make([]float64, len(geometry))
	for i := 1; i < len(geometry); i++ {
		distances[i] = distances[i-1] + HaversineDistance(geometry[i-1], geometry[i])
	}
	return distances
}

// ElevationGain. sum of positive consecutive differences of the profile.
func ElevationGain(profile []float64) float64 {
	gain := 0.0
	for i := 1; i < len(profile); i++ {
		if diff := profile[i] - profile[i-1]; diff > 0 {
			gain += diff
		}
	}
	return gain
}

type ElevationStats struct {
	TotalGain    float64 `json:"totalGain"`
	TotalLoss    float64 `json:"totalLoss"`
	MaxElevation float64 `json:"maxElevation"`
	MinElevation float64 `json:"minElevation"`
}

// CalculateElevationStats. gain, loss and elevation extremes of a profile. zero value for an empty profile.
func CalculateElevationStats(profile []float64) ElevationStats {
	if len(profile) == 0 {
		return ElevationStats{}
	}

	stats := ElevationStats{
		MaxElevation: profile[0],
		MinElevation: profile[0],
	}
	for i := 1; i < len(profile); i++ {
		diff := profile[i] - profile[i-1]
		if diff > 0 {
			stats.TotalGain += diff
		} else {
			stats.TotalLoss -= diff
		}
		stats.MaxElevation = math.Max(stats.MaxElevation, profile[i])
		stats.MinElevation = math.Min(stats.MinElevation, profile[i])
	}
	return stats
}

func radToDeg(r float64) float64 {
	return 180.0 * r / math.Pi
}

// GetDestinationPoint returns the destination point given the starting point, bearing and distance
// dist in meters
func GetDestinationPoint(lat1, lon1 float64, bearing float64, dist float64) (float64, float64) {

	dr := dist / earthRadiusM

	bearing = util.DegreeToRadians(bearing)

	lat1 = util.DegreeToRadians(lat1)
	lon1 = util.DegreeToRadians(lon1)

	lat2Part1 := math.Sin(lat1) * math.Cos(dr)
	lat2Part2 := math.Cos(lat1) * math.Sin(dr) * math.Cos(bearing)

	lat2 := math.Asin(lat2Part1 + lat2Part2)

	lon2Part1 := math.Sin(bearing) * math.Sin(dr) * math.Cos(lat1)
	lon2Part2 := math.Cos(dr) - (math.Sin(lat1) * math.Sin(lat2))

	lon2 := lon1 + math.Atan2(lon2Part1, lon2Part2)

	return radToDeg(lat2), normalizeLongitude(radToDeg(lon2))
}

// normalizeLongitude. long in degree
func normalizeLongitude(long float64) float64 {
	return math.Mod((long+540), 360) - 180.0
}
