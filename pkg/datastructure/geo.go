package datastructure

import (
	"github.com/lintang-b-s/curvematch/pkg/geo"
)

// BoundingBox. axis aligned lon/lat rectangle, immutable once built.
type BoundingBox struct {
	minLon, minLat float64
	maxLon, maxLat float64
}

func NewBoundingBox(minLon, minLat, maxLon, maxLat float64) BoundingBox {
	return BoundingBox{
		minLon: minLon,
		minLat: minLat,
		maxLon: maxLon,
		maxLat: maxLat,
	}
}

// NewBoundingBoxFromGeometry. smallest box enclosing geometry; ok false for an empty geometry.
func NewBoundingBoxFromGeometry(geometry []geo.Point) (BoundingBox, bool) {
	minLon, minLat, maxLon, maxLat, ok := geo.BoundingBoxOf(geometry)
	if !ok {
		return BoundingBox{}, false
	}
	return NewBoundingBox(minLon, minLat, maxLon, maxLat), true
}

func (b BoundingBox) GetMinLat() float64 {
	return b.minLat
}

func (b BoundingBox) GetMinLon() float64 {
	return b.minLon
}

func (b BoundingBox) GetMaxLat() float64 {
	return b.maxLat
}

func (b BoundingBox) GetMaxLon() float64 {
	return b.maxLon
}

func (b BoundingBox) IsValid() bool {
	return b.minLon <= b.maxLon && b.minLat <= b.maxLat &&
		geo.NewPoint(b.minLon, b.minLat).IsValid() && geo.NewPoint(b.maxLon, b.maxLat).IsValid()
}
