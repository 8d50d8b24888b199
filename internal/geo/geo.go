// Package geo holds the great-circle math behind the nearby-reports query.
package geo

import (
	"math"
	"sort"
)

// EarthRadiusKm is the mean Earth radius used for every distance.
const EarthRadiusKm = 6371.0

// boxMargin widens bounding boxes so that floating point error never
// excludes a point that lies exactly on the radius.
const boxMargin = 1.05

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Haversine returns the great-circle distance in kilometres.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Box is a latitude/longitude rectangle.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBox returns a rectangle containing every point within radiusKm
// of the center. ok is false when the rectangle would touch a pole or
// cross the antimeridian; callers must then scan without a prefilter.
func BoundingBox(lat, lng, radiusKm float64) (box Box, ok bool) {
	dLat := degrees(radiusKm/EarthRadiusKm) * boxMargin
	if lat-dLat <= -90 || lat+dLat >= 90 {
		return Box{}, false
	}
	cos := math.Cos(radians(math.Abs(lat) + dLat))
	if cos <= 0 {
		return Box{}, false
	}
	dLng := dLat / cos
	if lng-dLng < -180 || lng+dLng > 180 {
		return Box{}, false
	}
	return Box{
		MinLat: lat - dLat, MaxLat: lat + dLat,
		MinLng: lng - dLng, MaxLng: lng + dLng,
	}, true
}

// Hit is an item found within the search radius.
type Hit[T any] struct {
	Item       T
	DistanceKm float64
}

// Within keeps the items whose distance to (lat, lng) is at most
// radiusKm and sorts them nearest first. The sort is stable, so items
// at equal distance keep their input order.
func Within[T any](items []T, lat, lng, radiusKm float64, position func(T) (float64, float64)) []Hit[T] {
	hits := make([]Hit[T], 0)
	for _, it := range items {
		pLat, pLng := position(it)
		d := Haversine(lat, lng, pLat, pLng)
		if d <= radiusKm {
			hits = append(hits, Hit[T]{Item: it, DistanceKm: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].DistanceKm < hits[j].DistanceKm })
	return hits
}
