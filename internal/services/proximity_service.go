package services

import (
	"context"
	"math"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/config"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/geo"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/models"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/store"
)

type NearbyReport struct {
	Report     models.Report
	DistanceKm float64
}

type ProximityService struct {
	store     store.Store
	maxRadius float64
}

// NewProximityService limits searches to maxRadiusKm, which is itself
// clamped to config.MaxNearbyRadiusKm.
func NewProximityService(st store.Store, maxRadiusKm float64) *ProximityService {
	if !(maxRadiusKm > 0) || maxRadiusKm > config.MaxNearbyRadiusKm {
		maxRadiusKm = config.MaxNearbyRadiusKm
	}
	return &ProximityService{store: st, maxRadius: maxRadiusKm}
}

// FindNearby returns reports within radiusKm of the point, nearest first;
// reports at the same distance are ordered by id.
func (s *ProximityService) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]NearbyReport, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	if math.IsNaN(radiusKm) || radiusKm <= 0 || radiusKm > s.maxRadius {
		return nil, validationError("radius must be greater than 0 and at most %g km", s.maxRadius)
	}

	filter := store.ReportFilter{ByID: true}
	if box, ok := geo.BoundingBox(lat, lng, radiusKm); ok {
		filter.Bounds = &store.Bounds{
			MinLat: box.MinLat, MaxLat: box.MaxLat,
			MinLng: box.MinLng, MaxLng: box.MaxLng,
		}
	}
	candidates, err := s.store.Reports().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	hits := geo.Within(candidates, lat, lng, radiusKm, func(r models.Report) (float64, float64) {
		return r.Latitude, r.Longitude
	})
	out := make([]NearbyReport, len(hits))
	for i, h := range hits {
		out[i] = NearbyReport{Report: h.Item, DistanceKm: h.DistanceKm}
	}
	return out, nil
}
