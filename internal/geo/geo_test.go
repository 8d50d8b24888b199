package geo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type place struct {
	id       int
	lat, lng float64
}

func pos(p place) (float64, float64) { return p.lat, p.lng }

func TestHaversineKnownDistances(t *testing.T) {
	assert.InDelta(t, 0, Haversine(10, 20, 10, 20), 1e-9)
	assert.InDelta(t, 2.2239, Haversine(0, 0, 0, 0.02), 1e-3)
	// Quarter of the equator.
	assert.InDelta(t, 10007.543, Haversine(0, 0, 0, 90), 1e-2)
	// Mexico City to Guadalajara, roughly 460 km.
	assert.InDelta(t, 460, Haversine(19.4326, -99.1332, 20.6597, -103.3496), 10)
}

func TestHaversineSymmetric(t *testing.T) {
	a := Haversine(19.4, -99.1, 19.5, -99.3)
	b := Haversine(19.5, -99.3, 19.4, -99.1)
	assert.InDelta(t, a, b, 1e-12)
}

func TestWithinRadius(t *testing.T) {
	items := []place{{id: 1, lat: 0, lng: 0.02}}

	assert.Empty(t, Within(items, 0, 0, 1, pos))

	hits := Within(items, 0, 0, 5, pos)
	require.Len(t, hits, 1)
	assert.InDelta(t, 2.2239, hits[0].DistanceKm, 1e-3)
}

func TestWithinOrdersByDistanceThenInput(t *testing.T) {
	items := []place{
		{id: 1, lat: 0, lng: 0.03},
		{id: 2, lat: 0, lng: 0.01},
		{id: 3, lat: 0, lng: -0.01},
		{id: 4, lat: 0, lng: 0.5},
	}

	hits := Within(items, 0, 0, 10, pos)
	require.Len(t, hits, 3)
	assert.Equal(t, 2, hits[0].Item.id)
	assert.Equal(t, 3, hits[1].Item.id)
	assert.Equal(t, 1, hits[2].Item.id)
}

func TestBoundingBoxContainsEveryHit(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		lat := r.Float64()*140 - 70
		lng := r.Float64()*340 - 170
		radius := 0.5 + r.Float64()*49.5
		box, ok := BoundingBox(lat, lng, radius)
		if !ok {
			continue
		}
		pLat := lat + (r.Float64()*2-1)*radius/50
		pLng := lng + (r.Float64()*2-1)*radius/20
		if Haversine(lat, lng, pLat, pLng) > radius {
			continue
		}
		assert.True(t, pLat >= box.MinLat && pLat <= box.MaxLat, "lat outside box")
		assert.True(t, pLng >= box.MinLng && pLng <= box.MaxLng, "lng outside box")
	}
}

func TestBoundingBoxRejectsPolesAndAntimeridian(t *testing.T) {
	_, ok := BoundingBox(89.9, 0, 50)
	assert.False(t, ok)
	_, ok = BoundingBox(0, 179.9, 50)
	assert.False(t, ok)
	_, ok = BoundingBox(19.4, -99.1, 50)
	assert.True(t, ok)
}
