package geoindex

import (
	"testing"

	"agriconnect/internal/domain/geo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	indexMumbai = geo.Point{Latitude: 19.0760, Longitude: 72.8777}
	indexThane  = geo.Point{Latitude: 19.2183, Longitude: 72.9781}
	indexPune   = geo.Point{Latitude: 18.5204, Longitude: 73.8567}
)

func TestRTreeIndex_WithinReturnsOnlyNearbyItems(t *testing.T) {
	index := NewRTreeIndex()

	thaneID := uuid.New()
	puneID := uuid.New()
	index.Insert(thaneID, indexThane)
	index.Insert(puneID, indexPune)

	// Thane is about 19 km from Mumbai, Pune about 120 km
	ids := index.Within(indexMumbai, 50)
	require.Len(t, ids, 1)
	assert.Equal(t, thaneID, ids[0])

	ids = index.Within(indexMumbai, 150)
	assert.Len(t, ids, 2)
}

func TestRTreeIndex_RemoveDropsItem(t *testing.T) {
	index := NewRTreeIndex()

	id := uuid.New()
	index.Insert(id, indexThane)
	require.Len(t, index.Within(indexMumbai, 50), 1)

	index.Remove(id)
	assert.Empty(t, index.Within(indexMumbai, 50))

	// Removing an unknown ID is a no-op
	index.Remove(uuid.New())
}

func TestRTreeIndex_InsertReplacesExistingEntry(t *testing.T) {
	index := NewRTreeIndex()

	id := uuid.New()
	index.Insert(id, indexThane)
	index.Insert(id, indexPune)

	assert.Empty(t, index.Within(indexMumbai, 50))

	ids := index.Within(indexPune, 10)
	require.Len(t, ids, 1)
	assert.Equal(t, id, ids[0])
}

func TestRTreeIndex_WithinInvalidRadius(t *testing.T) {
	index := NewRTreeIndex()
	index.Insert(uuid.New(), indexMumbai)

	assert.Nil(t, index.Within(indexMumbai, 0))
	assert.Nil(t, index.Within(indexMumbai, -5))
}

func TestRTreeIndex_WithinRoundsLikeTheFilter(t *testing.T) {
	index := NewRTreeIndex()

	// 0.45 degrees of latitude is about 50.04 km raw, 50.0 km rounded. The
	// confirmation step must apply the same one-decimal rounding the filter
	// pipeline gates on, so this item stays inside a 50 km radius.
	center := geo.Point{Latitude: 0, Longitude: 0}
	margin := geo.Point{Latitude: 0.45, Longitude: 0}

	raw, err := geo.Distance(center, margin)
	require.NoError(t, err)
	require.Greater(t, raw, 50.0)
	require.InDelta(t, 50.0, geo.RoundKm(raw), 0.001)

	id := uuid.New()
	index.Insert(id, margin)

	ids := index.Within(center, 50)
	require.Len(t, ids, 1)
	assert.Equal(t, id, ids[0])
}

func TestRTreeIndex_Contains(t *testing.T) {
	index := NewRTreeIndex()

	id := uuid.New()
	assert.False(t, index.Contains(id))

	index.Insert(id, indexThane)
	assert.True(t, index.Contains(id))

	index.Remove(id)
	assert.False(t, index.Contains(id))
}

func TestRTreeIndex_BoundaryDistanceIncluded(t *testing.T) {
	index := NewRTreeIndex()

	id := uuid.New()
	index.Insert(id, indexThane)

	dist, err := geo.Distance(indexMumbai, indexThane)
	require.NoError(t, err)

	ids := index.Within(indexMumbai, dist)
	require.Len(t, ids, 1)
	assert.Equal(t, id, ids[0])
}
