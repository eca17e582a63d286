// Package geoindex provides an in-memory R-tree over equipment locations so
// radius searches prune candidates before the exact distance check runs.
package geoindex

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"agriconnect/internal/domain/geo"
	"agriconnect/internal/domain/repository"
	"agriconnect/internal/domain/service"
	"agriconnect/internal/util"

	"github.com/dhconnelly/rtreego"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	tolerance   = 0.01
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	earthRadius = 6371.0
)

// spatialItem wraps an indexed entry for R-tree storage
type spatialItem struct {
	id    uuid.UUID
	point geo.Point
	rect  *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// rtreeIndex is a thread-safe R-tree based implementation of GeoIndex.
// Remove needs the original Spatial value, so items are tracked by ID.
type rtreeIndex struct {
	mu    sync.RWMutex
	tree  *rtreego.Rtree
	items map[uuid.UUID]*spatialItem
}

// NewRTreeIndex creates an empty spatial index
func NewRTreeIndex() service.GeoIndex {
	return &rtreeIndex{
		tree:  rtreego.NewTree(dimensions, minChildren, maxChildren),
		items: make(map[uuid.UUID]*spatialItem),
	}
}

func (idx *rtreeIndex) Insert(id uuid.UUID, p geo.Point) {
	rect := rtreego.Point{p.Latitude, p.Longitude}.ToRect(tolerance)
	item := &spatialItem{id: id, point: p, rect: rect}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if existing, ok := idx.items[id]; ok {
		idx.tree.Delete(existing)
	}
	idx.tree.Insert(item)
	idx.items[id] = item
}

func (idx *rtreeIndex) Remove(id uuid.UUID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	item, ok := idx.items[id]
	if !ok {
		return
	}
	idx.tree.Delete(item)
	delete(idx.items, id)
}

func (idx *rtreeIndex) Contains(id uuid.UUID) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	_, ok := idx.items[id]

	return ok
}

func (idx *rtreeIndex) Within(center geo.Point, radiusKm float64) []uuid.UUID {
	if radiusKm <= 0 || math.IsNaN(radiusKm) {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := idx.tree.SearchIntersect(boundingBox(center, radiusKm))

	ids := make([]uuid.UUID, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialItem)
		if !ok {
			continue
		}
		// The box over-approximates the circle; confirm with the same
		// rounded-distance boundary the filter pipeline gates on, so the
		// prefilter never cuts an item the pipeline would keep.
		dist, err := geo.Distance(center, item.point)
		if err != nil || geo.RoundKm(dist) > radiusKm {
			continue
		}
		ids = append(ids, item.id)
	}

	return ids
}

// boundingBox converts a radius in km to a degree-sized search rectangle.
// An infinite radius degrades to a whole-planet box.
func boundingBox(center geo.Point, radiusKm float64) *rtreego.Rect {
	deg := (radiusKm / earthRadius) * (180 / math.Pi)
	if math.IsInf(radiusKm, 1) || deg >= 180 {
		rect, _ := rtreego.NewRect(rtreego.Point{-90, -180}, []float64{180, 360})

		return rect
	}

	// Longitude degrees shrink with latitude, widen the box accordingly
	lonDeg := deg
	if cosLat := math.Cos(center.Latitude * math.Pi / 180); cosLat > 0.01 {
		lonDeg = deg / cosLat
	} else {
		lonDeg = 180
	}

	latLow := math.Max(center.Latitude-deg, -90)
	latHigh := math.Min(center.Latitude+deg, 90)
	lonLow := math.Max(center.Longitude-lonDeg, -180)
	lonHigh := math.Min(center.Longitude+lonDeg, 180)

	rect, err := rtreego.NewRect(
		rtreego.Point{latLow, lonLow},
		[]float64{latHigh - latLow, lonHigh - lonLow},
	)
	if err != nil {
		rect, _ = rtreego.NewRect(rtreego.Point{-90, -180}, []float64{180, 360})
	}

	return rect
}

// GeoIndexParams holds dependencies for GeoIndex, injected by Fx
type GeoIndexParams struct {
	fx.In

	Lc            fx.Lifecycle
	EquipmentRepo repository.EquipmentRepository
	Logger        *slog.Logger
}

// NewGeoIndex creates the index and rebuilds it from stored equipment on startup
func NewGeoIndex(params GeoIndexParams) service.GeoIndex {
	index := NewRTreeIndex()

	params.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			start := time.Now()
			items, err := params.EquipmentRepo.Find(ctx, repository.EquipmentQuery{})
			if err != nil {
				return errors.Wrap(err, "failed to rebuild spatial index")
			}

			indexed := 0
			for _, item := range items {
				if item.Location == nil {
					continue
				}
				index.Insert(item.ID, *item.Location)
				indexed++
			}

			params.Logger.Info("Spatial index rebuilt",
				slog.Int("equipment_total", len(items)),
				slog.Int("equipment_indexed", indexed),
				slog.String("elapsed", util.FormatDuration(time.Since(start))),
			)

			return nil
		},
	})

	return index
}

// Module provides the spatial index FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewGeoIndex),
)
