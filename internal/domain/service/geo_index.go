package service

import (
	"agriconnect/internal/domain/geo"

	"github.com/google/uuid"
)

// GeoIndex is a coarse spatial index over item locations. It answers "which
// items could possibly be within this radius" cheaply; callers still run the
// exact distance check on the candidates it returns.
type GeoIndex interface {
	// Insert adds or moves an item's indexed position.
	Insert(id uuid.UUID, p geo.Point)

	// Remove drops an item from the index. Unknown IDs are a no-op.
	Remove(id uuid.UUID)

	// Contains reports whether an item is currently indexed. Callers use it
	// to tell "out of range" apart from "never indexed": only the former may
	// be trimmed from candidate lists.
	Contains(id uuid.UUID) bool

	// Within returns the IDs of items whose indexed position falls within
	// radiusKm of center, using the same rounded-distance boundary the
	// filter pipeline applies.
	Within(center geo.Point, radiusKm float64) []uuid.UUID
}
