package geo

import "slices"

// Gate selects which radius is enforced during a filter pass.
type Gate int

const (
	// GateViewer enforces the viewer's own radius (a buyer's search radius).
	GateViewer Gate = iota
	// GateItem enforces the candidate item's own radius when it carries one
	// (a farmer's delivery radius), falling back to the viewer's radius for
	// items without one.
	GateItem
)

// Item is the subject being filtered: a listing, bid or equipment record.
// Both accessors return nil for "not set"; records without location metadata
// are never excluded by the pipeline.
type Item interface {
	// GeoPoint returns the item's location, or nil if unknown.
	GeoPoint() *Point
	// GeoRadiusKm returns the item's own service radius in km, or nil.
	GeoRadiusKm() *float64
}

// Reference is the viewer's side of a filter pass: an optional center and a
// radius. A nil center means the viewer has not configured a location.
type Reference struct {
	Center   *Point
	RadiusKm float64
}

// Result is a surviving item annotated with its distance from the reference
// center, rounded to one decimal. DistanceKm is nil when either side has no
// coordinates. The annotation is transient and recomputed per query.
type Result[T Item] struct {
	Item       T
	DistanceKm *float64
}

// Filter produces the subset of items in range of ref, annotated with
// distance and sorted nearest first. It is a pure transformation: the input
// slice is not mutated and running it twice yields the same output.
//
// Policy decisions, distinct from the strict mechanism in InRange:
//   - an unset reference center is permissive: every item passes, unfiltered,
//     with a nil distance, rather than hiding the whole marketplace from a
//     viewer who has not set up a location yet;
//   - an item without coordinates is included with a nil distance, so one bad
//     record never blacks out a results list;
//   - the boundary is inclusive, and with GateItem the item's own radius
//     gates inclusion, falling back to ref.RadiusKm when the item has none.
//
// Sorting is stable: items with nil distance go last, keeping their relative
// input order.
func Filter[T Item](items []T, ref Reference, gate Gate) []Result[T] {
	results := make([]Result[T], 0, len(items))

	if ref.Center == nil {
		for _, item := range items {
			results = append(results, Result[T]{Item: item})
		}

		return results
	}

	for _, item := range items {
		point := item.GeoPoint()
		if point == nil {
			results = append(results, Result[T]{Item: item})

			continue
		}

		distance, err := Distance(*ref.Center, *point)
		if err != nil {
			// Malformed coordinates degrade to "included, unknown distance".
			results = append(results, Result[T]{Item: item})

			continue
		}

		rounded := RoundKm(distance)

		effectiveRadius := ref.RadiusKm
		if gate == GateItem {
			if itemRadius := item.GeoRadiusKm(); itemRadius != nil {
				effectiveRadius = *itemRadius
			}
		}

		if rounded > effectiveRadius {
			continue
		}

		results = append(results, Result[T]{Item: item, DistanceKm: &rounded})
	}

	slices.SortStableFunc(results, func(a, b Result[T]) int {
		switch {
		case a.DistanceKm == nil && b.DistanceKm == nil:
			return 0
		case a.DistanceKm == nil:
			return 1
		case b.DistanceKm == nil:
			return -1
		case *a.DistanceKm < *b.DistanceKm:
			return -1
		case *a.DistanceKm > *b.DistanceKm:
			return 1
		default:
			return 0
		}
	})

	return results
}
