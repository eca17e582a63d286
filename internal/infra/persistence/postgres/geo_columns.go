package postgres

import "agriconnect/internal/domain/geo"

// toGeoPoint assembles a domain point from nullable coordinate columns.
// Both columns are written together, a half-set pair means corrupt data and
// maps to an absent location.
func toGeoPoint(latitude, longitude *float64) *geo.Point {
	if latitude == nil || longitude == nil {
		return nil
	}

	return &geo.Point{Latitude: *latitude, Longitude: *longitude}
}

// fromGeoPoint splits a domain point into nullable coordinate columns.
func fromGeoPoint(p *geo.Point) (latitude, longitude *float64) {
	if p == nil {
		return nil, nil
	}

	lat := p.Latitude
	lng := p.Longitude

	return &lat, &lng
}
