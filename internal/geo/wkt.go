package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// PointWKT renders a point as WKT, matching the "POINT(lon lat)" convention
// used elsewhere in the reference pack (WKT is always lng/lat ordered).
func PointWKT(p Point) string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// ParsePolygon parses a minimal "POLYGON((lng lat, lng lat, ...))" WKT
// string into a Polygon. Only single-ring polygons are supported; this
// is sufficient for the zone shapes the backend serves.
func ParsePolygon(wkt string) (Polygon, error) {
	s := strings.TrimSpace(wkt)
	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, "POLYGON") {
		return Polygon{}, fmt.Errorf("geo: not a POLYGON WKT string")
	}

	open := strings.IndexByte(s, '(')
	close := strings.LastIndexByte(s, ')')
	if open < 0 || close < 0 || close <= open {
		return Polygon{}, fmt.Errorf("geo: malformed POLYGON WKT string")
	}
	inner := s[open+1 : close]

	inner = strings.TrimSpace(inner)
	inner = strings.TrimPrefix(inner, "(")
	inner = strings.TrimSuffix(inner, ")")

	coordPairs := strings.Split(inner, ",")
	if len(coordPairs) < 3 {
		return Polygon{}, fmt.Errorf("geo: polygon needs at least 3 vertices, got %d", len(coordPairs))
	}

	vertices := make([]Point, 0, len(coordPairs))
	for _, pair := range coordPairs {
		pt, err := parseLngLat(pair)
		if err != nil {
			return Polygon{}, fmt.Errorf("geo: invalid vertex %q: %w", pair, err)
		}
		vertices = append(vertices, pt)
	}

	return Polygon{Vertices: vertices}, nil
}

func parseLngLat(pair string) (Point, error) {
	fields := strings.Fields(strings.TrimSpace(pair))
	if len(fields) < 2 {
		return Point{}, fmt.Errorf("expected 'lng lat', got %q", pair)
	}
	lng, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Point{}, err
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Point{}, err
	}
	return Point{Lat: lat, Lng: lng}, nil
}

// Valid reports whether the polygon has enough vertices to be a real ring.
func (poly Polygon) Valid() bool {
	return len(poly.Vertices) >= 3
}

// Centroid returns the arithmetic mean of the polygon's vertices. This is a
// simple vertex-average centroid (not an area-weighted one), adequate for
// the roughly-convex, roughly-regular zone shapes this simulator deals with.
func (poly Polygon) Centroid() Point {
	if len(poly.Vertices) == 0 {
		return Point{}
	}
	var sumLat, sumLng float64
	for _, v := range poly.Vertices {
		sumLat += v.Lat
		sumLng += v.Lng
	}
	n := float64(len(poly.Vertices))
	return Point{Lat: sumLat / n, Lng: sumLng / n}
}
