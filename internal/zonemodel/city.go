// Package zonemodel classifies scooter positions into geofenced zone types
// and enforces per-type speed limits, following the original City class.
package zonemodel

import (
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-fleet-sim/internal/geo"
)

// ZoneType is one of the five classification outcomes.
type ZoneType string

const (
	ZoneCharging    ZoneType = "charging"
	ZoneParking     ZoneType = "parking"
	ZoneFree        ZoneType = "free"
	ZoneSlow        ZoneType = "slow"
	ZoneOutOfBounds ZoneType = "outofbounds"
)

// zoneKey values match the raw zone_type strings served by the backend,
// distinct from the classification outcome ("city" raw zone -> "free" result).
const (
	rawCity     = "city"
	rawSlow     = "slow"
	rawParking  = "parking"
	rawCharging = "charging"
)

// defaultSpeedLimitKmh is used for speed-limited zones with no explicit
// per-type limit stored.
const defaultSpeedLimitKmh = 5.0

// ZoneInput is one raw zone record as served by GET /cities/{name}/zones.
type ZoneInput struct {
	ZoneType       string
	CoordinatesWKT string
	SpeedLimitKmh  *float64
}

// City holds a city's typed zone polygons and per-type speed limits, and
// classifies scooter positions against them.
type City struct {
	Name        string
	zones       map[string][]geo.Polygon
	speedLimits map[string]float64
}

// FromZones builds a City from raw zone records, skipping invalid or empty
// polygons with a warning rather than failing the whole load.
func FromZones(name string, inputs []ZoneInput) *City {
	c := &City{
		Name: name,
		zones: map[string][]geo.Polygon{
			rawCity:     {},
			rawSlow:     {},
			rawParking:  {},
			rawCharging: {},
		},
		speedLimits: map[string]float64{},
	}

	for _, z := range inputs {
		zoneType := z.ZoneType
		if _, known := c.zones[zoneType]; !known {
			continue
		}

		poly, err := geo.ParsePolygon(z.CoordinatesWKT)
		if err != nil {
			log.WithFields(log.Fields{"city": name, "zone_type": zoneType, "error": err}).
				Warn("skipping invalid WKT for zone")
			continue
		}
		if !poly.Valid() {
			log.WithFields(log.Fields{"city": name, "zone_type": zoneType}).
				Warn("skipping empty polygon for zone")
			continue
		}

		c.zones[zoneType] = append(c.zones[zoneType], poly)

		if z.SpeedLimitKmh != nil {
			c.speedLimits[zoneType] = *z.SpeedLimitKmh
		}
	}

	return c
}

// IsInside reports whether (lat, lng) falls inside (or on the boundary of)
// any polygon of the given raw zone type.
func (c *City) IsInside(lat, lng float64, zoneType string) bool {
	polys, ok := c.zones[zoneType]
	if !ok {
		return false
	}
	p := geo.Point{Lat: lat, Lng: lng}
	for _, poly := range polys {
		if poly.Contains(p) {
			return true
		}
	}
	return false
}

// ClassifyZone classifies a position using the fixed priority
// charging > parking > free (city) > slow > outofbounds.
//
// This priority places "free" above "slow", so a point inside both the
// city polygon and a slow polygon resolves as free — contradicting the
// evident intent of slow zones being enforceable inside city bounds.
// Preserved as-is per the spec's explicit instruction; flagged here for
// product review rather than silently "fixed".
func (c *City) ClassifyZone(lat, lng float64) ZoneType {
	if c.IsInside(lat, lng, rawCharging) {
		return ZoneCharging
	}
	if c.IsInside(lat, lng, rawParking) {
		return ZoneParking
	}
	if c.IsInside(lat, lng, rawCity) {
		return ZoneFree
	}
	if c.IsInside(lat, lng, rawSlow) {
		return ZoneSlow
	}
	return ZoneOutOfBounds
}

// IsInCityBoundary reports whether the point is within the city's overall
// boundary polygon.
func (c *City) IsInCityBoundary(lat, lng float64) bool {
	return c.IsInside(lat, lng, rawCity)
}

// SpeedLimit returns the configured speed limit for a zone's raw type, if
// one was provided in the source data.
func (c *City) SpeedLimit(zoneType string) (float64, bool) {
	limit, ok := c.speedLimits[zoneType]
	return limit, ok
}

// SpeedLimitOrDefault mirrors the simulator's own fallback: zones that cap
// speed but have no explicit limit use defaultSpeedLimitKmh.
func (c *City) SpeedLimitOrDefault(zoneType string) float64 {
	if limit, ok := c.speedLimits[zoneType]; ok {
		return limit
	}
	return defaultSpeedLimitKmh
}

// ChargingPolygons exposes the raw charging zone polygons, used by scenario
// hooks that park a scooter at the nearest/first charging zone centroid.
func (c *City) ChargingPolygons() []geo.Polygon {
	return c.zones[rawCharging]
}

// ParkingPolygons exposes the raw parking zone polygons, for the same
// reason as ChargingPolygons.
func (c *City) ParkingPolygons() []geo.Polygon {
	return c.zones[rawParking]
}
