package sim

import (
	"time"

	"github.com/ukydev/scooter-fleet-sim/internal/geo"
	"github.com/ukydev/scooter-fleet-sim/internal/scooterent"
	"github.com/ukydev/scooter-fleet-sim/internal/zonemodel"
)

// ScooterContext is the read-only view and callback surface a Scenario gets
// when evaluated, scoped to the one scooter it was registered against.
type ScooterContext struct {
	TripCounter int
	City        *zonemodel.City
	Now         time.Time

	// ForceCompleteRental force-completes any active sim-owned rental for
	// this scooter at its current position, returning its user to the pool.
	ForceCompleteRental func(endZone string)
}

// Scenario is an optional, per-scooter movement-override hook, evaluated
// once per tick after the scooter's regular tick body (movement, zone
// policy, battery, rental lifecycle) has already run. Returning ok=true
// means the scenario takes over movement permanently from this tick
// forward: Simulator remembers and replays override on every subsequent
// tick (lock override > scenario override > route integrator > stand
// still). An admin "available" update clears the lock sets but not an
// engaged scenario override.
//
// First-match-wins: once a Scenario has engaged for a scooter, it is never
// evaluated again for that scooter.
type Scenario interface {
	Evaluate(s *scooterent.Scooter, sc *ScooterContext) (override MovementUpdate, ok bool)
}

// ParkInNearestChargingZone parks a scooter at the centroid of its nearest
// charging zone once it has completed RequiredTrips trips, pinning it there
// and marking it as charging. The original picks the first registered
// charging zone rather than the nearest one; nearest-by-distance is a minor
// generalization since a city may register more than one charging zone.
type ParkInNearestChargingZone struct {
	RequiredTrips int
}

func (p ParkInNearestChargingZone) Evaluate(s *scooterent.Scooter, sc *ScooterContext) (MovementUpdate, bool) {
	if sc.TripCounter < p.RequiredTrips {
		return MovementUpdate{}, false
	}
	target, ok := nearestCentroid(geo.Point{Lat: s.Lat, Lng: s.Lng}, sc.City.ChargingPolygons())
	if !ok {
		return MovementUpdate{}, false
	}
	sc.ForceCompleteRental("charging")
	return MovementUpdate{
		Lat:      target.Lat,
		Lng:      target.Lng,
		SpeedKmh: 0,
		Activity: string(scooterent.StatusCharging),
	}, true
}

// ParkInNearestParkingZone is the parking-zone counterpart of
// ParkInNearestChargingZone: it parks the scooter as idle rather than
// charging.
type ParkInNearestParkingZone struct {
	RequiredTrips int
}

func (p ParkInNearestParkingZone) Evaluate(s *scooterent.Scooter, sc *ScooterContext) (MovementUpdate, bool) {
	if sc.TripCounter < p.RequiredTrips {
		return MovementUpdate{}, false
	}
	target, ok := nearestCentroid(geo.Point{Lat: s.Lat, Lng: s.Lng}, sc.City.ParkingPolygons())
	if !ok {
		return MovementUpdate{}, false
	}
	sc.ForceCompleteRental("parking")
	return MovementUpdate{
		Lat:      target.Lat,
		Lng:      target.Lng,
		SpeedKmh: 0,
		Activity: string(scooterent.StatusIdle),
	}, true
}

// BreakdownAfterDuration forces a scooter into needService, permanently,
// MaxRuntimeSeconds after the scenario is constructed. It pins the scooter
// through the scenario override, not through an admin lock, and there is
// no automatic recovery.
type BreakdownAfterDuration struct {
	MaxRuntimeSeconds float64
	startedAt         time.Time
}

// NewBreakdownAfterDuration starts the clock at construction time.
func NewBreakdownAfterDuration(maxRuntimeSeconds float64, now time.Time) *BreakdownAfterDuration {
	return &BreakdownAfterDuration{MaxRuntimeSeconds: maxRuntimeSeconds, startedAt: now}
}

func (b *BreakdownAfterDuration) Evaluate(s *scooterent.Scooter, sc *ScooterContext) (MovementUpdate, bool) {
	if sc.Now.Sub(b.startedAt).Seconds() < b.MaxRuntimeSeconds {
		return MovementUpdate{}, false
	}
	sc.ForceCompleteRental("admin_forced")
	return MovementUpdate{
		Lat:      s.Lat,
		Lng:      s.Lng,
		SpeedKmh: 0,
		Activity: string(scooterent.StatusNeedService),
	}, true
}

func nearestCentroid(from geo.Point, polys []geo.Polygon) (geo.Point, bool) {
	if len(polys) == 0 {
		return geo.Point{}, false
	}
	best := polys[0].Centroid()
	bestDist := geo.DistanceM(from, best)
	for _, poly := range polys[1:] {
		c := poly.Centroid()
		if d := geo.DistanceM(from, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, true
}
