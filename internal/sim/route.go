package sim

import (
	"math"

	"github.com/ukydev/scooter-fleet-sim/internal/geo"
	"github.com/ukydev/scooter-fleet-sim/internal/scooterent"
)

// integrateRoute implements the route integrator (§4.8): constant-speed
// waypoint following with cornering slowdown.
func (s *Simulator) integrateRoute(scooter *scooterent.Scooter, st *scooterState, route Route) MovementUpdate {
	current := geo.Point{Lat: scooter.Lat, Lng: scooter.Lng}
	target := route[st.nextWaypointIndex]

	distance := geo.DistanceM(current, target)
	step := s.nominalMaxSpeedMPS * s.updateInterval.Seconds()

	var newPos geo.Point
	var routeFinished bool
	if distance <= step {
		newPos = target
		st.nextWaypointIndex++
		if st.nextWaypointIndex >= len(route) {
			routeFinished = true
			st.nextWaypointIndex = 0
		}
	} else {
		newPos = geo.Lerp(current, target, step/distance)
	}

	traveled := geo.DistanceM(current, newPos)
	rawSpeedKmh := traveled / s.updateInterval.Seconds() * 3.6

	heading := math.Atan2(newPos.Lng-current.Lng, newPos.Lat-current.Lat)
	if st.hasLastTravelDir {
		delta := math.Abs(heading - st.lastTravelDirection)
		delta = math.Min(delta, math.Abs(2*math.Pi-delta))
		slowdown := 1 - math.Min(delta/math.Pi, 0.4)
		rawSpeedKmh *= slowdown
	}
	st.lastTravelDirection = heading
	st.hasLastTravelDir = true

	finalSpeed := math.Round(rawSpeedKmh*100) / 100

	activity := string(scooterent.StatusIdle)
	if finalSpeed > 0 {
		activity = string(scooterent.StatusActive)
	}

	return MovementUpdate{
		Lat:           newPos.Lat,
		Lng:           newPos.Lng,
		SpeedKmh:      finalSpeed,
		Activity:      activity,
		RouteFinished: routeFinished,
	}
}
