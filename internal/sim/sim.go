// Package sim holds the simulator core: the tick scheduler, movement
// resolution, lock-set policy, zone enforcement, charging-status
// memoization, and sim-owned rental lifecycle. It is the single writer of
// all per-scooter state; the only cross-thread surfaces it exposes are the
// two intake queues it drains at the start of every tick.
package sim

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-fleet-sim/internal/events"
	"github.com/ukydev/scooter-fleet-sim/internal/geo"
	"github.com/ukydev/scooter-fleet-sim/internal/rentalapi"
	"github.com/ukydev/scooter-fleet-sim/internal/scooterent"
	"github.com/ukydev/scooter-fleet-sim/internal/telemetry"
	"github.com/ukydev/scooter-fleet-sim/internal/users"
	"github.com/ukydev/scooter-fleet-sim/internal/zonemodel"
)

// Route is a named, ordered polyline the route integrator walks.
type Route []geo.Point

// MovementUpdate is the shared shape every movement source (lock override,
// scenario override, route integrator, stand-still) returns.
type MovementUpdate struct {
	Lat           float64
	Lng           float64
	SpeedKmh      float64
	Activity      string
	RouteFinished bool
}

// RentalAPI is the subset of rentalapi.Client the simulator core depends
// on, so tests can supply a hand-written fake instead of an HTTP server.
type RentalAPI interface {
	CreateRental(ctx context.Context, customerID, bikeID int, start rentalapi.Point, startZone string) *rentalapi.CreatedRental
	CompleteRental(ctx context.Context, rentalID string, end rentalapi.Point, endZone string, route []rentalapi.RentalCoord) bool
	UpdateBikeStatusAndPosition(ctx context.Context, bikeID int, status string, lat, lng float64) bool
}

type rentalState struct {
	active    bool
	rentalID  string
	userID    *int
	userName  *string
	startZone string
	endZone   string
}

type externalRentalState struct {
	active   bool
	rentalID string
	userID   *int
	userName *string
}

type scooterState struct {
	tripCounter         int
	nextWaypointIndex   int
	lastPosition        geo.Point
	lastTravelDirection float64
	hasLastTravelDir    bool

	sim      rentalState
	external externalRentalState

	scenarioEngaged  bool
	scenarioOverride MovementUpdate
}

// Params configures a Simulator. City, Bus, API, and Pool are required
// collaborators; everything else has the original's documented defaults
// available via config.Config.
type Params struct {
	City *zonemodel.City
	Bus  *telemetry.Emitter
	API  RentalAPI
	Pool *users.Pool

	Thresholds          scooterent.Thresholds
	UpdateInterval      time.Duration
	NominalMaxSpeedMPS  float64
	LowBatteryThreshold float64

	AdminQueue  *events.AdminQueue
	RentalQueue *events.RentalEventQueue
}

// Simulator is the tick-driven core. All exported mutation happens either
// through AddScooter/SetScenario (setup time) or EnqueueAdminUpdate/
// EnqueueRentalEvent (thread-safe, any time) and Tick (single writer).
type Simulator struct {
	city *zonemodel.City
	bus  *telemetry.Emitter
	api  RentalAPI
	pool *users.Pool

	th                  scooterent.Thresholds
	updateInterval      time.Duration
	nominalMaxSpeedMPS  float64
	lowBatteryThreshold float64

	scooters       map[int]*scooterent.Scooter
	order          []int
	routes         map[string]Route
	scooterToRoute map[int]string
	state          map[int]*scooterState
	scenarios      map[int]Scenario

	adminLocked        map[int]bool
	batteryLocked      map[int]bool
	outofboundsLocked  map[int]bool
	deactivated        map[int]bool
	pendingBatteryLock map[int]bool
	lockActivity       map[int]string
	lastChargingStatus map[int]string

	adminQueue  *events.AdminQueue
	rentalQueue *events.RentalEventQueue
}

// New builds an empty Simulator. Scooters and routes are added afterward
// via AddScooter, matching the original's pattern of constructing the
// simulator once and seeding its fleet from entry-point code.
func New(p Params) *Simulator {
	return &Simulator{
		city: p.City,
		bus:  p.Bus,
		api:  p.API,
		pool: p.Pool,

		th:                  p.Thresholds,
		updateInterval:      p.UpdateInterval,
		nominalMaxSpeedMPS:  p.NominalMaxSpeedMPS,
		lowBatteryThreshold: p.LowBatteryThreshold,

		scooters:       map[int]*scooterent.Scooter{},
		routes:         map[string]Route{},
		scooterToRoute: map[int]string{},
		state:          map[int]*scooterState{},
		scenarios:      map[int]Scenario{},

		adminLocked:        map[int]bool{},
		batteryLocked:      map[int]bool{},
		outofboundsLocked:  map[int]bool{},
		deactivated:        map[int]bool{},
		pendingBatteryLock: map[int]bool{},
		lockActivity:       map[int]string{},
		lastChargingStatus: map[int]string{},

		adminQueue:  p.AdminQueue,
		rentalQueue: p.RentalQueue,
	}
}

// AddScooter registers a scooter, optionally bound to a named route. A
// scooter with no route (or an unknown routeID) stands still forever
// unless a Scenario or lock later overrides its movement.
func (s *Simulator) AddScooter(scooter *scooterent.Scooter, routeID string, route Route) {
	s.scooters[scooter.ID] = scooter
	s.order = append(s.order, scooter.ID)
	s.state[scooter.ID] = &scooterState{
		lastPosition: geo.Point{Lat: scooter.Lat, Lng: scooter.Lng},
		sim:          rentalState{startZone: string(zonemodel.ZoneFree), endZone: string(zonemodel.ZoneFree)},
	}
	if routeID != "" && len(route) > 0 {
		s.routes[routeID] = route
		s.scooterToRoute[scooter.ID] = routeID
	}
}

// SetScenario registers a per-scooter scenario hook. Passing nil clears it.
func (s *Simulator) SetScenario(scooterID int, scenario Scenario) {
	if scenario == nil {
		delete(s.scenarios, scooterID)
		return
	}
	s.scenarios[scooterID] = scenario
}

// EnqueueAdminUpdate is the thread-safe entry point for the admin status
// subscriber.
func (s *Simulator) EnqueueAdminUpdate(scooterID int, newStatus string) {
	s.adminQueue.Enqueue(scooterID, newStatus, time.Now())
}

// EnqueueRentalEvent is the thread-safe entry point for the rental
// lifecycle event subscriber.
func (s *Simulator) EnqueueRentalEvent(e events.RentalEvent) {
	s.rentalQueue.Enqueue(e)
}

// Tick advances every scooter by one UPDATE_INTERVAL, having first drained
// both intake queues (admin before rental events, per spec).
func (s *Simulator) Tick(ctx context.Context) {
	s.drainAdmin(ctx)
	s.drainRentalEvents(ctx)

	for _, id := range s.order {
		s.tickScooter(ctx, id)
	}
}

func (s *Simulator) tickScooter(ctx context.Context, id int) {
	scooter := s.scooters[id]
	st := s.state[id]
	prevPos := st.lastPosition
	elapsed := s.updateInterval.Seconds()

	if scooter.Battery < s.lowBatteryThreshold && !s.deactivated[id] {
		if st.sim.active || st.external.active || scooter.Status == scooterent.StatusActive {
			s.pendingBatteryLock[id] = true
		} else {
			s.applyBatteryLock(ctx, scooter)
		}
	}

	if st.external.active && st.external.rentalID != "" {
		inChg := s.isInChargingZone(scooter)
		s.syncChargingStatus(ctx, scooter, inChg)
		scooter.Tick(string(scooterent.StatusActive), 0, inChg, elapsed, s.th)
		s.bus.LogCoord(ctx, st.external.rentalID, scooter.Lat, scooter.Lng, scooter.SpeedKmh)
		st.lastPosition = geo.Point{Lat: scooter.Lat, Lng: scooter.Lng}
		s.publishState(ctx, scooter, inChg)
		return
	}

	var route Route
	if st.sim.active {
		if routeID, ok := s.scooterToRoute[id]; ok {
			route = s.routeForTrip(routeID, st.tripCounter)
		}
	}

	mv := s.resolveMovement(scooter, st, route)

	scooter.Lat = mv.Lat
	scooter.Lng = mv.Lng

	zone := s.city.ClassifyZone(scooter.Lat, scooter.Lng)

	if zone == zonemodel.ZoneOutOfBounds {
		scooter.Status = scooterent.StatusDeactivated
		if !s.outofboundsLocked[id] {
			s.updateBikeStatusPositionDBFirst(ctx, scooter, string(scooterent.StatusDeactivated))
		}
		if !s.deactivated[id] {
			s.lockActivity[id] = string(scooterent.StatusDeactivated)
			s.deactivated[id] = true
			s.outofboundsLocked[id] = true
			log.WithField("scooter_id", id).Info("sim: scooter permanently deactivated, out of bounds")
			if st.sim.active {
				s.forceCompleteRental(ctx, scooter, st, "outofbounds")
			}
		} else {
			s.outofboundsLocked[id] = true
		}
	}

	if s.deactivated[id] {
		mv = s.lockOverride(scooter, id)
	}

	intended := mv.SpeedKmh
	finalSpeed := intended
	switch zone {
	case zonemodel.ZoneSlow, zonemodel.ZoneParking, zonemodel.ZoneCharging:
		finalSpeed = math.Min(intended, s.city.SpeedLimitOrDefault(string(zone)))
	}

	var activity string
	if zone == zonemodel.ZoneSlow {
		scooter.Status = scooterent.StatusReduced
		activity = string(scooterent.StatusReduced)
	} else {
		activity = mv.Activity
		if activity == "" {
			activity = string(scooterent.StatusIdle)
		}
	}

	inChg := s.isInChargingZone(scooter)
	s.syncChargingStatus(ctx, scooter, inChg)

	scooter.Tick(activity, finalSpeed, inChg, elapsed, s.th)

	s.handleRentalTick(ctx, scooter, st, prevPos, mv.RouteFinished)

	if scenario, ok := s.scenarios[id]; ok && !st.scenarioEngaged {
		sc := &ScooterContext{
			TripCounter: st.tripCounter,
			City:        s.city,
			Now:         time.Now(),
			ForceCompleteRental: func(endZone string) {
				s.forceCompleteRental(ctx, scooter, st, endZone)
			},
		}
		if override, ok := scenario.Evaluate(scooter, sc); ok {
			st.scenarioEngaged = true
			st.scenarioOverride = override
		}
	}

	st.lastPosition = geo.Point{Lat: scooter.Lat, Lng: scooter.Lng}
	s.publishState(ctx, scooter, inChg)
}

// resolveMovement implements the precedence design note: lock override >
// scenario override > route integrator > stand still.
func (s *Simulator) resolveMovement(scooter *scooterent.Scooter, st *scooterState, route Route) MovementUpdate {
	if s.deactivated[scooter.ID] {
		return s.lockOverride(scooter, scooter.ID)
	}
	if st.scenarioEngaged {
		return st.scenarioOverride
	}
	if len(route) == 0 {
		return MovementUpdate{Lat: scooter.Lat, Lng: scooter.Lng, SpeedKmh: 0, Activity: string(scooterent.StatusIdle)}
	}
	return s.integrateRoute(scooter, st, route)
}

func (s *Simulator) lockOverride(scooter *scooterent.Scooter, id int) MovementUpdate {
	activity := s.lockActivity[id]
	if activity == "" {
		activity = string(scooter.Status)
	}
	return MovementUpdate{Lat: scooter.Lat, Lng: scooter.Lng, SpeedKmh: 0, Activity: activity}
}

func (s *Simulator) routeForTrip(routeID string, tripCount int) Route {
	base, ok := s.routes[routeID]
	if !ok || len(base) == 0 {
		return nil
	}
	if tripCount%2 == 0 {
		return base
	}
	reversed := make(Route, len(base))
	for i, p := range base {
		reversed[len(base)-1-i] = p
	}
	return reversed
}

func (s *Simulator) isInChargingZone(scooter *scooterent.Scooter) bool {
	if scooter.Status == scooterent.StatusActive {
		return false
	}
	return s.city.IsInside(scooter.Lat, scooter.Lng, string(zonemodel.ZoneCharging))
}

func (s *Simulator) publishState(ctx context.Context, scooter *scooterent.Scooter, inChargingZone bool) {
	s.bus.BroadcastState(ctx, telemetry.StatePayload{
		ID:             scooter.ID,
		Lat:            scooter.Lat,
		Lng:            scooter.Lng,
		Battery:        scooter.Battery,
		Status:         string(scooter.Status),
		SpeedKmh:       scooter.SpeedKmh,
		InChargingZone: inChargingZone,
	})
}

func (s *Simulator) updateBikeStatusPositionDBFirst(ctx context.Context, scooter *scooterent.Scooter, newStatus string) {
	if ok := s.api.UpdateBikeStatusAndPosition(ctx, scooter.ID, newStatus, scooter.Lat, scooter.Lng); !ok {
		log.WithFields(log.Fields{"scooter_id": scooter.ID, "status": newStatus}).
			Warn("sim: status+position update failed")
	}
}

// ~~~ lock management ~~~

func (s *Simulator) applyAdminLock(id int, statusAtLock string) {
	if !s.deactivated[id] {
		s.lockActivity[id] = statusAtLock
		s.deactivated[id] = true
	}
	s.adminLocked[id] = true
}

func (s *Simulator) removeAdminLock(id int) {
	if !s.adminLocked[id] {
		return
	}
	delete(s.adminLocked, id)
	if s.batteryLocked[id] || s.outofboundsLocked[id] {
		return
	}
	if s.deactivated[id] {
		delete(s.deactivated, id)
		delete(s.lockActivity, id)
	}
}

func (s *Simulator) applyBatteryLock(ctx context.Context, scooter *scooterent.Scooter) {
	id := scooter.ID
	if s.deactivated[id] {
		return
	}
	s.lockActivity[id] = string(scooterent.StatusNeedCharging)
	s.deactivated[id] = true
	s.batteryLocked[id] = true
	s.updateBikeStatusPositionDBFirst(ctx, scooter, string(scooterent.StatusNeedCharging))
	scooter.Status = scooterent.StatusNeedCharging
	log.WithFields(log.Fields{"scooter_id": id, "battery": scooter.Battery}).Info("sim: scooter locked due to low battery")
}

// ~~~ charging status memoization (§4.7) ~~~

func (s *Simulator) syncChargingStatus(ctx context.Context, scooter *scooterent.Scooter, inChargingZone bool) {
	id := scooter.ID
	if scooter.Status == scooterent.StatusActive {
		delete(s.lastChargingStatus, id)
		return
	}
	if s.adminLocked[id] || s.outofboundsLocked[id] {
		delete(s.lastChargingStatus, id)
		return
	}

	last, hadLast := s.lastChargingStatus[id]

	if inChargingZone {
		next := string(scooterent.StatusCharging)
		if scooter.Battery < s.lowBatteryThreshold {
			next = string(scooterent.StatusChargingLow)
		}
		if last != next {
			s.updateBikeStatusPositionDBFirst(ctx, scooter, next)
			scooter.Status = scooterent.Status(next)
			s.lastChargingStatus[id] = next
		}
		return
	}

	if hadLast && (last == string(scooterent.StatusCharging) || last == string(scooterent.StatusChargingLow)) {
		if scooter.Battery < s.lowBatteryThreshold {
			s.updateBikeStatusPositionDBFirst(ctx, scooter, string(scooterent.StatusNeedCharging))
			scooter.Status = scooterent.StatusNeedCharging
		} else {
			s.updateBikeStatusPositionDBFirst(ctx, scooter, string(scooterent.StatusAvailable))
			scooter.Status = scooterent.StatusAvailable
		}
		delete(s.lastChargingStatus, id)
	}
}

// ~~~ admin + rental event intake (§4.6 steps 1-2) ~~~

func (s *Simulator) drainAdmin(ctx context.Context) {
	for _, u := range s.adminQueue.DrainLastWriteWins() {
		scooter, ok := s.scooters[u.ScooterID]
		if !ok {
			log.WithField("scooter_id", u.ScooterID).Warn("sim: admin update for unknown scooter")
			continue
		}
		st := s.state[u.ScooterID]
		oldStatus := scooter.Status

		if u.NewStatus == string(scooterent.StatusAvailable) && (st.sim.active || st.external.active) {
			log.WithFields(log.Fields{"scooter_id": scooter.ID, "sim_active": st.sim.active, "external_active": st.external.active}).
				Warn("sim: rejecting admin status 'available' while rental active, reverting")
			s.updateBikeStatusPositionDBFirst(ctx, scooter, string(oldStatus))
			continue
		}

		s.updateBikeStatusPositionDBFirst(ctx, scooter, u.NewStatus)
		scooter.Status = scooterent.Status(u.NewStatus)

		switch u.NewStatus {
		case string(scooterent.StatusDeactivated), string(scooterent.StatusNeedService), string(scooterent.StatusOnService):
			if st.sim.active {
				s.forceCompleteRental(ctx, scooter, st, "admin_forced")
			}
			s.applyAdminLock(scooter.ID, u.NewStatus)
		case string(scooterent.StatusAvailable):
			delete(s.outofboundsLocked, scooter.ID)
			delete(s.batteryLocked, scooter.ID)
			delete(s.pendingBatteryLock, scooter.ID)
			if s.deactivated[scooter.ID] {
				delete(s.deactivated, scooter.ID)
				delete(s.lockActivity, scooter.ID)
			}
			delete(s.lastChargingStatus, scooter.ID)
			s.removeAdminLock(scooter.ID)
		default:
			s.removeAdminLock(scooter.ID)
		}
	}
}

func (s *Simulator) drainRentalEvents(ctx context.Context) {
	for _, e := range s.rentalQueue.DrainLastWriteWins() {
		scooter, ok := s.scooters[e.ScooterID]
		if !ok {
			log.WithField("scooter_id", e.ScooterID).Warn("sim: rental event for unknown scooter")
			continue
		}
		st := s.state[e.ScooterID]

		switch e.Type {
		case events.RentalStarted:
			if st.sim.active {
				log.WithFields(log.Fields{"scooter_id": scooter.ID, "sim_rental_id": st.sim.rentalID, "external_rental_id": e.RentalID}).
					Error("sim: external rental_started for scooter with an active sim rental, invariant violated")
			}
			st.external = externalRentalState{active: true, rentalID: e.RentalID, userID: e.UserID, userName: e.UserName}
			if !scooterent.NonRentable[scooter.Status] && !s.deactivated[scooter.ID] {
				scooter.Status = scooterent.StatusActive
			}
			s.bus.ClearCoords(ctx, e.RentalID)
			s.bus.LogCoord(ctx, e.RentalID, scooter.Lat, scooter.Lng, 0)

		case events.RentalEnded:
			if st.external.active && st.external.rentalID != "" && st.external.rentalID != e.RentalID {
				log.WithFields(log.Fields{"scooter_id": scooter.ID, "expected": st.external.rentalID, "got": e.RentalID}).
					Warn("sim: external rental id mismatch on end")
			}
			st.external = externalRentalState{}

			if s.pendingBatteryLock[scooter.ID] || scooter.Battery < s.lowBatteryThreshold {
				delete(s.pendingBatteryLock, scooter.ID)
				s.applyBatteryLock(ctx, scooter)
				continue
			}
			if !s.deactivated[scooter.ID] && !scooterent.NonRentable[scooter.Status] {
				scooter.Status = scooterent.StatusAvailable
			}

		default:
			log.WithField("type", e.Type).Warn("sim: ignoring unknown rental event type")
		}
	}
}

// ~~~ sim-owned rental lifecycle (§4.9) ~~~

func (s *Simulator) canStartRental(scooter *scooterent.Scooter, st *scooterState) bool {
	if st.external.active {
		return false
	}
	if st.sim.active {
		return false
	}
	if _, hasRoute := s.scooterToRoute[scooter.ID]; !hasRoute {
		return false
	}
	if scooter.Battery < s.lowBatteryThreshold {
		return false
	}
	if scooterent.NonRentable[scooter.Status] {
		return false
	}
	if scooter.Status == "needsCharging" || scooter.Status == "needsService" {
		return false
	}
	return true
}

func (s *Simulator) handleRentalTick(ctx context.Context, scooter *scooterent.Scooter, st *scooterState, prevPos geo.Point, routeFinished bool) {
	if st.external.active {
		return
	}

	if s.canStartRental(scooter, st) {
		st.sim.active = true
		st.sim.rentalID = newRentalID()
		st.sim.startZone = string(s.city.ClassifyZone(prevPos.Lat, prevPos.Lng))

		u := s.pool.Draw()
		uid, uname := u.UserID, u.UserName
		st.sim.userID = &uid
		st.sim.userName = &uname

		created := s.api.CreateRental(ctx, uid, scooter.ID, rentalapi.Point{Lat: scooter.Lat, Lng: scooter.Lng}, st.sim.startZone)
		if created != nil && created.RentalID != "" {
			st.sim.rentalID = created.RentalID
		}

		if !scooterent.NonRentable[scooter.Status] {
			s.updateBikeStatusPositionDBFirst(ctx, scooter, string(scooterent.StatusActive))
		}

		s.bus.ClearCoords(ctx, st.sim.rentalID)
		s.bus.LogCoord(ctx, st.sim.rentalID, scooter.Lat, scooter.Lng, 0)
	}

	if scooter.Status == scooterent.StatusActive && st.sim.active && st.sim.rentalID != "" {
		s.bus.LogCoord(ctx, st.sim.rentalID, scooter.Lat, scooter.Lng, scooter.SpeedKmh)
	}

	if !routeFinished || !st.sim.active || st.sim.rentalID == "" {
		return
	}

	endZone := string(s.city.ClassifyZone(scooter.Lat, scooter.Lng))
	s.completeRentalAndPublish(ctx, scooter, st, endZone)

	if st.sim.userID != nil {
		s.pool.Release(users.User{UserID: *st.sim.userID, UserName: derefStr(st.sim.userName)})
	}
	s.finalizeTrip(ctx, scooter, st)
}

func (s *Simulator) forceCompleteRental(ctx context.Context, scooter *scooterent.Scooter, st *scooterState, endZone string) {
	if !st.sim.active {
		return
	}
	log.WithFields(log.Fields{"scooter_id": scooter.ID, "rental_id": st.sim.rentalID, "end_zone": endZone}).
		Info("sim: forcing completion of active rental")
	s.completeRentalAndPublish(ctx, scooter, st, endZone)
	if st.sim.userID != nil {
		s.pool.Release(users.User{UserID: *st.sim.userID, UserName: derefStr(st.sim.userName)})
	}
	s.resetRentalState(st)
}

func (s *Simulator) completeRentalAndPublish(ctx context.Context, scooter *scooterent.Scooter, st *scooterState, endZone string) {
	if !st.sim.active || st.sim.rentalID == "" {
		return
	}
	rentalID := st.sim.rentalID
	st.sim.endZone = endZone

	coords := s.bus.LoadCoords(ctx, rentalID)
	if len(coords) > 0 {
		coords[len(coords)-1].Spd = 0
	}

	apiCoords := make([]rentalapi.RentalCoord, len(coords))
	for i, c := range coords {
		apiCoords[i] = rentalapi.RentalCoord{Lat: c.Lat, Lng: c.Lng, Spd: c.Spd}
	}
	s.api.CompleteRental(ctx, rentalID, rentalapi.Point{Lat: scooter.Lat, Lng: scooter.Lng}, endZone, apiCoords)

	s.bus.PublishCompleted(ctx, telemetry.CompletedRental{
		RentalID:  rentalID,
		ScooterID: scooter.ID,
		Coords:    coords,
		UserID:    st.sim.userID,
		UserName:  st.sim.userName,
		StartZone: st.sim.startZone,
		EndZone:   endZone,
	})

	// resetRentalState is deliberately NOT called here: the two callers
	// (finalizeTrip, forceCompleteRental) each follow up with their own
	// bookkeeping before resetting. Clearing rentalID here is still
	// necessary so a second completion attempt (e.g. admin-forced racing
	// route-finished) is a no-op.
	st.sim.rentalID = ""
}

func (s *Simulator) finalizeTrip(ctx context.Context, scooter *scooterent.Scooter, st *scooterState) {
	st.tripCounter++
	s.resetRentalState(st)

	if s.pendingBatteryLock[scooter.ID] || scooter.Battery < s.lowBatteryThreshold {
		delete(s.pendingBatteryLock, scooter.ID)
		s.applyBatteryLock(ctx, scooter)
	}

	scooter.EndTrip(s.isInChargingZone(scooter), s.lowBatteryThreshold)
}

func (s *Simulator) resetRentalState(st *scooterState) {
	st.sim = rentalState{startZone: string(zonemodel.ZoneFree), endZone: string(zonemodel.ZoneFree)}
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

const rentalIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// newRentalID mirrors the original's secrets.choice(ascii_lowercase+digits)
// x10 token, overwritten by the backend's own id when create_rental
// succeeds with one.
func newRentalID() string {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		log.WithError(err).Error("sim: crypto/rand unavailable, falling back to a time-based rental id")
		return fmt.Sprintf("fallback%010d", time.Now().UnixNano()%1e10)
	}
	id := make([]byte, 10)
	for i, v := range buf {
		id[i] = rentalIDAlphabet[int(v)%len(rentalIDAlphabet)]
	}
	return string(id)
}
